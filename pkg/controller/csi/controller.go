package csi

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/container-storage-interface/spec/lib/go/csi"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/hwameistor/array-csi/pkg/apis/array"
	"github.com/hwameistor/array-csi/pkg/array/agent"
	"github.com/hwameistor/array-csi/pkg/array/attach"
	"github.com/hwameistor/array-csi/pkg/array/common"
	"github.com/hwameistor/array-csi/pkg/utils"
)

var _ csi.ControllerServer = (*plugin)(nil)

// volume context keys
const (
	volumeContextName         = "volume_name"
	volumeContextArrayAddress = "array_address"
	volumeContextPool         = "pool_name"
	volumeContextStorageType  = "storage_type"
)

// ControllerGetCapabilities implementation
func (p *plugin) ControllerGetCapabilities(ctx context.Context, req *csi.ControllerGetCapabilitiesRequest) (*csi.ControllerGetCapabilitiesResponse, error) {
	p.logger.Debug("ControllerGetCapabilities")

	return &csi.ControllerGetCapabilitiesResponse{Capabilities: p.csCaps}, nil
}

// CreateVolume implementation, idempotent
func (p *plugin) CreateVolume(ctx context.Context, req *csi.CreateVolumeRequest) (*csi.CreateVolumeResponse, error) {
	logCtx := p.logger.WithFields(log.Fields{
		"volume":           req.Name,
		"requiredCapacity": req.GetCapacityRange().GetRequiredBytes(),
		"limitedCapacity":  req.GetCapacityRange().GetLimitBytes(),
		"parameters":       req.Parameters,
		"requestID":        utils.RequestID(ctx),
	})
	logCtx.Debug("CreateVolume")

	if req.Name == "" {
		return nil, status.Error(codes.InvalidArgument, "volume name is required")
	}
	if err := validateVolumeCapabilities(p.config, req.VolumeCapabilities); err != nil {
		return nil, toGRPCError(err)
	}
	params, err := parseVolumeParameters(p.config.Controller.Parameters, req.Parameters)
	if err != nil {
		return nil, toGRPCError(err)
	}
	source, err := parseContentSource(req.VolumeContentSource)
	if err != nil {
		// a malformed source id can't exist on any array
		return nil, status.Error(codes.NotFound, err.Error())
	}
	secrets, err := parseSecrets(req.Secrets, params.systemID)
	if err != nil {
		return nil, toGRPCError(err)
	}

	var resp *csi.CreateVolumeResponse
	err = p.locks.run(lockKindVolume, req.Name, func() error {
		storageAgent, err := p.registry.GetAgent(secrets.user, secrets.password, secrets.endpoints, "")
		if err != nil {
			return err
		}
		if source != nil && source.ids.ArrayType != storageAgent.ArrayType() {
			return array.ErrValidation("content source %s is not on a %s array", source.ids, storageAgent.ArrayType())
		}

		traits := storageAgent.Traits()
		requiredBytes, err := requiredCapacity(req.GetCapacityRange(), traits)
		if err != nil {
			return err
		}
		if len(params.prefix) > traits.MaxObjectPrefixLength {
			return array.ErrIllegalObjectName(fmt.Sprintf("volume name prefix %q is longer than %d", params.prefix, traits.MaxObjectPrefixLength))
		}
		name := common.BuildObjectName(req.Name, params.prefix, traits.MaxObjectNameLength)
		logCtx = logCtx.WithFields(log.Fields{"arrayName": name, "arrayType": storageAgent.ArrayType()})

		var volume *array.Volume
		err = storageAgent.Do(func(mediator array.Mediator) error {
			volume, err = p.createVolume(mediator, name, requiredBytes, params, source, logCtx, func(volumeID string) {
				p.cleaner.add(volumeID, func() error {
					return storageAgent.Do(func(mediator array.Mediator) error {
						return deleteOrphanVolume(mediator, volumeID)
					})
				})
			})
			return err
		})
		if err != nil {
			return err
		}
		resp = &csi.CreateVolumeResponse{Volume: p.toCSIVolume(storageAgent, volume, params.systemID, req.VolumeContentSource)}
		return nil
	})
	if err != nil {
		logCtx.WithError(err).Error("Failed to create volume")
		return nil, toGRPCError(err)
	}

	logCtx.WithField("volumeID", resp.Volume.VolumeId).Info("Volume is ready")
	return resp, nil
}

// createVolume looks before it leaps: an existing volume is returned when it
// is compatible with the request
func (p *plugin) createVolume(mediator array.Mediator, name string, requiredBytes int64, params *volumeParameters, source *contentSource, logCtx *log.Entry, onOrphan func(volumeID string)) (*array.Volume, error) {
	if err := mediator.ValidateSupportedSpaceEfficiency(params.spaceEfficiency); err != nil {
		return nil, err
	}

	volume, err := mediator.GetVolume(name, params.pool)
	if err == nil {
		logCtx.Debug("Volume already exists")
		return volume, checkExistingVolume(volume, requiredBytes, source)
	}
	if !array.IsKind(err, array.ErrorKindVolumeNotFound) {
		return nil, err
	}

	createBytes := requiredBytes
	var sourceBytes int64
	if source != nil {
		if sourceBytes, err = sourceCapacity(mediator, source); err != nil {
			return nil, err
		}
		// the copy expands the volume to the requested size afterwards
		createBytes = sourceBytes
	}

	volume, err = mediator.CreateVolume(name, createBytes, params.spaceEfficiency, params.pool, params.ioGroup, params.volumeGroup)
	if err != nil {
		return nil, err
	}
	logCtx.WithField("capacity", volume.CapacityBytes).Info("Created volume")
	if source == nil {
		return volume, nil
	}

	if err := mediator.CopyToExistingVolumeFromSource(volume.ID, source.ids.ID, source.kind, sourceBytes, requiredBytes); err != nil {
		logCtx.WithError(err).Error("Failed to copy content source, deleting the new volume")
		rollbackErr := common.Rollback(func() error {
			return deleteOrphanVolume(mediator, volume.ID)
		})
		if rollbackErr != nil {
			logCtx.WithError(rollbackErr).Error("Failed to delete the new volume")
			onOrphan(volume.ID)
		}
		return nil, err
	}
	volume.CopySourceID = source.ids.ID
	volume.CopySourceKind = source.kind
	if volume.CapacityBytes < requiredBytes {
		volume.CapacityBytes = requiredBytes
	}
	logCtx.WithFields(log.Fields{"source": source.ids.ID, "sourceKind": source.kind}).Info("Copied content source")
	return volume, nil
}

func deleteOrphanVolume(mediator array.Mediator, volumeID string) error {
	if err := mediator.DeleteVolume(volumeID); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

func checkExistingVolume(volume *array.Volume, requiredBytes int64, source *contentSource) error {
	if volume.CapacityBytes < requiredBytes {
		return array.NewError(array.ErrorKindVolumeAlreadyExists, "volume %s exists with capacity %d, requested %d", volume.Name, volume.CapacityBytes, requiredBytes)
	}
	if source != nil && !volume.IsCopyOf(source.kind, source.ids.ID) {
		return fmt.Errorf("volume %s exists but was not copied from %s %s", volume.Name, source.kind, source.ids.ID)
	}
	return nil
}

func sourceCapacity(mediator array.Mediator, source *contentSource) (int64, error) {
	if source.kind == array.ObjectKindSnapshot {
		snapshot, err := mediator.GetSnapshotByID(source.ids.ID)
		if err != nil {
			return 0, err
		}
		return snapshot.CapacityBytes, nil
	}
	volume, err := mediator.GetVolumeByID(source.ids.ID)
	if err != nil {
		return 0, err
	}
	return volume.CapacityBytes, nil
}

// requiredCapacity rounds the request up to the array's minimal volume size
func requiredCapacity(capacityRange *csi.CapacityRange, traits array.MediatorTraits) (int64, error) {
	required := capacityRange.GetRequiredBytes()
	limit := capacityRange.GetLimitBytes()
	if required < 0 || limit < 0 {
		return 0, status.Error(codes.OutOfRange, "capacity must not be negative")
	}
	if required < traits.MinimalVolumeSizeBytes {
		required = traits.MinimalVolumeSizeBytes
	}
	if limit > 0 && required > limit {
		return 0, status.Errorf(codes.OutOfRange, "required capacity %d exceeds the limit %d", required, limit)
	}
	if traits.MaximalVolumeSizeBytes > 0 && required > traits.MaximalVolumeSizeBytes {
		return 0, status.Errorf(codes.OutOfRange, "required capacity %d exceeds the array maximum %d", required, traits.MaximalVolumeSizeBytes)
	}
	return required, nil
}

func (p *plugin) toCSIVolume(storageAgent *agent.Agent, volume *array.Volume, systemID string, source *csi.VolumeContentSource) *csi.Volume {
	arrayType := storageAgent.ArrayType()
	addresses := volume.ArrayAddresses
	if len(addresses) == 0 {
		addresses = storageAgent.Endpoints()
	}
	return &csi.Volume{
		VolumeId:      array.NewObjectIDs(arrayType, systemID, volume.InternalID, volume.ID).String(),
		CapacityBytes: volume.CapacityBytes,
		VolumeContext: map[string]string{
			volumeContextName:         volume.Name,
			volumeContextArrayAddress: strings.Join(addresses, endpointSeparator),
			volumeContextPool:         volume.Pool,
			volumeContextStorageType:  arrayType,
		},
		ContentSource: source,
	}
}

// DeleteVolume implementation, idempotent
func (p *plugin) DeleteVolume(ctx context.Context, req *csi.DeleteVolumeRequest) (*csi.DeleteVolumeResponse, error) {
	logCtx := p.logger.WithFields(log.Fields{"volume": req.VolumeId, "requestID": utils.RequestID(ctx)})
	logCtx.Debug("DeleteVolume")

	if req.VolumeId == "" {
		return nil, status.Error(codes.InvalidArgument, "volume id is required")
	}
	ids, err := array.ParseObjectID(req.VolumeId)
	if err != nil {
		logCtx.WithError(err).Warning("Malformed volume id, nothing to delete")
		return &csi.DeleteVolumeResponse{}, nil
	}
	secrets, err := parseSecrets(req.Secrets, ids.SystemID)
	if err != nil {
		return nil, toGRPCError(err)
	}

	err = p.locks.run(lockKindVolume, req.VolumeId, func() error {
		storageAgent, err := p.registry.GetAgent(secrets.user, secrets.password, secrets.endpoints, ids.ArrayType)
		if err != nil {
			return err
		}
		return storageAgent.Do(func(mediator array.Mediator) error {
			hasSnapshots, err := mediator.IsVolumeHasSnapshots(ids.ID)
			if err != nil {
				return err
			}
			if hasSnapshots {
				return status.Errorf(codes.FailedPrecondition, "volume %s has snapshots", req.VolumeId)
			}
			return mediator.DeleteVolume(ids.ID)
		})
	})
	if err != nil {
		if isNotFound(err) {
			logCtx.Info("Volume is already gone")
			return &csi.DeleteVolumeResponse{}, nil
		}
		logCtx.WithError(err).Error("Failed to delete volume")
		return nil, toGRPCError(err)
	}

	logCtx.Info("Deleted volume")
	return &csi.DeleteVolumeResponse{}, nil
}

// ControllerPublishVolume implementation, idempotent
func (p *plugin) ControllerPublishVolume(ctx context.Context, req *csi.ControllerPublishVolumeRequest) (*csi.ControllerPublishVolumeResponse, error) {
	logCtx := p.logger.WithFields(log.Fields{"volume": req.VolumeId, "node": req.NodeId, "requestID": utils.RequestID(ctx)})
	logCtx.Debug("ControllerPublishVolume")

	if req.VolumeId == "" {
		return nil, status.Error(codes.InvalidArgument, "volume id is required")
	}
	if req.NodeId == "" {
		return nil, status.Error(codes.InvalidArgument, "node id is required")
	}
	if err := validateVolumeCapability(p.config, req.VolumeCapability); err != nil {
		return nil, toGRPCError(err)
	}
	ids, err := array.ParseObjectID(req.VolumeId)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	node, err := array.ParseNodeID(req.NodeId)
	if err != nil {
		return nil, toGRPCError(err)
	}
	secrets, err := parseSecrets(req.Secrets, ids.SystemID)
	if err != nil {
		return nil, toGRPCError(err)
	}

	var result *attach.Result
	err = p.locks.run(lockKindVolume, req.VolumeId, func() error {
		storageAgent, err := p.registry.GetAgent(secrets.user, secrets.password, secrets.endpoints, ids.ArrayType)
		if err != nil {
			return err
		}
		return common.RetryOnNoConnectionAvailable(func() error {
			return storageAgent.DoWithTimeout(false, 0, func(mediator array.Mediator) error {
				result, err = p.coordinator.MapVolumeByInitiators(mediator, ids.ID, node.Initiators)
				return err
			})
		})
	})
	if err != nil {
		logCtx.WithError(err).Error("Failed to publish volume")
		return nil, toGRPCError(err)
	}

	logCtx.WithFields(log.Fields{"lun": result.LUN, "connectivity": result.Connectivity}).Info("Published volume")
	return &csi.ControllerPublishVolumeResponse{PublishContext: p.publishContext(result)}, nil
}

func (p *plugin) publishContext(result *attach.Result) map[string]string {
	keys := p.config.Controller.PublishContext
	publishContext := map[string]string{
		keys.LUN:          strconv.Itoa(result.LUN),
		keys.Connectivity: string(result.Connectivity),
	}
	switch result.Connectivity {
	case array.ConnectivityTypeISCSI:
		iqns := make([]string, 0, len(result.ISCSITargets))
		for iqn, portals := range result.ISCSITargets {
			iqns = append(iqns, iqn)
			publishContext[iqn] = strings.Join(portals, keys.Separator)
		}
		sort.Strings(iqns)
		publishContext[keys.ArrayIQN] = strings.Join(iqns, keys.Separator)
	case array.ConnectivityTypeFC:
		publishContext[keys.FCWWNs] = strings.Join(result.ArrayFCWWNs, keys.Separator)
	}
	return publishContext
}

// ControllerUnpublishVolume implementation, idempotent
func (p *plugin) ControllerUnpublishVolume(ctx context.Context, req *csi.ControllerUnpublishVolumeRequest) (*csi.ControllerUnpublishVolumeResponse, error) {
	logCtx := p.logger.WithFields(log.Fields{"volume": req.VolumeId, "node": req.NodeId, "requestID": utils.RequestID(ctx)})
	logCtx.Debug("ControllerUnpublishVolume")

	if req.VolumeId == "" {
		return nil, status.Error(codes.InvalidArgument, "volume id is required")
	}
	if req.NodeId == "" {
		return nil, status.Error(codes.InvalidArgument, "node id is required")
	}
	ids, err := array.ParseObjectID(req.VolumeId)
	if err != nil {
		logCtx.WithError(err).Warning("Malformed volume id, nothing to unpublish")
		return &csi.ControllerUnpublishVolumeResponse{}, nil
	}
	node, err := array.ParseNodeID(req.NodeId)
	if err != nil {
		return nil, toGRPCError(err)
	}
	secrets, err := parseSecrets(req.Secrets, ids.SystemID)
	if err != nil {
		return nil, toGRPCError(err)
	}

	err = p.locks.run(lockKindVolume, req.VolumeId, func() error {
		storageAgent, err := p.registry.GetAgent(secrets.user, secrets.password, secrets.endpoints, ids.ArrayType)
		if err != nil {
			return err
		}
		return common.RetryOnNoConnectionAvailable(func() error {
			return storageAgent.DoWithTimeout(false, 0, func(mediator array.Mediator) error {
				return p.coordinator.UnmapVolumeByInitiators(mediator, ids.ID, node.Initiators)
			})
		})
	})
	if err != nil {
		if array.IsKind(err, array.ErrorKindVolumeAlreadyUnmapped) || array.IsKind(err, array.ErrorKindVolumeNotFound) {
			logCtx.WithError(err).Info("Volume is already unpublished")
			return &csi.ControllerUnpublishVolumeResponse{}, nil
		}
		logCtx.WithError(err).Error("Failed to unpublish volume")
		return nil, toGRPCError(err)
	}

	logCtx.Info("Unpublished volume")
	return &csi.ControllerUnpublishVolumeResponse{}, nil
}

// CreateSnapshot implementation, idempotent
func (p *plugin) CreateSnapshot(ctx context.Context, req *csi.CreateSnapshotRequest) (*csi.CreateSnapshotResponse, error) {
	logCtx := p.logger.WithFields(log.Fields{"snapshot": req.Name, "volume": req.SourceVolumeId, "requestID": utils.RequestID(ctx)})
	logCtx.Debug("CreateSnapshot")

	if req.Name == "" {
		return nil, status.Error(codes.InvalidArgument, "snapshot name is required")
	}
	if req.SourceVolumeId == "" {
		return nil, status.Error(codes.InvalidArgument, "source volume id is required")
	}
	sourceIDs, err := array.ParseObjectID(req.SourceVolumeId)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	params := parseSnapshotParameters(p.config.Controller.Parameters, req.Parameters)
	systemID := sourceIDs.SystemID
	if systemID == "" {
		systemID = params.systemID
	}
	secrets, err := parseSecrets(req.Secrets, systemID)
	if err != nil {
		return nil, toGRPCError(err)
	}

	var resp *csi.CreateSnapshotResponse
	err = p.locks.run(lockKindSnapshot, req.Name, func() error {
		storageAgent, err := p.registry.GetAgent(secrets.user, secrets.password, secrets.endpoints, sourceIDs.ArrayType)
		if err != nil {
			return err
		}
		traits := storageAgent.Traits()
		if len(params.prefix) > traits.MaxSnapshotPrefixLength {
			return array.ErrIllegalObjectName(fmt.Sprintf("snapshot name prefix %q is longer than %d", params.prefix, traits.MaxSnapshotPrefixLength))
		}
		name := common.BuildObjectName(req.Name, params.prefix, traits.MaxSnapshotNameLength)
		logCtx = logCtx.WithField("arrayName", name)

		var snapshot *array.Snapshot
		err = storageAgent.Do(func(mediator array.Mediator) error {
			snapshot, err = createSnapshot(mediator, sourceIDs.ID, name, params.pool, logCtx)
			return err
		})
		if err != nil {
			return err
		}
		resp = &csi.CreateSnapshotResponse{Snapshot: p.toCSISnapshot(storageAgent.ArrayType(), systemID, snapshot, req.SourceVolumeId)}
		return nil
	})
	if err != nil {
		logCtx.WithError(err).Error("Failed to create snapshot")
		return nil, toGRPCError(err)
	}

	logCtx.WithField("snapshotID", resp.Snapshot.SnapshotId).Info("Snapshot is ready")
	return resp, nil
}

func createSnapshot(mediator array.Mediator, volumeID string, name string, pool string, logCtx *log.Entry) (*array.Snapshot, error) {
	snapshot, err := mediator.GetSnapshot(volumeID, name, pool)
	if err == nil {
		if snapshot.SourceVolumeID != volumeID {
			return nil, array.NewError(array.ErrorKindSnapshotAlreadyExists, "snapshot %s exists for volume %s", name, snapshot.SourceVolumeID)
		}
		logCtx.Debug("Snapshot already exists")
		return snapshot, nil
	}
	if !array.IsKind(err, array.ErrorKindSnapshotNotFound) {
		return nil, err
	}

	snapshot, err = mediator.CreateSnapshot(volumeID, name, pool)
	if err != nil {
		return nil, err
	}
	logCtx.Info("Created snapshot")
	return snapshot, nil
}

// toCSISnapshot falls back to the time the snapshot was first reported when
// the array keeps no creation time
func (p *plugin) toCSISnapshot(arrayType string, systemID string, snapshot *array.Snapshot, sourceVolumeID string) *csi.Snapshot {
	snapshotID := array.NewObjectIDs(arrayType, systemID, snapshot.InternalID, snapshot.ID).String()
	creationTime := snapshot.CreationTime
	if creationTime.IsZero() {
		creationTime = p.snapshotTimes.firstSeen(snapshotID)
	}
	return &csi.Snapshot{
		SnapshotId:     snapshotID,
		SourceVolumeId: sourceVolumeID,
		SizeBytes:      snapshot.CapacityBytes,
		CreationTime:   timestamppb.New(creationTime),
		ReadyToUse:     snapshot.IsReady,
	}
}

// DeleteSnapshot implementation, idempotent
func (p *plugin) DeleteSnapshot(ctx context.Context, req *csi.DeleteSnapshotRequest) (*csi.DeleteSnapshotResponse, error) {
	logCtx := p.logger.WithFields(log.Fields{"snapshot": req.SnapshotId, "requestID": utils.RequestID(ctx)})
	logCtx.Debug("DeleteSnapshot")

	if req.SnapshotId == "" {
		return nil, status.Error(codes.InvalidArgument, "snapshot id is required")
	}
	ids, err := array.ParseObjectID(req.SnapshotId)
	if err != nil {
		logCtx.WithError(err).Warning("Malformed snapshot id, nothing to delete")
		return &csi.DeleteSnapshotResponse{}, nil
	}
	secrets, err := parseSecrets(req.Secrets, ids.SystemID)
	if err != nil {
		return nil, toGRPCError(err)
	}

	err = p.locks.run(lockKindSnapshot, req.SnapshotId, func() error {
		storageAgent, err := p.registry.GetAgent(secrets.user, secrets.password, secrets.endpoints, ids.ArrayType)
		if err != nil {
			return err
		}
		return storageAgent.Do(func(mediator array.Mediator) error {
			return mediator.DeleteSnapshot(ids.ID)
		})
	})
	if err != nil && !isNotFound(err) {
		logCtx.WithError(err).Error("Failed to delete snapshot")
		return nil, toGRPCError(err)
	}
	p.snapshotTimes.forget(req.SnapshotId)
	if err != nil {
		logCtx.Info("Snapshot is already gone")
		return &csi.DeleteSnapshotResponse{}, nil
	}

	logCtx.Info("Deleted snapshot")
	return &csi.DeleteSnapshotResponse{}, nil
}

// ControllerExpandVolume implementation, idempotent
func (p *plugin) ControllerExpandVolume(ctx context.Context, req *csi.ControllerExpandVolumeRequest) (*csi.ControllerExpandVolumeResponse, error) {
	logCtx := p.logger.WithFields(log.Fields{
		"volume":           req.VolumeId,
		"requiredCapacity": req.GetCapacityRange().GetRequiredBytes(),
		"requestID":        utils.RequestID(ctx),
	})
	logCtx.Debug("ControllerExpandVolume")

	if req.VolumeId == "" {
		return nil, status.Error(codes.InvalidArgument, "volume id is required")
	}
	if req.CapacityRange == nil {
		return nil, status.Error(codes.InvalidArgument, "capacity range is required")
	}
	ids, err := array.ParseObjectID(req.VolumeId)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	secrets, err := parseSecrets(req.Secrets, ids.SystemID)
	if err != nil {
		return nil, toGRPCError(err)
	}

	var capacity int64
	err = p.locks.run(lockKindVolume, req.VolumeId, func() error {
		storageAgent, err := p.registry.GetAgent(secrets.user, secrets.password, secrets.endpoints, ids.ArrayType)
		if err != nil {
			return err
		}
		requiredBytes, err := requiredCapacity(req.CapacityRange, storageAgent.Traits())
		if err != nil {
			return err
		}
		return storageAgent.Do(func(mediator array.Mediator) error {
			volume, err := mediator.GetVolumeByID(ids.ID)
			if err != nil {
				return err
			}
			if volume.CapacityBytes >= requiredBytes {
				logCtx.WithField("capacity", volume.CapacityBytes).Debug("Volume is already large enough")
				capacity = volume.CapacityBytes
				return nil
			}
			if err := mediator.ExpandVolume(ids.ID, requiredBytes); err != nil {
				return err
			}
			if volume, err = mediator.GetVolumeByID(ids.ID); err != nil {
				return err
			}
			capacity = volume.CapacityBytes
			return nil
		})
	})
	if err != nil {
		logCtx.WithError(err).Error("Failed to expand volume")
		return nil, toGRPCError(err)
	}

	logCtx.WithField("capacity", capacity).Info("Expanded volume")
	return &csi.ControllerExpandVolumeResponse{
		CapacityBytes:         capacity,
		NodeExpansionRequired: req.GetVolumeCapability().GetBlock() == nil,
	}, nil
}

// ValidateVolumeCapabilities implementation
func (p *plugin) ValidateVolumeCapabilities(ctx context.Context, req *csi.ValidateVolumeCapabilitiesRequest) (*csi.ValidateVolumeCapabilitiesResponse, error) {
	logCtx := p.logger.WithFields(log.Fields{"volume": req.VolumeId, "capabilities": req.VolumeCapabilities})
	logCtx.Debug("ValidateVolumeCapabilities")

	if req.VolumeId == "" {
		return nil, status.Error(codes.InvalidArgument, "volume id is required")
	}
	if len(req.VolumeCapabilities) == 0 {
		return nil, status.Error(codes.InvalidArgument, "volume capabilities are required")
	}
	ids, err := array.ParseObjectID(req.VolumeId)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}

	if len(req.Secrets) > 0 {
		secrets, err := parseSecrets(req.Secrets, ids.SystemID)
		if err != nil {
			return nil, toGRPCError(err)
		}
		storageAgent, err := p.registry.GetAgent(secrets.user, secrets.password, secrets.endpoints, ids.ArrayType)
		if err != nil {
			return nil, toGRPCError(err)
		}
		err = storageAgent.Do(func(mediator array.Mediator) error {
			_, err := mediator.GetVolumeByID(ids.ID)
			return err
		})
		if err != nil {
			return nil, toGRPCError(err)
		}
	}

	if err := validateVolumeCapabilities(p.config, req.VolumeCapabilities); err != nil {
		logCtx.WithError(err).Debug("Unsupported volume capabilities")
		return &csi.ValidateVolumeCapabilitiesResponse{Message: err.Error()}, nil
	}
	return &csi.ValidateVolumeCapabilitiesResponse{
		Confirmed: &csi.ValidateVolumeCapabilitiesResponse_Confirmed{
			VolumeContext:      req.VolumeContext,
			VolumeCapabilities: req.VolumeCapabilities,
			Parameters:         req.Parameters,
		},
	}, nil
}

// ListVolumes implementation
func (p *plugin) ListVolumes(ctx context.Context, req *csi.ListVolumesRequest) (*csi.ListVolumesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "ListVolumes is not supported")
}

// GetCapacity implementation
func (p *plugin) GetCapacity(ctx context.Context, req *csi.GetCapacityRequest) (*csi.GetCapacityResponse, error) {
	return nil, status.Error(codes.Unimplemented, "GetCapacity is not supported")
}

// ListSnapshots implementation
func (p *plugin) ListSnapshots(ctx context.Context, req *csi.ListSnapshotsRequest) (*csi.ListSnapshotsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "ListSnapshots is not supported")
}

// ControllerGetVolume implementation
func (p *plugin) ControllerGetVolume(ctx context.Context, req *csi.ControllerGetVolumeRequest) (*csi.ControllerGetVolumeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "ControllerGetVolume is not supported")
}

package svc

import (
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hwameistor/array-csi/pkg/apis/array"
	"github.com/hwameistor/array-csi/pkg/array/common"
)

// consts
const (
	yes = "yes"

	snapshotCopyRate = "0"
	cloneCopyRate    = "50"

	portStatusActive = "active"

	// start_time of lsfcmap, array local time
	fcMapTimeLayout = "060102150405"

	relationshipStateSynchronized = "consistent_synchronized"
	relationshipStateIdling       = "idling"
	relationshipStateStopped      = "consistent_stopped"
	relationshipGlobal            = "global"
	primaryMaster                 = "master"
	primaryAux                    = "aux"
)

var readyFCMapStatuses = map[string]bool{"copying": true, "idle_or_copied": true}

// Traits of the SVC family
var Traits = array.MediatorTraits{
	ArrayType:               array.ArrayTypeSVC,
	Port:                    22,
	MaxConnections:          2,
	MaxObjectNameLength:     63,
	MaxObjectPrefixLength:   20,
	MaxSnapshotNameLength:   63,
	MaxSnapshotPrefixLength: 20,
	MinimalVolumeSizeBytes:  512,
	MaximalVolumeSizeBytes:  256 << 40,
	MaxLUNRetries:           10,
}

var _ array.Mediator = &Mediator{}

// Mediator drives an SVC cluster through its SSH CLI. Snapshots are volumes
// that are the target of a FlashCopy mapping with copy rate 0.
type Mediator struct {
	client    Client
	endpoint  string
	endpoints []string
	systemID  string

	logger *log.Entry
}

// NewMediator connects to the first reachable endpoint
func NewMediator(user string, password string, endpoints []string) (array.Mediator, error) {
	client, err := Dial(user, password, endpoints, Traits.Port)
	if err != nil {
		if isAuthenticationError(err) {
			return nil, array.ErrCredentials(strings.Join(endpoints, ","))
		}
		return nil, array.WrapError(array.ErrorKindNoConnectionAvailable, err, "failed to connect to %v", endpoints)
	}
	m, err := newMediator(client, endpoints)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func newMediator(client Client, endpoints []string) (*Mediator, error) {
	m := &Mediator{
		client:    client,
		endpoint:  strings.Join(endpoints, ","),
		endpoints: endpoints,
		logger:    log.WithFields(log.Fields{"Module": "SVCMediator", "endpoints": endpoints}),
	}
	output, err := client.Run(Info("lssystem"))
	if err != nil {
		client.Close()
		return nil, m.translateError(err)
	}
	system := ParseDetail(output)
	m.systemID = first(system["id"])
	m.logger.WithFields(log.Fields{"systemID": m.systemID, "codeLevel": first(system["code_level"])}).Debug("Connected")
	return m, nil
}

// Disconnect closes the SSH connection
func (m *Mediator) Disconnect() {
	if err := m.client.Close(); err != nil {
		m.logger.WithError(err).Debug("Failed to close SSH connection")
	}
}

// IsActive probes the SSH connection
func (m *Mediator) IsActive() bool {
	return m.client.Alive()
}

// Traits of the family
func (m *Mediator) Traits() array.MediatorTraits {
	return Traits
}

// Identifier is the cluster id
func (m *Mediator) Identifier() string {
	return m.systemID
}

// ValidateSupportedSpaceEfficiency accepts thin, thick, compressed and deduplicated
func (m *Mediator) ValidateSupportedSpaceEfficiency(spaceEfficiency string) error {
	switch spaceEfficiency {
	case "", array.SpaceEfficiencyThin, array.SpaceEfficiencyThick, array.SpaceEfficiencyCompressed, array.SpaceEfficiencyDeduplicated:
		return nil
	}
	return array.ErrStorageClassCapabilityNotSupported(spaceEfficiency)
}

func (m *Mediator) GetVolume(name string, pool string) (*array.Volume, error) {
	record, err := m.findVolume("name", name)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, array.ErrVolumeNotFound(name)
	}
	snapshotMap, err := m.snapshotFCMap(record["name"])
	if err != nil {
		return nil, err
	}
	if snapshotMap != nil {
		return nil, array.ErrVolumeNotFound(name)
	}
	return m.volumeFromRecord(record)
}

func (m *Mediator) GetVolumeByID(volumeID string) (*array.Volume, error) {
	record, err := m.volumeRecordByID(volumeID)
	if err != nil {
		return nil, err
	}
	return m.volumeFromRecord(record)
}

func (m *Mediator) CreateVolume(name string, sizeBytes int64, spaceEfficiency string, pool string, ioGroup string, volumeGroup string) (*array.Volume, error) {
	if err := m.ValidateSupportedSpaceEfficiency(spaceEfficiency); err != nil {
		return nil, err
	}
	if err := m.createVolume(name, sizeBytes, spaceEfficiency, pool, ioGroup, volumeGroup); err != nil {
		return nil, err
	}
	return m.GetVolume(name, pool)
}

func (m *Mediator) createVolume(name string, sizeBytes int64, spaceEfficiency string, pool string, ioGroup string, volumeGroup string) error {
	logCtx := m.logger.WithFields(log.Fields{"volume": name, "size": sizeBytes, "pool": pool, "spaceEfficiency": spaceEfficiency})

	cmd := Task("mkvolume").Opt("name", name).Opt("pool", pool).Opt("size", sizeBytes).Opt("unit", "b")
	switch spaceEfficiency {
	case array.SpaceEfficiencyThin:
		cmd.Flag("thin")
	case array.SpaceEfficiencyCompressed:
		cmd.Flag("compressed")
	case array.SpaceEfficiencyDeduplicated:
		cmd.Flag("thin").Flag("deduplicated")
	}
	if ioGroup != "" {
		cmd.Opt("iogrp", ioGroup)
	}
	if volumeGroup != "" {
		cmd.Opt("volumegroup", volumeGroup)
	}

	if _, err := m.client.Run(cmd); err != nil {
		logCtx.WithError(err).Error("Failed to create volume")
		switch cliCode(err) {
		case codeNameAlreadyExists:
			return array.ErrVolumeAlreadyExists(name, m.endpoint)
		case codeObjectNotFound, codeObjectDoesNotExist:
			return array.ErrPoolDoesNotExist(pool, m.endpoint)
		case codeNotEnoughExtents, codeNotEnoughSpace:
			return array.WrapError(array.ErrorKindVolumeCreation, err, "not enough space in pool %s", pool)
		}
		return m.translateError(err)
	}
	logCtx.Info("Created volume")
	return nil
}

// CopyToExistingVolumeFromSource starts a background FlashCopy which deletes itself once copied
func (m *Mediator) CopyToExistingVolumeFromSource(volumeID string, sourceID string, sourceKind array.ObjectKind, sourceCapacityBytes int64, minimalVolumeSizeBytes int64) error {
	target, err := m.volumeRecordByID(volumeID)
	if err != nil {
		return err
	}
	source, err := m.findVolume("vdisk_UID", sourceID)
	if err != nil {
		return err
	}
	if source == nil {
		if sourceKind == array.ObjectKindSnapshot {
			return array.ErrSnapshotNotFound(sourceID)
		}
		return array.ErrVolumeNotFound(sourceID)
	}

	cmd := Task("mkfcmap").Opt("source", source["name"]).Opt("target", target["name"]).Opt("copyrate", cloneCopyRate).Flag("autodelete")
	if err := m.createAndStartFCMap(cmd); err != nil {
		return err
	}
	if minimalVolumeSizeBytes > sourceCapacityBytes {
		return m.ExpandVolume(volumeID, minimalVolumeSizeBytes)
	}
	return nil
}

func (m *Mediator) DeleteVolume(volumeID string) error {
	record, err := m.volumeRecordByID(volumeID)
	if err != nil {
		return err
	}
	return m.deleteVolume(volumeID, record["id"])
}

func (m *Mediator) deleteVolume(volumeID string, internalID string) error {
	if _, err := m.client.Run(Task("rmvolume").Arg(internalID)); err != nil {
		if code := cliCode(err); code == codeObjectDoesNotExist || code == codeObjectNotFound {
			return array.ErrVolumeNotFound(volumeID)
		}
		return array.WrapError(array.ErrorKindVolumeDeletion, m.translateError(err), "failed to delete volume %s", volumeID)
	}
	m.logger.WithField("volume", volumeID).Info("Deleted volume")
	return nil
}

// ExpandVolume grows the volume to the required size; smaller sizes are ignored
func (m *Mediator) ExpandVolume(volumeID string, requiredBytes int64) error {
	record, err := m.volumeRecordByID(volumeID)
	if err != nil {
		return err
	}
	current, _ := strconv.ParseInt(record["capacity"], 10, 64)
	if requiredBytes <= current {
		return nil
	}
	if _, err := m.client.Run(Task("expandvdisksize").Opt("size", requiredBytes-current).Opt("unit", "b").Arg(record["id"])); err != nil {
		if cliCode(err) == codeObjectDoesNotExist {
			return array.ErrVolumeNotFound(volumeID)
		}
		return m.translateError(err)
	}
	return nil
}

func (m *Mediator) IsVolumeHasSnapshots(volumeID string) (bool, error) {
	record, err := m.volumeRecordByID(volumeID)
	if err != nil {
		return false, err
	}
	maps, err := m.fcMaps("source_vdisk_name", record["name"])
	if err != nil {
		return false, err
	}
	for _, fcMap := range maps {
		if fcMap["copy_rate"] == snapshotCopyRate {
			return true, nil
		}
	}
	return false, nil
}

func (m *Mediator) GetSnapshot(volumeID string, snapshotName string, pool string) (*array.Snapshot, error) {
	record, err := m.findVolume("name", snapshotName)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, array.ErrSnapshotNotFound(snapshotName)
	}
	snapshot, err := m.snapshotFromRecord(record)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, array.ErrSnapshotNameBelongsToVolume(snapshotName, m.endpoint)
	}
	return snapshot, nil
}

func (m *Mediator) GetSnapshotByID(snapshotID string) (*array.Snapshot, error) {
	record, err := m.findVolume("vdisk_UID", snapshotID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, array.ErrSnapshotNotFound(snapshotID)
	}
	snapshot, err := m.snapshotFromRecord(record)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, array.ErrSnapshotNotFound(snapshotID)
	}
	return snapshot, nil
}

// CreateSnapshot creates a target volume like the source and a FlashCopy
// without background copy onto it, removing the target if the FlashCopy fails
func (m *Mediator) CreateSnapshot(volumeID string, snapshotName string, pool string) (*array.Snapshot, error) {
	source, err := m.volumeRecordByID(volumeID)
	if err != nil {
		return nil, err
	}
	if pool == "" {
		pool = source["mdisk_grp_name"]
	}
	capacity, _ := strconv.ParseInt(source["capacity"], 10, 64)

	if err := m.createVolume(snapshotName, capacity, spaceEfficiency(source), pool, source["IO_group_name"], ""); err != nil {
		if array.IsKind(err, array.ErrorKindVolumeAlreadyExists) {
			return nil, array.ErrSnapshotAlreadyExists(snapshotName, m.endpoint)
		}
		return nil, err
	}

	cmd := Task("mkfcmap").Opt("source", source["name"]).Opt("target", snapshotName).Opt("copyrate", snapshotCopyRate)
	if err := m.createAndStartFCMap(cmd); err != nil {
		rollbackErr := common.Rollback(func() error {
			target, err := m.findVolume("name", snapshotName)
			if err != nil || target == nil {
				return err
			}
			if err := m.deleteVolume(target["vdisk_UID"], target["id"]); err != nil && !array.IsKind(err, array.ErrorKindVolumeNotFound) {
				return err
			}
			return nil
		})
		if rollbackErr != nil {
			m.logger.WithField("snapshot", snapshotName).WithError(rollbackErr).Error("Failed to remove snapshot target volume")
		}
		return nil, err
	}
	m.logger.WithFields(log.Fields{"volume": volumeID, "snapshot": snapshotName}).Info("Created snapshot")
	return m.GetSnapshot(volumeID, snapshotName, pool)
}

func (m *Mediator) DeleteSnapshot(snapshotID string) error {
	record, err := m.findVolume("vdisk_UID", snapshotID)
	if err != nil {
		return err
	}
	if record == nil {
		return array.ErrSnapshotNotFound(snapshotID)
	}
	snapshotMap, err := m.snapshotFCMap(record["name"])
	if err != nil {
		return err
	}
	if snapshotMap == nil {
		return array.ErrSnapshotNotFound(snapshotID)
	}

	users, err := m.fcMaps("source_vdisk_name", record["name"])
	if err != nil {
		return err
	}
	if len(users) > 0 {
		targets := make([]string, 0, len(users))
		for _, user := range users {
			targets = append(targets, user["target_vdisk_name"])
		}
		return array.ErrSnapshotIsStillInUse(snapshotID, strings.Join(targets, ","))
	}

	if _, err := m.client.Run(Task("stopfcmap").Flag("force").Arg(snapshotMap["id"])); err != nil && cliCode(err) != codeFCMapDoesNotExist {
		m.logger.WithField("fcmap", snapshotMap["id"]).WithError(err).Warning("Failed to stop FlashCopy mapping")
	}
	if _, err := m.client.Run(Task("rmfcmap").Flag("force").Arg(snapshotMap["id"])); err != nil && cliCode(err) != codeFCMapDoesNotExist {
		return m.translateError(err)
	}
	if err := m.deleteVolume(snapshotID, record["id"]); err != nil {
		if array.IsKind(err, array.ErrorKindVolumeNotFound) {
			return array.ErrSnapshotNotFound(snapshotID)
		}
		return err
	}
	return nil
}

func (m *Mediator) GetVolumeMappings(volumeID string) (map[string]int, error) {
	record, err := m.volumeRecordByID(volumeID)
	if err != nil {
		return nil, err
	}
	output, err := m.client.Run(Info("lsvdiskhostmap").Arg(record["id"]))
	if err != nil {
		return nil, m.translateError(err)
	}
	mappings := map[string]int{}
	for _, mapping := range ParseTable(output) {
		lun, err := strconv.Atoi(mapping["SCSI_id"])
		if err != nil {
			return nil, err
		}
		mappings[mapping["host_name"]] = lun
	}
	return mappings, nil
}

// MapVolume maps the volume at a random free SCSI id of the host
func (m *Mediator) MapVolume(volumeID string, hostName string) (int, error) {
	record, err := m.volumeRecordByID(volumeID)
	if err != nil {
		return 0, err
	}
	output, err := m.client.Run(Info("lshostvdiskmap").Arg(hostName))
	if err != nil {
		if code := cliCode(err); code == codeObjectDoesNotExist || code == codeObjectNotFound {
			return 0, hostNotFound(hostName)
		}
		return 0, m.translateError(err)
	}
	var used []int
	for _, mapping := range ParseTable(output) {
		if lun, err := strconv.Atoi(mapping["SCSI_id"]); err == nil {
			used = append(used, lun)
		}
	}
	lun, err := common.PickRandomFreeLUN(hostName, used)
	if err != nil {
		return 0, err
	}

	if _, err := m.client.Run(Task("mkvdiskhostmap").Opt("host", hostName).Opt("scsi", lun).Arg(record["id"])); err != nil {
		switch cliCode(err) {
		case codeLUNAlreadyInUse:
			return 0, array.ErrLUNAlreadyInUse(lun, hostName)
		case codeObjectDoesNotExist, codeObjectNotFound:
			return 0, hostNotFound(hostName)
		}
		return 0, array.ErrMapping(volumeID, hostName, m.translateError(err))
	}
	m.logger.WithFields(log.Fields{"volume": volumeID, "host": hostName, "lun": lun}).Info("Mapped volume")
	return lun, nil
}

func (m *Mediator) UnmapVolume(volumeID string, hostName string) error {
	record, err := m.volumeRecordByID(volumeID)
	if err != nil {
		return err
	}
	if _, err := m.client.Run(Task("rmvdiskhostmap").Opt("host", hostName).Arg(record["id"])); err != nil {
		switch cliCode(err) {
		case codeNotMapped:
			return array.ErrVolumeAlreadyUnmapped(volumeID)
		case codeObjectDoesNotExist, codeObjectNotFound:
			return hostNotFound(hostName)
		}
		return array.ErrUnMapping(volumeID, hostName, m.translateError(err))
	}
	return nil
}

func (m *Mediator) GetHostByHostIdentifiers(initiators array.Initiators) (string, []array.ConnectivityType, error) {
	output, err := m.client.Run(Info("lshost"))
	if err != nil {
		return "", nil, m.translateError(err)
	}
	var hosts []array.Host
	for _, record := range ParseTable(output) {
		detailOutput, err := m.client.Run(Info("lshost").Arg(record["id"]))
		if err != nil {
			if cliCode(err) == codeObjectDoesNotExist {
				continue
			}
			return "", nil, m.translateError(err)
		}
		detail := ParseDetail(detailOutput)
		hosts = append(hosts, array.Host{
			Name:       record["name"],
			FCPorts:    detail["WWPN"],
			ISCSINames: detail["iscsi_name"],
		})
	}
	return common.FindHostByInitiators(hosts, initiators)
}

func (m *Mediator) GetArrayFCWWNs(hostName string) ([]string, error) {
	output, err := m.client.Run(Info("lsportfc").Filter("status", portStatusActive))
	if err != nil {
		return nil, m.translateError(err)
	}
	var wwns []string
	for _, port := range ParseTable(output) {
		wwns = append(wwns, strings.ToLower(port["WWPN"]))
	}
	return wwns, nil
}

// GetISCSITargetsByIQN returns the configured IPs of each node by node IQN
func (m *Mediator) GetISCSITargetsByIQN() (map[string][]string, error) {
	nodesOutput, err := m.client.Run(Info("lsnode"))
	if err != nil {
		return nil, m.translateError(err)
	}
	portsOutput, err := m.client.Run(Info("lsportip"))
	if err != nil {
		return nil, m.translateError(err)
	}
	ipsByNode := map[string][]string{}
	for _, port := range ParseTable(portsOutput) {
		if ip := port["IP_address"]; ip != "" {
			ipsByNode[port["node_name"]] = append(ipsByNode[port["node_name"]], ip)
		}
	}
	targets := map[string][]string{}
	for _, node := range ParseTable(nodesOutput) {
		if ips := ipsByNode[node["name"]]; node["iscsi_name"] != "" && len(ips) > 0 {
			targets[node["iscsi_name"]] = ips
		}
	}
	return targets, nil
}

// GetReplication finds the remote-copy relationship between the volume and the
// volume with the given internal id on the other system
func (m *Mediator) GetReplication(volumeID string, otherVolumeID string, otherSystemID string) (*array.Replication, error) {
	record, err := m.volumeRecordByID(volumeID)
	if err != nil {
		return nil, err
	}
	relationships, err := m.relationships(record["name"])
	if err != nil {
		return nil, err
	}
	for _, relationship := range relationships {
		master := relationship["master_cluster_id"] == otherSystemID && relationship["master_vdisk_id"] == otherVolumeID
		aux := relationship["aux_cluster_id"] == otherSystemID && relationship["aux_vdisk_id"] == otherVolumeID
		if master || aux {
			return m.replicationFromRecord(relationship, volumeID, otherVolumeID), nil
		}
	}
	return nil, nil
}

func (m *Mediator) CreateReplication(volumeID string, otherVolumeID string, otherSystemID string, copyType string) error {
	record, err := m.volumeRecordByID(volumeID)
	if err != nil {
		return err
	}
	cmd := Task("mkrcrelationship").Opt("master", record["name"]).Opt("aux", otherVolumeID).Opt("cluster", otherSystemID)
	if copyType == array.CopyTypeAsync {
		cmd.Flag("global")
	}
	output, err := m.client.Run(cmd)
	if err != nil {
		if code := cliCode(err); code == codeObjectDoesNotExist || code == codeObjectNotFound {
			return array.ErrVolumeNotFound(otherVolumeID)
		}
		return m.translateError(err)
	}
	id, err := ParseCreatedID(output)
	if err != nil {
		return err
	}
	if _, err := m.client.Run(Task("startrcrelationship").Opt("primary", primaryMaster).Arg(id)); err != nil {
		return m.translateError(err)
	}
	m.logger.WithFields(log.Fields{"volume": volumeID, "other": otherVolumeID, "system": otherSystemID, "copyType": copyType}).Info("Created replication")
	return nil
}

func (m *Mediator) DeleteReplication(replicationName string) error {
	if _, err := m.client.Run(Task("rmrcrelationship").Flag("force").Arg(replicationName)); err != nil {
		if code := cliCode(err); code == codeObjectDoesNotExist || code == codeRelationshipNotFound {
			return nil
		}
		return m.translateError(err)
	}
	return nil
}

// PromoteReplicationVolume makes the local volume the primary
func (m *Mediator) PromoteReplicationVolume(replicationName string) error {
	return m.switchPrimary(replicationName, true)
}

// DemoteReplicationVolume makes the remote volume the primary
func (m *Mediator) DemoteReplicationVolume(replicationName string) error {
	return m.switchPrimary(replicationName, false)
}

func (m *Mediator) switchPrimary(replicationName string, local bool) error {
	output, err := m.client.Run(Info("lsrcrelationship").Arg(replicationName))
	if err != nil {
		if code := cliCode(err); code == codeObjectDoesNotExist || code == codeRelationshipNotFound {
			return array.NewError(array.ErrorKindVolumeNotFound, "replication %s was not found", replicationName)
		}
		return m.translateError(err)
	}
	detail := ParseDetail(output)
	localIsMaster := first(detail["master_cluster_id"]) == m.systemID
	primary := primaryAux
	if localIsMaster == local {
		primary = primaryMaster
	}
	if first(detail["primary"]) == primary {
		return nil
	}

	var cmd *Command
	switch first(detail["state"]) {
	case relationshipStateIdling, relationshipStateStopped:
		cmd = Task("startrcrelationship").Opt("primary", primary).Flag("force").Arg(replicationName)
	default:
		cmd = Task("switchrcrelationship").Opt("primary", primary).Arg(replicationName)
	}
	if _, err := m.client.Run(cmd); err != nil {
		return m.translateError(err)
	}
	m.logger.WithFields(log.Fields{"replication": replicationName, "primary": primary}).Info("Switched replication primary")
	return nil
}

func (m *Mediator) relationships(volumeName string) ([]Record, error) {
	var relationships []Record
	for _, attribute := range []string{"master_vdisk_name", "aux_vdisk_name"} {
		output, err := m.client.Run(Info("lsrcrelationship").Filter(attribute, volumeName))
		if err != nil {
			return nil, m.translateError(err)
		}
		relationships = append(relationships, ParseTable(output)...)
	}
	return relationships, nil
}

func (m *Mediator) replicationFromRecord(record Record, volumeID string, otherVolumeID string) *array.Replication {
	copyType := array.CopyTypeSync
	if record["copy_type"] == relationshipGlobal {
		copyType = array.CopyTypeAsync
	}
	primaryCluster := record["master_cluster_id"]
	if record["primary"] == primaryAux {
		primaryCluster = record["aux_cluster_id"]
	}
	return &array.Replication{
		Name:          record["name"],
		VolumeID:      volumeID,
		OtherVolumeID: otherVolumeID,
		CopyType:      copyType,
		IsReady:       record["state"] == relationshipStateSynchronized,
		IsPrimary:     primaryCluster == m.systemID,
	}
}

func (m *Mediator) findVolume(attribute string, value string) (Record, error) {
	output, err := m.client.Run(Info("lsvdisk").Flag("bytes").Filter(attribute, value))
	if err != nil {
		return nil, m.translateError(err)
	}
	records := ParseTable(output)
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func (m *Mediator) volumeRecordByID(volumeID string) (Record, error) {
	record, err := m.findVolume("vdisk_UID", volumeID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, array.ErrVolumeNotFound(volumeID)
	}
	return record, nil
}

func (m *Mediator) fcMaps(attribute string, value string) ([]Record, error) {
	output, err := m.client.Run(Info("lsfcmap").Filter(attribute, value))
	if err != nil {
		return nil, m.translateError(err)
	}
	return ParseTable(output), nil
}

// snapshotFCMap returns the FlashCopy mapping making the volume a snapshot, if any
func (m *Mediator) snapshotFCMap(volumeName string) (Record, error) {
	maps, err := m.fcMaps("target_vdisk_name", volumeName)
	if err != nil {
		return nil, err
	}
	for _, fcMap := range maps {
		if fcMap["copy_rate"] == snapshotCopyRate {
			return fcMap, nil
		}
	}
	return nil, nil
}

func (m *Mediator) createAndStartFCMap(cmd *Command) error {
	output, err := m.client.Run(cmd)
	if err != nil {
		if code := cliCode(err); code == codeObjectDoesNotExist || code == codeObjectNotFound {
			return array.NewError(array.ErrorKindVolumeNotFound, "FlashCopy source or target was not found")
		}
		return m.translateError(err)
	}
	id, err := ParseCreatedID(output)
	if err != nil {
		return err
	}
	if _, err := m.client.Run(Task("startfcmap").Flag("prep").Arg(id)); err != nil {
		return m.translateError(err)
	}
	return nil
}

func (m *Mediator) volumeFromRecord(record Record) (*array.Volume, error) {
	capacity, _ := strconv.ParseInt(record["capacity"], 10, 64)
	volume := &array.Volume{
		Name:            record["name"],
		ID:              record["vdisk_UID"],
		InternalID:      record["id"],
		CapacityBytes:   capacity,
		Pool:            record["mdisk_grp_name"],
		ArrayAddresses:  m.endpoints,
		ArrayType:       array.ArrayTypeSVC,
		SpaceEfficiency: spaceEfficiency(record),
	}
	maps, err := m.fcMaps("target_vdisk_name", volume.Name)
	if err != nil {
		return nil, err
	}
	for _, fcMap := range maps {
		source, err := m.findVolume("name", fcMap["source_vdisk_name"])
		if err != nil {
			return nil, err
		}
		if source != nil {
			volume.CopySourceID = source["vdisk_UID"]
		}
	}
	return volume, nil
}

// snapshotFromRecord returns nil when the volume is no snapshot
func (m *Mediator) snapshotFromRecord(record Record) (*array.Snapshot, error) {
	fcMap, err := m.snapshotFCMap(record["name"])
	if err != nil || fcMap == nil {
		return nil, err
	}
	capacity, _ := strconv.ParseInt(record["capacity"], 10, 64)
	snapshot := &array.Snapshot{
		Name:           record["name"],
		ID:             record["vdisk_UID"],
		InternalID:     record["id"],
		CapacityBytes:  capacity,
		ArrayAddresses: m.endpoints,
		ArrayType:      array.ArrayTypeSVC,
		IsReady:        readyFCMapStatuses[fcMap["status"]],
	}
	if startTime, err := time.ParseInLocation(fcMapTimeLayout, fcMap["start_time"], time.Local); err == nil {
		snapshot.CreationTime = startTime
	}
	source, err := m.findVolume("name", fcMap["source_vdisk_name"])
	if err != nil {
		return nil, err
	}
	if source != nil {
		snapshot.SourceVolumeID = source["vdisk_UID"]
	}
	return snapshot, nil
}

func spaceEfficiency(record Record) string {
	switch {
	case record["deduplicated_copy"] == yes:
		return array.SpaceEfficiencyDeduplicated
	case record["compressed_copy"] == yes:
		return array.SpaceEfficiencyCompressed
	case record["se_copy"] == yes:
		return array.SpaceEfficiencyThin
	}
	return array.SpaceEfficiencyThick
}

func hostNotFound(hostName string) error {
	return array.NewError(array.ErrorKindHostNotFound, "host %s was not found", hostName)
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

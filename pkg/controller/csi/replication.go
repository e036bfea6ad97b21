package csi

import (
	"github.com/csi-addons/spec/lib/go/replication"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hwameistor/array-csi/pkg/apis/array"
	"github.com/hwameistor/array-csi/pkg/utils"
)

var _ replication.ControllerServer = (*replicationServer)(nil)

// replicationServer serves the csi-addons replication api. The peer volume
// comes from the replication handle parameter.
type replicationServer struct {
	replication.UnimplementedControllerServer
	*plugin
}

type replicationRequest interface {
	GetVolumeId() string
	GetParameters() map[string]string
	GetSecrets() map[string]string
}

// EnableVolumeReplication implementation, idempotent
func (s *replicationServer) EnableVolumeReplication(ctx context.Context, req *replication.EnableVolumeReplicationRequest) (*replication.EnableVolumeReplicationResponse, error) {
	err := s.withReplication(ctx, "EnableVolumeReplication", req, func(mediator array.Mediator, replica *array.Replication, volumeID string, params *replicationParameters) error {
		if replica != nil {
			if replica.CopyType != params.copyType {
				return status.Errorf(codes.AlreadyExists, "replication %s exists with copy type %s", replica.Name, replica.CopyType)
			}
			return nil
		}
		return mediator.CreateReplication(volumeID, params.peerVolumeID(), params.otherSystemID, params.copyType)
	})
	if err != nil {
		return nil, err
	}
	return &replication.EnableVolumeReplicationResponse{}, nil
}

// DisableVolumeReplication implementation, idempotent
func (s *replicationServer) DisableVolumeReplication(ctx context.Context, req *replication.DisableVolumeReplicationRequest) (*replication.DisableVolumeReplicationResponse, error) {
	err := s.withReplication(ctx, "DisableVolumeReplication", req, func(mediator array.Mediator, replica *array.Replication, volumeID string, params *replicationParameters) error {
		if replica == nil {
			return nil
		}
		return mediator.DeleteReplication(replica.Name)
	})
	if err != nil {
		return nil, err
	}
	return &replication.DisableVolumeReplicationResponse{}, nil
}

// PromoteVolume implementation, idempotent
func (s *replicationServer) PromoteVolume(ctx context.Context, req *replication.PromoteVolumeRequest) (*replication.PromoteVolumeResponse, error) {
	err := s.withReplication(ctx, "PromoteVolume", req, func(mediator array.Mediator, replica *array.Replication, volumeID string, params *replicationParameters) error {
		if replica == nil {
			return errNotReplicated(volumeID)
		}
		if replica.IsPrimary {
			return nil
		}
		return mediator.PromoteReplicationVolume(replica.Name)
	})
	if err != nil {
		return nil, err
	}
	return &replication.PromoteVolumeResponse{}, nil
}

// DemoteVolume implementation, idempotent
func (s *replicationServer) DemoteVolume(ctx context.Context, req *replication.DemoteVolumeRequest) (*replication.DemoteVolumeResponse, error) {
	err := s.withReplication(ctx, "DemoteVolume", req, func(mediator array.Mediator, replica *array.Replication, volumeID string, params *replicationParameters) error {
		if replica == nil {
			return errNotReplicated(volumeID)
		}
		if !replica.IsPrimary {
			return nil
		}
		return mediator.DemoteReplicationVolume(replica.Name)
	})
	if err != nil {
		return nil, err
	}
	return &replication.DemoteVolumeResponse{}, nil
}

// ResyncVolume reports whether the replica is in sync; the array resyncs on its own
func (s *replicationServer) ResyncVolume(ctx context.Context, req *replication.ResyncVolumeRequest) (*replication.ResyncVolumeResponse, error) {
	ready := false
	err := s.withReplication(ctx, "ResyncVolume", req, func(mediator array.Mediator, replica *array.Replication, volumeID string, params *replicationParameters) error {
		if replica == nil {
			return errNotReplicated(volumeID)
		}
		ready = replica.IsReady
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &replication.ResyncVolumeResponse{Ready: ready}, nil
}

func errNotReplicated(volumeID string) error {
	return status.Errorf(codes.NotFound, "volume %s is not replicated", volumeID)
}

// withReplication parses the request, holds the volume and looks the
// replication up before running fn
func (s *replicationServer) withReplication(ctx context.Context, method string, req replicationRequest, fn func(mediator array.Mediator, replica *array.Replication, volumeID string, params *replicationParameters) error) error {
	logCtx := s.logger.WithFields(log.Fields{"volume": req.GetVolumeId(), "requestID": utils.RequestID(ctx)})
	logCtx.Debug(method)

	if req.GetVolumeId() == "" {
		return status.Error(codes.InvalidArgument, "volume id is required")
	}
	ids, err := array.ParseObjectID(req.GetVolumeId())
	if err != nil {
		return status.Error(codes.NotFound, err.Error())
	}
	params, err := parseReplicationParameters(s.config.Controller.Parameters, req.GetParameters())
	if err != nil {
		return toGRPCError(err)
	}
	secrets, err := parseSecrets(req.GetSecrets(), ids.SystemID)
	if err != nil {
		return toGRPCError(err)
	}
	logCtx = logCtx.WithFields(log.Fields{"peer": params.peerVolumeID(), "peerSystem": params.otherSystemID, "copyType": params.copyType})

	err = s.locks.run(lockKindVolume, req.GetVolumeId(), func() error {
		storageAgent, err := s.registry.GetAgent(secrets.user, secrets.password, secrets.endpoints, ids.ArrayType)
		if err != nil {
			return err
		}
		return storageAgent.Do(func(mediator array.Mediator) error {
			replica, err := mediator.GetReplication(ids.ID, params.peerVolumeID(), params.otherSystemID)
			if err != nil {
				return err
			}
			return fn(mediator, replica, ids.ID, params)
		})
	})
	if err != nil {
		logCtx.WithError(err).Errorf("Failed to %s", method)
		return toGRPCError(err)
	}
	logCtx.Infof("%s succeeded", method)
	return nil
}

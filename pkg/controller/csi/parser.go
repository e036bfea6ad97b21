package csi

import (
	"strings"

	csi "github.com/container-storage-interface/spec/lib/go/csi"
	"github.com/tidwall/gjson"

	"github.com/hwameistor/array-csi/pkg/apis/array"
	"github.com/hwameistor/array-csi/pkg/config"
)

// secret keys
const (
	secretUsername          = "username"
	secretPassword          = "password"
	secretManagementAddress = "management_address"
	secretConfig            = "config"

	endpointSeparator = ","
)

type arraySecrets struct {
	user      string
	password  string
	endpoints []string
}

type volumeParameters struct {
	pool            string
	spaceEfficiency string
	prefix          string
	ioGroup         string
	volumeGroup     string
	systemID        string
}

type snapshotParameters struct {
	pool     string
	prefix   string
	systemID string
}

type replicationParameters struct {
	otherIDs      array.ObjectIDs
	otherSystemID string
	copyType      string
}

type contentSource struct {
	kind array.ObjectKind
	ids  array.ObjectIDs
}

// parseSecrets reads the flat credentials, or the entry of systemID in the
// consolidated config secret
func parseSecrets(secrets map[string]string, systemID string) (*arraySecrets, error) {
	if raw, ok := secrets[secretConfig]; ok {
		return parseConfigSecret(raw, systemID)
	}
	return newArraySecrets(secrets[secretUsername], secrets[secretPassword], secrets[secretManagementAddress])
}

func parseConfigSecret(raw string, systemID string) (*arraySecrets, error) {
	if !gjson.Valid(raw) {
		return nil, array.ErrValidation("secret %s is not valid JSON", secretConfig)
	}
	systems := gjson.Parse(raw)
	if !systems.IsObject() {
		return nil, array.ErrValidation("secret %s must map system ids to credentials", secretConfig)
	}

	var entry gjson.Result
	if systemID != "" {
		systems.ForEach(func(key, value gjson.Result) bool {
			if key.String() == systemID {
				entry = value
				return false
			}
			return true
		})
		if !entry.Exists() {
			return nil, array.ErrValidation("system id %s is not in secret %s", systemID, secretConfig)
		}
	} else {
		count := 0
		systems.ForEach(func(key, value gjson.Result) bool {
			entry = value
			count++
			return true
		})
		if count != 1 {
			return nil, array.ErrValidation("system id is required when secret %s holds %d systems", secretConfig, count)
		}
	}

	return newArraySecrets(
		entry.Get(secretUsername).String(),
		entry.Get(secretPassword).String(),
		entry.Get(secretManagementAddress).String(),
	)
}

func newArraySecrets(user string, password string, managementAddress string) (*arraySecrets, error) {
	endpoints := splitTrimmed(managementAddress, endpointSeparator)
	if user == "" || password == "" || len(endpoints) == 0 {
		return nil, array.ErrValidation("secrets must carry %s, %s and %s", secretUsername, secretPassword, secretManagementAddress)
	}
	return &arraySecrets{user: user, password: password, endpoints: endpoints}, nil
}

func parseVolumeParameters(keys config.ParametersConfig, params map[string]string) (*volumeParameters, error) {
	pool := strings.TrimSpace(params[keys.Pool])
	if pool == "" {
		return nil, array.ErrValidation("parameter %s is required", keys.Pool)
	}
	return &volumeParameters{
		pool:            pool,
		spaceEfficiency: strings.ToLower(strings.TrimSpace(params[keys.SpaceEfficiency])),
		prefix:          params[keys.VolumeNamePrefix],
		ioGroup:         params[keys.IOGroup],
		volumeGroup:     params[keys.VolumeGroup],
		systemID:        params[keys.SystemID],
	}, nil
}

func parseSnapshotParameters(keys config.ParametersConfig, params map[string]string) *snapshotParameters {
	return &snapshotParameters{
		pool:     strings.TrimSpace(params[keys.Pool]),
		prefix:   params[keys.SnapshotNamePrefix],
		systemID: params[keys.SystemID],
	}
}

// parseReplicationParameters reads the peer volume from the replication
// handle; an explicit system id overrides the one in the handle
func parseReplicationParameters(keys config.ParametersConfig, params map[string]string) (*replicationParameters, error) {
	handle := params[keys.ReplicationHandle]
	if handle == "" {
		return nil, array.ErrValidation("parameter %s is required", keys.ReplicationHandle)
	}
	otherIDs, err := array.ParseObjectID(handle)
	if err != nil {
		return nil, err
	}
	otherSystemID := params[keys.SystemID]
	if otherSystemID == "" {
		otherSystemID = otherIDs.SystemID
	}
	if otherSystemID == "" {
		return nil, array.ErrValidation("parameter %s is required", keys.SystemID)
	}

	copyType := strings.ToLower(params[keys.CopyType])
	switch copyType {
	case "":
		copyType = array.CopyTypeSync
	case array.CopyTypeSync, array.CopyTypeAsync:
	default:
		return nil, array.ErrValidation("parameter %s must be %s or %s, got %q", keys.CopyType, array.CopyTypeSync, array.CopyTypeAsync, copyType)
	}
	return &replicationParameters{otherIDs: otherIDs, otherSystemID: otherSystemID, copyType: copyType}, nil
}

// peerVolumeID is the id the local array knows the peer volume by
func (r *replicationParameters) peerVolumeID() string {
	if r.otherIDs.InternalID != "" {
		return r.otherIDs.InternalID
	}
	return r.otherIDs.ID
}

func parseContentSource(source *csi.VolumeContentSource) (*contentSource, error) {
	if source == nil {
		return nil, nil
	}
	var (
		kind array.ObjectKind
		id   string
	)
	switch {
	case source.GetSnapshot() != nil:
		kind, id = array.ObjectKindSnapshot, source.GetSnapshot().GetSnapshotId()
	case source.GetVolume() != nil:
		kind, id = array.ObjectKindVolume, source.GetVolume().GetVolumeId()
	default:
		return nil, array.ErrValidation("unsupported volume content source")
	}
	ids, err := array.ParseObjectID(id)
	if err != nil {
		return nil, err
	}
	return &contentSource{kind: kind, ids: ids}, nil
}

// validateVolumeCapabilities accepts single node writers on ext4, xfs or raw block
func validateVolumeCapabilities(cfg *config.Config, caps []*csi.VolumeCapability) error {
	if len(caps) == 0 {
		return array.ErrValidation("volume capabilities are required")
	}
	for _, c := range caps {
		if err := validateVolumeCapability(cfg, c); err != nil {
			return err
		}
	}
	return nil
}

func validateVolumeCapability(cfg *config.Config, c *csi.VolumeCapability) error {
	if c == nil {
		return array.ErrValidation("volume capability is required")
	}
	if mode := c.GetAccessMode().GetMode(); mode != csi.VolumeCapability_AccessMode_SINGLE_NODE_WRITER {
		return array.ErrValidation("unsupported access mode %s", mode.String())
	}
	switch {
	case c.GetBlock() != nil:
		return nil
	case c.GetMount() != nil:
		if fsType := c.GetMount().GetFsType(); !cfg.IsSupportedFSType(fsType) {
			return array.ErrValidation("unsupported fs type %q", fsType)
		}
		return nil
	}
	return array.ErrValidation("volume capability has no access type")
}

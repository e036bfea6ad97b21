package array

// MediatorTraits are the static properties of one array family
type MediatorTraits struct {
	ArrayType string
	// Port is the management port; the autodetector probes it
	Port           int
	MaxConnections int

	MaxObjectNameLength     int
	MaxObjectPrefixLength   int
	MaxSnapshotNameLength   int
	MaxSnapshotPrefixLength int

	MinimalVolumeSizeBytes int64
	MaximalVolumeSizeBytes int64

	MaxLUNRetries int
}

// Mediator is an authenticated session to exactly one array exposing the
// uniform storage operations. A mediator is not safe for concurrent use;
// the connection pool hands it to one caller at a time.
//
//go:generate mockgen -source=interface.go -destination=mediator_mock.go -package=array
type Mediator interface {
	Disconnect()

	IsActive() bool

	Traits() MediatorTraits

	// Identifier is the system id of the array
	Identifier() string

	ValidateSupportedSpaceEfficiency(spaceEfficiency string) error

	// ******  volumes ******* //
	GetVolume(name string, pool string) (*Volume, error)

	GetVolumeByID(volumeID string) (*Volume, error)

	CreateVolume(name string, sizeBytes int64, spaceEfficiency string, pool string, ioGroup string, volumeGroup string) (*Volume, error)

	CopyToExistingVolumeFromSource(volumeID string, sourceID string, sourceKind ObjectKind, sourceCapacityBytes int64, minimalVolumeSizeBytes int64) error

	DeleteVolume(volumeID string) error

	ExpandVolume(volumeID string, requiredBytes int64) error

	IsVolumeHasSnapshots(volumeID string) (bool, error)

	// ******  snapshots ******* //
	GetSnapshot(volumeID string, snapshotName string, pool string) (*Snapshot, error)

	GetSnapshotByID(snapshotID string) (*Snapshot, error)

	CreateSnapshot(volumeID string, snapshotName string, pool string) (*Snapshot, error)

	DeleteSnapshot(snapshotID string) error

	// ******  host mappings ******* //
	// GetVolumeMappings returns the LUN of the volume per host name
	GetVolumeMappings(volumeID string) (map[string]int, error)

	MapVolume(volumeID string, hostName string) (int, error)

	UnmapVolume(volumeID string, hostName string) error

	GetHostByHostIdentifiers(initiators Initiators) (string, []ConnectivityType, error)

	GetArrayFCWWNs(hostName string) ([]string, error)

	// GetISCSITargetsByIQN returns the portal IPs of the array per target IQN
	GetISCSITargetsByIQN() (map[string][]string, error)

	// ******  replication ******* //
	// GetReplication returns nil when the volumes are not replicated
	GetReplication(volumeID string, otherVolumeID string, otherSystemID string) (*Replication, error)

	CreateReplication(volumeID string, otherVolumeID string, otherSystemID string, copyType string) error

	DeleteReplication(replicationName string) error

	PromoteReplicationVolume(replicationName string) error

	DemoteReplicationVolume(replicationName string) error
}

// MediatorFactory connects a new mediator to the array behind the endpoints
type MediatorFactory func(user string, password string, endpoints []string) (Mediator, error)

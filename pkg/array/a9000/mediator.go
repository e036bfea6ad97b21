package a9000

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
	blockSize = 512

	snapshotTimeLayout = "2006-01-02 15:04:05"

	portStateOnline = "Online"
	portRoleTarget  = "Target"
	interfaceISCSI  = "iSCSI"
)

// Traits of the A9000/XIV family
var Traits = array.MediatorTraits{
	ArrayType:               array.ArrayTypeA9000,
	Port:                    7778,
	MaxConnections:          2,
	MaxObjectNameLength:     63,
	MaxObjectPrefixLength:   20,
	MaxSnapshotNameLength:   63,
	MaxSnapshotPrefixLength: 20,
	MinimalVolumeSizeBytes:  1 << 30,
	MaximalVolumeSizeBytes:  1 << 50,
	MaxLUNRetries:           10,
}

var _ array.Mediator = &Mediator{}

// Mediator drives an A9000/XIV array through XCLI
type Mediator struct {
	client    Client
	endpoint  string
	endpoints []string
	systemID  string

	logger *log.Entry
}

// NewMediator connects to the first reachable endpoint; it is the array.MediatorFactory of the family
func NewMediator(user string, password string, endpoints []string) (array.Mediator, error) {
	client, err := Dial(user, password, endpoints, Traits.Port)
	if err != nil {
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
		logger:    log.WithFields(log.Fields{"Module": "A9000Mediator", "endpoints": endpoints}),
	}
	config, err := client.Run("config_get")
	if err != nil {
		client.Close()
		return nil, m.translateError(err)
	}
	m.systemID = configValue(config, "system_id")
	m.logger.WithField("systemID", m.systemID).Debug("Connected")
	return m, nil
}

// Disconnect closes the XCLI session
func (m *Mediator) Disconnect() {
	if err := m.client.Close(); err != nil {
		m.logger.WithError(err).Debug("Failed to close XCLI session")
	}
}

// IsActive reports whether the XCLI session is usable
func (m *Mediator) IsActive() bool {
	return m.client.Alive()
}

// Traits of the family
func (m *Mediator) Traits() array.MediatorTraits {
	return Traits
}

// Identifier is the system id of the array
func (m *Mediator) Identifier() string {
	return m.systemID
}

// ValidateSupportedSpaceEfficiency accepts none; thin provisioning is a pool property on this family
func (m *Mediator) ValidateSupportedSpaceEfficiency(spaceEfficiency string) error {
	if spaceEfficiency != "" {
		return array.ErrStorageClassCapabilityNotSupported(spaceEfficiency)
	}
	return nil
}

func (m *Mediator) GetVolume(name string, pool string) (*array.Volume, error) {
	record, err := m.findObject(A("vol", name))
	if err != nil {
		return nil, err
	}
	if record == nil || isSnapshotRecord(record) {
		return nil, array.ErrVolumeNotFound(name)
	}
	return m.volumeFromRecord(record), nil
}

func (m *Mediator) GetVolumeByID(volumeID string) (*array.Volume, error) {
	record, err := m.volumeRecordByID(volumeID)
	if err != nil {
		return nil, err
	}
	return m.volumeFromRecord(record), nil
}

func (m *Mediator) CreateVolume(name string, sizeBytes int64, spaceEfficiency string, pool string, ioGroup string, volumeGroup string) (*array.Volume, error) {
	logCtx := m.logger.WithFields(log.Fields{"volume": name, "size": sizeBytes, "pool": pool})
	if err := m.ValidateSupportedSpaceEfficiency(spaceEfficiency); err != nil {
		return nil, err
	}

	_, err := m.client.Run("vol_create", A("vol", name), A("size_blocks", bytesToBlocks(sizeBytes)), A("pool", pool))
	if err != nil {
		logCtx.WithError(err).Error("Failed to create volume")
		switch commandCode(err) {
		case codeVolumeExists:
			return nil, array.ErrVolumeAlreadyExists(name, m.endpoint)
		case codePoolDoesNotExist:
			return nil, array.ErrPoolDoesNotExist(pool, m.endpoint)
		case codeNoSpace:
			return nil, array.WrapError(array.ErrorKindVolumeCreation, err, "not enough space in pool %s", pool)
		}
		return nil, m.translateError(err)
	}
	logCtx.Info("Created volume")
	return m.GetVolume(name, pool)
}

func (m *Mediator) CopyToExistingVolumeFromSource(volumeID string, sourceID string, sourceKind array.ObjectKind, sourceCapacityBytes int64, minimalVolumeSizeBytes int64) error {
	target, err := m.volumeRecordByID(volumeID)
	if err != nil {
		return err
	}
	source, err := m.findObject(A("wwn", sourceID))
	if err != nil {
		return err
	}
	if source == nil {
		return sourceNotFound(sourceKind, sourceID)
	}

	targetName := target.Get("name")
	if _, err := m.client.Run("vol_copy", A("vol_src", source.Get("name")), A("vol_trg", targetName)); err != nil {
		switch commandCode(err) {
		case codeTargetVolumeBadName:
			return array.ErrVolumeNotFound(volumeID)
		case codeSourceVolumeBadName:
			return sourceNotFound(sourceKind, sourceID)
		}
		return m.translateError(err)
	}
	if minimalVolumeSizeBytes > sourceCapacityBytes {
		if _, err := m.client.Run("vol_resize", A("vol", targetName), A("size_blocks", bytesToBlocks(minimalVolumeSizeBytes))); err != nil {
			return m.translateError(err)
		}
	}
	m.logger.WithFields(log.Fields{"volume": volumeID, "source": sourceID, "kind": sourceKind}).Info("Copied source to volume")
	return nil
}

func (m *Mediator) DeleteVolume(volumeID string) error {
	record, err := m.volumeRecordByID(volumeID)
	if err != nil {
		return err
	}
	if _, err := m.client.Run("vol_delete", A("vol", record.Get("name"))); err != nil {
		switch commandCode(err) {
		case codeVolumeBadName:
			return array.ErrVolumeNotFound(volumeID)
		case codeVolumeHasSnapshots:
			return array.WrapError(array.ErrorKindVolumeDeletion, err, "volume %s has snapshots", volumeID)
		}
		return m.translateError(err)
	}
	m.logger.WithField("volume", volumeID).Info("Deleted volume")
	return nil
}

func (m *Mediator) ExpandVolume(volumeID string, requiredBytes int64) error {
	record, err := m.volumeRecordByID(volumeID)
	if err != nil {
		return err
	}
	if _, err := m.client.Run("vol_resize", A("vol", record.Get("name")), A("size_blocks", bytesToBlocks(requiredBytes))); err != nil {
		if commandCode(err) == codeVolumeBadName {
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
	snapshots, err := m.client.Run("snapshot_list", A("vol", record.Get("name")))
	if err != nil {
		return false, m.translateError(err)
	}
	return len(snapshots) > 0, nil
}

func (m *Mediator) GetSnapshot(volumeID string, snapshotName string, pool string) (*array.Snapshot, error) {
	record, err := m.findObject(A("vol", snapshotName))
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, array.ErrSnapshotNotFound(snapshotName)
	}
	if !isSnapshotRecord(record) {
		return nil, array.ErrSnapshotNameBelongsToVolume(snapshotName, m.endpoint)
	}
	return m.snapshotFromRecord(record)
}

func (m *Mediator) GetSnapshotByID(snapshotID string) (*array.Snapshot, error) {
	record, err := m.findObject(A("wwn", snapshotID))
	if err != nil {
		return nil, err
	}
	if record == nil || !isSnapshotRecord(record) {
		return nil, array.ErrSnapshotNotFound(snapshotID)
	}
	return m.snapshotFromRecord(record)
}

func (m *Mediator) CreateSnapshot(volumeID string, snapshotName string, pool string) (*array.Snapshot, error) {
	source, err := m.volumeRecordByID(volumeID)
	if err != nil {
		return nil, err
	}
	if _, err := m.client.Run("snapshot_create", A("vol", source.Get("name")), A("name", snapshotName)); err != nil {
		switch commandCode(err) {
		case codeVolumeExists:
			return nil, array.ErrSnapshotAlreadyExists(snapshotName, m.endpoint)
		case codeVolumeBadName:
			return nil, array.ErrVolumeNotFound(volumeID)
		}
		return nil, m.translateError(err)
	}
	m.logger.WithFields(log.Fields{"volume": volumeID, "snapshot": snapshotName}).Info("Created snapshot")
	return m.GetSnapshot(volumeID, snapshotName, pool)
}

func (m *Mediator) DeleteSnapshot(snapshotID string) error {
	record, err := m.findObject(A("wwn", snapshotID))
	if err != nil {
		return err
	}
	if record == nil || !isSnapshotRecord(record) {
		return array.ErrSnapshotNotFound(snapshotID)
	}
	if _, err := m.client.Run("snapshot_delete", A("snapshot", record.Get("name"))); err != nil {
		switch commandCode(err) {
		case codeVolumeBadName:
			return array.ErrSnapshotNotFound(snapshotID)
		case codeSnapshotIsMapped:
			return array.ErrSnapshotIsStillInUse(snapshotID, "host mapping")
		}
		return m.translateError(err)
	}
	m.logger.WithField("snapshot", snapshotID).Info("Deleted snapshot")
	return nil
}

func (m *Mediator) GetVolumeMappings(volumeID string) (map[string]int, error) {
	record, err := m.volumeRecordByID(volumeID)
	if err != nil {
		return nil, err
	}
	records, err := m.client.Run("vol_mapping_list", A("vol", record.Get("name")))
	if err != nil {
		return nil, m.translateError(err)
	}
	mappings := make(map[string]int, len(records))
	for _, mapping := range records {
		lun, err := strconv.Atoi(mapping.Get("lun"))
		if err != nil {
			return nil, err
		}
		mappings[mapping.Get("host")] = lun
	}
	return mappings, nil
}

// MapVolume maps the volume at a random free LUN of the host
func (m *Mediator) MapVolume(volumeID string, hostName string) (int, error) {
	record, err := m.volumeRecordByID(volumeID)
	if err != nil {
		return 0, err
	}
	hostMappings, err := m.client.Run("mapping_list", A("host", hostName))
	if err != nil {
		if commandCode(err) == codeHostBadName {
			return 0, hostNotFound(hostName)
		}
		return 0, m.translateError(err)
	}
	used := make([]int, 0, len(hostMappings))
	for _, mapping := range hostMappings {
		if lun, err := strconv.Atoi(mapping.Get("lun")); err == nil {
			used = append(used, lun)
		}
	}
	lun, err := common.PickRandomFreeLUN(hostName, used)
	if err != nil {
		return 0, err
	}

	if _, err := m.client.Run("map_vol", A("host", hostName), A("vol", record.Get("name")), A("lun", lun)); err != nil {
		switch commandCode(err) {
		case codeLUNAlreadyInUse:
			return 0, array.ErrLUNAlreadyInUse(lun, hostName)
		case codeHostBadName:
			return 0, hostNotFound(hostName)
		case codeVolumeBadName:
			return 0, array.ErrVolumeNotFound(volumeID)
		}
		return 0, array.ErrMapping(volumeID, hostName, err)
	}
	m.logger.WithFields(log.Fields{"volume": volumeID, "host": hostName, "lun": lun}).Info("Mapped volume")
	return lun, nil
}

func (m *Mediator) UnmapVolume(volumeID string, hostName string) error {
	record, err := m.volumeRecordByID(volumeID)
	if err != nil {
		return err
	}
	if _, err := m.client.Run("unmap_vol", A("host", hostName), A("vol", record.Get("name"))); err != nil {
		switch commandCode(err) {
		case codeVolumeNotMapped:
			return array.ErrVolumeAlreadyUnmapped(volumeID)
		case codeHostBadName:
			return hostNotFound(hostName)
		case codeVolumeBadName:
			return array.ErrVolumeNotFound(volumeID)
		}
		return array.ErrUnMapping(volumeID, hostName, err)
	}
	return nil
}

func (m *Mediator) GetHostByHostIdentifiers(initiators array.Initiators) (string, []array.ConnectivityType, error) {
	records, err := m.client.Run("host_list")
	if err != nil {
		return "", nil, m.translateError(err)
	}
	hosts := make([]array.Host, 0, len(records))
	for _, record := range records {
		hosts = append(hosts, array.Host{
			Name:       record.Get("name"),
			FCPorts:    common.SplitList(record.Get("fc_ports"), ","),
			ISCSINames: common.SplitList(record.Get("iscsi_ports"), ","),
		})
	}
	return common.FindHostByInitiators(hosts, initiators)
}

// GetArrayFCWWNs returns the online target ports of the array
func (m *Mediator) GetArrayFCWWNs(hostName string) ([]string, error) {
	records, err := m.client.Run("fc_port_list")
	if err != nil {
		return nil, m.translateError(err)
	}
	var wwns []string
	for _, port := range records {
		if port.Get("port_state") == portStateOnline && port.Get("role") == portRoleTarget {
			wwns = append(wwns, strings.ToLower(port.Get("wwpn")))
		}
	}
	return wwns, nil
}

func (m *Mediator) GetISCSITargetsByIQN() (map[string][]string, error) {
	config, err := m.client.Run("config_get")
	if err != nil {
		return nil, m.translateError(err)
	}
	iqn := configValue(config, "iscsi_name")
	if iqn == "" {
		return map[string][]string{}, nil
	}
	interfaces, err := m.client.Run("ipinterface_list")
	if err != nil {
		return nil, m.translateError(err)
	}
	var ips []string
	for _, iface := range interfaces {
		if iface.Get("type") != interfaceISCSI {
			continue
		}
		if address := iface.Get("address"); address != "" {
			ips = append(ips, address)
		}
	}
	return map[string][]string{iqn: ips}, nil
}

func (m *Mediator) GetReplication(volumeID string, otherVolumeID string, otherSystemID string) (*array.Replication, error) {
	return nil, array.ErrNotSupported(array.ArrayTypeA9000, "replication")
}

func (m *Mediator) CreateReplication(volumeID string, otherVolumeID string, otherSystemID string, copyType string) error {
	return array.ErrNotSupported(array.ArrayTypeA9000, "replication")
}

func (m *Mediator) DeleteReplication(replicationName string) error {
	return array.ErrNotSupported(array.ArrayTypeA9000, "replication")
}

func (m *Mediator) PromoteReplicationVolume(replicationName string) error {
	return array.ErrNotSupported(array.ArrayTypeA9000, "replication")
}

func (m *Mediator) DemoteReplicationVolume(replicationName string) error {
	return array.ErrNotSupported(array.ArrayTypeA9000, "replication")
}

// findObject returns the single volume or snapshot matching the filter, or nil
func (m *Mediator) findObject(filter Arg) (*Record, error) {
	records, err := m.client.Run("vol_list", filter)
	if err != nil {
		if commandCode(err) == codeVolumeBadName {
			return nil, nil
		}
		return nil, m.translateError(err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (m *Mediator) volumeRecordByID(volumeID string) (*Record, error) {
	record, err := m.findObject(A("wwn", volumeID))
	if err != nil {
		return nil, err
	}
	if record == nil || isSnapshotRecord(record) {
		return nil, array.ErrVolumeNotFound(volumeID)
	}
	return record, nil
}

func (m *Mediator) volumeFromRecord(record *Record) *array.Volume {
	return &array.Volume{
		Name:           record.Get("name"),
		ID:             record.Get("wwn"),
		CapacityBytes:  blocksToBytes(record.Get("capacity")),
		Pool:           record.Get("pool_name"),
		ArrayAddresses: m.endpoints,
		ArrayType:      array.ArrayTypeA9000,
		CopySourceID:   record.Get("copy_master_wwn"),
	}
}

func (m *Mediator) snapshotFromRecord(record *Record) (*array.Snapshot, error) {
	snapshot := &array.Snapshot{
		Name:           record.Get("name"),
		ID:             record.Get("wwn"),
		CapacityBytes:  blocksToBytes(record.Get("capacity")),
		ArrayAddresses: m.endpoints,
		ArrayType:      array.ArrayTypeA9000,
		IsReady:        true,
	}
	if created, err := time.ParseInLocation(snapshotTimeLayout, record.Get("creation_time"), time.UTC); err == nil {
		snapshot.CreationTime = created
	}
	master, err := m.findObject(A("vol", record.Get("master_name")))
	if err != nil {
		return nil, err
	}
	if master != nil {
		snapshot.SourceVolumeID = master.Get("wwn")
	}
	return snapshot, nil
}

func isSnapshotRecord(record *Record) bool {
	return record.Get("master_name") != ""
}

func configValue(records []Record, name string) string {
	for _, record := range records {
		if record.Get("name") == name {
			return record.Get("value")
		}
	}
	return ""
}

func sourceNotFound(kind array.ObjectKind, id string) error {
	if kind == array.ObjectKindSnapshot {
		return array.ErrSnapshotNotFound(id)
	}
	return array.ErrVolumeNotFound(id)
}

func hostNotFound(hostName string) error {
	return array.NewError(array.ErrorKindHostNotFound, "host %s was not found", hostName)
}

func bytesToBlocks(sizeBytes int64) int64 {
	return (sizeBytes + blockSize - 1) / blockSize
}

func blocksToBytes(blocks string) int64 {
	n, _ := strconv.ParseInt(blocks, 10, 64)
	return n * blockSize
}

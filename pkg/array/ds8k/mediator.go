package ds8k

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/hwameistor/array-csi/pkg/apis/array"
	"github.com/hwameistor/array-csi/pkg/array/common"
)

// consts
const (
	thinProvisioned  = "ese"
	thickProvisioned = "none"
	storageTypeFB    = "fb"
	capacityInBytes  = "bytes"

	flashCopyStateValid = "valid"
	ioPortStateOnline   = "online"

	optionNoBackgroundCopy  = "no_background_copy"
	optionPermitSpaceTarget = "permit_space_efficient_target"
	optionPersistent        = "persistent"
	minimalSupportedRelease = "7.5.1"
)

// Traits of the DS8K family. The array assigns LUNs itself so a mapping never collides.
var Traits = array.MediatorTraits{
	ArrayType:               array.ArrayTypeDS8K,
	Port:                    8452,
	MaxConnections:          50,
	MaxObjectNameLength:     16,
	MaxObjectPrefixLength:   5,
	MaxSnapshotNameLength:   16,
	MaxSnapshotPrefixLength: 5,
	MinimalVolumeSizeBytes:  512,
	MaximalVolumeSizeBytes:  16 << 40,
	MaxLUNRetries:           1,
}

var _ array.Mediator = &Mediator{}

// Mediator drives a DS8K through its REST API. Snapshots are volumes that
// are the target of a FlashCopy without background copy.
type Mediator struct {
	client    Client
	endpoint  string
	endpoints []string
	systemID  string

	logger *log.Entry
}

// NewMediator logs in to the first endpoint accepting the credentials
func NewMediator(user string, password string, endpoints []string) (array.Mediator, error) {
	client, err := Dial(user, password, endpoints, Traits.Port)
	if err != nil {
		if status, code := restCode(err); status == http.StatusUnauthorized || code == codeInvalidCredentials {
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
		logger:    log.WithFields(log.Fields{"Module": "DS8KMediator", "endpoints": endpoints}),
	}
	systems, err := client.Get("/systems")
	if err != nil {
		client.Close()
		return nil, m.translateError(err)
	}
	system := systems.Get("systems.0")
	release := system.Get("release").String()
	if compareReleases(release, minimalSupportedRelease) < 0 {
		client.Close()
		return nil, array.ErrUnsupportedStorageVersion(release, minimalSupportedRelease)
	}
	m.systemID = system.Get("id").String()
	m.logger.WithFields(log.Fields{"systemID": m.systemID, "release": release}).Debug("Connected")
	return m, nil
}

// Disconnect logs out
func (m *Mediator) Disconnect() {
	if err := m.client.Close(); err != nil {
		m.logger.WithError(err).Debug("Failed to log out")
	}
}

// IsActive reports whether the session still holds a token
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

// ValidateSupportedSpaceEfficiency accepts thin and none
func (m *Mediator) ValidateSupportedSpaceEfficiency(spaceEfficiency string) error {
	switch spaceEfficiency {
	case "", array.SpaceEfficiencyThin, array.SpaceEfficiencyNone:
		return nil
	}
	return array.ErrStorageClassCapabilityNotSupported(spaceEfficiency)
}

func (m *Mediator) GetVolume(name string, pool string) (*array.Volume, error) {
	if pool == "" {
		return nil, array.ErrValidation("pool is required to look up volume %s", name)
	}
	record, err := m.volumeRecordByName(name, pool)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, array.ErrVolumeNotFound(name)
	}
	return m.volumeFromRecord(*record)
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
	record, err := m.createVolume(name, sizeBytes, provisioning(spaceEfficiency), pool)
	if err != nil {
		return nil, err
	}
	return m.volumeFromRecord(record)
}

func (m *Mediator) createVolume(name string, sizeBytes int64, tp string, pool string) (gjson.Result, error) {
	logCtx := m.logger.WithFields(log.Fields{"volume": name, "size": sizeBytes, "pool": pool})

	existing, err := m.volumeRecordByName(name, pool)
	if err != nil {
		return gjson.Result{}, err
	}
	if existing != nil {
		return gjson.Result{}, array.ErrVolumeAlreadyExists(name, m.endpoint)
	}

	data, err := m.client.Post("/volumes", map[string]string{
		"name":    name,
		"cap":     strconv.FormatInt(sizeBytes, 10),
		"captype": capacityInBytes,
		"pool":    pool,
		"stgtype": storageTypeFB,
		"tp":      tp,
	})
	if err != nil {
		logCtx.WithError(err).Error("Failed to create volume")
		switch {
		case isNotFound(err, codePoolNotFound):
			return gjson.Result{}, array.ErrPoolDoesNotExist(pool, m.endpoint)
		case hasCode(err, codeNotEnoughSpace):
			return gjson.Result{}, array.WrapError(array.ErrorKindVolumeCreation, err, "not enough space in pool %s", pool)
		}
		return gjson.Result{}, m.translateError(err)
	}
	logCtx.Info("Created volume")
	return data.Get("volumes.0"), nil
}

func (m *Mediator) CopyToExistingVolumeFromSource(volumeID string, sourceID string, sourceKind array.ObjectKind, sourceCapacityBytes int64, minimalVolumeSizeBytes int64) error {
	if _, err := m.volumeRecordByID(volumeID); err != nil {
		return err
	}
	if _, err := m.volumeRecordByID(sourceID); err != nil {
		if array.IsKind(err, array.ErrorKindVolumeNotFound) && sourceKind == array.ObjectKindSnapshot {
			return array.ErrSnapshotNotFound(sourceID)
		}
		return err
	}
	if err := m.createFlashCopy(sourceID, volumeID, []string{optionPermitSpaceTarget}); err != nil {
		return err
	}
	if minimalVolumeSizeBytes > sourceCapacityBytes {
		return m.ExpandVolume(volumeID, minimalVolumeSizeBytes)
	}
	return nil
}

// DeleteVolume removes the FlashCopy relations the volume is the target of before removing it
func (m *Mediator) DeleteVolume(volumeID string) error {
	if _, err := m.volumeRecordByID(volumeID); err != nil {
		return err
	}
	relations, err := m.flashCopies(volumeID)
	if err != nil {
		return err
	}
	for _, relation := range relations {
		if relation.Get("targetvolume.id").String() == volumeID {
			if err := m.deleteFlashCopy(relation.Get("id").String()); err != nil {
				return err
			}
		}
	}
	return m.deleteVolume(volumeID)
}

func (m *Mediator) deleteVolume(volumeID string) error {
	if _, err := m.client.Delete("/volumes/" + url.PathEscape(volumeID)); err != nil {
		if isNotFound(err, codeVolumeNotFound) {
			return array.ErrVolumeNotFound(volumeID)
		}
		return array.WrapError(array.ErrorKindVolumeDeletion, m.translateError(err), "failed to delete volume %s", volumeID)
	}
	m.logger.WithField("volume", volumeID).Info("Deleted volume")
	return nil
}

func (m *Mediator) ExpandVolume(volumeID string, requiredBytes int64) error {
	_, err := m.client.Put("/volumes/"+url.PathEscape(volumeID), map[string]string{
		"cap":     strconv.FormatInt(requiredBytes, 10),
		"captype": capacityInBytes,
	})
	if err != nil {
		if isNotFound(err, codeVolumeNotFound) {
			return array.ErrVolumeNotFound(volumeID)
		}
		return m.translateError(err)
	}
	return nil
}

func (m *Mediator) IsVolumeHasSnapshots(volumeID string) (bool, error) {
	relations, err := m.flashCopies(volumeID)
	if err != nil {
		return false, err
	}
	for _, relation := range relations {
		if relation.Get("sourcevolume.id").String() == volumeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Mediator) GetSnapshot(volumeID string, snapshotName string, pool string) (*array.Snapshot, error) {
	if pool == "" {
		source, err := m.volumeRecordByID(volumeID)
		if err != nil {
			return nil, err
		}
		pool = source.Get("pool.id").String()
	}
	record, err := m.volumeRecordByName(snapshotName, pool)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, array.ErrSnapshotNotFound(snapshotName)
	}
	snapshot, err := m.snapshotFromRecord(*record)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, array.ErrSnapshotNameBelongsToVolume(snapshotName, m.endpoint)
	}
	return snapshot, nil
}

func (m *Mediator) GetSnapshotByID(snapshotID string) (*array.Snapshot, error) {
	record, err := m.volumeRecordByID(snapshotID)
	if err != nil {
		if array.IsKind(err, array.ErrorKindVolumeNotFound) {
			return nil, array.ErrSnapshotNotFound(snapshotID)
		}
		return nil, err
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

// CreateSnapshot creates a target volume and a FlashCopy onto it, removing the target if the FlashCopy fails
func (m *Mediator) CreateSnapshot(volumeID string, snapshotName string, pool string) (*array.Snapshot, error) {
	source, err := m.volumeRecordByID(volumeID)
	if err != nil {
		return nil, err
	}
	if pool == "" {
		pool = source.Get("pool.id").String()
	}

	target, err := m.createVolume(snapshotName, source.Get("cap").Int(), source.Get("tp").String(), pool)
	if err != nil {
		if array.IsKind(err, array.ErrorKindVolumeAlreadyExists) {
			return nil, array.ErrSnapshotAlreadyExists(snapshotName, m.endpoint)
		}
		return nil, err
	}
	targetID := target.Get("id").String()

	options := []string{optionNoBackgroundCopy, optionPermitSpaceTarget, optionPersistent}
	if err := m.createFlashCopy(volumeID, targetID, options); err != nil {
		m.removeSnapshotTarget(snapshotName, targetID, "")
		return nil, err
	}
	if relation, err := m.targetFlashCopy(targetID); err != nil || relation.Get("state").String() != flashCopyStateValid {
		if err == nil {
			err = fmt.Errorf("FlashCopy %s -> %s is in state %q", volumeID, targetID, relation.Get("state").String())
		}
		m.removeSnapshotTarget(snapshotName, targetID, relation.Get("id").String())
		return nil, err
	}
	m.logger.WithFields(log.Fields{"volume": volumeID, "snapshot": snapshotName}).Info("Created snapshot")
	return m.GetSnapshotByID(targetID)
}

// removeSnapshotTarget undoes a failed snapshot: the FlashCopy relation if
// one exists, then the target volume
func (m *Mediator) removeSnapshotTarget(snapshotName string, targetID string, flashCopyID string) {
	logCtx := m.logger.WithFields(log.Fields{"snapshot": snapshotName, "target": targetID})
	if flashCopyID != "" {
		if err := m.deleteFlashCopy(flashCopyID); err != nil {
			logCtx.WithError(err).Warning("Failed to remove FlashCopy of snapshot target")
		}
	}
	rollbackErr := common.Rollback(func() error {
		if err := m.deleteVolume(targetID); err != nil && !array.IsKind(err, array.ErrorKindVolumeNotFound) {
			return err
		}
		return nil
	})
	if rollbackErr != nil {
		logCtx.WithError(rollbackErr).Error("Failed to remove snapshot target volume")
	}
}

func (m *Mediator) DeleteSnapshot(snapshotID string) error {
	relations, err := m.flashCopies(snapshotID)
	if err != nil {
		if array.IsKind(err, array.ErrorKindVolumeNotFound) {
			return array.ErrSnapshotNotFound(snapshotID)
		}
		return err
	}
	isSnapshot := false
	for _, relation := range relations {
		if relation.Get("targetvolume.id").String() != snapshotID {
			continue
		}
		isSnapshot = true
		if err := m.deleteFlashCopy(relation.Get("id").String()); err != nil {
			return err
		}
	}
	if !isSnapshot {
		return array.ErrSnapshotNotFound(snapshotID)
	}
	if err := m.deleteVolume(snapshotID); err != nil {
		if array.IsKind(err, array.ErrorKindVolumeNotFound) {
			return array.ErrSnapshotNotFound(snapshotID)
		}
		return err
	}
	return nil
}

func (m *Mediator) GetVolumeMappings(volumeID string) (map[string]int, error) {
	hosts, err := m.client.Get("/hosts")
	if err != nil {
		return nil, m.translateError(err)
	}
	mappings := map[string]int{}
	for _, host := range hosts.Get("hosts").Array() {
		for _, mapping := range host.Get("mappings_briefs").Array() {
			if mapping.Get("volume_id").String() != volumeID {
				continue
			}
			lun, err := parseLUN(mapping.Get("lunid").String())
			if err != nil {
				return nil, err
			}
			mappings[host.Get("name").String()] = lun
		}
	}
	return mappings, nil
}

// MapVolume lets the array pick the LUN
func (m *Mediator) MapVolume(volumeID string, hostName string) (int, error) {
	data, err := m.client.Post(hostPath(hostName)+"/mappings", map[string][]string{"volumes": {volumeID}})
	if err != nil {
		switch {
		case isNotFound(err, codeHostNotFound):
			return 0, hostNotFound(hostName)
		case hasCode(err, codeVolumeNotFound):
			return 0, array.ErrVolumeNotFound(volumeID)
		}
		return 0, array.ErrMapping(volumeID, hostName, m.translateError(err))
	}
	lun, err := parseLUN(data.Get("mappings.0.lunid").String())
	if err != nil {
		return 0, array.ErrMapping(volumeID, hostName, err)
	}
	m.logger.WithFields(log.Fields{"volume": volumeID, "host": hostName, "lun": lun}).Info("Mapped volume")
	return lun, nil
}

func (m *Mediator) UnmapVolume(volumeID string, hostName string) error {
	data, err := m.client.Get(hostPath(hostName) + "/mappings")
	if err != nil {
		if isNotFound(err, codeHostNotFound) {
			return hostNotFound(hostName)
		}
		return m.translateError(err)
	}
	lunID := ""
	for _, mapping := range data.Get("mappings").Array() {
		if mapping.Get("volume.id").String() == volumeID {
			lunID = mapping.Get("lunid").String()
			break
		}
	}
	if lunID == "" {
		return array.ErrVolumeAlreadyUnmapped(volumeID)
	}
	if _, err := m.client.Delete(hostPath(hostName) + "/mappings/" + url.PathEscape(lunID)); err != nil {
		return array.ErrUnMapping(volumeID, hostName, m.translateError(err))
	}
	return nil
}

// GetHostByHostIdentifiers matches FC ports only; the family has no iSCSI hosts
func (m *Mediator) GetHostByHostIdentifiers(initiators array.Initiators) (string, []array.ConnectivityType, error) {
	data, err := m.client.Get("/hosts")
	if err != nil {
		return "", nil, m.translateError(err)
	}
	var hosts []array.Host
	for _, host := range data.Get("hosts").Array() {
		var ports []string
		for _, port := range host.Get("host_ports_briefs").Array() {
			ports = append(ports, port.Get("wwpn").String())
		}
		hosts = append(hosts, array.Host{Name: host.Get("name").String(), FCPorts: ports})
	}
	return common.FindHostByInitiators(hosts, initiators)
}

func (m *Mediator) GetArrayFCWWNs(hostName string) ([]string, error) {
	data, err := m.client.Get("/ioports")
	if err != nil {
		return nil, m.translateError(err)
	}
	var wwns []string
	for _, port := range data.Get("ioports").Array() {
		if strings.EqualFold(port.Get("state").String(), ioPortStateOnline) {
			wwns = append(wwns, strings.ToLower(port.Get("wwpn").String()))
		}
	}
	return wwns, nil
}

func (m *Mediator) GetISCSITargetsByIQN() (map[string][]string, error) {
	return map[string][]string{}, nil
}

func (m *Mediator) GetReplication(volumeID string, otherVolumeID string, otherSystemID string) (*array.Replication, error) {
	return nil, array.ErrNotSupported(array.ArrayTypeDS8K, "replication")
}

func (m *Mediator) CreateReplication(volumeID string, otherVolumeID string, otherSystemID string, copyType string) error {
	return array.ErrNotSupported(array.ArrayTypeDS8K, "replication")
}

func (m *Mediator) DeleteReplication(replicationName string) error {
	return array.ErrNotSupported(array.ArrayTypeDS8K, "replication")
}

func (m *Mediator) PromoteReplicationVolume(replicationName string) error {
	return array.ErrNotSupported(array.ArrayTypeDS8K, "replication")
}

func (m *Mediator) DemoteReplicationVolume(replicationName string) error {
	return array.ErrNotSupported(array.ArrayTypeDS8K, "replication")
}

func (m *Mediator) volumeRecordByName(name string, pool string) (*gjson.Result, error) {
	data, err := m.client.Get("/pools/" + url.PathEscape(pool) + "/volumes")
	if err != nil {
		if isNotFound(err, codePoolNotFound) {
			return nil, array.ErrPoolDoesNotExist(pool, m.endpoint)
		}
		return nil, m.translateError(err)
	}
	for _, volume := range data.Get("volumes").Array() {
		if volume.Get("name").String() == name {
			return &volume, nil
		}
	}
	return nil, nil
}

func (m *Mediator) volumeRecordByID(volumeID string) (gjson.Result, error) {
	data, err := m.client.Get("/volumes/" + url.PathEscape(volumeID))
	if err != nil {
		if isNotFound(err, codeVolumeNotFound) {
			return gjson.Result{}, array.ErrVolumeNotFound(volumeID)
		}
		return gjson.Result{}, m.translateError(err)
	}
	volume := data.Get("volumes.0")
	if !volume.Exists() {
		return gjson.Result{}, array.ErrVolumeNotFound(volumeID)
	}
	return volume, nil
}

func (m *Mediator) flashCopies(volumeID string) ([]gjson.Result, error) {
	data, err := m.client.Get("/volumes/" + url.PathEscape(volumeID) + "/flashcopy")
	if err != nil {
		if isNotFound(err, codeVolumeNotFound) {
			return nil, array.ErrVolumeNotFound(volumeID)
		}
		return nil, m.translateError(err)
	}
	return data.Get("flashcopies").Array(), nil
}

// targetFlashCopy returns the relation copying onto targetID
func (m *Mediator) targetFlashCopy(targetID string) (gjson.Result, error) {
	relations, err := m.flashCopies(targetID)
	if err != nil {
		return gjson.Result{}, err
	}
	for _, relation := range relations {
		if relation.Get("targetvolume.id").String() == targetID {
			return relation, nil
		}
	}
	return gjson.Result{}, fmt.Errorf("no FlashCopy found for target %s", targetID)
}

func (m *Mediator) createFlashCopy(sourceID string, targetID string, options []string) error {
	_, err := m.client.Post("/cs/flashcopies", map[string]interface{}{
		"volume_pairs": []map[string]string{{"source_volume": sourceID, "target_volume": targetID}},
		"options":      options,
	})
	if err != nil {
		switch {
		case hasCode(err, codeTargetIsSource):
			return array.ErrValidation("volume %s can not be a FlashCopy target of itself", sourceID)
		case hasCode(err, codeVolumeNotFound):
			return array.ErrVolumeNotFound(sourceID)
		}
		return m.translateError(err)
	}
	return nil
}

func (m *Mediator) deleteFlashCopy(id string) error {
	if _, err := m.client.Delete("/cs/flashcopies/" + url.PathEscape(id)); err != nil && !isNotFound(err, codeFlashCopyNotFound) {
		return m.translateError(err)
	}
	return nil
}

func (m *Mediator) volumeFromRecord(record gjson.Result) (*array.Volume, error) {
	volume := &array.Volume{
		Name:            record.Get("name").String(),
		ID:              record.Get("id").String(),
		CapacityBytes:   record.Get("cap").Int(),
		Pool:            record.Get("pool.id").String(),
		ArrayAddresses:  m.endpoints,
		ArrayType:       array.ArrayTypeDS8K,
		SpaceEfficiency: spaceEfficiency(record.Get("tp").String()),
	}
	relations, err := m.flashCopies(volume.ID)
	if err != nil {
		return nil, err
	}
	for _, relation := range relations {
		if relation.Get("targetvolume.id").String() == volume.ID {
			volume.CopySourceID = relation.Get("sourcevolume.id").String()
		}
	}
	return volume, nil
}

// snapshotFromRecord returns nil when the volume is no FlashCopy target
func (m *Mediator) snapshotFromRecord(record gjson.Result) (*array.Snapshot, error) {
	id := record.Get("id").String()
	relations, err := m.flashCopies(id)
	if err != nil {
		return nil, err
	}
	for _, relation := range relations {
		if relation.Get("targetvolume.id").String() != id {
			continue
		}
		return &array.Snapshot{
			Name:           record.Get("name").String(),
			ID:             id,
			CapacityBytes:  record.Get("cap").Int(),
			SourceVolumeID: relation.Get("sourcevolume.id").String(),
			ArrayAddresses: m.endpoints,
			ArrayType:      array.ArrayTypeDS8K,
			IsReady:        relation.Get("state").String() == flashCopyStateValid,
		}, nil
	}
	return nil, nil
}

func hasCode(err error, code string) bool {
	_, c := restCode(err)
	return c == code
}

func hostPath(hostName string) string {
	return "/hosts/" + url.PathEscape(hostName)
}

func hostNotFound(hostName string) error {
	return array.NewError(array.ErrorKindHostNotFound, "host %s was not found", hostName)
}

// parseLUN reads the hexadecimal LUN ids of the REST API
func parseLUN(lunID string) (int, error) {
	lun, err := strconv.ParseInt(lunID, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid lun id %q: %w", lunID, err)
	}
	return int(lun), nil
}

func provisioning(spaceEfficiency string) string {
	if spaceEfficiency == array.SpaceEfficiencyThin {
		return thinProvisioned
	}
	return thickProvisioned
}

func spaceEfficiency(tp string) string {
	if tp == thinProvisioned {
		return array.SpaceEfficiencyThin
	}
	return array.SpaceEfficiencyNone
}

// compareReleases compares dotted numeric releases
func compareReleases(a string, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var x, y int
		if i < len(as) {
			x, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			y, _ = strconv.Atoi(bs[i])
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

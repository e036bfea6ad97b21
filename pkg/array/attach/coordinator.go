package attach

import (
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/hwameistor/array-csi/pkg/apis/array"
)

// Result describes how a node reaches a published volume
type Result struct {
	LUN          int
	Connectivity array.ConnectivityType
	// ArrayFCWWNs is set for FC connectivity
	ArrayFCWWNs []string
	// ISCSITargets maps the array's target IQNs to portal IPs for iSCSI connectivity
	ISCSITargets map[string][]string
}

// Coordinator maps and unmaps volumes to the array host of a node.
// Mapping is idempotent and keeps a volume mapped to one host at most.
type Coordinator struct {
	logger *log.Entry
}

// New creates a coordinator
func New() *Coordinator {
	return &Coordinator{logger: log.WithField("Module", "AttachCoordinator")}
}

// ChooseConnectivityType prefers FC over iSCSI
func ChooseConnectivityType(types []array.ConnectivityType) (array.ConnectivityType, error) {
	has := map[array.ConnectivityType]bool{}
	for _, t := range types {
		has[t] = true
	}
	switch {
	case has[array.ConnectivityTypeFC]:
		return array.ConnectivityTypeFC, nil
	case has[array.ConnectivityTypeISCSI]:
		return array.ConnectivityTypeISCSI, nil
	}
	return "", array.ErrUnsupportedConnectivityType(connectivityString(types))
}

// MapVolumeByInitiators maps the volume to the host owning the initiators
func (c *Coordinator) MapVolumeByInitiators(mediator array.Mediator, volumeID string, initiators array.Initiators) (*Result, error) {
	logCtx := c.logger.WithFields(log.Fields{"volume": volumeID, "iqn": initiators.ISCSIIQN, "wwns": initiators.FCWWNs})

	hostName, connectivityTypes, err := mediator.GetHostByHostIdentifiers(initiators)
	if err != nil {
		logCtx.WithError(err).Error("Failed to find host")
		return nil, err
	}
	logCtx = logCtx.WithField("host", hostName)

	connectivity, err := ChooseConnectivityType(connectivityTypes)
	if err != nil {
		return nil, err
	}
	result := &Result{Connectivity: connectivity}
	if err := c.fillTargets(mediator, hostName, result); err != nil {
		return nil, err
	}

	mappings, err := mediator.GetVolumeMappings(volumeID)
	if err != nil {
		return nil, err
	}
	if len(mappings) > 0 {
		if lun, ok := mappings[hostName]; ok && len(mappings) == 1 {
			logCtx.WithField("lun", lun).Debug("Volume is already mapped to the host")
			result.LUN = lun
			return result, nil
		}
		hosts := mappedHosts(mappings)
		logCtx.WithField("mappedHosts", hosts).Error("Volume is mapped to another host")
		return nil, array.ErrVolumeMappedToMultipleHosts(volumeID, hosts)
	}

	lun, err := c.mapWithLUNRetries(mediator, volumeID, hostName, logCtx)
	if err != nil {
		return nil, err
	}
	logCtx.WithFields(log.Fields{"lun": lun, "connectivity": connectivity}).Info("Mapped volume")
	result.LUN = lun
	return result, nil
}

// UnmapVolumeByInitiators removes the volume's mapping to the node's host
func (c *Coordinator) UnmapVolumeByInitiators(mediator array.Mediator, volumeID string, initiators array.Initiators) error {
	hostName, _, err := mediator.GetHostByHostIdentifiers(initiators)
	if err != nil {
		return err
	}
	if err := mediator.UnmapVolume(volumeID, hostName); err != nil {
		return err
	}
	c.logger.WithFields(log.Fields{"volume": volumeID, "host": hostName}).Info("Unmapped volume")
	return nil
}

// mapWithLUNRetries retries a colliding LUN; each attempt lets the array
// pick another candidate
func (c *Coordinator) mapWithLUNRetries(mediator array.Mediator, volumeID string, hostName string, logCtx *log.Entry) (int, error) {
	attempts := mediator.Traits().MaxLUNRetries
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lun, err := mediator.MapVolume(volumeID, hostName)
		if err == nil {
			return lun, nil
		}
		if !array.IsKind(err, array.ErrorKindLUNAlreadyInUse) {
			return 0, err
		}
		logCtx.WithFields(log.Fields{"attempt": attempt, "attempts": attempts}).WithError(err).Warning("LUN collision")
		lastErr = err
	}
	return 0, lastErr
}

func (c *Coordinator) fillTargets(mediator array.Mediator, hostName string, result *Result) error {
	switch result.Connectivity {
	case array.ConnectivityTypeFC:
		wwns, err := mediator.GetArrayFCWWNs(hostName)
		if err != nil {
			return err
		}
		result.ArrayFCWWNs = wwns
	case array.ConnectivityTypeISCSI:
		targets, err := mediator.GetISCSITargetsByIQN()
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			return array.ErrNoISCSITargetsFound(hostName)
		}
		result.ISCSITargets = targets
	}
	return nil
}

func mappedHosts(mappings map[string]int) []string {
	hosts := make([]string, 0, len(mappings))
	for host := range mappings {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return hosts
}

func connectivityString(types []array.ConnectivityType) string {
	s := ""
	for i, t := range types {
		if i > 0 {
			s += ","
		}
		s += string(t)
	}
	return s
}

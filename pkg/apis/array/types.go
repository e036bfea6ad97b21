package array

import (
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/sets"
)

// consts
const (
	ArrayTypeA9000 = "A9000"
	ArrayTypeDS8K  = "DS8K"
	ArrayTypeSVC   = "SVC"

	// MinLUN and MaxLUN bound the LUN numbers the driver hands out to a host
	MinLUN = 1
	MaxLUN = 255

	SpaceEfficiencyThin         = "thin"
	SpaceEfficiencyThick        = "thick"
	SpaceEfficiencyCompressed   = "compressed"
	SpaceEfficiencyDeduplicated = "deduplicated"
	SpaceEfficiencyNone         = "none"

	CopyTypeSync  = "sync"
	CopyTypeAsync = "async"
)

// ConnectivityType is the transport a host uses to reach a volume
type ConnectivityType string

// consts
const (
	ConnectivityTypeFC    ConnectivityType = "fc"
	ConnectivityTypeISCSI ConnectivityType = "iscsi"
)

// ObjectKind tells a volume from a snapshot when both share an id space
type ObjectKind string

// consts
const (
	ObjectKindVolume   ObjectKind = "volume"
	ObjectKindSnapshot ObjectKind = "snapshot"
)

// Volume is a logical block device on an array. The driver holds no
// authoritative copy of it: every value is read on demand.
type Volume struct {
	Name string
	// ID is the array-wide unique id, e.g. the WWN
	ID string
	// InternalID is set by arrays whose numeric object id differs from ID
	InternalID      string
	CapacityBytes   int64
	Pool            string
	ArrayAddresses  []string
	ArrayType       string
	SpaceEfficiency string

	// set when the volume was populated from another volume or snapshot
	CopySourceID   string
	CopySourceKind ObjectKind
}

// IsCopyOf reports whether the volume was populated from the given source.
// Arrays that cannot tell a snapshot source from a volume source leave
// CopySourceKind empty, in which case only the id is compared.
func (v *Volume) IsCopyOf(kind ObjectKind, sourceID string) bool {
	if v.CopySourceID == "" || v.CopySourceID != sourceID {
		return false
	}
	return v.CopySourceKind == "" || v.CopySourceKind == kind
}

// Snapshot is a point-in-time copy of a volume
type Snapshot struct {
	Name           string
	ID             string
	InternalID     string
	CapacityBytes  int64
	SourceVolumeID string
	ArrayAddresses []string
	ArrayType      string
	IsReady        bool
	CreationTime   time.Time
}

// Host is the array-side representation of a cluster node
type Host struct {
	Name       string
	FCPorts    []string
	ISCSINames []string
}

// Initiators identify a node at attach time
type Initiators struct {
	ISCSIIQN string
	FCWWNs   []string
}

// NewInitiators normalises the FC WWNs to lower case
func NewInitiators(iqn string, wwns []string) Initiators {
	initiators := Initiators{ISCSIIQN: strings.TrimSpace(iqn)}
	for _, wwn := range wwns {
		if wwn = strings.TrimSpace(wwn); wwn != "" {
			initiators.FCWWNs = append(initiators.FCWWNs, strings.ToLower(wwn))
		}
	}
	return initiators
}

// IsFCWWNMatch reports whether any of the given port WWNs belongs to the node
func (i Initiators) IsFCWWNMatch(wwns []string) bool {
	if len(i.FCWWNs) == 0 {
		return false
	}
	ours := sets.NewString(i.FCWWNs...)
	for _, wwn := range wwns {
		if ours.Has(strings.ToLower(strings.TrimSpace(wwn))) {
			return true
		}
	}
	return false
}

// IsISCSIIQNMatch reports whether the IQN is the node's IQN
func (i Initiators) IsISCSIIQNMatch(iqn string) bool {
	ours := strings.TrimSpace(i.ISCSIIQN)
	return ours != "" && ours == strings.TrimSpace(iqn)
}

// IsISCSIIQNIn reports whether the node's IQN is one of the given IQNs
func (i Initiators) IsISCSIIQNIn(iqns []string) bool {
	for _, iqn := range iqns {
		if i.IsISCSIIQNMatch(iqn) {
			return true
		}
	}
	return false
}

// Replication is a remote-copy relationship between two volumes
type Replication struct {
	Name          string
	VolumeID      string
	OtherVolumeID string
	CopyType      string
	IsReady       bool
	IsPrimary     bool
}

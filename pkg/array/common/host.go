package common

import (
	"strings"

	"github.com/hwameistor/array-csi/pkg/apis/array"
)

// FindHostByInitiators picks the one array host owning the node initiators
// and reports which connectivity types matched
func FindHostByInitiators(hosts []array.Host, initiators array.Initiators) (string, []array.ConnectivityType, error) {
	var matched []string
	var connectivity []array.ConnectivityType
	for _, host := range hosts {
		fcMatch := initiators.IsFCWWNMatch(host.FCPorts)
		iscsiMatch := initiators.IsISCSIIQNIn(host.ISCSINames)
		if !fcMatch && !iscsiMatch {
			continue
		}
		matched = append(matched, host.Name)
		connectivity = connectivity[:0]
		if fcMatch {
			connectivity = append(connectivity, array.ConnectivityTypeFC)
		}
		if iscsiMatch {
			connectivity = append(connectivity, array.ConnectivityTypeISCSI)
		}
	}

	switch len(matched) {
	case 0:
		return "", nil, array.ErrHostNotFound(initiators)
	case 1:
		return matched[0], connectivity, nil
	}
	return "", nil, array.ErrMultipleHostsFound(initiators, matched)
}

// SplitList splits a delimited list, dropping empty items
func SplitList(list string, sep string) []string {
	var items []string
	for _, item := range strings.Split(list, sep) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

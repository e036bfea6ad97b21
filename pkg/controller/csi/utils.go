package csi

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	csi "github.com/container-storage-interface/spec/lib/go/csi"
)

func newControllerServiceCapability(cap csi.ControllerServiceCapability_RPC_Type) *csi.ControllerServiceCapability {
	return &csi.ControllerServiceCapability{
		Type: &csi.ControllerServiceCapability_Rpc{
			Rpc: &csi.ControllerServiceCapability_RPC{
				Type: cap,
			},
		},
	}
}

func newPluginCapability(cap csi.PluginCapability_Service_Type) *csi.PluginCapability {
	return &csi.PluginCapability{
		Type: &csi.PluginCapability_Service_{
			Service: &csi.PluginCapability_Service{
				Type: cap,
			},
		},
	}
}

func newVolumeExpansionCapability(cap csi.PluginCapability_VolumeExpansion_Type) *csi.PluginCapability {
	return &csi.PluginCapability{
		Type: &csi.PluginCapability_VolumeExpansion_{
			VolumeExpansion: &csi.PluginCapability_VolumeExpansion{
				Type: cap,
			},
		},
	}
}

// parseEndpoint parse socket endpoint
func parseEndpoint(ep string) (string, string, error) {
	if strings.HasPrefix(strings.ToLower(ep), "unix://") || strings.HasPrefix(strings.ToLower(ep), "tcp://") {
		s := strings.SplitN(ep, "://", 2)
		if s[1] != "" {
			return s[0], s[1], nil
		}
	}
	return "", "", fmt.Errorf("invalid endpoint: %v", ep)
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func splitTrimmed(list string, sep string) []string {
	var items []string
	for _, item := range strings.Split(list, sep) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// creationTimes pins the first time a snapshot id was reported
type creationTimes struct {
	lock  sync.Mutex
	times map[string]time.Time
	now   func() time.Time
}

func newCreationTimes() *creationTimes {
	return &creationTimes{times: map[string]time.Time{}, now: time.Now}
}

func (c *creationTimes) firstSeen(id string) time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()

	if t, exists := c.times[id]; exists {
		return t
	}
	t := c.now()
	c.times[id] = t
	return t
}

func (c *creationTimes) forget(id string) {
	c.lock.Lock()
	delete(c.times, id)
	c.lock.Unlock()
}

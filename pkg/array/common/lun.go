package common

import (
	"k8s.io/apimachinery/pkg/util/rand"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/hwameistor/array-csi/pkg/apis/array"
)

// PickRandomFreeLUN picks a LUN in [MinLUN, MaxLUN] not used on the host.
// A random pick makes two concurrent mappings to one host unlikely to collide.
func PickRandomFreeLUN(hostName string, usedLUNs []int) (int, error) {
	used := sets.NewInt(usedLUNs...)
	free := make([]int, 0, array.MaxLUN-array.MinLUN+1)
	for lun := array.MinLUN; lun <= array.MaxLUN; lun++ {
		if !used.Has(lun) {
			free = append(free, lun)
		}
	}
	if len(free) == 0 {
		return 0, array.ErrNoAvailableLUN(hostName)
	}
	return free[rand.Intn(len(free))], nil
}

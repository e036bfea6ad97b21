package vendors

import (
	"sort"

	"github.com/hwameistor/array-csi/pkg/apis/array"
	"github.com/hwameistor/array-csi/pkg/array/a9000"
	"github.com/hwameistor/array-csi/pkg/array/detect"
	"github.com/hwameistor/array-csi/pkg/array/ds8k"
	"github.com/hwameistor/array-csi/pkg/array/svc"
)

// Vendor binds an array type to its traits and mediator factory
type Vendor struct {
	Traits  array.MediatorTraits
	Factory array.MediatorFactory
}

var vendors = map[string]Vendor{
	array.ArrayTypeA9000: {Traits: a9000.Traits, Factory: a9000.NewMediator},
	array.ArrayTypeDS8K:  {Traits: ds8k.Traits, Factory: ds8k.NewMediator},
	array.ArrayTypeSVC:   {Traits: svc.Traits, Factory: svc.NewMediator},
}

// probeOrder lists SVC last as its SSH port is open on most systems
var probeOrder = []string{array.ArrayTypeA9000, array.ArrayTypeDS8K, array.ArrayTypeSVC}

// Lookup resolves an array type
func Lookup(arrayType string) (array.MediatorTraits, array.MediatorFactory, error) {
	vendor, ok := vendors[arrayType]
	if !ok {
		return array.MediatorTraits{}, nil, array.ErrValidation("unknown array type %q", arrayType)
	}
	return vendor.Traits, vendor.Factory, nil
}

// DefaultProbes are the autodetection probes in their fixed order
func DefaultProbes() []detect.Probe {
	probes := make([]detect.Probe, 0, len(probeOrder))
	for _, arrayType := range probeOrder {
		probes = append(probes, detect.Probe{ArrayType: arrayType, Port: vendors[arrayType].Traits.Port})
	}
	return probes
}

// ArrayTypes lists the supported array types
func ArrayTypes() []string {
	types := make([]string, 0, len(vendors))
	for arrayType := range vendors {
		types = append(types, arrayType)
	}
	sort.Strings(types)
	return types
}

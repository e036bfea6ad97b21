package csi

import (
	"github.com/container-storage-interface/spec/lib/go/csi"
	"github.com/golang/mock/gomock"

	"github.com/hwameistor/array-csi/pkg/apis/array"
	"github.com/hwameistor/array-csi/pkg/array/agent"
	"github.com/hwameistor/array-csi/pkg/config"
)

const gib = int64(1) << 30

var (
	testSecrets = map[string]string{
		secretUsername:          "admin",
		secretPassword:          "pw",
		secretManagementAddress: "10.0.0.1",
	}
	testParameters = map[string]string{"pool": "pool1"}

	testTraits = array.MediatorTraits{
		ArrayType:               array.ArrayTypeA9000,
		MaxConnections:          2,
		MaxObjectNameLength:     63,
		MaxObjectPrefixLength:   20,
		MaxSnapshotNameLength:   63,
		MaxSnapshotPrefixLength: 20,
		MinimalVolumeSizeBytes:  gib,
		MaxLUNRetries:           3,
	}

	mountCapability = &csi.VolumeCapability{
		AccessType: &csi.VolumeCapability_Mount{Mount: &csi.VolumeCapability_MountVolume{FsType: "ext4"}},
		AccessMode: &csi.VolumeCapability_AccessMode{Mode: csi.VolumeCapability_AccessMode_SINGLE_NODE_WRITER},
	}
	blockCapability = &csi.VolumeCapability{
		AccessType: &csi.VolumeCapability_Block{Block: &csi.VolumeCapability_BlockVolume{}},
		AccessMode: &csi.VolumeCapability_AccessMode{Mode: csi.VolumeCapability_AccessMode_SINGLE_NODE_WRITER},
	}
)

type staticDetector struct {
	arrayType string
}

func (d staticDetector) Detect(endpoints []string) (string, error) {
	return d.arrayType, nil
}

// newTestPlugin wires a plugin to a real registry whose every mediator is m
func newTestPlugin(ctrl *gomock.Controller) (*plugin, *array.MockMediator) {
	m := array.NewMockMediator(ctrl)
	m.EXPECT().IsActive().Return(true).AnyTimes()
	m.EXPECT().Traits().Return(testTraits).AnyTimes()
	m.EXPECT().Disconnect().AnyTimes()

	lookup := func(arrayType string) (array.MediatorTraits, array.MediatorFactory, error) {
		factory := func(user string, password string, endpoints []string) (array.Mediator, error) {
			return m, nil
		}
		return testTraits, factory, nil
	}
	registry := agent.NewRegistry(staticDetector{arrayType: array.ArrayTypeA9000}, lookup, 10, nil)

	p := newPlugin(config.NewDefault(), "unix:///tmp/array-csi.sock", registry, nil)
	p.initCapabilities()
	return p, m
}

func createVolumeRequest(name string, size int64) *csi.CreateVolumeRequest {
	return &csi.CreateVolumeRequest{
		Name:               name,
		CapacityRange:      &csi.CapacityRange{RequiredBytes: size},
		VolumeCapabilities: []*csi.VolumeCapability{mountCapability},
		Parameters:         testParameters,
		Secrets:            testSecrets,
	}
}

func testVolume(name string, id string, size int64) *array.Volume {
	return &array.Volume{Name: name, ID: id, CapacityBytes: size, Pool: "pool1", ArrayType: array.ArrayTypeA9000}
}

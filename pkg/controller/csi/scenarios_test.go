package csi

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/container-storage-interface/spec/lib/go/csi"
	"github.com/golang/mock/gomock"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hwameistor/array-csi/pkg/apis/array"
	"github.com/hwameistor/array-csi/pkg/array/detect"
	"github.com/hwameistor/array-csi/pkg/array/vendors"
)

var _ = ginkgo.Describe("block array controller", func() {
	var (
		ctrl *gomock.Controller
		p    *plugin
		m    *array.MockMediator
		ctx  context.Context
	)

	ginkgo.BeforeEach(func() {
		ctrl = gomock.NewController(ginkgo.GinkgoT())
		p, m = newTestPlugin(ctrl)
		ctx = context.TODO()
	})

	ginkgo.AfterEach(func() {
		ctrl.Finish()
	})

	ginkgo.Context("creating a volume twice", func() {
		ginkgo.BeforeEach(func() {
			m.EXPECT().ValidateSupportedSpaceEfficiency("").Return(nil).AnyTimes()
			gomock.InOrder(
				m.EXPECT().GetVolume("pvc-1", "pool1").Return(nil, array.ErrVolumeNotFound("pvc-1")),
				m.EXPECT().CreateVolume("pvc-1", gib, "", "pool1", "", "").Return(testVolume("pvc-1", "wwn1", gib), nil),
				m.EXPECT().GetVolume("pvc-1", "pool1").Return(testVolume("pvc-1", "wwn1", gib), nil),
			)
		})

		ginkgo.It("returns the same volume for an identical request", func() {
			first, err := p.CreateVolume(ctx, createVolumeRequest("pvc-1", gib))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(first.Volume.VolumeId).To(gomega.Equal("A9000:wwn1"))

			second, err := p.CreateVolume(ctx, createVolumeRequest("pvc-1", gib))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(second.Volume.VolumeId).To(gomega.Equal(first.Volume.VolumeId))
		})

		ginkgo.It("rejects a larger size for the same name", func() {
			_, err := p.CreateVolume(ctx, createVolumeRequest("pvc-1", gib))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = p.CreateVolume(ctx, createVolumeRequest("pvc-1", 2*gib))
			gomega.Expect(status.Code(err)).To(gomega.Equal(codes.AlreadyExists))
		})
	})

	ginkgo.Context("publishing a volume", func() {
		publish := func(nodeID string) (*csi.ControllerPublishVolumeResponse, error) {
			return p.ControllerPublishVolume(ctx, &csi.ControllerPublishVolumeRequest{
				VolumeId:         "A9000:w1",
				NodeId:           nodeID,
				VolumeCapability: mountCapability,
				Secrets:          testSecrets,
			})
		}

		ginkgo.BeforeEach(func() {
			m.EXPECT().GetISCSITargetsByIQN().Return(map[string][]string{"iqn-of-array": {"1.1.1.1", "2.2.2.2"}}, nil).AnyTimes()
		})

		ginkgo.It("is idempotent for the host it is mapped to", func() {
			m.EXPECT().GetHostByHostIdentifiers(array.NewInitiators("iqn1", nil)).Return("h1", []array.ConnectivityType{array.ConnectivityTypeISCSI}, nil)
			m.EXPECT().GetVolumeMappings("w1").Return(map[string]int{"h1": 7}, nil)
			m.EXPECT().MapVolume(gomock.Any(), gomock.Any()).Times(0)

			resp, err := publish("h1;iqn1;")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.PublishContext).To(gomega.Equal(map[string]string{
				"lun":          "7",
				"connectivity": "iscsi",
				"array_iqn":    "iqn-of-array",
				"iqn-of-array": "1.1.1.1,2.2.2.2",
			}))
		})

		ginkgo.It("refuses a second host", func() {
			m.EXPECT().GetHostByHostIdentifiers(array.NewInitiators("iqn2", nil)).Return("h2", []array.ConnectivityType{array.ConnectivityTypeISCSI}, nil)
			m.EXPECT().GetVolumeMappings("w1").Return(map[string]int{"h1": 7}, nil)

			_, err := publish("h2;iqn2;")
			gomega.Expect(status.Code(err)).To(gomega.Equal(codes.FailedPrecondition))
			gomega.Expect(err.Error()).To(gomega.ContainSubstring("Volume is already mapped"))
		})

		ginkgo.It("retries colliding LUNs", func() {
			m.EXPECT().GetHostByHostIdentifiers(gomock.Any()).Return("h1", []array.ConnectivityType{array.ConnectivityTypeISCSI}, nil)
			m.EXPECT().GetVolumeMappings("w1").Return(map[string]int{}, nil)
			gomock.InOrder(
				m.EXPECT().MapVolume("w1", "h1").Return(0, array.ErrLUNAlreadyInUse(3, "h1")),
				m.EXPECT().MapVolume("w1", "h1").Return(0, array.ErrLUNAlreadyInUse(5, "h1")),
				m.EXPECT().MapVolume("w1", "h1").Return(12, nil),
			)

			resp, err := publish("h1;iqn1;")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(resp.PublishContext).To(gomega.HaveKeyWithValue("lun", "12"))
		})

		ginkgo.It("gives up after the array's LUN retries", func() {
			m.EXPECT().GetHostByHostIdentifiers(gomock.Any()).Return("h1", []array.ConnectivityType{array.ConnectivityTypeISCSI}, nil)
			m.EXPECT().GetVolumeMappings("w1").Return(map[string]int{}, nil)
			m.EXPECT().MapVolume("w1", "h1").Return(0, array.ErrLUNAlreadyInUse(3, "h1")).Times(testTraits.MaxLUNRetries)

			_, err := publish("h1;iqn1;")
			gomega.Expect(status.Code(err)).To(gomega.Equal(codes.ResourceExhausted))
		})
	})

	ginkgo.It("deletes a volume only once its snapshots are gone", func() {
		gomock.InOrder(
			m.EXPECT().IsVolumeHasSnapshots("w1").Return(true, nil),
			m.EXPECT().IsVolumeHasSnapshots("w1").Return(false, nil),
			m.EXPECT().DeleteVolume("w1").Return(nil),
			m.EXPECT().IsVolumeHasSnapshots("w1").Return(false, array.ErrVolumeNotFound("w1")),
		)
		req := &csi.DeleteVolumeRequest{VolumeId: "A9000:w1", Secrets: testSecrets}

		_, err := p.DeleteVolume(ctx, req)
		gomega.Expect(status.Code(err)).To(gomega.Equal(codes.FailedPrecondition))
		_, err = p.DeleteVolume(ctx, req)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		_, err = p.DeleteVolume(ctx, req)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	})
})

var _ = ginkgo.Describe("array autodetection", func() {
	detectorWithOpenPorts := func(ports ...int) *detect.Detector {
		open := map[string]bool{}
		for _, port := range ports {
			open[strconv.Itoa(port)] = true
		}
		dial := func(network string, address string, timeout time.Duration) (net.Conn, error) {
			_, port, err := net.SplitHostPort(address)
			if err != nil {
				return nil, err
			}
			if !open[port] {
				return nil, &net.OpError{Op: "dial", Net: network, Err: errConnectionRefused}
			}
			client, server := net.Pipe()
			server.Close()
			return client, nil
		}
		return detect.New(vendors.DefaultProbes()).WithDialer(dial)
	}

	ginkgo.DescribeTable("resolves the array type by its open ports",
		func(ports []int, want string) {
			got, err := detectorWithOpenPorts(ports...).Detect([]string{"10.0.0.1"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(got).To(gomega.Equal(want))
		},
		ginkgo.Entry("xcli port", []int{7778}, array.ArrayTypeA9000),
		ginkgo.Entry("rest and ssh ports", []int{22, 8452}, array.ArrayTypeDS8K),
		ginkgo.Entry("ssh port only", []int{22}, array.ArrayTypeSVC),
	)

	ginkgo.It("fails when nothing answers", func() {
		_, err := detectorWithOpenPorts().Detect([]string{"10.0.0.1"})
		gomega.Expect(array.IsKind(err, array.ErrorKindFailedToFindStorageSystemType)).To(gomega.BeTrue())
	})
})

var errConnectionRefused = errors.New("connection refused")

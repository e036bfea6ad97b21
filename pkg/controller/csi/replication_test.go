package csi

import (
	"context"
	"testing"

	"github.com/csi-addons/spec/lib/go/replication"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hwameistor/array-csi/pkg/apis/array"
)

var replicationParams = map[string]string{
	"replication_handle": "A9000:remote:w9",
	"copy_type":          "async",
}

func newTestReplicationServer(ctrl *gomock.Controller) (*replicationServer, *array.MockMediator) {
	p, m := newTestPlugin(ctrl)
	return &replicationServer{plugin: p}, m
}

func Test_replicationServer_EnableVolumeReplication(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *array.MockMediator)
		want  codes.Code
	}{
		{
			name: "create",
			setup: func(m *array.MockMediator) {
				m.EXPECT().GetReplication("w1", "w9", "remote").Return(nil, nil)
				m.EXPECT().CreateReplication("w1", "w9", "remote", array.CopyTypeAsync).Return(nil)
			},
			want: codes.OK,
		},
		{
			name: "exists",
			setup: func(m *array.MockMediator) {
				m.EXPECT().GetReplication("w1", "w9", "remote").Return(&array.Replication{Name: "r1", CopyType: array.CopyTypeAsync}, nil)
			},
			want: codes.OK,
		},
		{
			name: "exists with other copy type",
			setup: func(m *array.MockMediator) {
				m.EXPECT().GetReplication("w1", "w9", "remote").Return(&array.Replication{Name: "r1", CopyType: array.CopyTypeSync}, nil)
			},
			want: codes.AlreadyExists,
		},
		{
			name: "not supported",
			setup: func(m *array.MockMediator) {
				m.EXPECT().GetReplication("w1", "w9", "remote").Return(nil, array.ErrNotSupported(array.ArrayTypeDS8K, "replication"))
			},
			want: codes.Unimplemented,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, m := newTestReplicationServer(ctrl)
			tt.setup(m)
			_, err := s.EnableVolumeReplication(context.TODO(), &replication.EnableVolumeReplicationRequest{
				VolumeId:   "A9000:w1",
				Parameters: replicationParams,
				Secrets:    testSecrets,
			})
			assert.Equal(t, tt.want, status.Code(err), err)
		})
	}
}

func Test_replicationServer_EnableVolumeReplication_BadRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, _ := newTestReplicationServer(ctrl)
	_, err := s.EnableVolumeReplication(context.TODO(), &replication.EnableVolumeReplicationRequest{
		VolumeId: "A9000:w1",
		Secrets:  testSecrets,
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.EnableVolumeReplication(context.TODO(), &replication.EnableVolumeReplicationRequest{
		VolumeId:   "w1",
		Parameters: replicationParams,
		Secrets:    testSecrets,
	})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func Test_replicationServer_DisableVolumeReplication(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, m := newTestReplicationServer(ctrl)
	gomock.InOrder(
		m.EXPECT().GetReplication("w1", "w9", "remote").Return(&array.Replication{Name: "r1"}, nil),
		m.EXPECT().DeleteReplication("r1").Return(nil),
		m.EXPECT().GetReplication("w1", "w9", "remote").Return(nil, nil),
	)

	req := &replication.DisableVolumeReplicationRequest{VolumeId: "A9000:w1", Parameters: replicationParams, Secrets: testSecrets}
	_, err := s.DisableVolumeReplication(context.TODO(), req)
	assert.NoError(t, err)
	_, err = s.DisableVolumeReplication(context.TODO(), req)
	assert.NoError(t, err)
}

func Test_replicationServer_PromoteAndDemote(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, m := newTestReplicationServer(ctrl)
	gomock.InOrder(
		m.EXPECT().GetReplication("w1", "w9", "remote").Return(&array.Replication{Name: "r1", IsPrimary: false}, nil),
		m.EXPECT().PromoteReplicationVolume("r1").Return(nil),
		m.EXPECT().GetReplication("w1", "w9", "remote").Return(&array.Replication{Name: "r1", IsPrimary: true}, nil),
		m.EXPECT().GetReplication("w1", "w9", "remote").Return(&array.Replication{Name: "r1", IsPrimary: true}, nil),
		m.EXPECT().DemoteReplicationVolume("r1").Return(nil),
		m.EXPECT().GetReplication("w1", "w9", "remote").Return(nil, nil),
	)

	promote := &replication.PromoteVolumeRequest{VolumeId: "A9000:w1", Parameters: replicationParams, Secrets: testSecrets}
	_, err := s.PromoteVolume(context.TODO(), promote)
	assert.NoError(t, err)
	_, err = s.PromoteVolume(context.TODO(), promote)
	assert.NoError(t, err)

	demote := &replication.DemoteVolumeRequest{VolumeId: "A9000:w1", Parameters: replicationParams, Secrets: testSecrets}
	_, err = s.DemoteVolume(context.TODO(), demote)
	assert.NoError(t, err)
	_, err = s.DemoteVolume(context.TODO(), demote)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func Test_replicationServer_ResyncVolume(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, m := newTestReplicationServer(ctrl)
	gomock.InOrder(
		m.EXPECT().GetReplication("w1", "w9", "remote").Return(&array.Replication{Name: "r1", IsReady: false}, nil),
		m.EXPECT().GetReplication("w1", "w9", "remote").Return(&array.Replication{Name: "r1", IsReady: true}, nil),
	)

	req := &replication.ResyncVolumeRequest{VolumeId: "A9000:w1", Parameters: replicationParams, Secrets: testSecrets}
	resp, err := s.ResyncVolume(context.TODO(), req)
	assert.NoError(t, err)
	assert.False(t, resp.Ready)
	resp, err = s.ResyncVolume(context.TODO(), req)
	assert.NoError(t, err)
	assert.True(t, resp.Ready)
}

func Test_replicationServer_SVCPeerUsesInternalID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, m := newTestReplicationServer(ctrl)
	m.EXPECT().GetReplication("600507680C01", "7", "remote").Return(nil, nil)
	m.EXPECT().CreateReplication("600507680C01", "7", "remote", array.CopyTypeSync).Return(nil)

	_, err := s.EnableVolumeReplication(context.TODO(), &replication.EnableVolumeReplicationRequest{
		VolumeId:   "SVC:3;600507680C01",
		Parameters: map[string]string{"replication_handle": "SVC:remote:7;600507680C02"},
		Secrets:    testSecrets,
	})
	assert.NoError(t, err)
}

package csi

import (
	"reflect"
	"testing"

	csi "github.com/container-storage-interface/spec/lib/go/csi"
)

func Test_newControllerServiceCapability(t *testing.T) {
	type args struct {
		cap csi.ControllerServiceCapability_RPC_Type
	}
	var wantCap = &csi.ControllerServiceCapability{}
	wantCap.Type = &csi.ControllerServiceCapability_Rpc{
		Rpc: &csi.ControllerServiceCapability_RPC{
			Type: csi.ControllerServiceCapability_RPC_CREATE_DELETE_SNAPSHOT,
		},
	}
	tests := []struct {
		name string
		args args
		want *csi.ControllerServiceCapability
	}{
		{
			args: args{cap: csi.ControllerServiceCapability_RPC_CREATE_DELETE_SNAPSHOT},
			want: wantCap,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newControllerServiceCapability(tt.args.cap); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("newControllerServiceCapability() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_parseEndpoint(t *testing.T) {
	tests := []struct {
		name      string
		ep        string
		wantProto string
		wantAddr  string
		wantErr   bool
	}{
		{name: "unix", ep: "unix:///csi/csi.sock", wantProto: "unix", wantAddr: "/csi/csi.sock"},
		{name: "tcp", ep: "tcp://127.0.0.1:10000", wantProto: "tcp", wantAddr: "127.0.0.1:10000"},
		{name: "no address", ep: "unix://", wantErr: true},
		{name: "no scheme", ep: "/csi/csi.sock", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proto, addr, err := parseEndpoint(tt.ep)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseEndpoint() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if proto != tt.wantProto || addr != tt.wantAddr {
				t.Errorf("parseEndpoint() = %v, %v, want %v, %v", proto, addr, tt.wantProto, tt.wantAddr)
			}
		})
	}
}

func Test_splitTrimmed(t *testing.T) {
	if got := splitTrimmed(" a, ,b ,", ","); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("splitTrimmed() = %v", got)
	}
	if got := splitTrimmed("", ","); got != nil {
		t.Errorf("splitTrimmed() = %v, want nil", got)
	}
}

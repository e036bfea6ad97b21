package csi

import (
	csi "github.com/container-storage-interface/spec/lib/go/csi"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var _ csi.IdentityServer = (*plugin)(nil)

// Probe reports ready while the gRPC services are registered and an agent registry is wired
func (p *plugin) Probe(ctx context.Context, req *csi.ProbeRequest) (*csi.ProbeResponse, error) {
	ready := p.isServing() && p.registry != nil
	if !ready {
		p.logger.WithFields(log.Fields{"serving": p.isServing(), "registry": p.registry != nil}).Debug("Probe: not ready")
	}
	return &csi.ProbeResponse{Ready: wrapperspb.Bool(ready)}, nil
}

// GetPluginInfo implementation
func (p *plugin) GetPluginInfo(ctx context.Context, req *csi.GetPluginInfoRequest) (*csi.GetPluginInfoResponse, error) {
	p.logger.WithFields(log.Fields{"request": req}).Debug("GetPluginInfo")

	return &csi.GetPluginInfoResponse{
		Name:          p.name,
		VendorVersion: p.version,
	}, nil
}

// GetPluginCapabilities implementation
func (p *plugin) GetPluginCapabilities(ctx context.Context, req *csi.GetPluginCapabilitiesRequest) (*csi.GetPluginCapabilitiesResponse, error) {
	p.logger.WithFields(log.Fields{"request": req}).Debug("GetPluginCapabilities")

	return &csi.GetPluginCapabilitiesResponse{Capabilities: p.pCaps}, nil
}

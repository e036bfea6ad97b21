package csi

import (
	"sync/atomic"

	"github.com/container-storage-interface/spec/lib/go/csi"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"github.com/hwameistor/array-csi/pkg/array/agent"
	"github.com/hwameistor/array-csi/pkg/array/attach"
	"github.com/hwameistor/array-csi/pkg/config"
)

// Driver interface
//
//go:generate mockgen -source=plugin.go -destination=../../controller/csi/plugin_mock.go  -package=csi
type Driver interface {
	Run(stopCh <-chan struct{})
}

// AgentRegistry hands out the storage agent of a set of credentials
type AgentRegistry interface {
	GetAgent(user string, password string, endpoints []string, arrayType string) (*agent.Agent, error)
}

// plugin - block array CSI controller plugin struct including controller, identity and replication
type plugin struct {
	name    string
	version string

	sockAddr   string
	grpcServer Server

	config      *config.Config
	registry    AgentRegistry
	coordinator *attach.Coordinator
	locks       *syncLock
	cleaner     *orphanCleaner

	snapshotTimes *creationTimes

	// serving is 1 between the gRPC server start and the stop signal
	serving int32

	logger *log.Entry

	pCaps  []*csi.PluginCapability
	csCaps []*csi.ControllerServiceCapability
	vCaps  []*csi.VolumeCapability
}

// New - create a new plugin instance; interceptors run after the logging one
func New(cfg *config.Config, sockAddr string, registry AgentRegistry, interceptors ...grpc.UnaryServerInterceptor) Driver {
	logger := log.WithField("Module", "CSIPlugin")
	return newPlugin(cfg, sockAddr, registry, NewGRPCServer(logger, interceptors...))
}

func newPlugin(cfg *config.Config, sockAddr string, registry AgentRegistry, server Server) *plugin {
	return &plugin{
		name:        cfg.Identity.Name,
		version:     cfg.Identity.Version,
		sockAddr:    sockAddr,
		grpcServer:  server,
		config:      cfg,
		registry:    registry,
		coordinator: attach.New(),
		locks:       newSyncLock(),
		cleaner:     newOrphanCleaner(),

		snapshotTimes: newCreationTimes(),
		logger:        log.WithField("Module", "CSIPlugin"),
	}
}

// Run - run the plugin
func (p *plugin) Run(stopCh <-chan struct{}) {

	p.logger.Debug("Initialize CSI plugin ...")
	defer p.logger.Debug("End of Initialize CSI plugin")

	p.initCapabilities()

	//initialize the grpc server for listening on the socket
	p.grpcServer.Init(p.sockAddr)

	p.logger.Debug("Starting to run CSI driver")

	go p.startServer(stopCh)
}

func (p *plugin) startServer(stopCh <-chan struct{}) {
	p.grpcServer.Run(p, p, &replicationServer{plugin: p})
	atomic.StoreInt32(&p.serving, 1)
	go p.cleaner.run(stopCh)

	<-stopCh
	p.logger.Info("Got a stop signal to terminate driver")
	atomic.StoreInt32(&p.serving, 0)
	p.grpcServer.GracefulStop()
}

func (p *plugin) isServing() bool {
	return atomic.LoadInt32(&p.serving) == 1
}

func (p *plugin) initCapabilities() {
	p.initPluginCapabilities()
	p.initControllerServiceCapabilities()
	p.initVolumeCapability()
}

func (p *plugin) initPluginCapabilities() {
	p.pCaps = []*csi.PluginCapability{
		newPluginCapability(csi.PluginCapability_Service_CONTROLLER_SERVICE),
		newVolumeExpansionCapability(csi.PluginCapability_VolumeExpansion_ONLINE),
	}
	for _, c := range p.pCaps {
		p.logger.WithField("capability", c.String()).Debug("Enabling plugin capability.")
	}
}

func (p *plugin) initControllerServiceCapabilities() {
	caps := []csi.ControllerServiceCapability_RPC_Type{
		// for volume
		csi.ControllerServiceCapability_RPC_CREATE_DELETE_VOLUME,
		csi.ControllerServiceCapability_RPC_PUBLISH_UNPUBLISH_VOLUME,
		csi.ControllerServiceCapability_RPC_EXPAND_VOLUME,
		// for snapshot
		csi.ControllerServiceCapability_RPC_CREATE_DELETE_SNAPSHOT,
		// for clone
		csi.ControllerServiceCapability_RPC_CLONE_VOLUME,
	}
	for _, c := range caps {
		p.logger.WithField("capability", c.String()).Debug("Enabling controller service capability.")
		p.csCaps = append(p.csCaps, newControllerServiceCapability(c))
	}
}

func (p *plugin) initVolumeCapability() {
	p.vCaps = []*csi.VolumeCapability{
		{ // Tell CO we can provision readWriteOnce filesystem volumes.
			AccessType: &csi.VolumeCapability_Mount{
				Mount: &csi.VolumeCapability_MountVolume{},
			},
			AccessMode: &csi.VolumeCapability_AccessMode{
				Mode: csi.VolumeCapability_AccessMode_SINGLE_NODE_WRITER},
		},
		{ // Tell CO we can provision readWriteOnce raw block volumes.
			AccessType: &csi.VolumeCapability_Block{
				Block: &csi.VolumeCapability_BlockVolume{},
			},
			AccessMode: &csi.VolumeCapability_AccessMode{
				Mode: csi.VolumeCapability_AccessMode_SINGLE_NODE_WRITER,
			},
		},
	}
	for _, c := range p.vCaps {
		p.logger.WithField("capability", c).Debug("Enabling volume capability")
	}
}

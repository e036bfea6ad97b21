package csi

import (
	"net"
	"os"
	"path"

	csi "github.com/container-storage-interface/spec/lib/go/csi"
	"github.com/csi-addons/spec/lib/go/replication"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/hwameistor/array-csi/pkg/utils"
)

// Server - interface of grpc server which is for k8s communication
//
//go:generate mockgen -source=grpc_server.go -destination=../../controller/csi/grpc_server_mock.go  -package=csi
type Server interface {
	Init(endpoint string)
	Run(ids csi.IdentityServer, cs csi.ControllerServer, rs replication.ControllerServer)
	GracefulStop()
	Stop()
}

type server struct {
	grpcServer *grpc.Server
	listener   net.Listener

	interceptors []grpc.UnaryServerInterceptor
	logger       *log.Entry
}

var _ Server = (*server)(nil)

// NewGRPCServer - create a grpc server instance
func NewGRPCServer(logger *log.Entry, interceptors ...grpc.UnaryServerInterceptor) Server {
	return &server{
		interceptors: interceptors,
		logger:       logger,
	}
}

func (s *server) Init(endpoint string) {
	proto, addr, err := parseEndpoint(endpoint)
	if err != nil {
		s.logger.Fatal(err.Error())
	}

	logCtx := s.logger.WithFields(log.Fields{"proto": proto, "addr": addr})
	if proto == "unix" {
		addr = "/" + addr
		if err := prepareSocketPath(addr); err != nil {
			logCtx.WithError(err).Fatal("Failed to prepare the socket path")
		}
	}

	listener, err := net.Listen(proto, addr)
	if err != nil {
		logCtx.WithError(err).Fatal("Failed to listen")
	}
	if listener.Addr().Network() == "unix" {
		if err := os.Chmod(listener.Addr().String(), 0777); err != nil {
			logCtx.WithError(err).Fatal("Failed to open up the socket")
		}
	}

	s.logger.WithFields(log.Fields{
		"name": listener.Addr().String(),
		"net":  listener.Addr().Network(),
	}).Info("Listening for GRPC connections.")
	s.listener = listener
}

// prepareSocketPath removes a stale socket and creates its directory
func prepareSocketPath(addr string) error {
	if err := os.Remove(addr); err != nil && !os.IsNotExist(err) {
		return err
	}
	dir := path.Dir(addr)
	if exist, _ := pathExists(dir); exist {
		return nil
	}
	log.WithField("dir", dir).Info("Mkdir")
	return os.MkdirAll(dir, 0755)
}

func (s *server) Run(ids csi.IdentityServer, cs csi.ControllerServer, rs replication.ControllerServer) {
	s.logger.Debug("Start gRPC server ...")
	defer s.logger.Debug("End of Start gRPC server")

	if s.listener == nil {
		s.logger.Fatalf("Listener is not initialized yet")
	}

	s.grpcServer = grpc.NewServer(
		grpc.ChainUnaryInterceptor(append([]grpc.UnaryServerInterceptor{utils.LogGRPC}, s.interceptors...)...),
	)
	go s.serve(ids, cs, rs)
}

func (s *server) GracefulStop() {
	s.logger.Debug("Stop gRPC server gracefully ...")
	defer s.logger.Debug("End of Stop gRPC server gracefully")

	s.grpcServer.GracefulStop()
	s.listener.Close()
}

func (s *server) Stop() {
	s.logger.Info("Stop gRPC server ...")
	defer s.logger.Info("End of Stop gRPC server")

	s.grpcServer.Stop()
	s.listener.Close()
}

func (s *server) serve(ids csi.IdentityServer, cs csi.ControllerServer, rs replication.ControllerServer) {
	if ids != nil {
		csi.RegisterIdentityServer(s.grpcServer, ids)
		s.logger.Debug("Registered CSI identity server.")
	}
	if cs != nil {
		csi.RegisterControllerServer(s.grpcServer, cs)
		s.logger.Debug("Registered CSI controller server.")
	}
	if rs != nil {
		replication.RegisterControllerServer(s.grpcServer, rs)
		s.logger.Debug("Registered replication server.")
	}
	reflection.Register(s.grpcServer)

	if err := s.grpcServer.Serve(s.listener); err != nil {
		s.logger.WithError(err).Error("GRPC server stopped")
	}
}

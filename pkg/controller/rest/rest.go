package rest

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/soheilhy/cmux"

	"github.com/hwameistor/array-csi/pkg/array/agent"
	"github.com/hwameistor/array-csi/pkg/utils"
)

// Server interface
type Server interface {
	Run(stopCh <-chan struct{})
}

// AgentStatsSource lists the cached storage agents
type AgentStatsSource interface {
	Stats() []agent.AgentStats
}

type restServer struct {
	httpPort int

	metrics http.Handler
	agents  AgentStatsSource

	logger *log.Entry
}

// New creates a rest server serving health, metrics and agent pool state
func New(httpPort int, metrics http.Handler, agents AgentStatsSource) Server {
	return &restServer{
		httpPort: httpPort,
		metrics:  metrics,
		agents:   agents,
		logger:   log.WithField("Module", "RESTServer"),
	}
}

// Run the rest server
func (rs *restServer) Run(stopCh <-chan struct{}) {

	go rs.startServer(stopCh)
}

func (rs *restServer) startServer(stopCh <-chan struct{}) {

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", rs.httpPort))
	if err != nil {
		rs.logger.Fatalf("Failed to listen: %v", err)
	}
	rs.logger.WithFields(log.Fields{
		"endpoint": listener.Addr().String(),
		"protocol": listener.Addr().Network(),
	}).Info("Listening for REST connections.")

	tcpm := cmux.New(listener)
	go rs.serveHTTP(tcpm.Match(cmux.HTTP1Fast()))

	go func() {
		<-stopCh
		rs.logger.Info("Got a stop signal to terminate REST server")
		listener.Close()
	}()

	if err := tcpm.Serve(); err != nil && !strings.Contains(err.Error(), "use of closed network connection") {
		rs.logger.WithError(err).Fatal("REST server run into problem")
	}
}

func (rs *restServer) serveHTTP(listener net.Listener) {
	// start server on HTTP port
	rs.logger.WithFields(log.Fields{"http.port": rs.httpPort}).Debug("starting HTTP server")
	if err := http.Serve(listener, rs.buildRouter()); err != nil && err != cmux.ErrListenerClosed && !strings.Contains(err.Error(), "use of closed network connection") {
		rs.logger.WithError(err).Error("HTTP server stopped")
	}
}

func (rs *restServer) buildRouter() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	for _, route := range rs.buildRoutes() {
		router.
			Name(route.Name).
			Methods(route.Method).
			Path(route.Pattern).
			Handler(utils.LogREST(route.Handler, route.Name))
	}
	return router
}

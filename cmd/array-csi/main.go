package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"k8s.io/klog"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"

	"github.com/hwameistor/array-csi/pkg/array/agent"
	"github.com/hwameistor/array-csi/pkg/array/detect"
	"github.com/hwameistor/array-csi/pkg/array/vendors"
	"github.com/hwameistor/array-csi/pkg/config"
	"github.com/hwameistor/array-csi/pkg/controller/csi"
	"github.com/hwameistor/array-csi/pkg/controller/rest"
	"github.com/hwameistor/array-csi/pkg/metrics"
	"github.com/hwameistor/array-csi/pkg/utils"
)

const leaseName = "array-csi-controller"

var (
	debug          = flag.Bool("debug", false, "debug mode, false by default")
	csiSockAddr    = flag.String("csi-endpoint", os.Getenv("ENDPOINT"), "CSI endpoint, $ENDPOINT by default")
	configFile     = flag.String("config", "", "YAML file overriding the built-in configuration")
	workers        = flag.Int("workers", 0, "max concurrent mediators per array, overrides the configuration")
	httpPort       = flag.Int("http-port", 0, "HTTP port for health and metrics, overrides the configuration")
	leaderElection = flag.Bool("leader-election", false, "run only while holding the controller lease")
	namespace      = flag.String("namespace", "", "Namespace of the Pod, required with leader election")
	identity       = flag.String("identity", os.Getenv("POD_NAME"), "leader election identity, $POD_NAME by default")
)

var BUILDVERSION, BUILDTIME, GOVERSION string

func printVersion() {
	log.Info(fmt.Sprintf("GitCommit:%q, BuildDate:%q, GoVersion:%q", BUILDVERSION, BUILDTIME, GOVERSION))
}

func setupLogging(enableDebug bool) {
	if enableDebug {
		log.SetLevel(log.DebugLevel)
	}

	log.SetFormatter(&log.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
		// log with funcname, file fileds. eg: func=CreateVolume file="controller.go:43"
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			s := strings.Split(f.Function, ".")
			funcname := s[len(s)-1]
			filename := path.Base(f.File)
			return funcname, fmt.Sprintf("%s:%d", filename, f.Line)
		},
	})
	log.SetReportCaller(true)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *httpPort > 0 {
		cfg.HTTPPort = *httpPort
	}
	return cfg, cfg.Validate()
}

func main() {
	klog.InitFlags(nil)
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)

	pflag.Parse()

	printVersion()

	setupLogging(*debug)

	if *csiSockAddr == "" {
		log.WithFields(log.Fields{"endpoint": *csiSockAddr}).Error("Invalid CSI endpoint")
		os.Exit(1)
	}
	if *leaderElection && (*namespace == "" || *identity == "") {
		log.WithFields(log.Fields{"namespace": *namespace, "identity": *identity}).Error("Leader election needs a namespace and an identity")
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.WithError(err).Error("Invalid configuration")
		os.Exit(1)
	}
	log.WithFields(log.Fields{"name": cfg.Identity.Name, "version": cfg.Identity.Version, "workers": cfg.Workers}).Info("Loaded configuration")

	mc := metrics.NewHandler()
	registry := agent.NewRegistry(detect.New(vendors.DefaultProbes()), vendors.Lookup, cfg.Workers, mc)
	mc.Register(metrics.NewAgentCollector(registry))

	driver := csi.New(cfg, *csiSockAddr, registry, mc.UnaryServerInterceptor)
	restServer := rest.New(cfg.HTTPPort, mc, registry)

	runFunc := func(ctx context.Context) {
		stopCtx := signals.SetupSignalHandler()
		stopCh := make(chan struct{})

		// Convert context.Cancel signal to chan event
		go func() {
			select {
			case <-stopCtx.Done():
			case <-ctx.Done():
			}
			close(stopCh)
		}()

		log.Info("Starting the block array CSI controller")
		restServer.Run(stopCh)
		driver.Run(stopCh)

		// This will run forever until channel receives stop signal
		<-stopCh
		registry.ClearAgents()
		log.Debug("Stopped the block array CSI controller")
	}

	if !*leaderElection {
		runFunc(context.Background())
		log.Debug("Completely stopped")
		return
	}

	log.Debug("Starting the controller with leader election")
	if err := utils.RunWithLease(*namespace, *identity, leaseName, runFunc); err != nil {
		log.WithError(err).Error("failed to run with leader election")
		os.Exit(1)
	}

	log.Debug("Completely stopped")
}

package manager

import (
	"fmt"
	"os"

	"github.com/hwameistor/array-csi/pkg/apis/array"
	"github.com/hwameistor/array-csi/pkg/array/agent"
	"github.com/hwameistor/array-csi/pkg/array/detect"
	"github.com/hwameistor/array-csi/pkg/array/vendors"
	"github.com/hwameistor/array-csi/pkg/arrayctl/cmdparser/definitions"
)

// ArrayManager runs one-shot commands against an array through the same
// agent the controller uses
type ArrayManager struct {
	registry *agent.Registry
	detector agent.Detector
}

// NewArrayManager builds a manager over the real vendors
func NewArrayManager() *ArrayManager {
	detector := detect.New(vendors.DefaultProbes()).WithTimeout(definitions.Timeout)
	return newArrayManager(detector, vendors.Lookup)
}

func newArrayManager(detector agent.Detector, lookup agent.VendorLookup) *ArrayManager {
	return &ArrayManager{
		registry: agent.NewRegistry(detector, lookup, 1, nil),
		detector: detector,
	}
}

// Detect resolves the array type behind the endpoints
func (m *ArrayManager) Detect(endpoints []string) (string, error) {
	if len(endpoints) == 0 {
		return "", fmt.Errorf("no endpoints given, use --endpoints")
	}
	return m.detector.Detect(endpoints)
}

// Do runs fn with a mediator logged in with the global credentials
func (m *ArrayManager) Do(fn func(mediator array.Mediator) error) error {
	user, password, err := credentials()
	if err != nil {
		return err
	}
	storageAgent, err := m.registry.GetAgent(user, password, definitions.Endpoints, definitions.ArrayType)
	if err != nil {
		return err
	}
	defer m.registry.ClearAgents()

	return storageAgent.Do(fn)
}

func credentials() (string, string, error) {
	user, password := definitions.Username, definitions.Password
	if user == "" {
		user = os.Getenv(definitions.EnvUsername)
	}
	if password == "" {
		password = os.Getenv(definitions.EnvPassword)
	}
	if user == "" || password == "" {
		return "", "", fmt.Errorf("credentials are required, use --username and --password or $%s and $%s", definitions.EnvUsername, definitions.EnvPassword)
	}
	return user, password, nil
}

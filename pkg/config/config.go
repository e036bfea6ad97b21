package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfig []byte

// Config of the controller
type Config struct {
	Identity   IdentityConfig   `yaml:"identity"`
	Controller ControllerConfig `yaml:"controller"`
	Workers    int              `yaml:"workers"`
	HTTPPort   int              `yaml:"http_port"`
}

// IdentityConfig is reported by GetPluginInfo
type IdentityConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ControllerConfig holds the keys of the CSI controller's wire surface
type ControllerConfig struct {
	SupportedFSTypes []string             `yaml:"supported_fs_types"`
	PublishContext   PublishContextConfig `yaml:"publish_context"`
	Parameters       ParametersConfig     `yaml:"parameters"`
}

// PublishContextConfig names the keys of ControllerPublishVolume's response
type PublishContextConfig struct {
	LUN          string `yaml:"lun"`
	Connectivity string `yaml:"connectivity"`
	ArrayIQN     string `yaml:"array_iqn"`
	FCWWNs       string `yaml:"fc_wwns"`
	Separator    string `yaml:"separator"`
}

// ParametersConfig names the StorageClass and VolumeSnapshotClass parameters
type ParametersConfig struct {
	Pool               string `yaml:"pool"`
	SpaceEfficiency    string `yaml:"space_efficiency"`
	VolumeNamePrefix   string `yaml:"volume_name_prefix"`
	SnapshotNamePrefix string `yaml:"snapshot_name_prefix"`
	IOGroup            string `yaml:"io_group"`
	VolumeGroup        string `yaml:"volume_group"`
	SystemID           string `yaml:"system_id"`
	CopyType           string `yaml:"copy_type"`
	ReplicationHandle  string `yaml:"replication_handle"`
}

// NewDefault returns the built-in configuration
func NewDefault() *Config {
	c := &Config{}
	if err := yaml.Unmarshal(defaultConfig, c); err != nil {
		panic(fmt.Errorf("invalid built-in config: %w", err))
	}
	return c
}

// Load reads the file over the built-in configuration; an empty filename
// yields the defaults
func Load(filename string) (*Config, error) {
	c := NewDefault()
	if filename == "" {
		return c, nil
	}
	if err := c.LoadFromFile(filename); err != nil {
		return nil, err
	}
	return c, c.Validate()
}

// LoadFromFile overrides the fields present in the file
func (c *Config) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// LoadFromEnv applies WORKERS
func (c *Config) LoadFromEnv() error {
	if val := os.Getenv("WORKERS"); val != "" {
		workers, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid WORKERS %q: %w", val, err)
		}
		c.Workers = workers
	}
	return nil
}

// Validate checks the values the controller can't run without
func (c *Config) Validate() error {
	if c.Identity.Name == "" {
		return fmt.Errorf("identity name is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.Controller.PublishContext.Separator == "" {
		return fmt.Errorf("publish context separator is required")
	}
	if c.Controller.Parameters.Pool == "" {
		return fmt.Errorf("pool parameter name is required")
	}
	return nil
}

// IsSupportedFSType reports whether fsType may be requested; empty means the default
func (c *Config) IsSupportedFSType(fsType string) bool {
	if fsType == "" {
		return true
	}
	for _, t := range c.Controller.SupportedFSTypes {
		if t == fsType {
			return true
		}
	}
	return false
}

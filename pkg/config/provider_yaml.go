package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}
	return ParseYAML(cfgFile)
}

// ParseYAML converts a YAML document into validated configuration. Omitted
// engine values keep their defaults.
func ParseYAML(b []byte) (*ConfigData, error) {
	var yamlConfig ConfigYAML
	if err := yaml.Unmarshal(b, &yamlConfig); err != nil {
		return nil, fmt.Errorf("error parsing YAML config: %w", err)
	}

	config := Default()

	if s := yamlConfig.Server; s != nil {
		config.Server = RESTServerData{
			Cert:       s.Cert,
			Key:        s.Key,
			Port:       s.Port,
			ListenAddr: s.ListenAddr,
			EnableCORS: s.EnableCORS,
		}
	}

	if e := yamlConfig.Engine; e != nil {
		if e.LossesPercent != nil {
			config.Engine.LossesPercent = *e.LossesPercent
		}
		if e.Turbidity != nil {
			config.Engine.Turbidity = *e.Turbidity
		}
		if e.Albedo != nil {
			config.Engine.Albedo = *e.Albedo
		}
	}

	if yamlConfig.Climate != nil {
		config.Climate = &ClimateDBData{
			ConnectionString: yamlConfig.Climate.ConnectionString,
		}
	}

	if l := yamlConfig.Logging; l != nil {
		config.Logging = LoggingData{
			Debug:      l.Debug,
			File:       l.File,
			MaxSizeMB:  l.MaxSizeMB,
			MaxBackups: l.MaxBackups,
			MaxAgeDays: l.MaxAgeDays,
		}
	}

	config.ApplyServerDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// IsReadOnly returns true since YAML files are edited by hand
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML files
func (y *YAMLProvider) Close() error {
	return nil
}

// ConfigYAML is the on-disk layout of a YAML configuration file
type ConfigYAML struct {
	Server  *ServerYAML  `yaml:"server,omitempty"`
	Engine  *EngineYAML  `yaml:"engine,omitempty"`
	Climate *ClimateYAML `yaml:"climate,omitempty"`
	Logging *LoggingYAML `yaml:"logging,omitempty"`
}

type ServerYAML struct {
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	ListenAddr string `yaml:"listen-addr,omitempty"`
	EnableCORS bool   `yaml:"enable-cors,omitempty"`
}

type EngineYAML struct {
	LossesPercent *float64 `yaml:"losses-percent,omitempty"`
	Turbidity     *float64 `yaml:"turbidity,omitempty"`
	Albedo        *float64 `yaml:"albedo,omitempty"`
}

type ClimateYAML struct {
	ConnectionString string `yaml:"connection-string"`
}

type LoggingYAML struct {
	Debug      bool   `yaml:"debug,omitempty"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max-size-mb,omitempty"`
	MaxBackups int    `yaml:"max-backups,omitempty"`
	MaxAgeDays int    `yaml:"max-age-days,omitempty"`
}

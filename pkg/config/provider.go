package config

import (
	"fmt"

	"github.com/chrissnell/pvestimate/pkg/solar"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration, with defaults applied and validated
	LoadConfig() (*ConfigData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Server  RESTServerData `json:"server"`
	Engine  EngineData     `json:"engine"`
	Climate *ClimateDBData `json:"climate,omitempty"`
	Logging LoggingData    `json:"logging"`
}

// RESTServerData configures the HTTP listener
type RESTServerData struct {
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
	Port       int    `json:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty"`
	EnableCORS bool   `json:"enable_cors,omitempty"`
}

// EngineData holds the estimation parameters shared by every request
type EngineData struct {
	LossesPercent float64 `json:"losses_percent"`
	Turbidity     float64 `json:"turbidity"`
	Albedo        float64 `json:"albedo"`
}

// ClimateDBData points at the PostgreSQL database holding clearness normals
type ClimateDBData struct {
	ConnectionString string `json:"connection_string"`
}

// LoggingData configures the optional rotating log file
type LoggingData struct {
	Debug      bool   `json:"debug,omitempty"`
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
}

const (
	DefaultListenAddr = "0.0.0.0"
	DefaultPort       = 8080
)

// Default returns a configuration with every default filled in
func Default() *ConfigData {
	coeffs := solar.DefaultCoefficients()
	return &ConfigData{
		Server: RESTServerData{
			ListenAddr: DefaultListenAddr,
			Port:       DefaultPort,
		},
		Engine: EngineData{
			LossesPercent: solar.DefaultLossesPercent,
			Turbidity:     coeffs.Turbidity,
			Albedo:        coeffs.Albedo,
		},
	}
}

// ApplyServerDefaults fills in the listener address and port when missing
func (c *ConfigData) ApplyServerDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
}

// Validate checks the configuration for values the engine cannot use
func (c *ConfigData) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if (c.Server.Cert == "") != (c.Server.Key == "") {
		return fmt.Errorf("server.cert and server.key must be set together")
	}
	if c.Engine.LossesPercent < 0 || c.Engine.LossesPercent >= 100 {
		return fmt.Errorf("engine.losses_percent must be within [0, 100), got %v", c.Engine.LossesPercent)
	}
	if err := c.Engine.Coefficients().Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if c.Climate != nil && c.Climate.ConnectionString == "" {
		return fmt.Errorf("climate.connection_string is required when climate is configured")
	}
	return nil
}

// Coefficients returns the irradiance model coefficients, without a climate table
func (e EngineData) Coefficients() solar.Coefficients {
	return solar.Coefficients{
		Turbidity: e.Turbidity,
		Albedo:    e.Albedo,
	}
}

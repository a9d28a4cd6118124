package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Server holds all configuration for the bancho server.
type Server struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Ports       []int  `yaml:"ports"`
	Domain      string `yaml:"domain"`

	// Behaviour
	Debug            bool     `yaml:"debug"`
	Maintenance      bool     `yaml:"maintenance"`
	FreeSupporter    bool     `yaml:"free_supporter"`
	BotName          string   `yaml:"bot_name"`
	MenuIconImage    string   `yaml:"menu_icon_image"`
	MenuIconURL      string   `yaml:"menu_icon_url"`
	AutojoinChannels []string `yaml:"autojoin_channels"`

	// Version clamp; zero means unbounded.
	MinClientVersion int `yaml:"min_client_version"`
	MaxClientVersion int `yaml:"max_client_version"`

	// Database
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultServer returns server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		BindAddress:      "0.0.0.0",
		Ports:            []int{13381, 13382, 13383},
		Domain:           "localhost",
		BotName:          "BanchoBot",
		AutojoinChannels: []string{"#osu", "#announce"},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "banchod",
			Password: "banchod",
			DBName:   "banchod",
			SSLMode:  "disable",
		},
	}
}

// LoadServer loads server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Database driver names accepted in DBConfig.Driver.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config holds the application configuration
type Config struct {
	DB       DBConfig    `json:"db"`
	Email    EmailConfig `json:"email"`
	LogLevel string      `json:"log_level"`
	APIPort  string      `json:"api_port"`
}

// DBConfig describes the relational store the collector writes to.
type DBConfig struct {
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	Charset  string `json:"charset"`
	Path     string `json:"path"` // SQLite file path, used when driver is sqlite
}

// EmailConfig describes the mailbox the collector scans.
type EmailConfig struct {
	Address    string `json:"address"`
	Password   string `json:"password"` // provider authorization code, not the login password
	IMAPServer string `json:"imap_server"`
}

// Default configuration values
const (
	DefaultDriver     = DriverMySQL
	DefaultDatabase   = "job_emails"
	DefaultCharset    = "utf8mb4"
	DefaultSQLitePath = "data/job_emails.db"
	DefaultIMAPServer = "imap.qq.com"
	DefaultLogLevel   = "INFO"
	DefaultAPIPort    = "3001"
)

// Load loads configuration from environment variables and config file
// Priority: Environment variables > Config file > Default values
func Load() (*Config, error) {
	return LoadFrom("config.json", filepath.Join("data", "config.json"))
}

// LoadFrom is Load with explicit candidate config file paths; the first
// readable one wins. Tests use it to point at synthetic configs.
func LoadFrom(paths ...string) (*Config, error) {
	cfg := &Config{
		DB: DBConfig{
			Driver:   DefaultDriver,
			Database: DefaultDatabase,
			Charset:  DefaultCharset,
			Path:     DefaultSQLitePath,
		},
		Email: EmailConfig{
			IMAPServer: DefaultIMAPServer,
		},
		LogLevel: DefaultLogLevel,
		APIPort:  DefaultAPIPort,
	}

	// Config file is optional; missing or unreadable files are skipped.
	cfg.loadFromFile(paths)

	// Override with environment variables
	cfg.loadFromEnv()

	return cfg, nil
}

// loadFromFile loads configuration from the first readable config file.
func (c *Config) loadFromFile(paths []string) {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := json.Unmarshal(data, c); err == nil {
			return
		}
	}
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if val := os.Getenv("JOBMAIL_DB_DRIVER"); val != "" {
		c.DB.Driver = val
	}
	if val := os.Getenv("JOBMAIL_DB_HOST"); val != "" {
		c.DB.Host = val
	}
	if val := os.Getenv("JOBMAIL_DB_USER"); val != "" {
		c.DB.User = val
	}
	if val := os.Getenv("JOBMAIL_DB_PASSWORD"); val != "" {
		c.DB.Password = val
	}
	if val := os.Getenv("JOBMAIL_DB_NAME"); val != "" {
		c.DB.Database = val
	}
	if val := os.Getenv("JOBMAIL_DB_CHARSET"); val != "" {
		c.DB.Charset = val
	}
	if val := os.Getenv("JOBMAIL_DB_PATH"); val != "" {
		c.DB.Path = val
	}
	if val := os.Getenv("JOBMAIL_EMAIL_ADDRESS"); val != "" {
		c.Email.Address = val
	}
	if val := os.Getenv("JOBMAIL_EMAIL_PASSWORD"); val != "" {
		c.Email.Password = val
	}
	if val := os.Getenv("JOBMAIL_IMAP_SERVER"); val != "" {
		c.Email.IMAPServer = val
	}
	if val := os.Getenv("JOBMAIL_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("JOBMAIL_API_PORT"); val != "" {
		c.APIPort = val
	}
}

// Save saves the current configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

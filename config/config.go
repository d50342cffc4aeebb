package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Device      DeviceConfig   `mapstructure:"device" yaml:"device"`
	Endpoints   EndpointConfig `mapstructure:"endpoints" yaml:"endpoints"`
	Poll        PollConfig     `mapstructure:"poll" yaml:"poll"`
	Export      ExportConfig   `mapstructure:"export" yaml:"export"`
	UsbIds      string         `mapstructure:"usbids" yaml:"usbids"`
	RemoteHosts []RemoteHost   `mapstructure:"remote_hosts" yaml:"remote_hosts"`
}

// DeviceConfig identifies the HydraDancer control board.
type DeviceConfig struct {
	VendorID  uint16 `mapstructure:"vendor_id" yaml:"vendor_id"`
	ProductID uint16 `mapstructure:"product_id" yaml:"product_id"`
	Config    int    `mapstructure:"config" yaml:"config"`
	Interface int    `mapstructure:"interface" yaml:"interface"`
	AltSet    int    `mapstructure:"alt_setting" yaml:"alt_setting"`
	MaxChunk  int    `mapstructure:"max_chunk" yaml:"max_chunk"`
}

// EndpointConfig binds the four protocol roles to physical endpoint
// addresses. IN endpoints carry the 0x80 direction bit.
type EndpointConfig struct {
	CommandOut uint8 `mapstructure:"command_out" yaml:"command_out"`
	DataOut    uint8 `mapstructure:"data_out" yaml:"data_out"`
	DataIn     uint8 `mapstructure:"data_in" yaml:"data_in"`
	LogIn      uint8 `mapstructure:"log_in" yaml:"log_in"`
}

// PollConfig tunes the read-poll loops.
type PollConfig struct {
	LogInterval time.Duration `mapstructure:"log_interval" yaml:"log_interval"`
	EchoTimeout time.Duration `mapstructure:"echo_timeout" yaml:"echo_timeout"`
}

// ExportConfig represents export configuration
type ExportConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
	Path   string `mapstructure:"path" yaml:"path"`
}

// RemoteHost represents a remote host session artifacts can be pushed to
type RemoteHost struct {
	Name        string `mapstructure:"name" yaml:"name"`
	IP          string `mapstructure:"ip" yaml:"ip"`
	Port        string `mapstructure:"port" yaml:"port"`
	User        string `mapstructure:"user" yaml:"user"`
	SSHKey      string `mapstructure:"ssh_key" yaml:"ssh_key"`
	Password    string `mapstructure:"password,omitempty" yaml:"password,omitempty"`
	RemotePath  string `mapstructure:"remote_path" yaml:"remote_path"`
	Timeout     int    `mapstructure:"timeout" yaml:"timeout"`
	InsecureSSH bool   `mapstructure:"insecure_ssh" yaml:"insecure_ssh"`
}

// DefaultConfig returns configuration with default values. The endpoint
// map matches the reference deployment: command and data traffic share
// EP1 OUT, responses arrive on EP1 IN, debug log on EP7 IN.
func DefaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			VendorID:  0x1337,
			ProductID: 0x1337,
			Config:    1,
			Interface: 0,
			AltSet:    0,
			MaxChunk:  512,
		},
		Endpoints: EndpointConfig{
			CommandOut: 0x01,
			DataOut:    0x01,
			DataIn:     0x81,
			LogIn:      0x87,
		},
		Poll: PollConfig{
			LogInterval: 10 * time.Millisecond,
		},
		Export: ExportConfig{
			Format: "pdf",
			Path:   ".",
		},
		UsbIds:      "/var/lib/usbutils/usb.ids",
		RemoteHosts: []RemoteHost{},
	}
}

// Load loads configuration from file and returns merged config
// Priority: CLI flags > Environment variables > Config file > Defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Set config file details
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Search for config in multiple locations
		v.SetConfigName(".hostctl")
		v.SetConfigType("yaml")

		// Add config search paths
		homeDir, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(homeDir)
		}
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/hostctl/")
	}

	// Enable environment variables
	v.SetEnvPrefix("HOSTCTL")
	v.AutomaticEnv()

	// Read config file (optional - don't fail if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found - use defaults
	}

	// Unmarshal into config struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Expand paths
	if cfg.UsbIds != "" {
		cfg.UsbIds = expandPath(cfg.UsbIds)
	}
	if cfg.Export.Path != "" {
		cfg.Export.Path = expandPath(cfg.Export.Path)
	}
	for i := range cfg.RemoteHosts {
		if cfg.RemoteHosts[i].SSHKey != "" {
			cfg.RemoteHosts[i].SSHKey = expandPath(cfg.RemoteHosts[i].SSHKey)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("device.vendor_id", 0x1337)
	v.SetDefault("device.product_id", 0x1337)
	v.SetDefault("device.config", 1)
	v.SetDefault("device.interface", 0)
	v.SetDefault("device.alt_setting", 0)
	v.SetDefault("device.max_chunk", 512)
	v.SetDefault("endpoints.command_out", 0x01)
	v.SetDefault("endpoints.data_out", 0x01)
	v.SetDefault("endpoints.data_in", 0x81)
	v.SetDefault("endpoints.log_in", 0x87)
	v.SetDefault("poll.log_interval", 10*time.Millisecond)
	v.SetDefault("poll.echo_timeout", time.Duration(0))
	v.SetDefault("export.format", "pdf")
	v.SetDefault("export.path", ".")
	v.SetDefault("usbids", "/var/lib/usbutils/usb.ids")
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}

// GetRemoteHost returns remote host configuration by name
func (c *Config) GetRemoteHost(name string) (*RemoteHost, error) {
	for _, host := range c.RemoteHosts {
		if host.Name == name {
			return &host, nil
		}
	}
	return nil, fmt.Errorf("remote host '%s' not found in configuration", name)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Device.MaxChunk <= 0 || c.Device.MaxChunk > 512 {
		return fmt.Errorf("invalid max_chunk: %d (must be in 1..512)", c.Device.MaxChunk)
	}

	// Direction bits must match the role each endpoint is bound to
	if c.Endpoints.CommandOut&0x80 != 0 {
		return fmt.Errorf("command_out endpoint %#02x must be an OUT endpoint", c.Endpoints.CommandOut)
	}
	if c.Endpoints.DataOut&0x80 != 0 {
		return fmt.Errorf("data_out endpoint %#02x must be an OUT endpoint", c.Endpoints.DataOut)
	}
	if c.Endpoints.DataIn&0x80 == 0 {
		return fmt.Errorf("data_in endpoint %#02x must be an IN endpoint", c.Endpoints.DataIn)
	}
	if c.Endpoints.LogIn&0x80 == 0 {
		return fmt.Errorf("log_in endpoint %#02x must be an IN endpoint", c.Endpoints.LogIn)
	}

	if c.Poll.LogInterval < 0 {
		return fmt.Errorf("log_interval cannot be negative")
	}
	if c.Poll.EchoTimeout < 0 {
		return fmt.Errorf("echo_timeout cannot be negative")
	}

	// Validate export format
	validFormats := map[string]bool{"json": true, "xml": true, "pdf": true}
	if c.Export.Format != "" && !validFormats[c.Export.Format] {
		return fmt.Errorf("invalid export format: %s (must be json, xml, or pdf)", c.Export.Format)
	}

	// Validate remote hosts
	for i := range c.RemoteHosts {
		host := &c.RemoteHosts[i]
		if host.Name == "" {
			return fmt.Errorf("remote host #%d: name is required", i)
		}
		if host.IP == "" {
			return fmt.Errorf("remote host '%s': IP is required", host.Name)
		}
		if host.User == "" {
			return fmt.Errorf("remote host '%s': user is required", host.Name)
		}
		if host.SSHKey == "" && host.Password == "" {
			return fmt.Errorf("remote host '%s': either ssh_key or password is required", host.Name)
		}
		if host.Port == "" {
			host.Port = "22"
		}
		if host.Timeout == 0 {
			host.Timeout = 30
		}
	}

	return nil
}

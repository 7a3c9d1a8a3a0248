package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	domain "github.com/oshokin/wakeup-alarm/internal/domain/alarm"
)

// Config holds the settings shared by the alarm binaries.
type Config struct {
	// StatusAddress is the gRPC status API address. The controller listens on
	// its port; the CLI tools dial it.
	StatusAddress string `yaml:"status_addr"`
	// Timeout bounds network operations: RPC calls and single publishes.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum log level name.
	LogLevel string `yaml:"log_level"`
	// LogFile is an optional path of a rotated JSON log file.
	LogFile string `yaml:"log_file"`
	// TriggerDelay is how long the controller idles after connecting before it arms the alarm.
	TriggerDelay time.Duration `yaml:"trigger_delay"`
	// PollInterval is the idle time between two receive-polls of the channel.
	PollInterval time.Duration `yaml:"poll_interval"`
	// DisplayHold is how long the success screen stays before returning to idle.
	DisplayHold time.Duration `yaml:"display_hold"`
	// Locations is the closed set of rooms a target is drawn from.
	Locations []domain.Location `yaml:"locations"`
	// MQTT describes the broker session.
	MQTT MQTT `yaml:"mqtt"`
	// Buzzer describes the audible actuator.
	Buzzer Buzzer `yaml:"buzzer"`
}

// MQTT holds broker connection settings.
type MQTT struct {
	// BrokerURL is the broker address, e.g. mqtts://broker.example.com:8883.
	BrokerURL string `yaml:"broker_url"`
	// ClientID identifies this controller to the broker.
	ClientID string `yaml:"client_id"`
	// Username for broker authentication.
	Username string `yaml:"username"`
	// Password for broker authentication.
	Password string `yaml:"password"`
	// InsecureSkipVerify disables broker certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
	// KeepAlive is the MQTT keep-alive interval.
	KeepAlive time.Duration `yaml:"keep_alive"`
}

// Buzzer holds the tone and the optional PWM device.
type Buzzer struct {
	// Frequency is the tone in Hz.
	Frequency uint32 `yaml:"frequency"`
	// Intensity is the 16-bit duty value (0..65535).
	Intensity uint16 `yaml:"intensity"`
	// PWMPath is a sysfs PWM channel directory, e.g. /sys/class/pwm/pwmchip0/pwm0.
	// When empty the buzzer is simulated in the log.
	PWMPath string `yaml:"pwm_path"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "wakeup-alarm-settings.yaml"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultTriggerDelay is the default pause between connecting and arming.
	DefaultTriggerDelay = 5 * time.Second

	// DefaultPollInterval is the default idle time between receive-polls.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultDisplayHold is the default time the success screen is shown.
	DefaultDisplayHold = 2 * time.Second

	// DefaultClientID is the MQTT client identifier used when none is configured.
	DefaultClientID = "wakeup-alarm-controller"

	// DefaultKeepAlive is the default MQTT keep-alive interval.
	DefaultKeepAlive = 60 * time.Second

	// DefaultFrequency is the default buzzer tone in Hz.
	DefaultFrequency = 500

	// DefaultIntensity is the default buzzer duty value.
	DefaultIntensity = 5000

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBrokerRequired is returned when the broker URL is missing.
	errBrokerRequired = errors.New("mqtt broker url must be provided")
	// errUnsupportedScheme is returned for a broker URL with an unknown scheme.
	errUnsupportedScheme = errors.New("unsupported broker url scheme")
	// errStatusAddressRequired is returned when a tool needs the status API but none is set.
	errStatusAddressRequired = errors.New("status address must be provided")
)

// brokerSchemes lists the URL schemes understood by the MQTT client.
//
//nolint:gochecknoglobals // Read-only lookup table.
var brokerSchemes = []string{"mqtt", "tcp", "mqtts", "ssl", "tls", "ws", "wss"}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions, the file holds broker credentials.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills defaults for omitted values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.StatusAddress != "" {
		if _, _, err := net.SplitHostPort(cfg.StatusAddress); err != nil {
			return fmt.Errorf("invalid status address: %w", err)
		}
	}

	if err := validateMQTT(&cfg.MQTT); err != nil {
		return err
	}

	if len(cfg.Locations) == 0 {
		cfg.Locations = domain.DefaultLocations()
	}

	if err := domain.ValidateLocations(cfg.Locations); err != nil {
		return fmt.Errorf("invalid locations: %w", err)
	}

	applyDefaults(cfg)

	return nil
}

// RequireStatusAddress returns the status address or an error when none is configured.
func (c *Config) RequireStatusAddress() (string, error) {
	if c.StatusAddress == "" {
		return "", errStatusAddressRequired
	}

	return c.StatusAddress, nil
}

// validateMQTT checks the broker URL.
func validateMQTT(m *MQTT) error {
	if m.BrokerURL == "" {
		return errBrokerRequired
	}

	u, err := url.Parse(m.BrokerURL)
	if err != nil {
		return fmt.Errorf("invalid broker url: %w", err)
	}

	if !slices.Contains(brokerSchemes, u.Scheme) {
		return fmt.Errorf("%w: %q", errUnsupportedScheme, u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("invalid broker url %q: missing host", m.BrokerURL)
	}

	return nil
}

// applyDefaults fills zero values with package defaults.
func applyDefaults(cfg *Config) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.TriggerDelay <= 0 {
		cfg.TriggerDelay = DefaultTriggerDelay
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	if cfg.DisplayHold <= 0 {
		cfg.DisplayHold = DefaultDisplayHold
	}

	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = DefaultClientID
	}

	if cfg.MQTT.KeepAlive <= 0 {
		cfg.MQTT.KeepAlive = DefaultKeepAlive
	}

	if cfg.Buzzer.Frequency == 0 {
		cfg.Buzzer.Frequency = DefaultFrequency
	}

	if cfg.Buzzer.Intensity == 0 {
		cfg.Buzzer.Intensity = DefaultIntensity
	}
}

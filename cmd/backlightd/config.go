package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/quentinrf/backlightd/internal/adapters/login1"
	"github.com/quentinrf/backlightd/internal/ports"
)

// Config holds application configuration
type Config struct {
	BacklightRoot   string
	BacklightDevice string
	SensorRoot      string
	SensorDevice    string
	SensorType      string // "sysfs" | "mock"
	WriterType      string // "login1" | "sysfs" | "mock"
	DBus            login1.Config

	PollInterval    time.Duration
	ChangeThreshold int // percent
	StepInterval    time.Duration

	RepoType         string // "memory" | "sqlite"
	DBPath           string // SQLite database file path (used when RepoType=sqlite)
	HistoryRetention time.Duration

	StatusPort string // empty disables the status service
	TLSCert    string // path to this service's certificate
	TLSKey     string // path to this service's private key
	TLSCA      string // path to the CA certificate

	LogLevel zerolog.Level
}

// defaultConfig matches a stock laptop with an Intel panel and one IIO light sensor
func defaultConfig() Config {
	return Config{
		BacklightRoot:   "/sys/class/backlight",
		BacklightDevice: "intel_backlight",
		SensorRoot:      "/sys/bus/iio/devices",
		SensorDevice:    "iio:device0",
		SensorType:      "sysfs",
		WriterType:      "login1",
		DBus: login1.Config{
			Destination: login1.DefaultDestination,
			Path:        login1.DefaultPath,
			Interface:   login1.DefaultInterface,
		},
		PollInterval:     ports.DefaultPollInterval,
		ChangeThreshold:  ports.DefaultChangeThreshold,
		StepInterval:     ports.DefaultStepInterval,
		RepoType:         "memory",
		DBPath:           "./backlight.db",
		HistoryRetention: 30 * 24 * time.Hour,
		LogLevel:         zerolog.InfoLevel,
	}
}

// fileConfig is the YAML layout of CONFIG_FILE. Unset keys keep their defaults.
type fileConfig struct {
	Backlight struct {
		Root   string `yaml:"root"`
		Device string `yaml:"device"`
	} `yaml:"backlight"`

	Sensor struct {
		Root   string `yaml:"root"`
		Device string `yaml:"device"`
		Type   string `yaml:"type"`
	} `yaml:"sensor"`

	Writer struct {
		Type string `yaml:"type"`
		DBus struct {
			Destination string `yaml:"destination"`
			Path        string `yaml:"path"`
			Interface   string `yaml:"interface"`
		} `yaml:"dbus"`
	} `yaml:"writer"`

	Monitor struct {
		PollInterval     time.Duration `yaml:"poll_interval"`
		ThresholdPercent *int          `yaml:"threshold_percent"`
	} `yaml:"monitor"`

	Actuator struct {
		StepInterval time.Duration `yaml:"step_interval"`
	} `yaml:"actuator"`

	History struct {
		Repo      string        `yaml:"repo"`
		DBPath    string        `yaml:"db_path"`
		Retention time.Duration `yaml:"retention"`
	} `yaml:"history"`

	Status struct {
		Port string `yaml:"port"`
		TLS  struct {
			Cert string `yaml:"cert"`
			Key  string `yaml:"key"`
			CA   string `yaml:"ca"`
		} `yaml:"tls"`
	} `yaml:"status"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// loadConfig starts from defaults, applies CONFIG_FILE if set, then
// environment variables, and validates the result
func loadConfig() (Config, error) {
	config := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := config.applyFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := config.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := config.validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.BacklightRoot, fc.Backlight.Root)
	setString(&c.BacklightDevice, fc.Backlight.Device)
	setString(&c.SensorRoot, fc.Sensor.Root)
	setString(&c.SensorDevice, fc.Sensor.Device)
	setString(&c.SensorType, fc.Sensor.Type)
	setString(&c.WriterType, fc.Writer.Type)
	setString(&c.DBus.Destination, fc.Writer.DBus.Destination)
	setString(&c.DBus.Path, fc.Writer.DBus.Path)
	setString(&c.DBus.Interface, fc.Writer.DBus.Interface)
	setString(&c.RepoType, fc.History.Repo)
	setString(&c.DBPath, fc.History.DBPath)
	setString(&c.StatusPort, fc.Status.Port)
	setString(&c.TLSCert, fc.Status.TLS.Cert)
	setString(&c.TLSKey, fc.Status.TLS.Key)
	setString(&c.TLSCA, fc.Status.TLS.CA)

	if fc.Monitor.PollInterval != 0 {
		c.PollInterval = fc.Monitor.PollInterval
	}
	if fc.Monitor.ThresholdPercent != nil {
		c.ChangeThreshold = *fc.Monitor.ThresholdPercent
	}
	if fc.Actuator.StepInterval != 0 {
		c.StepInterval = fc.Actuator.StepInterval
	}
	if fc.History.Retention != 0 {
		c.HistoryRetention = fc.History.Retention
	}

	if fc.Logging.Level != "" {
		level, err := zerolog.ParseLevel(fc.Logging.Level)
		if err != nil {
			return fmt.Errorf("logging.level: %w", err)
		}
		c.LogLevel = level
	}

	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.BacklightRoot, os.Getenv("BACKLIGHT_ROOT"))
	setString(&c.BacklightDevice, os.Getenv("BACKLIGHT_DEVICE"))
	setString(&c.SensorRoot, os.Getenv("SENSOR_ROOT"))
	setString(&c.SensorDevice, os.Getenv("SENSOR_DEVICE"))
	setString(&c.SensorType, os.Getenv("SENSOR_TYPE"))
	setString(&c.WriterType, os.Getenv("WRITER_TYPE"))
	setString(&c.DBus.Destination, os.Getenv("DBUS_DEST"))
	setString(&c.DBus.Path, os.Getenv("DBUS_PATH"))
	setString(&c.DBus.Interface, os.Getenv("DBUS_INTERFACE"))
	setString(&c.RepoType, os.Getenv("REPO_TYPE"))
	setString(&c.DBPath, os.Getenv("DB_PATH"))
	setString(&c.StatusPort, os.Getenv("STATUS_PORT"))
	setString(&c.TLSCert, os.Getenv("TLS_CERT"))
	setString(&c.TLSKey, os.Getenv("TLS_KEY"))
	setString(&c.TLSCA, os.Getenv("TLS_CA"))

	durations := []struct {
		env string
		dst *time.Duration
	}{
		{"POLL_INTERVAL", &c.PollInterval},
		{"STEP_INTERVAL", &c.StepInterval},
		{"HISTORY_RETENTION", &c.HistoryRetention},
	}
	for _, d := range durations {
		s := os.Getenv(d.env)
		if s == "" {
			continue
		}
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("%s: %w", d.env, err)
		}
		*d.dst = v
	}

	if s := os.Getenv("CHANGE_THRESHOLD"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("CHANGE_THRESHOLD: %w", err)
		}
		c.ChangeThreshold = v
	}

	if s := os.Getenv("LOG_LEVEL"); s != "" {
		level, err := zerolog.ParseLevel(s)
		if err != nil {
			return fmt.Errorf("LOG_LEVEL: %w", err)
		}
		c.LogLevel = level
	}

	return nil
}

func (c *Config) validate() error {
	var errs []error

	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("poll interval must be positive"))
	}
	if c.StepInterval <= 0 {
		errs = append(errs, errors.New("step interval must be positive"))
	}
	if c.HistoryRetention <= 0 {
		errs = append(errs, errors.New("history retention must be positive"))
	}
	if c.ChangeThreshold < 0 || c.ChangeThreshold > 100 {
		errs = append(errs, fmt.Errorf("change threshold %d must be between 0 and 100", c.ChangeThreshold))
	}

	switch c.SensorType {
	case "sysfs", "mock":
	default:
		errs = append(errs, fmt.Errorf("unknown sensor type %q (want sysfs or mock)", c.SensorType))
	}
	switch c.WriterType {
	case "login1", "sysfs", "mock":
	default:
		errs = append(errs, fmt.Errorf("unknown writer type %q (want login1, sysfs or mock)", c.WriterType))
	}
	switch c.RepoType {
	case "memory", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown repo type %q (want memory or sqlite)", c.RepoType))
	}

	if c.TLSCert != "" && (c.TLSKey == "" || c.TLSCA == "") {
		errs = append(errs, errors.New("TLS_CERT requires TLS_KEY and TLS_CA"))
	}

	return errors.Join(errs...)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

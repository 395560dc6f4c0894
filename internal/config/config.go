package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Hostname        string
	ThermalDir      string
	CPUStatPath     string
	CPUOnlineFormat string
	GRPCListenAddr  string
	HTTPListenAddr  string
	ProbeListenAddr string
	MonitorInterval time.Duration
	EventBufferSize int
	ShutdownTimeout time.Duration
	TLSEnabled      bool
	TLSCertPath     string
	TLSKeyPath      string
	TLSClientCAPath string
	LogJSON         bool
	LogLevel        string
}

// Load builds the configuration from the environment, optionally seeded
// from a .env file (THERMAL_ENV_FILE, or ./.env when present).
func Load() (Config, error) {
	if path := strings.TrimSpace(os.Getenv("THERMAL_ENV_FILE")); path != "" {
		if err := godotenv.Load(path); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", path, err)
		}
	} else {
		_ = godotenv.Load()
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown-host"
	}

	cfg := Config{
		Hostname:        hostname,
		ThermalDir:      env("THERMAL_SYSFS_DIR", "/sys/class/thermal"),
		CPUStatPath:     env("THERMAL_CPU_STAT_PATH", "/proc/stat"),
		CPUOnlineFormat: env("THERMAL_CPU_ONLINE_FORMAT", "/sys/devices/system/cpu/cpu%d/online"),
		GRPCListenAddr:  env("THERMAL_GRPC_LISTEN_ADDR", "127.0.0.1:7420"),
		HTTPListenAddr:  env("THERMAL_HTTP_LISTEN_ADDR", "127.0.0.1:7421"),
		ProbeListenAddr: env("THERMAL_PROBE_LISTEN_ADDR", "127.0.0.1:7422"),
		MonitorInterval: envDuration("THERMAL_MONITOR_INTERVAL", 0),
		EventBufferSize: envInt("THERMAL_EVENT_BUFFER_SIZE", 16),
		ShutdownTimeout: envDuration("THERMAL_SHUTDOWN_TIMEOUT", 15*time.Second),
		TLSEnabled:      envBool("THERMAL_TLS_ENABLED", false),
		TLSCertPath:     env("THERMAL_TLS_CERT_PATH", ""),
		TLSKeyPath:      env("THERMAL_TLS_KEY_PATH", ""),
		TLSClientCAPath: env("THERMAL_TLS_CLIENT_CA_PATH", ""),
		LogJSON:         envBool("THERMAL_LOG_JSON", false),
		LogLevel:        strings.ToLower(env("THERMAL_LOG_LEVEL", "info")),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ThermalDir) == "" {
		return errors.New("THERMAL_SYSFS_DIR is required")
	}
	if strings.TrimSpace(c.CPUStatPath) == "" {
		return errors.New("THERMAL_CPU_STAT_PATH is required")
	}
	if strings.Count(c.CPUOnlineFormat, "%d") != 1 {
		return fmt.Errorf("THERMAL_CPU_ONLINE_FORMAT must contain exactly one %%d, got %q", c.CPUOnlineFormat)
	}
	if strings.TrimSpace(c.GRPCListenAddr) == "" {
		return errors.New("THERMAL_GRPC_LISTEN_ADDR is required")
	}
	if strings.TrimSpace(c.HTTPListenAddr) == "" {
		return errors.New("THERMAL_HTTP_LISTEN_ADDR is required")
	}
	if c.MonitorInterval < 0 {
		return errors.New("THERMAL_MONITOR_INTERVAL must be >= 0")
	}
	if c.EventBufferSize <= 0 {
		return errors.New("THERMAL_EVENT_BUFFER_SIZE must be > 0")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("THERMAL_SHUTDOWN_TIMEOUT must be > 0")
	}
	if c.TLSEnabled && (c.TLSCertPath == "" || c.TLSKeyPath == "") {
		return errors.New("THERMAL_TLS_CERT_PATH and THERMAL_TLS_KEY_PATH are required when TLS is enabled")
	}
	return nil
}

// TLSConfig builds the server-side TLS configuration, or nil when TLS is
// disabled. A client CA, when given, turns on mutual TLS.
func (c Config) TLSConfig() (*tls.Config, error) {
	if !c.TLSEnabled {
		return nil, nil
	}
	crt, err := tls.LoadX509KeyPair(c.TLSCertPath, c.TLSKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load TLS cert/key: %w", err)
	}
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12, Certificates: []tls.Certificate{crt}}
	if c.TLSClientCAPath != "" {
		caBytes, err := os.ReadFile(c.TLSClientCAPath)
		if err != nil {
			return nil, fmt.Errorf("read client CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caBytes) {
			return nil, errors.New("append client CA cert failed")
		}
		tlsCfg.ClientCAs = pool
		tlsCfg.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return tlsCfg, nil
}

func env(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return fallback
	}
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Server struct {
		Addr         string        `yaml:"addr"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		MaxBodyBytes int64         `yaml:"max_body_bytes"`
	} `yaml:"server"`

	Verify struct {
		FreshnessWindow time.Duration `yaml:"freshness_window"`
	} `yaml:"verify"`

	Registry struct {
		Backend         string        `yaml:"backend"` // window | set
		Margin          time.Duration `yaml:"margin"`
		CleanupInterval time.Duration `yaml:"cleanup_interval"`
	} `yaml:"registry"`

	Rate struct {
		Enabled bool          `yaml:"enabled"`
		Backend string        `yaml:"backend"` // memory | redis
		Limit   int           `yaml:"limit"`
		Window  time.Duration `yaml:"window"`
		Redis   struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"rate"`
}

// Default devuelve la configuración por defecto.
func Default() *Config {
	c := &Config{}
	c.App.Env = "dev"
	c.Log.Level = "info"
	c.Server.Addr = "127.0.0.1:3000"
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 10 * time.Second
	c.Server.MaxBodyBytes = 1 << 20
	c.Verify.FreshnessWindow = 30 * time.Second
	c.Registry.Backend = "window"
	c.Registry.Margin = 5 * time.Second
	c.Registry.CleanupInterval = time.Minute
	c.Rate.Enabled = true
	c.Rate.Backend = "memory"
	c.Rate.Limit = 10
	c.Rate.Window = time.Minute
	c.Rate.Redis.Addr = "localhost:6379"
	c.Rate.Redis.Prefix = "rl:verify:"
	return c
}

// Load parte de Default, aplica el YAML en path (si path no es vacío) y luego los
// overrides por env. Devuelve error si el resultado no valida.
func Load(path string) (*Config, error) {
	c := Default()

	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := c.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate revisa rangos y valores enumerados.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("server.max_body_bytes must be > 0"))
	}
	if c.Verify.FreshnessWindow <= 0 {
		errs = append(errs, errors.New("verify.freshness_window must be > 0"))
	}
	if c.Registry.Margin < 0 {
		errs = append(errs, errors.New("registry.margin must be >= 0"))
	}
	switch c.Registry.Backend {
	case "window", "set":
	default:
		errs = append(errs, fmt.Errorf("registry.backend %q: want window|set", c.Registry.Backend))
	}
	if c.Rate.Enabled {
		if c.Rate.Limit <= 0 || c.Rate.Window <= 0 {
			errs = append(errs, errors.New("rate.limit and rate.window must be > 0"))
		}
		switch c.Rate.Backend {
		case "memory", "redis":
		default:
			errs = append(errs, fmt.Errorf("rate.backend %q: want memory|redis", c.Rate.Backend))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// ---- Overrides por env ----

func (c *Config) applyEnvOverrides() error {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("REGISTRY_BACKEND"); ok {
		c.Registry.Backend = strings.ToLower(v)
	}
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("RATE_BACKEND"); ok {
		c.Rate.Backend = strings.ToLower(v)
	}
	if v, ok := getEnvInt("RATE_LIMIT"); ok {
		c.Rate.Limit = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Rate.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Rate.Redis.DB = v
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &c.Server.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &c.Server.WriteTimeout},
		{"VERIFY_FRESHNESS_WINDOW", &c.Verify.FreshnessWindow},
		{"REGISTRY_MARGIN", &c.Registry.Margin},
		{"REGISTRY_CLEANUP_INTERVAL", &c.Registry.CleanupInterval},
		{"RATE_WINDOW", &c.Rate.Window},
	}
	for _, d := range durations {
		s, ok := getEnvStr(d.key)
		if !ok {
			continue
		}
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("config: %s: %w", d.key, err)
		}
		*d.dst = v
	}
	return nil
}

func getEnvStr(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(s); err == nil {
			return b, true
		}
	}
	return false, false
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/ip-inspection/internal/domain/inspection"
)

type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"readTimeout"`
		WriteTimeout time.Duration `yaml:"writeTimeout"`
		RateLimit    int           `yaml:"rateLimit"`
		RateRefill   int           `yaml:"rateRefill"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	AI struct {
		Provider string        `yaml:"provider"`
		APIKey   string        `yaml:"apiKey"`
		BaseURL  string        `yaml:"baseURL"`
		Model    string        `yaml:"model"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"ai"`

	Monitoring struct {
		Timeout  time.Duration  `yaml:"timeout"`
		Regions  []RegionConfig `yaml:"regions"`
		Fallback struct {
			// Region names the region whose endpoint and key are reused.
			Region string `yaml:"region"`
			Label  string `yaml:"label"`
		} `yaml:"fallback"`
	} `yaml:"monitoring"`

	Auth struct {
		SigningKey     string `yaml:"signingKey"`
		AnonymousEmail string `yaml:"anonymousEmail"`
		AnonymousName  string `yaml:"anonymousName"`
	} `yaml:"auth"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`

	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
}

type RegionConfig struct {
	Name     string   `yaml:"name"`
	Prefixes []string `yaml:"prefixes"`
	Endpoint string   `yaml:"endpoint"`
	APIKey   string   `yaml:"apiKey"`
	Label    string   `yaml:"label"`
}

const servicestatusPath = "/nagiosxi/api/v1/objects/servicestatus"

func defaultRegions() []RegionConfig {
	return []RegionConfig{
		{Name: "shenzhen", Prefixes: []string{"10.162."}, Endpoint: "http://nagiosxisz.bbc.tech" + servicestatusPath, Label: "Shenzhen"},
		{Name: "changzhou", Prefixes: []string{"10.77."}, Endpoint: "http://nagiosxicz.bbc.tech" + servicestatusPath, Label: "Changzhou"},
	}
}

// Load reads the YAML file at path, then applies defaults and environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	cfg.applyEnv(os.Getenv)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects a region table whose fallback would have no endpoint.
func (c *Config) validate() error {
	for _, r := range c.Monitoring.Regions {
		if r.Name == c.Monitoring.Fallback.Region {
			if r.Endpoint == "" {
				return fmt.Errorf("monitoring: fallback region %q has no endpoint", r.Name)
			}
			return nil
		}
	}
	return fmt.Errorf("monitoring: fallback region %q is not configured", c.Monitoring.Fallback.Region)
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	// scoring can take most of a minute
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 120 * time.Second
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 30
	}
	if c.Server.RateRefill == 0 {
		c.Server.RateRefill = 1
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "dashscope"
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = 60 * time.Second
	}
	if c.Monitoring.Timeout == 0 {
		c.Monitoring.Timeout = 30 * time.Second
	}
	if len(c.Monitoring.Regions) == 0 {
		c.Monitoring.Regions = defaultRegions()
	}
	if c.Monitoring.Fallback.Region == "" {
		c.Monitoring.Fallback.Region = "changzhou"
	}
	if c.Monitoring.Fallback.Label == "" {
		c.Monitoring.Fallback.Label = "other"
	}
	if c.Minio.BucketName == "" {
		c.Minio.BucketName = "ip-inspection"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "inspection.completed"
	}
}

func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}
	set(&c.AI.APIKey, "AI_API_KEY", "QWEN_API_KEY")
	set(&c.AI.Provider, "AI_PROVIDER")
	set(&c.AI.BaseURL, "AI_BASE_URL")
	set(&c.AI.Model, "AI_MODEL")
	set(&c.Database.Driver, "DB_DRIVER")
	set(&c.Database.Host, "DB_HOST")
	set(&c.Database.User, "DB_USER")
	set(&c.Database.Password, "DB_PASSWORD")
	set(&c.Database.Name, "DB_NAME")
	if v := getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Database.Port = p
		}
	}
	set(&c.Auth.SigningKey, "AUTH_SIGNING_KEY")
	set(&c.Redis.Addr, "REDIS_ADDR")
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	set(&c.Minio.Endpoint, "MINIO_ENDPOINT")
	set(&c.Minio.AccessKey, "MINIO_ACCESS_KEY")
	set(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	for i := range c.Monitoring.Regions {
		r := &c.Monitoring.Regions[i]
		set(&r.APIKey, "MONITORING_"+strings.ToUpper(r.Name)+"_API_KEY")
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Regions builds the resolver table. The fallback reuses the endpoint and
// key of the configured fallback region under its own label.
func (c *Config) Regions() inspection.Regions {
	var regions inspection.Regions
	for _, rc := range c.Monitoring.Regions {
		p := inspection.RegionProfile{EndpointURL: rc.Endpoint, Credential: rc.APIKey, Label: rc.Label}
		if p.Label == "" {
			p.Label = rc.Name
		}
		regions.Rules = append(regions.Rules, inspection.RegionRule{Name: rc.Name, Prefixes: rc.Prefixes, Profile: p})
		if rc.Name == c.Monitoring.Fallback.Region {
			regions.Fallback = inspection.RegionProfile{EndpointURL: rc.Endpoint, Credential: rc.APIKey}
		}
	}
	regions.Fallback.Label = c.Monitoring.Fallback.Label
	return regions
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.dbPort(3306),
		c.Database.Name,
	)
}

func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.dbPort(5432),
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}

func (c *Config) dbPort(def int) int {
	if c.Database.Port == 0 {
		return def
	}
	return c.Database.Port
}

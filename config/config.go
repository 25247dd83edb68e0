package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type WSConfig struct {
	URL string `yaml:"url"`
}

type AuthConfig struct {
	Token  string `yaml:"token"`
	UserID string `yaml:"user_id"`
}

type NotificationsConfig struct {
	// Mode controls the desktop notification permission state:
	// "ask" (not yet decided), "on" (granted), "off" (denied).
	Mode string `yaml:"mode"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	API           APIConfig           `yaml:"api"`
	WS            WSConfig            `yaml:"ws"`
	Auth          AuthConfig          `yaml:"auth"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Metrics       MetricsConfig       `yaml:"metrics"`
}

func Load() *Config {
	f, err := os.Open("config.yaml")
	if err != nil {
		log.Fatalf("failed to open config.yaml: %v", err)
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config.yaml: %v", err)
	}

	overrideFromEnv(&cfg)

	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 10 * time.Second
	}
	if cfg.Notifications.Mode == "" {
		cfg.Notifications.Mode = "ask"
	}

	return &cfg
}

func overrideFromEnv(cfg *Config) {
	if url := os.Getenv("API_BASE_URL"); url != "" {
		cfg.API.BaseURL = url
	}
	if timeout := os.Getenv("API_TIMEOUT_SECONDS"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			cfg.API.Timeout = time.Duration(t) * time.Second
		}
	}
	if url := os.Getenv("WS_URL"); url != "" {
		cfg.WS.URL = url
	}
	if token := os.Getenv("AUTH_TOKEN"); token != "" {
		cfg.Auth.Token = token
	}
	if userID := os.Getenv("AUTH_USER_ID"); userID != "" {
		cfg.Auth.UserID = userID
	}
	if mode := os.Getenv("NOTIFICATIONS_MODE"); mode != "" {
		cfg.Notifications.Mode = mode
	}
	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		cfg.Metrics.Addr = addr
	}
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string `mapstructure:"mode"`
	Port       int    `mapstructure:"port"`
	StaticPath string `mapstructure:"static_path"`
	Secret     string `mapstructure:"secret"`

	BackendURL     string        `mapstructure:"backend_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`

	PanelMinWidth      float64 `mapstructure:"panel_min_width"`
	PanelMinHeight     float64 `mapstructure:"panel_min_height"`
	PanelDefaultWidth  float64 `mapstructure:"panel_default_width"`
	PanelDefaultHeight float64 `mapstructure:"panel_default_height"`

	PostLimit  int           `mapstructure:"post_limit"`
	PostWindow time.Duration `mapstructure:"post_window"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("backend_url", "http://localhost:9000")
	v.SetDefault("request_timeout", "10s")
	v.SetDefault("poll_interval", "5s")
	v.SetDefault("panel_min_width", 320)
	v.SetDefault("panel_min_height", 240)
	v.SetDefault("panel_default_width", 480)
	v.SetDefault("panel_default_height", 560)
	v.SetDefault("post_limit", 10)
	v.SetDefault("post_window", "1m")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Backend: %s\n", cfg.Mode, cfg.Port, cfg.BackendURL)
	return &cfg, nil
}

package infra

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		AppVersion string `yaml:"app_version"`
	} `yaml:"app"`
	MongoDB struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongodb"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	DeepSeek struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		Retry   struct {
			MaxAttempts   int `yaml:"max_attempts"`
			BaseDelaySecs int `yaml:"base_delay_secs"`
		} `yaml:"retry"`
		TimeoutSecs struct {
			Intent        int `yaml:"intent"`
			Command       int `yaml:"command"`
			Chat          int `yaml:"chat"`
			Analysis      int `yaml:"analysis"`
			OrderAnalysis int `yaml:"order_analysis"`
		} `yaml:"timeout_secs"`
	} `yaml:"deepseek"`
	Confirmation struct {
		PendingTTLSecs int `yaml:"pending_ttl_secs"`
	} `yaml:"confirmation"`
}

var AppConfig Config

func LoadConfig() error {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yml"
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&AppConfig); err != nil {
		return err
	}

	// API Key 优先取环境变量，避免写死在配置文件
	if key := os.Getenv("DEEPSEEK_API_KEY"); key != "" {
		AppConfig.DeepSeek.APIKey = key
	}
	return nil
}

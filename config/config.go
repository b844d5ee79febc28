package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultLongPollingTimeout = 60 * time.Second

type (
	// Bot ...
	Bot struct {
		Telegram struct {
			Token              string        `yaml:"token"`
			TokenSecretID      string        `yaml:"tokenSecretID"`
			LongPollingTimeout time.Duration `yaml:"longPollingTimeout"`
		} `yaml:"telegram"`
		LogLevel        string        `yaml:"logLevel"`
		ConversationTTL time.Duration `yaml:"conversationTTL"`
		ProjectID       string        `yaml:"projectID"`
		Events          struct {
			TopicID string `yaml:"topicID"`
		} `yaml:"events"`
		ArchiveBucket string `yaml:"archiveBucket"`
		MetricsAddr   string `yaml:"metricsAddr"`
	}
)

// File returns the config file path, taken from CONF_FILE.
func File() string {
	if f := os.Getenv("CONF_FILE"); f != "" {
		return f
	}
	return "config.yml"
}

// Load reads .env, when present, and then the YAML config file into conf.
// A missing config file is only an error when optional is false.
func Load(conf *Bot, optional bool) error {
	_ = godotenv.Load()

	confFile := File()
	b, err := os.ReadFile(confFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, conf); err != nil {
			return fmt.Errorf("error unmarshaling config: %w", err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("error reading config file '%s': %w", confFile, err)
	}

	if token := os.Getenv("BOT_TOKEN"); token != "" {
		conf.Telegram.Token = token
	}
	if conf.Telegram.LongPollingTimeout <= 0 {
		conf.Telegram.LongPollingTimeout = defaultLongPollingTimeout
	}
	if conf.ConversationTTL < 0 {
		return fmt.Errorf("conversationTTL must not be negative, got %s", conf.ConversationTTL)
	}
	return nil
}

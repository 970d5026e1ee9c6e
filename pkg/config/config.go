package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the runtime settings. Values come from an optional YAML file and are
// overridden by environment variables.
type Config struct {
	APIURL   string        `yaml:"api_url" env:"TASKBOARD_API_URL" env-default:"http://127.0.0.1:8000"`
	Timeout  time.Duration `yaml:"timeout" env:"TASKBOARD_TIMEOUT" env-default:"0s"`
	Offline  bool          `yaml:"offline" env:"TASKBOARD_OFFLINE" env-default:"false"`
	DBFile   string        `yaml:"db_file" env:"TASKBOARD_DB" env-default:"taskboard.sqlite"`
	LogFile  string        `yaml:"log_file" env:"TASKBOARD_LOG_FILE" env-default:"taskboard.log"`
	LogLevel string        `yaml:"log_level" env:"TASKBOARD_LOG_LEVEL" env-default:"info"`
}

// Load reads the config file at path, falling back to the environment alone when
// path is empty or the file does not exist.
func Load(path string) (Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("cannot read env: %w", err)
		}

		return cfg, nil
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return Config{}, fmt.Errorf("cannot read config %q: %w", path, err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("cannot read env: %w", err)
		}
	}

	return cfg, nil
}

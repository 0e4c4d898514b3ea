package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env-default:"8080"`
	Redis      Redis  `yaml:"redis"`
	Sync       Sync   `yaml:"sync"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

// Sync tunes the optimistic-transaction retry bounds. Backoff is linear:
// sleep backoff × attempt between tries.
type Sync struct {
	JoinAttempts int           `yaml:"join-attempts" env-default:"5"`
	JoinBackoff  time.Duration `yaml:"join-backoff" env-default:"80ms"`
	MoveAttempts int           `yaml:"move-attempts" env-default:"8"`
	MoveBackoff  time.Duration `yaml:"move-backoff" env-default:"100ms"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

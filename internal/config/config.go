package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

var ErrUnknownStorage = errors.New("unknown storage driver")

type Config struct {
	LogLevel          string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string  `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort        string  `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Storage           Storage `yaml:"storage"`
	Redis             Redis   `yaml:"redis"`
	SQLiteStoragePath string  `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"sessions.db"`
	Socket            Socket  `yaml:"socket"`
	Client            Client  `yaml:"client"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Socket struct {
	PingPeriod time.Duration `yaml:"ping-period" env:"SOCKET_PING_PERIOD" env-default:"30s"`
	PongWait   time.Duration `yaml:"pong-wait" env:"SOCKET_PONG_WAIT" env-default:"60s"`
	SendBuffer int           `yaml:"send-buffer" env:"SOCKET_SEND_BUFFER" env-default:"16"`
}

type Client struct {
	PollInterval time.Duration `yaml:"poll-interval" env:"POLL_INTERVAL" env-default:"2s"`
	HTTPURL      string        `yaml:"http-url" env:"CLIENT_HTTP_URL" env-default:"http://localhost:9090"`
	SocketURL    string        `yaml:"socket-url" env:"CLIENT_SOCKET_URL" env-default:"ws://localhost:9091/ws"`
}

// MustLoad - load all configurations in config.yml file, or from the environment when there is no file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config: %w", err))
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err = cleanenv.ReadConfig(path, config); err != nil {
			return nil, fmt.Errorf("unable to load config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to load config from env: %w", err)
		}
	default:
		return nil, fmt.Errorf("unable to stat config file: %w", err)
	}

	if err = config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) validate() error {
	switch that.Storage.Driver {
	case StorageMemory, StorageRedis, StorageSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, that.Storage.Driver)
	}

	if that.Socket.PingPeriod <= 0 || that.Socket.PongWait <= that.Socket.PingPeriod {
		return fmt.Errorf("socket pong-wait must exceed ping-period, got %s and %s", that.Socket.PongWait, that.Socket.PingPeriod)
	}

	if that.Socket.SendBuffer <= 0 {
		return fmt.Errorf("socket send-buffer must be positive, got %d", that.Socket.SendBuffer)
	}

	if that.Client.PollInterval <= 0 {
		return fmt.Errorf("client poll-interval must be positive, got %s", that.Client.PollInterval)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string            `yaml:"env" env:"ENV" env-default:"local"`
	HTTP        HTTPConfig        `yaml:"http"`
	RecordStore RecordStoreConfig `yaml:"record_store"`
	ObjectStore ObjectStoreConfig `yaml:"object_store"`
	Upload      UploadConfig      `yaml:"upload"`
	Redis       RedisConf         `yaml:"redis"`
	Sweeper     SweeperConfig     `yaml:"sweeper"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

// RecordStoreConfig describes where gallery metadata rows live.
type RecordStoreConfig struct {
	Driver string `yaml:"driver" env:"RECORD_STORE_DRIVER" env-default:"postgres"` // postgres | sqlite
	DSN    string `yaml:"dsn" env:"RECORD_STORE_DSN" env-required:"true"`
	Table  string `yaml:"table" env-default:"gallery_metadata"`
}

// ObjectStoreConfig describes where image bytes live.
type ObjectStoreConfig struct {
	Driver          string `yaml:"driver" env:"OBJECT_STORE_DRIVER" env-default:"local"` // minio | s3 | local
	Endpoint        string `yaml:"endpoint" env:"OBJECT_STORE_ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id" env:"OBJECT_STORE_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"OBJECT_STORE_SECRET_ACCESS_KEY"`
	Region          string `yaml:"region" env-default:"us-east-1"`
	Bucket          string `yaml:"bucket" env-default:"gallery-images"`
	UseSSL          bool   `yaml:"use_ssl"`
	PublicBaseURL   string `yaml:"public_base_url" env:"OBJECT_STORE_PUBLIC_BASE_URL"`
	BaseDir         string `yaml:"base_dir" env-default:"./uploads"`
	CacheControl    string `yaml:"cache_control" env-default:"max-age=3600"`
}

type UploadConfig struct {
	MaxSize      int64    `yaml:"max_size" env-default:"5242880"`
	AllowedTypes []string `yaml:"allowed_types" env-default:"image/jpeg,image/jpg,image/png,image/gif,image/webp"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db"`
}

type SweeperConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Interval    time.Duration `yaml:"interval" env-default:"1h"`
	GracePeriod time.Duration `yaml:"grace_period" env-default:"15m"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	cfg, err := LoadPath(configPath)
	if err != nil {
		panic(err.Error())
	}

	return cfg
}

// LoadPath reads the YAML file at configPath and applies env overrides and defaults.
func LoadPath(configPath string) (*Config, error) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, &os.PathError{Op: "config", Path: configPath, Err: os.ErrNotExist}
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}

	if cfg.Sweeper.Interval <= 0 {
		return nil, fmt.Errorf("config: sweeper.interval must be positive, got %s", cfg.Sweeper.Interval)
	}
	if cfg.Sweeper.GracePeriod < 0 {
		return nil, fmt.Errorf("config: sweeper.grace_period must not be negative, got %s", cfg.Sweeper.GracePeriod)
	}

	return &cfg, nil
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}

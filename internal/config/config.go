package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Listen struct {
	BindIp string `yaml:"bind_ip" env-default:"0.0.0.0"`
	Port   string `yaml:"port" env-default:"8080"`
}

type MongoConfig struct {
	Enabled  bool   `yaml:"enabled" env-default:"false"`
	Host     string `yaml:"host" env-default:"localhost"`
	Port     string `yaml:"port" env-default:"27017"`
	User     string `yaml:"user" env-default:""`
	Password string `yaml:"password" env-default:""`
	Database string `yaml:"database" env-default:"mealbook"`
}

type StorageConfig struct {
	Enabled   bool   `yaml:"enabled" env-default:"false"`
	Endpoint  string `yaml:"endpoint" env-default:""`
	AccessKey string `yaml:"access_key" env-default:""`
	SecretKey string `yaml:"secret_key" env-default:""`
	Bucket    string `yaml:"bucket" env-default:"mealbook-images"`
	UseSSL    bool   `yaml:"use_ssl" env-default:"true"`
}

type TelegramConfig struct {
	Enabled          bool    `yaml:"enabled" env-default:"false"`
	ApiKey           string  `yaml:"api_key" env-default:""`
	AdminIds         []int64 `yaml:"admin_ids"`
	InviteCodeLength int     `yaml:"invite_code_length" env-default:"8"`
}

type Config struct {
	Env      string         `yaml:"env" env-default:"local"`
	Listen   Listen         `yaml:"listen"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Storage  StorageConfig  `yaml:"storage"`
	Telegram TelegramConfig `yaml:"telegram"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("config: %s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}

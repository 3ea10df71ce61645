package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Session  SessionConfig  `mapstructure:"session"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SessionConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expireHours"`
}

type GameConfig struct {
	RoomIDLength int `mapstructure:"roomIdLength"`
	MaxPlayers   int `mapstructure:"maxPlayers"`
	TurnSeconds  int `mapstructure:"turnSeconds"` // 0 disables the turn timer
}

var GlobalConfig *Config

func LoadConfig(path string) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
	applyDefaults(&cfg)
	GlobalConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Game.RoomIDLength <= 0 {
		cfg.Game.RoomIDLength = 4
	}
	if cfg.Game.MaxPlayers <= 0 {
		cfg.Game.MaxPlayers = 9
	}
	if cfg.Session.ExpireHours <= 0 {
		cfg.Session.ExpireHours = 24
	}
}

package config

import (
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type StoreConfig struct {
	// URL del record store remoto. Vacía => adapter local (postgres o memoria).
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// DSN de Postgres para el modo auto-hospedado.
	DSN string `mapstructure:"dsn"`
}

type AuthConfig struct {
	// Secreto HS256 para el verifier local. Vacío => modo dev sin verifier.
	JWTSecret string `mapstructure:"jwtSecret"`
	// Si true, verifica tokens contra el propio record store.
	UseStore bool `mapstructure:"useStore"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Log    LogConfig    `mapstructure:"log"`
}

// Load lee config.yaml (si existe) y lo pisa con variables de entorno.
func Load(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("store.url", "STORE_URL")
	_ = viper.BindEnv("store.timeout", "STORE_TIMEOUT")
	_ = viper.BindEnv("store.dsn", "DB_DSN")
	_ = viper.BindEnv("auth.jwtSecret", "JWT_SECRET")
	_ = viper.BindEnv("auth.useStore", "AUTH_USE_STORE")
	_ = viper.BindEnv("log.level", "LOG_LEVEL")
	_ = viper.BindEnv("log.format", "LOG_FORMAT")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("store.timeout", 10*time.Second)

	// Si el archivo no existe, Viper usa solo las env vars.
	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}

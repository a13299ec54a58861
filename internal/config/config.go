package config

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	APIPort int `mapstructure:"apiPort"`

	Database struct {
		Type            string `mapstructure:"type"` // "postgres" or "sqlite"
		Host            string `mapstructure:"host"`
		Port            string `mapstructure:"port"`
		User            string `mapstructure:"user"`
		Password        string `mapstructure:"password"`
		Name            string `mapstructure:"name"`
		SSLMode         string `mapstructure:"sslMode"`
		Path            string `mapstructure:"path"` // sqlite file path
		MaxConns        int    `mapstructure:"maxConns"`
		MaxIdle         int    `mapstructure:"maxIdle"`
		ConnMaxLifetime string `mapstructure:"connMaxLifetime"`
	} `mapstructure:"database"`

	Auth struct {
		JWTSecret    string `mapstructure:"jwtSecret"`
		JWTAlgorithm string `mapstructure:"jwtAlgorithm"`
		ResetURL     string `mapstructure:"resetUrl"` // base URL the reset link points at
	} `mapstructure:"auth"`

	Mail struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		From     string `mapstructure:"from"`
		FromName string `mapstructure:"fromName"`
	} `mapstructure:"mail"`

	OpenAI struct {
		APIKey string `mapstructure:"apiKey"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"openai"`

	S3 struct {
		Endpoint        string `mapstructure:"endpoint"`
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		AccessKeyID     string `mapstructure:"accessKeyId"`
		SecretAccessKey string `mapstructure:"secretAccessKey"`
	} `mapstructure:"s3"`
}

// LoadConfig loads the configuration from file and environment variables.
// The secret material (JWT secret, SMTP and S3 credentials) is read once
// here; nothing else in the process reads the environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// Env-only deployments carry no config file.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, err
		}
		log.Printf("Warning: could not read config file: %s. Using defaults or environment variables.", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.APIPort == 0 {
		cfg.APIPort = 8081
		log.Println("apiPort not specified, using default 8081")
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
		log.Println("database type not specified, defaulting to sqlite")
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "/data/billfold.db"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwtSecret is required")
	}
	if cfg.Auth.JWTAlgorithm == "" {
		cfg.Auth.JWTAlgorithm = "HS256"
	}

	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 587
	}
	if cfg.Mail.FromName == "" {
		cfg.Mail.FromName = "Billfold"
	}

	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-3.5-turbo"
	}

	return &cfg, nil
}

package main

import (
	"flag"
	"log"

	"github.com/billfold-io/billfold/internal/api"
	"github.com/billfold-io/billfold/internal/assistant"
	"github.com/billfold-io/billfold/internal/auth"
	"github.com/billfold-io/billfold/internal/config"
	"github.com/billfold-io/billfold/internal/database"
	"github.com/billfold-io/billfold/internal/mail"
	"github.com/billfold-io/billfold/internal/storage"
)

const version = "0.1.0"

func initializeAPI(configPath string) (*api.Api, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	store, err := database.New(cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm)
	if err != nil {
		return nil, err
	}

	social := auth.NewSocialLogin(store, map[string]auth.Provider{
		"google":   auth.NewGoogleProvider(""),
		"facebook": auth.NewFacebookProvider(""),
	})

	var mailer mail.Sender
	if cfg.Mail.Host != "" {
		mailer = mail.New(cfg)
	} else {
		log.Println("mail host not configured, password recovery mail disabled")
	}

	var drafter assistant.Drafter
	if cfg.OpenAI.APIKey != "" {
		drafter = assistant.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, "")
	} else {
		log.Println("openai api key not configured, assistant disabled")
	}

	var exporter storage.Exporter
	if cfg.S3.Bucket != "" {
		exporter, err = storage.NewS3Client(cfg.S3.Endpoint, cfg.S3.Region,
			cfg.S3.Bucket, cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey)
		if err != nil {
			return nil, err
		}
	} else {
		log.Println("s3 bucket not configured, expense export disabled")
	}

	return api.NewApi(*cfg, store, tokens, social, mailer, drafter, exporter), nil
}

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file")
	flag.Parse()

	log.Printf("Starting Billfold API v%s with config: %s", version, *configPath)

	api, err := initializeAPI(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	if err := api.Serve(); err != nil {
		log.Fatal(err)
	}
}

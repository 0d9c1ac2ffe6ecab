// Package config loads clientkit configuration from YAML files and
// environment variables.
//
// It uses Viper for layered loading: a config.yml file provides the base,
// a .env file (loaded via godotenv) and process environment variables
// override it. Environment keys are bound automatically, so API_BASE_URL
// reaches api.base_url without explicit bindings.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil { ... }
//	client, err := httpclient.New(cfg.API)
package config

// Package config loads typed configuration from the environment.
//
// Structs declare their variables with caarlos0/env tags; .env files are
// read with godotenv first so local development needs no exported variables.
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//	cfg := config.MustLoad[Config]()
package config

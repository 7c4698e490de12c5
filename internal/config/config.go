// Package config assembles the console configuration from the environment.
package config

import (
	"errors"
	"time"

	"github.com/dmitrymomot/medstock/internal/events"
	"github.com/dmitrymomot/medstock/pkg/config"
	"github.com/dmitrymomot/medstock/pkg/httpserver"
	"github.com/dmitrymomot/medstock/pkg/mongo"
	"github.com/dmitrymomot/medstock/pkg/rbac"
	"github.com/dmitrymomot/medstock/pkg/redis"
	"github.com/dmitrymomot/medstock/pkg/session"
)

// ErrWeakSecret is returned when AUTH_TOKEN_SECRET is too short to sign tokens.
var ErrWeakSecret = errors.New("config.weak_token_secret")

const minSecretLength = 32

// Auth configures the password identity provider.
type Auth struct {
	TokenSecret       string        `env:"AUTH_TOKEN_SECRET,required"`
	TokenTTL          time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"8h"`
	BcryptCost        int           `env:"AUTH_BCRYPT_COST" envDefault:"12"`
	AttemptsPerMinute int           `env:"AUTH_ATTEMPTS_PER_MINUTE" envDefault:"5"`
	AttemptBurst      int           `env:"AUTH_ATTEMPT_BURST" envDefault:"5"`
}

// Bootstrap creates the first administrator when the users collection is empty.
type Bootstrap struct {
	AdminName     string `env:"BOOTSTRAP_ADMIN_NAME" envDefault:"Administrator"`
	AdminEmail    string `env:"BOOTSTRAP_ADMIN_EMAIL"`
	AdminPhone    string `env:"BOOTSTRAP_ADMIN_PHONE"`
	AdminPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

// Enabled reports whether an administrator should be bootstrapped.
func (b Bootstrap) Enabled() bool {
	return b.AdminEmail != "" && b.AdminPassword != "" && b.AdminPhone != ""
}

// Config is the full console configuration.
type Config struct {
	AppName  string `env:"APP_NAME" envDefault:"medstock"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`

	// DemoSeeds enables the fixed demo identities.
	DemoSeeds bool `env:"DEMO_SEEDS" envDefault:"false"`

	HTTP      httpserver.Config
	Mongo     mongo.Config
	Redis     redis.Config
	Session   session.Config
	Auth      Auth
	Events    events.Config
	Bootstrap Bootstrap
}

// Load reads the configuration. opts are passed to the loader.
func Load(opts ...config.Option) (Config, error) {
	cfg, err := config.Load[Config](opts...)
	if err != nil {
		return Config{}, err
	}
	if len(cfg.Auth.TokenSecret) < minSecretLength {
		return Config{}, ErrWeakSecret
	}
	return cfg, nil
}

// Seeds returns the demo identities when DemoSeeds is set. They let a fresh
// install be explored with one account per role before any record exists.
func (c Config) Seeds() []session.Profile {
	if !c.DemoSeeds {
		return nil
	}
	return []session.Profile{
		{ID: "seed-admin", Name: "Demo Administrator", Email: "admin@demo.medstock.local", Role: rbac.RoleAdmin, Active: true},
		{ID: "seed-rs", Name: "Demo Regional Supervisor", Email: "regional@demo.medstock.local", Role: rbac.RoleRegionalSupervisor, Active: true, Region: "Demo Region"},
		{ID: "seed-dho", Name: "Demo District Officer", Email: "district@demo.medstock.local", Role: rbac.RoleDistrictHealthOfficer, Active: true, District: "Demo District"},
		{ID: "seed-fm", Name: "Demo Facility Manager", Email: "facility@demo.medstock.local", Role: rbac.RoleFacilityManager, Active: true, FacilityName: "Demo Health Centre"},
		{ID: "seed-vhw", Name: "Demo Village Health Worker", Email: "village@demo.medstock.local", Role: rbac.RoleVillageHealthWorker, Active: true, FacilityName: "Demo Health Centre"},
	}
}

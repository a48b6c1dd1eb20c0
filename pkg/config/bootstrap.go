package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded from the working directory when no env file is given
const DefaultEnvFile = ".env"

// BootstrapConfig holds everything the super admin bootstrap needs. It is built once
// at startup and passed explicitly to each step. The endpoint, the service key and
// the admin email have no defaults.
type BootstrapConfig struct {
	SupabaseURL    string        `env:"SUPABASE_URL"`
	ServiceRoleKey string        `env:"SUPABASE_SERVICE_ROLE_KEY"`
	RequestTimeout time.Duration `env:"BOOTSTRAP_REQUEST_TIMEOUT" env-default:"30s"`

	AdminEmail           string `env:"ADMIN_EMAIL"`
	AdminPassword        string `env:"ADMIN_PASSWORD"`
	AdminFirstName       string `env:"ADMIN_FIRST_NAME" env-default:"Super"`
	AdminLastName        string `env:"ADMIN_LAST_NAME" env-default:"Admin"`
	AdminRoleCode        string `env:"ADMIN_ROLE_CODE" env-default:"ADMIN"`
	AdminRoleDescription string `env:"ADMIN_ROLE_DESCRIPTION" env-default:"Amministratore"`
	PasswordLength       int    `env:"ADMIN_PASSWORD_LENGTH" env-default:"20"`

	// Strict makes a failed non-fatal step change the exit code
	Strict   bool   `env:"BOOTSTRAP_STRICT" env-default:"false"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
}

// LoadBootstrapConfig loads an optional dotenv file and reads BootstrapConfig from the
// environment. Variables already present in the environment win over the file.
// An explicitly named envFile must exist; the default one is optional.
func LoadBootstrapConfig(envFile string) (*BootstrapConfig, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg := &BootstrapConfig{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	cfg.SupabaseURL = strings.TrimRight(strings.TrimSpace(cfg.SupabaseURL), "/")
	cfg.ServiceRoleKey = strings.TrimSpace(cfg.ServiceRoleKey)
	cfg.AdminEmail = strings.TrimSpace(cfg.AdminEmail)
	return cfg, nil
}

func loadEnvFile(envFile string) error {
	if envFile == "" {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			slog.Debug("No .env file found (using environment variables or defaults)")
			return nil
		}
		envFile = DefaultEnvFile
	}

	slog.Info("Loading configuration from env file", "path", envFile)
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}
	return nil
}

// Validate checks the configuration before any network call is made
func (c *BootstrapConfig) Validate(now time.Time) error {
	return Validate(
		func() ValidationErrors {
			return CollectErrors(
				RequireValidURL("SUPABASE_URL", c.SupabaseURL),
				RequireNonEmpty("SUPABASE_SERVICE_ROLE_KEY", c.ServiceRoleKey),
				RequireNotOneOf("SUPABASE_SERVICE_ROLE_KEY", c.ServiceRoleKey, PlaceholderServiceKeys),
				RequirePositiveDuration("BOOTSTRAP_REQUEST_TIMEOUT", c.RequestTimeout),
			)
		},
		func() ValidationErrors {
			if c.ServiceRoleKey == "" {
				return nil
			}
			_, verr := InspectServiceKey("SUPABASE_SERVICE_ROLE_KEY", c.ServiceRoleKey, now)
			return CollectErrors(verr)
		},
		func() ValidationErrors {
			return CollectErrors(
				RequireValidEmail("ADMIN_EMAIL", c.AdminEmail),
				WhenSet(c.AdminPassword, func() *ValidationError {
					return RequireMinLength("ADMIN_PASSWORD", c.AdminPassword, 8)
				}),
				RequireNonEmpty("ADMIN_FIRST_NAME", c.AdminFirstName),
				RequireNonEmpty("ADMIN_LAST_NAME", c.AdminLastName),
				RequireNonEmpty("ADMIN_ROLE_CODE", c.AdminRoleCode),
				RequireAtLeast("ADMIN_PASSWORD_LENGTH", c.PasswordLength, 12),
				RequireOneOf("LOG_LEVEL", strings.ToLower(c.LogLevel), []string{"debug", "info", "warn", "error"}),
			)
		},
	)
}

// PasswordFromEnv reports whether the admin password was supplied by the operator
func (c *BootstrapConfig) PasswordFromEnv() bool {
	return c.AdminPassword != ""
}

// SlogLevel returns the configured log level, info if it cannot be parsed
func (c *BootstrapConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// LogValue keeps secrets out of structured logs
func (c *BootstrapConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("supabase_url", c.SupabaseURL),
		slog.Bool("service_key_set", c.ServiceRoleKey != ""),
		slog.String("role", c.AdminRoleCode),
		slog.Bool("password_from_env", c.PasswordFromEnv()),
		slog.Duration("request_timeout", c.RequestTimeout),
		slog.Bool("strict", c.Strict),
	)
}

package config // package config loads application configuration from environment variables

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Database settings are optional: when DBHost is
// empty the property-scoped endpoints are not mounted and the service runs as
// a pure pricing API.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	LogLevel  string // zerolog level name (debug, info, warn, error)
	DBDriver  string // "mysql" or "postgres"
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address (optional)
	DBPort    string // database port number
	DBName    string // database name
	DBSSLMode string // postgres sslmode
	JWTSecret string // secret used to verify JWTs
}

// Load reads the optional .env file and then the environment.  Required
// variables are enforced by must() and missing values cause the program to
// exit with a fatal log message.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
	driver := envStr("DB_DRIVER", "mysql")
	return Config{
		Env:       must("APP_ENV"),
		Port:      strconv.Itoa(mustInt("APP_PORT")),
		LogLevel:  envStr("LOG_LEVEL", "info"),
		DBDriver:  driver,
		DBUser:    os.Getenv("DB_USER"),
		DBPass:    os.Getenv("DB_PASS"),
		DBHost:    os.Getenv("DB_HOST"),
		DBPort:    envStr("DB_PORT", defaultDBPort(driver)),
		DBName:    os.Getenv("DB_NAME"),
		DBSSLMode: envStr("DB_SSLMODE", "disable"),
		JWTSecret: must("JWT_SECRET"),
	}
}

// DatabaseEnabled reports whether enough settings are present to open the
// row store.
func (c Config) DatabaseEnabled() bool {
	return c.DBHost != "" && c.DBName != "" && c.DBUser != ""
}

func defaultDBPort(driver string) string {
	if driver == "postgres" {
		return "5432"
	}
	return "3306"
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatal().Str("key", key).Msg("missing required env var")
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatal().Str("key", key).Str("value", s).Msg("invalid int")
	}
	return n
}

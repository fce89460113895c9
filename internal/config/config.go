package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  The two access-token TTLs
// are deliberately distinct: tokens minted at login or registration
// live for days while tokens minted from a refresh call live for
// minutes.  That asymmetry is inherited policy and is kept
// configurable rather than unified.
type Config struct {
	Env                 string // application environment (e.g. "dev", "prod")
	Port                string // HTTP port to listen on
	DBUser              string // database username
	DBPass              string // database password (optional)
	DBHost              string // database host address
	DBPort              string // database port number
	DBName              string // database name
	JWTSecret           string // secret used to sign JWTs; no fallback exists
	AccessTTLLoginHours int    // access-token TTL in hours for login/register issuance
	AccessTTLRefreshMin int    // access-token TTL in minutes for refresh issuance
	RefreshTTLDays      int    // refresh-token time-to-live in days
	BcryptCost          int    // bcrypt cost for password hashing
}

// Load reads configuration from the environment and returns a Config.
// Required variables are enforced by must(); a missing value aborts
// startup with a fatal log message.  In particular JWT_SECRET has no
// default: the service refuses to boot with an unset signing secret.
func Load() Config {
	return Config{
		Env:                 must("APP_ENV"),
		Port:                must("APP_PORT"),
		DBUser:              must("DB_USER"),
		DBPass:              os.Getenv("DB_PASS"), // empty allowed
		DBHost:              must("DB_HOST"),
		DBPort:              must("DB_PORT"),
		DBName:              must("DB_NAME"),
		JWTSecret:           must("JWT_SECRET"),
		AccessTTLLoginHours: intOr("ACCESS_TTL_LOGIN_HOURS", 168), // 7 days
		AccessTTLRefreshMin: intOr("ACCESS_TTL_REFRESH_MIN", 60),  // 1 hour
		RefreshTTLDays:      intOr("REFRESH_TTL_DAYS", 30),
		BcryptCost:          intOr("BCRYPT_COST", 10),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intOr reads an integer environment variable, falling back to def
// when unset.  A malformed value is fatal rather than silently
// defaulted.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

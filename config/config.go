package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Placeholders shipped in the source, only good enough for DEBUG_MODE
const (
	defaultSessionKey = "change me, this is not a secret"
	defaultJWTSecret  = "change me as well"
)

var (
	TLS_DOMAINS  = ""          // e.g. "example.com,example2.com"
	BIND_ADDRESS = "0.0.0.0:8000"
	MYSQL_DSN    = ""          // MySQL will be used if this is set
	POSTGRES_DSN = ""          // PostgreSQL will be used if MYSQL_DSN is not set and this is
	SQLITE_FILE  = "yatube.db" // Fallback when neither of the above is configured
	DEBUG_MODE   = true
	LOG_LEVEL    = "info"
	LOG_JSON     = false

	SESSION_KEY     = defaultSessionKey
	SESSION_NAME    = "sessionid"
	SESSION_TTL     = 14 * 86400 // seconds
	JWT_SECRET      = defaultJWTSecret
	JWT_ACCESS_TTL  = 24 * time.Hour
	JWT_REFRESH_TTL = 7 * 24 * time.Hour

	// Post images. Disk storage under MEDIA_DIR is used unless S3_BUCKET is set
	MEDIA_DIR      = "media"
	MEDIA_URL      = "/media/"
	IMAGE_MAX_SIZE = 1920 // longest edge in px, bigger uploads are downscaled
	S3_BUCKET      = ""
	S3_REGION      = "us-east-1"
	S3_ENDPOINT    = "" // for S3 compatible services
	S3_KEY         = ""
	S3_SECRET      = ""
	S3_PREFIX      = ""
)

func init() {
	// A missing .env is fine, plain environment is used then
	_ = godotenv.Load()

	readEnvString("TLS_DOMAINS", &TLS_DOMAINS)
	readEnvString("BIND_ADDRESS", &BIND_ADDRESS)
	readEnvString("MYSQL_DSN", &MYSQL_DSN)
	readEnvString("POSTGRES_DSN", &POSTGRES_DSN)
	readEnvString("SQLITE_FILE", &SQLITE_FILE)
	readEnvBool("DEBUG_MODE", &DEBUG_MODE)
	readEnvString("LOG_LEVEL", &LOG_LEVEL)
	readEnvBool("LOG_JSON", &LOG_JSON)
	readEnvString("SESSION_KEY", &SESSION_KEY)
	readEnvString("SESSION_NAME", &SESSION_NAME)
	readEnvInt("SESSION_TTL", &SESSION_TTL)
	readEnvString("JWT_SECRET", &JWT_SECRET)
	readEnvDuration("JWT_ACCESS_TTL", &JWT_ACCESS_TTL)
	readEnvDuration("JWT_REFRESH_TTL", &JWT_REFRESH_TTL)
	readEnvString("MEDIA_DIR", &MEDIA_DIR)
	readEnvString("MEDIA_URL", &MEDIA_URL)
	readEnvInt("IMAGE_MAX_SIZE", &IMAGE_MAX_SIZE)
	readEnvString("S3_BUCKET", &S3_BUCKET)
	readEnvString("S3_REGION", &S3_REGION)
	readEnvString("S3_ENDPOINT", &S3_ENDPOINT)
	readEnvString("S3_KEY", &S3_KEY)
	readEnvString("S3_SECRET", &S3_SECRET)
	readEnvString("S3_PREFIX", &S3_PREFIX)
}

// Validate reports settings the server must not run with. Outside DEBUG_MODE the
// session key and the JWT secret have to be set to something other than the placeholders
func Validate() error {
	if DEBUG_MODE {
		return nil
	}
	var errs []error
	if SESSION_KEY == "" || SESSION_KEY == defaultSessionKey {
		errs = append(errs, errors.New("SESSION_KEY must be set when DEBUG_MODE is off"))
	}
	if JWT_SECRET == "" || JWT_SECRET == defaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set when DEBUG_MODE is off"))
	}
	return errors.Join(errs...)
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = i
}

// readEnvDuration accepts "90m", "24h", etc. Bare numbers are seconds
func readEnvDuration(name string, value *time.Duration) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*value = time.Duration(secs) * time.Second
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return
	}
	*value = d
}

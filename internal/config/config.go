package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time‑to‑live in minutes
    BcryptCost     int    // bcrypt cost for password hashing
    BaseURL        string // public base URL used in confirmation links

    SMTPHost string // mail relay host; empty routes mail to the local outbox file
    SMTPPort string // mail relay port
    SMTPUser string // mail relay username (optional)
    SMTPPass string // mail relay password (optional)
    SMTPFrom string // From address on outgoing mail

    S3Region    string // object store region
    S3Endpoint  string // object store endpoint override (MinIO and friends)
    S3Bucket    string // bucket holding uploaded avatars
    S3AccessKey string // object store access key
    S3SecretKey string // object store secret key
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Mail and object
// store settings are optional so the server still boots without them.
func Load() Config {
    return Config{
        Env:          must("APP_ENV"),
        Port:         must("APP_PORT"),
        DBUser:       must("DB_USER"),
        DBPass:       os.Getenv("DB_PASS"), // empty allowed
        DBHost:       must("DB_HOST"),
        DBPort:       must("DB_PORT"),
        DBName:       must("DB_NAME"),
        JWTSecret:    must("JWT_SECRET"),
        AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
        BcryptCost:   mustInt("BCRYPT_COST"),
        BaseURL:      envStr("APP_BASE_URL", "http://localhost:8080"),

        SMTPHost: os.Getenv("SMTP_HOST"),
        SMTPPort: envStr("SMTP_PORT", "587"),
        SMTPUser: os.Getenv("SMTP_USER"),
        SMTPPass: os.Getenv("SMTP_PASS"),
        SMTPFrom: envStr("SMTP_FROM", "no-reply@localhost"),

        S3Region:    envStr("S3_REGION", "us-east-1"),
        S3Endpoint:  os.Getenv("S3_ENDPOINT"),
        S3Bucket:    os.Getenv("S3_BUCKET"),
        S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
        S3SecretKey: os.Getenv("S3_SECRET_KEY"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

package config

import (
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Email verification modes
const (
	VerificationMandatory = "mandatory"
	VerificationOptional  = "optional"
)

// Activation strategies
const (
	StrategyLink = "link"
	StrategyOTP  = "otp"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Account  AccountConfig
	Token    TokenConfig
	SMTP     SMTPConfig
	Site     SiteConfig
	Log      LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// AllowedOrigins lists CORS origins; "*" allows any
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// AccountConfig controls the registration and activation flow
type AccountConfig struct {
	EmailVerification  string
	ActivationStrategy string
	// OTPExpirySeconds is passed through as configured; the OTP service
	// decides what to do with a non-positive value.
	OTPExpirySeconds int
	DispatchTimeout  time.Duration
}

// VerificationRequired reports whether new accounts start inactive
func (c AccountConfig) VerificationRequired() bool {
	return c.EmailVerification != VerificationOptional
}

// TokenConfig holds the signed activation/reset token settings
type TokenConfig struct {
	Secret         string
	Bucket         time.Duration
	TimeoutBuckets int
}

// SMTPConfig holds mail transport settings. An empty Host selects the logging transport.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SiteConfig is used to build links sent to users
type SiteConfig struct {
	Name     string
	Domain   string
	Protocol string
	// ActivationPath and ResetPath are joined with /<uidb64>/<token>
	ActivationPath string
	ResetPath      string
}

// BaseURL returns protocol://domain
func (c SiteConfig) BaseURL() string {
	return c.Protocol + "://" + strings.TrimSuffix(c.Domain, "/")
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string
}

// DefaultSecret is the JWT_SECRET fallback. It is rejected in production.
const DefaultSecret = "change-this-in-production"

// EnvProduction is the SERVER_ENV value of a production deployment
const EnvProduction = "production"

// Load loads configuration from environment variables
func Load() *Config {
	jwtSecret := getEnv("JWT_SECRET", DefaultSecret)
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("SERVER_ENV", "development"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "inkpost"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        jwtSecret,
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Account: AccountConfig{
			EmailVerification:  getEnvOneOf("ACCOUNT_EMAIL_VERIFICATION", VerificationMandatory, VerificationMandatory, VerificationOptional),
			ActivationStrategy: getEnvOneOf("ACCOUNT_ACTIVATION_STRATEGY", StrategyLink, StrategyLink, StrategyOTP),
			OTPExpirySeconds:   getEnvAsInt("OTP_EXPIRY_SECONDS", 0),
			DispatchTimeout:    getEnvAsDuration("DISPATCH_TIMEOUT", 10*time.Second),
		},
		Token: TokenConfig{
			Secret:         getEnv("SECRET_KEY", jwtSecret),
			Bucket:         getEnvAsDuration("TOKEN_BUCKET", 24*time.Hour),
			TimeoutBuckets: getEnvAsInt("TOKEN_TIMEOUT_BUCKETS", 3),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@localhost"),
		},
		Site: SiteConfig{
			Name:     getEnv("SITE_NAME", "Inkpost"),
			Domain:   getEnv("SITE_DOMAIN", "localhost:8080"),
			Protocol: getEnvOneOf("SITE_PROTOCOL", "http", "http", "https"),

			ActivationPath: getEnv("SITE_ACTIVATION_PATH", "/api/v1/accounts/activate"),
			ResetPath:      getEnv("SITE_RESET_PATH", "/password-reset"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", ""),
		},
	}
}

var absolutePath = regexp.MustCompile(`^/[^?#]*$`)

// Validate checks the loaded values before anything is wired
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Server),
		validation.Field(&c.JWT),
		validation.Field(&c.Token),
		validation.Field(&c.SMTP),
		validation.Field(&c.Site),
	)
	if err != nil || c.Server.Env != EnvProduction {
		return err
	}
	return validation.Errors{
		"JWT_SECRET": validation.Validate(c.JWT.Secret, validation.NotIn(DefaultSecret).Error("must be set in production")),
		"SECRET_KEY": validation.Validate(c.Token.Secret, validation.NotIn(DefaultSecret).Error("must be set in production")),
	}.Filter()
}

// Validate implements validation.Validatable
func (c ServerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.ReadTimeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.WriteTimeout, validation.Required, validation.Min(time.Second)),
	)
}

// Validate implements validation.Validatable
func (c JWTConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Secret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.AccessExpiry, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.RefreshExpiry, validation.Required, validation.Min(c.AccessExpiry)),
	)
}

// Validate implements validation.Validatable
func (c TokenConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Secret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.Bucket, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.TimeoutBuckets, validation.Required, validation.Min(1)),
	)
}

// Validate implements validation.Validatable. An empty Host is valid and
// selects the logging transport.
func (c SMTPConfig) Validate() error {
	if c.Host == "" {
		return nil
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.From, validation.Required, is.Email),
	)
}

// Validate implements validation.Validatable
func (c SiteConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Domain, validation.Required),
		validation.Field(&c.Protocol, validation.Required, validation.In("http", "https")),
		validation.Field(&c.ActivationPath, validation.Required, validation.Match(absolutePath)),
		validation.Field(&c.ResetPath, validation.Required, validation.Match(absolutePath)),
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvOneOf(key, defaultValue string, allowed ...string) string {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

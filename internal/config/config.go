package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables

	S3BucketName string
	MediaBaseURL string // public CDN prefix for uploaded media

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	CacheDriver string // "redis" | "memory"
	RedisURL    string
	RedisPrefix string

	XenithKeyPrefix   string
	XenithEmailDomain string
	OTPTTL            time.Duration

	GoogleClientID string
	AdminEmails    []string
	SNSTopicARN    string
	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Participants  string
	Templates     string
	Submissions   string
	Notifications string
	Media         string
	UniqueClaims  string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "ap-south-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Participants:  getEnv("DYNAMO_TABLE_PARTICIPANTS", "xenith_participants"),
			Templates:     getEnv("DYNAMO_TABLE_TEMPLATES", "registration_templates"),
			Submissions:   getEnv("DYNAMO_TABLE_SUBMISSIONS", "registration_submissions"),
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			Media:         getEnv("DYNAMO_TABLE_MEDIA", "media"),
			UniqueClaims:  getEnv("DYNAMO_TABLE_UNIQUE_CLAIMS", "unique_claims"),
		},

		S3BucketName:      getEnv("S3_BUCKET_NAME", "council-media"),
		MediaBaseURL:      strings.TrimRight(getEnv("MEDIA_PUBLIC_BASE_URL", ""), "/"),
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 12*time.Hour),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 1025),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		CacheDriver: getEnv("CACHE_DRIVER", "redis"),
		RedisURL:    getEnv("REDIS_URL", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "otp"),

		XenithKeyPrefix:   getEnv("XENITH_KEY_PREFIX", "XEN"),
		XenithEmailDomain: strings.ToLower(getEnv("XENITH_EMAIL_DOMAIN", "iitp.ac.in")),
		OTPTTL:            getEnvDuration("OTP_TTL", 330*time.Second),

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),
		AdminEmails:    splitList(getEnv("ADMIN_EMAILS", "")),
		SNSTopicARN:    getEnv("SNS_TOPIC_ARN", ""),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
	}
}

// Validate reports configuration that the process cannot run without.
func (c *Config) Validate() error {
	var errs []error
	switch c.CacheDriver {
	case "redis":
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when CACHE_DRIVER=redis"))
		}
	case "memory":
		if c.AppEnv == "production" {
			errs = append(errs, errors.New("CACHE_DRIVER=memory is not allowed in production"))
		}
	default:
		errs = append(errs, errors.New("CACHE_DRIVER must be redis or memory"))
	}
	if c.XenithKeyPrefix == "" {
		errs = append(errs, errors.New("XENITH_KEY_PREFIX must not be empty"))
	}
	if c.XenithEmailDomain == "" {
		errs = append(errs, errors.New("XENITH_EMAIL_DOMAIN must not be empty"))
	}
	if c.OTPTTL <= 0 {
		errs = append(errs, errors.New("OTP_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

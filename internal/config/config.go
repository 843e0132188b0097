package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort   string
	AppEnv    string
	LogLevel  string
	LogFormat string // "text" (tint) | "json"

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	OTPTTL         time.Duration
	OTPMaxAttempts int
	OTPRetention   time.Duration // kept after expiry before purge

	MessagingProvider string // "twilio" | "sns" | "log"
	TwilioAPIBaseURL  string
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
	TwilioTemplateSID string
	TwilioTimeout     time.Duration
	SNSRegion         string
	OTPMessageFormat  string

	ArchiveEnabled bool
	S3BucketName   string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
	AdminUsers        map[string]string // email -> bcrypt hash

	CustomerRequireVerifiedPhone bool
	CustomerVerificationWindow   time.Duration

	AllowedOrigins []string // CORS allowed origins

	// TrustProxyHeaders resolves the client IP from X-Forwarded-For/X-Real-Ip.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool

	OTPSendRatePerMinute   int
	OTPVerifyRatePerMinute int
	AdminLoginPerMinute    int
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Verifications   string
	Customers       string
	CustomerUniques string
}

// IsProduction reports whether the service runs with production hardening.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:   getEnv("APP_PORT", "3000"),
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Verifications:   getEnv("DYNAMO_TABLE_VERIFICATIONS", "whatsapp_verifications"),
			Customers:       getEnv("DYNAMO_TABLE_CUSTOMERS", "customers"),
			CustomerUniques: getEnv("DYNAMO_TABLE_CUSTOMER_UNIQUES", "customer_uniques"),
		},

		OTPTTL:         getEnvDuration("OTP_TTL", 10*time.Minute),
		OTPMaxAttempts: getEnvInt("OTP_MAX_ATTEMPTS", 3),
		OTPRetention:   getEnvDuration("OTP_RETENTION", 30*24*time.Hour),

		MessagingProvider: getEnv("MESSAGING_PROVIDER", "twilio"),
		TwilioAPIBaseURL:  getEnv("TWILIO_API_BASE_URL", "https://api.twilio.com"),
		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
		TwilioTemplateSID: getEnv("TWILIO_TEMPLATE_SID", ""),
		TwilioTimeout:     getEnvDuration("TWILIO_TIMEOUT", 10*time.Second),
		SNSRegion:         getEnv("SNS_REGION", "us-east-1"),
		OTPMessageFormat:  getEnv("OTP_MESSAGE_FORMAT", "Your verification code is %s"),

		ArchiveEnabled: getEnvBool("ARCHIVE_ENABLED", false),
		S3BucketName:   getEnv("S3_BUCKET_NAME", "customer-intake-archive"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 8*time.Hour),
		AdminUsers:        parseAdminUsers(getEnv("ADMIN_USERS", "")),

		CustomerRequireVerifiedPhone: getEnvBool("CUSTOMER_REQUIRE_VERIFIED_PHONE", true),
		CustomerVerificationWindow:   getEnvDuration("CUSTOMER_VERIFICATION_WINDOW", time.Hour),

		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),

		OTPSendRatePerMinute:   getEnvInt("RATE_LIMIT_OTP_SEND_PER_MINUTE", 5),
		OTPVerifyRatePerMinute: getEnvInt("RATE_LIMIT_OTP_VERIFY_PER_MINUTE", 10),
		AdminLoginPerMinute:    getEnvInt("RATE_LIMIT_ADMIN_LOGIN_PER_MINUTE", 5),
	}
}

// parseAdminUsers reads "email:hash,email:hash". Bcrypt hashes contain '$'
// but never ':', so the first colon separates the pair.
func parseAdminUsers(raw string) map[string]string {
	users := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		email, hash, ok := strings.Cut(pair, ":")
		if !ok || email == "" || hash == "" {
			continue
		}
		users[strings.ToLower(strings.TrimSpace(email))] = strings.TrimSpace(hash)
	}
	return users
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

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
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

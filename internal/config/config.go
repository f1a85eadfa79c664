package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, read from the environment.
// Optional integrations (email, SMS, billing, storage, scanning) are left
// unconfigured when their variables are absent; the app degrades gracefully.
type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string

	SecureCookies bool
	AdminToken    string

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string
	ReminderCron    string

	ResendAPIKey string
	EmailFrom    string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePremiumPrice  string
	StripeSuccessURL    string
	StripeCancelURL     string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	VaultPassphrase string
	FieldPassphrase string

	OpenAIAPIKey string
	OpenAIModel  string
}

// Load reads .env if present, then the environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:      envOr("CITYHELPER_PORT", "8080"),
		DBPath:    envOr("CITYHELPER_DB_PATH", "cityhelper.db"),
		LogLevel:  envOr("CITYHELPER_LOG_LEVEL", "info"),
		LogFormat: envOr("CITYHELPER_LOG_FORMAT", "text"),

		SecureCookies: os.Getenv("CITYHELPER_SECURE_COOKIES") == "true",
		AdminToken:    os.Getenv("CITYHELPER_ADMIN_TOKEN"),

		VAPIDPublicKey:  os.Getenv("CITYHELPER_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("CITYHELPER_VAPID_PRIVATE_KEY"),
		VAPIDSubscriber: os.Getenv("CITYHELPER_VAPID_SUBSCRIBER"),
		ReminderCron:    envOr("CITYHELPER_REMINDER_CRON", "0 * * * *"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    envOr("CITYHELPER_EMAIL_FROM", "CityHelper <noreply@cityhelper.app>"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripePremiumPrice:  os.Getenv("STRIPE_PREMIUM_PRICE_ID"),
		StripeSuccessURL:    envOr("STRIPE_SUCCESS_URL", "https://cityhelper.app/billing/success"),
		StripeCancelURL:     envOr("STRIPE_CANCEL_URL", "https://cityhelper.app/billing"),

		S3Endpoint:  os.Getenv("CITYHELPER_S3_ENDPOINT"),
		S3Region:    envOr("CITYHELPER_S3_REGION", "us-east-1"),
		S3Bucket:    os.Getenv("CITYHELPER_S3_BUCKET"),
		S3AccessKey: os.Getenv("CITYHELPER_S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("CITYHELPER_S3_SECRET_KEY"),

		VaultPassphrase: os.Getenv("CITYHELPER_VAULT_PASSPHRASE"),
		FieldPassphrase: os.Getenv("CITYHELPER_FIELD_PASSPHRASE"),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  os.Getenv("CITYHELPER_SCAN_MODEL"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultMaxUploadBytes = 50 << 20 // 50MB

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	PDFStoreType  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PDFStoreTTL   time.Duration

	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	OpenAIAPIKey   string
	OpenAIBaseURL  string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float32
	LLMTimeout     time.Duration

	ExtractTimeout time.Duration
	MaxUploadBytes int64

	JWTSecret string
	JWTTTL    time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string

	ChatRateLimit   RateLimit
	UploadRateLimit RateLimit
}

// RateLimit is a token bucket rule expressed as requests per second and burst size.
type RateLimit struct {
	RPS   float64
	Burst int
}

// Load reads configuration from .env files and environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	for _, path := range []string{".env", "cmd/.env"} {
		_ = godotenv.Load(path)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	env := normalizeEnv(v.GetString("ENV"))
	dbURL := strings.TrimSpace(v.GetString("DATABASE_URL"))
	mongoURI := strings.TrimSpace(v.GetString("MONGO_URI"))

	return Config{
		Port:            v.GetString("PORT"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),

		ObjectStoreType: normalizeStoreType(v.GetString("OBJECT_STORE")),
		LocalStoreDir:   v.GetString("LOCAL_STORE_DIR"),
		AWSRegion:       v.GetString("AWS_REGION"),
		S3Bucket:        v.GetString("S3_BUCKET"),
		S3Prefix:        v.GetString("S3_PREFIX"),
		SSEKMSKeyID:     v.GetString("SSE_KMS_KEY_ID"),

		PDFStoreType:  normalizePDFStore(v.GetString("PDF_STORE")),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		PDFStoreTTL:   v.GetDuration("PDF_STORE_TTL"),

		DatabaseURL:   dbURL,
		MongoURI:      mongoURI,
		MongoDatabase: v.GetString("MONGO_DATABASE"),

		OpenAIAPIKey:   strings.TrimSpace(v.GetString("OPENAI_API_KEY")),
		OpenAIBaseURL:  v.GetString("OPENAI_BASE_URL"),
		LLMModel:       v.GetString("LLM_MODEL"),
		LLMMaxTokens:   v.GetInt("LLM_MAX_TOKENS"),
		LLMTemperature: float32(v.GetFloat64("LLM_TEMPERATURE")),
		LLMTimeout:     time.Duration(v.GetInt("OPENAI_TIMEOUT_SECONDS")) * time.Second,

		ExtractTimeout: v.GetDuration("PDF_EXTRACT_TIMEOUT"),
		MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),

		JWTSecret: v.GetString("JWT_SECRET"),
		JWTTTL:    v.GetDuration("JWT_TTL"),

		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
		UIRedirectURL:      v.GetString("UI_REDIRECT_URL"),

		ChatRateLimit: RateLimit{
			RPS:   v.GetFloat64("RATE_LIMIT_CHAT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_CHAT_BURST"),
		},
		UploadRateLimit: RateLimit{
			RPS:   v.GetFloat64("RATE_LIMIT_UPLOAD_RPS"),
			Burst: v.GetInt("RATE_LIMIT_UPLOAD_BURST"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("ENV", "dev")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("OBJECT_STORE", "local")
	v.SetDefault("LOCAL_STORE_DIR", "./uploads")
	v.SetDefault("PDF_STORE", "memory")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PDF_STORE_TTL", "0s")
	v.SetDefault("MONGO_DATABASE", "docchat")
	v.SetDefault("LLM_MODEL", "gpt-3.5-turbo")
	v.SetDefault("LLM_MAX_TOKENS", 500)
	v.SetDefault("LLM_TEMPERATURE", 0.7)
	v.SetDefault("OPENAI_TIMEOUT_SECONDS", 60)
	v.SetDefault("PDF_EXTRACT_TIMEOUT", "30s")
	v.SetDefault("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)
	v.SetDefault("JWT_TTL", "720h")
	v.SetDefault("RATE_LIMIT_CHAT_RPS", 1)
	v.SetDefault("RATE_LIMIT_CHAT_BURST", 10)
	v.SetDefault("RATE_LIMIT_UPLOAD_RPS", 0.5)
	v.SetDefault("RATE_LIMIT_UPLOAD_BURST", 5)
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizePDFStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "redis":
		return "redis"
	default:
		return "memory"
	}
}

// IsDevLike reports whether env allows in-memory fallbacks.
func IsDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}

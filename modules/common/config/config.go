package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config 구조체 - 모든 환경변수를 담음
type Config struct {
	// Redis
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// Supabase
	SupabaseURL        string
	SupabaseServiceKey string
	StorageBucket      string

	// Gemini API (captioning)
	GeminiAPIKeys []string
	GeminiModel   string
	CaptionsOn    bool
	TriggerWord   string

	// Detection model cascades
	FaceCascadePath   string
	PuplocCascadePath string

	// Prompt API
	WebhookSecret string

	// Server
	Port string
}

var globalConfig *Config

// LoadConfig - 환경변수 로드
func LoadConfig() (*Config, error) {
	// .env 파일 로드 (있으면)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	// Redis UseTLS 파싱
	useTLS := true // 기본값
	if tlsStr := os.Getenv("REDIS_USE_TLS"); tlsStr != "" {
		if parsed, err := strconv.ParseBool(tlsStr); err == nil {
			useTLS = parsed
		}
	}

	captionsOn := false
	if capStr := os.Getenv("CAPTIONS_ENABLED"); capStr != "" {
		if parsed, err := strconv.ParseBool(capStr); err == nil {
			captionsOn = parsed
		}
	}

	// 여러 API 키는 콤마로 구분
	var geminiKeys []string
	for _, key := range strings.Split(os.Getenv("GEMINI_API_KEYS"), ",") {
		if key = strings.TrimSpace(key); key != "" {
			geminiKeys = append(geminiKeys, key)
		}
	}

	globalConfig = &Config{
		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   useTLS,

		// Supabase
		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
		StorageBucket:      getEnv("STORAGE_BUCKET", "training-images"),

		// Gemini
		GeminiAPIKeys: geminiKeys,
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		CaptionsOn:    captionsOn,
		TriggerWord:   getEnv("TRIGGER_WORD", "ohwx"),

		// Detection cascades
		FaceCascadePath:   getEnv("FACE_CASCADE_PATH", "models/facefinder"),
		PuplocCascadePath: getEnv("PUPLOC_CASCADE_PATH", "models/puploc"),

		// Prompt API
		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),

		// Server
		Port: getEnv("PORT", "8080"),
	}

	// 필수 환경변수 검증
	if err := globalConfig.validate(); err != nil {
		return nil, err
	}

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   Redis: %s:%s (TLS: %v)", globalConfig.RedisHost, globalConfig.RedisPort, globalConfig.RedisUseTLS)
	log.Printf("   Supabase: %s (bucket: %s)", globalConfig.SupabaseURL, globalConfig.StorageBucket)
	log.Printf("   Cascades: %s, %s", globalConfig.FaceCascadePath, globalConfig.PuplocCascadePath)
	log.Printf("   Captions: %v (model: %s, keys: %d)", globalConfig.CaptionsOn, globalConfig.GeminiModel, len(globalConfig.GeminiAPIKeys))

	return globalConfig, nil
}

// GetConfig - 로드된 설정 가져오기
func GetConfig() *Config {
	if globalConfig == nil {
		log.Fatal("❌ Config not loaded. Call LoadConfig() first.")
	}
	return globalConfig
}

// validate - 필수 환경변수 검증
func (c *Config) validate() error {
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	if c.CaptionsOn && len(c.GeminiAPIKeys) == 0 {
		return fmt.Errorf("GEMINI_API_KEYS is required when CAPTIONS_ENABLED is true")
	}
	return nil
}

// getEnv - 환경변수 가져오기 (기본값 지원)
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

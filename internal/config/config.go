package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port                  string
	AllowedOrigin         string
	DatabaseURL           string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	ShopID                string
	OutboxPath            string
	ReplayIntervalSeconds int
	SearchCacheTTLSeconds int
	AuthSecret            string
	AccessTokenTTLMinutes int
	OwnerUsername         string
	OwnerPassword         string
	S3Endpoint            string
	S3Region              string
	S3Bucket              string
	S3AccessKey           string
	S3SecretKey           string
	S3UsePathStyle        bool
	S3SignExpiryMinutes   int
}

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	replay, err := strconv.Atoi(getEnv("REPLAY_INTERVAL_SECONDS", "15"))
	if err != nil || replay < 1 {
		replay = 15
	}
	cacheTTL, err := strconv.Atoi(getEnv("SEARCH_CACHE_TTL_SECONDS", "30"))
	if err != nil || cacheTTL < 1 {
		cacheTTL = 30
	}
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}
	signExpiry, err := strconv.Atoi(getEnv("S3_SIGN_EXPIRY_MINUTES", "15"))
	if err != nil || signExpiry < 1 {
		signExpiry = 15
	}

	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		AllowedOrigin:         getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		ShopID:                getEnv("SHOP_ID", "main-shop"),
		OutboxPath:            getEnv("OUTBOX_PATH", "outbox.db"),
		ReplayIntervalSeconds: replay,
		SearchCacheTTLSeconds: cacheTTL,
		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,
		OwnerUsername:         getEnv("OWNER_USERNAME", "admin"),
		OwnerPassword:         strings.TrimSpace(os.Getenv("OWNER_PASSWORD")),
		S3Endpoint:            os.Getenv("S3_ENDPOINT"),
		S3Region:              os.Getenv("S3_REGION"),
		S3Bucket:              os.Getenv("S3_BUCKET"),
		S3AccessKey:           os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:           os.Getenv("S3_SECRET_KEY"),
		S3UsePathStyle:        getEnv("S3_USE_PATH_STYLE", "true") == "true",
		S3SignExpiryMinutes:   signExpiry,
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

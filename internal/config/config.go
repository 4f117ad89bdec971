package config

import (
	"log"
	"os"
	"time"
)

type Config struct {
	Port        string
	DBDSN       string // empty = in-memory store
	UploadDir   string
	LogFile     string
	JWTSecret   string
	JWTExpire   time.Duration
	EmailDomain string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	dsn := os.Getenv("DB_DSN") // e.g. "swapshop.db" for the sqlite store
	uploads := os.Getenv("UPLOAD_DIR")
	if uploads == "" {
		uploads = "./uploads"
	}
	logFile := os.Getenv("LOG_FILE")
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
		log.Printf("[config] JWT_SECRET not set, using insecure dev default")
	}
	expire := 30 * 24 * time.Hour
	if v := os.Getenv("JWT_EXPIRE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			expire = d
		}
	}
	domain := os.Getenv("EMAIL_DOMAIN")
	if domain == "" {
		domain = "iitp.ac.in"
	}

	cfg := Config{
		Port:        port,
		DBDSN:       dsn,
		UploadDir:   uploads,
		LogFile:     logFile,
		JWTSecret:   secret,
		JWTExpire:   expire,
		EmailDomain: domain,
	}
	log.Printf("[config] PORT=%s DB_DSN=%s UPLOAD_DIR=%s EMAIL_DOMAIN=%s", cfg.Port, cfg.DBDSN, cfg.UploadDir, cfg.EmailDomain)
	return cfg
}

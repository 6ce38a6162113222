package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DefaultBackendURL is the OT scheduling backend the portal talks to when
// BACKENDURL is not set.
const DefaultBackendURL = "https://otschedular-backend.onrender.com"

// Config holds the application's configuration values.
type Config struct {
	AppName           string        `json:"appname"`
	AppEnv            string        `json:"appenv"`
	AppPort           uint16        `json:"appport"`
	GinMode           string        `json:"ginmode"`
	BackendURL        string        `json:"backendurl"`
	BackendTimeout    time.Duration `json:"backendtimeout"`
	SessionTTL        time.Duration `json:"sessionttl"`
	JWTSecret         string        `json:"-"`
	SessionSweep      string        `json:"sessionsweep"`
	DirectoryCacheTTL time.Duration `json:"directorycachettl"`
	DBDriver          string        `json:"dbdriver"`
	DBHost            string        `json:"dbhost"`
	DBPort            uint16        `json:"dbport"`
	DBName            string        `json:"dbname"`
	DBUSER            string        `json:"dbuser"`
	DBPass            string        `json:"dbpass"`
	SMTPHost          string        `json:"smtphost"`
	SMTPPort          int           `json:"smtpport"`
	SMTPUser          string        `json:"smtpuser"`
	SMTPPass          string        `json:"-"`
	SMTPFrom          string        `json:"smtpfrom"`
	GeoIPDBPath       string        `json:"geoipdbpath"`
	GeoIPDBURL        string        `json:"geoipdburl"`
	CORSOrigins       []string      `json:"corsorigins"`
	Redis             RedisConfig   `json:"redis"`
}

var config *Config
var once sync.Once

// LoadConfig loads the environment variables from a .env file, and returns a singleton Config instance.
// A missing .env file is not fatal; the process environment is used as is.
func LoadConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Printf("No .env file loaded: %v", err)
		}

		appPort, _ := strconv.ParseUint(getEnv("APPPORT", "8080"), 10, 16)
		dbPort, _ := strconv.ParseUint(os.Getenv("DBPORT"), 10, 16)
		smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))

		config = &Config{
			AppName:           getEnv("APPNAME", "OT Scheduler Portal"),
			AppEnv:            os.Getenv("APPENV"),
			AppPort:           uint16(appPort),
			GinMode:           getEnv("GINMODE", "debug"),
			BackendURL:        getEnv("BACKENDURL", DefaultBackendURL),
			BackendTimeout:    parseDuration(os.Getenv("BACKENDTIMEOUT"), 15*time.Second),
			SessionTTL:        parseDuration(os.Getenv("SESSIONTTL"), 24*time.Hour),
			JWTSecret:         os.Getenv("JWTSECRET"),
			SessionSweep:      getEnv("SESSIONSWEEP", "@every 1h"),
			DirectoryCacheTTL: parseDuration(os.Getenv("DIRECTORY_CACHE_TTL"), time.Minute),
			DBDriver:          getEnv("DBDRIVER", "mysql"),
			DBHost:            os.Getenv("DBHOST"),
			DBPort:            uint16(dbPort),
			DBName:            os.Getenv("DBNAME"),
			DBUSER:            os.Getenv("DBUSER"),
			DBPass:            os.Getenv("DBPASS"),
			SMTPHost:          os.Getenv("SMTP_HOST"),
			SMTPPort:          smtpPort,
			SMTPUser:          os.Getenv("SMTP_USER"),
			SMTPPass:          os.Getenv("SMTP_PASS"),
			SMTPFrom:          os.Getenv("SMTP_FROM"),
			GeoIPDBPath:       os.Getenv("GEOIP_DB_PATH"),
			GeoIPDBURL:        os.Getenv("GEOIP_DB_URL"),
			CORSOrigins:       splitList(os.Getenv("CORS_ORIGINS")),
			Redis:             loadRedisConfig(),
		}
	})
	return config
}

// ResetConfigForTest drops the singleton so the next LoadConfig re-reads the environment.
func ResetConfigForTest() {
	config = nil
	once = sync.Once{}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// IsTest reports whether the process runs with APPENV=test.
func (c *Config) IsTest() bool {
	return c != nil && c.AppEnv == "test"
}

// ConnectDB opens the portal's session/audit database. The driver is chosen by
// DBDRIVER (mysql or postgres); APPENV=test always uses in-memory sqlite.
func ConnectDB() (*gorm.DB, error) {
	cfg := LoadConfig()
	if cfg.IsTest() || os.Getenv("APPENV") == "test" {
		dsn := fmt.Sprintf("file:portal_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUSER, cfg.DBPass, cfg.DBName)
		dialector = postgres.Open(dsn)
	case "mysql", "":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", cfg.DBUSER, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DBDRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// IsProduction reports whether the process runs with APPENV=production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"astro-server/internal/shared/utils"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Ephemeris EphemerisConfig
	Cache     CacheConfig
	Forecast  ForecastConfig
	Geocoding GeocodingConfig
	Frontend  FrontendConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
}

type ServerConfig struct {
	Port         string
	URL          string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsPath  string
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// EphemerisConfig bounds the span of dates the built-in ephemeris
// accepts. Mean-element orbits degrade outside a few centuries around
// J2000, so requests beyond the span fail instead of drifting silently.
type EphemerisConfig struct {
	MinYear int
	MaxYear int
}

type CacheConfig struct {
	Enabled     bool
	TimelineTTL time.Duration
	ForecastTTL time.Duration
	GeocodeTTL  time.Duration
}

type ForecastConfig struct {
	Years   int
	Planets []string
}

type GeocodingConfig struct {
	SearchURL   string
	TimezoneURL string
	TimezoneKey string
	UserAgent   string
	Timeout     time.Duration
}

type FrontendConfig struct {
	URL       string
	CORSDebug bool
}

type LoggingConfig struct {
	Level      string
	Format     string
	JSONFormat bool
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
	TrustProxy        bool
}

type AuthConfig struct {
	APIKey       string
	APIKeyHeader string
}

var GlobalConfig *Config

func Init() error {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	config := load()

	if err := config.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	GlobalConfig = config
	return nil
}

func load() *Config {
	return &Config{
		Server:    loadServerConfig(),
		Database:  loadDatabaseConfig(),
		Redis:     loadRedisConfig(),
		Kafka:     loadKafkaConfig(),
		Ephemeris: loadEphemerisConfig(),
		Cache:     loadCacheConfig(),
		Forecast:  loadForecastConfig(),
		Geocoding: loadGeocodingConfig(),
		Frontend:  loadFrontendConfig(),
		Logging:   loadLoggingConfig(),
		RateLimit: loadRateLimitConfig(),
		Auth:      loadAuthConfig(),
	}
}

func loadServerConfig() ServerConfig {
	readTimeout, _ := strconv.Atoi(utils.GetEnv("SERVER_READ_TIMEOUT_SECONDS", "15"))
	writeTimeout, _ := strconv.Atoi(utils.GetEnv("SERVER_WRITE_TIMEOUT_SECONDS", "60"))
	idleTimeout, _ := strconv.Atoi(utils.GetEnv("SERVER_IDLE_TIMEOUT_SECONDS", "60"))

	return ServerConfig{
		Port:         utils.GetEnv("SERVER_PORT", "8080"),
		URL:          utils.GetEnv("SERVER_URL", "http://localhost:8080"),
		Environment:  utils.GetEnv("ENVIRONMENT", "development"),
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
		IdleTimeout:  time.Duration(idleTimeout) * time.Second,
	}
}

func loadDatabaseConfig() DatabaseConfig {
	enabled := utils.GetEnv("DB_ENABLED", "true") == "true"
	maxOpenConns, _ := strconv.Atoi(utils.GetEnv("DB_MAX_OPEN_CONNS", "25"))
	maxIdleConns, _ := strconv.Atoi(utils.GetEnv("DB_MAX_IDLE_CONNS", "5"))
	connMaxLifetime, _ := strconv.Atoi(utils.GetEnv("DB_CONN_MAX_LIFETIME_MINUTES", "5"))

	return DatabaseConfig{
		Enabled:         enabled,
		Host:            utils.GetEnv("DB_HOST", "localhost"),
		Port:            utils.GetEnv("DB_PORT", "5432"),
		User:            utils.GetEnv("DB_USER", "postgres"),
		Password:        utils.GetEnv("DB_PASSWORD", "postgres"),
		Name:            utils.GetEnv("DB_NAME", "astro"),
		SSLMode:         utils.GetEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxLifetime: time.Duration(connMaxLifetime) * time.Minute,
		MigrationsPath:  utils.GetEnv("DB_MIGRATIONS_PATH", "migrations"),
	}
}

func loadRedisConfig() RedisConfig {
	enabled := utils.GetEnv("REDIS_ENABLED", "true") == "true"
	db, _ := strconv.Atoi(utils.GetEnv("REDIS_DB", "0"))

	return RedisConfig{
		Enabled:  enabled,
		URL:      utils.GetEnv("REDIS_URL", ""),
		Host:     utils.GetEnv("REDIS_HOST", "localhost"),
		Port:     utils.GetEnv("REDIS_PORT", "6379"),
		Password: utils.GetEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func loadKafkaConfig() KafkaConfig {
	enabled := utils.GetEnv("KAFKA_ENABLED", "false") == "true"
	brokers := strings.Split(utils.GetEnv("KAFKA_BROKERS", "localhost:9092"), ",")

	return KafkaConfig{
		Enabled: enabled,
		Brokers: brokers,
		Topic:   utils.GetEnv("KAFKA_TOPIC", "astro.forecasts"),
	}
}

func loadEphemerisConfig() EphemerisConfig {
	minYear, _ := strconv.Atoi(utils.GetEnv("EPHEMERIS_MIN_YEAR", "1800"))
	maxYear, _ := strconv.Atoi(utils.GetEnv("EPHEMERIS_MAX_YEAR", "2200"))

	return EphemerisConfig{
		MinYear: minYear,
		MaxYear: maxYear,
	}
}

func loadCacheConfig() CacheConfig {
	enabled := utils.GetEnv("CACHE_ENABLED", "true") == "true"
	timelineTTL, _ := strconv.Atoi(utils.GetEnv("CACHE_TIMELINE_TTL_HOURS", "24"))
	forecastTTL, _ := strconv.Atoi(utils.GetEnv("CACHE_FORECAST_TTL_DAYS", "7"))
	geocodeTTL, _ := strconv.Atoi(utils.GetEnv("CACHE_GEOCODE_TTL_HOURS", "24"))

	return CacheConfig{
		Enabled:     enabled,
		TimelineTTL: time.Duration(timelineTTL) * time.Hour,
		ForecastTTL: time.Duration(forecastTTL) * 24 * time.Hour,
		GeocodeTTL:  time.Duration(geocodeTTL) * time.Hour,
	}
}

func loadForecastConfig() ForecastConfig {
	years, _ := strconv.Atoi(utils.GetEnv("FORECAST_YEARS", "5"))
	planets := strings.Split(utils.GetEnv("FORECAST_PLANETS", "jupiter,saturn,uranus,neptune,pluto"), ",")

	return ForecastConfig{
		Years:   years,
		Planets: planets,
	}
}

func loadGeocodingConfig() GeocodingConfig {
	timeout, _ := strconv.Atoi(utils.GetEnv("GEOCODING_TIMEOUT_SECONDS", "5"))

	return GeocodingConfig{
		SearchURL:   utils.GetEnv("GEOCODING_SEARCH_URL", "https://nominatim.openstreetmap.org/search"),
		TimezoneURL: utils.GetEnv("TIMEZONE_API_URL", "http://api.timezonedb.com/v2.1/get-time-zone"),
		TimezoneKey: utils.GetEnv("TIMEZONE_API_KEY", ""),
		UserAgent:   utils.GetEnv("GEOCODING_USER_AGENT", "astro-server"),
		Timeout:     time.Duration(timeout) * time.Second,
	}
}

func loadFrontendConfig() FrontendConfig {
	corsDebug := utils.GetEnv("CORS_DEBUG", "") == "true"

	return FrontendConfig{
		URL:       utils.GetEnv("FRONTEND_URL", "http://localhost:3000"),
		CORSDebug: corsDebug,
	}
}

func loadLoggingConfig() LoggingConfig {
	environment := utils.GetEnv("ENVIRONMENT", "development")
	jsonFormat := environment == "production"

	return LoggingConfig{
		Level:      utils.GetEnv("LOG_LEVEL", "debug"),
		Format:     utils.GetEnv("LOG_FORMAT", "text"),
		JSONFormat: jsonFormat,
	}
}

func loadRateLimitConfig() RateLimitConfig {
	enabled := utils.GetEnv("RATE_LIMIT_ENABLED", "true") == "true"
	requestsPerSecond, _ := strconv.ParseFloat(utils.GetEnv("RATE_LIMIT_REQUESTS_PER_SECOND", "10"), 64)
	burstSize, _ := strconv.Atoi(utils.GetEnv("RATE_LIMIT_BURST_SIZE", "20"))

	return RateLimitConfig{
		Enabled:           enabled,
		RequestsPerSecond: requestsPerSecond,
		BurstSize:         burstSize,
		TrustProxy:        utils.GetEnv("RATE_LIMIT_TRUST_PROXY", "false") == "true",
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		APIKey:       utils.GetEnv("API_KEY", ""),
		APIKeyHeader: utils.GetEnv("API_KEY_HEADER", "X-API-Key"),
	}
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Ephemeris.MinYear >= c.Ephemeris.MaxYear {
		return fmt.Errorf("EPHEMERIS_MIN_YEAR must be before EPHEMERIS_MAX_YEAR")
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when Kafka is enabled")
	}

	if c.Forecast.Years <= 0 {
		return fmt.Errorf("FORECAST_YEARS must be positive")
	}

	return nil
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

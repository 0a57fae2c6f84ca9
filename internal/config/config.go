package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"strings"
	"time"
)

const (
	KeyHTTPAddr     = "http_addr"
	KeyDBHost       = "db_host"
	KeyDBPort       = "db_port"
	KeyDBUser       = "db_user"
	KeyDBPass       = "db_pass"
	KeyDBName       = "db_name"
	KeyRedisAddr    = "redis_addr"
	KeyRedisDB      = "redis_db"
	KeyKafkaBrokers = "kafka_brokers"
	KeyKafkaTopic   = "kafka_topic"
	KeyKafkaGroup   = "kafka_group"
	KeyKafkaEnabled = "kafka_enabled"
	KeyJWTSecret    = "jwt_secret"
	KeySessionTTL   = "session_ttl"
	KeyRateLimit    = "rate_limit"
	KeyRateBurst    = "rate_burst"
)

type Config struct {
	HTTPAddr string

	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	RedisAddr string
	RedisDB   int

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroup   string
	KafkaEnabled bool

	JWTSecret  string
	SessionTTL time.Duration

	RateLimit float64
	RateBurst int
}

func registerDefaults(v *viper.Viper) {
	v.SetDefault(KeyHTTPAddr, ":8080")
	v.SetDefault(KeyDBHost, "127.0.0.1")
	v.SetDefault(KeyDBPort, "3306")
	v.SetDefault(KeyDBUser, "root")
	v.SetDefault(KeyDBPass, "")
	v.SetDefault(KeyDBName, "recipe-db")
	v.SetDefault(KeyRedisAddr, "localhost:6379")
	v.SetDefault(KeyRedisDB, 0)
	v.SetDefault(KeyKafkaBrokers, "localhost:9092,localhost:9093,localhost:9094")
	v.SetDefault(KeyKafkaTopic, "recipe-topic")
	v.SetDefault(KeyKafkaGroup, "recipe-cache-group")
	v.SetDefault(KeyKafkaEnabled, true)
	v.SetDefault(KeyJWTSecret, "secret")
	v.SetDefault(KeySessionTTL, "24h")
	v.SetDefault(KeyRateLimit, 1)
	v.SetDefault(KeyRateBurst, 3)
}

// Load reads an optional .env file, then resolves every setting from the
// environment with the defaults above.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	registerDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		HTTPAddr:     v.GetString(KeyHTTPAddr),
		DBHost:       v.GetString(KeyDBHost),
		DBPort:       v.GetString(KeyDBPort),
		DBUser:       v.GetString(KeyDBUser),
		DBPass:       v.GetString(KeyDBPass),
		DBName:       v.GetString(KeyDBName),
		RedisAddr:    v.GetString(KeyRedisAddr),
		RedisDB:      v.GetInt(KeyRedisDB),
		KafkaBrokers: splitBrokers(v.GetString(KeyKafkaBrokers)),
		KafkaTopic:   v.GetString(KeyKafkaTopic),
		KafkaGroup:   v.GetString(KeyKafkaGroup),
		KafkaEnabled: v.GetBool(KeyKafkaEnabled),
		JWTSecret:    v.GetString(KeyJWTSecret),
		SessionTTL:   v.GetDuration(KeySessionTTL),
		RateLimit:    v.GetFloat64(KeyRateLimit),
		RateBurst:    v.GetInt(KeyRateBurst),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: %s must not be empty", strings.ToUpper(KeyJWTSecret))
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("config: %s must be positive, got %s", strings.ToUpper(KeySessionTTL), cfg.SessionTTL)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("config: %s is empty but kafka is enabled", strings.ToUpper(KeyKafkaBrokers))
	}

	return cfg, nil
}

// DSN is the go-sql-driver/mysql data source name. parseTime lets DATETIME
// columns scan into time.Time.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServiceConfig holds all configuration for the routing service.
type ServiceConfig struct {
	Port    string
	AppEnv  string
	Routing RoutingConfig
	Cache   CacheConfig
	DB      DatabaseConfig
	Kafka   KafkaConfig
}

// RoutingConfig holds knobs for graph extraction and path computation.
type RoutingConfig struct {
	OverpassURL      string
	OverpassTimeout  time.Duration
	MaxGraphRadiusM  float64
	SnapMaxDistanceM float64
	DefaultSpeedKMH  float64
}

// CacheConfig holds settings for the on-disk graph cache.
type CacheConfig struct {
	Dir string
	TTL time.Duration
}

// DatabaseConfig holds the optional route-history database settings.
// The service runs without persistence when Enabled is false.
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the postgres connection string for GORM.
func (c DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// KafkaConfig holds the optional event stream settings. Publishing is
// disabled when no brokers are configured.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether event publishing is configured.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// Load reads configuration from environment variables with the ROUTING_ prefix.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("ROUTING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("service_port", ":8080")
	v.SetDefault("app_env", "development")

	v.SetDefault("overpass_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass_timeout", "30s")
	v.SetDefault("max_graph_radius_m", 15000.0)
	v.SetDefault("snap_max_distance_m", 500.0)
	v.SetDefault("default_speed_kmh", 40.0)

	v.SetDefault("cache_dir", "graph_cache")
	v.SetDefault("cache_ttl", "24h")

	v.SetDefault("db_enabled", false)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "postgres")
	v.SetDefault("db_name", "routing")
	v.SetDefault("db_sslmode", "disable")

	v.SetDefault("kafka_brokers", "")
	v.SetDefault("kafka_topic", "routing.events")

	port := v.GetString("service_port")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	var brokers []string
	if raw := strings.TrimSpace(v.GetString("kafka_brokers")); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return &ServiceConfig{
		Port:   port,
		AppEnv: v.GetString("app_env"),
		Routing: RoutingConfig{
			OverpassURL:      v.GetString("overpass_url"),
			OverpassTimeout:  v.GetDuration("overpass_timeout"),
			MaxGraphRadiusM:  v.GetFloat64("max_graph_radius_m"),
			SnapMaxDistanceM: v.GetFloat64("snap_max_distance_m"),
			DefaultSpeedKMH:  v.GetFloat64("default_speed_kmh"),
		},
		Cache: CacheConfig{
			Dir: v.GetString("cache_dir"),
			TTL: v.GetDuration("cache_ttl"),
		},
		DB: DatabaseConfig{
			Enabled:  v.GetBool("db_enabled"),
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			DBName:   v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   v.GetString("kafka_topic"),
		},
	}, nil
}

package config

import "time"

type Config struct {
	// Mode picks the backend at startup: live or demo.
	Mode string `yaml:"mode" env:"MODE"`

	Backend    BackendConfig    `yaml:"backend" envPrefix:"BACKEND_"`
	Server     ServerConfig     `yaml:"server" envPrefix:"SERVER_"`
	Store      StoreConfig      `yaml:"store" envPrefix:"STORE_"`
	Cache      CacheConfig      `yaml:"cache" envPrefix:"CACHE_"`
	Redis      RedisConfig      `yaml:"redis" envPrefix:"REDIS_"`
	PostgreSQL PostgreSQLConfig `yaml:"postgresql" envPrefix:"POSTGRES_"`
	Kafka      KafkaConfig      `yaml:"kafka" envPrefix:"KAFKA_"`
	Demo       DemoConfig       `yaml:"demo" envPrefix:"DEMO_"`
	Watcher    WatcherConfig    `yaml:"watcher" envPrefix:"WATCHER_"`
	Logging    LoggingConfig    `yaml:"logging" envPrefix:"LOG_"`
}

type BackendConfig struct {
	URL     string        `yaml:"url" env:"URL"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// RefreshSkew is how long before expiry an access token is renewed.
	RefreshSkew time.Duration `yaml:"refresh_skew" env:"REFRESH_SKEW"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" env:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

type StoreConfig struct {
	Path       string `yaml:"path" env:"PATH"`
	Passphrase string `yaml:"-" env:"PASSPHRASE"`
}

type CacheConfig struct {
	// Driver is local or redis.
	Driver  string        `yaml:"driver" env:"DRIVER"`
	TTL     time.Duration `yaml:"ttl" env:"TTL"`
	MaxCost int64         `yaml:"max_cost" env:"MAX_COST"`
}

type RedisConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

type PostgreSQLConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	Database string `yaml:"database" env:"DB"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers" env:"BROKERS" envSeparator:","`
	Topic   string   `yaml:"topic" env:"TOPIC"`
}

type DemoConfig struct {
	StartPrice    string        `yaml:"start_price" env:"START_PRICE"`
	PriceInterval time.Duration `yaml:"price_interval" env:"PRICE_INTERVAL"`
}

type WatcherConfig struct {
	Interval time.Duration `yaml:"interval" env:"INTERVAL"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

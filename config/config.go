package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/athebyme/gomarket-storefront/internal/utils"
)

// Config содержит все настройки сервиса
type Config struct {
	AppName  string
	Version  string
	LogLevel string
	ENV      string

	Server struct {
		Host            string
		Port            int
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		RequestTimeout  time.Duration // дедлайн обработки одного запроса
		Swagger         bool
	}

	Upstream struct {
		BaseURL            string
		Timeout            time.Duration
		TimeoutMs          int  // PRODUCT_API_TIMEOUT_MS, перекрывает Timeout
		ForwardCredentials bool // передавать Cookie и Authorization клиента
		RequestedWith      string
	}

	QueryCache struct {
		TTL      time.Duration // 0 означает хранить до инвалидации
		ErrorTTL time.Duration
	}

	Redis struct {
		Enabled           bool
		Host              string
		Port              int
		Password          string
		DB                int
		PoolSize          int           // размер пула соединений
		MinIdleConns      int           // минимальное количество неактивных соединений
		ConnectTimeout    time.Duration // таймаут соединения
		ReadTimeout       time.Duration // таймаут чтения
		WriteTimeout      time.Duration // таймаут записи
		MaxRetries        int           // максимальное количество повторных попыток
		KeyPrefix         string
		DefaultExpiration time.Duration // срок жизни записи во втором уровне кэша
	}

	Kafka struct {
		Enabled         bool
		Brokers         []string
		GroupID         string
		ClientID        string
		Topic           string
		AutoOffsetReset string
		PollTimeout     time.Duration
	}

	Metrics struct {
		Enabled bool
	}

	Security struct {
		CORSAllowOrigins []string
		RateLimit        int // запросов с одного адреса за окно, 0 отключает
		RateWindow       time.Duration
	}

	Resilience struct {
		CircuitTimeout  time.Duration // таймаут для размыкания цепи
		HalfOpenMaxReqs int           // макс. запросов в полуоткрытом состоянии
		TripThreshold   int           // порог ошибок для размыкания, 0 отключает
	}
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	configFile := "config"
	if configPath != "" {
		configFile = configPath
	}

	v := viper.New()

	v.SetConfigName(configFile)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
		// Продолжаем, если файл не найден, будем использовать только переменные окружения
	}

	setDefaults(v)
	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка десериализации конфигурации: %w", err)
	}

	if cfg.Upstream.TimeoutMs > 0 {
		cfg.Upstream.Timeout = time.Duration(cfg.Upstream.TimeoutMs) * time.Millisecond
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("некорректная конфигурация: %w", err)
	}

	return &cfg, nil
}

// Validate проверяет обязательные параметры и нормализует адрес апстрима
func (c *Config) Validate() error {
	baseURL, err := utils.ValidateBaseURL(c.Upstream.BaseURL)
	if err != nil {
		return fmt.Errorf("upstream.baseURL: %w", err)
	}
	c.Upstream.BaseURL = baseURL

	if err := utils.ValidateTimeout(c.Upstream.Timeout); err != nil {
		return fmt.Errorf("upstream.timeout: %w", err)
	}

	if c.Redis.Enabled {
		if _, err := c.RedisAddr(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		if err := utils.ValidatePoolSize(c.Redis.PoolSize); err != nil {
			return fmt.Errorf("redis.poolSize: %w", err)
		}
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return utils.ErrConfigEmptyBrokers
		}
		if c.Kafka.Topic == "" {
			return utils.ErrConfigEmptyTopic
		}
	}

	if c.Security.RateLimit < 0 {
		return utils.ErrConfigInvalidRateLimit
	}

	return nil
}

// RedisAddr адрес Redis в виде host:port
func (c *Config) RedisAddr() (string, error) {
	return utils.HostPort(c.Redis.Host, c.Redis.Port)
}

// ServerAddr адрес, на котором слушает HTTP сервер
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsProduction сообщает, что сервис запущен в production окружении
func (c *Config) IsProduction() bool {
	return c.ENV == "production"
}

// setDefaults устанавливает значения по умолчанию
func setDefaults(v *viper.Viper) {
	// Основные настройки
	v.SetDefault("appName", "storefront-gateway")
	v.SetDefault("version", "1.0.0")
	v.SetDefault("logLevel", "info")
	v.SetDefault("env", "development")

	// Настройки сервера
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "30s")
	v.SetDefault("server.shutdownTimeout", "5s")
	v.SetDefault("server.requestTimeout", "30s")
	v.SetDefault("server.swagger", true)

	// Настройки апстрима
	v.SetDefault("upstream.timeout", "10s")
	v.SetDefault("upstream.timeoutMs", 0)
	v.SetDefault("upstream.forwardCredentials", false)
	v.SetDefault("upstream.requestedWith", "storefront-gateway")

	// Настройки кэша запросов
	v.SetDefault("queryCache.ttl", "0s")
	v.SetDefault("queryCache.errorTTL", "0s")

	// Настройки Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("redis.minIdleConns", 2)
	v.SetDefault("redis.connectTimeout", "1s")
	v.SetDefault("redis.readTimeout", "1s")
	v.SetDefault("redis.writeTimeout", "1s")
	v.SetDefault("redis.maxRetries", 3)
	v.SetDefault("redis.keyPrefix", "storefront:")
	v.SetDefault("redis.defaultExpiration", "5m")

	// Настройки Kafka
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.groupID", "storefront-gateway")
	v.SetDefault("kafka.clientID", "storefront-gateway")
	v.SetDefault("kafka.topic", "product-events")
	v.SetDefault("kafka.autoOffsetReset", "latest")
	v.SetDefault("kafka.pollTimeout", "100ms")

	// Настройки метрик
	v.SetDefault("metrics.enabled", true)

	// Настройки безопасности
	v.SetDefault("security.corsAllowOrigins", []string{"*"})
	v.SetDefault("security.rateLimit", 1000)
	v.SetDefault("security.rateWindow", "1m")

	// Настройки отказоустойчивости
	v.SetDefault("resilience.circuitTimeout", "30s")
	v.SetDefault("resilience.halfOpenMaxReqs", 5)
	v.SetDefault("resilience.tripThreshold", 10)
}

// bindEnvVariables привязывает переменные окружения к конфигурации
func bindEnvVariables(v *viper.Viper) {
	// Основные настройки
	v.BindEnv("appName", "APP_NAME")
	v.BindEnv("version", "APP_VERSION")
	v.BindEnv("logLevel", "LOG_LEVEL")
	v.BindEnv("env", "APP_ENV")

	// Настройки сервера
	v.BindEnv("server.host", "SERVER_HOST")
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.readTimeout", "SERVER_READ_TIMEOUT")
	v.BindEnv("server.writeTimeout", "SERVER_WRITE_TIMEOUT")
	v.BindEnv("server.shutdownTimeout", "SERVER_SHUTDOWN_TIMEOUT")
	v.BindEnv("server.requestTimeout", "SERVER_REQUEST_TIMEOUT")
	v.BindEnv("server.swagger", "SERVER_SWAGGER")

	// Настройки апстрима, имена совпадают с теми, что использует фронтенд
	v.BindEnv("upstream.baseURL", "PRODUCT_API_URL")
	v.BindEnv("upstream.timeout", "PRODUCT_API_TIMEOUT")
	v.BindEnv("upstream.timeoutMs", "PRODUCT_API_TIMEOUT_MS")
	v.BindEnv("upstream.forwardCredentials", "PRODUCT_API_SEND_COOKIES")
	v.BindEnv("upstream.requestedWith", "PRODUCT_API_REQUESTED_WITH")

	// Настройки кэша запросов
	v.BindEnv("queryCache.ttl", "QUERY_CACHE_TTL")
	v.BindEnv("queryCache.errorTTL", "QUERY_CACHE_ERROR_TTL")

	// Настройки Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("redis.poolSize", "REDIS_POOL_SIZE")
	v.BindEnv("redis.minIdleConns", "REDIS_MIN_IDLE_CONNS")
	v.BindEnv("redis.connectTimeout", "REDIS_CONNECT_TIMEOUT")
	v.BindEnv("redis.readTimeout", "REDIS_READ_TIMEOUT")
	v.BindEnv("redis.writeTimeout", "REDIS_WRITE_TIMEOUT")
	v.BindEnv("redis.maxRetries", "REDIS_MAX_RETRIES")
	v.BindEnv("redis.keyPrefix", "REDIS_KEY_PREFIX")
	v.BindEnv("redis.defaultExpiration", "REDIS_DEFAULT_EXPIRATION")

	// Настройки Kafka
	v.BindEnv("kafka.enabled", "KAFKA_ENABLED")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.groupID", "KAFKA_GROUP_ID")
	v.BindEnv("kafka.clientID", "KAFKA_CLIENT_ID")
	v.BindEnv("kafka.topic", "KAFKA_TOPIC")
	v.BindEnv("kafka.autoOffsetReset", "KAFKA_AUTO_OFFSET_RESET")
	v.BindEnv("kafka.pollTimeout", "KAFKA_POLL_TIMEOUT")

	// Настройки метрик
	v.BindEnv("metrics.enabled", "METRICS_ENABLED")

	// Настройки безопасности
	v.BindEnv("security.corsAllowOrigins", "CORS_ALLOW_ORIGINS")
	v.BindEnv("security.rateLimit", "RATE_LIMIT")
	v.BindEnv("security.rateWindow", "RATE_WINDOW")

	// Настройки отказоустойчивости
	v.BindEnv("resilience.circuitTimeout", "RESILIENCE_CIRCUIT_TIMEOUT")
	v.BindEnv("resilience.halfOpenMaxReqs", "RESILIENCE_HALF_OPEN_MAX_REQS")
	v.BindEnv("resilience.tripThreshold", "RESILIENCE_TRIP_THRESHOLD")
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athebyme/gomarket-storefront/internal/utils"
)

func TestLoadRequiresBaseURL(t *testing.T) {
	t.Setenv("PRODUCT_API_URL", "")

	_, err := Load("")
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrConfigEmptyBaseURL)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PRODUCT_API_URL", "https://api.example.com/")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.Upstream.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.False(t, cfg.Upstream.ForwardCredentials)
	assert.Equal(t, "storefront-gateway", cfg.AppName)
	assert.Equal(t, "development", cfg.ENV)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddr())
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, []string{"*"}, cfg.Security.CORSAllowOrigins)
	assert.Equal(t, time.Minute, cfg.Security.RateWindow)
	assert.Equal(t, 10, cfg.Resilience.TripThreshold)
	assert.Zero(t, cfg.QueryCache.TTL)
}

func TestLoadUpstreamEnvironment(t *testing.T) {
	t.Setenv("PRODUCT_API_URL", "http://catalog:3000")
	t.Setenv("PRODUCT_API_TIMEOUT_MS", "2500")
	t.Setenv("PRODUCT_API_SEND_COOKIES", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 2500*time.Millisecond, cfg.Upstream.Timeout)
	assert.True(t, cfg.Upstream.ForwardCredentials)
}

func TestLoadKafkaAndRedis(t *testing.T) {
	t.Setenv("PRODUCT_API_URL", "http://catalog:3000")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	addr, err := cfg.RedisAddr()
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", addr)
	assert.True(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.Upstream.BaseURL = "http://catalog"
		return cfg
	}

	cfg := valid()
	cfg.Upstream.BaseURL = "catalog"
	assert.ErrorIs(t, cfg.Validate(), utils.ErrConfigInvalidBaseURL)

	cfg = valid()
	cfg.Upstream.Timeout = -time.Second
	assert.ErrorIs(t, cfg.Validate(), utils.ErrConfigInvalidTimeout)

	cfg = valid()
	cfg.Redis.Enabled = true
	cfg.Redis.Host = "localhost"
	assert.ErrorIs(t, cfg.Validate(), utils.ErrConfigInvalidPort)

	cfg = valid()
	cfg.Kafka.Enabled = true
	assert.ErrorIs(t, cfg.Validate(), utils.ErrConfigEmptyBrokers)

	cfg = valid()
	cfg.Kafka.Enabled = true
	cfg.Kafka.Brokers = []string{"k:9092"}
	assert.ErrorIs(t, cfg.Validate(), utils.ErrConfigEmptyTopic)

	cfg = valid()
	cfg.Security.RateLimit = -1
	assert.ErrorIs(t, cfg.Validate(), utils.ErrConfigInvalidRateLimit)

	assert.NoError(t, valid().Validate())
}

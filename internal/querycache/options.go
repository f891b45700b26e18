package querycache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/athebyme/gomarket-storefront/pkg/interfaces"
)

// Option настраивает Store
type Option func(*options)

type options struct {
	ttl        time.Duration
	errorTTL   time.Duration
	backend    interfaces.CachePort
	prefix     string
	backendTTL time.Duration
	metrics    *prometheus.CounterVec
	logger     interfaces.LoggerPort
	now        func() time.Time
}

// WithTTL ограничивает время жизни Ready записей, 0 без ограничения
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithErrorTTL ограничивает время жизни Errored записей, 0 без ограничения
func WithErrorTTL(ttl time.Duration) Option {
	return func(o *options) { o.errorTTL = ttl }
}

// WithBackend включает второй уровень кэша. Значения хранятся в JSON
// под ключами prefix+key со сроком ttl (0 без срока).
func WithBackend(backend interfaces.CachePort, prefix string, ttl time.Duration) Option {
	return func(o *options) {
		o.backend = backend
		o.prefix = prefix
		o.backendTTL = ttl
	}
}

// WithMetrics считает операции кэша. Счетчик должен иметь метки store и op.
func WithMetrics(counter *prometheus.CounterVec) Option {
	return func(o *options) { o.metrics = counter }
}

// WithLogger логгер для ошибок второго уровня
func WithLogger(logger interfaces.LoggerPort) Option {
	return func(o *options) { o.logger = logger }
}

// withClock подменяет часы в тестах
func withClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

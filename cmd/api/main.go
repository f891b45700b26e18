package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/athebyme/gomarket-storefront/config"
	"github.com/athebyme/gomarket-storefront/docs"
	"github.com/athebyme/gomarket-storefront/internal/adapters/cache"
	"github.com/athebyme/gomarket-storefront/internal/adapters/gateway"
	"github.com/athebyme/gomarket-storefront/internal/adapters/logger"
	"github.com/athebyme/gomarket-storefront/internal/adapters/messaging"
	"github.com/athebyme/gomarket-storefront/internal/api"
	"github.com/athebyme/gomarket-storefront/internal/domain/services"
	"github.com/athebyme/gomarket-storefront/internal/querycache"
	"github.com/athebyme/gomarket-storefront/pkg/interfaces"
)

// @title Storefront Catalog API
// @version 1.0
// @description Витрина каталога товаров поверх удаленного API
// @BasePath /
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, err := logger.NewZapLogger(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	instanceID := uuid.NewString()
	log.Info("Инициализация сервиса",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
		interfaces.LogField{Key: "instance_id", Value: instanceID},
	)

	var registry *prometheus.Registry
	var cacheOperations *prometheus.CounterVec
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		cacheOperations = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Количество операций с кэшем запросов",
		}, []string{"store", "op"})
	}

	client, err := gateway.NewClient(gateway.Config{
		BaseURL:            cfg.Upstream.BaseURL,
		Timeout:            cfg.Upstream.Timeout,
		ForwardCredentials: cfg.Upstream.ForwardCredentials,
		RequestedWith:      cfg.Upstream.RequestedWith,
		TripThreshold:      cfg.Resilience.TripThreshold,
		CircuitTimeout:     cfg.Resilience.CircuitTimeout,
		HalfOpenMaxReqs:    cfg.Resilience.HalfOpenMaxReqs,
	}, log)
	if err != nil {
		log.Fatal("Ошибка инициализации клиента каталога", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	log.Info("Клиент каталога инициализирован", interfaces.LogField{Key: "base_url", Value: cfg.Upstream.BaseURL})

	cacheOpts := []querycache.Option{
		querycache.WithTTL(cfg.QueryCache.TTL),
		querycache.WithErrorTTL(cfg.QueryCache.ErrorTTL),
		querycache.WithLogger(log),
	}
	if cacheOperations != nil {
		cacheOpts = append(cacheOpts, querycache.WithMetrics(cacheOperations))
	}

	var cacheClient interfaces.CachePort
	if cfg.Redis.Enabled {
		cacheClient, err = newRedis(ctx, cfg)
		if err != nil {
			log.Fatal("Ошибка инициализации кэша", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		log.Info("Второй уровень кэша в Redis инициализирован")
		cacheOpts = append(cacheOpts, querycache.WithBackend(cacheClient, cfg.Redis.KeyPrefix, cfg.Redis.DefaultExpiration))
	}

	var messagingClient interfaces.MessagingPort
	var events *messaging.EventBus
	if cfg.Kafka.Enabled {
		messagingClient, err = messaging.NewKafkaMessaging(messaging.KafkaOptions{
			Brokers: cfg.Kafka.Brokers,
			// у каждого экземпляра своя группа, чтобы события получали все
			GroupID:         cfg.Kafka.GroupID + "-" + instanceID,
			ClientID:        cfg.Kafka.ClientID,
			AutoOffsetReset: cfg.Kafka.AutoOffsetReset,
			PollTimeout:     cfg.Kafka.PollTimeout,
		}, log)
		if err != nil {
			log.Fatal("Ошибка инициализации системы обмена сообщениями", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		events = messaging.NewEventBus(messagingClient, cfg.Kafka.Topic, instanceID)
		log.Info("Система обмена сообщениями инициализирована", interfaces.LogField{Key: "topic", Value: cfg.Kafka.Topic})
	} else {
		messagingClient = messaging.NewNoopMessaging()
	}

	var publisher services.EventPublisher
	if events != nil {
		publisher = events
	}
	var serviceOpts []services.Option
	if cfg.Upstream.ForwardCredentials {
		serviceOpts = append(serviceOpts, services.WithPrivateReads())
	}
	productService := services.NewProductService(client, services.NewStores(cacheOpts...), publisher, log, serviceOpts...)
	log.Info("Сервис продуктов инициализирован")

	if events != nil {
		if _, err := events.Subscribe(ctx, productService.HandleProductEvent); err != nil {
			log.Fatal("Ошибка подписки на события товаров", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		log.Info("Подписка на события товаров оформлена")
	}

	if cfg.Server.Swagger {
		docs.SwaggerInfo.Version = cfg.Version
	}

	router := api.SetupRouter(productService, log, api.RouterConfig{
		CORSAllowedOrigins: cfg.Security.CORSAllowOrigins,
		RequestTimeout:     cfg.Server.RequestTimeout,
		RateLimit:          cfg.Security.RateLimit,
		RateWindow:         cfg.Security.RateWindow,
		Metrics:            registry,
		Swagger:            cfg.Server.Swagger,
	})
	log.Info("Маршрутизатор настроен")

	server := &http.Server{
		Addr:         cfg.ServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Сервер запущен", interfaces.LogField{Key: "address", Value: server.Addr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Ошибка запуска сервера", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}()

	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Ошибка при graceful shutdown", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		log.Info("HTTP сервер остановлен")

		cancel()
		log.Info("Закрытие соединений с зависимостями...")

		if err := messagingClient.Close(); err != nil {
			log.Error("Ошибка при закрытии Kafka",
				interfaces.LogField{Key: "error", Value: err.Error()})
		}

		if cacheClient != nil {
			if err := cacheClient.Close(); err != nil {
				log.Error("Ошибка при закрытии Redis",
					interfaces.LogField{Key: "error", Value: err.Error()})
			}
		}

		close(done)
	}()

	<-done
	log.Info("Сервер корректно завершил работу")
}

func newRedis(ctx context.Context, cfg *config.Config) (interfaces.CachePort, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheClient, err := cache.NewRedisCache(connectCtx, cache.RedisOptions{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.ConnectTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		return nil, err
	}

	if err := checkRedisConnection(connectCtx, cacheClient, cfg.Redis.KeyPrefix); err != nil {
		cacheClient.Close()
		return nil, err
	}
	return cacheClient, nil
}

// Проверка соединения с Redis
func checkRedisConnection(ctx context.Context, cacheClient interfaces.CachePort, prefix string) error {
	testKey := prefix + "test:connection"
	testValue := []byte("test-value")

	if err := cacheClient.Set(ctx, testKey, testValue, 10*time.Second); err != nil {
		return fmt.Errorf("ошибка записи в Redis: %w", err)
	}

	value, err := cacheClient.Get(ctx, testKey)
	if err != nil {
		return fmt.Errorf("ошибка чтения из Redis: %w", err)
	}

	if string(value) != string(testValue) {
		return fmt.Errorf("некорректное значение из Redis: получено %s, ожидалось %s",
			string(value), string(testValue))
	}

	if err := cacheClient.Delete(ctx, testKey); err != nil {
		return fmt.Errorf("ошибка удаления из Redis: %w", err)
	}

	return nil
}

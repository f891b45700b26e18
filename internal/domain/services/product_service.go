package services

import (
	"context"

	"github.com/athebyme/gomarket-storefront/internal/adapters/messaging"
	"github.com/athebyme/gomarket-storefront/internal/domain/models"
	"github.com/athebyme/gomarket-storefront/internal/querycache"
	"github.com/athebyme/gomarket-storefront/pkg/interfaces"
	"github.com/athebyme/gomarket-storefront/pkg/requestctx"
)

// Stores кэши запросов сервиса. Значения в кэше общие для всех вызывающих,
// изменять их нельзя.
type Stores struct {
	List    *querycache.Store[*models.ProductPage]
	Detail  *querycache.Store[*models.Product]
	Related *querycache.Store[*models.ProductWithRelated]
}

// NewStores создает три кэша с общими настройками
func NewStores(opts ...querycache.Option) Stores {
	return Stores{
		List:    querycache.NewStore[*models.ProductPage]("list", opts...),
		Detail:  querycache.NewStore[*models.Product]("detail", opts...),
		Related: querycache.NewStore[*models.ProductWithRelated]("related", opts...),
	}
}

// ProductService чтение каталога через кэш и изменения с инвалидацией кэша
type ProductService struct {
	gateway   ProductGateway
	stores    Stores
	validator *PayloadValidator
	events    EventPublisher
	logger    interfaces.LoggerPort

	// privateReads чтения с учетными данными идут в апстрим мимо кэша
	privateReads bool
}

// Option настройка ProductService
type Option func(*ProductService)

// WithPrivateReads включается вместе с пересылкой Cookie и Authorization
// в апстрим. Ответ, полученный с учетными данными одного пользователя, не
// попадает в общий кэш и не отдается другим.
func WithPrivateReads() Option {
	return func(s *ProductService) {
		s.privateReads = true
	}
}

// NewProductService создает сервис. events может быть nil, тогда события не рассылаются.
func NewProductService(gateway ProductGateway, stores Stores, events EventPublisher, logger interfaces.LoggerPort, opts ...Option) *ProductService {
	s := &ProductService{
		gateway:   gateway,
		stores:    stores,
		validator: NewPayloadValidator(),
		events:    events,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ProductServiceInterface = (*ProductService)(nil)

// List возвращает страницу выдачи. Ключ кэша нормализованный фильтр.
func (s *ProductService) List(ctx context.Context, filter models.ProductFilter) (*models.ProductPage, error) {
	normalized := filter.Normalize()
	return fetchShared(ctx, s, s.stores.List, normalized.Key(), func(ctx context.Context) (*models.ProductPage, error) {
		return s.gateway.ListProducts(ctx, normalized)
	})
}

// GetBySlug возвращает товар по slug
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return fetchShared(ctx, s, s.stores.Detail, slug, func(ctx context.Context) (*models.Product, error) {
		return s.gateway.GetProduct(ctx, slug)
	})
}

// GetWithRelated возвращает товар вместе с похожими
func (s *ProductService) GetWithRelated(ctx context.Context, slug string) (*models.ProductWithRelated, error) {
	return fetchShared(ctx, s, s.stores.Related, slug, func(ctx context.Context) (*models.ProductWithRelated, error) {
		return s.gateway.GetProductWithRelated(ctx, slug)
	})
}

// fetchShared читает через кэш, кроме запросов с учетными данными при privateReads
func fetchShared[T any](ctx context.Context, s *ProductService, store *querycache.Store[T], key string, fn querycache.FetchFunc[T]) (T, error) {
	if s.privateReads && requestctx.HasCredentials(ctx) {
		return fn(ctx)
	}
	return store.Fetch(ctx, key, fn)
}

// Create проверяет данные, создает товар и сбрасывает кэш выдачи
func (s *ProductService) Create(ctx context.Context, input models.CreateProductInput) (*models.Product, error) {
	input.ApplyDefaults()
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	product, err := s.gateway.CreateProduct(ctx, input)
	if err != nil {
		return nil, err
	}

	s.invalidate(product.Slug)
	s.publish(ctx, messaging.ProductCreatedEvent, product.Slug, "")

	return product, nil
}

// Update проверяет данные и обновляет товар. Если slug изменился,
// сбрасываются записи и старого, и нового slug.
func (s *ProductService) Update(ctx context.Context, slug string, input models.UpdateProductInput) (*models.Product, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	product, err := s.gateway.UpdateProduct(ctx, slug, input)
	if err != nil {
		return nil, err
	}

	previous := ""
	if product.Slug != "" && product.Slug != slug {
		previous = slug
	}
	s.invalidate(slug, product.Slug)
	s.publish(ctx, messaging.ProductUpdatedEvent, firstNonEmpty(product.Slug, slug), previous)

	return product, nil
}

// Delete удаляет товар
func (s *ProductService) Delete(ctx context.Context, slug string) (*models.DeleteResult, error) {
	result, err := s.gateway.DeleteProduct(ctx, slug)
	if err != nil {
		return nil, err
	}

	s.invalidate(slug)
	s.publish(ctx, messaging.ProductDeletedEvent, slug, "")

	return result, nil
}

// HandleProductEvent применяет событие другого экземпляра к локальному кэшу
func (s *ProductService) HandleProductEvent(ctx context.Context, evt messaging.ProductEvent) error {
	if s.events != nil && evt.Source == s.events.Source() {
		return nil
	}

	s.logger.DebugWithContext(ctx, "Сброс кэша по событию",
		interfaces.LogField{Key: "type", Value: string(evt.Type)},
		interfaces.LogField{Key: "slug", Value: evt.Slug},
		interfaces.LogField{Key: "source", Value: evt.Source},
	)
	s.invalidate(evt.Slug, evt.PreviousSlug)
	return nil
}

// invalidate сбрасывает всю выдачу, все похожие товары и карточки указанных slug
func (s *ProductService) invalidate(slugs ...string) {
	s.stores.List.InvalidateAll()
	s.stores.Related.InvalidateAll()
	for _, slug := range slugs {
		if slug != "" {
			s.stores.Detail.Invalidate(slug)
		}
	}
}

func (s *ProductService) publish(ctx context.Context, eventType messaging.EventType, slug, previousSlug string) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, eventType, slug, previousSlug); err != nil {
		s.logger.ErrorWithContext(ctx, "Не удалось опубликовать событие",
			interfaces.LogField{Key: "type", Value: string(eventType)},
			interfaces.LogField{Key: "slug", Value: slug},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

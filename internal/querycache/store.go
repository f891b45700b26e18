package querycache

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/athebyme/gomarket-storefront/pkg/errors"
	"github.com/athebyme/gomarket-storefront/pkg/interfaces"
)

// Операции для счетчика метрик
const (
	opHit          = "hit"
	opMiss         = "miss"
	opShared       = "shared"
	opInvalidate   = "invalidate"
	opBackendHit   = "backend_hit"
	opBackendError = "backend_error"
)

// Store кэш одного вида запросов (список, карточка, похожие товары).
// Все изменения записей идут под одним мьютексом.
type Store[T any] struct {
	name string
	opts options

	mu      sync.Mutex
	slots   map[string]*slot[T]
	nextGen uint64
	nextSub int

	group singleflight.Group
}

// slot запись и ее подписчики. gen меняется при инвалидации и Refetch,
// результат загрузки со старым gen не сохраняется. retry отмечает Errored
// запись с временной ошибкой: подписчики ее видят, но Fetch загружает заново.
type slot[T any] struct {
	entry    Entry[T]
	gen      uint64
	retry    bool
	watchers map[int]chan Entry[T]
}

// NewStore создает пустой кэш. name используется в ключах второго уровня,
// метриках и логах.
func NewStore[T any](name string, opts ...Option) *Store[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		name:  name,
		opts:  o,
		slots: make(map[string]*slot[T]),
	}
}

// Name имя кэша
func (s *Store[T]) Name() string {
	return s.name
}

// Get возвращает снимок записи без блокировки на загрузке.
// Отсутствующая или просроченная запись возвращается как Idle.
func (s *Store[T]) Get(key string) Entry[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[key]
	if !ok || s.expired(sl.entry) {
		return Entry[T]{State: StateIdle}
	}
	return sl.entry
}

// Fetch возвращает Ready данные или Errored ошибку из кэша, иначе запускает
// загрузку или присоединяется к уже идущей. Загрузка не отменяется отменой ctx
// отдельного вызывающего, он просто перестает ждать.
func (s *Store[T]) Fetch(ctx context.Context, key string, fn FetchFunc[T]) (T, error) {
	return s.load(ctx, key, fn, false)
}

// Refetch заменяет текущую запись результатом новой загрузки
func (s *Store[T]) Refetch(ctx context.Context, key string, fn FetchFunc[T]) (T, error) {
	return s.load(ctx, key, fn, true)
}

func (s *Store[T]) load(ctx context.Context, key string, fn FetchFunc[T], force bool) (T, error) {
	s.mu.Lock()
	// проверка и перевод в Loading под одним захватом мьютекса, иначе
	// завершившаяся между ними загрузка запускалась бы повторно
	if !force {
		if data, ok, err := s.cached(key); ok {
			s.mu.Unlock()
			s.count(opHit)
			return data, err
		}
	}
	sl, ok := s.slots[key]
	if !ok {
		sl = s.newSlot()
		s.slots[key] = sl
	} else if force {
		sl.gen = s.bumpGen()
	}
	gen := sl.gen
	if sl.entry.State != StateLoading {
		s.setEntry(sl, Entry[T]{State: StateLoading, Data: sl.entry.Data, UpdatedAt: s.opts.now()})
	}
	s.mu.Unlock()

	s.count(opMiss)

	flightCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(strconv.FormatUint(gen, 10)+":"+key, func() (interface{}, error) {
		return s.run(flightCtx, key, gen, fn)
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.count(opShared)
		}
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (s *Store[T]) run(ctx context.Context, key string, gen uint64, fn FetchFunc[T]) (T, error) {
	// загрузка этого же gen уже завершилась, пока вызывающий шел к DoChan
	s.mu.Lock()
	if sl, ok := s.slots[key]; ok && sl.gen == gen {
		if data, hit, err := s.cached(key); hit {
			s.mu.Unlock()
			return data, err
		}
	}
	s.mu.Unlock()

	if data, ok := s.readBackend(ctx, key); ok {
		s.complete(key, gen, data, nil)
		return data, nil
	}

	data, err := fn(ctx)
	if s.complete(key, gen, data, err) && err == nil {
		s.writeBackend(ctx, key, data)
	}
	return data, err
}

// complete сохраняет результат, если запись не была инвалидирована за время загрузки
func (s *Store[T]) complete(key string, gen uint64, data T, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[key]
	if !ok || sl.gen != gen {
		return false
	}

	sl.retry = err != nil && !retainable(err)
	if err != nil {
		s.setEntry(sl, Entry[T]{State: StateErrored, Err: err, UpdatedAt: s.opts.now()})
	} else {
		s.setEntry(sl, Entry[T]{State: StateReady, Data: data, UpdatedAt: s.opts.now()})
	}
	return true
}

// Invalidate сбрасывает запись ключа в Idle
func (s *Store[T]) Invalidate(key string) {
	s.mu.Lock()
	if sl, ok := s.slots[key]; ok {
		s.reset(key, sl)
	}
	s.mu.Unlock()

	s.count(opInvalidate)
	s.deleteBackend(key)
}

// InvalidateAll сбрасывает все записи кэша
func (s *Store[T]) InvalidateAll() {
	s.mu.Lock()
	for key, sl := range s.slots {
		s.reset(key, sl)
	}
	s.mu.Unlock()

	s.count(opInvalidate)
	s.deleteBackendAll()
}

func (s *Store[T]) reset(key string, sl *slot[T]) {
	if len(sl.watchers) == 0 {
		delete(s.slots, key)
		return
	}
	sl.gen = s.bumpGen()
	sl.retry = false
	s.setEntry(sl, Entry[T]{State: StateIdle, UpdatedAt: s.opts.now()})
}

// Watch подписывается на изменения записи. Канал сразу получает текущее
// состояние, затем только последнее, медленный читатель промежуточные пропускает.
func (s *Store[T]) Watch(key string) (<-chan Entry[T], func()) {
	ch := make(chan Entry[T], 1)

	s.mu.Lock()
	sl, ok := s.slots[key]
	if !ok {
		sl = s.newSlot()
		s.slots[key] = sl
	}
	id := s.nextSub
	s.nextSub++
	sl.watchers[id] = ch
	if s.expired(sl.entry) {
		ch <- Entry[T]{State: StateIdle}
	} else {
		ch <- sl.entry
	}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if cur, ok := s.slots[key]; ok {
				if _, ok := cur.watchers[id]; ok {
					delete(cur.watchers, id)
					close(ch)
				}
				if len(cur.watchers) == 0 && cur.entry.State == StateIdle {
					delete(s.slots, key)
				}
			}
		})
	}
	return ch, cancel
}

// Len количество записей в кэше, включая Idle записи с подписчиками
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// cached возвращает Ready данные или сохраненную ошибку. Вызывается под мьютексом.
func (s *Store[T]) cached(key string) (T, bool, error) {
	var zero T
	sl, ok := s.slots[key]
	if !ok || s.expired(sl.entry) {
		return zero, false, nil
	}
	switch sl.entry.State {
	case StateReady:
		return sl.entry.Data, true, nil
	case StateErrored:
		if sl.retry {
			return zero, false, nil
		}
		return zero, true, sl.entry.Err
	}
	return zero, false, nil
}

// retainable ошибки, которые апстрим вернул осмысленно: проверка входных
// данных и ответы 4xx. Сеть, таймауты, 5xx и чужие ошибки не кэшируются.
func retainable(err error) bool {
	switch errors.KindOf(err) {
	case errors.KindValidation:
		return true
	case errors.KindUpstream:
		var re *errors.RemoteError
		return errors.As(err, &re) && re.StatusCode < http.StatusInternalServerError
	}
	return false
}

func (s *Store[T]) newSlot() *slot[T] {
	return &slot[T]{
		entry:    Entry[T]{State: StateIdle},
		gen:      s.bumpGen(),
		watchers: make(map[int]chan Entry[T]),
	}
}

func (s *Store[T]) bumpGen() uint64 {
	s.nextGen++
	return s.nextGen
}

// setEntry вызывается под мьютексом
func (s *Store[T]) setEntry(sl *slot[T], e Entry[T]) {
	sl.entry = e
	for _, ch := range sl.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- e
	}
}

func (s *Store[T]) expired(e Entry[T]) bool {
	var ttl time.Duration
	switch e.State {
	case StateReady:
		ttl = s.opts.ttl
	case StateErrored:
		ttl = s.opts.errorTTL
	default:
		return false
	}
	return ttl > 0 && s.opts.now().Sub(e.UpdatedAt) > ttl
}

func (s *Store[T]) count(op string) {
	if s.opts.metrics != nil {
		s.opts.metrics.WithLabelValues(s.name, op).Inc()
	}
}

func (s *Store[T]) backendKey(key string) string {
	return s.opts.prefix + s.name + ":" + key
}

func (s *Store[T]) readBackend(ctx context.Context, key string) (T, bool) {
	var zero T
	if s.opts.backend == nil {
		return zero, false
	}

	raw, err := s.opts.backend.Get(ctx, s.backendKey(key))
	if err != nil {
		if !isCacheMiss(err) {
			s.backendFailed(ctx, "чтение", key, err)
		}
		return zero, false
	}

	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		s.backendFailed(ctx, "декодирование", key, err)
		return zero, false
	}
	s.count(opBackendHit)
	return data, true
}

func (s *Store[T]) writeBackend(ctx context.Context, key string, data T) {
	if s.opts.backend == nil {
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		s.backendFailed(ctx, "кодирование", key, err)
		return
	}
	if err := s.opts.backend.Set(ctx, s.backendKey(key), raw, s.opts.backendTTL); err != nil {
		s.backendFailed(ctx, "запись", key, err)
	}
}

func (s *Store[T]) deleteBackend(key string) {
	if s.opts.backend == nil {
		return
	}
	ctx := context.Background()
	if err := s.opts.backend.Delete(ctx, s.backendKey(key)); err != nil {
		s.backendFailed(ctx, "удаление", key, err)
	}
}

func (s *Store[T]) deleteBackendAll() {
	if s.opts.backend == nil {
		return
	}
	ctx := context.Background()
	if err := s.opts.backend.DeleteByPattern(ctx, s.backendKey("*")); err != nil {
		s.backendFailed(ctx, "удаление по шаблону", "*", err)
	}
}

func (s *Store[T]) backendFailed(ctx context.Context, op, key string, err error) {
	s.count(opBackendError)
	if s.opts.logger == nil {
		return
	}
	s.opts.logger.WarnWithContext(ctx, "Ошибка второго уровня кэша",
		interfaces.LogField{Key: "store", Value: s.name},
		interfaces.LogField{Key: "operation", Value: op},
		interfaces.LogField{Key: "key", Value: key},
		interfaces.LogField{Key: "error", Value: err.Error()},
	)
}

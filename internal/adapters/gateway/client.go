// Package gateway клиент удаленного API каталога товаров.
// Один HTTP запрос на операцию, без кэширования и повторов.
package gateway

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/athebyme/gomarket-storefront/pkg/errors"
	"github.com/athebyme/gomarket-storefront/pkg/interfaces"
	"github.com/athebyme/gomarket-storefront/pkg/requestctx"
)

// DefaultTimeout таймаут запроса, если в конфигурации не задан
const DefaultTimeout = 10 * time.Second

// DefaultRequestedWith значение заголовка X-Requested-With
const DefaultRequestedWith = "storefront-gateway"

// Config параметры клиента
type Config struct {
	BaseURL            string
	Timeout            time.Duration
	ForwardCredentials bool
	RequestedWith      string

	// TripThreshold число подряд идущих сетевых ошибок до размыкания, 0 отключает размыкатель
	TripThreshold   int
	CircuitTimeout  time.Duration
	HalfOpenMaxReqs int
}

// Client клиент API каталога
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	cfg     Config
	logger  interfaces.LoggerPort
}

// NewClient создает клиент. BaseURL обязателен.
func NewClient(cfg Config, logger interfaces.LoggerPort) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("не задан адрес API каталога")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestedWith == "" {
		cfg.RequestedWith = DefaultRequestedWith
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-Requested-With", cfg.RequestedWith).
		SetLogger(restyLogger{log: logger})

	c := &Client{
		http:   httpClient,
		cfg:    cfg,
		logger: logger,
	}

	if cfg.TripThreshold > 0 {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "product-api",
			MaxRequests: uint32(max(cfg.HalfOpenMaxReqs, 1)),
			Timeout:     cfg.CircuitTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(cfg.TripThreshold)
			},
			IsSuccessful: func(err error) bool {
				return err == nil || !transportFailure(err)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Изменилось состояние размыкателя",
					interfaces.LogField{Key: "breaker", Value: name},
					interfaces.LogField{Key: "from", Value: from.String()},
					interfaces.LogField{Key: "to", Value: to.String()},
				)
			},
		})
	}

	return c, nil
}

// request описание одного запроса к апстриму
type request struct {
	method string
	path   string
	slug   string
	query  string
	body   interface{}
}

// send выполняет запрос и возвращает разобранный конверт успешного ответа
func (c *Client) send(ctx context.Context, r request) (*envelope, error) {
	if c.breaker == nil {
		return c.do(ctx, r)
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, r)
	})
	if err != nil {
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.NewNetwork(fmt.Errorf("API каталога недоступен: %w", err))
		}
		return nil, err
	}
	return res.(*envelope), nil
}

func (c *Client) do(ctx context.Context, r request) (*envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req := c.http.R().SetContext(ctx)
	c.forwardHeaders(ctx, req)
	if r.slug != "" {
		req.SetPathParam("slug", r.slug)
	}
	if r.query != "" {
		req.SetQueryString(r.query)
	}
	if r.body != nil {
		req.SetBody(r.body)
	}

	resp, err := req.Execute(r.method, r.path)
	if err != nil {
		if isTimeout(err) {
			c.logger.WarnWithContext(ctx, "Таймаут запроса к API каталога",
				interfaces.LogField{Key: "method", Value: r.method},
				interfaces.LogField{Key: "path", Value: r.path},
			)
			return nil, errors.NewTimeout(fmt.Sprintf("Request timed out after %dms", c.cfg.Timeout.Milliseconds()), err)
		}
		return nil, errors.NewNetwork(err)
	}

	env, err := parseEnvelope(resp.Body())
	if err != nil {
		return nil, errors.NewNetwork(fmt.Errorf("некорректный ответ API каталога (HTTP %d): %w", resp.StatusCode(), err))
	}

	if err := interpret(resp.StatusCode(), env); err != nil {
		c.logger.DebugWithContext(ctx, "API каталога вернул ошибку",
			interfaces.LogField{Key: "method", Value: r.method},
			interfaces.LogField{Key: "path", Value: r.path},
			interfaces.LogField{Key: "status", Value: resp.StatusCode()},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
		return nil, err
	}

	return env, nil
}

func (c *Client) forwardHeaders(ctx context.Context, req *resty.Request) {
	h := requestctx.Forwarded(ctx)
	if h == nil {
		return
	}
	if v := h.Get("X-Forwarded-For"); v != "" {
		req.SetHeader("X-Forwarded-For", v)
	}
	if !c.cfg.ForwardCredentials {
		return
	}
	for _, name := range []string{"Cookie", "Authorization"} {
		if v := h.Get(name); v != "" {
			req.SetHeader(name, v)
		}
	}
}

// decodeData извлекает поле data. Отсутствие data у операции, которая его
// обязана вернуть, считается ошибкой апстрима.
func decodeData[T any](env *envelope) (T, error) {
	var out T
	if !env.hasData() {
		return out, errors.NewUpstream(502, "upstream response has no data", nil)
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, errors.NewNetwork(fmt.Errorf("некорректное поле data: %w", err))
	}
	return out, nil
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

// transportFailure ошибки, которые учитывает размыкатель
func transportFailure(err error) bool {
	kind := errors.KindOf(err)
	return kind == errors.KindNetwork || kind == errors.KindTimeout
}

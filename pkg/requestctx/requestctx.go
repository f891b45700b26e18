// Package requestctx хранит в контексте данные входящего HTTP запроса,
// которые нужны логгеру и клиенту апстрима.
package requestctx

import (
	"context"
	"net/http"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	traceIDKey
	forwardedKey
)

// WithRequestID добавляет идентификатор запроса в контекст
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID возвращает идентификатор запроса или пустую строку
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithTraceID добавляет идентификатор трассировки в контекст
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

// TraceID возвращает идентификатор трассировки или пустую строку
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

// ForwardableHeaders заголовки входящего запроса, которые можно передать апстриму
var ForwardableHeaders = []string{"X-Forwarded-For", "Cookie", "Authorization"}

// WithForwarded сохраняет в контексте копию заголовков для проксирования
func WithForwarded(ctx context.Context, h http.Header) context.Context {
	kept := make(http.Header, len(ForwardableHeaders))
	for _, name := range ForwardableHeaders {
		if v := h.Get(name); v != "" {
			kept.Set(name, v)
		}
	}
	return context.WithValue(ctx, forwardedKey, kept)
}

// Forwarded возвращает сохраненные заголовки, nil если их нет
func Forwarded(ctx context.Context) http.Header {
	h, _ := ctx.Value(forwardedKey).(http.Header)
	return h
}

// HasCredentials сообщает, пришли ли с запросом Cookie или Authorization
func HasCredentials(ctx context.Context) bool {
	h := Forwarded(ctx)
	return h.Get("Cookie") != "" || h.Get("Authorization") != ""
}

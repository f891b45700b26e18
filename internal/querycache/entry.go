// Package querycache кэш результатов запросов к каталогу: запись на ключ,
// один запрос в полете на ключ, явная инвалидация.
package querycache

import (
	"context"
	"time"
)

// State состояние записи кэша
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Entry снимок записи кэша. Data заполнено в состоянии Ready, Err в Errored.
// Во время повторной загрузки Data хранит предыдущее значение.
type Entry[T any] struct {
	State     State
	Data      T
	Err       error
	UpdatedAt time.Time
}

// FetchFunc загружает значение для ключа
type FetchFunc[T any] func(ctx context.Context) (T, error)

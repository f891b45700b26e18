package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrCacheMiss возвращается адаптерами кэша, если ключ не найден
var ErrCacheMiss = errors.New("cache miss")

// Kind определяет категорию ошибки при обращении к каталогу
type Kind string

const (
	// KindValidation некорректные входные данные, запрос в апстрим не отправлялся
	KindValidation Kind = "ValidationError"
	// KindNetwork транспортная ошибка, statusCode всегда 0
	KindNetwork Kind = "NetworkError"
	// KindTimeout превышен таймаут запроса к апстриму
	KindTimeout Kind = "Timeout"
	// KindUpstream апстрим вернул не-2xx или конверт с success=false
	KindUpstream Kind = "UpstreamError"
)

// RemoteError единый тип ошибки для всех операций с каталогом
type RemoteError struct {
	Kind       Kind        `json:"error"`
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Details    interface{} `json:"details,omitempty"`

	err error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap возвращает исходную причину ошибки, если она есть
func (e *RemoteError) Unwrap() error {
	return e.err
}

// NewValidation создает ошибку валидации с деталями по полям
func NewValidation(message string, details interface{}) *RemoteError {
	return &RemoteError{
		Kind:       KindValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// NewNetwork создает транспортную ошибку
func NewNetwork(cause error) *RemoteError {
	msg := "network/unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return &RemoteError{Kind: KindNetwork, Message: msg, err: cause}
}

// NewTimeout создает ошибку превышения таймаута
func NewTimeout(message string, cause error) *RemoteError {
	return &RemoteError{Kind: KindTimeout, Message: message, err: cause}
}

// NewUpstream создает ошибку, о которой сообщил сам апстрим
func NewUpstream(statusCode int, message string, details interface{}) *RemoteError {
	return &RemoteError{
		Kind:       KindUpstream,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// KindOf возвращает категорию ошибки или пустую строку для чужих ошибок
func KindOf(err error) Kind {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

// IsKind проверяет категорию ошибки
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsNotFound сообщает, что апстрим ответил 404
func IsNotFound(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Kind == KindUpstream && re.StatusCode == http.StatusNotFound
}

// As и Is реэкспортированы, чтобы пакет можно было импортировать вместо стандартного
var (
	As = errors.As
	Is = errors.Is
)

package gateway

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/athebyme/gomarket-storefront/pkg/errors"
)

// envelope общий конверт ответов апстрима
type envelope struct {
	Success    *bool           `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      json.RawMessage `json:"error"`
	Message    string          `json:"message"`
	StatusCode int             `json:"statusCode"`
	Details    interface{}     `json:"details"`
}

// hasData сообщает, что в конверте есть непустое поле data
func (e *envelope) hasData() bool {
	trimmed := bytes.TrimSpace(e.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// errorText возвращает поле error, если апстрим прислал его строкой
func (e *envelope) errorText() string {
	var s string
	if len(e.Error) > 0 && json.Unmarshal(e.Error, &s) == nil {
		return s
	}
	return ""
}

// failureMessage сообщение для ошибки: message, затем error, затем fallback
func (e *envelope) failureMessage(fallback string) string {
	if e.Message != "" {
		return e.Message
	}
	if s := e.errorText(); s != "" {
		return s
	}
	return fallback
}

// parseEnvelope разбирает тело ответа. Пустое тело считается пустым конвертом.
func parseEnvelope(body []byte) (*envelope, error) {
	env := &envelope{}
	if len(bytes.TrimSpace(body)) == 0 {
		return env, nil
	}
	if err := json.Unmarshal(body, env); err != nil {
		return nil, err
	}
	return env, nil
}

// interpret переводит HTTP статус и конверт в ошибку или nil
func interpret(status int, env *envelope) error {
	if status < 200 || status > 299 {
		code := env.StatusCode
		if code == 0 {
			code = status
		}
		return errors.NewUpstream(code, env.failureMessage(statusText(status)), env.Details)
	}

	if env.Success != nil && !*env.Success {
		// апстрим не всегда присылает statusCode вместе с success=false
		code := env.StatusCode
		if code == 0 {
			code = http.StatusInternalServerError
		}
		return errors.NewUpstream(code, env.failureMessage("Request failed"), env.Details)
	}

	return nil
}

func statusText(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "Upstream error"
}

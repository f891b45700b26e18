package handlers

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/athebyme/gomarket-storefront/pkg/errors"
)

// response конверт успешного ответа
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// errorResponse конверт ответа с ошибкой
type errorResponse struct {
	Success    bool        `json:"success"`
	Error      string      `json:"error"`
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Details    interface{} `json:"details,omitempty"`
}

// route вид маршрута для выбора HTTP статуса ошибки
type route int

const (
	routeDefault route = iota
	// routeLookup карточка и похожие товары: 404 апстрима отдается как 404
	routeLookup
)

// statusFor выбирает HTTP статус: ошибки данных 400, транспорт и прочее 500
func statusFor(err error, rt route) int {
	switch errors.KindOf(err) {
	case errors.KindValidation:
		return http.StatusBadRequest
	case errors.KindUpstream:
		if rt == routeLookup && errors.IsNotFound(err) {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// bodyFor переводит ошибку в тело ответа. Чужие ошибки не раскрываются клиенту.
func bodyFor(err error) errorResponse {
	var re *errors.RemoteError
	if errors.As(err, &re) {
		return errorResponse{
			Error:      string(re.Kind),
			Message:    re.Message,
			StatusCode: re.StatusCode,
			Details:    re.Details,
		}
	}
	return errorResponse{
		Error:      "InternalError",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error, rt route) {
	render.Status(r, statusFor(err, rt))
	render.JSON(w, r, bodyFor(err))
}

func writeData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	render.Status(r, status)
	render.JSON(w, r, response{Success: true, Data: data})
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"todoTracker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodySize = 1 << 20

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// decodeBody читает JSON-тело; при ошибке ответ уже отправлен
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !checkContentType(r, "application/json") {
		responseWithJSON(w, http.StatusUnsupportedMediaType,
			toPayload("error", "UNSUPPORTED_MEDIA_TYPE"),
			toPayload("message", "Content-Type должен быть application/json"),
		)
		return false
	}

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := decoder.Decode(dst); err != nil {
		message := "Некорректное тело запроса"
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			message = "Тело запроса пустое"
		case errors.As(err, &typeErr):
			message = fmt.Sprintf("Поле %s имеет неверный тип", typeErr.Field)
		}
		respondError(w, r, service.NewFieldError("body", message))
		return false
	}
	return true
}

// pathID разбирает идентификатор из пути; при ошибке ответ уже отправлен
func pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil || id == uuid.Nil {
		respondError(w, r, service.NewFieldError(param, "Некорректный идентификатор"))
		return uuid.Nil, false
	}
	return id, true
}

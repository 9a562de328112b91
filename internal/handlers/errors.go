package handlers

import (
	"errors"
	"net/http"
	"todoTracker/internal/logger"
	"todoTracker/internal/middleware"
	"todoTracker/internal/service"

	"go.uber.org/zap"
)

func handleBusinessError(w http.ResponseWriter, r *http.Request, err error) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)
	fields := []zap.Field{
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode),
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("HTTP: Ошибка сервиса", businessErr.Err, fields...)
	} else {
		logger.Warn("HTTP: Бизнес-ошибка", fields...)
	}

	responseWithJSON(w, statusCode,
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
		toPayload("details", businessErr.Details),
	)
	return true
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError отвечает бизнес-ошибкой, остальное скрывается за 500
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	if handleBusinessError(w, r, err) {
		return
	}
	logger.Error("HTTP: Непредвиденная ошибка", err,
		zap.String("request_id", middleware.GetRequestID(r.Context())))
	responseWithJSON(w, http.StatusInternalServerError,
		toPayload("error", service.CodeStore),
		toPayload("message", "Внутренняя ошибка сервера"),
	)
}

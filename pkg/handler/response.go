package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/yumyai/snpseek/logger"
	"github.com/yumyai/snpseek/pkg/middle"
	"github.com/yumyai/snpseek/pkg/model"
	"github.com/yumyai/snpseek/pkg/search"
)

const maxBodyBytes = 8 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", model.ErrInvalidCriteria, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		requestLogger(r).Error("Failed to encode response", zap.Error(err))
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidCriteria):
		return http.StatusBadRequest
	case errors.Is(err, search.ErrReferenceNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and answers with the status it maps to. Client errors
// carry the cause, server errors only msg.
func writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	requestLogger(r).Error(msg,
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	)
	if status < http.StatusInternalServerError {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	http.Error(w, msg, status)
}

func requestLogger(r *http.Request) *zap.Logger {
	return middle.LoggerFrom(r.Context(), logger.Logger())
}

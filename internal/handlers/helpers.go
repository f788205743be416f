package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/coursehive/course-auction/internal/model"
	"github.com/coursehive/course-auction/pkg/config"
)

var requestIDKey = "X-Request-ID"

func writeJson(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to write json response", "status", status, "error", err)
	}
}

func GetUserClaims(ctx context.Context) *config.UserClaims {
	claims, ok := ctx.Value(config.UserClaimKey).(*config.UserClaims)
	if !ok {
		return nil
	}
	return claims
}

func RespondSuccessJSON[T any](w http.ResponseWriter, r *http.Request, status int, message string, data T) {

	// fetch request ID , if not found generate new UUID
	reqID := r.Header.Get(requestIDKey)
	if reqID == "" {
		reqID = uuid.NewString()
	}

	// This ensures the client gets the ID whether they sent it or we created it.
	w.Header().Set(requestIDKey, reqID)

	payload := model.APIResponse[T]{
		Status:  "success",
		Message: message,
		Metadata: model.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: reqID,
		},
		Data:  data,
		Error: nil,
	}
	writeJson(w, status, payload)
}

func RespondErrorJSON(w http.ResponseWriter, r *http.Request, status int, code string, message string, details []model.ErrorDetails) {
	// fetch request ID , if not found generate new UUID
	reqID := r.Header.Get(requestIDKey)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	// This ensures the client gets the ID whether they sent it or we created it.
	w.Header().Set(requestIDKey, reqID)

	payload := model.APIResponse[any]{
		Status: "error",
		Metadata: model.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: reqID,
		},
		Error: &model.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	writeJson(w, status, payload)
}

func validationDetails(err error) []model.ErrorDetails {
	var details []model.ErrorDetails
	if validErrs, ok := err.(validator.ValidationErrors); ok {
		for _, vErr := range validErrs {
			details = append(details, model.ErrorDetails{
				Field: vErr.Field(),
				Issue: fmt.Sprintf("failed on tag '%s' with param '%s'", vErr.Tag(), vErr.Param()),
			})
		}
	}
	return details
}

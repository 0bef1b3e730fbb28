package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain passthrough", NewValidationError("category required", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{"pgx no rows", fmt.Errorf("load ticket: %w", pgx.ErrNoRows), "NOT_FOUND", http.StatusNotFound},
		{"mongo no documents", mongo.ErrNoDocuments, "NOT_FOUND", http.StatusNotFound},
		{"store sentinel", ErrNotFound, "NOT_FOUND", http.StatusNotFound},
		{"version conflict", fmt.Errorf("save: %w", ErrConflict), "CONFLICT", http.StatusConflict},
		{"fiber error", fiber.NewError(http.StatusForbidden, "admin required"), "FORBIDDEN", http.StatusForbidden},
		{"collaborator timeout", fmt.Errorf("load staff: %w", context.DeadlineExceeded), "TIMEOUT", http.StatusGatewayTimeout},
		{"unknown", errors.New("connection reset"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			if de.Code != tt.code || de.HTTPStatus != tt.status {
				t.Errorf("got (%s, %d), want (%s, %d)", de.Code, de.HTTPStatus, tt.code, tt.status)
			}
		})
	}
}

func TestToDomainErrorNil(t *testing.T) {
	if ToDomainError(nil) != nil {
		t.Error("expected nil")
	}
	if MapError(nil) != nil {
		t.Error("expected nil error")
	}
}

func TestInternalErrorKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := MapError(cause)
	if !errors.Is(err, cause) {
		t.Errorf("cause lost: %v", err)
	}
}

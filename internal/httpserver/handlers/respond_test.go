package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrSnakeDoc/manaforge/internal/domain"
	"github.com/MrSnakeDoc/manaforge/internal/logger"
	"github.com/MrSnakeDoc/manaforge/internal/views"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "validation",
			err:      fmt.Errorf("%w: deck name is required", domain.ErrValidation),
			wantCode: http.StatusBadRequest,
			wantMsg:  "validation failed: deck name is required",
		},
		{
			name:     "not found",
			err:      fmt.Errorf("%w: deck 3", domain.ErrNotFound),
			wantCode: http.StatusNotFound,
		},
		{
			name:     "user error over network failure",
			err:      &views.UserError{Message: views.FavoriteFailureMessage, Err: domain.ErrNetwork},
			wantCode: http.StatusBadGateway,
			wantMsg:  views.FavoriteFailureMessage,
		},
		{
			name:     "internal details are hidden",
			err:      errors.New("disk on fire"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, logger.NewNop(), tt.err)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var body errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error == "" {
				t.Fatal("empty error message")
			}
			if tt.wantMsg != "" && body.Error != tt.wantMsg {
				t.Errorf("error = %q, want %q", body.Error, tt.wantMsg)
			}
		})
	}
}

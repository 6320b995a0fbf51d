package internal

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorKindAndStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   string
		wantStatus int
	}{
		{"nil", nil, "", http.StatusOK},
		{"invalid input", fmt.Errorf("%w: bad url", ErrInvalidInput), "invalid_input", http.StatusBadRequest},
		{"retrieval", fmt.Errorf("fetching: %w", fmt.Errorf("%w: gone", ErrRetrieval)), "retrieval", http.StatusBadGateway},
		{"external service", fmt.Errorf("%w: timeout", ErrExternalService), "external_service", http.StatusBadGateway},
		{"resource", fmt.Errorf("%w: disk full", ErrResource), "resource", http.StatusInternalServerError},
		{"unknown", errors.New("boom"), "internal", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorKind(tt.err); got != tt.wantKind {
				t.Errorf("ErrorKind() = %q, want %q", got, tt.wantKind)
			}
			if got := HTTPStatus(tt.err); got != tt.wantStatus {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.wantStatus)
			}
		})
	}
}

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/tasktrack-api/internal/domain"
)

// getPathID extracts a positive task ID from the URL path parameter paramName.
// Missing, non-numeric, zero and negative values all wrap domain.ErrInvalidID.
func getPathID(r *http.Request, paramName string) (int64, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", domain.ErrInvalidID, paramName)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidID, paramName)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", domain.ErrInvalidID, paramName)
	}
	return id, nil
}

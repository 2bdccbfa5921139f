package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/smartfarm/auth-api/internal/models"
	pkghttp "github.com/smartfarm/auth-api/pkg/http"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 100
)

// AuditServiceInterface defines the interface for reading audit entries
type AuditServiceInterface interface {
	List(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}

// AuditHandler handles audit log HTTP requests
type AuditHandler struct {
	service AuditServiceInterface
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service AuditServiceInterface) *AuditHandler {
	return &AuditHandler{service: service}
}

// AuditLogResponse represents an audit log entry in HTTP responses
type AuditLogResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	UserID    *string   `json:"user_id,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditLogListResponse wraps a page of audit entries
type AuditLogListResponse struct {
	Logs   []AuditLogResponse `json:"logs"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// List returns persisted audit entries newest-first with limit/offset
// pagination
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveInt(r.URL.Query().Get("limit"), defaultAuditPageSize)
	if limit > maxAuditPageSize {
		limit = maxAuditPageSize
	}
	offset := parsePositiveInt(r.URL.Query().Get("offset"), 0)

	entries, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "An internal error occurred")
		return
	}

	logs := make([]AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		logs = append(logs, AuditLogResponse{
			ID:        entry.ID,
			Action:    entry.Action,
			UserID:    entry.UserID,
			IPAddress: entry.IPAddress,
			CreatedAt: entry.CreatedAt,
		})
	}

	pkghttp.WriteJSON(w, http.StatusOK, AuditLogListResponse{
		Logs:   logs,
		Limit:  limit,
		Offset: offset,
	})
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

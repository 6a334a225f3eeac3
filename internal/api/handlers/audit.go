package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/resaleops/dealscout/internal/store"
	domain "github.com/resaleops/dealscout/pkg/types"
)

// AuditHandler handles audit trail endpoints.
type AuditHandler struct {
	store store.Store
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(s store.Store) *AuditHandler {
	return &AuditHandler{store: s}
}

// ListAuditInput is the input for listing audit trail entries.
type ListAuditInput struct {
	Limit int `query:"limit" doc:"Number of results (default 100)" minimum:"1" maximum:"1000"`
}

// ListAuditOutput is the response for listing audit trail entries.
type ListAuditOutput struct {
	Body struct {
		Entries []domain.AuditEntry `json:"entries"`
		Total   int                 `json:"total"`
	}
}

// ListAudit returns audit trail entries, newest first.
func (h *AuditHandler) ListAudit(
	ctx context.Context,
	input *ListAuditInput,
) (*ListAuditOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 100
	}

	entries, err := h.store.ListAudit(ctx, limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("audit query failed: " + err.Error())
	}

	resp := &ListAuditOutput{}
	resp.Body.Entries = entries
	resp.Body.Total = len(entries)

	return resp, nil
}

// RegisterAuditRoutes registers audit endpoints with the Huma API.
func RegisterAuditRoutes(api huma.API, h *AuditHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-audit",
		Method:      http.MethodGet,
		Path:        "/api/v1/audit",
		Summary:     "List audit trail entries",
		Description: "Returns pipeline audit trail entries, newest first.",
		Tags:        []string{"audit"},
	}, h.ListAudit)
}

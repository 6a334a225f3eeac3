package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/resaleops/dealscout/internal/store"
	domain "github.com/resaleops/dealscout/pkg/types"
)

// VerdictsHandler handles verdict worklist endpoints.
type VerdictsHandler struct {
	store store.Store
}

// NewVerdictsHandler creates a new VerdictsHandler.
func NewVerdictsHandler(s store.Store) *VerdictsHandler {
	return &VerdictsHandler{store: s}
}

// --- Input/Output types ---

// ListVerdictsInput is the input for listing the ranked verdict worklist.
type ListVerdictsInput struct {
	Limit int `query:"limit" doc:"Number of results (default 50)" minimum:"1" maximum:"500"`
}

// ListVerdictsOutput is the response for listing verdicts.
type ListVerdictsOutput struct {
	Body struct {
		Verdicts []domain.VerdictEntry `json:"verdicts"`
		Total    int                   `json:"total"`
	}
}

// GetVerdictInput is the input for getting a single verdict entry.
type GetVerdictInput struct {
	ID string `path:"id" doc:"Verdict UUID"`
}

// GetVerdictOutput is the response for getting a single verdict entry.
type GetVerdictOutput struct {
	Body domain.VerdictEntry
}

// MarkContactedInput is the input for marking a verdict entry contacted.
type MarkContactedInput struct {
	ID string `path:"id" doc:"Verdict UUID"`
}

// MarkContactedOutput is the response for marking a verdict entry contacted.
type MarkContactedOutput struct {
	Body struct {
		Status string `json:"status" example:"contacted" doc:"New verdict status"`
	}
}

// --- Handlers ---

// ListVerdicts returns the ranked verdict worklist, best deals first.
func (h *VerdictsHandler) ListVerdicts(
	ctx context.Context,
	input *ListVerdictsInput,
) (*ListVerdictsOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 50
	}

	verdicts, err := h.store.ListVerdicts(ctx, limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("verdict query failed: " + err.Error())
	}

	resp := &ListVerdictsOutput{}
	resp.Body.Verdicts = verdicts
	resp.Body.Total = len(verdicts)

	return resp, nil
}

// GetVerdict returns a single verdict entry by ID.
func (h *VerdictsHandler) GetVerdict(
	ctx context.Context,
	input *GetVerdictInput,
) (*GetVerdictOutput, error) {
	verdict, err := h.store.GetVerdict(ctx, input.ID)
	if err != nil {
		return nil, huma.Error404NotFound("verdict not found")
	}

	return &GetVerdictOutput{Body: *verdict}, nil
}

// MarkContacted marks a verdict entry as contacted.
func (h *VerdictsHandler) MarkContacted(
	ctx context.Context,
	input *MarkContactedInput,
) (*MarkContactedOutput, error) {
	err := h.store.SetVerdictStatus(ctx, input.ID, domain.VerdictContacted)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("verdict not found")
		}
		return nil, huma.Error500InternalServerError("status update failed: " + err.Error())
	}

	resp := &MarkContactedOutput{}
	resp.Body.Status = domain.VerdictContacted
	return resp, nil
}

// RegisterVerdictRoutes registers verdict endpoints with the Huma API.
func RegisterVerdictRoutes(api huma.API, h *VerdictsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-verdicts",
		Method:      http.MethodGet,
		Path:        "/api/v1/verdicts",
		Summary:     "List the verdict worklist",
		Description: "Returns the ranked verdict worklist, best deals first.",
		Tags:        []string{"verdicts"},
	}, h.ListVerdicts)

	huma.Register(api, huma.Operation{
		OperationID: "get-verdict",
		Method:      http.MethodGet,
		Path:        "/api/v1/verdicts/{id}",
		Summary:     "Get a verdict by ID",
		Description: "Returns a single verdict entry by its UUID.",
		Tags:        []string{"verdicts"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetVerdict)

	huma.Register(api, huma.Operation{
		OperationID: "mark-verdict-contacted",
		Method:      http.MethodPost,
		Path:        "/api/v1/verdicts/{id}/contacted",
		Summary:     "Mark a verdict contacted",
		Description: "Marks a verdict worklist entry as contacted so collaborators see it is claimed.",
		Tags:        []string{"verdicts"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.MarkContacted)
}

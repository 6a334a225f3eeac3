package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/resaleops/dealscout/internal/engine"
)

// PipelineRunner defines the interface for triggering a pipeline run.
type PipelineRunner interface {
	Run(ctx context.Context) (engine.RunStats, error)
}

// TriggerHandler handles manual pipeline trigger requests.
type TriggerHandler struct {
	runner PipelineRunner
}

// NewTriggerHandler creates a new TriggerHandler.
func NewTriggerHandler(r PipelineRunner) *TriggerHandler {
	return &TriggerHandler{runner: r}
}

// TriggerRunOutput is the response body for the pipeline run endpoint.
type TriggerRunOutput struct {
	Body struct {
		Status      string `json:"status"      example:"run completed" doc:"Run status"`
		Devices     int    `json:"devices"     doc:"Devices processed"`
		Blacklisted int    `json:"blacklisted" doc:"Devices auto-rejected by grading"`
		Matched     int    `json:"matched"     doc:"Devices matched to the pricing catalog"`
		Unmatched   int    `json:"unmatched"   doc:"Devices with no catalog match"`
		HotSellers  int    `json:"hot_sellers" doc:"Sellers flagged hot this run"`
		Repriced    int    `json:"repriced"    doc:"Devices repriced after hot-seller changes"`
		Ranked      int    `json:"ranked"      doc:"Verdict entries produced"`
	}
}

// TriggerRun executes the full decision pipeline once. Runs are mutually
// exclusive; a concurrent trigger blocks until the running one finishes.
func (h *TriggerHandler) TriggerRun(ctx context.Context, _ *struct{}) (*TriggerRunOutput, error) {
	stats, err := h.runner.Run(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("pipeline run failed: " + err.Error())
	}

	resp := &TriggerRunOutput{}
	resp.Body.Status = "run completed"
	resp.Body.Devices = stats.Devices
	resp.Body.Blacklisted = stats.Blacklisted
	resp.Body.Matched = stats.Matched
	resp.Body.Unmatched = stats.Unmatched
	resp.Body.HotSellers = stats.HotSellers
	resp.Body.Repriced = stats.Repriced
	resp.Body.Ranked = stats.Ranked

	return resp, nil
}

// RegisterTriggerRoutes registers pipeline trigger endpoints with the Huma API.
func RegisterTriggerRoutes(api huma.API, h *TriggerHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "trigger-pipeline-run",
		Method:      http.MethodPost,
		Path:        "/api/v1/pipeline/run",
		Summary:     "Trigger a pipeline run",
		Description: "Runs the full decision pipeline: grade, match, price, " +
			"aggregate sellers, and rank verdicts.",
		Tags:   []string{"pipeline"},
		Errors: []int{http.StatusInternalServerError},
	}, h.TriggerRun)
}

package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/resaleops/dealscout/internal/store"
	domain "github.com/resaleops/dealscout/pkg/types"
)

// DevicesHandler handles device query endpoints.
type DevicesHandler struct {
	store store.Store
}

// NewDevicesHandler creates a new DevicesHandler.
func NewDevicesHandler(s store.Store) *DevicesHandler {
	return &DevicesHandler{store: s}
}

// --- Input/Output types ---

// ListDevicesInput is the input for listing devices with optional filters.
type ListDevicesInput struct {
	DealClass string `query:"deal_class" doc:"Filter by deal class"        enum:"NEW,HOT DEAL,SOLID DEAL,MARGINAL,PASS,"`
	Grade     string `query:"grade"      doc:"Filter by final grade"       enum:"A,B+,B,C,D,DOA,BLACKLISTED,"`
	HotSeller bool   `query:"hot_seller" doc:"Only hot-seller devices"`
	Limit     int    `query:"limit"      doc:"Number of results (default 100)" minimum:"1" maximum:"1000"`
	Offset    int    `query:"offset"     doc:"Pagination offset"               minimum:"0"`
	OrderBy   string `query:"order_by"   doc:"Sort field"                  enum:"last_updated,buyback_value,risk_score,"`
}

// ListDevicesOutput is the response for listing devices.
type ListDevicesOutput struct {
	Body struct {
		Devices []domain.DeviceRecord `json:"devices"`
		Total   int                   `json:"total"`
		Limit   int                   `json:"limit"`
		Offset  int                   `json:"offset"`
	}
}

// GetDeviceInput is the input for getting a single device.
type GetDeviceInput struct {
	ID string `path:"id" doc:"Device UUID"`
}

// GetDeviceOutput is the response for getting a single device.
type GetDeviceOutput struct {
	Body domain.DeviceRecord
}

// --- Handlers ---

// ListDevices returns devices with optional filters for deal class, grade,
// hot-seller flag, and pagination.
func (h *DevicesHandler) ListDevices(
	ctx context.Context,
	input *ListDevicesInput,
) (*ListDevicesOutput, error) {
	q := &store.DeviceQuery{
		HotSellerOnly: input.HotSeller,
		Offset:        input.Offset,
		OrderBy:       input.OrderBy,
	}

	if input.DealClass != "" {
		q.DealClass = &input.DealClass
	}

	if input.Grade != "" {
		q.Grade = &input.Grade
	}

	if input.Limit != 0 {
		q.Limit = input.Limit
	}

	devices, total, err := h.store.ListDevices(ctx, q)
	if err != nil {
		return nil, huma.Error500InternalServerError("device query failed: " + err.Error())
	}

	resp := &ListDevicesOutput{}
	resp.Body.Devices = devices
	resp.Body.Total = total
	resp.Body.Limit = q.Limit
	resp.Body.Offset = q.Offset

	return resp, nil
}

// GetDevice returns a single device by ID.
func (h *DevicesHandler) GetDevice(
	ctx context.Context,
	input *GetDeviceInput,
) (*GetDeviceOutput, error) {
	device, err := h.store.GetDevice(ctx, input.ID)
	if err != nil {
		return nil, huma.Error404NotFound("device not found")
	}

	return &GetDeviceOutput{Body: *device}, nil
}

// RegisterDeviceRoutes registers device endpoints with the Huma API.
func RegisterDeviceRoutes(api huma.API, h *DevicesHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-devices",
		Method:      http.MethodGet,
		Path:        "/api/v1/devices",
		Summary:     "List devices",
		Description: "Returns device records with optional filters for deal class, grade, hot-seller flag, and pagination.",
		Tags:        []string{"devices"},
	}, h.ListDevices)

	huma.Register(api, huma.Operation{
		OperationID: "get-device",
		Method:      http.MethodGet,
		Path:        "/api/v1/devices/{id}",
		Summary:     "Get a device by ID",
		Description: "Returns a single device record by its UUID.",
		Tags:        []string{"devices"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetDevice)
}

package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/klinkhq/keyled/internal/indicator"
)

// StatusResponse reports the current indicator state and LED output.
type StatusResponse struct {
	Body struct {
		State   indicator.Snapshot `json:"state" doc:"Current indicator state"`
		LEDMask uint8              `json:"led_mask" doc:"Last color bitmask written to the LEDs (bit0 red, bit1 green, bit2 blue)"`
	}
}

// registerStatusRoutes registers the indicator status endpoint.
func (s *Server) registerStatusRoutes() {
	if s.options.Indicator == nil {
		s.logger.Debug("Indicator manager not available, skipping status route")
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Indicator Status",
		Description: "Get the current indicator state and the last LED color written",
		Tags:        []string{"status"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*StatusResponse, error) {
		resp := &StatusResponse{}
		resp.Body.State = s.options.Indicator.State()
		if s.options.Driver != nil {
			resp.Body.LEDMask = s.options.Driver.Last()
		}
		return resp, nil
	})
}

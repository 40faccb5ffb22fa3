package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/klinkhq/keyled/internal/indicator"
)

// IdentifyRequest asks the scheduler to blink the LEDs white so a keyboard
// can be located among several.
type IdentifyRequest struct {
	Body struct {
		OnMs  int   `json:"on_ms,omitempty" minimum:"0" maximum:"5000" default:"200" doc:"On time per blink in milliseconds"`
		OffMs int   `json:"off_ms,omitempty" minimum:"0" maximum:"5000" default:"200" doc:"Off time per blink in milliseconds"`
		Count uint8 `json:"count,omitempty" minimum:"0" maximum:"50" default:"3" doc:"Number of blinks"`
	}
}

// IdentifyResponse reports the queued blink request.
type IdentifyResponse struct {
	Body struct {
		Queued int `json:"queued" doc:"Number of blink requests now pending"`
	}
}

// registerIdentifyRoutes registers the identify blink endpoint.
func (s *Server) registerIdentifyRoutes() {
	if s.options.Indicator == nil {
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "identify",
		Method:      http.MethodPost,
		Path:        "/api/identify",
		Summary:     "Identify",
		Description: "Queue a white blink sequence to visually locate the keyboard",
		Tags:        []string{"leds"},
		Errors:      []int{401, 409},
		Security:    withAuth(),
	}, func(ctx context.Context, input *IdentifyRequest) (*IdentifyResponse, error) {
		item := indicator.BlinkItem{
			Duration: time.Duration(input.Body.OnMs) * time.Millisecond,
			Sleep:    time.Duration(input.Body.OffMs) * time.Millisecond,
			Count:    input.Body.Count,
		}

		if err := s.options.Indicator.Identify(item); err != nil {
			if errors.Is(err, indicator.ErrQueueFull) {
				return nil, huma.Error409Conflict("Blink queue is full", err)
			}
			return nil, huma.Error500InternalServerError("Failed to queue blink", err)
		}

		resp := &IdentifyResponse{}
		resp.Body.Queued = s.options.Indicator.QueueLen()
		return resp, nil
	})
}

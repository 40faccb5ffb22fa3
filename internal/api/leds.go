package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/klinkhq/keyled/internal/led"
)

// LEDRequest is a request to switch one LED channel.
type LEDRequest struct {
	Body struct {
		Channel string `json:"channel" enum:"red,green,blue" example:"red" doc:"LED channel to switch"`
		Enabled bool   `json:"enabled" example:"true" doc:"Whether the LED should be on or off"`
	}
}

// LEDCapabilitiesResponse lists the LED devices backing each channel.
type LEDCapabilitiesResponse struct {
	Body struct {
		Channels []string `json:"channels" doc:"LED channel names in bit order"`
		Devices  []string `json:"devices" doc:"Backing LED device for each channel, empty when unavailable"`
	}
}

func channelIndex(name string) (int, bool) {
	switch name {
	case "red":
		return led.ChannelRed, true
	case "green":
		return led.ChannelGreen, true
	case "blue":
		return led.ChannelBlue, true
	}
	return 0, false
}

// registerLEDRoutes registers direct LED control endpoints.
func (s *Server) registerLEDRoutes() {
	if s.options.Controller == nil {
		s.logger.Debug("LED controller not available, skipping LED routes")
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "control-led",
		Method:      http.MethodPost,
		Path:        "/api/leds",
		Summary:     "Control LED",
		Description: "Switch a single LED channel on or off, bypassing the pattern scheduler",
		Tags:        []string{"leds"},
		Errors:      []int{400, 401, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, input *LEDRequest) (*struct{}, error) {
		channel, ok := channelIndex(input.Body.Channel)
		if !ok {
			return nil, huma.Error400BadRequest("Unknown LED channel: " + input.Body.Channel)
		}

		if err := s.options.Controller.Set(channel, input.Body.Enabled); err != nil {
			return nil, huma.Error500InternalServerError("Failed to control LED", err)
		}

		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-led-capabilities",
		Method:      http.MethodGet,
		Path:        "/api/leds/capabilities",
		Summary:     "Get LED Capabilities",
		Description: "List the LED channels and the sysfs devices backing them",
		Tags:        []string{"leds"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*LEDCapabilitiesResponse, error) {
		resp := &LEDCapabilitiesResponse{}
		resp.Body.Channels = []string{"red", "green", "blue"}
		resp.Body.Devices = s.options.Controller.Available()
		return resp, nil
	})

	s.logger.Info("LED routes registered")
}

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/lightnode/internal/hal"
)

// LightStatus is the externally visible state of one logical light.
type LightStatus struct {
	Name       string `json:"name" example:"notifications" doc:"Logical light name"`
	Color      string `json:"color" example:"ff00ff00" doc:"Current ARGB color in hex"`
	Brightness int    `json:"brightness" example:"149" doc:"Luminance derived from color, 0-255"`
	Lit        bool   `json:"lit" doc:"Whether the RGB portion of the color is nonzero"`
	Flash      string `json:"flash" example:"none" doc:"Flash mode: none or timed"`
	FlashOnMS  int    `json:"flash_on_ms,omitempty" doc:"Flash on duration in milliseconds"`
	FlashOffMS int    `json:"flash_off_ms,omitempty" doc:"Flash off duration in milliseconds"`
}

// ListLightsOutput is the response for listing lights.
type ListLightsOutput struct {
	Body struct {
		Lights []LightStatus `json:"lights"`
	}
}

// SetLightInput sets the state of one light.
type SetLightInput struct {
	Name string `path:"name" example:"backlight" doc:"Logical light name"`
	Body struct {
		Color      string `json:"color" example:"ffff0000" doc:"ARGB color in hex, with or without leading #"`
		Flash      string `json:"flash,omitempty" enum:"none,timed" doc:"Flash mode"`
		FlashOnMS  int    `json:"flash_on_ms,omitempty" minimum:"0" doc:"Flash on duration in milliseconds"`
		FlashOffMS int    `json:"flash_off_ms,omitempty" minimum:"0" doc:"Flash off duration in milliseconds"`
	}
}

// SetLightOutput is the response after setting a light.
type SetLightOutput struct {
	Body LightStatus
}

func (s *Server) registerLightRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-lights",
		Method:      http.MethodGet,
		Path:        "/api/lights",
		Summary:     "List lights",
		Description: "Returns the last requested state of every logical light.",
		Tags:        []string{"Lights"},
		Security:    withAuth(),
	}, s.handleListLights)

	huma.Register(s.api, huma.Operation{
		OperationID: "set-light",
		Method:      http.MethodPost,
		Path:        "/api/lights/{name}",
		Summary:     "Set light state",
		Description: "Applies a color and flash pattern to one logical light.",
		Tags:        []string{"Lights"},
		Security:    withAuth(),
	}, s.handleSetLight)
}

func (s *Server) handleListLights(_ context.Context, _ *struct{}) (*ListLightsOutput, error) {
	battery, notification, backlight := s.options.HAL.Snapshot()

	resp := &ListLightsOutput{}
	for _, kind := range hal.Kinds() {
		var st hal.State
		switch kind {
		case hal.Backlight:
			if backlight >= 0 {
				b := uint32(backlight)
				st.Color = 0xff000000 | b<<16 | b<<8 | b
			}
		case hal.Battery:
			st = battery
		case hal.Notifications:
			st = notification
		}
		resp.Body.Lights = append(resp.Body.Lights, lightStatus(kind, st))
	}
	return resp, nil
}

func (s *Server) handleSetLight(_ context.Context, input *SetLightInput) (*SetLightOutput, error) {
	color, err := parseColor(input.Body.Color)
	if err != nil {
		return nil, huma.Error400BadRequest(fmt.Sprintf("invalid color %q", input.Body.Color), err)
	}

	state := hal.State{
		Color:      color,
		Flash:      hal.ParseFlashMode(input.Body.Flash),
		FlashOnMS:  input.Body.FlashOnMS,
		FlashOffMS: input.Body.FlashOffMS,
	}

	device, err := s.options.HAL.Open(input.Name)
	if err != nil {
		if errors.Is(err, hal.ErrUnknownLight) {
			return nil, huma.Error400BadRequest(fmt.Sprintf("unknown light %q", input.Name))
		}
		return nil, huma.Error500InternalServerError("failed to open light", err)
	}
	defer device.Close()

	if err := device.Set(state); err != nil {
		return nil, huma.Error500InternalServerError("failed to set light", err)
	}

	return &SetLightOutput{Body: lightStatus(device.Kind(), state)}, nil
}

func lightStatus(kind hal.Kind, st hal.State) LightStatus {
	return LightStatus{
		Name:       kind.String(),
		Color:      st.ColorHex(),
		Brightness: st.Brightness(),
		Lit:        st.Lit(),
		Flash:      st.Flash.String(),
		FlashOnMS:  st.FlashOnMS,
		FlashOffMS: st.FlashOffMS,
	}
}

func parseColor(raw string) (uint32, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(raw, "#"), "0x")
	if trimmed == "" {
		return 0, fmt.Errorf("empty color")
	}
	v, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/lightnode/internal/version"
)

// HealthOutput reports service liveness.
type HealthOutput struct {
	Body struct {
		Status  string `json:"status" example:"ok" doc:"Health status"`
		Message string `json:"message" example:"API is healthy" doc:"Status message"`
	}
}

// VersionOutput carries build metadata.
type VersionOutput struct {
	Body version.Info
}

func (s *Server) registerSystemRoutes() {
	// Health check endpoint - no auth required
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health status",
		Tags:        []string{"health"},
		Security:    []map[string][]string{},
	}, func(_ context.Context, _ *struct{}) (*HealthOutput, error) {
		resp := &HealthOutput{}
		resp.Body.Status = "ok"
		resp.Body.Message = "API is healthy"
		return resp, nil
	})

	// Version endpoint - no auth required
	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"health"},
		Security:    []map[string][]string{},
	}, func(_ context.Context, _ *struct{}) (*VersionOutput, error) {
		return &VersionOutput{Body: version.Get()}, nil
	})
}

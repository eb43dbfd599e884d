package handlers

import (
	"net/http"

	"deepdive/interview/internal/config"
	"deepdive/interview/internal/gateway"
	"deepdive/interview/internal/prompts"
	"deepdive/interview/internal/utils"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "degraded" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"`  // "ready" | "not_ready"
	Service string                    `json:"service"` // Service name
	Checks  map[string]ReadinessCheck `json:"checks"`  // Individual check results
}

type HealthHandler struct {
	gateway       *gateway.Gateway
	promptBuilder prompts.Builder
	config        *config.Config
}

func NewHealthHandler(gw *gateway.Gateway, builder prompts.Builder, cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		gateway:       gw,
		promptBuilder: builder,
		config:        cfg,
	}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "interview",
		"version": "1.0.0",
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)
	allChecksPass := true

	// The gateway running degraded is not fatal: classifiers fall back to
	// deterministic defaults. Report it without failing readiness.
	if handler.gateway == nil {
		checks["gateway"] = ReadinessCheck{
			Status:  "failed",
			Message: "Generation gateway not initialized",
		}
		allChecksPass = false
	} else if handler.gateway.Degraded() {
		checks["gateway"] = ReadinessCheck{
			Status:  "degraded",
			Message: "Generation backend unavailable, deterministic fallbacks active",
		}
	} else {
		checks["gateway"] = ReadinessCheck{
			Status: "ok",
		}
	}

	// verify prompt templates loaded
	if handler.promptBuilder == nil {
		checks["prompt_builder"] = ReadinessCheck{
			Status:  "failed",
			Message: "Prompt builder not initialized",
		}
		allChecksPass = false
	} else if len(handler.promptBuilder.Modes()) == 0 {
		checks["prompt_builder"] = ReadinessCheck{
			Status:  "failed",
			Message: "No prompt templates loaded",
		}
		allChecksPass = false
	} else {
		checks["prompt_builder"] = ReadinessCheck{
			Status: "ok",
		}
	}

	// verify configuration is valid
	if handler.config == nil {
		checks["configuration"] = ReadinessCheck{
			Status:  "failed",
			Message: "Configuration not loaded",
		}
		allChecksPass = false
	} else {
		checks["configuration"] = ReadinessCheck{
			Status: "ok",
		}
	}

	response := ReadinessResponse{
		Service: "interview",
		Checks:  checks,
	}

	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}

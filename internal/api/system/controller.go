package system

import (
	"context"
	"net/http"
	"time"

	"github.com/hbomb79/Siphon/internal/api"
	"github.com/hbomb79/Siphon/internal/tools"
	"github.com/labstack/echo/v4"
)

type (
	welcomeDto struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}

	healthDto struct {
		Status          string                  `json:"status"`
		Message         string                  `json:"message"`
		UptimeSecs      float64                 `json:"uptime_secs"`
		Tools           map[string]tools.Status `json:"tools"`
		AllToolsPresent bool                    `json:"all_tools_present"`
	}

	ToolChecker interface {
		CheckAll(context.Context) map[string]tools.Status
	}

	// Controller handles the service-level routes: the welcome banner
	// and the live health report.
	Controller struct {
		checker   ToolChecker
		startedAt time.Time
	}
)

func New(checker ToolChecker) *Controller {
	return &Controller{checker: checker, startedAt: time.Now()}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.GET("/", controller.welcome)
	eg.GET("/health", controller.health)
}

func (controller *Controller) welcome(ec echo.Context) error {
	return api.Respond(ec, api.JsonResponse(welcomeDto{
		Status:  "OK",
		Message: "Welcome to Siphon, the YouTube download and conversion service.",
	}))
}

// health re-runs the tool checks on every request; the report is always
// live, never cached. A missing tool degrades the report and the
// response status.
func (controller *Controller) health(ec echo.Context) error {
	statuses := controller.checker.CheckAll(ec.Request().Context())

	allPresent := true
	for _, status := range statuses {
		if !status.Present {
			allPresent = false
			break
		}
	}

	report := healthDto{
		Status:          "healthy",
		Message:         "All required tools are present.",
		UptimeSecs:      time.Since(controller.startedAt).Seconds(),
		Tools:           statuses,
		AllToolsPresent: allPresent,
	}

	httpStatus := http.StatusOK
	if !allPresent {
		report.Status = "degraded"
		report.Message = "One or more required tools are missing or not runnable."
		httpStatus = http.StatusServiceUnavailable
	}

	return api.Respond(ec, api.JsonStatusResponse(httpStatus, report))
}

package gateway

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/hbomb79/Siphon/internal/api/downloads"
	"github.com/hbomb79/Siphon/internal/api/system"
	"github.com/hbomb79/Siphon/internal/api/videos"
	"github.com/hbomb79/Siphon/internal/database"
	"github.com/hbomb79/Siphon/internal/download"
	"github.com/hbomb79/Siphon/internal/tools"
	"github.com/hbomb79/Siphon/internal/youtube"
	"github.com/hbomb79/Siphon/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var log = logger.Get("API")

type (
	RestConfig struct {
		Host string `yaml:"host" env:"HOST" env-default:"0.0.0.0" validate:"required"`
		Port string `yaml:"port" env:"PORT" env-default:"5000" validate:"required,numeric"`
	}

	controller interface {
		SetRoutes(*echo.Group)
	}

	// The RestGateway is a thin-wrapper around the Echo HTTP router. It's sole
	// responsbility is to create the routes Siphon exposes and to funnel every
	// response, including router-level errors, through one serialisation shape.
	RestGateway struct {
		config              *RestConfig
		ec                  *echo.Echo
		systemController    controller
		videosController    controller
		downloadsController controller
	}
)

// HostAddr joins the configured host and port into a listen address.
func (config *RestConfig) HostAddr() string {
	return net.JoinHostPort(config.Host, config.Port)
}

// NewRestGateway constructs the Echo router and populates it with all the
// routes defined by the various controllers.
func NewRestGateway(
	config *RestConfig,
	checker *tools.Checker,
	metadataService *youtube.MetadataService,
	thumbnailService *youtube.ThumbnailService,
	downloadService *youtube.DownloadService,
	db database.Manager,
	store *download.Store,
) *RestGateway {
	ec := echo.New()
	ec.OnAddRouteHandler = func(host string, route echo.Route, handler echo.HandlerFunc, middleware []echo.MiddlewareFunc) {
		log.Emit(logger.DEBUG, "Registered new route %s %s\n", route.Method, route.Path)
	}
	ec.HidePort = true
	ec.HideBanner = true
	ec.HTTPErrorHandler = routerErrorHandler

	gateway := &RestGateway{
		config:              config,
		ec:                  ec,
		systemController:    system.New(checker),
		videosController:    videos.New(metadataService, thumbnailService),
		downloadsController: downloads.New(downloadService, db, store),
	}

	ec.Use(middleware.Logger())
	ec.Use(middleware.Recover())
	ec.Pre(middleware.RemoveTrailingSlash())

	gateway.systemController.SetRoutes(ec.Group(""))
	gateway.videosController.SetRoutes(ec.Group(""))
	gateway.downloadsController.SetRoutes(ec.Group(""))

	return gateway
}

func (gateway *RestGateway) Run(parentCtx context.Context) error {
	ctx, ctxCancel := context.WithCancelCause(parentCtx)
	wg := &sync.WaitGroup{}

	// Start echo router
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := gateway.ec.Start(gateway.config.HostAddr()); err != nil {
			ctxCancel(err)
		}
	}()

	// Start thread to listen for context cancellation
	go func(ec *echo.Echo) {
		<-ctx.Done()
		ec.Close()
	}(gateway.ec)

	wg.Wait()

	// Return cancellation cause if any, otherwise nil as parent context
	// cancellation is not an error case we should report.
	if cause := context.Cause(ctx); cause != ctx.Err() {
		return cause
	}

	return nil
}

// routerErrorHandler writes errors that never reached a handler (unknown
// paths, method mismatches, panics surfaced by the recover middleware) in
// the fixed '{"error": ...}' shape. Unknown paths always serialise as
// exactly {"error":"Not found"}.
func routerErrorHandler(err error, ec echo.Context) {
	if ec.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"

	var httpError *echo.HTTPError
	if errors.As(err, &httpError) {
		status = httpError.Code
		if text, ok := httpError.Message.(string); ok {
			message = text
		} else {
			message = http.StatusText(status)
		}
	}

	if status == http.StatusNotFound {
		message = "Not found"
	}

	if writeErr := ec.JSON(status, map[string]string{"error": message}); writeErr != nil {
		log.Errorf("Failed to write router error response: %v\n", writeErr)
	}
}

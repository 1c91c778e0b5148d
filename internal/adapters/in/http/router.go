package http

import (
	"log/slog"
	"net/http"

	"exportdocs/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// MaxUploadSize bounds item image uploads.
const MaxUploadSize = "10M"

// NewRouter builds the echo instance with every route of the API mounted.
// Everything under /api requires basic auth; tracking is public.
func NewRouter(s *Server, contract *Contract, auth authenticator, m *metrics.Metrics, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(Metrics(m))
	e.Use(RequestLogger(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	contract.RegisterSwagger()
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	validated := contract.ValidationMiddleware()

	e.GET("/track/:waybill", s.TrackShipment, validated)

	api := e.Group("/api", BasicAuth(auth, logger), validated)
	api.GET("/shipments", s.ListShipments)
	api.POST("/shipments", s.CreateShipment)
	api.GET("/shipments/:id", s.GetShipment)
	api.PUT("/shipments/:id", s.AmendShipment)
	api.DELETE("/shipments/:id", s.PurgeShipment)
	api.POST("/shipments/:id/status", s.RequestTransition)
	api.GET("/shipments/:id/history", s.GetStatusHistory)
	api.POST("/shipments/:id/items/:itemId/image", s.AttachItemImage, middleware.BodyLimit(MaxUploadSize))
	api.POST("/shipments/:id/qrcode", s.GenerateQRCode)
	api.GET("/files/:fileId", s.FetchFile)
	api.GET("/waybills/next", s.NextWaybillNumber)
	api.GET("/contacts", s.ListContacts)
	api.GET("/users", s.ListUsers)
	api.POST("/users", s.CreateUser)
	api.POST("/users/:id/password", s.ResetUserPassword)
	api.DELETE("/users/:id", s.DeleteUser)
	api.POST("/me/password", s.ChangePassword)

	return e
}

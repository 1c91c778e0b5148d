// Package http exposes the shipment use cases over a JSON API served by echo.
package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"exportdocs/internal/core/application/usecases/commands"
	"exportdocs/internal/core/application/usecases/queries"
	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/core/domain/model/user"
	"exportdocs/internal/core/ports"
	"exportdocs/internal/pkg/errs"
	"exportdocs/internal/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// Use case ports of the server. The command and query handlers satisfy them.
type (
	ShipmentCreator interface {
		Handle(ctx context.Context, cmd commands.CreateShipmentCommand) (*shipment.Shipment, error)
	}
	ShipmentAmender interface {
		Handle(ctx context.Context, cmd commands.AmendShipmentCommand) (*shipment.Shipment, error)
	}
	ShipmentPurger interface {
		Handle(ctx context.Context, cmd commands.PurgeShipmentCommand) error
	}
	TransitionRequester interface {
		Handle(ctx context.Context, cmd commands.RequestTransitionCommand) (commands.RequestTransitionResult, error)
	}
	ItemImageAttacher interface {
		Handle(ctx context.Context, cmd commands.AttachItemImageCommand) (shipment.ImageRef, error)
	}
	QRCodeGenerator interface {
		Handle(ctx context.Context, cmd commands.GenerateQRCodeCommand) (shipment.ImageRef, error)
	}
	ShipmentReader interface {
		Handle(ctx context.Context, query queries.GetShipmentQuery) (queries.ShipmentView, error)
	}
	ShipmentLister interface {
		Handle(ctx context.Context, query queries.ListShipmentsQuery) (queries.ShipmentPage, error)
	}
	HistoryReader interface {
		Handle(ctx context.Context, query queries.GetStatusHistoryQuery) (queries.StatusHistoryView, error)
	}
	ShipmentTracker interface {
		Handle(ctx context.Context, query queries.TrackShipmentQuery) (queries.TrackingView, error)
	}
	WaybillPreviewer interface {
		Handle(ctx context.Context, query queries.NextWaybillNumberQuery) (string, error)
	}
	UserCreator interface {
		Handle(ctx context.Context, cmd commands.CreateUserCommand) (*user.User, error)
	}
	PasswordResetter interface {
		Handle(ctx context.Context, cmd commands.ResetUserPasswordCommand) error
	}
	UserDeleter interface {
		Handle(ctx context.Context, cmd commands.DeleteUserCommand) error
	}
	PasswordChanger interface {
		Handle(ctx context.Context, cmd commands.ChangePasswordCommand) error
	}
	UserLister interface {
		Handle(ctx context.Context, query queries.ListUsersQuery) ([]queries.UserSummary, error)
	}
	ContactLister interface {
		Handle(ctx context.Context, query queries.ListContactsQuery) (queries.ContactPage, error)
	}
)

// Handlers groups the use cases the server dispatches to.
type Handlers struct {
	CreateShipment    ShipmentCreator
	AmendShipment     ShipmentAmender
	PurgeShipment     ShipmentPurger
	RequestTransition TransitionRequester
	AttachItemImage   ItemImageAttacher
	GenerateQRCode    QRCodeGenerator
	GetShipment       ShipmentReader
	ListShipments     ShipmentLister
	GetStatusHistory  HistoryReader
	TrackShipment     ShipmentTracker
	NextWaybillNumber WaybillPreviewer
	CreateUser        UserCreator
	ResetPassword     PasswordResetter
	DeleteUser        UserDeleter
	ChangePassword    PasswordChanger
	ListUsers         UserLister
	ListContacts      ContactLister
}

// Server translates HTTP requests into commands and queries.
type Server struct {
	handlers Handlers
	files    ports.ImageStorage
	metrics  *metrics.Metrics
	validate *validator.Validate
	logger   *slog.Logger
}

func NewServer(handlers Handlers, files ports.ImageStorage, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		handlers: handlers,
		files:    files,
		metrics:  m,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("component", "http"),
	}
}

// CreateShipment handles POST /api/shipments.
func (s *Server) CreateShipment(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := s.actor(c)
	if err != nil {
		return err
	}

	var req CreateShipmentRequest
	if err = s.bind(c, &req); err != nil {
		return s.writeError(c, "create shipment", err)
	}

	details, err := req.details()
	if err != nil {
		return s.writeError(c, "create shipment", err)
	}
	items, err := req.items()
	if err != nil {
		return s.writeError(c, "create shipment", err)
	}

	cmd, err := commands.NewCreateShipmentCommand(kernel.NewUUID(), actor, details, items, req.Draft)
	if err != nil {
		return s.writeError(c, "create shipment", err)
	}
	created, err := s.handlers.CreateShipment.Handle(ctx, cmd)
	if err != nil {
		return s.writeError(c, "create shipment", err)
	}

	return s.respondWithShipment(c, http.StatusCreated, created.ID())
}

// ListShipments handles GET /api/shipments.
func (s *Server) ListShipments(c echo.Context) error {
	var page, perPage *int
	var status, search *string

	params := c.QueryParams()
	if err := errors.Join(
		runtime.BindQueryParameter("form", true, false, "page", params, &page),
		runtime.BindQueryParameter("form", true, false, "per_page", params, &perPage),
		runtime.BindQueryParameter("form", true, false, "status", params, &status),
		runtime.BindQueryParameter("form", true, false, "q", params, &search),
	); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Code: http.StatusBadRequest, Message: err.Error()})
	}

	query, err := queries.NewListShipmentsQuery(
		valueOr(page, 1), valueOr(perPage, queries.DefaultPerPage), valueOr(status, ""), valueOr(search, ""))
	if err != nil {
		return s.writeError(c, "list shipments", err)
	}
	result, err := s.handlers.ListShipments.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, "list shipments", err)
	}
	return c.JSON(http.StatusOK, shipmentPageResponse(result))
}

// GetShipment handles GET /api/shipments/{id}.
func (s *Server) GetShipment(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return s.writeError(c, "get shipment", err)
	}
	return s.respondWithShipment(c, http.StatusOK, id)
}

// AmendShipment handles PUT /api/shipments/{id}.
func (s *Server) AmendShipment(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := s.actor(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return s.writeError(c, "amend shipment", err)
	}

	var req AmendShipmentRequest
	if err = s.bind(c, &req); err != nil {
		return s.writeError(c, "amend shipment", err)
	}
	details, err := req.details()
	if err != nil {
		return s.writeError(c, "amend shipment", err)
	}
	items, err := req.items()
	if err != nil {
		return s.writeError(c, "amend shipment", err)
	}

	cmd, err := commands.NewAmendShipmentCommand(id, actor, details, items, req.Version)
	if err != nil {
		return s.writeError(c, "amend shipment", err)
	}
	if _, err = s.handlers.AmendShipment.Handle(ctx, cmd); err != nil {
		return s.writeError(c, "amend shipment", err)
	}

	return s.respondWithShipment(c, http.StatusOK, id)
}

// PurgeShipment handles DELETE /api/shipments/{id}.
func (s *Server) PurgeShipment(c echo.Context) error {
	actor, err := s.actor(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return s.writeError(c, "purge shipment", err)
	}

	cmd, err := commands.NewPurgeShipmentCommand(id, actor)
	if err != nil {
		return s.writeError(c, "purge shipment", err)
	}
	if err = s.handlers.PurgeShipment.Handle(c.Request().Context(), cmd); err != nil {
		return s.writeError(c, "purge shipment", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RequestTransition handles POST /api/shipments/{id}/status.
func (s *Server) RequestTransition(c echo.Context) error {
	actor, err := s.actor(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return s.writeError(c, "request transition", err)
	}

	var req TransitionRequest
	if err = s.bind(c, &req); err != nil {
		return s.writeError(c, "request transition", err)
	}
	target, err := shipment.ParseStatus(req.Status)
	if err != nil {
		return s.writeError(c, "request transition", err)
	}

	cmd, err := commands.NewRequestTransitionCommand(id, target, actor)
	if err != nil {
		return s.writeError(c, "request transition", err)
	}
	result, err := s.handlers.RequestTransition.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, "request transition", err)
	}

	return c.JSON(http.StatusOK, TransitionResponse{
		ShipmentID:    result.ShipmentID.Bytes(),
		WaybillNumber: result.Waybill,
		OldStatus:     result.OldStatus.String(),
		NewStatus:     result.NewStatus.String(),
		ChangedAt:     result.ChangedAt,
		Version:       result.Version,
	})
}

// GetStatusHistory handles GET /api/shipments/{id}/history.
func (s *Server) GetStatusHistory(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return s.writeError(c, "status history", err)
	}
	query, err := queries.NewGetStatusHistoryQuery(id)
	if err != nil {
		return s.writeError(c, "status history", err)
	}
	view, err := s.handlers.GetStatusHistory.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, "status history", err)
	}
	if !view.Consistent {
		s.logger.WarnContext(c.Request().Context(), "status history does not replay",
			slog.String("shipment_id", id.String()))
	}
	return c.JSON(http.StatusOK, historyResponse(view))
}

// AttachItemImage handles POST /api/shipments/{id}/items/{itemId}/image.
// The image is sent as the "image" part of a multipart form.
func (s *Server) AttachItemImage(c echo.Context) error {
	shipmentID, err := pathUUID(c, "id")
	if err != nil {
		return s.writeError(c, "attach image", err)
	}
	itemID, err := pathUUID(c, "itemId")
	if err != nil {
		return s.writeError(c, "attach image", err)
	}

	header, err := c.FormFile("image")
	if err != nil {
		return s.writeError(c, "attach image", errs.NewValueIsRequiredErrorWithCause("image", err))
	}
	file, err := header.Open()
	if err != nil {
		return s.writeError(c, "attach image", err)
	}
	defer file.Close()

	contentType := header.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		sniff := make([]byte, 512)
		n, _ := file.Read(sniff)
		contentType = http.DetectContentType(sniff[:n])
		if _, err = file.Seek(0, io.SeekStart); err != nil {
			return s.writeError(c, "attach image", err)
		}
	}

	cmd, err := commands.NewAttachItemImageCommand(shipmentID, itemID, header.Filename, contentType, file)
	if err != nil {
		return s.writeError(c, "attach image", err)
	}
	ref, err := s.handlers.AttachItemImage.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, "attach image", err)
	}

	return c.JSON(http.StatusCreated, FileResponse{FileID: ref.FileID(), Filename: ref.Filename(), URL: fileURL(ref.FileID())})
}

// GenerateQRCode handles POST /api/shipments/{id}/qrcode. An existing code
// is replaced.
func (s *Server) GenerateQRCode(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return s.writeError(c, "generate qr code", err)
	}
	cmd, err := commands.NewGenerateQRCodeCommand(id, true)
	if err != nil {
		return s.writeError(c, "generate qr code", err)
	}
	ref, err := s.handlers.GenerateQRCode.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, "generate qr code", err)
	}
	if s.metrics != nil {
		s.metrics.QRCodeGenerated("request")
	}

	return c.JSON(http.StatusCreated, FileResponse{FileID: ref.FileID(), Filename: ref.Filename(), URL: fileURL(ref.FileID())})
}

// FetchFile handles GET /api/files/{fileId}.
func (s *Server) FetchFile(c echo.Context) error {
	var buf bytes.Buffer
	info, err := s.files.Fetch(c.Request().Context(), c.Param("fileId"), &buf)
	if err != nil {
		return s.writeError(c, "fetch file", err)
	}

	disposition := "attachment"
	if commands.IsAllowedImageType(info.ContentType) {
		disposition = "inline"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("%s; filename=%q", disposition, info.Filename))
	c.Response().Header().Set(echo.HeaderXContentTypeOptions, "nosniff")
	c.Response().Header().Set("Cache-Control", "private, max-age=86400")
	return c.Blob(http.StatusOK, info.ContentType, buf.Bytes())
}

// NextWaybillNumber handles GET /api/waybills/next.
func (s *Server) NextWaybillNumber(c echo.Context) error {
	next, err := s.handlers.NextWaybillNumber.Handle(c.Request().Context(), queries.NewNextWaybillNumberQuery())
	if err != nil {
		return s.writeError(c, "next waybill", err)
	}
	return c.JSON(http.StatusOK, NextWaybillResponse{WaybillNumber: next})
}

// TrackShipment handles GET /track/{waybill}. It needs no credentials.
func (s *Server) TrackShipment(c echo.Context) error {
	query, err := queries.NewTrackShipmentQuery(c.Param("waybill"))
	if err != nil {
		return s.writeError(c, "track shipment", err)
	}
	view, err := s.handlers.TrackShipment.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, "track shipment", err)
	}
	return c.JSON(http.StatusOK, trackingResponse(view))
}

// ListContacts handles GET /api/contacts.
func (s *Server) ListContacts(c echo.Context) error {
	var page, perPage *int
	var kind *string

	params := c.QueryParams()
	if err := errors.Join(
		runtime.BindQueryParameter("form", true, false, "type", params, &kind),
		runtime.BindQueryParameter("form", true, false, "page", params, &page),
		runtime.BindQueryParameter("form", true, false, "per_page", params, &perPage),
	); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Code: http.StatusBadRequest, Message: err.Error()})
	}

	query, err := queries.NewListContactsQuery(
		valueOr(kind, ""), valueOr(page, 1), valueOr(perPage, queries.DefaultPerPage))
	if err != nil {
		return s.writeError(c, "list contacts", err)
	}
	result, err := s.handlers.ListContacts.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, "list contacts", err)
	}
	return c.JSON(http.StatusOK, contactPageResponse(result))
}

// ListUsers handles GET /api/users.
func (s *Server) ListUsers(c echo.Context) error {
	actor, err := s.actor(c)
	if err != nil {
		return err
	}
	query, err := queries.NewListUsersQuery(actor)
	if err != nil {
		return s.writeError(c, "list users", err)
	}
	users, err := s.handlers.ListUsers.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, "list users", err)
	}
	return c.JSON(http.StatusOK, userResponses(users))
}

// CreateUser handles POST /api/users.
func (s *Server) CreateUser(c echo.Context) error {
	actor, err := s.actor(c)
	if err != nil {
		return err
	}

	var req CreateUserRequest
	if err = s.bind(c, &req); err != nil {
		return s.writeError(c, "create user", err)
	}

	cmd, err := commands.NewCreateUserCommand(actor, req.Username, req.Name, req.Password,
		user.Role{Admin: req.IsAdmin, Superuser: req.IsSuperuser})
	if err != nil {
		return s.writeError(c, "create user", err)
	}
	created, err := s.handlers.CreateUser.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, "create user", err)
	}

	s.logger.InfoContext(c.Request().Context(), "user created",
		slog.String("user_id", created.ID().String()),
		slog.String("username", created.Username()),
		slog.String("actor_id", actor.String()),
	)
	return c.JSON(http.StatusCreated, UserResponse{
		ID:          created.ID().Bytes(),
		Username:    created.Username(),
		Name:        created.Name(),
		IsAdmin:     created.IsAdmin(),
		IsSuperuser: created.IsSuperuser(),
	})
}

// ResetUserPassword handles POST /api/users/{id}/password.
func (s *Server) ResetUserPassword(c echo.Context) error {
	actor, err := s.actor(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return s.writeError(c, "reset password", err)
	}

	var req ResetPasswordRequest
	if err = s.bind(c, &req); err != nil {
		return s.writeError(c, "reset password", err)
	}

	cmd, err := commands.NewResetUserPasswordCommand(actor, id, req.NewPassword)
	if err != nil {
		return s.writeError(c, "reset password", err)
	}
	if err = s.handlers.ResetPassword.Handle(c.Request().Context(), cmd); err != nil {
		return s.writeError(c, "reset password", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteUser handles DELETE /api/users/{id}.
func (s *Server) DeleteUser(c echo.Context) error {
	actor, err := s.actor(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return s.writeError(c, "delete user", err)
	}

	cmd, err := commands.NewDeleteUserCommand(actor, id)
	if err != nil {
		return s.writeError(c, "delete user", err)
	}
	if err = s.handlers.DeleteUser.Handle(c.Request().Context(), cmd); err != nil {
		return s.writeError(c, "delete user", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangePassword handles POST /api/me/password.
func (s *Server) ChangePassword(c echo.Context) error {
	actor, err := s.actor(c)
	if err != nil {
		return err
	}

	var req ChangePasswordRequest
	if err = s.bind(c, &req); err != nil {
		return s.writeError(c, "change password", err)
	}

	cmd, err := commands.NewChangePasswordCommand(actor, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		return s.writeError(c, "change password", err)
	}
	if err = s.handlers.ChangePassword.Handle(c.Request().Context(), cmd); err != nil {
		return s.writeError(c, "change password", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) respondWithShipment(c echo.Context, status int, id kernel.UUID) error {
	query, err := queries.NewGetShipmentQuery(id)
	if err != nil {
		return s.writeError(c, "get shipment", err)
	}
	view, err := s.handlers.GetShipment.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, "get shipment", err)
	}
	return c.JSON(status, shipmentResponse(view))
}

func (s *Server) bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}
	return s.validate.Struct(req)
}

// actor returns the authenticated user's id, or writes a 401.
func (s *Server) actor(c echo.Context) (kernel.UUID, error) {
	principal, ok := principalFrom(c)
	if !ok {
		return kernel.UUID{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return principal.ID(), nil
}

func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	var raw uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &raw,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return kernel.UUIDFromBytes(raw[:])
}

func valueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

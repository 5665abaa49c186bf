package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rolohq/rolo/internal/auth"
	"github.com/rolohq/rolo/internal/contacts"
	"github.com/rolohq/rolo/internal/logger"
)

// ContactsHandler serves the contact record CRUD API.
type ContactsHandler struct {
	store  contacts.Store
	logger *slog.Logger
}

// CreateContactRequest is the body for POST /contacts: a draft plus the
// owning user.
type CreateContactRequest struct {
	UserID string `json:"userId"`
	contacts.Draft
}

// DeleteContactResponse is the body for a successful DELETE.
type DeleteContactResponse struct {
	Success bool `json:"success"`
}

// NewContactsHandler creates a contacts handler over the configured store
// backend.
func NewContactsHandler(log *slog.Logger, store contacts.Store) *ContactsHandler {
	return &ContactsHandler{
		store:  store,
		logger: log.With(slog.String("handler", "contacts")),
	}
}

// Register mounts the contact routes on the Echo instance.
func (h *ContactsHandler) Register(e *echo.Echo) {
	e.GET("/contacts", h.List)
	e.POST("/contacts", h.Create)
	e.PUT("/contacts/:id", h.Update)
	e.DELETE("/contacts/:id", h.Delete)
}

// List returns every contact of the owner, newest-created first. The userId
// query parameter is required and must name the authenticated user.
func (h *ContactsHandler) List(c echo.Context) error {
	subject, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	ownerID := strings.TrimSpace(c.QueryParam("userId"))
	if ownerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required")
	}
	if ownerID != subject {
		return echo.NewHTTPError(http.StatusForbidden, "userId does not match the authenticated user")
	}
	items, err := h.store.List(c.Request().Context(), ownerID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Create validates and persists a draft; the store assigns the id.
func (h *ContactsHandler) Create(c echo.Context) error {
	subject, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	var req CreateContactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ownerID := strings.TrimSpace(req.UserID)
	if ownerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required")
	}
	if ownerID != subject {
		return echo.NewHTTPError(http.StatusForbidden, "userId does not match the authenticated user")
	}
	item, err := h.store.Create(c.Request().Context(), ownerID, req.Draft)
	if err != nil {
		return storeError(c, err)
	}
	h.logger.Info("contact created", slog.String("contact_id", item.ID))
	return c.JSON(http.StatusOK, item)
}

// Update replaces the whole stored record. Callers resubmit the full record;
// there is no partial-patch semantics. The owner is taken from the token, not
// from the body, so another user's record reads as missing.
func (h *ContactsHandler) Update(c echo.Context) error {
	subject, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "contact id is required")
	}
	var record contacts.Contact
	if err := c.Bind(&record); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	record.OwnerID = subject
	item, err := h.store.Update(c.Request().Context(), id, record)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// Delete removes the authenticated user's record with the given id.
func (h *ContactsHandler) Delete(c echo.Context) error {
	subject, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "contact id is required")
	}
	if err := h.store.Delete(c.Request().Context(), subject, id); err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, DeleteContactResponse{Success: true})
}

// storeError translates store failures into HTTP statuses. A missing target
// gets a distinct 404 rather than the generic server error; backend failures
// are logged with the request-scoped logger before surfacing as a 500.
func storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, contacts.ErrInvalidDraft):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, contacts.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, contacts.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "contact not found")
	default:
		logger.FromContext(c.Request().Context()).Error("contact store failure", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

package stamping

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/phdi/tcr/internal/domain/reference"
	"github.com/phdi/tcr/internal/platform/fhir"
)

// Handler exposes bundle stamping over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates a new stamping handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the stamping route.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/stamp-condition-extensions", h.StampConditionExtensions)
}

// StampRequest is the body of POST /stamp-condition-extensions.
type StampRequest struct {
	Bundle *fhir.Bundle `json:"bundle" validate:"required"`
}

// StampResponse wraps the stamped bundle.
type StampResponse struct {
	ExtendedBundle *fhir.Bundle `json:"extended_bundle"`
}

// StampConditionExtensions handles POST /stamp-condition-extensions
func (h *Handler) StampConditionExtensions(c echo.Context) error {
	var req StampRequest
	if err := c.Bind(&req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return c.JSON(he.Code, fhir.ErrorOutcome(fmt.Sprint(he.Message)))
		}
		return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome(err.Error()))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, fhir.RequiredFieldOutcome("bundle"))
	}
	out, _, err := h.svc.StampConditions(c.Request().Context(), req.Bundle)
	if err != nil {
		status := reference.StatusFor(err)
		switch {
		case status == http.StatusGatewayTimeout:
			return c.JSON(status, fhir.NewOperationOutcome(fhir.IssueSeverityError, fhir.IssueTypeTimeout, err.Error()))
		case errors.Is(err, reference.ErrStorage):
			return c.JSON(http.StatusInternalServerError, fhir.InternalErrorOutcome(err.Error()))
		}
		return c.JSON(status, fhir.ErrorOutcome(err.Error()))
	}
	return c.JSON(http.StatusOK, StampResponse{ExtendedBundle: out})
}

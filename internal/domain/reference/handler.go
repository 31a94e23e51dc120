package reference

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes the reference lookups over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates a new reference handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the value set lookup routes.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/get-value-sets", h.GetValueSets)
	e.POST("/get-value-sets", h.PostValueSets)
}

// ValueSetsRequest is the JSON body of POST /get-value-sets. Both fields
// accept a string, a delimited string, a number, or a list.
type ValueSetsRequest struct {
	ConditionCode          interface{} `json:"condition_code" validate:"required"`
	FilterClinicalServices interface{} `json:"filter_clinical_services,omitempty"`
}

// ErrorResponse is the body returned when a lookup fails.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GetValueSets handles GET /get-value-sets?condition_code=...&filter_clinical_services=...
func (h *Handler) GetValueSets(c echo.Context) error {
	params := c.QueryParams()
	codes := params["condition_code"]
	if len(codes) == 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "query parameter 'condition_code' is required"})
	}
	var code interface{} = codes[0]
	if len(codes) > 1 {
		code = codes
	}
	var filter interface{}
	if f := params["filter_clinical_services"]; len(f) == 1 {
		filter = f[0]
	} else if len(f) > 1 {
		filter = f
	}
	return h.respond(c, code, filter)
}

// PostValueSets handles POST /get-value-sets
func (h *Handler) PostValueSets(c echo.Context) error {
	var req ValueSetsRequest
	if err := c.Bind(&req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return c.JSON(he.Code, ErrorResponse{Error: fmt.Sprint(he.Message)})
		}
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "condition_code is required"})
	}
	return h.respond(c, req.ConditionCode, req.FilterClinicalServices)
}

func (h *Handler) respond(c echo.Context, code, filter interface{}) error {
	set, err := h.svc.ValueSets(c.Request().Context(), code, filter)
	if err != nil {
		return c.JSON(StatusFor(err), ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, set)
}

// StatusFor maps a reference error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrUnsupportedInputType), errors.Is(err, ErrAmbiguousCodeCount):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

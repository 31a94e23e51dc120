package httpx

import "github.com/labstack/echo/v4"

// NewEcho returns an echo instance with the JSON serializer and validator
// installed and the startup banner hidden.
func NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = JSONSerializer{}
	e.Validator = NewValidator()
	return e
}

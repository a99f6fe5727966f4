package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func success(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "success",
		"data":   data,
	})
}

func fail(c echo.Context, status int, message string, details any) error {
	data := map[string]any{"message": message}
	if details != nil {
		data["details"] = details
	}
	return c.JSON(status, map[string]any{
		"status": "fail",
		"data":   data,
	})
}

func failValidation(c echo.Context, fields map[string]string) error {
	return fail(c, http.StatusBadRequest, "Validation failed", fields)
}

func internalError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, map[string]any{
		"status":  "error",
		"message": message,
	})
}

// upstreamError reports a failed provider call; data carries whatever
// partial state is worth showing.
func upstreamError(c echo.Context, status int, message string, data any) error {
	body := map[string]any{
		"status":  "error",
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(status, body)
}

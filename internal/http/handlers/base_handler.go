// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kairos/internal/ai"
	"kairos/internal/places"
	"kairos/internal/planner"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writePipelineError maps pipeline failures to HTTP statuses: unresolvable
// input is the caller's fault, oracle trouble is upstream, schema
// violations are unprocessable output.
func writePipelineError(c *gin.Context, err error) {
	var merr *ai.MalformedOutputError
	var verr *planner.ValidationError
	switch {
	case errors.Is(err, places.ErrUnresolvable):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, planner.ErrOracle):
		writeError(c, http.StatusBadGateway, err.Error())
	case errors.As(err, &merr):
		writeError(c, http.StatusBadGateway, err.Error())
	case errors.As(err, &verr):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

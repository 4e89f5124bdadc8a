package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"parcel-service/internal/domain"
	"parcel-service/internal/platform/obs"

	"github.com/gin-gonic/gin"
)

var errInvalidJSON = errors.New("invalid json body")

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, gin.H{"error": msg})
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(c *gin.Context, v any) error {
	if c.Request.Body == nil {
		return nil
	}

	if err := json.NewDecoder(c.Request.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errInvalidJSON
	}

	return nil
}

// writeServiceError maps domain errors onto HTTP statuses and logs the failure once.
func writeServiceError(c *gin.Context, op string, err error) {
	log.Printf("req_id=%s op=%s err=%v", obs.RequestID(c.Request.Context()), op, err)

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(c, http.StatusBadRequest, ve.Msg)
	case errors.Is(err, domain.ErrValidation):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAlreadyPaid):
		writeError(c, http.StatusNotFound, "Parcel already paid")
	case errors.Is(err, domain.ErrNotFound):
		writeError(c, http.StatusNotFound, "Parcel not found")
	default:
		writeError(c, http.StatusInternalServerError, err.Error())
	}
}

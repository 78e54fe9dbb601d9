package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Faisd405/ayomabar-be/internal/middleware"
	"github.com/Faisd405/ayomabar-be/internal/services"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	StatusCode int         `json:"statusCode"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success:    status < http.StatusBadRequest,
		Message:    message,
		Data:       data,
		StatusCode: status,
	})
}

func ok(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusOK, message, data)
}

func created(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusCreated, message, data)
}

// fail maps a service error onto its status code. Internal details stay in
// the request log.
func fail(c *gin.Context, err error) {
	kind := services.KindOf(err)
	if kind == services.KindInternal {
		_ = c.Error(err)
	}
	respond(c, statusFor(kind), services.MessageOf(err), nil)
}

func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindBadRequest:
		return http.StatusBadRequest
	case services.KindConflict:
		return http.StatusConflict
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func badRequest(c *gin.Context, message string) {
	respond(c, http.StatusBadRequest, message, nil)
}

// bindFailed reports the first failing field of a binding error.
func bindFailed(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		badRequest(c, "Invalid value for "+fe.Field()+" ("+fe.Tag()+")")
		return
	}
	badRequest(c, "Invalid request body")
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserIDFrom(c)
	if !ok {
		respond(c, http.StatusUnauthorized, "Unauthorized", nil)
		return uuid.Nil, false
	}
	return id, true
}

func parseOptionalUUID(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

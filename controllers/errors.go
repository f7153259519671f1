package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"food-storefront/log"
	"food-storefront/middlewares"
	"food-storefront/services"

	"github.com/gin-gonic/gin"
)

var notFound = []error{
	services.ErrMenuItemNotFound,
	services.ErrNotInCart,
	services.ErrPlanNotFound,
	services.ErrPaymentMethodNotFound,
	services.ErrUserNotFound,
	services.ErrOrderNotFound,
	services.ErrSubscriptionNotFound,
}

var badRequest = []error{
	services.ErrEmptyCart,
	services.ErrInvalidStep,
	services.ErrUnknownMenuItem,
	services.ErrInvalidStatus,
}

var conflict = []error{
	services.ErrItemUnavailable,
	services.ErrInvalidStatusTransition,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// statusFor maps a service error to its HTTP status and client message.
func statusFor(err error) (int, string) {
	var pub *services.PublicError
	var throttled *services.ThrottledError
	switch {
	case errors.As(err, &pub):
		return http.StatusBadRequest, pub.Msg
	case errors.As(err, &throttled):
		return http.StatusTooManyRequests, fmt.Sprintf("Too many login attempts. Try again in %d seconds.", throttled.WaitSeconds)
	case errors.Is(err, services.ErrNotLoggedIn):
		return http.StatusUnauthorized, "login required"
	case isAny(err, notFound):
		return http.StatusNotFound, err.Error()
	case isAny(err, badRequest):
		return http.StatusBadRequest, err.Error()
	case isAny(err, conflict):
		return http.StatusConflict, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

// respondError writes err as {"error": ...}. Validation failures become 422
// with the per-field messages; extra is merged into the body.
func respondError(c *gin.Context, err error, extra gin.H) {
	body := gin.H{}
	for k, v := range extra {
		body[k] = v
	}

	var fields services.FieldErrors
	if errors.As(err, &fields) {
		body["error"] = "validation failed"
		body["fields"] = fields
		c.JSON(http.StatusUnprocessableEntity, body)
		return
	}

	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		l := log.WithComponent("api")
		l.Error().Err(err).
			Str("route", c.FullPath()).
			Str("visitor", middlewares.VisitorID(c)).
			Msg("request failed")
	}
	var throttled *services.ThrottledError
	if errors.As(err, &throttled) {
		c.Header("Retry-After", strconv.Itoa(throttled.WaitSeconds))
	}
	body["error"] = msg
	c.JSON(status, body)
}

func badJSON(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}

// Package handler exposes the platform's REST and WebSocket API via gin.
package handler

import (
	"errors"
	"net/http"

	"jansevak/backend/internal/civicerr"
	"jansevak/backend/internal/escalation"
	"jansevak/backend/internal/gamification"
	"jansevak/backend/internal/livefeed"
	"jansevak/backend/internal/moderation"
	"jansevak/backend/internal/storage"
	"jansevak/backend/internal/verification"

	"github.com/gin-gonic/gin"
)

// Handler wires the core services into HTTP endpoints.
type Handler struct {
	Storage      *storage.Service
	Gate         *moderation.Gate
	Verification *verification.Engine
	Machine      *escalation.Machine
	Ledger       *gamification.Ledger
	Feed         *livefeed.Hub

	JWTSecret string
}

func NewHandler(
	s *storage.Service,
	gate *moderation.Gate,
	engine *verification.Engine,
	machine *escalation.Machine,
	ledger *gamification.Ledger,
	feed *livefeed.Hub,
	jwtSecret string,
) *Handler {
	return &Handler{
		Storage:      s,
		Gate:         gate,
		Verification: engine,
		Machine:      machine,
		Ledger:       ledger,
		Feed:         feed,
		JWTSecret:    jwtSecret,
	}
}

// RegisterRoutes mounts every endpoint on the router.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	api.GET("/wards", h.ListWards)
	api.GET("/leaderboard", h.Leaderboard)
	api.GET("/profile", h.RequireAuth(), h.MyProfile)

	api.GET("/complaints", h.ListComplaints)
	api.GET("/complaints/geojson", h.GeoJSON)
	api.GET("/complaints/my", h.RequireAuth(), h.MyComplaints)
	api.GET("/complaints/:id", h.OptionalAuth(), h.GetComplaint)
	api.POST("/complaints", h.OptionalAuth(), h.SubmitComplaint)
	api.DELETE("/complaints/:id", h.RequireAuth(), h.DeleteComplaint)
	api.POST("/complaints/:id/verify", h.RequireAuth(), h.VerifyComplaint)
	api.DELETE("/complaints/:id/verify", h.RequireAuth(), h.RetractVerification)
	api.POST("/complaints/:id/confirm", h.RequireAuth(), h.ConfirmResolution)

	api.GET("/resolve/:id/:token", h.ResolveComplaint)

	r.GET("/ws", h.ServeFeed)
}

// respondError maps the error taxonomy to HTTP statuses. The wrapped
// message (minus the sentinel suffix) is what the citizen sees.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, civicerr.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, civicerr.ErrModerationRejected):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, civicerr.ErrServiceUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, civicerr.ErrAuthorization):
		status = http.StatusForbidden
	case errors.Is(err, civicerr.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, civicerr.ErrNotFound):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

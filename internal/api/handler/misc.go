package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListWards(c *gin.Context) {
	wards, err := h.Storage.ListWards()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wards)
}

// Leaderboard returns the top citizens by points, default top 10.
func (h *Handler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	profiles, err := h.Ledger.Leaderboard(limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

func (h *Handler) MyProfile(c *gin.Context) {
	profile, err := h.Ledger.Profile(c.GetString(citizenIDKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

package handler

import (
	"io"
	"net/http"
	"strconv"

	"jansevak/backend/internal/livefeed"
	"jansevak/backend/internal/models"
	"jansevak/backend/internal/moderation"
	"jansevak/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

const maxImageSize = 10 << 20 // 10 MiB

// SubmitComplaint accepts a multipart submission, runs it through the
// moderation gate, and broadcasts the accepted complaint on the live feed.
func (h *Handler) SubmitComplaint(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.PostForm("latitude"), 64)
	lng, lngErr := strconv.ParseFloat(c.PostForm("longitude"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude are required"})
		return
	}

	sub := moderation.Submission{
		Title:           c.PostForm("title"),
		Description:     c.PostForm("description"),
		Category:        models.Category(c.PostForm("category")),
		Latitude:        lat,
		Longitude:       lng,
		LocationAddress: c.PostForm("location_address"),
		IsAnonymous:     c.PostForm("is_anonymous") == "true",
		CCReporter:      c.PostForm("cc_reporter") == "true",
	}

	if wardID, err := strconv.ParseUint(c.PostForm("ward"), 10, 32); err == nil {
		ward, err := h.Storage.GetWardByID(uint(wardID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown ward"})
			return
		}
		sub.WardID = &ward.ID
	}

	if citizenID := c.GetString(citizenIDKey); citizenID != "" && !sub.IsAnonymous {
		sub.ReporterID = &citizenID
	}

	if file, err := c.FormFile("image"); err == nil {
		if file.Size > maxImageSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image exceeds the 10MB limit"})
			return
		}
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded image"})
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded image"})
			return
		}
		sub.ImageName = file.Filename
		sub.ImageData = data
	}

	complaint, err := h.Gate.Submit(c.Request.Context(), sub)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Feed.Broadcast(livefeed.EventAccepted, complaint)
	c.JSON(http.StatusCreated, complaint)
}

// ListComplaints returns complaints filtered by status, category, ward and
// a free-text search, newest first.
func (h *Handler) ListComplaints(c *gin.Context) {
	filter := storage.ComplaintFilter{
		Status:   models.Status(c.Query("status")),
		Category: models.Category(c.Query("category")),
		Search:   c.Query("search"),
	}
	if wardID, err := strconv.ParseUint(c.Query("ward"), 10, 32); err == nil {
		filter.WardID = uint(wardID)
	}

	complaints, err := h.Storage.ListComplaints(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaints)
}

func (h *Handler) GetComplaint(c *gin.Context) {
	complaint, err := h.Storage.GetComplaintByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	count, err := h.Storage.CountVerifications(complaint.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	hasVerified := false
	if citizenID := c.GetString(citizenIDKey); citizenID != "" {
		hasVerified, _ = h.Storage.HasVerified(complaint.ID, citizenID)
	}

	c.JSON(http.StatusOK, gin.H{
		"complaint":          complaint,
		"verification_count": count,
		"user_has_verified":  hasVerified,
	})
}

// MyComplaints is the reporter dashboard listing.
func (h *Handler) MyComplaints(c *gin.Context) {
	complaints, err := h.Storage.ListComplaintsByReporter(c.GetString(citizenIDKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaints)
}

// DeleteComplaint removes the caller's own complaint while it is NEW.
func (h *Handler) DeleteComplaint(c *gin.Context) {
	if err := h.Machine.Delete(c.Param("id"), c.GetString(citizenIDKey)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// VerifyComplaint records a community endorsement (upvote).
func (h *Handler) VerifyComplaint(c *gin.Context) {
	count, crossed, err := h.Verification.Verify(c.Param("id"), c.GetString(citizenIDKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":              "verified",
		"total_verifications": count,
		"threshold_crossed":   crossed,
	})
}

// RetractVerification withdraws the caller's endorsement.
func (h *Handler) RetractVerification(c *gin.Context) {
	if err := h.Verification.Retract(c.Param("id"), c.GetString(citizenIDKey)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "retracted"})
}

// ConfirmResolution lets the reporter confirm the issue is actually fixed.
func (h *Handler) ConfirmResolution(c *gin.Context) {
	if err := h.Machine.ConfirmResolution(c.Param("id"), c.GetString(citizenIDKey)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "confirmed"})
}

// GeoJSON renders every complaint as a FeatureCollection for the map view.
func (h *Handler) GeoJSON(c *gin.Context) {
	complaints, err := h.Storage.ListComplaints(storage.ComplaintFilter{})
	if err != nil {
		respondError(c, err)
		return
	}

	features := make([]gin.H, 0, len(complaints))
	for _, complaint := range complaints {
		wardName := "Unknown"
		if complaint.Ward != nil {
			wardName = complaint.Ward.Name
		}
		features = append(features, gin.H{
			"type": "Feature",
			"geometry": gin.H{
				"type": "Point",
				// GeoJSON is [lon, lat]
				"coordinates": []float64{complaint.Longitude, complaint.Latitude},
			},
			"properties": gin.H{
				"id":            complaint.ID,
				"title":         complaint.Title,
				"category":      complaint.Category,
				"status":        complaint.Status,
				"urgency_score": complaint.UrgencyScore,
				"ward_name":     wardName,
				"image":         complaint.ImagePath,
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"type":     "FeatureCollection",
		"features": features,
	})
}

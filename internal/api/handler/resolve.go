package handler

import (
	"errors"
	"fmt"
	"net/http"

	"jansevak/backend/internal/civicerr"
	"jansevak/backend/internal/livefeed"

	"github.com/gin-gonic/gin"
)

const resolvedPage = `<!DOCTYPE html>
<html>
<head><title>Complaint Resolved</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4em;">
<h1>&#9989; Complaint Resolved</h1>
<p>Complaint <strong>%s</strong> has been marked as resolved.</p>
<p>Thank you for your service to the city.</p>
</body>
</html>`

const alreadyResolvedPage = `<!DOCTYPE html>
<html>
<head><title>Already Resolved</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4em;">
<h1>Already Resolved</h1>
<p>Complaint <strong>%s</strong> was resolved earlier. No action was taken.</p>
</body>
</html>`

// ResolveComplaint is the magic-link endpoint officials click from their
// email. It authenticates by the per-complaint token alone, so the page
// works without a login.
func (h *Handler) ResolveComplaint(c *gin.Context) {
	id := c.Param("id")
	complaint, changed, err := h.Machine.Resolve(id, c.Param("token"))
	switch {
	case errors.Is(err, civicerr.ErrAuthorization):
		c.Data(http.StatusForbidden, "text/html; charset=utf-8",
			[]byte("<h1>403 Forbidden</h1><p>Invalid resolution link.</p>"))
		return
	case errors.Is(err, civicerr.ErrNotFound):
		c.Data(http.StatusNotFound, "text/html; charset=utf-8",
			[]byte("<h1>404 Not Found</h1><p>No such complaint.</p>"))
		return
	case err != nil:
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8",
			[]byte("<h1>500 Internal Server Error</h1>"))
		return
	}

	if !changed {
		// Second click on the same link.
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(fmt.Sprintf(alreadyResolvedPage, id)))
		return
	}

	h.Feed.Broadcast(livefeed.EventResolved, complaint)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(fmt.Sprintf(resolvedPage, complaint.ID)))
}

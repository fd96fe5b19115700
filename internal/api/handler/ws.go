package handler

import (
	"log"
	"net/http"

	"jansevak/backend/internal/livefeed"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeFeed upgrades the connection and subscribes it to the live feed.
func (h *Handler) ServeFeed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade feed connection: %v", err)
		return
	}

	client := livefeed.NewClient(conn, h.Feed)
	h.Feed.RegisterCh <- client
	client.Run()
}

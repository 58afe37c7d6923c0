package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Upgrader accepts websocket observers
type Upgrader interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

// WSHandler attaches observers to the realtime hub
type WSHandler struct {
	hub Upgrader
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub Upgrader) *WSHandler {
	return &WSHandler{hub: hub}
}

// Serve handles GET /ws
func (h *WSHandler) Serve(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/parammap-backend/internal/http/response"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// GET / and /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	response.RespondMessage(c, http.StatusOK, "Healthy")
}

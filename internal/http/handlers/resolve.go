package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/parammap-backend/internal/domain"
	"github.com/yungbote/parammap-backend/internal/http/response"
	"github.com/yungbote/parammap-backend/internal/services"
)

type ResolveHandler struct {
	resolver services.ResolveService
}

func NewResolveHandler(resolver services.ResolveService) *ResolveHandler {
	return &ResolveHandler{resolver: resolver}
}

// POST /resolve
func (h *ResolveHandler) Resolve(c *gin.Context) {
	const op = "mapping.resolve"
	var body services.ResolveRequest
	if !bindBody(c, op, &body) {
		return
	}
	if body.Parameters == nil {
		response.RespondDomainError(c, domain.Validation(op, "parameters is required"))
		return
	}
	out, err := h.resolver.Resolve(c.Request.Context(), body)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, out)
}

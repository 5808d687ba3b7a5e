package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/parammap-backend/internal/domain"
	"github.com/yungbote/parammap-backend/internal/http/response"
	"github.com/yungbote/parammap-backend/internal/platform/apierr"
	"github.com/yungbote/parammap-backend/internal/services"
)

type ParameterHandler struct {
	parameters  services.ParameterService
	maxPageSize int
}

func NewParameterHandler(parameters services.ParameterService, maxPageSize int) *ParameterHandler {
	return &ParameterHandler{parameters: parameters, maxPageSize: maxPageSize}
}

// GET /parameters?page=&pageSize=
func (h *ParameterHandler) ListParameters(c *gin.Context) {
	page, ok := pageQuery(c, h.maxPageSize)
	if !ok {
		return
	}
	out, err := h.parameters.List(c.Request.Context(), page)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /parameters/bulk
// Item validation failures answer 400, not 422.
func (h *ParameterHandler) BulkUpsertParameters(c *gin.Context) {
	var body struct {
		Items []services.ParameterInput `json:"items"`
	}
	// An unreadable body is reported like an empty one.
	if err := c.ShouldBindJSON(&body); err != nil {
		body.Items = nil
	}
	n, err := h.parameters.BulkUpsert(c.Request.Context(), body.Items)
	if err != nil {
		if domain.IsCode(err, domain.CodeValidation) {
			err = apierr.New(http.StatusBadRequest, string(domain.CodeValidation), err)
		}
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"inserted": n})
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/parammap-backend/internal/http/response"
	"github.com/yungbote/parammap-backend/internal/platform/pagination"
	"github.com/yungbote/parammap-backend/internal/services"
)

type HistoryHandler struct {
	history     services.HistoryService
	maxPageSize int
}

func NewHistoryHandler(history services.HistoryService, maxPageSize int) *HistoryHandler {
	return &HistoryHandler{history: history, maxPageSize: maxPageSize}
}

// GET /history?mapping_id=&vendor_id=[&page=&pageSize=]
// Without page or pageSize every matching record is returned.
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	var page pagination.Page
	if c.Query("page") != "" || c.Query("pageSize") != "" {
		p, ok := pageQuery(c, h.maxPageSize)
		if !ok {
			return
		}
		page = p
	}
	q := services.HistoryQuery{
		MappingID: c.Query("mapping_id"),
		VendorID:  c.Query("vendor_id"),
	}
	out, err := h.history.List(c.Request.Context(), q, page)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, out)
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/parammap-backend/internal/domain"
	"github.com/yungbote/parammap-backend/internal/http/response"
	"github.com/yungbote/parammap-backend/internal/platform/apierr"
	"github.com/yungbote/parammap-backend/internal/platform/pagination"
)

// bindBody decodes a JSON body, answering 422 itself on failure.
func bindBody(c *gin.Context, op string, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondDomainError(c, domain.NewError(domain.CodeValidation, op, "Invalid JSON body", err))
		return false
	}
	return true
}

// pageQuery reads page and pageSize, answering 400 itself when they are out
// of range.
func pageQuery(c *gin.Context, maxSize int) (pagination.Page, bool) {
	page, err := pagination.Parse(c.Query("page"), c.Query("pageSize"), maxSize)
	if err != nil {
		response.RespondDomainError(c, apierr.BadRequest("Invalid pagination values"))
		return pagination.Page{}, false
	}
	return page, true
}

package catalog

import (
	"gorm.io/gorm"

	"github.com/yungbote/parammap-backend/internal/platform/pagination"
)

// paged applies offset/limit; a zero Page means unbounded.
func paged(q *gorm.DB, page pagination.Page) *gorm.DB {
	if page.Unbounded() {
		return q
	}
	return q.Offset(page.Offset()).Limit(page.Limit())
}

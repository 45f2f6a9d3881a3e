package server

import (
	"strings"

	"github.com/andreasgmg/fornet/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

// idParam parses a snowflake path parameter and aborts the request when it
// is malformed.
func idParam(c *gin.Context, name string) (snowflake.ID, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := snowflake.ParseString(raw)
	if err != nil || id <= 0 {
		AbortWithError(c, newValidationError(name, "invalid_id", "invalid id"))
		return 0, false
	}
	return id, true
}

func pageQuery(c *gin.Context) (pagination.Pagination, bool) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return page, false
	}
	page.PageSize = page.Size(10, maxPageSize)
	return page, true
}

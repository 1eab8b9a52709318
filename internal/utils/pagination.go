package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page  int
	Limit int
}

// GetPaginationParams extracts and validates pagination parameters from the
// request. page_size takes precedence over limit; defaultLimit applies when
// neither is given or the value is out of range.
func GetPaginationParams(c *gin.Context, defaultLimit int) PaginationParams {
	if defaultLimit < constants.MinPageSize || defaultLimit > constants.MaxPageSize {
		defaultLimit = constants.DefaultPageSize
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size := c.Query("page_size")
	if size == "" {
		size = c.DefaultQuery("limit", strconv.Itoa(defaultLimit))
	}
	limit, err := strconv.Atoi(size)

	if page < 1 {
		page = 1
	}
	if err != nil || limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = defaultLimit
	}

	return PaginationParams{
		Page:  page,
		Limit: limit,
	}
}

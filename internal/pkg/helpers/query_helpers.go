package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// MaxLimit caps list sizes requested through ?limit.
const MaxLimit = 500

// ParseLimit reads the limit query parameter. Missing, malformed or non-positive values
// yield def; values above MaxLimit are clamped.
func ParseLimit(c *gin.Context, def int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return def
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

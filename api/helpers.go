package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// parseDate accepts either a bare calendar date or a full RFC 3339 instant.
// An empty string yields the zero time, letting incomplete drafts through.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func contextWithTimeout(c *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), d)
}

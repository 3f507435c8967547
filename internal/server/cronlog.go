package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	cronlogdomain "github.com/getmarketingos/marketingos/internal/cronlog/domain"
)

func (s *Server) ListCronLogs(c *gin.Context) {
	limit, offset := paginationParams(c)
	filter := cronlogdomain.ListRunsFilter{
		Job:    c.Query("job"),
		Status: cronlogdomain.RunStatus(c.Query("status")),
		Limit:  limit,
		Offset: offset,
	}

	runs, err := s.cronLogs.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/getmarketingos/marketingos/internal/engine"
)

// RunMarketingEngine executes one full pass: content generation,
// publishing, SEO scans and comment replies.
func (s *Server) RunMarketingEngine(c *gin.Context) {
	result, err := s.marketingEngine.Run(c.Request.Context())
	s.renderRun(c, result, err)
}

// RunPublishScheduled publishes due posts only.
func (s *Server) RunPublishScheduled(c *gin.Context) {
	result, err := s.marketingEngine.RunPublishOnly(c.Request.Context())
	s.renderRun(c, result, err)
}

func (s *Server) renderRun(c *gin.Context, result engine.RunResult, err error) {
	if err != nil {
		if errors.Is(err, engine.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": result,
	})
}

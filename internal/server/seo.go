package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type upsertSeoConfigRequest struct {
	TargetURL string `json:"target_url" binding:"required"`
}

func (s *Server) GetSeoConfig(c *gin.Context) {
	orgID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_organization_id", "invalid organization id"))
		return
	}

	config, err := s.seoSvc.GetByOrg(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, config)
}

func (s *Server) UpsertSeoConfig(c *gin.Context) {
	orgID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_organization_id", "invalid organization id"))
		return
	}

	var req upsertSeoConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("target_url", "invalid_request", "target_url is required"))
		return
	}

	config, err := s.seoSvc.Upsert(c.Request.Context(), orgID, req.TargetURL)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, config)
}

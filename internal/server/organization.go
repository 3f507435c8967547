package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	organizationdomain "github.com/getmarketingos/marketingos/internal/organization/domain"
)

func (s *Server) ListOrganizations(c *gin.Context) {
	orgs, err := s.organizationSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}

func (s *Server) CreateOrganization(c *gin.Context) {
	var req organizationdomain.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	org, err := s.organizationSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, org)
}

func (s *Server) GetOrganizationByID(c *gin.Context) {
	org, err := s.organizationSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

func (s *Server) UpsertBusinessProfile(c *gin.Context) {
	var req organizationdomain.UpsertBusinessProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	profile, err := s.organizationSvc.UpsertBusinessProfile(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) UpsertMarketingConfig(c *gin.Context) {
	var req organizationdomain.UpsertMarketingConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	config, err := s.organizationSvc.UpsertMarketingConfig(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, config)
}

func (s *Server) PauseMarketing(c *gin.Context) {
	s.setPaused(c, true)
}

func (s *Server) ResumeMarketing(c *gin.Context) {
	s.setPaused(c, false)
}

func (s *Server) setPaused(c *gin.Context, paused bool) {
	if err := s.organizationSvc.SetPaused(c.Request.Context(), c.Param("id"), paused); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_paused": paused})
}

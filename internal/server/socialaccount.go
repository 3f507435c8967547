package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	socialaccountdomain "github.com/getmarketingos/marketingos/internal/socialaccount/domain"
)

func (s *Server) ListSocialAccounts(c *gin.Context) {
	accounts, err := s.accountSvc.ListByOrg(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

func (s *Server) ConnectSocialAccount(c *gin.Context) {
	var req socialaccountdomain.ConnectAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	account, err := s.accountSvc.Connect(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (s *Server) DisconnectSocialAccount(c *gin.Context) {
	err := s.accountSvc.Disconnect(c.Request.Context(), c.Param("id"), c.Param("accountId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"disconnected": true})
}

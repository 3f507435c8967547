package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListPosts(c *gin.Context) {
	limit, offset := paginationParams(c)
	posts, err := s.postSvc.List(c.Request.Context(), c.Param("id"), c.Query("status"), c.Query("platform"), limit, offset)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (s *Server) GetPostByID(c *gin.Context) {
	post, err := s.postSvc.GetByID(c.Request.Context(), c.Param("id"), c.Param("postId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) CancelPost(c *gin.Context) {
	if err := s.postSvc.Cancel(c.Request.Context(), c.Param("id"), c.Param("postId")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"canceled": true})
}

func (s *Server) RetryPost(c *gin.Context) {
	post, err := s.postSvc.Retry(c.Request.Context(), c.Param("id"), c.Param("postId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func paginationParams(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

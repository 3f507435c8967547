package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	commentdomain "github.com/getmarketingos/marketingos/internal/comment/domain"
)

func (s *Server) ListComments(c *gin.Context) {
	limit, offset := paginationParams(c)
	filter := commentdomain.ListCommentsFilter{
		Platform: c.Query("platform"),
		Limit:    limit,
		Offset:   offset,
	}

	comments, err := s.commentSvc.ListByOrg(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (s *Server) IngestComment(c *gin.Context) {
	var req commentdomain.IngestCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	comment, err := s.commentSvc.Ingest(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (s *Server) MarkCommentSpam(c *gin.Context) {
	if err := s.commentSvc.MarkSpam(c.Request.Context(), c.Param("id"), c.Param("commentId")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_spam": true})
}

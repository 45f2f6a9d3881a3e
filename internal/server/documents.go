package server

import (
	"net/http"

	auditdomain "github.com/andreasgmg/fornet/internal/audit/domain"
	documentdomain "github.com/andreasgmg/fornet/internal/document/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListDocuments(c *gin.Context) {
	docs, err := s.documentSvc.List(c.Request.Context(), orgFromContext(c).ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// UploadDocument registers document metadata. The file itself is stored
// elsewhere; only its size counts against the quota here.
func (s *Server) UploadDocument(c *gin.Context) {
	var req documentdomain.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	doc, err := s.documentSvc.Upload(c.Request.Context(), orgFromContext(c).ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

func (s *Server) DeleteDocument(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := s.documentSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, orgFromContext(c), auditdomain.ActionDocumentDeleted, "document", id, nil)

	c.Status(http.StatusNoContent)
}

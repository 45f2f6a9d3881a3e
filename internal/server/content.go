package server

import (
	"net/http"

	contentdomain "github.com/andreasgmg/fornet/internal/content/domain"
	"github.com/gin-gonic/gin"
)

// -------- Posts --------

func (s *Server) ListPosts(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}

	resp, err := s.contentSvc.ListPosts(c.Request.Context(), orgFromContext(c).ID, page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreatePost(c *gin.Context) {
	var req contentdomain.PostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	post, err := s.contentSvc.CreatePost(c.Request.Context(), orgFromContext(c).ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

func (s *Server) UpdatePost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req contentdomain.PostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	post, err := s.contentSvc.UpdatePost(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (s *Server) DeletePost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := s.contentSvc.DeletePost(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// -------- Pages --------

func (s *Server) ListPages(c *gin.Context) {
	pages, err := s.contentSvc.ListPages(c.Request.Context(), orgFromContext(c).ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pages": pages})
}

func (s *Server) CreatePage(c *gin.Context) {
	var req contentdomain.PageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	page, err := s.contentSvc.CreatePage(c.Request.Context(), orgFromContext(c).ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"page": page})
}

func (s *Server) UpdatePage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req contentdomain.PageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	page, err := s.contentSvc.UpdatePage(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": page})
}

func (s *Server) DeletePage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := s.contentSvc.DeletePage(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// -------- Events --------

func (s *Server) ListEvents(c *gin.Context) {
	events, err := s.contentSvc.ListUpcomingEvents(c.Request.Context(), orgFromContext(c).ID, s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (s *Server) CreateEvent(c *gin.Context) {
	var req contentdomain.EventInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	event, err := s.contentSvc.CreateEvent(c.Request.Context(), orgFromContext(c).ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"event": event})
}

func (s *Server) DeleteEvent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := s.contentSvc.DeleteEvent(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// -------- Board --------

func (s *Server) ListBoardMembers(c *gin.Context) {
	members, err := s.contentSvc.ListBoardMembers(c.Request.Context(), orgFromContext(c).ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"board": members})
}

func (s *Server) AddBoardMember(c *gin.Context) {
	var req contentdomain.BoardMemberInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	member, err := s.contentSvc.AddBoardMember(c.Request.Context(), orgFromContext(c).ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"member": member})
}

func (s *Server) DeleteBoardMember(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := s.contentSvc.DeleteBoardMember(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// -------- Sponsors --------

func (s *Server) ListSponsors(c *gin.Context) {
	sponsors, err := s.contentSvc.ListSponsors(c.Request.Context(), orgFromContext(c).ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sponsors": sponsors})
}

func (s *Server) AddSponsor(c *gin.Context) {
	var req contentdomain.SponsorInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sponsor, err := s.contentSvc.AddSponsor(c.Request.Context(), orgFromContext(c).ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"sponsor": sponsor})
}

func (s *Server) DeleteSponsor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := s.contentSvc.DeleteSponsor(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

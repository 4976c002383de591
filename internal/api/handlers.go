package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"flint/internal/session"
)

const healthPath = "/healthz"

type createSessionRequest struct {
	SourceURI string `json:"source_uri" binding:"required"`
}

type createSessionResponse struct {
	SessionID string         `json:"session_id"`
	Status    session.Status `json:"status"`
}

type listSessionsResponse struct {
	Sessions []session.Record `json:"sessions"`
}

type API struct {
	sessions *session.Manager
}

func NewAPI(sessions *session.Manager) *API {
	return &API{sessions: sessions}
}

// RegisterRoutes registers API routes on the provided gin engine
func (a *API) RegisterRoutes(router *gin.Engine) {
	router.GET(healthPath, a.Health)
	api := router.Group("/api/v1")
	{
		api.POST("/sessions", a.CreateSession)
		api.GET("/sessions", a.ListSessions)
		api.GET("/sessions/:id", a.GetSession)
	}
}

func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateSession starts loading the app at the requested source URI
func (a *API) CreateSession(c *gin.Context) {
	if a.sessions.IsBusy() {
		log.Warn().Msg("rejecting session: all loader slots are busy")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "server busy"})
		return
	}
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("invalid create session request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	rec, err := a.sessions.CreateSession(req.SourceURI)
	if err != nil {
		if errors.Is(err, session.ErrInvalidSource) {
			log.Warn().Str("source_uri", req.SourceURI).Err(err).Msg("rejecting session")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Str("source_uri", req.SourceURI).Err(err).Msg("create session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	log.Info().Str("session_id", rec.ID).Str("source_uri", rec.SourceURI).Msg("session created")
	c.JSON(http.StatusCreated, createSessionResponse{SessionID: rec.ID, Status: rec.Status})
}

// GetSession returns the session record
func (a *API) GetSession(c *gin.Context) {
	id := c.Param("id")
	if rec, ok := a.sessions.GetSession(id); ok {
		c.JSON(http.StatusOK, rec)
		return
	}
	log.Warn().Str("session_id", id).Msg("session not found on get")
	c.JSON(http.StatusNotFound, gin.H{"error": session.ErrSessionNotFound.Error()})
}

// ListSessions returns every known session, newest first
func (a *API) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, listSessionsResponse{Sessions: a.sessions.ListSessions()})
}

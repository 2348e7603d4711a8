package api

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/david/contract-finder/internal/bids"
	"github.com/david/contract-finder/internal/chat"
	"github.com/david/contract-finder/internal/models"
	"github.com/david/contract-finder/internal/sam"
	"github.com/david/contract-finder/internal/summary"
)

type Server struct {
	Echo          *echo.Echo
	Opportunities *sam.Client
	Cache         *summary.Cache
	Resolver      *summary.Resolver
	Assistant     chat.Assistant
	Ledger        *bids.Ledger
	Sections      *summary.SectionRegistry

	sessionMu sync.Mutex
	sessions  map[string]*viewSession
}

// viewSession is one open opportunity view: the chat transcript owner plus
// the "still mounted" flag that suppresses stale results after close.
type viewSession struct {
	ID            string
	OpportunityID string
	Manager       *chat.Manager
	closed        bool
}

func NewServer(opps *sam.Client, cache *summary.Cache, resolver *summary.Resolver, assistant chat.Assistant, ledger *bids.Ledger, sections *summary.SectionRegistry) *Server {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	allowedOrigins := []string{"http://localhost:3000"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s := &Server{
		Echo:          e,
		Opportunities: opps,
		Cache:         cache,
		Resolver:      resolver,
		Assistant:     assistant,
		Ledger:        ledger,
		Sections:      sections,
		sessions:      make(map[string]*viewSession),
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")

	api.POST("/opportunities/:id/view", s.handleOpenView)
	api.POST("/sessions/:sid/chat", s.handleChat)
	api.DELETE("/sessions/:sid", s.handleCloseSession)

	api.POST("/opportunities/:id/bid/drafting", s.handleMarkDrafting)
	api.POST("/opportunities/:id/bid/rfqs-sent", s.handleMarkRFQsSent)
	api.GET("/bids", s.handleListBids)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// handleOpenView runs the page load flow: cache lookup, resolve on miss,
// cache fill, chat seeding. The response carries the summary, its display
// tree, and the opening transcript.
func (s *Server) handleOpenView(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	doc, hit, err := s.Cache.Get(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	if !hit {
		opp, err := s.Opportunities.FetchOpportunity(ctx, id)
		if err != nil {
			if errors.Is(err, sam.ErrNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{
					"error": "Opportunity not found.",
					"back":  "/opportunities",
				})
			}
			return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
		}

		doc, err = s.Resolver.Resolve(ctx, opp)
		if err != nil {
			var acq *summary.AcquisitionError
			if errors.As(err, &acq) {
				return c.JSON(http.StatusBadGateway, map[string]string{"error": "Failed to generate summary."})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
		}
	}

	session := &viewSession{
		ID:            uuid.New().String(),
		OpportunityID: id,
		Manager:       chat.Start(s.Assistant, doc),
	}
	s.sessionMu.Lock()
	s.sessions[session.ID] = session
	s.sessionMu.Unlock()

	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": session.ID,
		"summary":    doc,
		"view":       s.buildView(doc),
		"transcript": session.Manager.Transcript(),
	})
}

type chatTurnRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(c echo.Context) error {
	session, ok := s.lookupSession(c.Param("sid"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Session not found"})
	}

	var req chatTurnRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	transcript, err := session.Manager.Send(c.Request().Context(), strings.TrimSpace(req.Message))
	if err != nil {
		if errors.Is(err, chat.ErrTurnInFlight) {
			return c.JSON(http.StatusConflict, map[string]string{"error": "A message is already being processed"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	// The view may have been closed while the turn was in flight; the remote
	// call completed anyway, only the result is swallowed.
	if s.sessionClosed(session.ID) {
		return c.NoContent(http.StatusGone)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"transcript": transcript})
}

func (s *Server) handleCloseSession(c echo.Context) error {
	s.sessionMu.Lock()
	if session, ok := s.sessions[c.Param("sid")]; ok {
		session.closed = true
		delete(s.sessions, session.ID)
	}
	s.sessionMu.Unlock()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleMarkDrafting(c echo.Context) error {
	opp, err := s.opportunityForBid(c)
	if err != nil || opp == nil {
		return err
	}
	if err := s.Ledger.MarkDrafting(c.Request().Context(), opp); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to start bid"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": string(models.StatusDrafting)})
}

func (s *Server) handleMarkRFQsSent(c echo.Context) error {
	opp, err := s.opportunityForBid(c)
	if err != nil || opp == nil {
		return err
	}
	if err := s.Ledger.MarkRFQsSent(c.Request().Context(), opp); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update bid"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": string(models.StatusRFQsSent)})
}

func (s *Server) handleListBids(c echo.Context) error {
	records, err := s.Ledger.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	if records == nil {
		records = []models.BidRecord{}
	}
	return c.JSON(http.StatusOK, records)
}

// opportunityForBid reconstructs the opportunity identity a workflow action
// needs. A cached summary's meta fields are preferred (the view already
// holds them); the collaborator is only asked on a cold ledger action.
// A nil opportunity with nil error means the response was already written.
func (s *Server) opportunityForBid(c echo.Context) (*models.Opportunity, error) {
	ctx := c.Request().Context()
	id := c.Param("id")

	if doc, hit, err := s.Cache.Get(ctx, id); err == nil && hit {
		return opportunityFromMeta(id, doc), nil
	}

	opp, err := s.Opportunities.FetchOpportunity(ctx, id)
	if err != nil {
		if errors.Is(err, sam.ErrNotFound) {
			return nil, c.JSON(http.StatusNotFound, map[string]string{
				"error": "Opportunity not found.",
				"back":  "/opportunities",
			})
		}
		return nil, c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	return opp, nil
}

func opportunityFromMeta(id string, doc summary.Document) *models.Opportunity {
	meta := summary.Meta(doc)
	opp := &models.Opportunity{ID: id}
	if v, ok := meta[summary.MetaTitle]; ok {
		opp.Title = v.String()
	}
	if v, ok := meta[summary.MetaAgency]; ok {
		opp.Agency = v.String()
	}
	if v, ok := meta[summary.MetaLink]; ok {
		opp.Link = v.String()
	}
	if v, ok := meta[summary.MetaClosingDate]; ok {
		opp.ClosingDate = v.String()
	}
	return opp
}

func (s *Server) lookupSession(id string) (*viewSession, bool) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	session, ok := s.sessions[id]
	return session, ok
}

func (s *Server) sessionClosed(id string) bool {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	_, ok := s.sessions[id]
	return !ok
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

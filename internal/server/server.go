// Package server is the gin HTTP layer over the tutoring service. The
// conversational entry point is POST /api/message; the remaining routes
// expose the agents directly, mirroring what a dashboard needs.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/abhisek/tutorbot/internal/app"
	"github.com/abhisek/tutorbot/internal/docstore"
	"github.com/abhisek/tutorbot/internal/event"
	"github.com/abhisek/tutorbot/internal/guide"
	"github.com/abhisek/tutorbot/internal/progressagent"
	"github.com/abhisek/tutorbot/internal/quizmaster"
	"github.com/abhisek/tutorbot/internal/tutor"
)

// Config holds the HTTP layer's settings.
type Config struct {
	Addr         string
	AllowOrigins []string

	// ShutdownGrace bounds how long Run waits for in-flight requests
	// after the context is canceled.
	ShutdownGrace time.Duration
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Addr:          ":8080",
		AllowOrigins:  []string{"http://localhost:3000"},
		ShutdownGrace: 10 * time.Second,
	}
}

// Server wires the application service and the agents into gin routes.
type Server struct {
	cfg       Config
	app       *app.Service
	tutor     *tutor.Service
	quiz      *quizmaster.Service
	guide     *guide.Service
	progress  *progressagent.Service
	repo      *docstore.Repo
	publisher event.Publisher
}

// New creates the server. A nil publisher disables route events.
func New(cfg Config, a *app.Service, t *tutor.Service, q *quizmaster.Service, g *guide.Service, p *progressagent.Service, repo *docstore.Repo, pub event.Publisher) *Server {
	if pub == nil {
		pub = event.Nop{}
	}
	return &Server{
		cfg:       cfg,
		app:       a,
		tutor:     t,
		quiz:      q,
		guide:     g,
		progress:  p,
		repo:      repo,
		publisher: pub,
	}
}

// Router builds the gin engine with CORS and all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", s.health)

		api.POST("/session", s.createSession)
		api.POST("/message", s.handleMessage)
		api.POST("/session/end", s.endSession)

		quiz := api.Group("/quiz")
		{
			quiz.POST("/generate", s.generateQuiz)
			quiz.POST("/evaluate", s.evaluateAnswer)
			quiz.POST("/follow-up", s.followUpQuiz)
			quiz.GET("/result", s.quizResult)
		}

		api.GET("/progress", s.progressSummary)
		api.GET("/content", s.learningContent)
		api.POST("/study-plan", s.studyPlan)
		api.GET("/resources", s.resources)
		api.GET("/learning-patterns", s.learningPatterns)
		api.GET("/difficulty-recommendation", s.difficultyRecommendation)
		api.GET("/hint", s.hint)
		api.POST("/misconception", s.misconception)
	}

	return r
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		grace := s.cfg.ShutdownGrace
		if grace <= 0 {
			grace = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// writeError maps application errors onto HTTP status codes. Internal
// detail never reaches the client.
func writeError(c *gin.Context, err error) {
	var vErr *app.ValidationError
	var notFound *docstore.ErrNotFound
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
	case errors.Is(err, app.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

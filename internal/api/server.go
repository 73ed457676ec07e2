// Package api exposes the diary and survey aggregations over HTTP for the
// student and mentor front-ends.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Tiliavir/studylog/internal/observability"
	"github.com/Tiliavir/studylog/internal/timecalc"
)

// Server serves the JSON API over the file store rooted at base.
type Server struct {
	base   string
	clock  timecalc.Clock
	loc    *time.Location
	engine *gin.Engine
}

// NewServer builds the gin engine. loc sets the week boundary timezone.
func NewServer(base string, clock timecalc.Clock, loc *time.Location) *Server {
	if loc == nil {
		loc = time.Local
	}
	s := &Server{base: base, clock: clock, loc: loc}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), requestLogger(), corsPolicy())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	diary := engine.Group("/api/diary")
	diary.GET("/timeline", s.timeline)
	diary.GET("/weekly", s.weekly)
	diary.POST("/posts", s.createPost)
	diary.DELETE("/posts/:date/:id", s.deletePost)

	surveys := engine.Group("/api/surveys")
	surveys.GET("", s.listSurveys)
	surveys.GET("/:id/completion", s.completion)
	surveys.PUT("/:id/answers", s.recordAnswers)

	s.engine = engine
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// now returns the current instant in the configured timezone.
func (s *Server) now() time.Time {
	return s.clock.Now().In(s.loc)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	observability.Logger().Info("api listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Package server is the HTTP boundary: a content-negotiated /feed endpoint,
// audio file delivery, static artwork and a health probe. Every request runs
// the pipeline fresh; nothing is shared between requests beyond the
// read-only collaborators.
package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"podcast-archive/internal/feed"
	"podcast-archive/internal/models"
)

const rssContentType = "application/rss+xml; charset=utf-8"

// FileSource yields the audio files for a build and resolves individual
// download requests to safe paths.
type FileSource interface {
	List() []string
	Resolve(filename string) (string, bool)
}

// EpisodeResolver turns file paths into normalized episodes, dropping files
// it cannot read.
type EpisodeResolver interface {
	ResolveAll(paths []string) []models.Episode
}

// FeedAssembler produces the two equivalent output views.
type FeedAssembler interface {
	BuildListing(episodes []models.Episode) []feed.ListingItem
	BuildFeed(episodes []models.Episode) ([]byte, error)
}

// Options carries the collaborators and static-serving configuration.
type Options struct {
	Files         FileSource
	Resolver      EpisodeResolver
	Assembler     FeedAssembler
	ImageDir      string
	ImageBasePath string
	Logger        *slog.Logger
}

type server struct {
	files     FileSource
	resolver  EpisodeResolver
	assembler FeedAssembler
	logger    *slog.Logger
}

// New builds the HTTP handler exposing the feed, file and health endpoints.
func New(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &server{
		files:     opts.Files,
		resolver:  opts.Resolver,
		assembler: opts.Assembler,
		logger:    logger,
	}

	engine := gin.New()
	engine.Use(requestLogger(logger), gin.Recovery())

	engine.GET("/health", s.handleHealth)
	engine.GET("/feed", s.handleFeed)
	engine.GET("/file/:name", s.handleFile)
	if opts.ImageDir != "" {
		engine.Static(opts.ImageBasePath, opts.ImageDir)
	}

	return engine
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleFeed returns RSS for podcast clients and the JSON listing otherwise.
// One request yields exactly one format.
func (s *server) handleFeed(c *gin.Context) {
	episodes := s.resolver.ResolveAll(s.files.List())

	if wantsRSS(c) {
		data, err := s.assembler.BuildFeed(episodes)
		if err != nil {
			s.logger.Error("failed to build rss feed", "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, rssContentType, data)
		return
	}

	c.JSON(http.StatusOK, s.assembler.BuildListing(episodes))
}

func (s *server) handleFile(c *gin.Context) {
	path, ok := s.files.Resolve(c.Param("name"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Header("Content-Type", "audio/mpeg")
	c.File(path)
}

// wantsRSS is true for an explicit ?format=rss override or an Accept header
// naming an XML media type. Browsers commonly send application/xml in their
// default Accept list, so they get the feed rendering.
func wantsRSS(c *gin.Context) bool {
	if strings.EqualFold(strings.TrimSpace(c.Query("format")), "rss") {
		return true
	}
	accept := strings.ToLower(c.GetHeader("Accept"))
	return strings.Contains(accept, "application/rss+xml") ||
		strings.Contains(accept, "application/xml")
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"duration", time.Since(start),
		)
	}
}

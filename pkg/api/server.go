// Package api provides the REST API server for dust
package api

import (
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/frnsys/dust/pkg/export"
	"github.com/frnsys/dust/pkg/progression"
	"github.com/frnsys/dust/pkg/theory"
)

// @title Dust API
// @version 1.0
// @description API for parsing, resolving and generating chord progressions
// @host localhost:8080
// @BasePath /api/v1

type server struct {
	template *progression.ProgressionTemplate
}

// StartServer starts the API server on the specified port, generating
// progressions from the given template.
func StartServer(port int, template *progression.ProgressionTemplate) error {
	r := NewRouter(template)
	return r.Run(fmt.Sprintf(":%d", port))
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(template *progression.ProgressionTemplate) *gin.Engine {
	s := &server{template: template}

	r := gin.Default()
	r.Use(corsMiddleware())

	r.GET("/health", healthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/template", s.handleTemplate)
		v1.POST("/chords/parse", s.handleParse)
		v1.POST("/chords/resolve", s.handleResolve)
		v1.POST("/progressions/generate", s.handleGenerate)
		v1.POST("/progressions/voicelead", s.handleVoiceLead)
		v1.POST("/progressions/export", s.handleExport)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "dust",
	})
}

// handleTemplate godoc
// @Summary Describe the pattern template
// @Description Returns the pattern library progressions are generated from
// @Tags info
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/template [get]
func (s *server) handleTemplate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"resolution": s.template.Resolution.String(),
		"major":      patternStrings(s.template.Major.Patterns),
		"minor":      patternStrings(s.template.Minor.Patterns),
	})
}

func patternStrings(patterns [][]theory.ChordSpec) [][]string {
	out := make([][]string, len(patterns))
	for i, pattern := range patterns {
		out[i] = make([]string, len(pattern))
		for j, cs := range pattern {
			out[i][j] = cs.String()
		}
	}
	return out
}

// KeyRequest names a key by root note and mode.
type KeyRequest struct {
	Root string `json:"root"` // e.g. "C4"
	Mode string `json:"mode"` // "major" or "minor"
}

func parseKey(req KeyRequest) (theory.Key, error) {
	key := theory.DefaultKey()
	if req.Root != "" {
		root, err := theory.ParseNote(req.Root)
		if err != nil {
			return key, err
		}
		key.Root = root
	}
	mode, err := parseMode(req.Mode)
	if err != nil {
		return key, err
	}
	key.Mode = mode
	return key, nil
}

func parseMode(s string) (theory.Mode, error) {
	switch s {
	case "", "major":
		return theory.Major, nil
	case "minor":
		return theory.Minor, nil
	default:
		return theory.Major, fmt.Errorf("unknown mode %q", s)
	}
}

// ParseRequest carries a chord string to validate.
type ParseRequest struct {
	Chord string `json:"chord" binding:"required"`
}

// handleParse godoc
// @Summary Parse a chord
// @Description Parses a roman-numeral chord string and returns its normalized form
// @Tags chords
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/v1/chords/parse [post]
func (s *server) handleParse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cs, err := theory.ParseChord(req.Chord)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chord":      req.Chord,
		"normalized": cs.String(),
	})
}

// ResolveRequest carries a chord string and the key to resolve it in.
type ResolveRequest struct {
	Chord string     `json:"chord" binding:"required"`
	Key   KeyRequest `json:"key"`
}

// handleResolve godoc
// @Summary Resolve a chord to notes
// @Description Resolves a roman-numeral chord for a key and returns its concrete notes
// @Tags chords
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/v1/chords/resolve [post]
func (s *server) handleResolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cs, err := theory.ParseChord(req.Chord)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	key, err := parseKey(req.Key)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chord := cs.ChordForKey(key)
	notes := chord.Notes()
	names := make([]string, len(notes))
	for i, n := range notes {
		names[i] = n.String()
	}

	c.JSON(http.StatusOK, gin.H{
		"chord": cs.String(),
		"key":   gin.H{"root": key.Root.String(), "mode": modeName(key.Mode)},
		"notes": names,
	})
}

// GenerateRequest controls progression generation. Seed is an optional
// starting chord; RNGSeed makes generation reproducible.
type GenerateRequest struct {
	Bars    int    `json:"bars"`
	Mode    string `json:"mode"`
	Seed    string `json:"seed"`
	RNGSeed *int64 `json:"rng_seed"`
}

// handleGenerate godoc
// @Summary Generate a progression
// @Description Generates a chord progression from the pattern library
// @Tags progressions
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/v1/progressions/generate [post]
func (s *server) handleGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bars := req.Bars
	if bars <= 0 {
		bars = 2
	}
	mode, err := parseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rngSeed := time.Now().UnixNano()
	if req.RNGSeed != nil {
		rngSeed = *req.RNGSeed
	}
	rng := rand.New(rand.NewSource(rngSeed))

	var p *progression.Progression
	if req.Seed != "" {
		seed, err := theory.ParseChord(req.Seed)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p = s.template.GenProgressionFromSeed(rng, seed, bars, mode)
	} else {
		p = s.template.GenProgression(rng, bars, mode)
	}

	c.JSON(http.StatusOK, progressionResponse(p))
}

func progressionResponse(p *progression.Progression) gin.H {
	sequence := make([]*string, len(p.Sequence))
	for i, cs := range p.Sequence {
		if cs != nil {
			s := cs.String()
			sequence[i] = &s
		}
	}
	return gin.H{
		"resolution": p.Resolution.String(),
		"bars":       p.Bars(),
		"sequence":   sequence,
	}
}

// VoiceLeadRequest carries the chords to re-voice, in order.
type VoiceLeadRequest struct {
	Chords []string `json:"chords" binding:"required"`
}

// handleVoiceLead godoc
// @Summary Voice-lead a chord sequence
// @Description Re-voices consecutive chords for minimal note movement
// @Tags progressions
// @Accept json
// @Produce json
// @Success 200 {object} map[string][]string
// @Failure 400 {object} map[string]string
// @Router /api/v1/progressions/voicelead [post]
func (s *server) handleVoiceLead(c *gin.Context) {
	var req VoiceLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chords := make([]theory.ChordSpec, len(req.Chords))
	for i, s := range req.Chords {
		cs, err := theory.ParseChord(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		chords[i] = cs
	}

	led := theory.VoiceLead(chords)
	out := make([]string, len(led))
	for i, cs := range led {
		out[i] = cs.String()
	}

	c.JSON(http.StatusOK, gin.H{"chords": out})
}

// ExportRequest lays chords on a tick grid for MIDI rendering. The
// sequence has one entry per tick; null entries are rests.
type ExportRequest struct {
	Sequence   []*string  `json:"sequence" binding:"required"`
	Resolution string     `json:"resolution"`
	Key        KeyRequest `json:"key"`
	Tempo      float64    `json:"tempo"`
}

// handleExport godoc
// @Summary Export a progression as MIDI
// @Description Renders a progression for a key and returns a MIDI file
// @Tags progressions
// @Accept json
// @Produce application/octet-stream
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/progressions/export [post]
func (s *server) handleExport(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resolution := theory.Eighth
	if req.Resolution != "" {
		var err error
		resolution, err = theory.ParseDuration(req.Resolution)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	key, err := parseKey(req.Key)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sequence := make([]*theory.ChordSpec, len(req.Sequence))
	for i, s := range req.Sequence {
		if s == nil {
			continue
		}
		cs, err := theory.ParseChord(*s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sequence[i] = &cs
	}
	p := progression.New(sequence, resolution)

	exporter := export.NewMIDIExporter()
	exporter.SetTempo(req.Tempo)

	data, err := exporter.Generate(p, key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=progression.mid")
	c.Data(http.StatusOK, "audio/midi", data)
}

func modeName(mode theory.Mode) string {
	if mode == theory.Minor {
		return "minor"
	}
	return "major"
}

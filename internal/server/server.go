package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/ontoalign/internal/config"
	"github.com/agenthands/ontoalign/internal/core"
	"github.com/agenthands/ontoalign/internal/core/embedding"
	"github.com/agenthands/ontoalign/internal/core/eval"
	"github.com/agenthands/ontoalign/internal/core/model"
)

type Server struct {
	Config     *config.Config
	Components *core.Components
	Logger     *slog.Logger
}

func NewServer(cfg *config.Config, components *core.Components, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		Config:     cfg,
		Components: components,
		Logger:     logger,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", s.Health)
	r.POST("/align", s.Align)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AlignRequest names two ontology files readable by the server. Threshold
// and Kinds override the configured values for this request only.
type AlignRequest struct {
	Source    string   `json:"source" binding:"required"`
	Target    string   `json:"target" binding:"required"`
	Threshold *float64 `json:"threshold"`
	Kinds     []string `json:"kinds"`
}

type AlignResponse struct {
	*model.AlignmentResult
	Report string `json:"report"`
}

func (s *Server) Align(c *gin.Context) {
	var req AlignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	cfg := *s.Config
	if req.Threshold != nil {
		cfg.Alignment.Threshold = *req.Threshold
	}
	if len(req.Kinds) > 0 {
		cfg.Alignment.Kinds = req.Kinds
	}

	aligner, err := s.Components.NewAligner(&cfg, s.Logger)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := aligner.Align(c.Request.Context(), req.Source, req.Target)
	if err != nil {
		s.Logger.Error("alignment failed", "source", req.Source, "target", req.Target, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrParse) || errors.Is(err, embedding.ErrNoEmbedder) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, AlignResponse{
		AlignmentResult: result,
		Report:          eval.Report(result.Metrics),
	})
}

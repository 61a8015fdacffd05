package handler

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/propscore/leadscore/backend/model"
	"github.com/propscore/leadscore/backend/pkg/logger"
	"github.com/propscore/leadscore/backend/service"
)

type LeadHandler struct {
	classifier service.Classifier // nil while no artifact is loaded
	reranker   *service.Reranker
	ledger     *service.Ledger
}

func NewLeadHandler(classifier service.Classifier, reranker *service.Reranker, ledger *service.Ledger) *LeadHandler {
	return &LeadHandler{
		classifier: classifier,
		reranker:   reranker,
		ledger:     ledger,
	}
}

type ScoreResponse struct {
	LeadID        int     `json:"lead_id"`
	InitialScore  float64 `json:"initial_score"`
	RerankedScore float64 `json:"reranked_score"`
}

type LeadSummary struct {
	LeadID        int     `json:"lead_id"`
	Email         string  `json:"email"`
	InitialScore  float64 `json:"initial_score"`
	RerankedScore float64 `json:"reranked_score"`
	Comments      string  `json:"comments"`
}

// Root reports service liveness.
func (h *LeadHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Lead Scoring API is running",
		"status":  "healthy",
	})
}

// Health reports whether the classifier is loaded and how many leads are held.
func (h *LeadHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"model_loaded": h.classifier != nil,
		"leads_count":  h.ledger.Count(),
	})
}

// Score validates a submitted lead, runs the classifier and the reranker,
// and appends the scored lead to the ledger. The append happens only after
// both scores exist; a failed request leaves the ledger untouched.
func (h *LeadHandler) Score(c *gin.Context) {
	var lead model.LeadInput
	if err := c.ShouldBindJSON(&lead); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if verr := lead.Validate(); verr != nil {
		logger.Warn(c.Request.Context(), "lead rejected", "field", verr.Field, "reason", verr.Message)
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
		return
	}

	if h.classifier == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Model not loaded. Train a model and restart the service.",
		})
		return
	}

	probability, err := h.classifier.Predict(lead.Features())
	if err != nil {
		var perr *service.PredictionError
		if errors.As(err, &perr) {
			logger.Error(c.Request.Context(), "prediction failed", "error", perr.Cause)
		} else {
			logger.Error(c.Request.Context(), "prediction failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	initialScore := probability * 100
	rerankedScore := h.reranker.Rerank(initialScore, lead.Comments)

	leadID := h.ledger.Append(lead, initialScore, rerankedScore)

	logger.Info(c.Request.Context(), "lead scored",
		"lead_id", leadID,
		"initial_score", round2(initialScore),
		"reranked_score", round2(rerankedScore),
	)

	c.JSON(http.StatusOK, ScoreResponse{
		LeadID:        leadID,
		InitialScore:  round2(initialScore),
		RerankedScore: round2(rerankedScore),
	})
}

// List returns every scored lead in arrival order.
func (h *LeadHandler) List(c *gin.Context) {
	snapshot := h.ledger.List()

	leads := make([]LeadSummary, 0, len(snapshot))
	for _, s := range snapshot {
		leads = append(leads, LeadSummary{
			LeadID:        s.LeadID,
			Email:         s.Lead.Email,
			InitialScore:  round2(s.InitialScore),
			RerankedScore: round2(s.RerankedScore),
			Comments:      s.Lead.Comments,
		})
	}

	c.JSON(http.StatusOK, leads)
}

// Stats returns aggregates recomputed from the current ledger snapshot.
func (h *LeadHandler) Stats(c *gin.Context) {
	agg := service.ComputeStats(h.ledger.List())

	c.JSON(http.StatusOK, model.Stats{
		TotalLeads:       agg.TotalLeads,
		HighIntentLeads:  agg.HighIntentLeads,
		AvgInitialScore:  round2(agg.AvgInitialScore),
		AvgRerankedScore: round2(agg.AvgRerankedScore),
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

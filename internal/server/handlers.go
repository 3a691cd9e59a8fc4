package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clauselens/clauselens/internal/analytics"
	"github.com/clauselens/clauselens/internal/compliance"
	"github.com/clauselens/clauselens/internal/compliance/service"
	"github.com/clauselens/clauselens/internal/suggest"
	"github.com/clauselens/clauselens/pkg/errors"
)

// analyzeRequest is the HTTP shape of a contract analysis call; the
// contract metadata rides along so analytics can group by type later.
type analyzeRequest struct {
	service.AnalyzeRequest
	ContractType string `json:"contract_type,omitempty"`
}

// analyzeResponse returns the analysis plus any per-framework
// configuration warnings (frameworks without a rule set are skipped, not
// fatal).
type analyzeResponse struct {
	Analysis *compliance.ContractComplianceAnalysis `json:"analysis"`
	Warnings []string                               `json:"warnings,omitempty"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ContractID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contract_id is required"})
		return
	}

	analysis, err := s.compliance.AnalyzeContract(c.Request.Context(), req.AnalyzeRequest)
	if err != nil && analysis == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := analyzeResponse{Analysis: analysis}
	if err != nil {
		resp.Warnings = append(resp.Warnings, err.Error())
	}

	if s.store != nil {
		_ = s.store.SaveContract(c.Request.Context(), compliance.Contract{
			ID:           req.ContractID,
			Name:         req.DocumentName,
			ContractType: req.ContractType,
			ClientID:     req.ClientID,
			Jurisdiction: req.Jurisdiction,
			CreatedAt:    time.Now(),
		})
		_ = s.store.SaveAnalysis(c.Request.Context(), *analysis)
	}

	c.JSON(http.StatusOK, resp)
}

type updateRulesRequest struct {
	Rules []compliance.ComplianceRule `json:"rules"`
}

func (s *Server) handleUpdateRules(c *gin.Context) {
	var req updateRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.compliance.Repository().Update(req.Rules); err != nil {
		status := http.StatusInternalServerError
		if errors.IsKind(err, errors.KindValidation) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"version": s.compliance.Repository().Version(),
		"rules":   len(req.Rules),
	})
}

func (s *Server) handleListRules(c *gin.Context) {
	framework := compliance.Framework(c.Param("framework"))
	ruleSet, err := s.compliance.Repository().ActiveRules(framework, c.Query("jurisdiction"), c.Query("client_id"))
	if err != nil {
		if errors.IsKind(err, errors.KindConfigurationMissing) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"framework": framework, "rules": ruleSet})
}

func (s *Server) handleRiskAnalytics(c *gin.Context) {
	period := analytics.Period{Label: c.Query("label")}
	if v := c.Query("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start must be RFC3339"})
			return
		}
		period.Start = t
	}
	if v := c.Query("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end must be RFC3339"})
			return
		}
		period.End = t
	}

	ctx := c.Request.Context()
	analyses, err := s.store.ListAnalyses(ctx, period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	contracts, err := s.store.ListContracts(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := s.analytics.ComputeRiskAnalytics(ctx, analyses, contracts, period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSuggestions(c *gin.Context) {
	var req suggest.SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.OriginalClause == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "original_clause is required"})
		return
	}

	suggestions, err := s.suggester.GenerateSuggestions(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

type templateMatchRequest struct {
	Clause string `json:"clause"`
	Limit  int    `json:"limit,omitempty"`
}

func (s *Server) handleTemplateMatch(c *gin.Context) {
	var req templateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Clause == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "clause is required"})
		return
	}
	if req.Limit <= 0 {
		req.Limit = 5
	}

	matches, err := s.suggester.FindTemplateMatches(c.Request.Context(), req.Clause, req.Limit)
	if err != nil {
		status := http.StatusBadGateway
		if errors.IsKind(err, errors.KindProviderTimeout) {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

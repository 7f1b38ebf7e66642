package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/auth"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/budget"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/task"
)

// healthHandler reports process liveness and the concept store's current
// fill level, with no authentication required.
func (s *Server) healthHandler(c *gin.Context) {
	store := s.mem.Store()
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"logical_time":     s.mem.Clock().Now(),
		"concept_size":     store.Size(),
		"concept_capacity": store.Capacity(),
	})
}

// metricsHandler exposes a minimal JSON metrics snapshot.
func (s *Server) metricsHandler(c *gin.Context) {
	store := s.mem.Store()
	c.JSON(http.StatusOK, gin.H{
		"concept_store_size":     store.Size(),
		"concept_store_capacity": store.Capacity(),
		"logical_time":           s.mem.Clock().Now(),
	})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// loginHandler authenticates against the RBAC user store and issues a
// token pair.
func (s *Server) loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	user, err := s.rbac.Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}

	permissions, err := s.rbac.GetUserPermissions(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "permission_lookup_failed"})
		return
	}

	role := auth.RoleUser
	if len(user.Roles) > 0 {
		role = user.Roles[0]
	}

	tokenPair, err := s.jwtSvc.GenerateToken(user.ID, user.Username, role, permissions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token_generation_failed"})
		return
	}

	c.JSON(http.StatusOK, tokenPair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (s *Server) refreshTokenHandler(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	tokenPair, err := s.jwtSvc.RefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_refresh_token"})
		return
	}

	c.JSON(http.StatusOK, tokenPair)
}

type submitTaskRequest struct {
	Term        string   `json:"term" binding:"required"`
	Punctuation string   `json:"punctuation"` // "judgment" (default), "question", "goal"
	Frequency   *float64 `json:"frequency"`
	Confidence  *float64 `json:"confidence"`
	Priority    *float64 `json:"priority"`
	Durability  *float64 `json:"durability"`
	Quality     *float64 `json:"quality"`
}

// submitTaskHandler parses a judgment/question/goal sentence via the thin
// term reader and enqueues it as input (spec §4.7: "POST /api/v1/tasks
// submits a judgment/question/goal sentence ... into inputTasks").
func (s *Server) submitTaskHandler(c *gin.Context) {
	var req submitTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	sanitized := auth.SanitizeInput(req.Term)
	parsed, err := s.reader.Parse(sanitized)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_term", "message": err.Error()})
		return
	}

	punctuation := task.Judgment
	switch req.Punctuation {
	case "question":
		punctuation = task.Question
	case "goal":
		punctuation = task.Goal
	}

	var truth *task.Truth
	if punctuation == task.Judgment {
		freq, conf := 1.0, 0.9
		if req.Frequency != nil {
			freq = *req.Frequency
		}
		if req.Confidence != nil {
			conf = *req.Confidence
		}
		truth = &task.Truth{Frequency: freq, Confidence: conf}
	}

	priority, durability, quality := 0.8, 0.8, 0.5
	if req.Priority != nil {
		priority = *req.Priority
	}
	if req.Durability != nil {
		durability = *req.Durability
	}
	if req.Quality != nil {
		quality = *req.Quality
	}

	now := s.mem.Clock().Now()
	b := budget.New(priority, durability, quality, now)

	t := task.New(task.Sentence{
		Term:        parsed,
		Punctuation: punctuation,
		Truth:       truth,
		Stamp:       task.Stamp{OccurrenceTime: task.Eternal, Evidence: []task.Serial{s.mem.Serial().Next()}},
	}, b, true)

	s.mem.AddTask(t, false)

	c.JSON(http.StatusAccepted, gin.H{"task_id": t.Name(), "term": parsed.String()})
}

type stepCyclesRequest struct {
	Count int `json:"count"`
}

// stepCyclesHandler advances the cycle by a bounded number of steps and
// reports how many premises were executed per step.
func (s *Server) stepCyclesHandler(c *gin.Context) {
	var req stepCyclesRequest
	_ = c.ShouldBindJSON(&req)
	if req.Count <= 0 {
		req.Count = 1
	}
	if req.Count > 1000 {
		req.Count = 1000
	}

	premisesPerStep := make([]int, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		premisesPerStep = append(premisesPerStep, s.cycle.Step())
	}

	c.JSON(http.StatusOK, gin.H{
		"steps":             req.Count,
		"premises_per_step": premisesPerStep,
		"logical_time":      s.mem.Clock().Now(),
	})
}

// getConceptHandler inspects a concept's budget, beliefs, and term-link
// templates without mutating the store.
func (s *Server) getConceptHandler(c *gin.Context) {
	raw := c.Param("term")
	parsed, err := s.reader.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_term", "message": err.Error()})
		return
	}

	cpt := s.mem.Store().Lookup(parsed)
	if cpt == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "concept_not_found"})
		return
	}

	beliefs := make([]gin.H, 0, len(cpt.Beliefs()))
	for _, belief := range cpt.Beliefs() {
		entry := gin.H{"term": belief.Sentence.Term.String()}
		if belief.Sentence.Truth != nil {
			entry["frequency"] = belief.Sentence.Truth.Frequency
			entry["confidence"] = belief.Sentence.Truth.Confidence
		}
		beliefs = append(beliefs, entry)
	}

	templates := make([]string, 0, len(cpt.TermLinkTemplates()))
	for _, tmpl := range cpt.TermLinkTemplates() {
		templates = append(templates, tmpl.String())
	}

	c.JSON(http.StatusOK, gin.H{
		"term":       cpt.Term().String(),
		"priority":   cpt.Budget().Priority,
		"durability": cpt.Budget().Durability,
		"quality":    cpt.Budget().Quality,
		"beliefs":    beliefs,
		"templates":  templates,
	})
}

package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"goalbridge/internal/app/engine"
	"goalbridge/internal/domain/framework"
	"goalbridge/internal/shared/logging"
)

// Handler serves the translation API over an engine pool.
type Handler struct {
	pool   *engine.Pool
	logger logging.Logger
}

func NewHandler(pool *engine.Pool, logger logging.Logger) *Handler {
	return &Handler{pool: pool, logger: logging.OrNop(logger)}
}

type scope struct {
	OrganizationID string `json:"organization_id"`
	DepartmentID   string `json:"department_id"`
}

type translateRequest struct {
	scope
	Objective       framework.Fields       `json:"objective" binding:"required"`
	TargetFramework string                 `json:"target_framework" binding:"required"`
	BusinessArea    framework.BusinessArea `json:"business_area"`
	UserID          string                 `json:"user_id"`
	Overrides       map[string]any         `json:"overrides"`
	SkipTracking    bool                   `json:"skip_tracking"`
}

type bulkRequest struct {
	scope
	Items           []framework.Fields `json:"items" binding:"required"`
	SourceFramework string             `json:"source_framework"`
	TargetFramework string             `json:"target_framework" binding:"required"`
}

type validateRequest struct {
	Objective       framework.Fields `json:"objective" binding:"required"`
	TargetFramework string           `json:"target_framework" binding:"required"`
}

type compatibilityRequest struct {
	Objectives      []framework.Fields `json:"objectives"`
	TargetFramework string             `json:"target_framework" binding:"required"`
}

type hybridRequest struct {
	scope
	Objective    framework.Fields       `json:"objective" binding:"required"`
	BusinessArea framework.BusinessArea `json:"business_area"`
	UserID       string                 `json:"user_id"`
}

type bulkResponse struct {
	Results   []engine.BulkResult `json:"results"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
}

// resolve fills the organization from the header when the body omits it and
// returns the pooled engine for the scope.
func (h *Handler) resolve(c *gin.Context, s scope) (*engine.Engine, bool) {
	if s.OrganizationID == "" {
		s.OrganizationID = strings.TrimSpace(c.GetHeader(headerOrganizationID))
	}
	e, err := h.pool.Get(c.Request.Context(), s.OrganizationID, s.DepartmentID)
	if err != nil {
		h.writeJSONError(c, http.StatusInternalServerError, "failed to load organization configuration", err)
		return nil, false
	}
	return e, true
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.writeJSONError(c, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	return true
}

func (h *Handler) decode(c *gin.Context, fields framework.Fields) (framework.UniversalObjective, bool) {
	obj, err := framework.DecodeUniversal(fields)
	if err != nil {
		h.writeMappedError(c, err, http.StatusBadRequest, "invalid objective")
		return framework.UniversalObjective{}, false
	}
	return obj, true
}

func (h *Handler) HandleTranslate(c *gin.Context) {
	var req translateRequest
	if !h.bind(c, &req) {
		return
	}
	obj, ok := h.decode(c, req.Objective)
	if !ok {
		return
	}
	e, ok := h.resolve(c, req.scope)
	if !ok {
		return
	}
	view, err := e.TranslateObjective(c.Request.Context(), obj, req.TargetFramework, engine.TranslateOptions{
		SkipTracking: req.SkipTracking,
		BusinessArea: req.BusinessArea,
		UserID:       req.UserID,
		Overrides:    req.Overrides,
	})
	if err != nil {
		h.writeMappedError(c, err, http.StatusInternalServerError, "translation failed")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) HandlePreview(c *gin.Context) {
	var req translateRequest
	if !h.bind(c, &req) {
		return
	}
	obj, ok := h.decode(c, req.Objective)
	if !ok {
		return
	}
	e, ok := h.resolve(c, req.scope)
	if !ok {
		return
	}
	preview, err := e.PreviewTranslation(c.Request.Context(), obj, req.TargetFramework, engine.TranslateOptions{
		BusinessArea: req.BusinessArea,
		Overrides:    req.Overrides,
	})
	if err != nil {
		h.writeMappedError(c, err, http.StatusInternalServerError, "preview failed")
		return
	}
	c.JSON(http.StatusOK, preview)
}

func (h *Handler) HandleBulkTranslate(c *gin.Context) {
	var req bulkRequest
	if !h.bind(c, &req) {
		return
	}
	e, ok := h.resolve(c, req.scope)
	if !ok {
		return
	}
	source := req.SourceFramework
	if source == "" {
		source = framework.Universal
	}
	results, err := e.BulkTranslate(c.Request.Context(), req.Items, source, req.TargetFramework)
	if err != nil {
		h.writeMappedError(c, err, http.StatusInternalServerError, "bulk translation failed")
		return
	}
	resp := bulkResponse{Results: results}
	for _, r := range results {
		if r.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) HandleValidate(c *gin.Context) {
	var req validateRequest
	if !h.bind(c, &req) {
		return
	}
	obj, ok := h.decode(c, req.Objective)
	if !ok {
		return
	}
	result, err := h.pool.Bare().ValidateTranslation(obj, req.TargetFramework)
	if err != nil {
		h.writeMappedError(c, err, http.StatusInternalServerError, "validation failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) HandleCompatibility(c *gin.Context) {
	var req compatibilityRequest
	if !h.bind(c, &req) {
		return
	}
	objs := make([]framework.UniversalObjective, 0, len(req.Objectives))
	for _, fields := range req.Objectives {
		obj, ok := h.decode(c, fields)
		if !ok {
			return
		}
		objs = append(objs, obj)
	}
	summary, err := h.pool.Bare().CalculateCompatibilityScore(objs, req.TargetFramework)
	if err != nil {
		h.writeMappedError(c, err, http.StatusInternalServerError, "compatibility scoring failed")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) HandleRecommendation(c *gin.Context) {
	e, ok := h.resolve(c, scope{OrganizationID: c.Param("org"), DepartmentID: c.Query("department_id")})
	if !ok {
		return
	}
	rec, err := e.RecommendFramework(c.Request.Context())
	if err != nil {
		h.writeMappedError(c, err, http.StatusInternalServerError, "recommendation failed")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) HandleHybrid(c *gin.Context) {
	var req hybridRequest
	if !h.bind(c, &req) {
		return
	}
	obj, ok := h.decode(c, req.Objective)
	if !ok {
		return
	}
	e, ok := h.resolve(c, req.scope)
	if !ok {
		return
	}
	view, err := e.TranslateForHybrid(c.Request.Context(), obj, req.BusinessArea, engine.TranslateOptions{UserID: req.UserID})
	if err != nil {
		h.writeMappedError(c, err, http.StatusInternalServerError, "hybrid translation failed")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) HandleFrameworks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"frameworks": h.pool.Bare().AvailableFrameworks()})
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker func(ctx context.Context) error

func (h *Handler) healthHandler(check HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			if err := check(c.Request.Context()); err != nil {
				h.logger.Warn("health check failed: %v", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

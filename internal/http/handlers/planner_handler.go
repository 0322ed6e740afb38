// README: Planner handlers for the staged and combined pipeline endpoints.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"kairos/internal/modules/usage"
	"kairos/internal/planner"
)

// stageTimeout bounds a single oracle round-trip; planTimeout covers the
// whole fetch-and-curate flow including the map providers.
const (
	stageTimeout = 2 * time.Minute
	planTimeout  = 6 * time.Minute
)

// StageService exposes the four pipeline stages and the combined variant.
type StageService interface {
	BuildFetchProfile(ctx context.Context, destination string) planner.FetchProfile
	StructureRegions(ctx context.Context, destination string, pool []planner.MetaPlace) (planner.Structure, error)
	CurateRegions(ctx context.Context, st planner.Structure, pool []planner.MetaPlace) (planner.Structure, error)
	DeriveTravelProfile(ctx context.Context, curated planner.Structure) (planner.TravelProfile, error)
	BuildDestinationContext(ctx context.Context, destination string, pool []planner.MetaPlace) (planner.DestinationContext, error)
}

// PlanService runs the full destination flow including fetch and caching.
type PlanService interface {
	Plan(ctx context.Context, destination string) (planner.DestinationContext, error)
}

// UsageService reports accumulated oracle usage.
type UsageService interface {
	Report(ctx context.Context, destination string) ([]usage.Record, error)
}

type PlannerHandler struct {
	stages StageService
	plans  PlanService
	usage  UsageService
}

func NewPlannerHandler(stages StageService, plans PlanService, usageSvc UsageService) *PlannerHandler {
	return &PlannerHandler{stages: stages, plans: plans, usage: usageSvc}
}

type destinationReq struct {
	Destination string `json:"destination"`
}

func (r *destinationReq) bind(c *gin.Context) bool {
	if err := c.ShouldBindJSON(r); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return false
	}
	r.Destination = strings.TrimSpace(r.Destination)
	if r.Destination == "" {
		writeError(c, http.StatusBadRequest, "missing destination")
		return false
	}
	return true
}

// Stage0 handles POST /api/stage0. Always 200: a failed profile build
// degrades to the static default.
func (h *PlannerHandler) Stage0(c *gin.Context) {
	var req destinationReq
	if !req.bind(c) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), stageTimeout)
	defer cancel()

	writeJSON(c, http.StatusOK, h.stages.BuildFetchProfile(ctx, req.Destination))
}

type stage1Req struct {
	Destination string              `json:"destination"`
	Places      []planner.MetaPlace `json:"places"`
}

// Stage1 handles POST /api/stage1.
func (h *PlannerHandler) Stage1(c *gin.Context) {
	var req stage1Req
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.Destination = strings.TrimSpace(req.Destination)
	if req.Destination == "" {
		writeError(c, http.StatusBadRequest, "missing destination")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), stageTimeout)
	defer cancel()

	st, err := h.stages.StructureRegions(ctx, req.Destination, req.Places)
	if err != nil {
		writePipelineError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, st)
}

type stage2Req struct {
	Structure    planner.Structure   `json:"structure"`
	MetadataPool []planner.MetaPlace `json:"metadata_pool"`
}

// Stage2 handles POST /api/stage2.
func (h *PlannerHandler) Stage2(c *gin.Context) {
	var req stage2Req
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Structure.Regions) == 0 {
		writeError(c, http.StatusBadRequest, "missing structure")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), stageTimeout)
	defer cancel()

	curated, err := h.stages.CurateRegions(ctx, req.Structure, req.MetadataPool)
	if err != nil {
		writePipelineError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, curated)
}

// Stage3 handles POST /api/stage3. The body is the curated structure
// itself, not a wrapper object.
func (h *PlannerHandler) Stage3(c *gin.Context) {
	var curated planner.Structure
	if err := c.ShouldBindJSON(&curated); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if len(curated.Regions) == 0 {
		writeError(c, http.StatusBadRequest, "missing curated structure")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), stageTimeout)
	defer cancel()

	tp, err := h.stages.DeriveTravelProfile(ctx, curated)
	if err != nil {
		writePipelineError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, tp)
}

type contextReq struct {
	Destination string              `json:"destination"`
	Places      []planner.MetaPlace `json:"places"`
}

// Context handles POST /api/context: the combined pipeline over a
// caller-supplied metadata pool.
func (h *PlannerHandler) Context(c *gin.Context) {
	var req contextReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.Destination = strings.TrimSpace(req.Destination)
	if req.Destination == "" {
		writeError(c, http.StatusBadRequest, "missing destination")
		return
	}
	if len(req.Places) == 0 {
		writeError(c, http.StatusBadRequest, "missing places")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), planTimeout)
	defer cancel()

	dc, err := h.stages.BuildDestinationContext(ctx, req.Destination, req.Places)
	if err != nil {
		writePipelineError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, dc)
}

// Plan handles POST /api/plan: fetch, curate and geocode one destination
// end to end, with caching.
func (h *PlannerHandler) Plan(c *gin.Context) {
	var req destinationReq
	if !req.bind(c) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), planTimeout)
	defer cancel()

	dc, err := h.plans.Plan(ctx, req.Destination)
	if err != nil {
		writePipelineError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, dc)
}

// Usage handles GET /api/usage/:destination.
func (h *PlannerHandler) Usage(c *gin.Context) {
	if h.usage == nil {
		writeError(c, http.StatusNotFound, "usage accounting not configured")
		return
	}
	destination := strings.TrimSpace(c.Param("destination"))
	if destination == "" {
		writeError(c, http.StatusBadRequest, "missing destination")
		return
	}

	records, err := h.usage.Report(c.Request.Context(), destination)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"destination": destination, "stages": records})
}

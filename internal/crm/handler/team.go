package handler

import (
	"net/http"
	"strconv"

	"salescrm_backend/internal/crm/transport"
	"salescrm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterTeamRoutes mounts representative and target routes on an
// authenticated group. Admin-only checks live in the service layer.
func (h *Handler) RegisterTeamRoutes(rg *gin.RouterGroup) {
	rg.GET("/reps", h.ListReps)
	rg.GET("/reps/loads", h.RepLoads)
	rg.GET("/targets/:memberId", h.GetTarget)
	rg.PUT("/targets", h.UpsertTarget)
}

// RegisterDashboardRoutes mounts the read-model routes.
func (h *Handler) RegisterDashboardRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard/pipeline", h.PipelineSummary)
	rg.GET("/brands", h.ListBrands)
}

func (h *Handler) ListReps(c *gin.Context) {
	reps, err := h.svc.ListReps(actorFrom(c))
	if err != nil {
		httpkit.Fail(c, err)
		return
	}

	httpkit.OK(c, reps)
}

func (h *Handler) RepLoads(c *gin.Context) {
	loads, err := h.svc.RepLoads(actorFrom(c))
	if err != nil {
		httpkit.Fail(c, err)
		return
	}

	httpkit.OK(c, loads)
}

func (h *Handler) GetTarget(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		httpkit.Error(c, http.StatusBadRequest, "month must be between 1 and 12", nil)
		return
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "year is required", nil)
		return
	}

	target, err := h.svc.GetTarget(actorFrom(c), memberID, month, year)
	if err != nil {
		httpkit.Fail(c, err)
		return
	}

	httpkit.OK(c, target)
}

func (h *Handler) UpsertTarget(c *gin.Context) {
	var req transport.UpsertTargetRequest
	if !h.bind(c, &req) {
		return
	}

	target, err := h.svc.UpsertTarget(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		httpkit.Fail(c, err)
		return
	}

	httpkit.OK(c, target)
}

func (h *Handler) PipelineSummary(c *gin.Context) {
	httpkit.OK(c, h.svc.PipelineSummary(actorFrom(c)))
}

func (h *Handler) ListBrands(c *gin.Context) {
	httpkit.OK(c, h.svc.BrandOptions(actorFrom(c)))
}

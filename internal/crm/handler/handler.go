// Package handler exposes the CRM module over HTTP. Handlers bind and
// validate request shapes, build the acting identity, and delegate to the
// service layer.
package handler

import (
	"net/http"

	"salescrm_backend/internal/crm/domain"
	"salescrm_backend/internal/crm/service"
	"salescrm_backend/internal/crm/transport"
	"salescrm_backend/platform/httpkit"
	"salescrm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterClientRoutes mounts the client lifecycle routes on an
// authenticated group.
func (h *Handler) RegisterClientRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/due-followups", h.DueFollowUps)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.PATCH("/:id/status", h.Transition)
	rg.PUT("/:id/assign", h.Assign)
	rg.POST("/:id/follow-up", h.ScheduleFollowUp)
	rg.POST("/:id/follow-up/complete", h.CompleteTask)
	rg.POST("/:id/quick-call", h.QuickCall)
	rg.GET("/:id/activities", h.ListActivities)
	rg.POST("/:id/activities", h.LogActivity)
}

// RegisterAssignmentRoutes mounts the batch assignment routes on the
// admin-only group.
func (h *Handler) RegisterAssignmentRoutes(rg *gin.RouterGroup) {
	rg.POST("/bulk", h.BulkAssign)
	rg.POST("/auto", h.AutoAssign)
}

// actorFrom projects the authenticated identity into the domain actor shape.
func actorFrom(c *gin.Context) domain.Actor {
	id := httpkit.GetIdentity(c)
	return domain.Actor{
		ID:               id.UserID(),
		Name:             id.Name(),
		Role:             domain.Role(id.Role()),
		AllowedProvinces: id.AllowedProvinces(),
		AllowedBrands:    id.AllowedBrands(),
	}
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}

// bind decodes the JSON body and runs struct validation. On failure the
// response is already written.
func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

func (h *Handler) List(c *gin.Context) {
	var q transport.ListClientsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	page, err := h.svc.ListClients(actorFrom(c), q)
	if err != nil {
		httpkit.Fail(c, err)
		return
	}

	httpkit.OK(c, httpkit.ListResponse{
		Items:      page.Items,
		TotalCount: page.Total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		Seq:        page.Seq,
	})
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateClientRequest
	if !h.bind(c, &req) {
		return
	}

	client, err := h.svc.CreateClient(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		httpkit.Fail(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, client)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	client, err := h.svc.GetClient(actorFrom(c), id)
	if err != nil {
		httpkit.Fail(c, err)
		return
	}

	httpkit.OK(c, client)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.UpdateClientRequest
	if !h.bind(c, &req) {
		return
	}

	client, err := h.svc.UpdateClient(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		httpkit.Fail(c, err)
		return
	}

	httpkit.OK(c, client)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteClient(c.Request.Context(), actorFrom(c), id); err != nil {
		httpkit.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Transition(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.TransitionRequest
	if !h.bind(c, &req) {
		return
	}

	client, err := h.svc.Transition(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		httpkit.Fail(c, err)
		return
	}

	httpkit.OK(c, client)
}

func (h *Handler) Assign(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.AssignRequest
	if !h.bind(c, &req) {
		return
	}

	client, err := h.svc.Assign(c.Request.Context(), actorFrom(c), id, req.RepID)
	if err != nil {
		httpkit.Fail(c, err)
		return
	}

	httpkit.OK(c, client)
}

func (h *Handler) BulkAssign(c *gin.Context) {
	var req transport.BulkAssignRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.BulkAssign(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		httpkit.Fail(c, err)
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) AutoAssign(c *gin.Context) {
	var req transport.AutoAssignRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.AutoAssign(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		httpkit.Fail(c, err)
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) ScheduleFollowUp(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.ScheduleFollowUpRequest
	if !h.bind(c, &req) {
		return
	}

	client, err := h.svc.ScheduleFollowUp(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		httpkit.Fail(c, err)
		return
	}

	httpkit.OK(c, client)
}

func (h *Handler) CompleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.CompleteTaskRequest
	if !h.bind(c, &req) {
		return
	}

	client, err := h.svc.CompleteFollowUpTask(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		httpkit.Fail(c, err)
		return
	}

	httpkit.OK(c, client)
}

func (h *Handler) DueFollowUps(c *gin.Context) {
	httpkit.OK(c, h.svc.ListDueFollowUps(actorFrom(c)))
}

func (h *Handler) QuickCall(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.QuickCallRequest
	if !h.bind(c, &req) {
		return
	}

	client, err := h.svc.QuickCall(c.Request.Context(), actorFrom(c), id, req.Description)
	if err != nil {
		httpkit.Fail(c, err)
		return
	}

	httpkit.OK(c, client)
}

func (h *Handler) ListActivities(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	activities, err := h.svc.ListActivities(actorFrom(c), id)
	if err != nil {
		httpkit.Fail(c, err)
		return
	}

	httpkit.OK(c, activities)
}

func (h *Handler) LogActivity(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.LogActivityRequest
	if !h.bind(c, &req) {
		return
	}

	activity, err := h.svc.LogActivity(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		httpkit.Fail(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, activity)
}

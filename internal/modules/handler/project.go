package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/obraplan/obraplan/internal/middleware"
	"github.com/obraplan/obraplan/internal/modules/model"
	"github.com/obraplan/obraplan/internal/modules/serializer"
	"github.com/obraplan/obraplan/internal/modules/service"
	"github.com/obraplan/obraplan/internal/pkg/dates"
)

type ProjectHandler struct {
	svc service.ProjectService
}

func NewProjectHandler(s service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: s}
}

type CreateProjectReq struct {
	ProjectName   string        `json:"project_name" binding:"required"`
	ClientName    string        `json:"client_name" binding:"required"`
	ClientAddress model.Address `json:"client_address" binding:"required"`
	SiteAddress   model.Address `json:"site_address" binding:"required"`
	ProductID     string        `json:"product_id" binding:"required,uuid"`
	StartDate     string        `json:"start_date" binding:"required" example:"2024-06-01"`
	Status        string        `json:"status" example:"planned"`
}

// CreateProject godoc
//
//	@Summary		Create project
//	@Description	Create a project from a product template, computing its step schedule
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			body	body	CreateProjectReq	true	"Project payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Project}
//	@Router			/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	req := CreateProjectReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	p, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	start, err := dates.Parse(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid start_date", err))
		return
	}

	project, err := h.svc.Create(c.Request.Context(), service.CreateProjectInput{
		UserID:        p.UserID,
		ProjectName:   req.ProjectName,
		ClientName:    req.ClientName,
		ClientAddress: req.ClientAddress,
		SiteAddress:   req.SiteAddress,
		ProductID:     productID,
		StartDate:     start,
		Status:        model.ProjectStatus(req.Status),
	})
	if err != nil {
		c.JSON(serializer.FromErr(err))
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: project})
}

// ListProjects godoc
//
//	@Summary		List projects
//	@Description	List the authenticated user's projects with condensed schedules
//	@Tags			project
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]service.ProjectListItem}
//	@Router			/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	p, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	items, err := h.svc.ListByUser(c.Request.Context(), p.UserID)
	if err != nil {
		c.JSON(serializer.FromErr(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: items})
}

// GetProject godoc
//
//	@Summary		Get project
//	@Description	Get a project with its product, steps and full schedule
//	@Tags			project
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Router			/projects/{project_id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	p, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	project, err := h.svc.GetByID(c.Request.Context(), p.UserID, projectID)
	if err != nil {
		c.JSON(serializer.FromErr(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: project})
}

type UpdateProjectReq struct {
	ProjectName   *string        `json:"project_name"`
	ClientName    *string        `json:"client_name"`
	ClientAddress *model.Address `json:"client_address"`
	SiteAddress   *model.Address `json:"site_address"`
	Status        *string        `json:"status"`
	StartDate     *string        `json:"start_date" example:"2024-06-15"`
}

// UpdateProject godoc
//
//	@Summary		Update project
//	@Description	Patch mutable project fields. Changing start_date replans pending steps.
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string				true	"Project ID"	Format(uuid)
//	@Param			body		body	UpdateProjectReq	true	"Fields to change"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Router			/projects/{project_id} [patch]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	req := UpdateProjectReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	p, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	patch := service.ProjectPatch{
		ProjectName:   req.ProjectName,
		ClientName:    req.ClientName,
		ClientAddress: req.ClientAddress,
		SiteAddress:   req.SiteAddress,
	}
	if req.Status != nil {
		status := model.ProjectStatus(*req.Status)
		patch.Status = &status
	}
	if req.StartDate != nil {
		start, err := dates.Parse(*req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid start_date", err))
			return
		}
		patch.StartDate = &start
	}

	project, err := h.svc.Update(c.Request.Context(), p.UserID, projectID, patch)
	if err != nil {
		c.JSON(serializer.FromErr(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: project})
}

// DeleteProject godoc
//
//	@Summary		Delete project
//	@Description	Delete a project and its schedule rows
//	@Tags			project
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/projects/{project_id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	p, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), p.UserID, projectID); err != nil {
		c.JSON(serializer.FromErr(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Msg: "deleted"})
}

type UpdateStepStatusReq struct {
	Status     string  `json:"status" binding:"required,oneof=in_progress completed"`
	ActualDate *string `json:"actual_date" example:"2024-06-20"`
}

// UpdateStepStatus godoc
//
//	@Summary		Update step status
//	@Description	Mark a scheduled step in progress or completed. Completing a step shifts every later step by the schedule slip.
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string				true	"Project ID"	Format(uuid)
//	@Param			schedule_id	path	string				true	"Schedule ID"	Format(uuid)
//	@Param			body		body	UpdateStepStatusReq	true	"Target status and optional actual date"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Router			/projects/{project_id}/schedules/{schedule_id} [patch]
func (h *ProjectHandler) UpdateStepStatus(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	scheduleID, err := uuid.Parse(c.Param("schedule_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	req := UpdateStepStatusReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	p, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	raw := ""
	if req.ActualDate != nil {
		raw = *req.ActualDate
	}
	actualDate, err := dates.ParseOptional(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid actual_date", err))
		return
	}

	project, err := h.svc.ApplyStepStatus(c.Request.Context(), p.UserID, projectID, scheduleID, req.Status, actualDate)
	if err != nil {
		c.JSON(serializer.FromErr(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: project})
}

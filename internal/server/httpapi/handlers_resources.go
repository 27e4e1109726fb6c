package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

type listResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func newListResponse[T any](items []T, p models.Page) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Limit: p.Limit, Offset: p.Offset}
}

type pageQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

func (q pageQuery) page() models.Page {
	return models.Page{Limit: q.Limit, Offset: q.Offset}.Normalize()
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: malformed id %q", common.ErrorInvalidInput, c.Param("id"))
	}
	return id, nil
}

// ---- users ----

type userQuery struct {
	pageQuery
	Username string `form:"username"`
	Email    string `form:"email"`
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Phone    *string `json:"phone"`
}

func (h *handlers) listUsers(c *gin.Context) {
	var q userQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, h.log, badRequest(err))
		return
	}

	page := q.page()
	list, err := h.users.List(c.Request.Context(), identityFrom(c), models.UserFilter{
		Username: q.Username,
		Email:    q.Email,
		Page:     page,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, newListResponse(list, page))
}

func (h *handlers) getUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	user, err := h.users.Get(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *handlers) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, badRequest(err))
		return
	}

	user, err := h.users.Create(c.Request.Context(), identityFrom(c), services.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Phone:    req.Phone,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *handlers) updateUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, badRequest(err))
		return
	}

	user, err := h.users.Update(c.Request.Context(), identityFrom(c), id, models.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *handlers) deleteUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.users.Delete(c.Request.Context(), identityFrom(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ---- projects ----

type projectQuery struct {
	pageQuery
	Title   string `form:"title"`
	OwnerID int64  `form:"owner_id"`
}

type projectRequest struct {
	Title string `json:"title" binding:"required"`
}

func (h *handlers) listProjects(c *gin.Context) {
	var q projectQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, h.log, badRequest(err))
		return
	}

	page := q.page()
	list, err := h.projects.List(c.Request.Context(), identityFrom(c), models.ProjectFilter{
		Title:   q.Title,
		OwnerID: q.OwnerID,
		Page:    page,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, newListResponse(list, page))
}

func (h *handlers) getProject(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	project, err := h.projects.Get(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

func (h *handlers) createProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, badRequest(err))
		return
	}

	project, err := h.projects.Create(c.Request.Context(), identityFrom(c), req.Title)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

func (h *handlers) updateProject(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, badRequest(err))
		return
	}

	project, err := h.projects.Update(c.Request.Context(), identityFrom(c), id, req.Title)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

func (h *handlers) deleteProject(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.projects.Delete(c.Request.Context(), identityFrom(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ---- tasks ----

type taskQuery struct {
	pageQuery
	Title      string `form:"title"`
	ProjectID  int64  `form:"project_id"`
	AssigneeID int64  `form:"assignee_id"`
}

type createTaskRequest struct {
	Title      string `json:"title" binding:"required"`
	Status     string `json:"status"`
	ProjectID  int64  `json:"project_id" binding:"required"`
	AssigneeID int64  `json:"assignee_id"`
}

type updateTaskRequest struct {
	Title  *string `json:"title"`
	Status *string `json:"status"`
}

func (h *handlers) listTasks(c *gin.Context) {
	var q taskQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, h.log, badRequest(err))
		return
	}

	page := q.page()
	list, err := h.tasks.List(c.Request.Context(), identityFrom(c), models.TaskFilter{
		Title:      q.Title,
		ProjectID:  q.ProjectID,
		AssigneeID: q.AssigneeID,
		Page:       page,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, newListResponse(list, page))
}

func (h *handlers) getTask(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *handlers) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, badRequest(err))
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), identityFrom(c), services.NewTask{
		Title:      req.Title,
		Status:     req.Status,
		ProjectID:  req.ProjectID,
		AssigneeID: req.AssigneeID,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *handlers) updateTask(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, badRequest(err))
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), identityFrom(c), id, models.TaskUpdate{
		Title:  req.Title,
		Status: req.Status,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *handlers) deleteTask(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), identityFrom(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

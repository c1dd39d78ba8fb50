package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/portfolio-service/internal/api/dto"
	"github.com/spec-kit/portfolio-service/internal/auth"
	"github.com/spec-kit/portfolio-service/internal/domain"
	"github.com/spec-kit/portfolio-service/internal/repository"
	"github.com/spec-kit/portfolio-service/internal/service"
	apperrors "github.com/spec-kit/portfolio-service/pkg/util/errorutil"
)

// ProjectsHandler manages portfolio project endpoints. Reads are public,
// writes require the admin bearer token.
type ProjectsHandler struct {
	service *service.ProjectService
}

// NewProjectsHandler constructs handler.
func NewProjectsHandler(projectService *service.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{service: projectService}
}

// Create POST /projects.
func (h *ProjectsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	project, err := h.service.Create(c.Context(), principal.User.ID, projectInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": projectResponse(project)})
}

// Update PUT /projects/:id.
func (h *ProjectsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	project, err := h.service.Update(c.Context(), principal.User.ID, c.Params("id"), projectInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}

// Delete DELETE /projects/:id.
func (h *ProjectsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("admin required")
	}
	if err := h.service.Delete(c.Context(), principal.User.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Get GET /projects/:id.
func (h *ProjectsHandler) Get(c *fiber.Ctx) error {
	project, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}

// List GET /projects.
func (h *ProjectsHandler) List(c *fiber.Ctx) error {
	filter := parseProjectQuery(c)
	projects, err := h.service.List(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, projectResponse(&projects[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseProjectQuery(c *fiber.Ctx) repository.ProjectFilter {
	filter := repository.ProjectFilter{}

	if q := c.Query("q"); q != "" {
		filter.SearchTerm = &q
	}
	if tag := c.Query("tag"); tag != "" {
		filter.Tag = &tag
	}
	if page, err := strconv.Atoi(c.Query("page", "1")); err == nil && page > 1 {
		filter.Offset = (page - 1) * pageSize(c)
	}
	filter.Limit = pageSize(c)
	return filter
}

func pageSize(c *fiber.Ctx) int {
	size, err := strconv.Atoi(c.Query("page_size", "20"))
	if err != nil || size <= 0 || size > 100 {
		return 20
	}
	return size
}

func projectInput(req dto.ProjectRequest) service.ProjectInput {
	return service.ProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Version:     req.Version,
		Link:        req.Link,
		Tags:        req.Tags,
	}
}

func projectResponse(project *domain.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		Version:     project.Version,
		Link:        project.Link,
		Tags:        project.Tags,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

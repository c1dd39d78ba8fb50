package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/portfolio-service/internal/domain"
	"github.com/spec-kit/portfolio-service/internal/events"
	"github.com/spec-kit/portfolio-service/internal/repository"
	apperrors "github.com/spec-kit/portfolio-service/pkg/util/errorutil"
)

// ProjectInput carries the writable project fields.
type ProjectInput struct {
	Title       string
	Description string
	Version     string
	Link        string
	Tags        []string
}

// ProjectService coordinates project CRUD and emits lifecycle events.
type ProjectService struct {
	projects   repository.ProjectRepository
	dispatcher events.Dispatcher
}

// NewProjectService builds the service.
func NewProjectService(projects repository.ProjectRepository, dispatcher events.Dispatcher) *ProjectService {
	return &ProjectService{projects: projects, dispatcher: dispatcher}
}

func validateProjectInput(input ProjectInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.Title) == "" {
		details["title"] = "required"
	}
	if strings.TrimSpace(input.Description) == "" {
		details["description"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("title and description required", details)
	}
	return nil
}

// Create persists a new project.
func (s *ProjectService) Create(ctx context.Context, actorID string, input ProjectInput) (*domain.Project, error) {
	if err := validateProjectInput(input); err != nil {
		return nil, err
	}

	project := &domain.Project{
		Title:       input.Title,
		Description: input.Description,
		Version:     input.Version,
		Link:        input.Link,
		Tags:        input.Tags,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventProjectCreated, actorID, project)
	return project, nil
}

// Update replaces the writable fields of an existing project.
func (s *ProjectService) Update(ctx context.Context, actorID, id string, input ProjectInput) (*domain.Project, error) {
	if err := validateProjectInput(input); err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	project.Title = input.Title
	project.Description = input.Description
	project.Version = input.Version
	project.Link = input.Link
	project.Tags = input.Tags

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventProjectUpdated, actorID, project)
	return project, nil
}

// Delete removes a project.
func (s *ProjectService) Delete(ctx context.Context, actorID, id string) error {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}

	if err := s.projects.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.EventProjectDeleted, actorID, project)
	return nil
}

// Get returns one project by id.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return project, nil
}

// List returns projects matching the filter, newest-updated first.
func (s *ProjectService) List(ctx context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	return s.projects.List(ctx, filter)
}

func (s *ProjectService) publish(ctx context.Context, eventType events.EventType, actorID string, project *domain.Project) {
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload: events.ProjectPayload{
			ProjectID: project.ID,
			Title:     project.Title,
			Version:   project.Version,
			Tags:      project.Tags,
		},
	})
}

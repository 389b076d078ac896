package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tristudio/studio-scheduler-api/internal/dto"
	"github.com/tristudio/studio-scheduler-api/internal/models"
	appErrors "github.com/tristudio/studio-scheduler-api/pkg/errors"
)

type teacherStore interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	ListActive(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	Create(ctx context.Context, teacher models.Teacher) (*models.Teacher, error)
	Update(ctx context.Context, teacher models.Teacher) error
	Delete(ctx context.Context, id string) error
}

// TeacherService manages the optional scheduling roster.
type TeacherService struct {
	store    teacherStore
	validate *validator.Validate
	logger   *zap.Logger
}

func NewTeacherService(store teacherStore, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{store: store, validate: validate, logger: logger}
}

// List returns a roster page with the total count.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	teachers, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, total, nil
}

// Get fetches one roster entry.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return teacher, nil
}

// Create adds a roster entry.
func (s *TeacherService) Create(ctx context.Context, req dto.CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	teacher, err := s.store.Create(ctx, models.Teacher{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		IsJunior:     req.IsJunior,
		Active:       req.Active,
		BlackoutDays: req.BlackoutDays,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	s.logger.Info("teacher created", zap.String("teacher", teacher.ID))
	return teacher, nil
}

// Update rewrites a roster entry.
func (s *TeacherService) Update(ctx context.Context, id string, req dto.UpdateTeacherRequest) (*models.Teacher, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	teacher, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	teacher.FirstName = req.FirstName
	teacher.LastName = req.LastName
	teacher.Email = req.Email
	teacher.IsJunior = req.IsJunior
	teacher.Active = req.Active
	teacher.BlackoutDays = req.BlackoutDays
	if err := s.store.Update(ctx, *teacher); err != nil {
		return nil, appErrors.FromError(err)
	}
	return teacher, nil
}

// Delete removes a roster entry.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return appErrors.FromError(err)
	}
	s.logger.Info("teacher deleted", zap.String("teacher", id))
	return nil
}

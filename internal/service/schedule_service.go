package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tristudio/studio-scheduler-api/internal/dto"
	"github.com/tristudio/studio-scheduler-api/internal/models"
	appErrors "github.com/tristudio/studio-scheduler-api/pkg/errors"
)

type scheduleStore interface {
	Save(ctx context.Context, name, source string, classes []models.ScheduledClass) (*models.SavedSchedule, error)
	List(ctx context.Context) ([]models.SavedSchedule, error)
	Find(ctx context.Context, id string) (*models.SavedSchedule, []models.ScheduledClass, error)
	UpdateClass(ctx context.Context, scheduleID, classID string, cls models.ScheduledClass) error
	DeleteClass(ctx context.Context, scheduleID, classID string) error
	Delete(ctx context.Context, id string) error
}

// ScheduleService persists accepted drafts and applies manual edits.
// Edits are revalidated so a saved snapshot always carries the current
// conflict picture.
type ScheduleService struct {
	store     scheduleStore
	validator *ValidatorService
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewScheduleService(store scheduleStore, validatorSvc *ValidatorService, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{store: store, validator: validatorSvc, validate: validate, logger: logger}
}

// Save stores an accepted draft under a name.
func (s *ScheduleService) Save(ctx context.Context, req dto.SaveScheduleRequest) (*models.SavedSchedule, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save payload")
	}
	saved, err := s.store.Save(ctx, req.Name, req.Source, req.Schedule)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save schedule")
	}
	s.logger.Info("schedule saved",
		zap.String("schedule", saved.ID),
		zap.String("source", saved.Source),
		zap.Int("classes", len(req.Schedule)),
	)
	return saved, nil
}

// List returns saved schedule headers.
func (s *ScheduleService) List(ctx context.Context) ([]models.SavedSchedule, error) {
	schedules, err := s.store.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	return schedules, nil
}

// Get loads one saved schedule with classes and a fresh validation.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.SavedSchedule, []models.ScheduledClass, models.ValidationResult, error) {
	saved, classes, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, nil, models.ValidationResult{}, appErrors.FromError(err)
	}
	return saved, classes, s.validator.Validate(classes), nil
}

// UpdateClass applies a manual edit to one class and returns the
// revalidated schedule.
func (s *ScheduleService) UpdateClass(ctx context.Context, scheduleID, classID string, req dto.UpdateClassRequest) ([]models.ScheduledClass, models.ValidationResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, models.ValidationResult{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class update payload")
	}

	_, classes, err := s.store.Find(ctx, scheduleID)
	if err != nil {
		return nil, models.ValidationResult{}, appErrors.FromError(err)
	}
	var current *models.ScheduledClass
	for i := range classes {
		if classes[i].ID == classID {
			current = &classes[i]
			break
		}
	}
	if current == nil {
		return nil, models.ValidationResult{}, appErrors.Clone(appErrors.ErrNotFound, "class not found in schedule")
	}

	applyClassUpdate(current, req)
	if err := s.store.UpdateClass(ctx, scheduleID, classID, *current); err != nil {
		return nil, models.ValidationResult{}, appErrors.FromError(err)
	}

	s.logger.Info("schedule class updated", zap.String("schedule", scheduleID), zap.String("class", classID))
	return classes, s.validator.Validate(classes), nil
}

// DeleteClass removes one class from a saved schedule and returns the
// remaining classes with a fresh validation.
func (s *ScheduleService) DeleteClass(ctx context.Context, scheduleID, classID string) ([]models.ScheduledClass, models.ValidationResult, error) {
	if err := s.store.DeleteClass(ctx, scheduleID, classID); err != nil {
		return nil, models.ValidationResult{}, appErrors.FromError(err)
	}
	_, classes, err := s.store.Find(ctx, scheduleID)
	if err != nil {
		return nil, models.ValidationResult{}, appErrors.FromError(err)
	}

	s.logger.Info("schedule class removed", zap.String("schedule", scheduleID), zap.String("class", classID))
	return classes, s.validator.Validate(classes), nil
}

// Delete removes a saved schedule.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return appErrors.FromError(err)
	}
	s.logger.Info("schedule deleted", zap.String("schedule", id))
	return nil
}

func applyClassUpdate(cls *models.ScheduledClass, req dto.UpdateClassRequest) {
	if req.Day != "" {
		cls.Day = req.Day
	}
	if req.Time != "" {
		cls.Time = req.Time
	}
	if req.Location != "" {
		cls.Location = req.Location
	}
	if req.ClassFormat != "" {
		cls.ClassFormat = req.ClassFormat
	}
	if req.TeacherFirstName != "" {
		cls.TeacherFirstName = req.TeacherFirstName
	}
	if req.TeacherLastName != "" {
		cls.TeacherLastName = req.TeacherLastName
	}
	if req.Duration != "" {
		cls.Duration = req.Duration
	}
	if req.Participants > 0 {
		cls.Participants = req.Participants
	}
	if req.Revenue > 0 {
		cls.Revenue = req.Revenue
	}
	if req.StudioAssigned != "" {
		cls.StudioAssigned = req.StudioAssigned
	}
}

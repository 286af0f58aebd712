package task

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/internal/metrics"
	"Food-Rescue-Ledger/internal/utils/txn"

	"github.com/gofiber/fiber/v2/log"
)

type (
	TaskService interface {
		SeedTasks(ctx context.Context, tasks []domain.VolunteerTask) (int, error)
		RegisterVolunteer(ctx context.Context, req domain.RegisterVolunteerRequest, volunteerID string) (*domain.VolunteerProfile, error)
		ListAvailableTasks(ctx context.Context, filter domain.TaskFilter) ([]domain.VolunteerTask, error)
		AcceptTask(ctx context.Context, taskID, volunteerID string) (*domain.VolunteerTask, error)
		CompleteTask(ctx context.Context, taskID, volunteerID string) (*domain.VolunteerTask, error)
		GetVolunteerProfile(ctx context.Context, volunteerID string) (*domain.VolunteerProfile, error)
	}

	taskService struct {
		taskRepository TaskRepository
		serial         *txn.Serial
		now            func() time.Time
	}
)

func NewTaskService(taskRepository TaskRepository, serial *txn.Serial, now func() time.Time) TaskService {
	if now == nil {
		now = time.Now
	}
	return &taskService{
		taskRepository: taskRepository,
		serial:         serial,
		now:            now,
	}
}

// SeedTasks appends catalog tasks that are not stored yet. Stored tasks keep
// their status and assignee.
func (s *taskService) SeedTasks(ctx context.Context, tasks []domain.VolunteerTask) (int, error) {
	added := 0

	err := s.serial.Do(func() error {
		known := make(map[string]bool)
		for _, t := range s.taskRepository.GetTasks(ctx) {
			known[t.ID] = true
		}

		for _, t := range tasks {
			if known[t.ID] {
				continue
			}
			t.Status = domain.TaskAvailable
			t.AssigneeID = ""
			t.AssignedAt = nil
			t.CompletedAt = nil
			if err := s.taskRepository.CreateTask(ctx, t); err != nil {
				return err
			}
			known[t.ID] = true
			added++
		}
		return nil
	})
	metrics.Observe("task.seed", err)
	if added > 0 {
		log.Infow("task catalog seeded", "added", added)
	}
	return added, err
}

func validateRegistration(req domain.RegisterVolunteerRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return domain.NewValidationError("name", "is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return domain.NewValidationError("email", "is required")
	}
	if strings.TrimSpace(req.Phone) == "" {
		return domain.NewValidationError("phone", "is required")
	}
	if strings.TrimSpace(req.Address) == "" {
		return domain.NewValidationError("address", "is required")
	}
	if !req.Availability.Valid() {
		return domain.NewValidationError("availability", "must be weekdays, weekends or both")
	}
	return nil
}

// RegisterVolunteer stores the volunteer's details. Registering again
// updates the details and keeps points and the first registration time.
func (s *taskService) RegisterVolunteer(ctx context.Context, req domain.RegisterVolunteerRequest, volunteerID string) (*domain.VolunteerProfile, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	var registered domain.VolunteerProfile
	err := s.serial.Do(func() error {
		now := s.now()

		profile, err := s.taskRepository.UpsertProfile(ctx, volunteerID, func(p domain.VolunteerProfile) (domain.VolunteerProfile, error) {
			p.Name = strings.TrimSpace(req.Name)
			p.Email = strings.TrimSpace(req.Email)
			p.Phone = strings.TrimSpace(req.Phone)
			p.Address = strings.TrimSpace(req.Address)
			p.Availability = req.Availability
			p.Experience = req.Experience
			if p.RegisteredAt == nil {
				p.RegisteredAt = &now
			}
			p.UpdatedAt = now
			return p, nil
		})
		if err != nil {
			return err
		}
		registered = s.withDerived(ctx, profile)
		return nil
	})
	metrics.Observe("volunteer.register", err)
	if err != nil {
		return nil, err
	}

	log.Infow("volunteer registered", "volunteer_id", volunteerID, "availability", registered.Availability)
	return &registered, nil
}

func (s *taskService) ListAvailableTasks(ctx context.Context, filter domain.TaskFilter) ([]domain.VolunteerTask, error) {
	result := []domain.VolunteerTask{}

	err := s.serial.Do(func() error {
		for _, t := range s.taskRepository.GetTasks(ctx) {
			if t.Status != domain.TaskAvailable {
				continue
			}
			if filter.Type != "" && t.Type != filter.Type {
				continue
			}
			if filter.Date != nil && !sameDay(t.ScheduledAt, *filter.Date) {
				continue
			}
			result = append(result, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].ScheduledAt.Equal(result[j].ScheduledAt) {
			return result[i].ScheduledAt.Before(result[j].ScheduledAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func sameDay(t, day time.Time) bool {
	t = t.In(day.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// AcceptTask assigns the task and credits its points in one logical unit.
// Points are credited here, not on completion. The volunteer must be
// registered.
func (s *taskService) AcceptTask(ctx context.Context, taskID, volunteerID string) (*domain.VolunteerTask, error) {
	var accepted domain.VolunteerTask

	err := s.serial.Do(func() error {
		now := s.now()

		if profile, ok := s.taskRepository.GetProfile(ctx, volunteerID); !ok || !profile.Registered() {
			return fmt.Errorf("volunteer %s: %w", volunteerID, domain.ErrVolunteerNotRegistered)
		}

		task, err := s.taskRepository.GetTaskByID(ctx, taskID)
		if err != nil {
			return err
		}

		return txn.Commit(
			txn.Step{
				Name: "assign task",
				Check: func() error {
					if task.Status != domain.TaskAvailable {
						return fmt.Errorf("task %s is %s: %w", task.ID, task.Status, domain.ErrAlreadyAssigned)
					}
					if task.Points <= 0 {
						return fmt.Errorf("task %s: %w", task.ID, domain.NewValidationError("points", "must be positive"))
					}
					return nil
				},
				Apply: func() error {
					updated, err := s.taskRepository.UpdateTask(ctx, task.ID, func(t domain.VolunteerTask) (domain.VolunteerTask, error) {
						if t.Status != domain.TaskAvailable {
							return t, fmt.Errorf("task %s is %s: %w", t.ID, t.Status, domain.ErrAlreadyAssigned)
						}
						t.Status = domain.TaskAssigned
						t.AssigneeID = volunteerID
						t.AssignedAt = &now
						return t, nil
					})
					if err == nil {
						accepted = updated
					}
					return err
				},
				Undo: func() error {
					_, err := s.taskRepository.UpdateTask(ctx, task.ID, func(domain.VolunteerTask) (domain.VolunteerTask, error) {
						return task, nil
					})
					return err
				},
			},
			txn.Step{
				Name: "credit points",
				Apply: func() error {
					_, err := s.taskRepository.UpsertProfile(ctx, volunteerID, func(p domain.VolunteerProfile) (domain.VolunteerProfile, error) {
						p.TotalPoints += task.Points
						p.AcceptedTasks++
						p.UpdatedAt = now
						return p, nil
					})
					return err
				},
			},
		)
	})
	metrics.Observe("task.accept", err)
	if err != nil {
		return nil, err
	}

	metrics.PointsCredited.Add(float64(accepted.Points))
	log.Infow("task accepted", "task_id", accepted.ID, "volunteer_id", volunteerID, "points", accepted.Points)
	return &accepted, nil
}

// CompleteTask closes an assigned task. Only the assignee may complete it.
func (s *taskService) CompleteTask(ctx context.Context, taskID, volunteerID string) (*domain.VolunteerTask, error) {
	var completed domain.VolunteerTask

	err := s.serial.Do(func() error {
		now := s.now()

		task, err := s.taskRepository.GetTaskByID(ctx, taskID)
		if err != nil {
			return err
		}
		if task.Status != domain.TaskAssigned {
			return fmt.Errorf("task %s is %s: %w", task.ID, task.Status, domain.ErrInvalidTransition)
		}
		if task.AssigneeID != volunteerID {
			return domain.ErrNotAssignee
		}

		completed, err = s.taskRepository.UpdateTask(ctx, task.ID, func(t domain.VolunteerTask) (domain.VolunteerTask, error) {
			t.Status = domain.TaskCompleted
			t.CompletedAt = &now
			return t, nil
		})
		return err
	})
	metrics.Observe("task.complete", err)
	if err != nil {
		return nil, err
	}

	log.Infow("task completed", "task_id", completed.ID, "volunteer_id", volunteerID)
	return &completed, nil
}

func (s *taskService) GetVolunteerProfile(ctx context.Context, volunteerID string) (*domain.VolunteerProfile, error) {
	var profile domain.VolunteerProfile

	err := s.serial.Do(func() error {
		stored, ok := s.taskRepository.GetProfile(ctx, volunteerID)
		if !ok {
			stored = domain.VolunteerProfile{ID: volunteerID}
		}
		profile = s.withDerived(ctx, stored)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// withDerived fills the completed count and badges, which are never stored.
func (s *taskService) withDerived(ctx context.Context, p domain.VolunteerProfile) domain.VolunteerProfile {
	completed := 0
	for _, t := range s.taskRepository.GetTasks(ctx) {
		if t.Status == domain.TaskCompleted && t.AssigneeID == p.ID {
			completed++
		}
	}

	p.CompletedTasks = completed
	p.Badges = ComputeBadges(domain.BadgeInput{
		TotalPoints:    p.TotalPoints,
		CompletedTasks: completed,
	})
	return p
}

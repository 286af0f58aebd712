package task

import (
	"context"
	"errors"
	"fmt"

	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/pkg/store"
)

type (
	TaskRepository interface {
		CreateTask(ctx context.Context, task domain.VolunteerTask) error
		GetTasks(ctx context.Context) []domain.VolunteerTask
		GetTaskByID(ctx context.Context, id string) (domain.VolunteerTask, error)
		UpdateTask(ctx context.Context, id string, update func(domain.VolunteerTask) (domain.VolunteerTask, error)) (domain.VolunteerTask, error)

		GetProfile(ctx context.Context, volunteerID string) (domain.VolunteerProfile, bool)
		// UpsertProfile applies update to the stored profile, or to a zero
		// profile for volunteerID when none exists yet.
		UpsertProfile(ctx context.Context, volunteerID string, update func(domain.VolunteerProfile) (domain.VolunteerProfile, error)) (domain.VolunteerProfile, error)
	}

	taskRepository struct {
		tasks    *store.Collection[domain.VolunteerTask]
		profiles *store.Collection[domain.VolunteerProfile]
	}
)

func NewTaskRepository(recordStore store.RecordStore) TaskRepository {
	return &taskRepository{
		tasks:    store.NewCollection[domain.VolunteerTask](recordStore, store.CollectionVolunteerTasks),
		profiles: store.NewCollection[domain.VolunteerProfile](recordStore, store.CollectionVolunteerProfiles),
	}
}

func (r *taskRepository) CreateTask(ctx context.Context, task domain.VolunteerTask) error {
	return r.tasks.Append(ctx, task)
}

func (r *taskRepository) GetTasks(ctx context.Context) []domain.VolunteerTask {
	return r.tasks.Load(ctx)
}

func (r *taskRepository) GetTaskByID(ctx context.Context, id string) (domain.VolunteerTask, error) {
	task, ok := r.tasks.Find(ctx, func(t domain.VolunteerTask) bool { return t.ID == id })
	if !ok {
		return domain.VolunteerTask{}, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	return task, nil
}

func (r *taskRepository) UpdateTask(
	ctx context.Context,
	id string,
	update func(domain.VolunteerTask) (domain.VolunteerTask, error),
) (domain.VolunteerTask, error) {
	return r.tasks.Replace(ctx, func(t domain.VolunteerTask) bool { return t.ID == id }, update)
}

func (r *taskRepository) GetProfile(ctx context.Context, volunteerID string) (domain.VolunteerProfile, bool) {
	return r.profiles.Find(ctx, func(p domain.VolunteerProfile) bool { return p.ID == volunteerID })
}

func (r *taskRepository) UpsertProfile(
	ctx context.Context,
	volunteerID string,
	update func(domain.VolunteerProfile) (domain.VolunteerProfile, error),
) (domain.VolunteerProfile, error) {
	updated, err := r.profiles.Replace(ctx,
		func(p domain.VolunteerProfile) bool { return p.ID == volunteerID },
		func(p domain.VolunteerProfile) (domain.VolunteerProfile, error) {
			next, err := update(p)
			return stripDerived(next), err
		},
	)
	if !errors.Is(err, domain.ErrNotFound) {
		return updated, err
	}

	created, err := update(domain.VolunteerProfile{ID: volunteerID})
	if err != nil {
		return domain.VolunteerProfile{}, err
	}
	created = stripDerived(created)
	if err := r.profiles.Append(ctx, created); err != nil {
		return domain.VolunteerProfile{}, err
	}
	return created, nil
}

// stripDerived zeroes the fields recomputed on every read.
func stripDerived(p domain.VolunteerProfile) domain.VolunteerProfile {
	p.CompletedTasks = 0
	p.Badges = nil
	return p
}

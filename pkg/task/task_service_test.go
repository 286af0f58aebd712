package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/internal/utils/txn"
	"Food-Rescue-Ledger/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 2, 7, 9, 0, 0, 0, time.UTC)

// failingProfiles breaks the points credit of an accept.
type failingProfiles struct {
	TaskRepository
	upsertErr error
}

func (f *failingProfiles) UpsertProfile(ctx context.Context, volunteerID string, update func(domain.VolunteerProfile) (domain.VolunteerProfile, error)) (domain.VolunteerProfile, error) {
	if f.upsertErr != nil {
		return domain.VolunteerProfile{}, f.upsertErr
	}
	return f.TaskRepository.UpsertProfile(ctx, volunteerID, update)
}

func newTestService(t *testing.T) (TaskService, *failingProfiles) {
	t.Helper()
	repo := &failingProfiles{TaskRepository: NewTaskRepository(store.NewRecordStore(store.NewMemoryMedium(0)))}
	svc := NewTaskService(repo, &txn.Serial{}, func() time.Time { return baseTime })
	return svc, repo
}

func catalog() []domain.VolunteerTask {
	return []domain.VolunteerTask{
		{ID: "t1", Title: "Bakery pickup", Type: domain.TaskPickup, ScheduledAt: baseTime.Add(2 * time.Hour), Points: 20},
		{ID: "t2", Title: "Shelter delivery", Type: domain.TaskDelivery, ScheduledAt: baseTime.Add(time.Hour), Points: 35},
		{ID: "t3", Title: "Market pickup", Type: domain.TaskPickup, ScheduledAt: baseTime.Add(26 * time.Hour), Points: 15},
		{ID: "t0", Title: "Cafe pickup", Type: domain.TaskPickup, ScheduledAt: baseTime.Add(2 * time.Hour), Points: 10},
	}
}

func registration(name string) domain.RegisterVolunteerRequest {
	return domain.RegisterVolunteerRequest{
		Name:         name,
		Email:        name + "@example.org",
		Phone:        "+62 812 0000 0000",
		Address:      "12 Baker St",
		Availability: domain.AvailabilityWeekends,
	}
}

// seeded returns a service with the catalog loaded and v1, v2 registered.
func seeded(t *testing.T) (TaskService, *failingProfiles) {
	t.Helper()
	svc, repo := newTestService(t)
	added, err := svc.SeedTasks(context.Background(), catalog())
	require.NoError(t, err)
	require.Equal(t, 4, added)

	for _, id := range []string{"v1", "v2"} {
		_, err := svc.RegisterVolunteer(context.Background(), registration(id), id)
		require.NoError(t, err)
	}
	return svc, repo
}

func ids(tasks []domain.VolunteerTask) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestSeedTasksSkipsKnownIDs(t *testing.T) {
	ctx := context.Background()
	svc, _ := seeded(t)

	_, err := svc.AcceptTask(ctx, "t1", "v1")
	require.NoError(t, err)

	added, err := svc.SeedTasks(ctx, catalog())
	require.NoError(t, err)
	assert.Zero(t, added)

	available, err := svc.ListAvailableTasks(ctx, domain.TaskFilter{})
	require.NoError(t, err)
	assert.NotContains(t, ids(available), "t1")
}

func TestListAvailableTasksOrderAndFilters(t *testing.T) {
	ctx := context.Background()
	svc, _ := seeded(t)

	all, err := svc.ListAvailableTasks(ctx, domain.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"t2", "t0", "t1", "t3"}, ids(all))

	pickups, err := svc.ListAvailableTasks(ctx, domain.TaskFilter{Type: domain.TaskPickup})
	require.NoError(t, err)
	assert.Equal(t, []string{"t0", "t1", "t3"}, ids(pickups))

	tomorrow := baseTime.Add(24 * time.Hour)
	onDay, err := svc.ListAvailableTasks(ctx, domain.TaskFilter{Date: &tomorrow})
	require.NoError(t, err)
	assert.Equal(t, []string{"t3"}, ids(onDay))
}

func TestAcceptCreditsPointsOnce(t *testing.T) {
	ctx := context.Background()
	svc, _ := seeded(t)

	accepted, err := svc.AcceptTask(ctx, "t1", "v1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskAssigned, accepted.Status)
	assert.Equal(t, "v1", accepted.AssigneeID)

	v1, err := svc.GetVolunteerProfile(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 20, v1.TotalPoints)

	_, err = svc.AcceptTask(ctx, "t1", "v2")
	assert.ErrorIs(t, err, domain.ErrAlreadyAssigned)

	v2, err := svc.GetVolunteerProfile(ctx, "v2")
	require.NoError(t, err)
	assert.Zero(t, v2.TotalPoints)

	_, err = svc.AcceptTask(ctx, "t1", "v1")
	assert.ErrorIs(t, err, domain.ErrAlreadyAssigned)
	v1, err = svc.GetVolunteerProfile(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 20, v1.TotalPoints)
}

func TestPointsEqualSumOfAcceptedTasks(t *testing.T) {
	ctx := context.Background()
	svc, _ := seeded(t)

	for _, id := range []string{"t0", "t1", "t2"} {
		_, err := svc.AcceptTask(ctx, id, "v1")
		require.NoError(t, err)
	}
	_, err := svc.CompleteTask(ctx, "t1", "v1")
	require.NoError(t, err)

	profile, err := svc.GetVolunteerProfile(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 10+20+35, profile.TotalPoints)
	assert.Equal(t, 3, profile.AcceptedTasks)
	assert.Equal(t, 1, profile.CompletedTasks)
	assert.Equal(t, []domain.BadgeID{domain.BadgeFirstDelivery}, profile.Badges)
}

func TestAcceptRequiresRegistration(t *testing.T) {
	ctx := context.Background()
	svc, repo := seeded(t)

	_, err := svc.AcceptTask(ctx, "t1", "v3")
	require.ErrorIs(t, err, domain.ErrVolunteerNotRegistered)

	task, err := repo.GetTaskByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskAvailable, task.Status)
	_, ok := repo.GetProfile(ctx, "v3")
	assert.False(t, ok, "a refused accept creates no profile")

	_, err = svc.RegisterVolunteer(ctx, registration("v3"), "v3")
	require.NoError(t, err)
	accepted, err := svc.AcceptTask(ctx, "t1", "v3")
	require.NoError(t, err)
	assert.Equal(t, "v3", accepted.AssigneeID)
}

func TestRegisterVolunteer(t *testing.T) {
	ctx := context.Background()
	svc, _ := seeded(t)

	profile, err := svc.GetVolunteerProfile(ctx, "v1")
	require.NoError(t, err)
	assert.True(t, profile.Registered())
	assert.Equal(t, "v1@example.org", profile.Email)
	assert.Equal(t, domain.AvailabilityWeekends, profile.Availability)
	firstRegistered := *profile.RegisteredAt

	_, err = svc.AcceptTask(ctx, "t2", "v1")
	require.NoError(t, err)

	again := registration("v1")
	again.Availability = domain.AvailabilityBoth
	again.Experience = "Two years at the food bank"
	updated, err := svc.RegisterVolunteer(ctx, again, "v1")
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityBoth, updated.Availability)
	assert.Equal(t, 35, updated.TotalPoints, "points survive re-registration")
	assert.True(t, updated.RegisteredAt.Equal(firstRegistered))

	unknown, err := svc.GetVolunteerProfile(ctx, "v9")
	require.NoError(t, err)
	assert.False(t, unknown.Registered())
}

func TestRegisterVolunteerValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*domain.RegisterVolunteerRequest)
		wantField string
	}{
		{name: "blank name", mutate: func(r *domain.RegisterVolunteerRequest) { r.Name = " " }, wantField: "name"},
		{name: "no phone", mutate: func(r *domain.RegisterVolunteerRequest) { r.Phone = "" }, wantField: "phone"},
		{name: "no address", mutate: func(r *domain.RegisterVolunteerRequest) { r.Address = "" }, wantField: "address"},
		{name: "unknown availability", mutate: func(r *domain.RegisterVolunteerRequest) { r.Availability = "nights" }, wantField: "availability"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(t)
			req := registration("v1")
			tt.mutate(&req)

			_, err := svc.RegisterVolunteer(context.Background(), req, "v1")
			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)

			_, ok := repo.GetProfile(context.Background(), "v1")
			assert.False(t, ok)
		})
	}
}

func TestAcceptUnknownTask(t *testing.T) {
	svc, _ := seeded(t)
	_, err := svc.AcceptTask(context.Background(), "missing", "v1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAcceptRollsBackWhenCreditFails(t *testing.T) {
	ctx := context.Background()
	svc, repo := seeded(t)
	repo.upsertErr = domain.ErrStorageFull

	_, err := svc.AcceptTask(ctx, "t1", "v1")
	require.ErrorIs(t, err, domain.ErrStorageFull)

	task, err := repo.GetTaskByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskAvailable, task.Status)
	assert.Empty(t, task.AssigneeID)

	repo.upsertErr = nil
	_, err = svc.AcceptTask(ctx, "t1", "v2")
	require.NoError(t, err)
}

func TestCompleteTaskRules(t *testing.T) {
	ctx := context.Background()
	svc, _ := seeded(t)

	_, err := svc.CompleteTask(ctx, "t1", "v1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "available task cannot be completed")

	_, err = svc.AcceptTask(ctx, "t1", "v1")
	require.NoError(t, err)

	_, err = svc.CompleteTask(ctx, "t1", "v2")
	assert.ErrorIs(t, err, domain.ErrNotAssignee)

	completed, err := svc.CompleteTask(ctx, "t1", "v1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.True(t, completed.CompletedAt.Equal(baseTime))

	_, err = svc.CompleteTask(ctx, "t1", "v1")
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
}

func TestStoredProfileOmitsDerivedFields(t *testing.T) {
	ctx := context.Background()
	svc, repo := seeded(t)

	_, err := svc.AcceptTask(ctx, "t2", "v1")
	require.NoError(t, err)
	_, err = svc.CompleteTask(ctx, "t2", "v1")
	require.NoError(t, err)

	_, err = svc.GetVolunteerProfile(ctx, "v1")
	require.NoError(t, err)

	stored, ok := repo.GetProfile(ctx, "v1")
	require.True(t, ok)
	assert.Zero(t, stored.CompletedTasks)
	assert.Nil(t, stored.Badges)
}

func TestComputeBadges(t *testing.T) {
	tests := []struct {
		name string
		in   domain.BadgeInput
		want []domain.BadgeID
	}{
		{name: "nothing yet", in: domain.BadgeInput{}, want: []domain.BadgeID{}},
		{name: "first completion", in: domain.BadgeInput{CompletedTasks: 1}, want: []domain.BadgeID{domain.BadgeFirstDelivery}},
		{
			name: "points only",
			in:   domain.BadgeInput{TotalPoints: 100},
			want: []domain.BadgeID{domain.BadgeCentury},
		},
		{
			name: "everything",
			in:   domain.BadgeInput{TotalPoints: 1000, CompletedTasks: 50},
			want: []domain.BadgeID{
				domain.BadgeFirstDelivery,
				domain.BadgeRegularRescuer,
				domain.BadgeCommunityChampion,
				domain.BadgeCentury,
				domain.BadgeFoodHero,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeBadges(tt.in))
		})
	}
}

func TestParseCatalog(t *testing.T) {
	tasks, err := ParseCatalog([]byte(`
tasks:
  - id: t1
    title: Bakery pickup
    type: pickup
    location_from: 12 Baker St
    location_to: Hope Shelter
    scheduled_at: 2025-02-07T11:00:00Z
    points: 20
`))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.TaskPickup, tasks[0].Type)
	assert.Equal(t, 20, tasks[0].Points)

	_, err = ParseCatalog([]byte("tasks:\n  - id: t1\n    type: drive\n    points: 5\n    scheduled_at: 2025-02-07T11:00:00Z\n"))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "type", verr.Field)

	_, err = ParseCatalog([]byte("tasks:\n  - id: t1\n    status: assigned\n"))
	assert.Error(t, err, "runtime fields are not part of the catalog")
}

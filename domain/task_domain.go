package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessGetTasks          = "volunteer tasks retrieved successfully"
	MessageSuccessAcceptTask        = "task accepted successfully"
	MessageSuccessCompleteTask      = "task completed successfully"
	MessageSuccessGetVolunteer      = "volunteer profile retrieved successfully"
	MessageSuccessRegisterVolunteer = "volunteer registered successfully"
	MessageFailedGetTasks           = "failed to retrieve volunteer tasks"
	MessageFailedAcceptTask         = "failed to accept task"
	MessageFailedCompleteTask       = "failed to complete task"
	MessageFailedGetVolunteer       = "failed to retrieve volunteer profile"
	MessageFailedRegisterVolunteer  = "failed to register volunteer"
	MessageTaskJustTaken            = "this task was just taken"
	MessageRegisterFirst            = "register as a volunteer before accepting tasks"
	MessageInvalidTaskDateQuery     = "date must be formatted as YYYY-MM-DD"

	ErrVolunteerNotRegistered = errors.New("volunteer is not registered")
)

type TaskType string

const (
	TaskPickup   TaskType = "pickup"
	TaskDelivery TaskType = "delivery"
)

func (t TaskType) Valid() bool {
	return t == TaskPickup || t == TaskDelivery
}

type TaskStatus string

const (
	TaskAvailable TaskStatus = "available"
	TaskAssigned  TaskStatus = "assigned"
	TaskCompleted TaskStatus = "completed"
)

type Availability string

const (
	AvailabilityWeekdays Availability = "weekdays"
	AvailabilityWeekends Availability = "weekends"
	AvailabilityBoth     Availability = "both"
)

func (a Availability) Valid() bool {
	return a == AvailabilityWeekdays || a == AvailabilityWeekends || a == AvailabilityBoth
}

type BadgeID string

const (
	BadgeFirstDelivery     BadgeID = "first-delivery"
	BadgeRegularRescuer    BadgeID = "regular-rescuer"
	BadgeCommunityChampion BadgeID = "community-champion"
	BadgeCentury           BadgeID = "century"
	BadgeFoodHero          BadgeID = "food-hero"
)

type (
	VolunteerTask struct {
		ID           string     `json:"id" yaml:"id"`
		Title        string     `json:"title" yaml:"title"`
		Type         TaskType   `json:"type" yaml:"type"`
		LocationFrom string     `json:"location_from" yaml:"location_from"`
		LocationTo   string     `json:"location_to" yaml:"location_to"`
		ScheduledAt  time.Time  `json:"scheduled_at" yaml:"scheduled_at"`
		TimeSlot     string     `json:"time_slot,omitempty" yaml:"time_slot"`
		DistanceKm   float64    `json:"distance_km,omitempty" yaml:"distance_km"`
		Requirements []string   `json:"requirements,omitempty" yaml:"requirements"`
		Points       int        `json:"points" yaml:"points"`
		Status       TaskStatus `json:"status" yaml:"-"`
		AssigneeID   string     `json:"assignee_id,omitempty" yaml:"-"`
		AssignedAt   *time.Time `json:"assigned_at,omitempty" yaml:"-"`
		CompletedAt  *time.Time `json:"completed_at,omitempty" yaml:"-"`
	}

	TaskFilter struct {
		Type TaskType
		// Date matches tasks scheduled on the same calendar day, in Date's location.
		Date *time.Time
	}

	VolunteerProfile struct {
		ID             string       `json:"id"`
		Name           string       `json:"name,omitempty"`
		Email          string       `json:"email,omitempty"`
		Phone          string       `json:"phone,omitempty"`
		Address        string       `json:"address,omitempty"`
		Availability   Availability `json:"availability,omitempty"`
		Experience     string       `json:"experience,omitempty"`
		RegisteredAt   *time.Time   `json:"registered_at,omitempty"`
		TotalPoints    int          `json:"total_points"`
		AcceptedTasks  int          `json:"accepted_tasks"`
		CompletedTasks int          `json:"completed_tasks"`
		Badges         []BadgeID    `json:"badges"`
		UpdatedAt      time.Time    `json:"updated_at"`
	}

	RegisterVolunteerRequest struct {
		Name         string       `json:"name" validate:"required,max=120"`
		Email        string       `json:"email" validate:"required,email"`
		Phone        string       `json:"phone" validate:"required,max=32"`
		Address      string       `json:"address" validate:"required,max=300"`
		Availability Availability `json:"availability" validate:"required,oneof=weekdays weekends both"`
		Experience   string       `json:"experience" validate:"omitempty,max=1000"`
	}

	BadgeInput struct {
		TotalPoints    int
		CompletedTasks int
	}
)

func (p VolunteerProfile) Registered() bool {
	return p.RegisteredAt != nil
}

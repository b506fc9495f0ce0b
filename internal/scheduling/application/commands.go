// Package application hosts scheduling use cases: schedule CRUD and the
// freebusy queries built on top of the calendar bounded context's events.
package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/nitro-scheduler/nitro/internal/policy"
	"github.com/nitro-scheduler/nitro/internal/scheduling/domain"
	"github.com/nitro-scheduler/nitro/internal/shared/apperror"
)

// CreateScheduleCommand creates a schedule for a user, seeded with the
// default weekday rules.
type CreateScheduleCommand struct {
	AccountID uuid.UUID
	UserID    uuid.UUID
	Timezone  string
	Metadata  map[string]string
}

func (CreateScheduleCommand) CommandName() string { return "scheduling.create_schedule" }

// UpdateScheduleRulesCommand replaces a schedule's rule set.
type UpdateScheduleRulesCommand struct {
	ScheduleID uuid.UUID
	Rules      []domain.ScheduleRule
}

func (UpdateScheduleRulesCommand) CommandName() string { return "scheduling.update_schedule_rules" }

// UpdateScheduleTimezoneCommand changes the zone a schedule's rules are
// interpreted in.
type UpdateScheduleTimezoneCommand struct {
	ScheduleID uuid.UUID
	Timezone   string
}

func (UpdateScheduleTimezoneCommand) CommandName() string { return "scheduling.update_schedule_timezone" }

// DeleteScheduleCommand removes a schedule.
type DeleteScheduleCommand struct {
	ScheduleID uuid.UUID
}

func (DeleteScheduleCommand) CommandName() string { return "scheduling.delete_schedule" }

// ScheduleHandler implements the schedule CRUD command set.
type ScheduleHandler struct {
	schedules domain.ScheduleRepository
}

// NewScheduleHandler creates a ScheduleHandler.
func NewScheduleHandler(schedules domain.ScheduleRepository) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

// HandleCreate creates and persists a new schedule.
func (h *ScheduleHandler) HandleCreate(ctx context.Context, cmd CreateScheduleCommand) (*domain.Schedule, error) {
	if err := policy.Require(ctx, policy.CreateSchedule); err != nil {
		return nil, err
	}

	schedule, err := domain.NewSchedule(cmd.AccountID, cmd.UserID, cmd.Timezone, cmd.Metadata)
	if err != nil {
		return nil, apperror.BadClientData("scheduling: invalid schedule", err)
	}
	if err := h.schedules.Save(ctx, schedule); err != nil {
		return nil, apperror.Internal("scheduling: saving schedule", err)
	}
	return schedule, nil
}

// HandleUpdateRules replaces a schedule's rules.
func (h *ScheduleHandler) HandleUpdateRules(ctx context.Context, cmd UpdateScheduleRulesCommand) error {
	if err := policy.Require(ctx, policy.UpdateSchedule); err != nil {
		return err
	}

	schedule, err := h.schedules.FindByID(ctx, cmd.ScheduleID)
	if err != nil {
		return apperror.Internal("scheduling: loading schedule", err)
	}
	if schedule == nil {
		return apperror.NotFound("scheduling: schedule not found", domain.ErrScheduleNotFound)
	}
	if err := schedule.SetRules(cmd.Rules); err != nil {
		return apperror.BadClientData("scheduling: invalid rules", err)
	}
	if err := h.schedules.Save(ctx, schedule); err != nil {
		return apperror.Internal("scheduling: saving schedule", err)
	}
	return nil
}

// HandleUpdateTimezone changes a schedule's timezone.
func (h *ScheduleHandler) HandleUpdateTimezone(ctx context.Context, cmd UpdateScheduleTimezoneCommand) error {
	if err := policy.Require(ctx, policy.UpdateSchedule); err != nil {
		return err
	}

	schedule, err := h.schedules.FindByID(ctx, cmd.ScheduleID)
	if err != nil {
		return apperror.Internal("scheduling: loading schedule", err)
	}
	if schedule == nil {
		return apperror.NotFound("scheduling: schedule not found", domain.ErrScheduleNotFound)
	}
	if err := schedule.UpdateTimezone(cmd.Timezone); err != nil {
		return apperror.BadClientData("scheduling: invalid timezone", err)
	}
	if err := h.schedules.Save(ctx, schedule); err != nil {
		return apperror.Internal("scheduling: saving schedule", err)
	}
	return nil
}

// HandleDelete removes a schedule.
func (h *ScheduleHandler) HandleDelete(ctx context.Context, cmd DeleteScheduleCommand) error {
	if err := policy.Require(ctx, policy.DeleteSchedule); err != nil {
		return err
	}
	if err := h.schedules.Delete(ctx, cmd.ScheduleID); err != nil {
		return apperror.Internal("scheduling: deleting schedule", err)
	}
	return nil
}

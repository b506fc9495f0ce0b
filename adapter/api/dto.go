package api

import (
	accountDomain "github.com/nitro-scheduler/nitro/internal/account/domain"
	bookingDomain "github.com/nitro-scheduler/nitro/internal/booking/domain"
	calendarDomain "github.com/nitro-scheduler/nitro/internal/calendar/domain"
	schedulingDomain "github.com/nitro-scheduler/nitro/internal/scheduling/domain"
)

// Every aggregate in this repo keeps its fields unexported behind
// accessor methods, so the transport layer needs its own wire-shape
// structs rather than handing json.Marshal a domain type directly.

type accountDTO struct {
	ID         string                    `json:"id"`
	SecretKey  string                    `json:"secret_api_key"`
	PublicKey  string                    `json:"public_key_pem,omitempty"`
	Webhook    accountDomain.WebhookConfig `json:"webhook"`
}

func newAccountDTO(a *accountDomain.Account) accountDTO {
	return accountDTO{
		ID:        a.ID().String(),
		SecretKey: a.SecretAPIKey(),
		PublicKey: a.PublicKeyPEM(),
		Webhook:   a.Webhook(),
	}
}

type calendarDTO struct {
	ID       string                          `json:"id"`
	UserID   string                          `json:"user_id"`
	Name     string                          `json:"name"`
	Key      string                          `json:"key"`
	Settings calendarDomain.CalendarSettings `json:"settings"`
	Metadata map[string]string               `json:"metadata,omitempty"`
}

func newCalendarDTO(c *calendarDomain.Calendar) calendarDTO {
	return calendarDTO{
		ID:       c.ID().String(),
		UserID:   c.UserID().String(),
		Name:     c.Name(),
		Key:      c.Key(),
		Settings: c.Settings(),
		Metadata: c.Metadata(),
	}
}

type eventDTO struct {
	ID          string                          `json:"id"`
	CalendarID  string                          `json:"calendar_id"`
	UserID      string                          `json:"user_id"`
	Title       string                          `json:"title"`
	Description string                          `json:"description"`
	Status      calendarDomain.EventStatus      `json:"status"`
	Busy        bool                            `json:"busy"`
	StartTimeMs int64                           `json:"start_time_ms"`
	DurationMs  int64                           `json:"duration_ms"`
	AllDay      bool                            `json:"all_day"`
	Recurrence  *calendarDomain.RecurrenceRule  `json:"recurrence,omitempty"`
	ExdatesMs   []int64                         `json:"exdates_ms,omitempty"`
	Reminders   []calendarDomain.ReminderOffset `json:"reminders,omitempty"`
	EventType   string                          `json:"event_type"`
	Metadata    map[string]string               `json:"metadata,omitempty"`
}

func newEventDTO(e *calendarDomain.CalendarEvent) eventDTO {
	return eventDTO{
		ID:          e.ID().String(),
		CalendarID:  e.CalendarID().String(),
		UserID:      e.UserID().String(),
		Title:       e.Title(),
		Description: e.Description(),
		Status:      e.Status(),
		Busy:        e.Busy(),
		StartTimeMs: e.StartTimeMs(),
		DurationMs:  e.DurationMs(),
		AllDay:      e.AllDay(),
		Recurrence:  e.Recurrence(),
		ExdatesMs:   e.ExdatesMs(),
		Reminders:   e.Reminders(),
		EventType:   e.EventType(),
		Metadata:    e.Metadata(),
	}
}

func newEventDTOs(events []*calendarDomain.CalendarEvent) []eventDTO {
	out := make([]eventDTO, len(events))
	for i, e := range events {
		out[i] = newEventDTO(e)
	}
	return out
}

type eventInstanceDTO struct {
	Event       eventDTO `json:"event"`
	StartTimeMs int64    `json:"start_time_ms"`
	EndTimeMs   int64    `json:"end_time_ms"`
}

type scheduleDTO struct {
	ID       string                          `json:"id"`
	UserID   string                          `json:"user_id"`
	Timezone string                          `json:"timezone"`
	Rules    []schedulingDomain.ScheduleRule `json:"rules"`
	Metadata map[string]string               `json:"metadata,omitempty"`
}

func newScheduleDTO(s *schedulingDomain.Schedule) scheduleDTO {
	return scheduleDTO{
		ID:       s.ID().String(),
		UserID:   s.UserID().String(),
		Timezone: s.Timezone(),
		Rules:    s.Rules(),
		Metadata: s.Metadata(),
	}
}

type serviceDTO struct {
	ID                  string                           `json:"id"`
	AccountID           string                           `json:"account_id"`
	Name                string                           `json:"name"`
	MultiPerson         bookingDomain.MultiPersonMode     `json:"multi_person"`
	RoundRobinAlgorithm bookingDomain.RoundRobinAlgorithm `json:"round_robin_algorithm,omitempty"`
	GroupMaxCount       int                              `json:"group_max_count,omitempty"`
	Metadata            map[string]string                `json:"metadata,omitempty"`
}

func newServiceDTO(s *bookingDomain.Service) serviceDTO {
	return serviceDTO{
		ID:                  s.ID().String(),
		AccountID:           s.AccountID().String(),
		Name:                s.Name(),
		MultiPerson:         s.MultiPerson(),
		RoundRobinAlgorithm: s.RoundRobinAlgorithm(),
		GroupMaxCount:       s.GroupMaxCount(),
		Metadata:            s.Metadata(),
	}
}

type serviceResourceDTO struct {
	ID                string                     `json:"id"`
	ServiceID         string                     `json:"service_id"`
	UserID            string                     `json:"user_id"`
	Availability      bookingDomain.Availability `json:"availability"`
	BufferBeforeMs    int64                      `json:"buffer_before_ms"`
	BufferAfterMs     int64                      `json:"buffer_after_ms"`
	ClosestBookingMs  int64                      `json:"closest_booking_ms"`
	FurthestBookingMs *int64                     `json:"furthest_booking_ms,omitempty"`
}

func newServiceResourceDTO(r *bookingDomain.ServiceResource) serviceResourceDTO {
	return serviceResourceDTO{
		ID:                r.ID().String(),
		ServiceID:         r.ServiceID().String(),
		UserID:            r.UserID().String(),
		Availability:      r.Availability(),
		BufferBeforeMs:    r.BufferBeforeMs(),
		BufferAfterMs:     r.BufferAfterMs(),
		ClosestBookingMs:  r.ClosestBookingMs(),
		FurthestBookingMs: r.FurthestBookingMs(),
	}
}

// Package outlook implements provider.Adapter against the Microsoft Graph
// calendar API, following the same direct-REST-over-oauth2 shape as the
// Google adapter.
package outlook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nitro-scheduler/nitro/internal/provider"
	"golang.org/x/oauth2"
)

const apiBase = "https://graph.microsoft.com/v1.0"

// Adapter implements provider.Adapter against Microsoft Graph.
type Adapter struct {
	httpClient *http.Client
}

// NewAdapter creates an Outlook/Graph Adapter from an authenticated token source.
func NewAdapter(ctx context.Context, tokenSource oauth2.TokenSource) *Adapter {
	return &Adapter{httpClient: oauth2.NewClient(ctx, tokenSource)}
}

var _ provider.Adapter = (*Adapter)(nil)

type graphCalendar struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	CanEdit                bool   `json:"canEdit"`
}

type graphCalendarList struct {
	Value []graphCalendar `json:"value"`
}

// ListCalendars lists the account's Outlook calendars.
func (a *Adapter) ListCalendars(ctx context.Context, integrationID string) ([]provider.RemoteCalendar, error) {
	var list graphCalendarList
	if err := a.do(ctx, http.MethodGet, apiBase+"/me/calendars", nil, &list); err != nil {
		return nil, err
	}

	out := make([]provider.RemoteCalendar, 0, len(list.Value))
	for _, c := range list.Value {
		out = append(out, provider.RemoteCalendar{ID: c.ID, Name: c.Name, ReadOnly: !c.CanEdit})
	}
	return out, nil
}

type graphScheduleRequest struct {
	Schedules        []string `json:"schedules"`
	StartTime        graphDateTimeTZ `json:"startTime"`
	EndTime          graphDateTimeTZ `json:"endTime"`
	AvailabilityViewInterval int `json:"availabilityViewInterval"`
}

type graphDateTimeTZ struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphScheduleResponseItem struct {
	ScheduleItems []struct {
		Start graphDateTimeTZ `json:"start"`
		End   graphDateTimeTZ `json:"end"`
	} `json:"scheduleItems"`
}

type graphScheduleResponse struct {
	Value []graphScheduleResponseItem `json:"value"`
}

// FreeBusy calls Graph's getSchedule action for one calendar's owning mailbox.
func (a *Adapter) FreeBusy(ctx context.Context, calendarID string, start, end time.Time) ([]provider.BusyBlock, error) {
	reqBody := graphScheduleRequest{
		Schedules:                []string{calendarID},
		StartTime:                graphDateTimeTZ{DateTime: start.UTC().Format("2006-01-02T15:04:05"), TimeZone: "UTC"},
		EndTime:                  graphDateTimeTZ{DateTime: end.UTC().Format("2006-01-02T15:04:05"), TimeZone: "UTC"},
		AvailabilityViewInterval: 15,
	}

	var resp graphScheduleResponse
	if err := a.do(ctx, http.MethodPost, apiBase+"/me/calendar/getSchedule", reqBody, &resp); err != nil {
		return nil, err
	}
	if len(resp.Value) == 0 {
		return nil, nil
	}

	var out []provider.BusyBlock
	for _, item := range resp.Value[0].ScheduleItems {
		s, errStart := time.ParseInLocation("2006-01-02T15:04:05", item.Start.DateTime, time.UTC)
		e, errEnd := time.ParseInLocation("2006-01-02T15:04:05", item.End.DateTime, time.UTC)
		if errStart != nil || errEnd != nil {
			continue
		}
		out = append(out, provider.BusyBlock{Start: s, End: e})
	}
	return out, nil
}

type graphEvent struct {
	ID      string          `json:"id,omitempty"`
	Subject string          `json:"subject"`
	Body    *graphEventBody `json:"body,omitempty"`
	Start   graphDateTimeTZ `json:"start"`
	End     graphDateTimeTZ `json:"end"`
	ShowAs  string          `json:"showAs,omitempty"`
}

type graphEventBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// CreateEvent creates an event on the given calendar.
func (a *Adapter) CreateEvent(ctx context.Context, calendarID string, event provider.RemoteEvent) (string, error) {
	body := toGraphEvent(event)
	var created graphEvent
	url := fmt.Sprintf("%s/me/calendars/%s/events", apiBase, calendarID)
	if err := a.do(ctx, http.MethodPost, url, body, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// UpdateEvent patches an existing event.
func (a *Adapter) UpdateEvent(ctx context.Context, calendarID, externalEventID string, event provider.RemoteEvent) error {
	body := toGraphEvent(event)
	url := fmt.Sprintf("%s/me/calendars/%s/events/%s", apiBase, calendarID, externalEventID)
	return a.do(ctx, http.MethodPatch, url, body, nil)
}

// DeleteEvent deletes an event by id.
func (a *Adapter) DeleteEvent(ctx context.Context, calendarID, externalEventID string) error {
	url := fmt.Sprintf("%s/me/calendars/%s/events/%s", apiBase, calendarID, externalEventID)
	return a.do(ctx, http.MethodDelete, url, nil, nil)
}

func toGraphEvent(event provider.RemoteEvent) graphEvent {
	showAs := "free"
	if event.Busy {
		showAs = "busy"
	}
	return graphEvent{
		Subject: event.Title,
		Body:    &graphEventBody{ContentType: "text", Content: event.Description},
		Start:   graphDateTimeTZ{DateTime: event.Start.UTC().Format("2006-01-02T15:04:05"), TimeZone: "UTC"},
		End:     graphDateTimeTZ{DateTime: event.End.UTC().Format("2006-01-02T15:04:05"), TimeZone: "UTC"},
		ShowAs:  showAs,
	}
}

func (a *Adapter) do(ctx context.Context, method, url string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("outlook calendar: unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

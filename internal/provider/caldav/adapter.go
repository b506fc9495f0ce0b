// Package caldav implements provider.Adapter against a generic CalDAV
// server (Apple Calendar, Fastmail, Nextcloud, ...) through the
// emersion/go-webdav CalDAV client.
package caldav

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nitro-scheduler/nitro/internal/provider"
	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
)

// PropNitro marks events this adapter created, so outbound sync can tell
// its own writes apart from events the user created natively on the server.
const PropNitro = "X-NITRO-SCHEDULER"

// Adapter implements provider.Adapter against one CalDAV account.
type Adapter struct {
	baseURL  string
	username string
	password string
}

// NewAdapter creates a CalDAV Adapter authenticating with basic auth (an
// app-specific password, for providers like Apple Calendar that require one).
func NewAdapter(baseURL, username, password string) *Adapter {
	return &Adapter{baseURL: baseURL, username: username, password: password}
}

var _ provider.Adapter = (*Adapter)(nil)

func (a *Adapter) client() (*caldav.Client, error) {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}
	return caldav.NewClient(webdav.HTTPClientWithBasicAuth(httpClient, a.username, a.password), a.baseURL)
}

// ListCalendars lists the calendars visible under this account's
// principal. integrationID is unused; the adapter is already scoped to
// one account's credentials.
func (a *Adapter) ListCalendars(ctx context.Context, integrationID string) ([]provider.RemoteCalendar, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("caldav: find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("caldav: find calendar home set: %w", err)
	}
	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("caldav: find calendars: %w", err)
	}

	out := make([]provider.RemoteCalendar, 0, len(cals))
	for _, c := range cals {
		out = append(out, provider.RemoteCalendar{ID: c.Path, Name: c.Name})
	}
	return out, nil
}

// FreeBusy reports one VEVENT-per-busy-block within the window; CalDAV has
// no dedicated free/busy query in this client, so every event in range is
// treated as a busy block.
func (a *Adapter) FreeBusy(ctx context.Context, calendarID string, start, end time.Time) ([]provider.BusyBlock, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:  "VCALENDAR",
			Props: []string{"VERSION"},
			Comps: []caldav.CalendarCompRequest{
				{Name: "VEVENT", Props: []string{"DTSTART", "DTEND"}},
			},
		},
		CompFilter: caldav.CompFilter{
			Name:  "VCALENDAR",
			Comps: []caldav.CompFilter{{Name: "VEVENT", Start: start, End: end}},
		},
	}

	objects, err := client.QueryCalendar(ctx, calendarID, query)
	if err != nil {
		return nil, fmt.Errorf("caldav: query calendar: %w", err)
	}

	var out []provider.BusyBlock
	for _, obj := range objects {
		for _, child := range obj.Data.Children {
			if child.Name != ical.CompEvent {
				continue
			}
			ev := &ical.Event{Component: child}
			s, errStart := ev.DateTimeStart(time.UTC)
			e, errEnd := ev.DateTimeEnd(time.UTC)
			if errStart != nil || errEnd != nil {
				continue
			}
			out = append(out, provider.BusyBlock{Start: s, End: e})
		}
	}
	return out, nil
}

// CreateEvent PUTs a new .ics object under calendarID at a path built from
// a UID the adapter generates, and returns that path as the event id.
func (a *Adapter) CreateEvent(ctx context.Context, calendarID string, event provider.RemoteEvent) (string, error) {
	client, err := a.client()
	if err != nil {
		return "", err
	}

	uid := fmt.Sprintf("%d-%s", time.Now().UnixNano(), calendarID)
	cal := toICalendar(uid, event)
	path := calendarID + uid + ".ics"

	if _, err := client.PutCalendarObject(ctx, path, cal); err != nil {
		return "", fmt.Errorf("caldav: put calendar object: %w", err)
	}
	return path, nil
}

// UpdateEvent overwrites the .ics object at externalEventID.
func (a *Adapter) UpdateEvent(ctx context.Context, calendarID, externalEventID string, event provider.RemoteEvent) error {
	client, err := a.client()
	if err != nil {
		return err
	}
	cal := toICalendar(externalEventID, event)
	_, err = client.PutCalendarObject(ctx, externalEventID, cal)
	if err != nil {
		return fmt.Errorf("caldav: update calendar object: %w", err)
	}
	return nil
}

// DeleteEvent removes the .ics object at externalEventID.
func (a *Adapter) DeleteEvent(ctx context.Context, calendarID, externalEventID string) error {
	client, err := a.client()
	if err != nil {
		return err
	}
	return client.RemoveAll(ctx, externalEventID)
}

func toICalendar(uid string, event provider.RemoteEvent) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//Nitro Scheduler//Calendar Sync//EN")

	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, uid)
	ev.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	ev.Props.SetDateTime(ical.PropDateTimeStart, event.Start.UTC())
	ev.Props.SetDateTime(ical.PropDateTimeEnd, event.End.UTC())
	ev.Props.SetText(ical.PropSummary, event.Title)
	if event.Description != "" {
		ev.Props.SetText(ical.PropDescription, event.Description)
	}

	marker := ical.NewProp(PropNitro)
	marker.Value = "1"
	ev.Props[PropNitro] = []ical.Prop{*marker}

	cal.Children = append(cal.Children, ev.Component)
	return cal
}

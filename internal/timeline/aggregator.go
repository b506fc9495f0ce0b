package timeline

import "context"

// CalendarSource yields the raw busy instances of one calendar within a
// window; scheduling/application's calendarBusySource, which expands the
// calendar's events through the recurrence engine, is the concrete
// implementation.
type CalendarSource interface {
	BusyInstances(ctx context.Context, calendarID string, window TimeSpan) ([]Instance, error)
}

// ExternalBusySource yields the busy blocks reported by a connected
// external provider (via its freebusy() adapter call) for a calendar not
// backed by local storage.
type ExternalBusySource interface {
	ExternalBusyInstances(ctx context.Context, syncedCalendarID string, window TimeSpan) ([]Instance, error)
}

// UserTimeline is the merged, complemented busy/free picture for one user.
type UserTimeline struct {
	UserID string
	Busy   []Instance
	Free   []Instance
}

// AggregateUser builds a single user's busy/free timeline across any number
// of calendar sources (local and external), merging and complementing per
// the busy/free interval algebra.
func AggregateUser(ctx context.Context, userID string, window TimeSpan, localCalendarIDs []string, local CalendarSource, externalSyncedCalendarIDs []string, external ExternalBusySource) (UserTimeline, error) {
	var all []Instance

	for _, calendarID := range localCalendarIDs {
		instances, err := local.BusyInstances(ctx, calendarID, window)
		if err != nil {
			return UserTimeline{}, err
		}
		all = append(all, instances...)
	}

	if external != nil {
		for _, syncedID := range externalSyncedCalendarIDs {
			instances, err := external.ExternalBusyInstances(ctx, syncedID, window)
			if err != nil {
				return UserTimeline{}, err
			}
			all = append(all, instances...)
		}
	}

	busy := CompatibleMerge(all)
	free := Complement(busy, window)

	return UserTimeline{UserID: userID, Busy: busy, Free: free}, nil
}

// AggregateMultiUser composes several users' timelines for the multi-user
// freebusy endpoint. Each user is computed independently; there is no
// cross-user merge.
func AggregateMultiUser(ctx context.Context, userIDs []string, window TimeSpan, calendarsByUser map[string][]string, local CalendarSource) (map[string]UserTimeline, error) {
	out := make(map[string]UserTimeline, len(userIDs))
	for _, userID := range userIDs {
		tl, err := AggregateUser(ctx, userID, window, calendarsByUser[userID], local, nil, nil)
		if err != nil {
			return nil, err
		}
		out[userID] = tl
	}
	return out, nil
}

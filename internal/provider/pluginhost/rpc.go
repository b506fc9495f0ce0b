package pluginhost

import (
	"context"
	"net/rpc"
	"time"

	"github.com/nitro-scheduler/nitro/internal/provider"
	"github.com/hashicorp/go-plugin"
)

// AdapterPlugin is the plugin.Plugin implementation shared by host and
// plugin process: the plugin side sets Impl, the host side gets back an
// *AdapterRPCClient satisfying provider.Adapter.
type AdapterPlugin struct {
	Impl provider.Adapter
}

// Server returns the plugin-side RPC server wrapping Impl.
func (p *AdapterPlugin) Server(*plugin.MuxBroker) (interface{}, error) {
	return &adapterRPCServer{impl: p.Impl}, nil
}

// Client returns the host-side RPC client implementing provider.Adapter.
func (p *AdapterPlugin) Client(b *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &AdapterRPCClient{client: c}, nil
}

// AdapterRPCClient is the host-side stand-in for a plugin's Adapter,
// translating each provider.Adapter call into a net/rpc round trip.
type AdapterRPCClient struct {
	client *rpc.Client
}

var _ provider.Adapter = (*AdapterRPCClient)(nil)

type listCalendarsArgs struct{ IntegrationID string }
type freeBusyArgs struct {
	CalendarID       string
	Start, End       time.Time
}
type createEventArgs struct {
	CalendarID string
	Event      provider.RemoteEvent
}
type updateEventArgs struct {
	CalendarID, ExternalEventID string
	Event                       provider.RemoteEvent
}
type deleteEventArgs struct{ CalendarID, ExternalEventID string }

func (c *AdapterRPCClient) ListCalendars(ctx context.Context, integrationID string) ([]provider.RemoteCalendar, error) {
	var out []provider.RemoteCalendar
	err := c.client.Call("Plugin.ListCalendars", listCalendarsArgs{IntegrationID: integrationID}, &out)
	return out, err
}

func (c *AdapterRPCClient) FreeBusy(ctx context.Context, calendarID string, start, end time.Time) ([]provider.BusyBlock, error) {
	var out []provider.BusyBlock
	err := c.client.Call("Plugin.FreeBusy", freeBusyArgs{CalendarID: calendarID, Start: start, End: end}, &out)
	return out, err
}

func (c *AdapterRPCClient) CreateEvent(ctx context.Context, calendarID string, event provider.RemoteEvent) (string, error) {
	var out string
	err := c.client.Call("Plugin.CreateEvent", createEventArgs{CalendarID: calendarID, Event: event}, &out)
	return out, err
}

func (c *AdapterRPCClient) UpdateEvent(ctx context.Context, calendarID, externalEventID string, event provider.RemoteEvent) error {
	var out struct{}
	return c.client.Call("Plugin.UpdateEvent", updateEventArgs{CalendarID: calendarID, ExternalEventID: externalEventID, Event: event}, &out)
}

func (c *AdapterRPCClient) DeleteEvent(ctx context.Context, calendarID, externalEventID string) error {
	var out struct{}
	return c.client.Call("Plugin.DeleteEvent", deleteEventArgs{CalendarID: calendarID, ExternalEventID: externalEventID}, &out)
}

// adapterRPCServer is the plugin-side net/rpc server, dispensed inside the
// plugin subprocess and invoked by the host's AdapterRPCClient.
type adapterRPCServer struct {
	impl provider.Adapter
}

func (s *adapterRPCServer) ListCalendars(args listCalendarsArgs, out *[]provider.RemoteCalendar) error {
	res, err := s.impl.ListCalendars(context.Background(), args.IntegrationID)
	*out = res
	return err
}

func (s *adapterRPCServer) FreeBusy(args freeBusyArgs, out *[]provider.BusyBlock) error {
	res, err := s.impl.FreeBusy(context.Background(), args.CalendarID, args.Start, args.End)
	*out = res
	return err
}

func (s *adapterRPCServer) CreateEvent(args createEventArgs, out *string) error {
	res, err := s.impl.CreateEvent(context.Background(), args.CalendarID, args.Event)
	*out = res
	return err
}

func (s *adapterRPCServer) UpdateEvent(args updateEventArgs, out *struct{}) error {
	return s.impl.UpdateEvent(context.Background(), args.CalendarID, args.ExternalEventID, args.Event)
}

func (s *adapterRPCServer) DeleteEvent(args deleteEventArgs, out *struct{}) error {
	return s.impl.DeleteEvent(context.Background(), args.CalendarID, args.ExternalEventID)
}

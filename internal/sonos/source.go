// Package sonos reads playback state from Sonos speakers over UPnP.
package sonos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tessro/tracklog/internal/core"
)

// Source implements core.StateSource for the coordinator of one Sonos room.
type Source struct {
	room    string
	timeout time.Duration
	soap    *soapClient
	logger  *slog.Logger

	// discover is swapped in tests.
	discover func(ctx context.Context, timeout time.Duration) ([]*Device, error)

	mu     sync.Mutex
	device *Device
}

// Option configures a Source.
type Option func(*Source)

// WithDevice skips discovery and polls d directly.
func WithDevice(d *Device) Option {
	return func(s *Source) {
		s.device = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSource creates a source for room. An empty room uses the first group
// found. A zero timeout uses three seconds of discovery.
func NewSource(room string, timeout time.Duration, opts ...Option) *Source {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	s := &Source{
		room:     room,
		timeout:  timeout,
		soap:     newSOAPClient(),
		logger:   slog.Default(),
		discover: discover,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type transportInfo struct {
	CurrentTransportState string `xml:"CurrentTransportState"`
	CurrentSpeed          string `xml:"CurrentSpeed"`
}

type positionInfo struct {
	TrackDuration string `xml:"TrackDuration"`
	TrackMetaData string `xml:"TrackMetaData"`
	TrackURI      string `xml:"TrackURI"`
	RelTime       string `xml:"RelTime"`
}

// GetState returns the coordinator's current track, or nil when nothing with
// metadata is loaded. A failed request forgets the device so the next poll
// rediscovers it.
func (s *Source) GetState(ctx context.Context) (*core.RawState, error) {
	device, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}

	var (
		wg        sync.WaitGroup
		transport transportInfo
		position  positionInfo
		tErr      error
		pErr      error
	)
	args := map[string]string{"InstanceID": "0"}
	wg.Add(2)
	go func() {
		defer wg.Done()
		tErr = s.soap.call(ctx, device, avTransportEndpoint, avTransportService, "GetTransportInfo", args, &transport)
	}()
	go func() {
		defer wg.Done()
		pErr = s.soap.call(ctx, device, avTransportEndpoint, avTransportService, "GetPositionInfo", args, &position)
	}()
	wg.Wait()

	if err := errors.Join(tErr, pErr); err != nil {
		s.forget(device)
		return nil, err
	}
	return convertState(transport, position), nil
}

func convertState(transport transportInfo, position positionInfo) *core.RawState {
	md, ok := parseTrackMetadata(position.TrackMetaData)
	if !ok {
		return nil
	}

	playing := transport.CurrentTransportState == "PLAYING" ||
		transport.CurrentTransportState == "TRANSITIONING"
	raw := &core.RawState{
		TrackID:  trackID(position.TrackURI),
		Title:    md.Title,
		Artist:   md.Artist,
		Album:    md.Album,
		Duration: parseDuration(position.TrackDuration),
		Position: parseDuration(position.RelTime),
		Paused:   !playing,
	}
	if playing {
		raw.PlaybackRate = 1
	}
	return raw
}

// resolve returns the cached coordinator, discovering it if needed.
func (s *Source) resolve(ctx context.Context) (*Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device != nil {
		return s.device, nil
	}

	devices, groups, err := discoverGroups(ctx, s.soap, s.discover, s.timeout)
	if err != nil {
		return nil, err
	}

	coordinator := pickCoordinator(groups, s.room)
	if coordinator == nil {
		if s.room != "" {
			return nil, fmt.Errorf("sonos room %q not found", s.room)
		}
		coordinator = devices[0]
	}
	s.logger.Info("using sonos speaker", "room", coordinator.Name, "ip", coordinator.IP)
	s.device = coordinator
	return coordinator, nil
}

func (s *Source) forget(d *Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device == d {
		s.device = nil
	}
}

// Groups discovers speakers on the local network and returns their groups.
func Groups(ctx context.Context, timeout time.Duration) ([]Group, error) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	_, groups, err := discoverGroups(ctx, newSOAPClient(), discover, timeout)
	return groups, err
}

func discoverGroups(
	ctx context.Context,
	soap *soapClient,
	find func(context.Context, time.Duration) ([]*Device, error),
	timeout time.Duration,
) ([]*Device, []Group, error) {
	devices, err := find(ctx, timeout)
	if err != nil && len(devices) == 0 {
		return nil, nil, fmt.Errorf("sonos discovery: %w", err)
	}
	if len(devices) == 0 {
		return nil, nil, fmt.Errorf("no sonos devices found")
	}

	var state struct {
		ZoneGroupState string `xml:"ZoneGroupState"`
	}
	if err := soap.call(ctx, devices[0], zoneGroupTopologyEndpoint, zoneGroupTopologyService, "GetZoneGroupState", nil, &state); err != nil {
		return nil, nil, err
	}
	groups, err := parseZoneGroupState(state.ZoneGroupState)
	if err != nil {
		return nil, nil, err
	}
	return devices, groups, nil
}

// pickCoordinator returns the coordinator of the group containing room, or of
// the first group when room is empty.
func pickCoordinator(groups []Group, room string) *Device {
	for _, g := range groups {
		if g.Coordinator == nil {
			continue
		}
		if room == "" {
			return g.Coordinator
		}
		for _, m := range g.Members {
			if strings.EqualFold(m.Name, room) {
				return g.Coordinator
			}
		}
	}
	return nil
}

// parseDuration parses H:MM:SS. Anything else, such as NOT_IMPLEMENTED for
// radio streams, is zero.
func parseDuration(s string) time.Duration {
	var h, m, sec int
	if n, _ := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); n != 3 {
		return 0
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second
}

var _ core.StateSource = (*Source)(nil)

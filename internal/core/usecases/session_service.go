package usecases

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/camera"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/ports"
)

// SessionService owns one camera controller per connected map view.
type SessionService struct {
	geo  ports.GeometryEngine
	area *domain.AllowedArea
	cfg  camera.Config
	opts []camera.Option

	mu       sync.RWMutex
	sessions map[string]*camera.Controller
}

// NewSessionService creates a registry whose controllers share the given
// area, configuration and options.
func NewSessionService(geo ports.GeometryEngine, area *domain.AllowedArea, cfg camera.Config, opts ...camera.Option) *SessionService {
	return &SessionService{
		geo:      geo,
		area:     area,
		cfg:      cfg,
		opts:     opts,
		sessions: make(map[string]*camera.Controller),
	}
}

// NewID returns a fresh session identifier.
func (s *SessionService) NewID() string {
	return uuid.NewString()
}

// SpatialReference is the reference every session host must use.
func (s *SessionService) SpatialReference() domain.SpatialReference {
	return s.area.SpatialReference
}

// Home returns the initial camera and its center projected into the session
// spatial reference.
func (s *SessionService) Home() (domain.Camera, domain.MapPoint, error) {
	cam := s.cfg.InitialCamera
	center, err := s.geo.Project(domain.GeoPoint{
		Lat: cam.Position.Latitude,
		Lon: cam.Position.Longitude,
	}, s.area.SpatialReference)
	if err != nil {
		return domain.Camera{}, domain.MapPoint{}, fmt.Errorf("project home center: %w", err)
	}
	return cam, center, nil
}

// Open starts a controller for host and registers it under id. The
// controller runs until Close or until ctx is done.
func (s *SessionService) Open(ctx context.Context, id string, host ports.CameraHost) (*camera.Controller, error) {
	ctrl, err := camera.New(host, s.geo, s.area, s.cfg, s.opts...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if _, exists := s.sessions[id]; exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: session %s already open", domain.ErrInvalidInput, id)
	}
	s.sessions[id] = ctrl
	s.mu.Unlock()

	ctrl.Start(ctx)
	go func() {
		<-ctrl.Done()
		s.remove(id, ctrl)
	}()
	return ctrl, nil
}

// Close stops and unregisters a session. Unknown ids are ignored.
func (s *SessionService) Close(id string) {
	s.mu.Lock()
	ctrl, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		ctrl.Close()
	}
}

func (s *SessionService) remove(id string, ctrl *camera.Controller) {
	s.mu.Lock()
	if s.sessions[id] == ctrl {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
}

// Get returns the controller for id.
func (s *SessionService) Get(id string) (*camera.Controller, error) {
	s.mu.RLock()
	ctrl, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return ctrl, nil
}

// Count returns the number of open sessions.
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// AdjustTilt steps the session's tilt baseline and animates to it.
func (s *SessionService) AdjustTilt(ctx context.Context, id string, dir domain.TiltDirection) (float64, error) {
	ctrl, err := s.Get(id)
	if err != nil {
		return 0, err
	}
	return ctrl.AdjustTilt(ctx, dir)
}

// FocusOn flies the session camera to a geographic point.
func (s *SessionService) FocusOn(ctx context.Context, id string, p domain.GeoPoint) error {
	ctrl, err := s.Get(id)
	if err != nil {
		return err
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: coordinates out of range", domain.ErrInvalidInput)
	}
	mp, err := s.geo.Project(p, s.area.SpatialReference)
	if err != nil {
		return fmt.Errorf("project focus point: %w", err)
	}
	return ctrl.FocusOn(ctx, mp)
}

// ResetView returns the session camera to the initial view.
func (s *SessionService) ResetView(ctx context.Context, id string) error {
	ctrl, err := s.Get(id)
	if err != nil {
		return err
	}
	return ctrl.ResetView(ctx)
}

// Status returns the session controller snapshot.
func (s *SessionService) Status(ctx context.Context, id string) (*camera.Status, error) {
	ctrl, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	st, err := ctrl.Status(ctx)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// CloseAll stops every session.
func (s *SessionService) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*camera.Controller)
	s.mu.Unlock()
	for _, ctrl := range all {
		ctrl.Close()
	}
}

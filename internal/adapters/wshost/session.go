package wshost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fasthttp/websocket"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/camera"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// Conn is the subset of a websocket connection a session needs.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
}

// Controller is the camera controller surface driven by a session.
type Controller interface {
	HandleTouch(ctx context.Context, ev domain.TouchEvent) (domain.Decision, error)
	HandleNativeGesture(ev domain.NativeGestureEvent) domain.Decision
	HandleKey(key string) domain.Decision
	HandleDrag(button int) domain.Decision
	CameraChanged(cam domain.Camera)
	CenterChanged(center domain.MapPoint)
	AdjustTilt(ctx context.Context, dir domain.TiltDirection) (float64, error)
	FocusOn(ctx context.Context, p domain.MapPoint) error
	ResetView(ctx context.Context) error
	Status(ctx context.Context) (camera.Status, error)
}

// Session pumps one client connection: it feeds input and camera snapshots
// to the controller and carries transitions back to the client.
type Session struct {
	id   string
	conn Conn
	host *Host
	log  *slog.Logger

	wmu sync.Mutex
}

// NewSession creates a session and its camera host.
func NewSession(id string, conn Conn, sr domain.SpatialReference, cam domain.Camera, center domain.MapPoint, log *slog.Logger) *Session {
	s := &Session{
		id:   id,
		conn: conn,
		log:  log.With("session", id),
	}
	s.host = NewHost(sr, cam, center, s.Send)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Host returns the camera host backed by this connection.
func (s *Session) Host() *Host { return s.host }

// Send writes one message. Safe for concurrent use.
func (s *Session) Send(msg Outbound) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", msg.Type, err)
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Serve reads client messages until the connection closes or ctx is done.
// Outstanding transitions are failed on return.
func (s *Session) Serve(ctx context.Context, ctrl Controller) error {
	defer s.host.Close()

	if err := s.Send(Outbound{Type: TypeHello, Session: s.id, SpatialReference: s.host.SpatialReference().WKID}); err != nil {
		return fmt.Errorf("send hello: %w", err)
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(0, "invalid message")
			continue
		}
		if err := s.handle(ctx, ctrl, msg); err != nil {
			if errors.Is(err, camera.ErrClosed) {
				return nil
			}
			s.log.Debug("session message rejected", "type", msg.Type, "error", err)
			s.sendError(msg.Seq, err.Error())
		}
	}
}

func (s *Session) handle(ctx context.Context, ctrl Controller, msg Inbound) error {
	switch msg.Type {
	case TypeTouch:
		if msg.Touch == nil {
			return errors.New("touch: missing event")
		}
		d, err := ctrl.HandleTouch(ctx, *msg.Touch)
		if err != nil {
			return err
		}
		return s.sendDecision(msg.Seq, d)

	case TypeGesture:
		ev := domain.NativeGestureEvent{}
		if msg.Gesture != nil {
			ev = *msg.Gesture
		}
		return s.sendDecision(msg.Seq, ctrl.HandleNativeGesture(ev))

	case TypeKey:
		return s.sendDecision(msg.Seq, ctrl.HandleKey(msg.Key))

	case TypeDrag:
		if msg.Button == nil {
			return errors.New("drag: missing button")
		}
		return s.sendDecision(msg.Seq, ctrl.HandleDrag(*msg.Button))

	case TypeCamera:
		if msg.Camera == nil && msg.Center == nil {
			return errors.New("camera: empty snapshot")
		}
		if msg.Camera != nil {
			s.host.UpdateCamera(*msg.Camera)
			ctrl.CameraChanged(*msg.Camera)
		}
		if msg.Center != nil {
			s.host.UpdateCenter(*msg.Center)
			ctrl.CenterChanged(*msg.Center)
		}
		return nil

	case TypeSettled:
		if !s.host.Settle(msg.ID, msg.Outcome, msg.Error) {
			s.log.Debug("settle for unknown transition", "id", msg.ID, "outcome", msg.Outcome)
		}
		return nil

	case TypeTilt:
		tilt, err := ctrl.AdjustTilt(ctx, msg.Direction)
		if err != nil {
			return err
		}
		topDown := domain.IsTopDown(tilt)
		return s.Send(Outbound{Type: TypeTilt, Seq: msg.Seq, Tilt: &tilt, TopDown: &topDown})

	case TypeFocus:
		if msg.Point == nil {
			return errors.New("focus: missing point")
		}
		return ctrl.FocusOn(ctx, *msg.Point)

	case TypeReset:
		return ctrl.ResetView(ctx)

	case TypeStatus:
		st, err := ctrl.Status(ctx)
		if err != nil {
			return err
		}
		return s.Send(Outbound{Type: TypeStatus, Seq: msg.Seq, Status: &st})
	}

	return fmt.Errorf("unknown message type %q", msg.Type)
}

func (s *Session) sendDecision(seq uint64, d domain.Decision) error {
	return s.Send(Outbound{Type: TypeDecision, Seq: seq, Intent: d.Intent.String(), Suppress: d.Suppress()})
}

func (s *Session) sendError(seq uint64, message string) {
	if err := s.Send(Outbound{Type: TypeError, Seq: seq, Message: message}); err != nil {
		s.log.Debug("send error message failed", "error", err)
	}
}

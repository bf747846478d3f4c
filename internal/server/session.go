package server

import (
	"github.com/zeusync/worldcore/internal/core/entity"
	"github.com/zeusync/worldcore/internal/core/observability/log"
)

// SessionKey is the behaviour a connected player uses to receive frames
// broadcast by the room it stands in.
const SessionKey entity.Key = "session"

// Frame is one server-to-client websocket message.
type Frame struct {
	Kind  string   `json:"kind"`
	From  string   `json:"from,omitempty"`
	Text  string   `json:"text,omitempty"`
	Names []string `json:"names,omitempty"`
}

const (
	FrameEnter = "enter"
	FrameLeave = "leave"
	FrameSay   = "say"
	FrameLook  = "look"
	FrameError = "error"
)

type sessionAttribute struct {
	outbound chan<- Frame
}

func (sessionAttribute) Key() entity.Key { return SessionKey }

type sessionBehaviour struct{}

func (sessionBehaviour) Key() entity.Key { return SessionKey }

func (sessionBehaviour) Init(_ *entity.Context, args any) (sessionAttribute, error) {
	outbound, ok := args.(chan Frame)
	if !ok {
		return sessionAttribute{}, entity.ErrInvalidAttribute
	}
	return sessionAttribute{outbound: outbound}, nil
}

func (sessionBehaviour) HandleCall(_ *entity.Context, attr sessionAttribute, _ any) (any, sessionAttribute, error) {
	return nil, attr, entity.ErrUnknownMessage
}

// HandleEvent forwards frames to the connection writer. A full buffer means
// the client is not keeping up; the frame is dropped rather than stalling
// the player entity.
func (sessionBehaviour) HandleEvent(ctx *entity.Context, attr sessionAttribute, ev any) (sessionAttribute, error) {
	frame, ok := ev.(Frame)
	if !ok {
		return attr, entity.ErrUnknownMessage
	}
	select {
	case attr.outbound <- frame:
	default:
		ctx.Logger().Warn("outbound buffer full, frame dropped", log.String("kind", frame.Kind))
	}
	return attr, nil
}

func frameEvent(f Frame) entity.Event {
	return entity.Event{Key: SessionKey, Payload: f}
}

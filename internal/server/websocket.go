package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/worldcore/internal/core/behaviours/inventory"
	"github.com/zeusync/worldcore/internal/core/behaviours/parent"
	"github.com/zeusync/worldcore/internal/core/entity"
	"github.com/zeusync/worldcore/internal/core/observability/log"
	"github.com/zeusync/worldcore/pkg/sequence"
)

// Command is one client-to-server websocket message.
type Command struct {
	Action string `json:"action"`
	Text   string `json:"text,omitempty"`
}

const (
	ActionSay  = "say"
	ActionLook = "look"
	ActionQuit = "quit"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const writeWait = 5 * time.Second

func (g *Gateway) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, ErrMissingName.Error(), http.StatusBadRequest)
		return
	}
	roomName := r.URL.Query().Get("room")
	if roomName == "" {
		roomName = g.defaultRoom
	}
	room, ok := g.world.LookupName(roomName)
	if !ok {
		http.Error(w, ErrRoomNotFound.Error(), http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}
	defer conn.Close()

	logger := g.logger.With(log.String("player", name), log.String("room", roomName))
	ctx := r.Context()

	outbound := make(chan Frame, g.outboundBuffer)
	player, err := g.join(ctx, name, room, outbound)
	if err != nil {
		logger.Warn("join failed", log.Error(err))
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(Frame{Kind: FrameError, Text: err.Error()})
		return
	}
	logger.Info("player joined")

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		g.writeLoop(conn, player, outbound)
	}()

	g.readLoop(ctx, conn, player, room, outbound, logger)

	g.leave(room, player)
	<-writerDone
	logger.Info("player left")
}

// join spawns the player entity and puts it in room.
func (g *Gateway) join(ctx context.Context, name string, room *entity.Ref, outbound chan Frame) (*entity.Ref, error) {
	player, err := g.world.Spawn(name)
	if err != nil {
		return nil, err
	}
	if err = parent.Register(ctx, player); err != nil {
		player.Stop()
		return nil, err
	}
	if err = entity.PutBehaviour(ctx, player, entity.Adapt[sessionAttribute](sessionBehaviour{}), outbound); err != nil {
		player.Stop()
		return nil, err
	}
	if err = inventory.AddEntity(ctx, room, player); err != nil {
		player.Stop()
		return nil, err
	}
	inventory.NotifyExcept(room, player, frameEvent(Frame{Kind: FrameEnter, From: name}))
	return player, nil
}

func (g *Gateway) leave(room, player *entity.Ref) {
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if _, err := inventory.RemoveEntity(ctx, room, player); err != nil {
		g.logger.Debug("remove from room failed", log.Stringer("player", player), log.Error(err))
	}
	inventory.NotifyExcept(room, player, frameEvent(Frame{Kind: FrameLeave, From: player.Name()}))
	player.Stop()
}

func (g *Gateway) readLoop(ctx context.Context, conn *websocket.Conn, player, room *entity.Ref, outbound chan<- Frame, logger log.Log) {
	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("read failed", log.Error(err))
			}
			return
		}

		switch cmd.Action {
		case ActionSay:
			inventory.NotifyExcept(room, player, frameEvent(Frame{Kind: FrameSay, From: player.Name(), Text: cmd.Text}))
		case ActionLook:
			refs, err := inventory.GetEntities(ctx, room)
			if err != nil {
				g.reply(outbound, Frame{Kind: FrameError, Text: err.Error()})
				continue
			}
			names := sequence.Map(sequence.From(refs), (*entity.Ref).Name).Collect()
			g.reply(outbound, Frame{Kind: FrameLook, Names: names})
		case ActionQuit:
			return
		default:
			g.reply(outbound, Frame{Kind: FrameError, Text: "unknown action " + cmd.Action})
		}
	}
}

func (g *Gateway) reply(outbound chan<- Frame, f Frame) {
	select {
	case outbound <- f:
	default:
		g.logger.Warn("outbound buffer full, reply dropped", log.String("kind", f.Kind))
	}
}

// writeLoop drains outbound until the player entity terminates. It closes
// the connection on the way out so a blocked reader wakes up.
func (g *Gateway) writeLoop(conn *websocket.Conn, player *entity.Ref, outbound <-chan Frame) {
	defer conn.Close()
	for {
		select {
		case f := <-outbound:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(f); err != nil {
				g.logger.Debug("write failed", log.Stringer("player", player), log.Error(err))
				return
			}
		case <-player.Done():
			return
		}
	}
}

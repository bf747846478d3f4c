package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/worldcore/internal/config"
	"github.com/zeusync/worldcore/internal/core/observability/log"
	"github.com/zeusync/worldcore/internal/core/world"
)

// Gateway is the websocket front-end of the world. Each connection becomes a
// player entity standing in one room.
type Gateway struct {
	world          *world.World
	listenAddr     string
	defaultRoom    string
	outboundBuffer int
	logger         log.Log

	httpServer *http.Server

	listenerMx sync.RWMutex
	listener   net.Listener

	running int32 // atomic bool
	closed  int32 // atomic bool
}

func NewGateway(cfg config.Config, w *world.World, logger log.Log) *Gateway {
	g := &Gateway{
		world:          w,
		listenAddr:     cfg.Server.ListenAddr,
		defaultRoom:    cfg.Server.DefaultRoom,
		outboundBuffer: cfg.Server.OutboundBuffer,
		logger:         logger.With(log.String("component", "gateway")),
	}
	g.httpServer = &http.Server{
		Handler:           g.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return g
}

// Handler routes /ws to the websocket endpoint.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.handleWebSocket)
	return mux
}

// Start listens on the configured address and serves in the background.
func (g *Gateway) Start(_ context.Context) error {
	if atomic.LoadInt32(&g.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&g.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	listener, err := net.Listen("tcp", g.listenAddr)
	if err != nil {
		atomic.StoreInt32(&g.running, 0)
		g.logger.Error("failed to create listener", log.Error(err))
		return err
	}
	g.listenerMx.Lock()
	g.listener = listener
	g.listenerMx.Unlock()

	go func() {
		if err := g.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway stopped serving", log.Error(err))
		}
	}()

	g.logger.Info("gateway listening", log.String("addr", listener.Addr().String()))
	return nil
}

// Addr is the bound address, useful when listening on port 0.
func (g *Gateway) Addr() string {
	g.listenerMx.RLock()
	defer g.listenerMx.RUnlock()
	if g.listener == nil {
		return ""
	}
	return g.listener.Addr().String()
}

// Stop stops accepting connections. Hijacked websocket connections are not
// tracked by http.Server; they end when the world stops their player.
func (g *Gateway) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&g.running, 1, 0) {
		return ErrServerNotRunning
	}
	atomic.StoreInt32(&g.closed, 1)
	g.logger.Info("stopping gateway")
	return g.httpServer.Shutdown(ctx)
}

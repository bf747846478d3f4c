package main

import (
	"bufio"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"

	"github.com/zeusync/worldcore/internal/core/observability/log"
	"github.com/zeusync/worldcore/internal/server"
)

type Client struct {
	conn   *websocket.Conn
	frames chan server.Frame
	done   chan struct{}
}

func Dial(addr, room, name string) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	q := u.Query()
	q.Set("room", room)
	q.Set("name", name)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		conn:   conn,
		frames: make(chan server.Frame, 100),
		done:   make(chan struct{}),
	}
	go c.readFrames()

	return c, nil
}

func (c *Client) readFrames() {
	defer close(c.frames)
	for {
		var f server.Frame
		if err := c.conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				fmt.Fprintf(os.Stderr, "websocket error: %v\n", err)
			}
			return
		}
		select {
		case c.frames <- f:
		case <-c.done:
			return
		}
	}
}

func (c *Client) Send(cmd server.Command) error {
	return c.conn.WriteJSON(cmd)
}

func (c *Client) Close() error {
	close(c.done)
	return c.conn.Close()
}

// parseLine turns "/look", "/quit" or free text into a command.
func parseLine(line string) server.Command {
	switch strings.TrimSpace(line) {
	case "/look":
		return server.Command{Action: server.ActionLook}
	case "/quit":
		return server.Command{Action: server.ActionQuit}
	default:
		return server.Command{Action: server.ActionSay, Text: line}
	}
}

func render(f server.Frame) string {
	switch f.Kind {
	case server.FrameEnter:
		return fmt.Sprintf("* %s enters", f.From)
	case server.FrameLeave:
		return fmt.Sprintf("* %s leaves", f.From)
	case server.FrameSay:
		return fmt.Sprintf("%s: %s", f.From, f.Text)
	case server.FrameLook:
		return "here: " + strings.Join(f.Names, ", ")
	default:
		return "! " + f.Text
	}
}

func main() {
	addr := flag.String("addr", "localhost:8080", "gateway address")
	room := flag.String("room", "lobby", "room to join")
	name := flag.String("name", "", "player name")
	flag.Parse()

	logger := log.New(log.LevelInfo)
	defer func() { _ = logger.Sync() }()

	if *name == "" {
		logger.Fatal("player name is required")
	}

	client, err := Dial(*addr, *room, *name)
	if err != nil {
		logger.Fatal("Failed to connect", log.String("addr", *addr), log.Error(err))
	}
	defer func() { _ = client.Close() }()

	go func() {
		for f := range client.frames {
			fmt.Println(render(f))
		}
		os.Exit(0)
	}()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			cmd := parseLine(scanner.Text())
			if err := client.Send(cmd); err != nil {
				logger.Error("Failed to send", log.Error(err))
				return
			}
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)
	<-stopCh

	_ = client.Send(server.Command{Action: server.ActionQuit})
}

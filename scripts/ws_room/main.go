// Command ws_room is a terminal client for poking at a running server:
// it joins a room, prints incoming events, and sends chat lines from stdin.
// Lines prefixed with "/code " are sent as code updates instead.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/codelive/server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_room: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:4000/ws", "WebSocket address")
	room := flag.String("room", "", "room key to join (usually a code block id)")
	sender := flag.String("sender", "cli", "chat sender label")
	flag.Parse()

	if *room == "" {
		return errors.New("-room is required")
	}

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	joinPayload, err := json.Marshal(proto.JoinData{Room: *room})
	if err != nil {
		return fmt.Errorf("marshal join: %w", err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeJoin, Data: joinPayload}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	fmt.Printf("Connected to %s, room %s\n", *addr, *room)
	fmt.Println("Type to chat, prefix with /code to send a code update. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn, *room, *sender)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		if outbound.Type == proto.OutboundTypeError && outbound.Error != nil {
			fmt.Printf("error: %s (%s)\n", outbound.Error.Msg, outbound.Error.Code)
			continue
		}

		switch outbound.Event {
		case proto.EventRoleAssigned:
			var evt proto.RoleAssignedData
			if decode(outbound.Data, &evt) {
				fmt.Printf("[%s] you are the %s\n", evt.Room, evt.Role)
			}
		case proto.EventStudentCount:
			var evt proto.StudentCountData
			if decode(outbound.Data, &evt) {
				fmt.Printf("[%s] students in room: %d\n", evt.Room, evt.Count)
			}
		case proto.EventReceiveCode:
			var evt proto.ReceiveCodeData
			if decode(outbound.Data, &evt) {
				fmt.Printf("[%s] code:\n%s\n", evt.Room, evt.Code)
			}
		case proto.EventSolutionMatched:
			var evt proto.SolutionMatchedData
			if decode(outbound.Data, &evt) {
				fmt.Printf("[%s] solution matched!\n", evt.Room)
			}
		case proto.EventReceiveMessage:
			var evt proto.ReceiveMessageData
			if decode(outbound.Data, &evt) {
				fmt.Printf("[%s] %s: %s\n", evt.Room, evt.Sender, evt.Text)
			}
		case proto.EventRedirectLobby:
			fmt.Println("mentor left, room closed")
			return
		default:
			fmt.Printf("event=%s data=%v\n", outbound.Event, outbound.Data)
		}
	}
}

func decode(data any, dst any) bool {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("marshal outbound data: %v", err)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Printf("unmarshal outbound data: %v", err)
		return false
	}
	return true
}

func writeLoop(ctx context.Context, conn *websocket.Conn, room, sender string) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			var inbound proto.Inbound
			if code, isCode := strings.CutPrefix(text, "/code "); isCode {
				payload, err := json.Marshal(proto.CodeData{Room: room, Code: code})
				if err != nil {
					log.Printf("marshal code: %v", err)
					return
				}
				inbound = proto.Inbound{Type: proto.InboundTypeCode, Data: payload}
			} else {
				payload, err := json.Marshal(proto.ChatData{Room: room, Sender: sender, Text: text})
				if err != nil {
					log.Printf("marshal chat: %v", err)
					return
				}
				inbound = proto.Inbound{Type: proto.InboundTypeChat, Data: payload}
			}

			if err := wsjson.Write(ctx, conn, inbound); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}

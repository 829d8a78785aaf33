package http

import (
	"encoding/json"

	"github.com/codelive/server/internal/core"
	"github.com/codelive/server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandJoinRoom,
			Room: join.Room,
		}, nil, nil
	case proto.InboundTypeCode:
		var code proto.CodeData
		if err := json.Unmarshal(inbound.Data, &code); err != nil {
			return nil, nil, err
		}
		if code.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandCodeUpdate,
			Room: code.Room,
			Code: code.Code,
		}, nil, nil
	case proto.InboundTypeChat:
		var chat proto.ChatData
		if err := json.Unmarshal(inbound.Data, &chat); err != nil {
			return nil, nil, err
		}
		if chat.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandChatMessage,
			Room: chat.Room,
			Chat: core.ChatMessage{
				Sender: chat.Sender,
				Text:   chat.Text,
			},
		}, nil, nil
	case proto.InboundTypeLeave:
		var leave proto.JoinData
		if err := json.Unmarshal(inbound.Data, &leave); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind: core.CommandLeaveRoom,
			Room: leave.Room,
		}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventRoleAssigned:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventRoleAssigned,
			Data: proto.RoleAssignedData{
				Room: event.Room,
				Role: string(event.Role),
			},
		}
	case core.EventStudentCount:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventStudentCount,
			Data: proto.StudentCountData{
				Room:  event.Room,
				Count: event.Count,
			},
		}
	case core.EventCodeUpdate:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventReceiveCode,
			Data: proto.ReceiveCodeData{
				Room: event.Room,
				Code: event.Code,
			},
		}
	case core.EventSolutionMatched:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventSolutionMatched,
			Data: proto.SolutionMatchedData{
				Room:    event.Room,
				Matched: event.Matched,
			},
		}
	case core.EventChatMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventReceiveMessage,
			Data: proto.ReceiveMessageData{
				Room:   event.Room,
				Sender: event.Chat.Sender,
				Text:   event.Chat.Text,
			},
		}
	case core.EventRedirectLobby:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventRedirectLobby,
			Data: proto.RedirectLobbyData{
				Room: event.Room,
			},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

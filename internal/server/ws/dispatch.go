package ws

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/server/protocol"
)

// errorEvents maps an inbound event to the constructor of its error reply.
// msgToServer has none: its failures are never reported to the client.
var errorEvents = map[string]func(string) protocol.Event{
	protocol.EventCreateChat:      protocol.ChatCreateError,
	protocol.EventGetChatMessages: protocol.MessagesError,
	protocol.EventDeleteChat:      protocol.ChatDeleteError,
}

// invalidPayloadMessages is the reply text for a malformed payload per event.
var invalidPayloadMessages = map[string]string{
	protocol.EventCreateChat:      protocol.MsgUsersRequired,
	protocol.EventGetChatMessages: protocol.MsgChatIDRequired,
	protocol.EventDeleteChat:      protocol.MsgInvalidRequest,
}

func (s *Server) replyError(ctx context.Context, p *Peer, event, msg string) {
	build, ok := errorEvents[event]
	if !ok {
		return
	}
	if err := p.Send(build(msg)); err != nil {
		s.log.Debug(ctx, "error reply not sent", "user_id", p.userID, "event", event, "error", err)
	}
}

func (s *Server) reply(ctx context.Context, p *Peer, ev protocol.Event) {
	if err := p.Send(ev); err != nil {
		s.log.Debug(ctx, "reply not sent", "user_id", p.userID, "event", ev.Name, "error", err)
	}
}

// dispatch handles one inbound frame. It never panics.
func (s *Server) dispatch(ctx context.Context, p *Peer, raw []byte) {
	f, err := protocol.ParseFrame(raw)
	if err != nil {
		s.log.Warn(ctx, "undecodable frame ignored", "user_id", p.userID, "error", err)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error(ctx, "handler panic", "user_id", p.userID, "event", f.Event,
				"panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			s.replyError(ctx, p, f.Event, protocol.MsgInternal)
		}
	}()

	cmd, err := protocol.Decode(f)
	if err != nil {
		if errors.Is(err, protocol.ErrUnknownEvent) {
			s.log.Debug(ctx, "unknown event ignored", "user_id", p.userID, "event", f.Event)
			return
		}
		s.log.Warn(ctx, "invalid payload", "user_id", p.userID, "event", f.Event, "error", err)
		s.replyError(ctx, p, f.Event, invalidPayloadMessages[f.Event])
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	switch c := cmd.(type) {
	case protocol.CreateChat:
		s.handleCreateChat(reqCtx, p, c)
	case protocol.GetChatMessages:
		s.handleGetChatMessages(reqCtx, p, c)
	case protocol.DeleteChat:
		s.handleDeleteChat(reqCtx, p, c)
	case protocol.SendMessage:
		s.handleSendMessage(reqCtx, p, c)
	default:
		s.log.Error(ctx, "unhandled command", "user_id", p.userID, "type", fmt.Sprintf("%T", cmd))
	}
}

func (s *Server) handleCreateChat(ctx context.Context, p *Peer, c protocol.CreateChat) {
	chat, err := s.deps.Chats.CreateChat(ctx, p.userID, c.Users)
	if err != nil {
		var unknown *common.UnknownUserError
		switch {
		case errors.As(err, &unknown):
			s.log.Warn(ctx, "create chat with unknown user", "user_id", p.userID, "name", unknown.Name)
			s.replyError(ctx, p, protocol.EventCreateChat, unknown.Error())
		case errors.Is(err, common.ErrValidation):
			s.replyError(ctx, p, protocol.EventCreateChat, protocol.MsgUsersRequired)
		default:
			s.log.Error(ctx, "create chat failed", "user_id", p.userID, "error", err)
			s.replyError(ctx, p, protocol.EventCreateChat, protocol.MsgInternal)
		}
		return
	}
	s.reply(ctx, p, protocol.ChatCreated(chat))
}

func (s *Server) handleGetChatMessages(ctx context.Context, p *Peer, c protocol.GetChatMessages) {
	views, err := s.deps.History.History(ctx, c.ChatID, p.userID)
	if err != nil {
		s.replyError(ctx, p, protocol.EventGetChatMessages, s.queryErrorMessage(ctx, p, c.ChatID, err))
		return
	}
	s.reply(ctx, p, protocol.ChatMessages(views))
	s.log.Debug(ctx, "history sent", "user_id", p.userID, "chat_id", c.ChatID, "messages", len(views))
}

func (s *Server) handleDeleteChat(ctx context.Context, p *Peer, c protocol.DeleteChat) {
	if _, err := s.deps.Chats.DeleteChat(ctx, c.ChatID, p.userID); err != nil {
		s.replyError(ctx, p, protocol.EventDeleteChat, s.queryErrorMessage(ctx, p, c.ChatID, err))
	}
}

// handleSendMessage only logs failures.
func (s *Server) handleSendMessage(ctx context.Context, p *Peer, c protocol.SendMessage) {
	_, err := s.deps.Messages.Submit(ctx, c.ChatID, p.userID, c.Message)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrSilentDrop), errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrNotFound):
		s.log.Warn(ctx, "message dropped", "user_id", p.userID, "chat_id", c.ChatID, "error", err)
	default:
		s.log.Error(ctx, "message failed", "user_id", p.userID, "chat_id", c.ChatID, "error", err)
	}
}

// queryErrorMessage maps a chat lookup failure to its client-facing text.
func (s *Server) queryErrorMessage(ctx context.Context, p *Peer, chatID string, err error) string {
	switch {
	case errors.Is(err, common.ErrNotFound):
		s.log.Warn(ctx, "chat not found", "user_id", p.userID, "chat_id", chatID)
		return protocol.MsgChatNotFound
	case errors.Is(err, common.ErrForbidden):
		s.log.Warn(ctx, "access denied", "user_id", p.userID, "chat_id", chatID)
		return protocol.MsgAccessDenied
	default:
		s.log.Error(ctx, "chat request failed", "user_id", p.userID, "chat_id", chatID, "error", err)
		return protocol.MsgInternal
	}
}

package protocol

import (
	"encoding/json"

	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

// Outbound event names.
const (
	EventChatUpdate      = "chatUpdate"
	EventChatCreated     = "chatCreated"
	EventChatCreateError = "chatCreateError"
	EventChatMessages    = "chatMessages"
	EventMessagesError   = "messagesError"
	EventMsgToClient     = "msgToClient"
	EventChatDeleteError = "chatDeleteError"
)

// Client-facing error messages.
const (
	MsgUsersRequired  = "Users array is required"
	MsgChatIDRequired = "Chat ID is required"
	MsgChatNotFound   = "Chat not found"
	MsgAccessDenied   = "Access denied to this chat"
	MsgInvalidRequest = "Invalid request data"
	MsgInternal       = "Internal server error"
)

// Event is a server-to-client message.
type Event struct {
	Name string
	Data any
}

func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Event string `json:"event"`
		Data  any    `json:"data"`
	}{Event: e.Name, Data: e.Data})
}

// ErrorPayload is the body of every *Error event.
type ErrorPayload struct {
	Message string `json:"message"`
}

// ChatCreatedPayload acknowledges a created chat to its creator.
type ChatCreatedPayload struct {
	ID    string   `json:"id"`
	Users []string `json:"users"`
}

func ChatUpdate(chats []models.ChatSummary) Event {
	if chats == nil {
		chats = []models.ChatSummary{}
	}
	return Event{Name: EventChatUpdate, Data: chats}
}

func ChatCreated(chat *models.Chat) Event {
	return Event{Name: EventChatCreated, Data: ChatCreatedPayload{ID: chat.ID, Users: chat.Members}}
}

func ChatMessages(messages []models.MessageView) Event {
	if messages == nil {
		messages = []models.MessageView{}
	}
	return Event{Name: EventChatMessages, Data: messages}
}

func MsgToClient(m models.MessageView) Event {
	return Event{Name: EventMsgToClient, Data: m}
}

func ChatCreateError(msg string) Event {
	return Event{Name: EventChatCreateError, Data: ErrorPayload{Message: msg}}
}

func MessagesError(msg string) Event {
	return Event{Name: EventMessagesError, Data: ErrorPayload{Message: msg}}
}

func ChatDeleteError(msg string) Event {
	return Event{Name: EventChatDeleteError, Data: ErrorPayload{Message: msg}}
}

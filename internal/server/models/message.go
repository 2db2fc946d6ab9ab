package models

import "time"

// Message is an immutable chat message. CreatedAt is assigned by the store.
type Message struct {
	ID        string
	ChatID    string
	SenderID  string
	Content   string
	CreatedAt time.Time
}

// MessageView is a message annotated with its sender's display name, as
// delivered to clients.
type MessageView struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	ChatID    string    `json:"chatId"`
}

// NewMessageView builds the client view of m sent by senderName.
func NewMessageView(m *Message, senderName string) MessageView {
	return MessageView{
		ID:        m.ID,
		Content:   m.Content,
		Sender:    senderName,
		Timestamp: m.CreatedAt,
		ChatID:    m.ChatID,
	}
}

package models

import "slices"

// Chat is a conversation between a fixed set of members (user IDs).
type Chat struct {
	ID      string
	Members []string
}

// HasMember reports whether userID belongs to the chat.
func (c *Chat) HasMember(userID string) bool {
	return slices.Contains(c.Members, userID)
}

// ChatSummary is one row of a user's chat-list snapshot.
type ChatSummary struct {
	ChatID  string   `json:"chatId"`
	Members []string `json:"members"`
}

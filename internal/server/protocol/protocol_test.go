package protocol

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(t *testing.T, raw string) Frame {
	t.Helper()
	f, err := ParseFrame([]byte(raw))
	require.NoError(t, err)
	return f
}

func TestParseFrame_Malformed(t *testing.T) {
	for _, raw := range []string{`not json`, `{}`, `{"data":{}}`, `[1,2]`} {
		_, err := ParseFrame([]byte(raw))
		assert.ErrorIs(t, err, common.ErrValidation, raw)
	}
}

func TestDecode_Commands(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Command
	}{
		{
			name: "create chat trims names",
			raw:  `{"event":"createChat","data":{"users":[" bob ","carol"]}}`,
			want: CreateChat{Users: []string{"bob", "carol"}},
		},
		{
			name: "get chat messages",
			raw:  `{"event":"getChatMessages","data":{"chatId":"c1"}}`,
			want: GetChatMessages{ChatID: "c1"},
		},
		{
			name: "delete chat",
			raw:  `{"event":"deleteChat","data":{"chatId":" c2 "}}`,
			want: DeleteChat{ChatID: "c2"},
		},
		{
			name: "message keeps raw content",
			raw:  `{"event":"msgToServer","data":{"chatId":"c1","message":"  hi  "}}`,
			want: SendMessage{ChatID: "c1", Message: "  hi  "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(frame(t, tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_InvalidPayloads(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		event string
	}{
		{"create without data", `{"event":"createChat"}`, EventCreateChat},
		{"create with empty users", `{"event":"createChat","data":{"users":[]}}`, EventCreateChat},
		{"create with blank name", `{"event":"createChat","data":{"users":["bob","  "]}}`, EventCreateChat},
		{"create with non-array users", `{"event":"createChat","data":{"users":"bob"}}`, EventCreateChat},
		{"messages without chat id", `{"event":"getChatMessages","data":{}}`, EventGetChatMessages},
		{"messages with blank chat id", `{"event":"getChatMessages","data":{"chatId":"  "}}`, EventGetChatMessages},
		{"delete with null data", `{"event":"deleteChat","data":null}`, EventDeleteChat},
		{"message without content", `{"event":"msgToServer","data":{"chatId":"c1"}}`, EventMsgToServer},
		{"message without chat", `{"event":"msgToServer","data":{"message":"hi"}}`, EventMsgToServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(frame(t, tt.raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrValidation)

			var perr *InvalidPayloadError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.event, perr.Event)
		})
	}
}

func TestDecode_UnknownEvent(t *testing.T) {
	_, err := Decode(frame(t, `{"event":"joinRoom","data":{}}`))
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestDecodeAuth(t *testing.T) {
	a, err := DecodeAuth(frame(t, `{"event":"auth","data":{"token":" abc "}}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", a.Token)

	_, err = DecodeAuth(frame(t, `{"event":"auth","data":{"token":""}}`))
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = DecodeAuth(frame(t, `{"event":"createChat","data":{"users":["a"]}}`))
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestEvent_MarshalJSON(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name:  "empty chat update is an array",
			event: ChatUpdate(nil),
			want:  `{"event":"chatUpdate","data":[]}`,
		},
		{
			name:  "chat update",
			event: ChatUpdate([]models.ChatSummary{{ChatID: "c1", Members: []string{"alice", "bob"}}}),
			want:  `{"event":"chatUpdate","data":[{"chatId":"c1","members":["alice","bob"]}]}`,
		},
		{
			name:  "chat created",
			event: ChatCreated(&models.Chat{ID: "c1", Members: []string{"u1", "u2"}}),
			want:  `{"event":"chatCreated","data":{"id":"c1","users":["u1","u2"]}}`,
		},
		{
			name:  "message",
			event: MsgToClient(models.MessageView{ID: "m1", Content: "hello", Sender: "alice", Timestamp: at, ChatID: "c1"}),
			want:  `{"event":"msgToClient","data":{"id":"m1","content":"hello","sender":"alice","timestamp":"2026-03-01T12:00:00Z","chatId":"c1"}}`,
		},
		{
			name:  "empty history is an array",
			event: ChatMessages(nil),
			want:  `{"event":"chatMessages","data":[]}`,
		},
		{
			name:  "error",
			event: MessagesError(MsgChatNotFound),
			want:  `{"event":"messagesError","data":{"message":"Chat not found"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.event)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}
}

package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) router() *MessageRouter {
	return NewMessageRouter(f.repos, f.registry, f.locks, logging.Discard())
}

func TestSubmit_PersistsAndFansOut(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, "alice", "bob", "carol")
	chat := f.chat(t, "alice", "bob")
	alice := f.connect("alice")
	bob := f.connect("bob")
	carol := f.connect("carol")

	view, err := f.router().Submit(context.Background(), chat.ID, f.id("alice"), "  hello  ")
	req.NoError(err)
	req.Equal("hello", view.Content)
	req.Equal("alice", view.Sender)
	req.Equal(chat.ID, view.ChatID)
	req.False(view.Timestamp.IsZero())

	for _, c := range []*recordingConn{alice, bob} {
		got := c.Named(protocol.EventMsgToClient)
		req.Len(got, 1)
		req.Equal(*view, got[0].Data.(models.MessageView))
	}
	req.Empty(carol.Events())

	stored, err := f.repos.Messages().ListByChat(context.Background(), chat.ID)
	req.NoError(err)
	req.Len(stored, 1)
	req.Equal("hello", stored[0].Content)
}

func TestSubmit_LengthBounds(t *testing.T) {
	f := newFixture(t, "alice")
	chat := f.chat(t, "alice")

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"blank", "   ", true},
		{"empty", "", true},
		{"max", strings.Repeat("a", common.MaxMessageLength), false},
		{"max in runes", strings.Repeat("ж", common.MaxMessageLength), false},
		{"too long", strings.Repeat("a", common.MaxMessageLength+1), true},
		{"max in surrogate pairs", strings.Repeat("😀", common.MaxMessageLength/2), false},
		{"surrogate pairs over max", strings.Repeat("😀", common.MaxMessageLength/2+1), true},
		{"mixed planes over max", strings.Repeat("a", common.MaxMessageLength-1) + "😀", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.router().Submit(context.Background(), chat.ID, f.id("alice"), tt.content)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestMessageLength(t *testing.T) {
	assert.Equal(t, 0, messageLength(""))
	assert.Equal(t, 5, messageLength("hello"))
	assert.Equal(t, 3, messageLength("жжж"))
	assert.Equal(t, 2, messageLength("😀"))
	assert.Equal(t, 4, messageLength("a😀b"))
}

func TestSubmit_InvalidContentTouchesNoStore(t *testing.T) {
	f := newFixture(t, "alice")
	_, err := f.router().Submit(context.Background(), "missing", f.id("alice"), " ")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestSubmit_NonMemberIsDroppedSilently(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, "alice", "bob", "mallory")
	chat := f.chat(t, "alice", "bob")
	alice := f.connect("alice")

	_, err := f.router().Submit(context.Background(), chat.ID, f.id("mallory"), "hi")
	req.ErrorIs(err, common.ErrSilentDrop)
	req.Empty(alice.Events())

	stored, err := f.repos.Messages().ListByChat(context.Background(), chat.ID)
	req.NoError(err)
	req.Empty(stored)
}

func TestSubmit_UnknownChat(t *testing.T) {
	f := newFixture(t, "alice")
	_, err := f.router().Submit(context.Background(), "missing", f.id("alice"), "hi")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSubmit_ConcurrentSendersSeeSameOrder(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, "alice", "bob", "carol")
	chat := f.chat(t, "alice", "bob", "carol")
	conns := []*recordingConn{f.connect("alice"), f.connect("bob"), f.connect("carol")}
	router := f.router()

	var wg sync.WaitGroup
	for _, sender := range []string{"alice", "bob", "carol"} {
		wg.Add(1)
		go func(sender string) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				_, err := router.Submit(context.Background(), chat.ID, f.id(sender), fmt.Sprintf("%s-%d", sender, i))
				assert.NoError(t, err)
			}
		}(sender)
	}
	wg.Wait()

	stored, err := f.repos.Messages().ListByChat(context.Background(), chat.ID)
	req.NoError(err)
	var want []string
	for _, m := range stored {
		want = append(want, m.ID)
	}

	for _, c := range conns {
		var got []string
		for _, ev := range c.Named(protocol.EventMsgToClient) {
			got = append(got, ev.Data.(models.MessageView).ID)
		}
		req.Equal(want, got)
	}
	req.Equal(0, router.locks.size())
}

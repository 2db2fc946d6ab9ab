// Package protocol defines the gateway's wire format: the JSON frame
// envelope, the closed set of inbound commands, and the outbound events.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// Inbound event names.
const (
	EventAuth            = "auth"
	EventCreateChat      = "createChat"
	EventGetChatMessages = "getChatMessages"
	EventDeleteChat      = "deleteChat"
	EventMsgToServer     = "msgToServer"
)

// ErrUnknownEvent is returned by Decode for event names outside the protocol.
var ErrUnknownEvent = errors.New("unknown event")

var validate = validator.New()

// Frame is the envelope of every WebSocket text message in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Command is an inbound request from an authenticated client. The set of
// implementations is closed; dispatch with a type switch.
type Command interface {
	isCommand()
}

type CreateChat struct {
	Users []string `json:"users" validate:"required,min=1,dive,required"`
}

type GetChatMessages struct {
	ChatID string `json:"chatId" validate:"required"`
}

type DeleteChat struct {
	ChatID string `json:"chatId" validate:"required"`
}

type SendMessage struct {
	ChatID  string `json:"chatId" validate:"required"`
	Message string `json:"message" validate:"required"`
}

func (CreateChat) isCommand()      {}
func (GetChatMessages) isCommand() {}
func (DeleteChat) isCommand()      {}
func (SendMessage) isCommand()     {}

// Authenticate is the handshake frame a client sends when its token did not
// accompany the upgrade request. It is not a Command.
type Authenticate struct {
	Token string `json:"token" validate:"required"`
}

// InvalidPayloadError reports a known event whose payload failed to decode
// or validate. It wraps common.ErrValidation.
type InvalidPayloadError struct {
	Event string
	Err   error
}

func (e *InvalidPayloadError) Error() string {
	return fmt.Sprintf("invalid %s payload: %v", e.Event, e.Err)
}

func (e *InvalidPayloadError) Unwrap() []error {
	return []error{common.ErrValidation, e.Err}
}

// ParseFrame decodes the envelope of a raw message.
func ParseFrame(raw []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Frame{}, fmt.Errorf("%w: malformed frame: %v", common.ErrValidation, err)
	}
	if f.Event == "" {
		return Frame{}, fmt.Errorf("%w: frame without event", common.ErrValidation)
	}
	return f, nil
}

// Decode turns a frame into its Command. Identifiers are trimmed before
// validation, so a blank chatId counts as missing.
func Decode(f Frame) (Command, error) {
	switch f.Event {
	case EventCreateChat:
		var c CreateChat
		if err := decodeInto(f, &c); err != nil {
			return nil, err
		}
		c.Users = lo.Map(c.Users, func(name string, _ int) string { return strings.TrimSpace(name) })
		if err := check(f.Event, c); err != nil {
			return nil, err
		}
		return c, nil
	case EventGetChatMessages:
		var c GetChatMessages
		if err := decodeInto(f, &c); err != nil {
			return nil, err
		}
		c.ChatID = strings.TrimSpace(c.ChatID)
		if err := check(f.Event, c); err != nil {
			return nil, err
		}
		return c, nil
	case EventDeleteChat:
		var c DeleteChat
		if err := decodeInto(f, &c); err != nil {
			return nil, err
		}
		c.ChatID = strings.TrimSpace(c.ChatID)
		if err := check(f.Event, c); err != nil {
			return nil, err
		}
		return c, nil
	case EventMsgToServer:
		var c SendMessage
		if err := decodeInto(f, &c); err != nil {
			return nil, err
		}
		c.ChatID = strings.TrimSpace(c.ChatID)
		if err := check(f.Event, c); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, f.Event)
	}
}

// DecodeAuth decodes the handshake frame.
func DecodeAuth(f Frame) (Authenticate, error) {
	var a Authenticate
	if f.Event != EventAuth {
		return a, &InvalidPayloadError{Event: f.Event, Err: errors.New("auth frame expected")}
	}
	if err := decodeInto(f, &a); err != nil {
		return a, err
	}
	a.Token = strings.TrimSpace(a.Token)
	return a, check(f.Event, a)
}

func decodeInto(f Frame, v any) error {
	if len(f.Data) == 0 || string(f.Data) == "null" {
		return &InvalidPayloadError{Event: f.Event, Err: errors.New("missing data")}
	}
	if err := json.Unmarshal(f.Data, v); err != nil {
		return &InvalidPayloadError{Event: f.Event, Err: err}
	}
	return nil
}

func check(event string, v any) error {
	if err := validate.Struct(v); err != nil {
		return &InvalidPayloadError{Event: event, Err: err}
	}
	return nil
}

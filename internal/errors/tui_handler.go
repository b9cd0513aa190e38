package errors

import (
	"sync"
	"time"
)

// maxMessages bounds the TUI toast history.
const maxMessages = 50

// TUIHandler keeps toasts for the status line.
type TUIHandler struct {
	mu       sync.RWMutex
	messages []Message
	onToast  func(msg Message)
	now      func() time.Time
}

// Message is one toast.
type Message struct {
	Text      string
	Type      MessageType
	Timestamp time.Time
}

// MessageType is the toast severity.
type MessageType int

const (
	MessageTypeError MessageType = iota
	MessageTypeWarning
	MessageTypeInfo
	MessageTypeSuccess
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeError:
		return "error"
	case MessageTypeWarning:
		return "warning"
	case MessageTypeSuccess:
		return "success"
	default:
		return "info"
	}
}

// NewTUIHandler creates a TUIHandler. onToast, if set, is called for every
// new message while the handler lock is held; it must not call back into h.
func NewTUIHandler(onToast func(msg Message)) *TUIHandler {
	return &TUIHandler{onToast: onToast, now: time.Now}
}

func (h *TUIHandler) Error(msg string)   { h.add(msg, MessageTypeError) }
func (h *TUIHandler) Warning(msg string) { h.add(msg, MessageTypeWarning) }
func (h *TUIHandler) Info(msg string)    { h.add(msg, MessageTypeInfo) }
func (h *TUIHandler) Success(msg string) { h.add(msg, MessageTypeSuccess) }

func (h *TUIHandler) add(text string, typ MessageType) {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := Message{Text: text, Type: typ, Timestamp: h.now()}
	h.messages = append(h.messages, msg)
	if len(h.messages) > maxMessages {
		h.messages = h.messages[len(h.messages)-maxMessages:]
	}
	if h.onToast != nil {
		h.onToast(msg)
	}
}

// Latest returns the newest toast.
func (h *TUIHandler) Latest() (Message, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.messages) == 0 {
		return Message{}, false
	}
	return h.messages[len(h.messages)-1], true
}

// Visible returns the newest toast if it is younger than ttl.
func (h *TUIHandler) Visible(ttl time.Duration) (Message, bool) {
	msg, ok := h.Latest()
	if !ok || h.now().Sub(msg.Timestamp) > ttl {
		return Message{}, false
	}
	return msg, true
}

// All returns a copy of the retained toasts, oldest first.
func (h *TUIHandler) All() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	copied := make([]Message, len(h.messages))
	copy(copied, h.messages)
	return copied
}

// Clear drops every toast.
func (h *TUIHandler) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}

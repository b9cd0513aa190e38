package errors

import (
	stderrors "errors"

	"github.com/machibo/backoffice/internal/api"
)

// Generic toast texts used when the server sent no message.
const (
	MsgSessionExpired = "Session expired, please log in again"
	MsgNetwork        = "Network error, please try again"
)

// ToastOutcome always toasts the result of a user action. The server message
// is preferred on both success and failure; otherwise a generic text built
// from action is used.
func ToastOutcome(h ErrorHandler, action, serverMsg string, err error) {
	if err == nil {
		if serverMsg == "" {
			serverMsg = action + " succeeded"
		}
		h.Success(serverMsg)
		return
	}
	h.Error(FailureText(action, err))
}

// FailureText is the toast text for a failed action.
// An expired or missing session always reads as such, whatever the server
// said.
func FailureText(action string, err error) string {
	if api.IsUnauthorized(err) {
		return MsgSessionExpired
	}
	if msg := api.ServerMessage(err); msg != "" {
		return msg
	}
	switch {
	case stderrors.Is(err, api.ErrNetwork):
		return MsgNetwork
	default:
		return action + " failed"
	}
}

package state

import (
	"github.com/machibo/backoffice/internal/domain"
	"github.com/machibo/backoffice/internal/poller"
)

// listLoadedMsg is sent when a list fetch finishes.
type listLoadedMsg struct {
	err error
	// cleared asks the model to copy the reset draft back into the inputs.
	cleared bool
}

// detailLoadedMsg is sent when a withdrawal detail is available.
type detailLoadedMsg struct {
	id     int64
	detail domain.WithdrawalDetail
	err    error
}

// decisionDoneMsg is sent after an approve or reject call.
type decisionDoneMsg struct {
	id  int64
	err error
}

// pendingUpdateMsg carries a poller update into the program.
type pendingUpdateMsg poller.Update

// clearStatusMsg re-renders once a toast has expired.
type clearStatusMsg struct{}

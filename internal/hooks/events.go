package hooks

import (
	"context"
	"strconv"
	"strings"

	"github.com/machibo/backoffice/internal/poller"
)

// PendingNewEnv describes a poll update to pending-new scripts.
func PendingNewEnv(upd poller.Update) map[string]string {
	ids := make([]string, len(upd.Novel))
	for i, id := range upd.Novel {
		ids[i] = strconv.FormatInt(id, 10)
	}
	return map[string]string{
		"PENDING_COUNT": strconv.Itoa(upd.Badge),
		"NEW_IDS":       strings.Join(ids, ","),
		"ALERTED":       strconv.FormatBool(upd.Alerted),
	}
}

// PostDecisionEnv describes a completed decision to post-decision scripts.
func PostDecisionEnv(id int64, decision, remark string) map[string]string {
	return map[string]string{
		"WITHDRAWAL_ID": strconv.FormatInt(id, 10),
		"DECISION":      decision,
		"REMARK":        remark,
	}
}

// PollListener returns a poller listener that runs pending-new scripts for
// updates carrying unseen IDs.
func (r *Runner) PollListener() func(poller.Update) {
	return func(upd poller.Update) {
		if len(upd.Novel) == 0 {
			return
		}
		_ = r.Run(context.Background(), PointPendingNew, PendingNewEnv(upd))
	}
}

// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package exchange

import (
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"turn-based-flow-grpc-plugin-server-go/pkg/common"
	"turn-based-flow-grpc-plugin-server-go/pkg/match"
)

// Resolution is the outcome of folding the complete exchanges of a match
type Resolution struct {
	// State is the merged match state blob
	State []byte
	// Retired lists the folded exchanges in fold order
	Retired []string
	// Records holds one fold record per retired exchange
	Records []string
	// Errors reports the exchanges that were skipped
	Errors []error
}

/*
Reconciler folds complete exchanges into the match state. It is the only
place that decides an exchange is retired: once folded, an exchange is never
folded again, even before the platform reports it as resolved. A failed save
hands the exchanges back with Release.

Not safe for concurrent use.
*/
type Reconciler struct {
	retired map[string]map[string]struct{}
	log     logrus.FieldLogger
}

func NewReconciler(log logrus.FieldLogger) *Reconciler {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Reconciler{retired: make(map[string]map[string]struct{}), log: log}
}

// Reconcile returns the merged state and retired exchanges, or false when
// nothing is eligible and the state must not be written.
func (r *Reconciler) Reconcile(m *match.Match) (Resolution, bool) {
	var res Resolution

	r.prune(m)
	candidates := r.eligible(m)
	if len(candidates) == 0 {
		return res, false
	}

	for _, e := range candidates {
		record, err := fold(e)
		if err != nil {
			err = errors.Wrapf(err, "exchange %s", e.ExchangeID)
			r.log.Errorf("skipping exchange for match %s: %v", m.MatchID, err)
			res.Errors = append(res.Errors, err)

			continue
		}
		res.Records = append(res.Records, record)
		res.Retired = append(res.Retired, e.ExchangeID)
	}
	if len(res.Records) == 0 {
		return res, false
	}

	state, err := AppendRecords(m.State, res.Records...)
	if err != nil {
		r.log.Errorf("cannot merge exchanges into match %s: %v", m.MatchID, err)
		res.Errors = append(res.Errors, err)
		res.Records, res.Retired = nil, nil

		return res, false
	}
	res.State = state

	for _, id := range res.Retired {
		r.retire(m.MatchID, id)
	}
	r.log.Infof("folded %d exchanges into match %s", len(res.Retired), m.MatchID)

	return res, true
}

// Release makes exchanges eligible again, after the merged state failed to
// reach the platform
func (r *Reconciler) Release(matchID string, ids []string) {
	set := r.retired[matchID]
	for _, id := range ids {
		delete(set, id)
	}
	if len(set) == 0 {
		delete(r.retired, matchID)
	}
}

// IsRetired reports whether the exchange has already been folded
func (r *Reconciler) IsRetired(matchID, exchangeID string) bool {
	_, ok := r.retired[matchID][exchangeID]

	return ok
}

// Forget drops all bookkeeping for a match, e.g. once it ended
func (r *Reconciler) Forget(matchID string) {
	delete(r.retired, matchID)
}

func (r *Reconciler) eligible(m *match.Match) []*match.Exchange {
	var out []*match.Exchange
	for _, e := range m.Exchanges {
		if e.Status == match.ExchangeComplete && !r.IsRetired(m.MatchID, e.ExchangeID) {
			out = append(out, e)
		}
	}

	return pie.SortStableUsing(out, func(a, b *match.Exchange) bool {
		return a.CompletedAt.Before(b.CompletedAt)
	})
}

func (r *Reconciler) retire(matchID, exchangeID string) {
	common.Assert(!r.IsRetired(matchID, exchangeID), "exchange %s of match %s folded twice", exchangeID, matchID)
	set, ok := r.retired[matchID]
	if !ok {
		set = make(map[string]struct{})
		r.retired[matchID] = set
	}
	set[exchangeID] = struct{}{}
}

// prune forgets exchanges the platform already reports as resolved, they can
// no longer be complete
func (r *Reconciler) prune(m *match.Match) {
	set := r.retired[m.MatchID]
	if len(set) == 0 {
		return
	}
	for _, e := range m.Exchanges {
		if e.Status == match.ExchangeResolved {
			delete(set, e.ExchangeID)
		}
	}
}

// fold turns the replies of one exchange into a single record, tagged by
// replying participant in arrival order
func fold(e *match.Exchange) (string, error) {
	if !e.AllRepliesIn() {
		return "", ErrMissingReplies
	}

	parts := make([]string, 0, len(e.Replies))
	for _, reply := range e.Replies {
		value, err := DecodeReply(reply.Payload)
		if err != nil {
			return "", errors.Wrapf(err, "reply from %s", reply.PlayerID)
		}
		parts = append(parts, string(reply.PlayerID)+":"+value)
	}

	return strings.Join(parts, "|"), nil
}

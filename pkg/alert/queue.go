// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package alert

import (
	"github.com/sirupsen/logrus"

	"turn-based-flow-grpc-plugin-server-go/pkg/common"
)

/*
Queue serializes notifications into one-at-a-time presentation.

The head of the queue is the only entry that may be on screen. Entries are
kept sorted by non-increasing category priority, stable inside a priority.
When a new entry outranks the live head it takes the head position; the
former head is withdrawn through the presenter and goes back to pending, and
the new head is only presented once that withdrawal is acknowledged, so a
prompt is never presented over another one.

The queue is driven from a single goroutine and does no locking.
*/
type Queue struct {
	entries   []*Notification
	presenter Presenter
	log       logrus.FieldLogger
}

func NewQueue(presenter Presenter, log logrus.FieldLogger) *Queue {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Queue{presenter: presenter, log: log}
}

// Enqueue adds n to the queue and reports whether it was kept. A notification
// with the same correlation key and category as a live entry is discarded.
func (q *Queue) Enqueue(n *Notification) bool {
	if len(q.entries) == 0 {
		q.entries = append(q.entries, n)
		q.sync()

		return true
	}

	for _, e := range q.entries {
		if e.live() && e.sameKind(n) {
			q.log.Infof("discarding %s notification for %q, queue already holds one with similar purpose", n.Category, n.CorrelationKey)

			return false
		}
	}

	start := 0
	if !q.entries[0].live() {
		// the head is on its way out and keeps its slot until Advance
		start = 1
	}

	index := len(q.entries)
	for i := start; i < len(q.entries); i++ {
		if q.entries[i].Category.Priority().Less(n.Category.Priority()) {
			index = i

			break
		}
	}

	q.entries = append(q.entries, nil)
	copy(q.entries[index+1:], q.entries[index:])
	q.entries[index] = n
	q.log.Debugf("queued %s notification at %d of %d", n.Category, index, len(q.entries))

	q.sync()

	return true
}

// Dismiss asks the presenter to take the head down when it is of the given
// category. Dismissing a head that is not on screen is a programmer error.
func (q *Queue) Dismiss(category Category) bool {
	if len(q.entries) == 0 {
		q.log.Debugf("no notification to dismiss for %s", category)

		return false
	}

	head := q.entries[0]
	if head.Category != category {
		q.log.Debugf("head is %s, not dismissing %s", head.Category, category)

		return false
	}
	if head.leaving || head.cancelled {
		return false
	}
	if !common.Assert(head.State == StatePresented && !head.withdrawing,
		"tried to dismiss %s notification %s that is not visible (%s)", head.Category, head.ID, head.State) {
		return false
	}

	head.leaving = true
	q.presenter.Dismiss(head)

	return true
}

// Advance pops the head once it is no longer on screen and presents the next
// entry, if any. It is a no-op on an empty queue.
func (q *Queue) Advance() {
	if len(q.entries) == 0 {
		q.log.Debug("empty alert queue, nothing to advance")

		return
	}

	head := q.entries[0]
	idle := head.State == StateDismissed || (head.State == StatePending && !head.requested && !head.withdrawing)
	if !common.Assert(idle, "attempted to dequeue %s notification %s that is still shown", head.Category, head.ID) {
		return
	}

	q.entries[0] = nil
	q.entries = q.entries[1:]
	if len(q.entries) == 0 {
		q.log.Debug("no more queued notifications to present")

		return
	}

	q.sync()
}

// Withdraw drops a queued entry that has not reached the screen. It returns
// false when there is no such entry or it is already being presented.
func (q *Queue) Withdraw(key string, category Category) bool {
	for i, e := range q.entries {
		if e.CorrelationKey != key || e.Category != category || !e.live() {
			continue
		}
		if e.State != StatePending || e.requested || e.withdrawing {
			return false
		}
		q.remove(i)
		q.log.Debugf("withdrew queued %s notification for %q", category, key)
		q.sync()

		return true
	}

	return false
}

// Presented records the presenter's acknowledgement that id is on screen.
// Acknowledgements come from outside; one that does not answer a pending
// request is logged and ignored.
func (q *Queue) Presented(id string) {
	index, n := q.find(id)
	if n == nil {
		q.log.Warnf("presenter acknowledged unknown notification %s", id)

		return
	}
	if !n.requested {
		q.log.Warnf("ignoring on-screen acknowledgement for %s notification %s, it was not requested (%s)", n.Category, id, n.State)

		return
	}

	n.requested = false
	n.State = StatePresented
	if n.cancelled && index == 0 {
		n.leaving = true
		q.presenter.Dismiss(n)

		return
	}
	q.sync()
}

// Dismissed records the presenter's acknowledgement that id left the screen.
// It returns true when the head was dismissed and the queue can Advance.
func (q *Queue) Dismissed(id string) bool {
	index, n := q.find(id)
	if n == nil {
		q.log.Warnf("presenter dismissed unknown notification %s", id)

		return false
	}

	if n.withdrawing || (index > 0 && n.requested) {
		n.withdrawing = false
		n.requested = false
		n.State = StatePending
		if n.cancelled {
			q.remove(index)
		}
		q.sync()

		return false
	}
	if index > 0 || (n.State != StatePresented && !n.requested) {
		q.log.Warnf("ignoring stale dismissal of %s notification %s (%s, position %d)", n.Category, id, n.State, index)

		return false
	}

	n.requested = false
	n.leaving = false
	n.State = StateDismissed

	return true
}

// Retract takes down the live entry matching key, category and subject
// wherever it stands. A queued entry is dropped, the head on screen is
// dismissed, and an entry the presenter has not acknowledged yet is taken
// down as soon as it is. An empty subject matches any entry.
func (q *Queue) Retract(key string, category Category, subject string) bool {
	for i, e := range q.entries {
		if e.CorrelationKey != key || e.Category != category || !e.live() {
			continue
		}
		if subject != "" && e.Subject != subject {
			continue
		}

		switch {
		case e.requested || e.withdrawing:
			e.cancelled = true
		case e.State == StatePresented:
			e.leaving = true
			q.presenter.Dismiss(e)
		default:
			q.remove(i)
			q.sync()
		}
		q.log.Debugf("retracted %s notification for %q", category, key)

		return true
	}

	return false
}

// Head returns the entry that is, or is next to be, on screen
func (q *Queue) Head() *Notification {
	if len(q.entries) == 0 {
		return nil
	}

	return q.entries[0]
}

func (q *Queue) Len() int { return len(q.entries) }

// Entries returns a copy of the queue in presentation order
func (q *Queue) Entries() []Notification {
	out := make([]Notification, 0, len(q.entries))
	for _, e := range q.entries {
		out = append(out, *e)
	}

	return out
}

// sync withdraws anything on screen that lost the head position, and
// presents the head once the screen is free.
func (q *Queue) sync() {
	if len(q.entries) == 0 {
		return
	}

	busy := false
	for _, e := range q.entries[1:] {
		switch {
		case e.withdrawing, e.requested:
			busy = true
		case e.State == StatePresented:
			e.withdrawing = true
			q.presenter.Dismiss(e)
			busy = true
		}
	}
	if busy {
		return
	}

	head := q.entries[0]
	if head.State == StatePending && !head.requested {
		head.requested = true
		q.presenter.Present(head)
	}
}

func (q *Queue) remove(index int) {
	copy(q.entries[index:], q.entries[index+1:])
	q.entries[len(q.entries)-1] = nil
	q.entries = q.entries[:len(q.entries)-1]
}

func (q *Queue) find(id string) (int, *Notification) {
	for i, e := range q.entries {
		if e.ID == id {
			return i, e
		}
	}

	return -1, nil
}

// live reports whether the entry still counts for deduplication and ordering
func (n *Notification) live() bool {
	return n.State != StateDismissed && !n.leaving && !n.cancelled
}

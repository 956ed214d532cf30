// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package alert

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	action string
	id     string
}

type fakePresenter struct {
	calls []call
}

func (p *fakePresenter) Present(n *Notification) { p.calls = append(p.calls, call{"present", n.ID}) }
func (p *fakePresenter) Dismiss(n *Notification) { p.calls = append(p.calls, call{"dismiss", n.ID}) }

func (p *fakePresenter) last() call {
	if len(p.calls) == 0 {
		return call{}
	}

	return p.calls[len(p.calls)-1]
}

func newTestQueue() (*Queue, *fakePresenter) {
	p := &fakePresenter{}

	return NewQueue(p, nil), p
}

func categoriesOf(q *Queue) []Category {
	var out []Category
	for _, e := range q.Entries() {
		out = append(out, e.Category)
	}

	return out
}

func TestEnqueuePresentsImmediatelyWhenEmpty(t *testing.T) {
	// prepare
	q, p := newTestQueue()
	n := Informative("hello", "")

	// act
	ok := q.Enqueue(n)

	// assert
	assert.True(t, ok)
	assert.Equal(t, []call{{"present", n.ID}}, p.calls)
	assert.Equal(t, StatePending, q.Head().State)

	q.Presented(n.ID)
	assert.Equal(t, StatePresented, q.Head().State)
}

func TestHigherPriorityTakesOverLiveHead(t *testing.T) {
	// prepare
	q, p := newTestQueue()
	info := Informative("info", "")
	q.Enqueue(info)
	q.Presented(info.ID)

	// act
	respond := New(RespondingToExchange, "m1", Content{Title: "Exchange"})
	q.Enqueue(respond)

	// assert: queue order and the live head is withdrawn, not presented over
	assert.Equal(t, []Category{RespondingToExchange, Informational}, categoriesOf(q))
	assert.Equal(t, call{"dismiss", info.ID}, p.last())

	q.Dismissed(info.ID)
	assert.Equal(t, call{"present", respond.ID}, p.last())
	assert.Equal(t, StatePending, q.Entries()[1].State)
	q.Presented(respond.ID)

	// informational only returns after the first is dismissed and advanced
	require.True(t, q.Dismiss(RespondingToExchange))
	assert.Equal(t, call{"dismiss", respond.ID}, p.last())
	require.True(t, q.Dismissed(respond.ID))
	q.Advance()

	assert.Equal(t, call{"present", info.ID}, p.last())
	assert.Equal(t, 1, q.Len())
}

func TestWaitsForPendingPresentationBeforeWithdrawing(t *testing.T) {
	// prepare
	q, p := newTestQueue()
	info := Informative("info", "")
	q.Enqueue(info)

	// act: a follow-up arrives while the first presentation is in flight
	followUp := New(ExchangeCancellationFollowUp, "m1", Content{Title: "Cancelled"})
	q.Enqueue(followUp)

	// assert
	assert.Len(t, p.calls, 1)

	q.Presented(info.ID)
	assert.Equal(t, call{"dismiss", info.ID}, p.last())
	q.Dismissed(info.ID)
	assert.Equal(t, call{"present", followUp.ID}, p.last())
}

func TestDuplicateIsDropped(t *testing.T) {
	// prepare
	q, _ := newTestQueue()
	q.Enqueue(Informative("first", ""))
	q.Enqueue(New(AlteringMatchContext, "m1", Content{Title: "your turn"}))
	before := q.Len()

	// act
	ok := q.Enqueue(New(AlteringMatchContext, "m1", Content{Title: "your turn again"}))

	// assert
	assert.False(t, ok)
	assert.Equal(t, before, q.Len())
	assert.True(t, q.Enqueue(New(AlteringMatchContext, "m2", Content{Title: "other match"})))
	assert.True(t, q.Enqueue(New(RespondingToExchange, "m1", Content{Title: "other category"})))
}

func TestQueueStaysSortedAndStable(t *testing.T) {
	// prepare
	q, _ := newTestQueue()
	rnd := rand.New(rand.NewSource(42))

	// act
	for i := 0; i < 200; i++ {
		c := Categories[rnd.Intn(len(Categories))]
		q.Enqueue(New(c, fmt.Sprintf("k%d", i), Content{Title: fmt.Sprintf("%d", i)}))
	}

	// assert
	entries := q.Entries()
	require.Len(t, entries, 200)
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		assert.False(t, prev.Category.Priority().Less(cur.Category.Priority()), "entry %d outranks %d", i, i-1)
		if prev.Category == cur.Category {
			var a, b int
			fmt.Sscanf(prev.Content.Title, "%d", &a)
			fmt.Sscanf(cur.Content.Title, "%d", &b)
			assert.Less(t, a, b, "equal priority entries keep arrival order")
		}
	}
}

func TestAdvanceRemovesExactlyOne(t *testing.T) {
	// prepare
	q, p := newTestQueue()
	first := Informative("one", "")
	second := Informative("two", "")
	q.Enqueue(first)
	q.Enqueue(second)
	q.Presented(first.ID)
	require.True(t, q.Dismissed(first.ID))

	// act
	q.Advance()

	// assert
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, call{"present", second.ID}, p.last())

	q.Presented(second.ID)
	q.Dismissed(second.ID)
	calls := len(p.calls)
	q.Advance()
	assert.Equal(t, 0, q.Len())
	assert.Len(t, p.calls, calls, "no presentation when the queue empties")

	assert.NotPanics(t, q.Advance)
}

func TestAdvanceWhileShownIsInvariantViolation(t *testing.T) {
	q, _ := newTestQueue()
	n := Informative("one", "")
	q.Enqueue(n)
	q.Presented(n.ID)

	assert.Panics(t, q.Advance)
}

func TestDismiss(t *testing.T) {
	// prepare
	q, p := newTestQueue()
	n := New(WaitingForExchangeReplies, "m1", Content{Title: "Awaiting reply"})
	q.Enqueue(n)

	// a matching head that is not yet on screen cannot be dismissed
	assert.Panics(t, func() { q.Dismiss(WaitingForExchangeReplies) })

	q.Presented(n.ID)

	// other categories are left alone
	assert.False(t, q.Dismiss(RespondingToExchange))
	assert.Equal(t, call{"present", n.ID}, p.last())

	// act
	assert.True(t, q.Dismiss(WaitingForExchangeReplies))
	assert.False(t, q.Dismiss(WaitingForExchangeReplies), "second request while leaving is ignored")

	// assert
	assert.Equal(t, call{"dismiss", n.ID}, p.last())
	assert.True(t, q.Dismissed(n.ID))
	q.Advance()
	assert.Equal(t, 0, q.Len())
}

func TestLeavingHeadKeepsItsSlot(t *testing.T) {
	// prepare
	q, p := newTestQueue()
	n := New(WaitingForExchangeReplies, "m1", Content{Title: "Awaiting reply"})
	q.Enqueue(n)
	q.Presented(n.ID)
	q.Dismiss(WaitingForExchangeReplies)

	// act
	again := New(WaitingForExchangeReplies, "m1", Content{Title: "Awaiting reply"})
	followUp := New(ExchangeCancellationFollowUp, "m1", Content{Title: "Cancelled"})
	assert.True(t, q.Enqueue(again))
	q.Enqueue(followUp)

	// assert
	assert.Equal(t, []Category{WaitingForExchangeReplies, ExchangeCancellationFollowUp, WaitingForExchangeReplies}, categoriesOf(q))
	q.Dismissed(n.ID)
	q.Advance()
	assert.Equal(t, call{"present", followUp.ID}, p.last())
}

func TestWithdraw(t *testing.T) {
	// prepare
	q, _ := newTestQueue()
	head := Informative("shown", "")
	q.Enqueue(head)
	q.Presented(head.ID)
	q.Enqueue(New(AlteringMatchContext, "m2", Content{Title: "your turn"}))
	queued := New(AlteringMatchContext, "m1", Content{Title: "exchange"})
	q.Enqueue(queued)

	// act / assert
	assert.False(t, q.Withdraw("m3", AlteringMatchContext))
	assert.True(t, q.Withdraw("m1", AlteringMatchContext))
	assert.Equal(t, 2, q.Len())
}

func TestRepeatedAcknowledgementsAreIgnored(t *testing.T) {
	// prepare
	q, p := newTestQueue()
	first := Informative("one", "")
	second := Informative("two", "")
	q.Enqueue(first)
	q.Enqueue(second)

	// act / assert
	assert.NotPanics(t, func() {
		q.Presented(first.ID)
		q.Presented(first.ID)
		q.Presented(second.ID)
		assert.False(t, q.Dismissed(second.ID), "an entry that never reached the screen")
	})
	assert.Equal(t, StatePending, q.Entries()[1].State)

	require.True(t, q.Dismissed(first.ID))
	assert.False(t, q.Dismissed(first.ID), "second dismissal of the same head")
	q.Advance()
	assert.Equal(t, call{"present", second.ID}, p.last())
	assert.Equal(t, 1, q.Len())
}

func TestRetractBeforePresentationIsAcknowledged(t *testing.T) {
	// prepare
	q, p := newTestQueue()
	prompt := New(RespondingToExchange, "m1", Content{Title: "Exchange request"}).About("E1")
	q.Enqueue(prompt)
	require.Equal(t, call{"present", prompt.ID}, p.last())

	// act
	assert.True(t, q.Retract("m1", RespondingToExchange, "E1"))
	followUp := New(ExchangeCancellationFollowUp, "m1", Content{Title: "Cancelled"})
	assert.True(t, q.Enqueue(followUp))
	q.Presented(prompt.ID)

	// assert
	assert.Equal(t, call{"dismiss", prompt.ID}, p.last())
	require.True(t, q.Dismissed(prompt.ID))
	q.Advance()
	assert.Equal(t, call{"present", followUp.ID}, p.last())
	assert.Equal(t, []Category{ExchangeCancellationFollowUp}, categoriesOf(q))
}

func TestRetractWhileWithdrawingDropsTheEntry(t *testing.T) {
	// prepare
	q, p := newTestQueue()
	prompt := New(RespondingToExchange, "m1", Content{Title: "Exchange request"}).About("E1")
	q.Enqueue(prompt)
	q.Presented(prompt.ID)
	followUp := New(ExchangeCancellationFollowUp, "m2", Content{Title: "Cancelled"})
	q.Enqueue(followUp)
	require.Equal(t, call{"dismiss", prompt.ID}, p.last())

	// act
	assert.True(t, q.Retract("m1", RespondingToExchange, ""))
	q.Dismissed(prompt.ID)

	// assert
	assert.Equal(t, call{"present", followUp.ID}, p.last())
	assert.Equal(t, []Category{ExchangeCancellationFollowUp}, categoriesOf(q))
}

func TestRetractMatchesSubject(t *testing.T) {
	// prepare
	q, p := newTestQueue()
	prompt := New(RespondingToExchange, "m1", Content{Title: "Exchange request"}).About("E1")
	q.Enqueue(prompt)
	q.Presented(prompt.ID)

	// act / assert
	assert.False(t, q.Retract("m1", RespondingToExchange, "E2"))
	assert.Equal(t, call{"present", prompt.ID}, p.last())

	assert.True(t, q.Retract("m1", RespondingToExchange, "E1"))
	assert.Equal(t, call{"dismiss", prompt.ID}, p.last())
	require.True(t, q.Dismissed(prompt.ID))
	q.Advance()
	assert.Equal(t, 0, q.Len())
}

func TestErrorsDeduplicateOnTheirOwn(t *testing.T) {
	q, _ := newTestQueue()
	q.Enqueue(New(Informational, "m1", Content{Title: "Exchange completed"}))

	assert.True(t, q.Enqueue(New(PlatformError, "m1", Content{Title: "Received Error"})))
	assert.False(t, q.Enqueue(New(PlatformError, "m1", Content{Title: "Received Error"})))
	assert.Equal(t, []Category{Informational, PlatformError}, categoriesOf(q))
}

func TestCategoryLookup(t *testing.T) {
	for _, c := range Categories {
		got, ok := CategoryFromString(c.String())
		assert.True(t, ok)
		assert.Equal(t, c, got)
	}
	_, ok := CategoryFromString("nope")
	assert.False(t, ok)

	assert.True(t, MatchContextSensitive.Priority().Less(RespondingToExchange.Priority()))
	assert.True(t, CreatingExchange.Priority().Less(ExchangeCancellationFollowUp.Priority()))
	assert.False(t, AlteringMatchContext.Priority().Less(Informational.Priority()))
}

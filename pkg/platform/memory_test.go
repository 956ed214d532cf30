// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package platform

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turn-based-flow-grpc-plugin-server-go/pkg/match"
	"turn-based-flow-grpc-plugin-server-go/pkg/player"
)

type inbox struct {
	mu     sync.Mutex
	events map[player.ID][]match.Event
}

func (i *inbox) listen(p *Memory, ids ...player.ID) {
	for _, id := range ids {
		id := id
		p.Subscribe(id, func(ev match.Event) {
			i.mu.Lock()
			defer i.mu.Unlock()
			i.events[id] = append(i.events[id], ev)
		})
	}
}

func (i *inbox) kinds(id player.ID) []match.EventKind {
	i.mu.Lock()
	defer i.mu.Unlock()
	var out []match.EventKind
	for _, ev := range i.events[id] {
		out = append(out, ev.Kind)
	}

	return out
}

func (i *inbox) reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.events = make(map[player.ID][]match.Event)
}

func newMemory(t *testing.T) (*Memory, *inbox, *match.Match) {
	p := NewMemory(NewCacheStore(time.Hour, time.Minute))
	box := &inbox{events: make(map[player.ID][]match.Event)}
	box.listen(p, "P1", "P2", "P3")
	m, err := p.CreateMatch(context.Background(), []player.ID{"P1", "P2", "P3"})
	require.NoError(t, err)
	box.reset()

	return p, box, m
}

func TestCreateMatchAnnouncesToEveryone(t *testing.T) {
	p := NewMemory(NewCacheStore(time.Hour, time.Minute))
	box := &inbox{events: make(map[player.ID][]match.Event)}
	box.listen(p, "P1", "P2")

	m, err := p.CreateMatch(context.Background(), []player.ID{"P1", "P2"})

	require.NoError(t, err)
	assert.Equal(t, player.ID("P1"), m.TurnHolder())
	assert.Equal(t, []match.EventKind{match.EventTurnTaken}, box.kinds("P1"))
	assert.Equal(t, []match.EventKind{match.EventTurnTaken}, box.kinds("P2"))

	_, err = p.CreateMatch(context.Background(), []player.ID{"P1"})
	assert.Error(t, err)
}

func TestExchangeLifecycle(t *testing.T) {
	// prepare
	p, box, m := newMemory(t)
	ctx := context.Background()
	p2, p3 := p.Client("P2"), p.Client("P3")

	// act
	_, e, err := p2.SendExchange(ctx, m.MatchID, []player.ID{"P3"}, nil, time.Minute)
	require.NoError(t, err)
	updated, err := p3.ReplyToExchange(ctx, m.MatchID, e.ExchangeID, []byte(`["accepted"]`))
	require.NoError(t, err)

	// assert
	assert.Equal(t, []match.EventKind{match.EventExchangeRequest}, box.kinds("P3"))
	assert.Equal(t, []match.EventKind{match.EventExchangeReplies}, box.kinds("P2"))
	assert.Equal(t, []match.EventKind{match.EventExchangeReplies}, box.kinds("P1"), "turn holder hears about replies")
	done := updated.Exchange(e.ExchangeID)
	assert.Equal(t, match.ExchangeComplete, done.Status)
	assert.False(t, done.CompletedAt.IsZero())

	_, err = p3.ReplyToExchange(ctx, m.MatchID, e.ExchangeID, []byte(`["accepted"]`))
	assert.True(t, errors.Is(err, ErrExchangeState))
}

func TestOnlyHolderWritesState(t *testing.T) {
	// prepare
	p, _, m := newMemory(t)
	ctx := context.Background()
	_, e, err := p.Client("P2").SendExchange(ctx, m.MatchID, []player.ID{"P3"}, nil, 0)
	require.NoError(t, err)
	_, err = p.Client("P3").ReplyToExchange(ctx, m.MatchID, e.ExchangeID, []byte(`["declined"]`))
	require.NoError(t, err)

	// act
	_, notHolder := p.Client("P2").SaveMergedState(ctx, m.MatchID, []byte(`["r"]`), []string{e.ExchangeID})
	saved, err := p.Client("P1").SaveMergedState(ctx, m.MatchID, []byte(`["r"]`), []string{e.ExchangeID})

	// assert
	assert.True(t, errors.Is(notHolder, ErrNotTurnHolder))
	require.NoError(t, err)
	assert.Equal(t, []byte(`["r"]`), saved.State)
	assert.Equal(t, match.ExchangeResolved, saved.Exchange(e.ExchangeID).Status)

	_, err = p.Client("P1").SaveMergedState(ctx, m.MatchID, nil, []string{e.ExchangeID})
	assert.True(t, errors.Is(err, ErrExchangeState), "resolved exchanges cannot be resolved again")
}

func TestCancelNotifiesPendingRecipients(t *testing.T) {
	// prepare
	p, box, m := newMemory(t)
	ctx := context.Background()
	_, e, err := p.Client("P1").SendExchange(ctx, m.MatchID, []player.ID{"P2", "P3"}, nil, 0)
	require.NoError(t, err)
	_, err = p.Client("P2").ReplyToExchange(ctx, m.MatchID, e.ExchangeID, []byte(`["accepted"]`))
	require.NoError(t, err)
	box.reset()

	// act
	_, denied := p.Client("P2").CancelExchange(ctx, m.MatchID, e.ExchangeID)
	updated, err := p.Client("P1").CancelExchange(ctx, m.MatchID, e.ExchangeID)

	// assert
	assert.True(t, errors.Is(denied, ErrExchangeState))
	require.NoError(t, err)
	assert.Equal(t, match.ExchangeCanceled, updated.Exchange(e.ExchangeID).Status)
	assert.Empty(t, box.kinds("P2"))
	assert.Equal(t, []match.EventKind{match.EventExchangeCancellation}, box.kinds("P3"))
}

func TestExpireExchangesCancelsLateOnes(t *testing.T) {
	p, box, m := newMemory(t)
	ctx := context.Background()
	_, e, err := p.Client("P1").SendExchange(ctx, m.MatchID, []player.ID{"P2"}, nil, time.Second)
	require.NoError(t, err)
	p.now = func() time.Time { return time.Now().Add(time.Minute) }

	updated, err := p.ExpireExchanges(ctx, m.MatchID)

	require.NoError(t, err)
	assert.Equal(t, match.ExchangeCanceled, updated.Exchange(e.ExchangeID).Status)
	assert.Contains(t, box.kinds("P2"), match.EventExchangeCancellation)
}

func TestEndTurnMovesHolder(t *testing.T) {
	// prepare
	p, box, m := newMemory(t)
	ctx := context.Background()

	// act
	_, err := p.Client("P1").EndTurn(ctx, m.MatchID, []player.ID{"P3", "P2", "P1"}, time.Minute, []byte(`["s"]`))
	require.NoError(t, err)

	// assert
	loaded, err := p.store.Load(ctx, m.MatchID)
	require.NoError(t, err)
	assert.Equal(t, player.ID("P3"), loaded.TurnHolder())
	assert.Equal(t, []byte(`["s"]`), loaded.State)
	assert.Empty(t, box.kinds("P1"))
	assert.Equal(t, []match.EventKind{match.EventTurnTaken}, box.kinds("P3"))

	_, err = p.Client("P1").EndTurn(ctx, m.MatchID, []player.ID{"P2"}, time.Minute, nil)
	assert.True(t, errors.Is(err, ErrNotTurnHolder))
}

func TestEndTurnRejectsExitedNextPlayer(t *testing.T) {
	p, _, m := newMemory(t)
	ctx := context.Background()
	_, err := p.Quit(ctx, m.MatchID, "P2")
	require.NoError(t, err)

	_, err = p.Client("P1").EndTurn(ctx, m.MatchID, []player.ID{"P2"}, time.Minute, nil)

	assert.True(t, errors.Is(err, ErrInvalidTurnOrder))
}

func TestOutcomesAreSetOnce(t *testing.T) {
	// prepare
	p, box, m := newMemory(t)
	ctx := context.Background()
	_, err := p.Quit(ctx, m.MatchID, "P3")
	require.NoError(t, err)
	_, err = p.Quit(ctx, m.MatchID, "P3")
	assert.True(t, errors.Is(err, ErrOutcomeFinal))

	// act
	_, overwrite := p.Client("P1").EndMatch(ctx, m.MatchID, map[player.ID]match.Outcome{
		"P1": match.OutcomeWon, "P2": match.OutcomeLost, "P3": match.OutcomeLost,
	}, nil)
	_, missing := p.Client("P1").EndMatch(ctx, m.MatchID, map[player.ID]match.Outcome{"P1": match.OutcomeWon}, nil)
	ended, err := p.Client("P1").EndMatch(ctx, m.MatchID, map[player.ID]match.Outcome{
		"P1": match.OutcomeWon, "P2": match.OutcomeLost,
	}, nil)

	// assert
	assert.True(t, errors.Is(overwrite, ErrOutcomeFinal))
	assert.Error(t, missing)
	require.NoError(t, err)
	assert.Equal(t, match.StatusEnded, ended.Status)
	assert.Equal(t, match.OutcomeQuit, ended.Participant("P3").Outcome)
	assert.Equal(t, []match.EventKind{match.EventMatchEnded}, box.kinds("P2"))

	_, err = p.Client("P1").EndTurn(ctx, m.MatchID, []player.ID{"P2"}, time.Minute, nil)
	assert.True(t, errors.Is(err, ErrMatchClosed))
}

func TestHolderQuitPassesTurn(t *testing.T) {
	// prepare
	p, box, m := newMemory(t)
	ctx := context.Background()

	// act
	_, missingOrder := p.Client("P1").Quit(ctx, m.MatchID, nil, time.Minute, nil)
	updated, err := p.Client("P1").Quit(ctx, m.MatchID, []player.ID{"P2", "P3"}, time.Minute, []byte(`["q"]`))

	// assert
	assert.True(t, errors.Is(missingOrder, ErrInvalidTurnOrder))
	require.NoError(t, err)
	assert.Equal(t, player.ID("P2"), updated.TurnHolder())
	assert.Equal(t, match.OutcomeQuit, updated.Participant("P1").Outcome)
	assert.Equal(t, []byte(`["q"]`), updated.State)
	assert.Equal(t, []match.EventKind{match.EventTurnTaken}, box.kinds("P2"))
}

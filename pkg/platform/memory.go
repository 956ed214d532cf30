// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package platform

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"turn-based-flow-grpc-plugin-server-go/pkg/common"
	"turn-based-flow-grpc-plugin-server-go/pkg/match"
	"turn-based-flow-grpc-plugin-server-go/pkg/player"
)

var (
	ErrNotParticipant   = errors.New("not a participant of the match")
	ErrNotTurnHolder    = errors.New("not the turn holder")
	ErrMatchClosed      = errors.New("match is not open")
	ErrUnknownExchange  = errors.New("unknown exchange")
	ErrExchangeState    = errors.New("exchange is in the wrong state")
	ErrOutcomeFinal     = errors.New("outcome already set")
	ErrInvalidTurnOrder = errors.New("invalid turn order")
)

// Listener receives the events addressed to one player
type Listener func(event match.Event)

type delivery struct {
	to    player.ID
	event match.Event
}

/*
Memory is an in-process stand-in for the hosting platform. It owns the
match records through a MatchStore, enforces who may write what, and pushes
events to the subscribed players. Listeners are called after the write has
been stored, outside the lock, in the order the events were produced.

Safe for concurrent use by several clients.
*/
type Memory struct {
	mu        sync.Mutex
	store     MatchStore
	listeners map[player.ID][]Listener
	now       func() time.Time
	log       *logrus.Entry
}

func NewMemory(store MatchStore) *Memory {
	return &Memory{
		store:     store,
		listeners: make(map[player.ID][]Listener),
		now:       time.Now,
		log:       logrus.WithField("component", "platform"),
	}
}

// Subscribe registers fn for the events addressed to id
func (p *Memory) Subscribe(id player.ID, fn Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners[id] = append(p.listeners[id], fn)
}

// Client binds the platform to one player
func (p *Memory) Client(id player.ID) *Client {
	return &Client{platform: p, player: id}
}

func (p *Memory) deliver(out []delivery) {
	for _, d := range out {
		p.mu.Lock()
		listeners := append([]Listener(nil), p.listeners[d.to]...)
		p.mu.Unlock()

		for _, fn := range listeners {
			fn(d.event)
		}
	}
}

// update runs fn on a copy of the match and stores the result when fn
// succeeds. Events returned by fn are delivered once the write is stored.
func (p *Memory) update(ctx context.Context, matchID string, fn func(m *match.Match) ([]delivery, error)) (*match.Match, error) {
	p.mu.Lock()
	m, err := p.store.Load(ctx, matchID)
	if err != nil {
		p.mu.Unlock()

		return nil, err
	}
	out, err := fn(m)
	if err == nil {
		err = p.store.Save(ctx, m)
	}
	p.mu.Unlock()

	if err != nil {
		return nil, errors.Wrapf(err, "match %s", matchID)
	}
	p.deliver(out)

	return m.Clone(), nil
}

// CreateMatch opens a match with the given players in seat order. The
// first player holds the first turn.
func (p *Memory) CreateMatch(ctx context.Context, players []player.ID) (*match.Match, error) {
	if len(players) < 2 {
		return nil, errors.Errorf("a match needs at least two players, got %d", len(players))
	}

	m := &match.Match{MatchID: common.GenerateUUID(), Status: match.StatusOpen}
	for _, id := range players {
		m.Participants = append(m.Participants, match.Participant{
			PlayerID: id,
			Status:   match.ParticipantActive,
			Outcome:  match.OutcomeNone,
		})
	}

	p.mu.Lock()
	err := p.store.Save(ctx, m)
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	p.log.Infof("created match %s for %v", m.MatchID, players)

	p.deliver(broadcast(m, player.None, func(to player.ID) match.Event {
		return match.Event{Kind: match.EventTurnTaken, Match: m.Clone()}
	}))

	return m.Clone(), nil
}

// Quit takes a player out of a match outside their turn
func (p *Memory) Quit(ctx context.Context, matchID string, id player.ID) (*match.Match, error) {
	return p.quit(ctx, id, matchID, nil, nil)
}

// quit records caller's forfeit. A turn holder must name who plays next.
func (p *Memory) quit(ctx context.Context, caller player.ID, matchID string, next []player.ID, state []byte) (*match.Match, error) {
	return p.update(ctx, matchID, func(m *match.Match) ([]delivery, error) {
		if m.Status != match.StatusOpen {
			return nil, ErrMatchClosed
		}
		seat := m.Participant(caller)
		if seat == nil {
			return nil, ErrNotParticipant
		}
		if seat.Exited() {
			return nil, ErrOutcomeFinal
		}
		seat.Outcome = match.OutcomeQuit
		seat.Status = match.ParticipantDone
		p.log.Infof("%s quit match %s", caller, matchID)

		if !m.IsTurnHolder(caller) {
			return nil, nil
		}
		if err := p.passTurn(m, next); err != nil {
			return nil, err
		}
		m.State = state

		return broadcast(m, caller, func(to player.ID) match.Event {
			return match.Event{Kind: match.EventTurnTaken, Match: m.Clone()}
		}), nil
	})
}

// passTurn moves the turn to next[0], who must still be playing
func (p *Memory) passTurn(m *match.Match, next []player.ID) error {
	if len(next) == 0 {
		return errors.Wrap(ErrInvalidTurnOrder, "empty")
	}
	for i, candidate := range m.Participants {
		if candidate.PlayerID == next[0] && !candidate.Exited() {
			m.CurrentIndex = i

			return nil
		}
	}

	return errors.Wrapf(ErrInvalidTurnOrder, "%s cannot take the turn", next[0])
}

// ExpireExchanges cancels the active exchanges whose deadline has passed
func (p *Memory) ExpireExchanges(ctx context.Context, matchID string) (*match.Match, error) {
	now := p.now()

	return p.update(ctx, matchID, func(m *match.Match) ([]delivery, error) {
		var out []delivery
		for _, e := range m.ActiveExchanges() {
			if e.Deadline.IsZero() || now.Before(e.Deadline) {
				continue
			}
			e.Status = match.ExchangeCanceled
			out = append(out, cancellations(m, e)...)
			p.log.Infof("exchange %s of match %s timed out", e.ExchangeID, matchID)
		}

		return out, nil
	})
}

func broadcast(m *match.Match, except player.ID, event func(to player.ID) match.Event) []delivery {
	var out []delivery
	for _, seat := range m.Participants {
		if seat.PlayerID == except {
			continue
		}
		out = append(out, delivery{to: seat.PlayerID, event: event(seat.PlayerID)})
	}

	return out
}

func cancellations(m *match.Match, e *match.Exchange) []delivery {
	var out []delivery
	snapshot := m.Clone()
	for _, id := range e.Recipients {
		if e.HasReplied(id) {
			continue
		}
		out = append(out, delivery{to: id, event: match.Event{
			Kind:     match.EventExchangeCancellation,
			Match:    snapshot,
			Exchange: snapshot.Exchange(e.ExchangeID),
			Sender:   e.Initiator,
		}})
	}

	return out
}

func openSeat(m *match.Match, caller player.ID) (*match.Participant, error) {
	if m.Status != match.StatusOpen {
		return nil, ErrMatchClosed
	}
	seat := m.Participant(caller)
	if seat == nil || seat.Exited() {
		return nil, ErrNotParticipant
	}

	return seat, nil
}

func holderSeat(m *match.Match, caller player.ID) (*match.Participant, error) {
	seat, err := openSeat(m, caller)
	if err != nil {
		return nil, err
	}
	if !m.IsTurnHolder(caller) {
		return nil, ErrNotTurnHolder
	}

	return seat, nil
}

func (p *Memory) sendExchange(ctx context.Context, caller player.ID, matchID string, recipients []player.ID, payload []byte, timeout time.Duration) (*match.Match, *match.Exchange, error) {
	var created *match.Exchange
	m, err := p.update(ctx, matchID, func(m *match.Match) ([]delivery, error) {
		if _, err := openSeat(m, caller); err != nil {
			return nil, err
		}
		if len(recipients) == 0 {
			return nil, errors.New("an exchange needs at least one recipient")
		}
		for _, id := range recipients {
			seat := m.Participant(id)
			if id == caller || seat == nil || seat.Exited() {
				return nil, errors.Wrapf(ErrNotParticipant, "recipient %s", id)
			}
		}

		e := &match.Exchange{
			ExchangeID: common.GenerateUUID(),
			Initiator:  caller,
			Recipients: append([]player.ID(nil), recipients...),
			Status:     match.ExchangeActive,
			Payload:    payload,
		}
		if timeout > 0 {
			e.Deadline = p.now().Add(timeout)
		}
		m.Exchanges = append(m.Exchanges, e)
		created = e

		snapshot := m.Clone()
		var out []delivery
		for _, id := range recipients {
			out = append(out, delivery{to: id, event: match.Event{
				Kind:     match.EventExchangeRequest,
				Match:    snapshot,
				Exchange: snapshot.Exchange(e.ExchangeID),
				Sender:   caller,
			}})
		}

		return out, nil
	})
	if err != nil {
		return nil, nil, err
	}

	return m, m.Exchange(created.ExchangeID), nil
}

func (p *Memory) replyToExchange(ctx context.Context, caller player.ID, matchID, exchangeID string, payload []byte) (*match.Match, error) {
	return p.update(ctx, matchID, func(m *match.Match) ([]delivery, error) {
		if _, err := openSeat(m, caller); err != nil {
			return nil, err
		}
		e := m.Exchange(exchangeID)
		if e == nil {
			return nil, errors.Wrap(ErrUnknownExchange, exchangeID)
		}
		if !e.AwaitsReplyFrom(caller) {
			return nil, errors.Wrapf(ErrExchangeState, "%s does not await a reply from %s", exchangeID, caller)
		}

		now := p.now()
		e.Replies = append(e.Replies, match.Reply{PlayerID: caller, Payload: payload, ReceivedAt: now})
		if !e.AllRepliesIn() {
			return nil, nil
		}

		e.Status = match.ExchangeComplete
		e.CompletedAt = now
		snapshot := m.Clone()
		event := match.Event{
			Kind:     match.EventExchangeReplies,
			Match:    snapshot,
			Exchange: snapshot.Exchange(exchangeID),
			Sender:   caller,
		}
		out := []delivery{{to: e.Initiator, event: event}}
		if holder := m.TurnHolder(); holder != e.Initiator && holder != player.None {
			out = append(out, delivery{to: holder, event: event})
		}

		return out, nil
	})
}

func (p *Memory) cancelExchange(ctx context.Context, caller player.ID, matchID, exchangeID string) (*match.Match, error) {
	return p.update(ctx, matchID, func(m *match.Match) ([]delivery, error) {
		e := m.Exchange(exchangeID)
		if e == nil {
			return nil, errors.Wrap(ErrUnknownExchange, exchangeID)
		}
		if e.Initiator != caller {
			return nil, errors.Wrapf(ErrExchangeState, "%s did not start %s", caller, exchangeID)
		}
		if e.Status != match.ExchangeActive {
			return nil, errors.Wrapf(ErrExchangeState, "%s is %s", exchangeID, e.Status)
		}
		e.Status = match.ExchangeCanceled

		return cancellations(m, e), nil
	})
}

func (p *Memory) saveMergedState(ctx context.Context, caller player.ID, matchID string, state []byte, resolved []string) (*match.Match, error) {
	return p.update(ctx, matchID, func(m *match.Match) ([]delivery, error) {
		if _, err := holderSeat(m, caller); err != nil {
			return nil, err
		}
		for _, id := range resolved {
			e := m.Exchange(id)
			if e == nil {
				return nil, errors.Wrap(ErrUnknownExchange, id)
			}
			if e.Status != match.ExchangeComplete {
				return nil, errors.Wrapf(ErrExchangeState, "cannot resolve %s exchange %s", e.Status, id)
			}
		}
		for _, id := range resolved {
			m.Exchange(id).Status = match.ExchangeResolved
		}
		m.State = state

		return nil, nil
	})
}

func (p *Memory) endTurn(ctx context.Context, caller player.ID, matchID string, next []player.ID, state []byte) (*match.Match, error) {
	return p.update(ctx, matchID, func(m *match.Match) ([]delivery, error) {
		seat, err := holderSeat(m, caller)
		if err != nil {
			return nil, err
		}
		if err = p.passTurn(m, next); err != nil {
			return nil, err
		}
		seat.LastTurnAt = p.now()
		m.State = state

		return broadcast(m, caller, func(to player.ID) match.Event {
			return match.Event{Kind: match.EventTurnTaken, Match: m.Clone()}
		}), nil
	})
}

func (p *Memory) endMatch(ctx context.Context, caller player.ID, matchID string, outcomes map[player.ID]match.Outcome, state []byte) (*match.Match, error) {
	return p.update(ctx, matchID, func(m *match.Match) ([]delivery, error) {
		if _, err := holderSeat(m, caller); err != nil {
			return nil, err
		}
		for i := range m.Participants {
			seat := &m.Participants[i]
			outcome, ok := outcomes[seat.PlayerID]
			switch {
			case ok && seat.Exited():
				return nil, errors.Wrapf(ErrOutcomeFinal, "%s already %s", seat.PlayerID, seat.Outcome)
			case ok && outcome.IsTerminal():
				seat.Outcome = outcome
			case !seat.Exited():
				return nil, errors.Errorf("no final outcome for %s", seat.PlayerID)
			}
			seat.Status = match.ParticipantDone
		}
		for _, e := range m.ActiveExchanges() {
			e.Status = match.ExchangeCanceled
		}
		m.State = state
		m.Status = match.StatusEnded

		return broadcast(m, caller, func(to player.ID) match.Event {
			return match.Event{Kind: match.EventMatchEnded, Match: m.Clone()}
		}), nil
	})
}

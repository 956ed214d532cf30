// Copyright (c) 2023 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package match

import (
	"time"

	"turn-based-flow-grpc-plugin-server-go/pkg/player"
)

// Status is the lifecycle state of a match on the hosting platform
type Status string

const (
	StatusMatching Status = "matching"
	StatusOpen     Status = "open"
	StatusEnded    Status = "ended"
)

// ParticipantStatus is the platform's view of a participant's seat
type ParticipantStatus string

const (
	ParticipantInvited  ParticipantStatus = "invited"
	ParticipantMatching ParticipantStatus = "matching"
	ParticipantActive   ParticipantStatus = "active"
	ParticipantDeclined ParticipantStatus = "declined"
	ParticipantDone     ParticipantStatus = "done"
)

// Outcome is the final result for a participant. Once set to anything but
// OutcomeNone it never changes.
type Outcome string

const (
	OutcomeNone     Outcome = "none"
	OutcomeWon      Outcome = "won"
	OutcomeLost     Outcome = "lost"
	OutcomeTied     Outcome = "tied"
	OutcomeQuit     Outcome = "quit"
	OutcomeTimedOut Outcome = "timedOut"
)

// IsTerminal reports whether the outcome removes the participant from play
func (o Outcome) IsTerminal() bool {
	return o != OutcomeNone && o != ""
}

// ExchangeStatus is the lifecycle state of a side negotiation
type ExchangeStatus string

const (
	ExchangeActive   ExchangeStatus = "active"
	ExchangeComplete ExchangeStatus = "complete"
	ExchangeResolved ExchangeStatus = "resolved"
	ExchangeCanceled ExchangeStatus = "canceled"
)

// Participant is one seat in a match
type Participant struct {
	PlayerID   player.ID         `json:"playerId"`
	Status     ParticipantStatus `json:"status"`
	Outcome    Outcome           `json:"outcome"`
	LastTurnAt time.Time         `json:"lastTurnAt,omitempty"`
}

// Exited reports whether the participant already has a final outcome
func (p Participant) Exited() bool {
	return p.Outcome.IsTerminal()
}

// Left reports whether the platform shows the participant as gone from the
// match, regardless of whether an outcome has been recorded yet
func (p Participant) Left() bool {
	return p.Status == ParticipantDone || p.Status == ParticipantDeclined
}

// Reply is a single recipient's answer to an exchange
type Reply struct {
	PlayerID   player.ID `json:"playerId"`
	Payload    []byte    `json:"payload"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Exchange is a bounded negotiation among a subset of the participants whose
// outcome has to be folded into the match state by the turn holder
type Exchange struct {
	ExchangeID  string         `json:"exchangeId"`
	Initiator   player.ID      `json:"initiator"`
	Recipients  []player.ID    `json:"recipients"`
	Status      ExchangeStatus `json:"status"`
	Deadline    time.Time      `json:"deadline"`
	CompletedAt time.Time      `json:"completedAt,omitempty"`
	Payload     []byte         `json:"payload,omitempty"`
	Replies     []Reply        `json:"replies,omitempty"`
}

// HasRecipient reports whether id was asked to take part in the exchange
func (e *Exchange) HasRecipient(id player.ID) bool {
	for _, r := range e.Recipients {
		if r == id {
			return true
		}
	}

	return false
}

// HasReplied reports whether id already answered the exchange
func (e *Exchange) HasReplied(id player.ID) bool {
	for _, r := range e.Replies {
		if r.PlayerID == id {
			return true
		}
	}

	return false
}

// AwaitsReplyFrom reports whether the exchange is still waiting on id
func (e *Exchange) AwaitsReplyFrom(id player.ID) bool {
	return e.Status == ExchangeActive && e.HasRecipient(id) && !e.HasReplied(id)
}

// AllRepliesIn reports whether every recipient has answered
func (e *Exchange) AllRepliesIn() bool {
	for _, r := range e.Recipients {
		if !e.HasReplied(r) {
			return false
		}
	}

	return true
}

// Match is the externally owned match record
type Match struct {
	MatchID      string        `json:"matchId"`
	Status       Status        `json:"status"`
	Participants []Participant `json:"participants"`
	CurrentIndex int           `json:"currentIndex"`
	State        []byte        `json:"state,omitempty"`
	Exchanges    []*Exchange   `json:"exchanges,omitempty"`
}

// CurrentParticipant returns the turn holder, or nil when the match has none
func (m *Match) CurrentParticipant() *Participant {
	if m.CurrentIndex < 0 || m.CurrentIndex >= len(m.Participants) {
		return nil
	}

	return &m.Participants[m.CurrentIndex]
}

// TurnHolder returns the id of the turn holder or player.None
func (m *Match) TurnHolder() player.ID {
	if p := m.CurrentParticipant(); p != nil {
		return p.PlayerID
	}

	return player.None
}

// IsTurnHolder reports whether id currently holds the turn
func (m *Match) IsTurnHolder(id player.ID) bool {
	return id != player.None && m.TurnHolder() == id
}

// Participant looks a seat up by player id
func (m *Match) Participant(id player.ID) *Participant {
	for i := range m.Participants {
		if m.Participants[i].PlayerID == id {
			return &m.Participants[i]
		}
	}

	return nil
}

// Opponents returns every participant other than id, in seat order
func (m *Match) Opponents(id player.ID) []Participant {
	out := make([]Participant, 0, len(m.Participants))
	for _, p := range m.Participants {
		if p.PlayerID != id {
			out = append(out, p)
		}
	}

	return out
}

// Exchange looks an exchange up by id
func (m *Match) Exchange(id string) *Exchange {
	for _, e := range m.Exchanges {
		if e.ExchangeID == id {
			return e
		}
	}

	return nil
}

// ActiveExchanges returns the exchanges still waiting on replies
func (m *Match) ActiveExchanges() []*Exchange {
	var out []*Exchange
	for _, e := range m.Exchanges {
		if e.Status == ExchangeActive {
			out = append(out, e)
		}
	}

	return out
}

// Clone returns a deep copy so snapshots handed across goroutines never alias
func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	out := *m
	out.Participants = append([]Participant(nil), m.Participants...)
	out.State = append([]byte(nil), m.State...)
	out.Exchanges = make([]*Exchange, 0, len(m.Exchanges))
	for _, e := range m.Exchanges {
		c := *e
		c.Recipients = append([]player.ID(nil), e.Recipients...)
		c.Payload = append([]byte(nil), e.Payload...)
		c.Replies = append([]Reply(nil), e.Replies...)
		out.Exchanges = append(out.Exchanges, &c)
	}

	return &out
}

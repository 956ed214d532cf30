// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package turn

import (
	"github.com/elliotchance/pie/v2"
	"github.com/pkg/errors"

	"turn-based-flow-grpc-plugin-server-go/pkg/match"
	"turn-based-flow-grpc-plugin-server-go/pkg/player"
)

// QuitPolicy decides when a participant who left out of turn stops being
// offered the turn
type QuitPolicy string

const (
	// QuitConfirmed excludes a participant once the platform records a
	// terminal outcome
	QuitConfirmed QuitPolicy = "confirmed"
	// QuitImmediate also excludes a participant the platform already shows as
	// done or declined, before an outcome is recorded
	QuitImmediate QuitPolicy = "immediate"
)

// ParseQuitPolicy resolves a policy name
func ParseQuitPolicy(s string) (QuitPolicy, error) {
	switch QuitPolicy(s) {
	case QuitConfirmed, QuitImmediate:
		return QuitPolicy(s), nil
	case "":
		return QuitConfirmed, nil
	}

	return "", errors.Errorf("unknown quit policy %q", s)
}

// Resolver computes the order in which the turn is handed on
type Resolver struct {
	Policy QuitPolicy
}

func NewResolver(policy QuitPolicy) Resolver {
	return Resolver{Policy: policy}
}

// Excluded reports whether p can no longer be handed the turn
func (r Resolver) Excluded(p match.Participant) bool {
	if p.Exited() {
		return true
	}

	return r.Policy == QuitImmediate && p.Left()
}

/*
NextTurnOrder returns the participants who should receive the turn next, in
order. Seat order is kept, participants who exited are skipped, and the list
is rotated so the seats after the turn holder come first and the holder comes
last: the platform never times out the last listed participant, and the
holder is about to become inactive.

If the holder is absent or has exited, the remaining participants keep their
seat order.
*/
func (r Resolver) NextTurnOrder(m *match.Match) []match.Participant {
	holder := m.TurnHolder()

	var before, after []match.Participant
	var current *match.Participant
	found := false
	for _, p := range m.Participants {
		if p.PlayerID == holder && holder != player.None {
			found = true
			if !r.Excluded(p) {
				p := p
				current = &p
			}

			continue
		}
		if r.Excluded(p) {
			continue
		}
		if found {
			after = append(after, p)
		} else {
			before = append(before, p)
		}
	}

	order := make([]match.Participant, 0, len(after)+len(before)+1)
	order = append(order, after...)
	order = append(order, before...)
	if current != nil {
		order = append(order, *current)
	}

	return order
}

// NextTurnOrderIDs is NextTurnOrder reduced to player ids
func (r Resolver) NextTurnOrderIDs(m *match.Match) []player.ID {
	return pie.Map(r.NextTurnOrder(m), func(p match.Participant) player.ID { return p.PlayerID })
}

// LiveParticipants returns the participants still in play, in seat order
func (r Resolver) LiveParticipants(m *match.Match) []match.Participant {
	return pie.Filter(m.Participants, func(p match.Participant) bool { return !r.Excluded(p) })
}

// Copyright (c) 2023 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"turn-based-flow-grpc-plugin-server-go/pkg/player"
)

func TestOutcomeIsTerminal(t *testing.T) {
	assert.False(t, OutcomeNone.IsTerminal())
	assert.False(t, Outcome("").IsTerminal())
	for _, o := range []Outcome{OutcomeWon, OutcomeLost, OutcomeTied, OutcomeQuit, OutcomeTimedOut} {
		assert.True(t, o.IsTerminal(), o)
	}
}

func TestExchangeReplyTracking(t *testing.T) {
	// prepare
	e := &Exchange{
		ExchangeID: "e1",
		Initiator:  "a",
		Recipients: []player.ID{"b", "c"},
		Status:     ExchangeActive,
		Replies:    []Reply{{PlayerID: "b"}},
	}

	// assert
	assert.True(t, e.HasRecipient("c"))
	assert.False(t, e.HasRecipient("a"))
	assert.False(t, e.AwaitsReplyFrom("b"))
	assert.True(t, e.AwaitsReplyFrom("c"))
	assert.False(t, e.AllRepliesIn())

	e.Replies = append(e.Replies, Reply{PlayerID: "c"})
	assert.True(t, e.AllRepliesIn())
}

func TestMatchTurnHolder(t *testing.T) {
	m := &Match{
		MatchID: "m1",
		Participants: []Participant{
			{PlayerID: "a"}, {PlayerID: "b"},
		},
		CurrentIndex: 1,
	}

	assert.Equal(t, player.ID("b"), m.TurnHolder())
	assert.True(t, m.IsTurnHolder("b"))
	assert.False(t, m.IsTurnHolder("a"))
	assert.False(t, m.IsTurnHolder(player.None))

	m.CurrentIndex = -1
	assert.Nil(t, m.CurrentParticipant())
	assert.Equal(t, player.None, m.TurnHolder())
}

func TestMatchCloneDoesNotAlias(t *testing.T) {
	// prepare
	m := &Match{
		MatchID:      "m1",
		Participants: []Participant{{PlayerID: "a"}},
		State:        []byte("[]"),
		Exchanges: []*Exchange{
			{ExchangeID: "e1", Recipients: []player.ID{"a"}, Status: ExchangeActive},
		},
	}

	// act
	c := m.Clone()
	c.Participants[0].Outcome = OutcomeWon
	c.State[0] = '{'
	c.Exchanges[0].Status = ExchangeCanceled

	// assert
	assert.Equal(t, Outcome(""), m.Participants[0].Outcome)
	assert.Equal(t, "[]", string(m.State))
	assert.Equal(t, ExchangeActive, m.Exchanges[0].Status)
	assert.Len(t, m.ActiveExchanges(), 1)
	assert.Empty(t, c.ActiveExchanges())
}

// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package router

import (
	"context"
	"time"

	"turn-based-flow-grpc-plugin-server-go/pkg/match"
	"turn-based-flow-grpc-plugin-server-go/pkg/player"
)

/*
Platform is the outbound side of the hosting platform, already bound to the
local player. Every call returns the match record as the platform sees it
after the call, which the router adopts as its latest snapshot.

Calls may block on the network; they are always made from task goroutines,
never from the router loop.
*/
type Platform interface {
	SendExchange(ctx context.Context, matchID string, recipients []player.ID, payload []byte, timeout time.Duration) (*match.Match, *match.Exchange, error)
	ReplyToExchange(ctx context.Context, matchID, exchangeID string, payload []byte) (*match.Match, error)
	CancelExchange(ctx context.Context, matchID, exchangeID string) (*match.Match, error)
	SaveMergedState(ctx context.Context, matchID string, state []byte, resolved []string) (*match.Match, error)
	EndTurn(ctx context.Context, matchID string, next []player.ID, timeout time.Duration, state []byte) (*match.Match, error)
	EndMatch(ctx context.Context, matchID string, outcomes map[player.ID]match.Outcome, state []byte) (*match.Match, error)
	// Quit records the local player's quit. When they hold the turn it
	// passes to next[0] and state is written, otherwise both are ignored.
	Quit(ctx context.Context, matchID string, next []player.ID, timeout time.Duration, state []byte) (*match.Match, error)
}

// IntentKind names an action taken by the local player
type IntentKind string

const (
	IntentSelectMatch    IntentKind = "select_match"
	IntentBeginExchange  IntentKind = "begin_exchange"
	IntentReply          IntentKind = "reply_to_exchange"
	IntentCancelExchange IntentKind = "cancel_exchange"
	IntentSaveTurn       IntentKind = "save_turn"
	IntentEndTurn        IntentKind = "end_turn"
	IntentEndMatch       IntentKind = "end_match"
	IntentQuit           IntentKind = "quit"
)

// Intent is a user action. An empty MatchID means the current match.
type Intent struct {
	Kind       IntentKind  `json:"kind"`
	MatchID    string      `json:"matchId,omitempty"`
	ExchangeID string      `json:"exchangeId,omitempty"`
	Accept     bool        `json:"accept,omitempty"`
	Recipients []player.ID `json:"recipients,omitempty"`
	Won        bool        `json:"won,omitempty"`
}

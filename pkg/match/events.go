// Copyright (c) 2023 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package match

import "turn-based-flow-grpc-plugin-server-go/pkg/player"

// EventKind names an inbound notification from the hosting platform
type EventKind string

const (
	EventTurnTaken            EventKind = "turn_taken"
	EventMatchEnded           EventKind = "match_ended"
	EventExchangeRequest      EventKind = "exchange_request"
	EventExchangeReplies      EventKind = "exchange_replies"
	EventExchangeCancellation EventKind = "exchange_cancellation"
)

// Event is the envelope for everything the platform pushes to a client.
// Exchange and Sender are only set for the exchange kinds, BecameActive only
// for turn events.
type Event struct {
	Kind         EventKind `json:"kind"`
	Match        *Match    `json:"match"`
	Exchange     *Exchange `json:"exchange,omitempty"`
	Sender       player.ID `json:"sender,omitempty"`
	BecameActive bool      `json:"becameActive,omitempty"`
}

// IsExchangeEvent reports whether the event concerns a side negotiation
func (e Event) IsExchangeEvent() bool {
	switch e.Kind {
	case EventExchangeRequest, EventExchangeReplies, EventExchangeCancellation:
		return true
	}

	return false
}

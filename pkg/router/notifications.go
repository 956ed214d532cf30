// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package router

import (
	"fmt"
	"strings"

	"github.com/elliotchance/pie/v2"

	"turn-based-flow-grpc-plugin-server-go/pkg/alert"
	"turn-based-flow-grpc-plugin-server-go/pkg/exchange"
	"turn-based-flow-grpc-plugin-server-go/pkg/match"
	"turn-based-flow-grpc-plugin-server-go/pkg/player"
)

// joinNames renders "A", "A and B" or "A, B and C"
func joinNames(ids []player.ID) string {
	names := player.IDsToStrings(ids)
	switch len(names) {
	case 0:
		return "nobody"
	case 1:
		return names[0]
	}

	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

func opponentNames(m *match.Match, local player.ID) string {
	opponents := m.Opponents(local)

	return joinNames(pie.Map(opponents, func(p match.Participant) player.ID { return p.PlayerID }))
}

func yourTurnNotification(m *match.Match, local player.ID) *alert.Notification {
	return alert.New(alert.AlteringMatchContext, m.MatchID, alert.Content{
		Title:   fmt.Sprintf("It's your turn in a game against %s!", opponentNames(m, local)),
		Message: "Do you want to jump to that match?",
		Actions: []string{"Load Match", "Cancel"},
	})
}

func matchEndedNotification(m *match.Match, local player.ID) *alert.Notification {
	verdict := "ended"
	if p := m.Participant(local); p != nil {
		switch p.Outcome {
		case match.OutcomeWon:
			verdict = "You won"
		case match.OutcomeLost, match.OutcomeQuit, match.OutcomeTimedOut:
			verdict = "You lost"
		case match.OutcomeTied:
			verdict = "You tied"
		}
	}
	title := fmt.Sprintf("%s a match against %s!", verdict, opponentNames(m, local))
	if verdict == "ended" {
		title = fmt.Sprintf("Your match against %s ended!", opponentNames(m, local))
	}

	return alert.New(alert.AlteringMatchContext, m.MatchID, alert.Content{
		Title:   title,
		Message: "Do you want to see the result now?",
		Actions: []string{"See Result", "Cancel"},
	})
}

func exchangeRequestNotification(m *match.Match, e *match.Exchange, sender player.ID) *alert.Notification {
	if sender == player.None {
		sender = e.Initiator
	}

	return alert.New(alert.RespondingToExchange, m.MatchID, alert.Content{
		Title:   "Exchange request",
		Message: fmt.Sprintf("%s wants to trade. Do you accept?", sender),
		Actions: []string{"Accept", "Decline"},
	}).About(e.ExchangeID)
}

func awaitingRepliesNotification(m *match.Match, e *match.Exchange) *alert.Notification {
	return alert.New(alert.WaitingForExchangeReplies, m.MatchID, alert.Content{
		Title:   "Exchange sent",
		Message: fmt.Sprintf("Awaiting a reply from %s or timeout.", joinNames(e.Recipients)),
		Actions: []string{"Cancel"},
	}).About(e.ExchangeID)
}

func creatingExchangeNotification(m *match.Match, candidates []player.ID) *alert.Notification {
	return alert.New(alert.CreatingExchange, m.MatchID, alert.Content{
		Title:   "Exchange",
		Message: "Who do you want to trade with?",
		Actions: append(player.IDsToStrings(candidates), "Cancel"),
	})
}

func cancellationNotification(m *match.Match, sender player.ID) *alert.Notification {
	who := "The other player"
	if sender != player.None {
		who = string(sender)
	}

	return alert.New(alert.ExchangeCancellationFollowUp, m.MatchID, alert.Content{
		Title:   "Exchange cancelled",
		Message: fmt.Sprintf("%s cancelled the exchange.", who),
		Actions: []string{"OK"},
	})
}

func repliesNotification(m *match.Match, e *match.Exchange) *alert.Notification {
	var accepted, declined []player.ID
	for _, r := range e.Replies {
		value, err := exchange.DecodeReply(r.Payload)
		if err == nil && value == exchange.ReplyAccepted {
			accepted = append(accepted, r.PlayerID)
		} else {
			declined = append(declined, r.PlayerID)
		}
	}

	var parts []string
	if len(accepted) > 0 {
		parts = append(parts, "accepted by "+joinNames(accepted))
	}
	if len(declined) > 0 {
		parts = append(parts, "declined by "+joinNames(declined))
	}
	message := "The exchange finished without replies."
	if len(parts) > 0 {
		message = "The exchange was " + strings.Join(parts, ", ") + "."
	}

	return alert.New(alert.Informational, m.MatchID, alert.Content{
		Title:   "Exchange completed",
		Message: message,
		Actions: []string{"OK"},
	})
}

func errorNotification(matchID string, err error) *alert.Notification {
	return alert.New(alert.PlatformError, matchID, alert.Content{
		Title:   "Received Error",
		Message: err.Error(),
		Actions: []string{"OK"},
	})
}

func infoNotification(matchID, message string) *alert.Notification {
	return alert.New(alert.Informational, matchID, alert.Content{
		Title:   "Info",
		Message: message,
		Actions: []string{"OK"},
	})
}

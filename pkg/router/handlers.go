// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package router

import (
	"context"
	"time"

	"github.com/elliotchance/pie/v2"

	"turn-based-flow-grpc-plugin-server-go/pkg/alert"
	"turn-based-flow-grpc-plugin-server-go/pkg/common"
	"turn-based-flow-grpc-plugin-server-go/pkg/exchange"
	"turn-based-flow-grpc-plugin-server-go/pkg/match"
	"turn-based-flow-grpc-plugin-server-go/pkg/player"
)

const (
	waitForExchangesMessage = "Waiting for active exchanges to be cancelled or resolved."
	notYourTurnMessage      = "It is not your turn."
)

func (r *Router) onEvent(scope *common.Scope, ev match.Event) {
	if ev.Match == nil {
		scope.Log.Warnf("dropping %s event without a match", ev.Kind)

		return
	}

	m := r.session.Track(ev.Match)
	switch ev.Kind {
	case match.EventTurnTaken:
		r.onTurnTaken(scope, m, ev.BecameActive)
	case match.EventMatchEnded:
		r.onMatchEnded(scope, m)
	case match.EventExchangeRequest:
		r.onExchangeRequest(scope, m, ev)
	case match.EventExchangeReplies:
		r.onExchangeReplies(scope, m, ev)
	case match.EventExchangeCancellation:
		r.onExchangeCancellation(scope, m, ev)
	default:
		scope.Log.Warnf("unknown event kind %q", ev.Kind)
	}
}

func (r *Router) onTurnTaken(scope *common.Scope, m *match.Match, becameActive bool) {
	local := r.session.LocalPlayer

	switch {
	case becameActive:
		r.session.Select(m.MatchID)
		scope.Log.Infof("match %s is now on screen", m.MatchID)
		for _, e := range m.ActiveExchanges() {
			if e.AwaitsReplyFrom(local) {
				r.notify(scope, exchangeRequestNotification(m, e, e.Initiator))

				break
			}
		}
	case r.session.IsCurrent(m.MatchID):
		scope.Log.Infof("match %s advanced, %s to play", m.MatchID, m.TurnHolder())
	case m.IsTurnHolder(local):
		r.notify(scope, yourTurnNotification(m, local))
	default:
		scope.Log.Debugf("match %s advanced in the background, %s to play", m.MatchID, m.TurnHolder())
	}
}

func (r *Router) onMatchEnded(scope *common.Scope, m *match.Match) {
	r.reconciler.Forget(m.MatchID)
	if r.session.IsCurrent(m.MatchID) {
		scope.Log.Infof("match %s ended on screen", m.MatchID)

		return
	}
	r.notify(scope, matchEndedNotification(m, r.session.LocalPlayer))
}

// eventExchange prefers the match's own copy of the exchange
func eventExchange(m *match.Match, ev match.Event) *match.Exchange {
	if ev.Exchange == nil {
		return nil
	}
	if e := m.Exchange(ev.Exchange.ExchangeID); e != nil {
		return e
	}

	return ev.Exchange
}

func (r *Router) onExchangeRequest(scope *common.Scope, m *match.Match, ev match.Event) {
	e := eventExchange(m, ev)
	if e == nil {
		scope.Log.Warnf("exchange request for match %s without an exchange", m.MatchID)

		return
	}
	if !e.AwaitsReplyFrom(r.session.LocalPlayer) {
		scope.Log.Debugf("exchange %s does not await a reply from us", e.ExchangeID)

		return
	}
	r.notify(scope, exchangeRequestNotification(m, e, ev.Sender))
}

func (r *Router) onExchangeReplies(scope *common.Scope, m *match.Match, ev match.Event) {
	local := r.session.LocalPlayer
	if e := eventExchange(m, ev); e != nil && e.Initiator == local {
		r.retract(m.MatchID, alert.WaitingForExchangeReplies, e.ExchangeID)
		r.notify(scope, repliesNotification(m, e))
	}
	if m.IsTurnHolder(local) {
		r.merge(scope, m, nil)
	}
}

func (r *Router) onExchangeCancellation(scope *common.Scope, m *match.Match, ev match.Event) {
	var subject string
	if ev.Exchange != nil {
		subject = ev.Exchange.ExchangeID
	}
	r.retract(m.MatchID, alert.RespondingToExchange, subject)
	r.notify(scope, cancellationNotification(m, ev.Sender))
}

func (r *Router) onIntent(scope *common.Scope, in Intent) {
	if in.Kind == IntentSelectMatch {
		if !r.session.Select(in.MatchID) {
			scope.Log.Warnf("cannot select unknown match %q", in.MatchID)
		}

		return
	}

	m := r.session.Lookup(in.MatchID)
	if m == nil {
		scope.Log.Warnf("%s without a known match (%q)", in.Kind, in.MatchID)
		r.notify(scope, infoNotification(in.MatchID, "No match selected."))

		return
	}

	switch in.Kind {
	case IntentBeginExchange:
		r.beginExchange(scope, m, in.Recipients)
	case IntentReply:
		r.replyToExchange(scope, m, in.ExchangeID, in.Accept)
	case IntentCancelExchange:
		r.cancelExchange(scope, m, in.ExchangeID)
	case IntentSaveTurn:
		if r.mayResolve(scope, m) && !r.merge(scope, m, nil) {
			scope.Log.Infof("nothing to merge for match %s", m.MatchID)
		}
	case IntentEndTurn:
		r.endTurn(scope, m)
	case IntentEndMatch:
		r.endMatch(scope, m, in.Won)
	case IntentQuit:
		r.quit(scope, m)
	default:
		scope.Log.Warnf("unknown intent %q", in.Kind)
	}
}

// mayResolve checks that the local player may write the match now
func (r *Router) mayResolve(scope *common.Scope, m *match.Match) bool {
	if !m.IsTurnHolder(r.session.LocalPlayer) {
		r.notify(scope, infoNotification(m.MatchID, notYourTurnMessage))

		return false
	}
	if len(m.ActiveExchanges()) > 0 {
		r.notify(scope, infoNotification(m.MatchID, waitForExchangesMessage))

		return false
	}

	return true
}

/*
merge folds the complete exchanges of m and saves the result. then runs on
the loop with the latest snapshot once the save succeeded, or right away
when there was nothing to fold. It returns false when nothing was folded.

While another write of the match is in flight the merge waits for it and
then folds onto the state that write stored.
*/
func (r *Router) merge(scope *common.Scope, m *match.Match, then func(m *match.Match)) bool {
	if r.whenSaved(m.MatchID, func() { r.merge(scope, r.rebase(m), then) }) {
		scope.Log.Debugf("match %s is being written, merge deferred", m.MatchID)

		return true
	}

	res, changed := r.reconciler.Reconcile(m)
	for _, err := range res.Errors {
		r.metrics.FoldErrors.Inc()
		scope.Log.WithError(err).Warnf("skipped an exchange of match %s", m.MatchID)
	}
	if !changed {
		if then != nil {
			then(m)
		}

		return false
	}

	var updated *match.Match
	r.write(scope, m.MatchID, "save_merged_state", func(ctx context.Context) (err error) {
		updated, err = r.platform.SaveMergedState(ctx, m.MatchID, res.State, res.Retired)

		return err
	}, func(err error) {
		if err != nil {
			r.reconciler.Release(m.MatchID, res.Retired)
			r.failed(scope, "save merged state", m.MatchID, err)

			return
		}
		r.metrics.Folded.Add(float64(len(res.Retired)))
		scope.Log.Infof("folded %d exchanges into match %s", len(res.Retired), m.MatchID)
		latest := r.session.Track(updated)
		if then != nil {
			then(latest)
		}
	})

	return true
}

func (r *Router) endTurn(scope *common.Scope, m *match.Match) {
	if !r.mayResolve(scope, m) {
		return
	}

	r.merge(scope, m, func(m *match.Match) {
		next := r.resolver.NextTurnOrderIDs(m)
		var updated *match.Match
		r.write(scope, m.MatchID, "end_turn", func(ctx context.Context) (err error) {
			updated, err = r.platform.EndTurn(ctx, m.MatchID, next, r.cfg.TurnTimeout, m.State)

			return err
		}, func(err error) {
			if err != nil {
				r.failed(scope, "end turn", m.MatchID, err)

				return
			}
			r.session.Track(updated)
			scope.Log.Infof("turn passed in match %s, next %v", m.MatchID, next)
		})
	})
}

// outcomes assigns a final outcome to everyone still without one
func (r *Router) outcomes(m *match.Match, won bool) map[player.ID]match.Outcome {
	local := r.session.LocalPlayer
	mine, theirs := match.OutcomeLost, match.OutcomeWon
	if won {
		mine, theirs = match.OutcomeWon, match.OutcomeLost
	}

	out := make(map[player.ID]match.Outcome)
	for _, p := range m.Participants {
		if p.Exited() {
			continue
		}
		if p.PlayerID == local {
			out[p.PlayerID] = mine
		} else {
			out[p.PlayerID] = theirs
		}
	}

	return out
}

func (r *Router) endMatch(scope *common.Scope, m *match.Match, won bool) {
	if m.Status == match.StatusEnded {
		scope.Log.Warnf("match %s already ended", m.MatchID)

		return
	}
	if !r.mayResolve(scope, m) {
		return
	}

	r.merge(scope, m, func(m *match.Match) {
		outcomes := r.outcomes(m, won)
		var updated *match.Match
		r.write(scope, m.MatchID, "end_match", func(ctx context.Context) (err error) {
			updated, err = r.platform.EndMatch(ctx, m.MatchID, outcomes, m.State)

			return err
		}, func(err error) {
			if err != nil {
				r.failed(scope, "end match", m.MatchID, err)

				return
			}
			r.session.Track(updated)
			r.reconciler.Forget(m.MatchID)
			scope.Log.Infof("match %s ended", m.MatchID)
		})
	})
}

func (r *Router) beginExchange(scope *common.Scope, m *match.Match, recipients []player.ID) {
	local := r.session.LocalPlayer
	if m.Status != match.StatusOpen {
		r.notify(scope, infoNotification(m.MatchID, "Exchanges need an open match."))

		return
	}

	candidates := pie.Map(r.resolver.LiveParticipants(m), func(p match.Participant) player.ID { return p.PlayerID })
	candidates = pie.Filter(candidates, func(id player.ID) bool { return id != local })
	if len(recipients) == 0 {
		r.notify(scope, creatingExchangeNotification(m, candidates))

		return
	}
	for _, id := range recipients {
		if !pie.Contains(candidates, id) {
			r.notify(scope, infoNotification(m.MatchID, "Cannot trade with "+string(id)+"."))

			return
		}
	}

	var (
		updated *match.Match
		created *match.Exchange
	)
	r.spawn(scope, "send_exchange", func(ctx context.Context) (err error) {
		updated, created, err = r.platform.SendExchange(ctx, m.MatchID, recipients, nil, r.cfg.ExchangeTimeout)

		return err
	}, func(err error) {
		if err != nil {
			r.failed(scope, "send exchange", m.MatchID, err)

			return
		}
		latest := r.session.Track(updated)
		r.notify(scope, awaitingRepliesNotification(latest, created))
	})
}

func (r *Router) replyToExchange(scope *common.Scope, m *match.Match, exchangeID string, accept bool) {
	e := m.Exchange(exchangeID)
	if e == nil || !e.AwaitsReplyFrom(r.session.LocalPlayer) {
		scope.Log.Warnf("exchange %q of match %s does not await our reply", exchangeID, m.MatchID)

		return
	}

	value := exchange.ReplyDeclined
	if accept {
		value = exchange.ReplyAccepted
	}
	payload, err := exchange.EncodeReply(value)
	if err != nil {
		r.failed(scope, "encode reply", m.MatchID, err)

		return
	}

	var updated *match.Match
	r.spawn(scope, "reply_to_exchange", func(ctx context.Context) (err error) {
		updated, err = r.platform.ReplyToExchange(ctx, m.MatchID, exchangeID, payload)

		return err
	}, func(err error) {
		if err != nil {
			r.failed(scope, "reply to exchange", m.MatchID, err)

			return
		}
		r.session.Track(updated)
	})
}

func (r *Router) cancelExchange(scope *common.Scope, m *match.Match, exchangeID string) {
	e := m.Exchange(exchangeID)
	if e == nil || e.Initiator != r.session.LocalPlayer || e.Status != match.ExchangeActive {
		scope.Log.Warnf("exchange %q of match %s cannot be cancelled by us", exchangeID, m.MatchID)

		return
	}

	var updated *match.Match
	r.spawn(scope, "cancel_exchange", func(ctx context.Context) (err error) {
		updated, err = r.platform.CancelExchange(ctx, m.MatchID, exchangeID)

		return err
	}, func(err error) {
		if err != nil {
			r.failed(scope, "cancel exchange", m.MatchID, err)

			return
		}
		r.session.Track(updated)
		r.retract(m.MatchID, alert.WaitingForExchangeReplies, exchangeID)
	})
}

// quit forfeits the match for the local player. A holder hands the turn to
// the remaining players without folding pending exchanges, which the next
// holder picks up.
func (r *Router) quit(scope *common.Scope, m *match.Match) {
	if r.whenSaved(m.MatchID, func() {
		if latest, ok := r.session.Match(m.MatchID); ok {
			m = latest
		}
		r.quit(scope, m)
	}) {
		scope.Log.Debugf("match %s is being written, quit deferred", m.MatchID)

		return
	}

	local := r.session.LocalPlayer
	seat := m.Participant(local)
	if m.Status != match.StatusOpen || seat == nil || seat.Exited() {
		scope.Log.Warnf("cannot quit match %s", m.MatchID)

		return
	}

	var (
		next    []player.ID
		timeout time.Duration
		state   []byte
	)
	if m.IsTurnHolder(local) {
		next = pie.Filter(r.resolver.NextTurnOrderIDs(m), func(id player.ID) bool { return id != local })
		if len(next) == 0 {
			r.notify(scope, infoNotification(m.MatchID, "No one is left to take the turn."))

			return
		}
		timeout, state = r.cfg.TurnTimeout, m.State
	}

	var updated *match.Match
	r.write(scope, m.MatchID, "quit", func(ctx context.Context) (err error) {
		updated, err = r.platform.Quit(ctx, m.MatchID, next, timeout, state)

		return err
	}, func(err error) {
		if err != nil {
			r.failed(scope, "quit", m.MatchID, err)

			return
		}
		r.session.Track(updated)
		r.reconciler.Forget(m.MatchID)
		scope.Log.Infof("quit match %s", m.MatchID)
	})
}

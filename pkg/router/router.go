// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package router

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"turn-based-flow-grpc-plugin-server-go/pkg/alert"
	"turn-based-flow-grpc-plugin-server-go/pkg/common"
	"turn-based-flow-grpc-plugin-server-go/pkg/exchange"
	"turn-based-flow-grpc-plugin-server-go/pkg/match"
	"turn-based-flow-grpc-plugin-server-go/pkg/player"
	"turn-based-flow-grpc-plugin-server-go/pkg/turn"
)

const defaultInboxSize = 64

// ErrStopped is returned when posting to a router whose loop has exited
var ErrStopped = errors.New("router stopped")

type Config struct {
	LocalPlayer     player.ID
	TurnTimeout     time.Duration
	ExchangeTimeout time.Duration
	QuitPolicy      turn.QuitPolicy
	InboxSize       int
}

type message interface{}

type eventMessage struct{ event match.Event }

type intentMessage struct{ intent Intent }

type ackMessage struct {
	id    string
	state alert.PresentationState
}

// completion carries the result of a platform call back onto the loop
type completion struct {
	call  string
	apply func()
}

/*
Router is the single consumer of everything that can change the local
player's view: platform events, user intents, presenter acknowledgements and
the completions of its own platform calls. All of them go through one inbox
and are handled one at a time by Run, so the session, the alert queue and
the reconciler are never touched concurrently.
*/
type Router struct {
	cfg        Config
	session    *Session
	platform   Platform
	alerts     *alert.Queue
	resolver   turn.Resolver
	reconciler *exchange.Reconciler
	metrics    *Metrics
	log        *logrus.Entry

	// saving holds the follow-ups waiting on the merged state write in
	// flight for a match. A match has at most one such write at a time.
	saving map[string][]func()

	ctx     context.Context
	inbox   chan message
	stopped chan struct{}
	once    sync.Once
	tasks   sync.WaitGroup
}

func New(cfg Config, platform Platform, presenter alert.Presenter, metrics *Metrics) *Router {
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = defaultInboxSize
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	log := logrus.WithField("player", string(cfg.LocalPlayer))

	return &Router{
		cfg:        cfg,
		session:    NewSession(cfg.LocalPlayer),
		platform:   platform,
		alerts:     alert.NewQueue(presenter, log.WithField("component", "alerts")),
		resolver:   turn.NewResolver(cfg.QuitPolicy),
		reconciler: exchange.NewReconciler(log.WithField("component", "reconciler")),
		metrics:    metrics,
		log:        log,
		saving:     make(map[string][]func()),
		ctx:        context.Background(),
		inbox:      make(chan message, cfg.InboxSize),
		stopped:    make(chan struct{}),
	}
}

// Run drains the inbox until ctx is done. Platform calls still in flight are
// canceled through ctx and their completions are dropped.
func (r *Router) Run(ctx context.Context) error {
	r.ctx = ctx
	r.log.Info("router started")

	for {
		select {
		case <-ctx.Done():
			r.stop()
			r.tasks.Wait()
			r.log.Info("router stopped")

			return ctx.Err()
		case msg := <-r.inbox:
			r.handle(msg)
		}
	}
}

func (r *Router) stop() {
	r.once.Do(func() { close(r.stopped) })
}

// Publish hands a platform event to the router
func (r *Router) Publish(ctx context.Context, event match.Event) error {
	return r.post(ctx, eventMessage{event: event})
}

// Perform hands a user intent to the router
func (r *Router) Perform(ctx context.Context, intent Intent) error {
	return r.post(ctx, intentMessage{intent: intent})
}

// Acknowledge reports that the presenter put id on screen or took it off
func (r *Router) Acknowledge(ctx context.Context, id string, state alert.PresentationState) error {
	return r.post(ctx, ackMessage{id: id, state: state})
}

func (r *Router) post(ctx context.Context, msg message) error {
	select {
	case <-r.stopped:
		return ErrStopped
	default:
	}

	select {
	case r.inbox <- msg:
		return nil
	case <-r.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Router) handle(msg message) {
	switch m := msg.(type) {
	case eventMessage:
		r.metrics.Messages.WithLabelValues("event").Inc()
		scope := r.scope("event." + string(m.event.Kind))
		defer scope.Finish()
		r.onEvent(scope, m.event)
	case intentMessage:
		r.metrics.Messages.WithLabelValues("intent").Inc()
		scope := r.scope("intent." + string(m.intent.Kind))
		defer scope.Finish()
		r.onIntent(scope, m.intent)
	case ackMessage:
		r.metrics.Messages.WithLabelValues("ack").Inc()
		r.onAck(m)
	case completion:
		r.metrics.Messages.WithLabelValues("completion").Inc()
		m.apply()
	default:
		r.log.Errorf("unexpected message %T", msg)
	}
}

func (r *Router) scope(name string) *common.Scope {
	scope := common.ChildScopeFromRemoteScope(r.ctx, name)
	scope.Log = scope.Log.WithFields(logrus.Fields{"player": string(r.cfg.LocalPlayer), "op": name})

	return scope
}

// spawn runs call off the loop and applies done back on it
func (r *Router) spawn(scope *common.Scope, name string, call func(ctx context.Context) error, done func(err error)) {
	ctx := scope.Ctx
	r.tasks.Add(1)
	go func() {
		defer r.tasks.Done()

		child := common.ChildScopeFromRemoteScope(ctx, "platform."+name)
		err := call(child.Ctx)
		child.Finish()
		r.metrics.platformCall(name, err)

		select {
		case r.inbox <- completion{call: name, apply: func() { done(err) }}:
		case <-r.stopped:
		}
	}()
}

// notify offers n to the alert queue and reports whether it was kept
func (r *Router) notify(scope *common.Scope, n *alert.Notification) bool {
	if r.alerts.Enqueue(n) {
		r.metrics.Notifications.WithLabelValues(n.Category.String(), "queued").Inc()

		return true
	}
	r.metrics.Notifications.WithLabelValues(n.Category.String(), "dropped").Inc()
	scope.Log.Debugf("notification %q collapsed into a similar one", n.Content.Title)

	return false
}

// retract takes a prompt about subject down, wherever it is in its
// presentation. An empty subject matches any prompt of that category.
func (r *Router) retract(key string, category alert.Category, subject string) {
	if !r.alerts.Retract(key, category, subject) {
		r.log.Debugf("no %s prompt for %q (%s) to retract", category, key, subject)
	}
}

func (r *Router) failed(scope *common.Scope, call, matchID string, err error) {
	scope.Log.WithError(err).Errorf("%s failed for match %s", call, matchID)
	if !r.notify(scope, errorNotification(matchID, errors.Wrap(err, call))) {
		scope.Log.Warnf("an error for match %s is still on the queue, %s failure folded into it", matchID, call)
	}
}

// whenSaved defers fn until the state write in flight for matchID has
// completed. It reports false, and does nothing, when no write is in flight.
func (r *Router) whenSaved(matchID string, fn func()) bool {
	waiting, ok := r.saving[matchID]
	if !ok {
		return false
	}
	r.saving[matchID] = append(waiting, fn)

	return true
}

// write spawns a call that stores the state of matchID. Writes of one match
// never overlap: what arrives meanwhile waits in whenSaved and runs on the
// loop after done.
func (r *Router) write(scope *common.Scope, matchID, name string, call func(ctx context.Context) error, done func(err error)) {
	r.saving[matchID] = nil
	r.spawn(scope, name, call, func(err error) {
		waiting := r.saving[matchID]
		delete(r.saving, matchID)
		done(err)
		r.resume(matchID, waiting)
	})
}

// resume runs what waited on a write in arrival order. Once one of them
// starts a new write, the rest wait for that one.
func (r *Router) resume(matchID string, waiting []func()) {
	for i, fn := range waiting {
		if _, busy := r.saving[matchID]; busy {
			r.saving[matchID] = append(r.saving[matchID], waiting[i:]...)

			return
		}
		fn()
	}
}

// rebase lays the latest known state of m's match over the snapshot m, so
// that a deferred fold builds on what the previous write stored
func (r *Router) rebase(m *match.Match) *match.Match {
	latest, ok := r.session.Match(m.MatchID)
	if !ok || latest == m {
		return m
	}
	out := m.Clone()
	out.State = latest.State

	return out
}

func (r *Router) onAck(m ackMessage) {
	switch m.state {
	case alert.StatePresented:
		r.alerts.Presented(m.id)
	case alert.StateDismissed:
		if r.alerts.Dismissed(m.id) {
			r.alerts.Advance()
		}
	default:
		r.log.Warnf("ignoring acknowledgement %q for %s", m.state, m.id)
	}
}

// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"sync"

	"github.com/sirupsen/logrus"

	"turn-based-flow-grpc-plugin-server-go/pkg/alert"
	turnflow "turn-based-flow-grpc-plugin-server-go/pkg/pb"
)

const subscriberBuffer = 32

/*
StreamPresenter implements alert.Presenter by fanning presentation requests
out to the connected Presentations streams. Notifications asked to be on
screen are remembered until they are dismissed so that a client connecting
late still gets them.

Present and Dismiss are called from the router loop and never block.
*/
type StreamPresenter struct {
	mu          sync.Mutex
	nextID      int
	subscribers map[int]chan turnflow.Presentation
	showing     []turnflow.Presentation
	log         *logrus.Entry
}

func NewStreamPresenter() *StreamPresenter {
	return &StreamPresenter{
		subscribers: make(map[int]chan turnflow.Presentation),
		log:         logrus.WithField("component", "presenter"),
	}
}

func (p *StreamPresenter) Present(n *alert.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pres := turnflow.PresentationFromNotification(turnflow.ActionPresent, n)
	p.showing = append(p.showing, pres)
	p.broadcast(pres)
}

func (p *StreamPresenter) Dismiss(n *alert.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, shown := range p.showing {
		if shown.NotificationID == n.ID {
			p.showing = append(p.showing[:i], p.showing[i+1:]...)

			break
		}
	}
	p.broadcast(turnflow.PresentationFromNotification(turnflow.ActionDismiss, n))
}

// broadcast must be called with the lock held
func (p *StreamPresenter) broadcast(pres turnflow.Presentation) {
	if len(p.subscribers) == 0 {
		p.log.Debugf("no presenter connected for %s %s", pres.Action, pres.NotificationID)

		return
	}
	for id, ch := range p.subscribers {
		select {
		case ch <- pres:
		default:
			p.log.Errorf("presenter stream %d is not keeping up, dropped %s %s", id, pres.Action, pres.NotificationID)
		}
	}
}

// Subscribe returns a channel of presentation requests, primed with what is
// currently on screen, and a function to stop the subscription.
func (p *StreamPresenter) Subscribe() (<-chan turnflow.Presentation, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	ch := make(chan turnflow.Presentation, subscriberBuffer+len(p.showing))
	for _, pres := range p.showing {
		ch <- pres
	}
	p.subscribers[id] = ch

	return ch, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
	}
}

// Showing returns the notifications currently asked to be on screen
func (p *StreamPresenter) Showing() []turnflow.Presentation {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]turnflow.Presentation(nil), p.showing...)
}

// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package alert

import "turn-based-flow-grpc-plugin-server-go/pkg/common"

// PresentationState tracks a notification through the presenter. It is only
// advanced by presenter acknowledgements.
type PresentationState string

const (
	StatePending   PresentationState = "pending"
	StatePresented PresentationState = "presented"
	StateDismissed PresentationState = "dismissed"
)

// Content is what the presenter renders
type Content struct {
	Title   string   `json:"title"`
	Message string   `json:"message,omitempty"`
	Actions []string `json:"actions,omitempty"`
}

// Notification is a single "needs attention" item waiting for the screen
type Notification struct {
	ID             string
	Content        Content
	Category       Category
	CorrelationKey string // match id, empty when not tied to a match
	// Subject names what inside the match the notification is about, such
	// as an exchange id. It does not take part in deduplication.
	Subject string
	State   PresentationState

	// presentation has been requested and not yet acknowledged
	requested bool
	// withdrawn from screen to make room for a higher priority head
	withdrawing bool
	// dismissal requested through Queue.Dismiss or Queue.Retract
	leaving bool
	// retracted while the presenter still owed an acknowledgement
	cancelled bool
}

// New builds a pending notification with a fresh id
func New(category Category, key string, content Content) *Notification {
	return &Notification{
		ID:             common.GenerateUUID(),
		Content:        content,
		Category:       category,
		CorrelationKey: key,
		State:          StatePending,
	}
}

// Informative is a shorthand for context independent messages
func Informative(title, message string) *Notification {
	return New(Informational, "", Content{Title: title, Message: message, Actions: []string{"OK"}})
}

// About sets the subject of n and returns it
func (n *Notification) About(subject string) *Notification {
	n.Subject = subject

	return n
}

func (n *Notification) sameKind(other *Notification) bool {
	return n.CorrelationKey == other.CorrelationKey && n.Category == other.Category
}

// Presenter is the UI side. Requests are fire and forget; the presenter
// reports back through Queue.Presented and Queue.Dismissed.
type Presenter interface {
	Present(n *Notification)
	Dismiss(n *Notification)
}

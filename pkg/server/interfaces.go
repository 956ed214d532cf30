// Copyright (c) 2022 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"

	"turn-based-flow-grpc-plugin-server-go/pkg/alert"
	"turn-based-flow-grpc-plugin-server-go/pkg/match"
	"turn-based-flow-grpc-plugin-server-go/pkg/router"
)

/*
Flow is the match flow the service fronts, normally a *router.Router. Every
call only enqueues work for the flow's own loop: platform events go to
Publish, user actions to Perform, and the presenter's reports about what is
on screen to Acknowledge.
*/
type Flow interface {
	Publish(ctx context.Context, event match.Event) error
	Perform(ctx context.Context, intent router.Intent) error
	Acknowledge(ctx context.Context, id string, state alert.PresentationState) error
}

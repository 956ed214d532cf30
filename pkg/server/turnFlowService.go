// Copyright (c) 2022 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"turn-based-flow-grpc-plugin-server-go/pkg/common"
	turnflow "turn-based-flow-grpc-plugin-server-go/pkg/pb"
	"turn-based-flow-grpc-plugin-server-go/pkg/router"
)

// TurnFlowServer is for the handler (upper level of the match flow)
type TurnFlowServer struct {
	turnflow.UnimplementedTurnFlowServer

	flow      Flow
	presenter *StreamPresenter
}

func NewTurnFlowServer(flow Flow, presenter *StreamPresenter) *TurnFlowServer {
	return &TurnFlowServer{flow: flow, presenter: presenter}
}

func (s *TurnFlowServer) Publish(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	scope := common.ChildScopeFromRemoteScope(ctx, "TurnFlowServer.Publish")
	defer scope.Finish()

	event, err := turnflow.ProtoEventToMatchEvent(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	scope.Log.Infof("platform event %s for match %s", event.Kind, event.Match.MatchID)

	return &emptypb.Empty{}, flowError(s.flow.Publish(scope.Ctx, event))
}

func (s *TurnFlowServer) Perform(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	scope := common.ChildScopeFromRemoteScope(ctx, "TurnFlowServer.Perform")
	defer scope.Finish()

	intent, err := turnflow.ProtoIntentToRouterIntent(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	scope.Log.Infof("intent %s for match %q", intent.Kind, intent.MatchID)

	return &emptypb.Empty{}, flowError(s.flow.Perform(scope.Ctx, intent))
}

func (s *TurnFlowServer) Acknowledge(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	ack, err := turnflow.ProtoAckToAcknowledgement(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	logrus.Debugf("presenter reports %s %s", ack.NotificationID, ack.State)

	return &emptypb.Empty{}, flowError(s.flow.Acknowledge(ctx, ack.NotificationID, ack.State))
}

func (s *TurnFlowServer) Presentations(_ *emptypb.Empty, server turnflow.TurnFlow_PresentationsServer) error {
	ctx := server.Context()
	updates, cancel := s.presenter.Subscribe()
	defer cancel()
	logrus.Info("presenter connected")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("presenter disconnected")

			return nil
		case pres := <-updates:
			out, err := turnflow.ToStruct(pres)
			if err != nil {
				logrus.Errorf("error encoding presentation: %v", err)

				return status.Error(codes.Internal, err.Error())
			}
			if err = server.Send(out); err != nil {
				logrus.Errorf("error sending to stream: %v", err)

				return err
			}
		}
	}
}

func flowError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, router.ErrStopped):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}

	return status.Error(codes.Internal, err.Error())
}

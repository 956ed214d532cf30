// Copyright (c) 2022 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"turn-based-flow-grpc-plugin-server-go/pkg/player"
)

// PlayerHeader names the metadata key a client uses to say whose flow it
// is talking to
const PlayerHeader = "x-player-id"

var errWrongPlayer = status.Errorf(codes.PermissionDenied, "flow belongs to another player")

// ValidatePlayer accepts calls that carry no player header or one naming
// the local player
func ValidatePlayer(local player.ID, values []string) bool {
	if len(values) < 1 {
		return true
	}

	return player.IDFromString(values[0]) == local
}

func playerFromContext(ctx context.Context) []string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}

	return md.Get(PlayerHeader)
}

// EnsurePlayer rejects unary calls meant for another player's flow
func EnsurePlayer(local player.ID) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !ValidatePlayer(local, playerFromContext(ctx)) {
			logrus.Warnf("rejected %s addressed to another player", info.FullMethod)

			return nil, errWrongPlayer
		}

		return handler(ctx, req)
	}
}

// EnsurePlayerStream rejects streams meant for another player's flow
func EnsurePlayerStream(local player.ID) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if !ValidatePlayer(local, playerFromContext(ss.Context())) {
			logrus.Warnf("rejected %s addressed to another player", info.FullMethod)

			return errWrongPlayer
		}

		return handler(srv, ss)
	}
}

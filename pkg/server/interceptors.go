// Copyright (c) 2022 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpcPrometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"turn-based-flow-grpc-plugin-server-go/pkg/player"
)

// NewGRPUnaryClientInterceptor returns unary client interceptor. It is used
// with `grpc.WithUnaryInterceptor` method.
func NewGRPUnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return otelgrpc.UnaryClientInterceptor()
}

// NewGRPUnaryServerInterceptor returns unary server interceptor. It is used
// with `grpc.UnaryInterceptor` method.
func NewGRPUnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return otelgrpc.UnaryServerInterceptor()
}

// NewGRPCStreamClientInterceptor returns stream client interceptor. It is used
// with `grpc.WithStreamInterceptor` method.
func NewGRPCStreamClientInterceptor() grpc.StreamClientInterceptor {
	return otelgrpc.StreamClientInterceptor()
}

// NewGRPCStreamServerInterceptor returns stream server interceptor. It is used
// with `grpc.StreamInterceptor` method.
func NewGRPCStreamServerInterceptor() grpc.StreamServerInterceptor {
	return otelgrpc.StreamServerInterceptor()
}

/*
ServerOptions chains the interceptors every TurnFlow server runs with:
tracing, then metrics when grpcMetrics is set, then call logging, then the
player guard.
*/
func ServerOptions(local player.ID, logger logrus.FieldLogger, grpcMetrics *grpcPrometheus.ServerMetrics) []grpc.ServerOption {
	loggingOptions := []logging.Option{
		logging.WithLogOnEvents(logging.StartCall, logging.FinishCall),
	}

	unary := []grpc.UnaryServerInterceptor{NewGRPUnaryServerInterceptor()}
	stream := []grpc.StreamServerInterceptor{NewGRPCStreamServerInterceptor()}
	if grpcMetrics != nil {
		unary = append(unary, grpcMetrics.UnaryServerInterceptor())
		stream = append(stream, grpcMetrics.StreamServerInterceptor())
	}
	unary = append(unary,
		logging.UnaryServerInterceptor(InterceptorLogger(logger), loggingOptions...),
		EnsurePlayer(local),
	)
	stream = append(stream,
		logging.StreamServerInterceptor(InterceptorLogger(logger), loggingOptions...),
		EnsurePlayerStream(local),
	)

	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(unary...),
		grpc.ChainStreamInterceptor(stream...),
	}
}

// InterceptorLogger adapts logrus logger to interceptor logger.
// This code is referenced from https://github.com/grpc-ecosystem/go-grpc-middleware/
func InterceptorLogger(logger logrus.FieldLogger) logging.Logger {
	return logging.LoggerFunc(func(_ context.Context, lvl logging.Level, msg string, fields ...any) {
		logrusFields := make(map[string]any, len(fields))
		iterator := logging.Fields(fields).Iterator()
		for iterator.Next() {
			k, fieldValue := iterator.At()
			fieldName := strings.ReplaceAll(k, ".", "_")
			logrusFields[fieldName] = fieldValue
		}
		entry := logger.WithFields(logrusFields)

		switch lvl {
		case logging.LevelDebug:
			entry.Debug(msg)
		case logging.LevelInfo:
			entry.Info(msg)
		case logging.LevelWarn:
			entry.Warn(msg)
		case logging.LevelError:
			entry.Error(msg)
		default:
			panic(fmt.Sprintf("unknown level %v", lvl))
		}
	})
}

// Copyright (c) 2022 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"

	"turn-based-flow-grpc-plugin-server-go/pkg/alert"
	"turn-based-flow-grpc-plugin-server-go/pkg/common"
	turnflow "turn-based-flow-grpc-plugin-server-go/pkg/pb"
	"turn-based-flow-grpc-plugin-server-go/pkg/player"
	"turn-based-flow-grpc-plugin-server-go/pkg/router"
	"turn-based-flow-grpc-plugin-server-go/pkg/server"
)

// A small console client: it performs one intent and, with -watch, follows
// the presentation stream and acknowledges every request as a UI would.
func main() {
	addr := flag.String("addr", "localhost:6565", "The turn flow server address")
	playerID := flag.String("player", common.GetEnv("LOCAL_PLAYER_ID", "player-1"), "The local player id")
	kind := flag.String("intent", "", "Intent to perform, e.g. end_turn or begin_exchange")
	matchID := flag.String("match", "", "Match id, empty for the current match")
	exchangeID := flag.String("exchange", "", "Exchange id for reply_to_exchange and cancel_exchange")
	recipients := flag.String("recipients", "", "Comma separated recipients for begin_exchange")
	accept := flag.Bool("accept", false, "Accept the exchange when replying")
	won := flag.Bool("won", false, "Whether the local player won, for end_match")
	watch := flag.Bool("watch", false, "Follow the presentation stream")
	flag.Parse()
	common.SetLogLevel(common.GetEnv("LOG_LEVEL", "info"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = metadata.AppendToOutgoingContext(ctx, server.PlayerHeader, *playerID)

	conn, err := grpc.DialContext(ctx, *addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(server.NewGRPUnaryClientInterceptor()),
		grpc.WithStreamInterceptor(server.NewGRPCStreamClientInterceptor()),
	)
	if err != nil {
		logrus.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()
	client := turnflow.NewTurnFlowClient(conn)

	if *kind != "" {
		intent := router.Intent{
			Kind:       router.IntentKind(*kind),
			MatchID:    *matchID,
			ExchangeID: *exchangeID,
			Accept:     *accept,
			Won:        *won,
		}
		if *recipients != "" {
			intent.Recipients = player.IDsFromStrings(strings.Split(*recipients, ","))
		}
		if err = perform(ctx, client, intent); err != nil {
			logrus.Fatalf("failed to perform %s: %v", intent.Kind, err)
		}
		logrus.Infof("performed %s", intent.Kind)
	}

	if *watch {
		if err = follow(ctx, client); err != nil && ctx.Err() == nil {
			logrus.Fatalf("presentation stream ended: %v", err)
		}
	}
}

func perform(ctx context.Context, client turnflow.TurnFlowClient, intent router.Intent) error {
	req, err := turnflow.ToStruct(intent)
	if err != nil {
		return err
	}
	callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err = client.Perform(callCtx, req)

	return err
}

func follow(ctx context.Context, client turnflow.TurnFlowClient) error {
	stream, err := client.Presentations(ctx, &emptypb.Empty{})
	if err != nil {
		return err
	}

	for {
		msg, err := stream.Recv()
		if err != nil {
			return err
		}
		var p turnflow.Presentation
		if err = turnflow.FromStruct(msg, &p); err != nil {
			logrus.Warnf("skipping malformed presentation: %v", err)

			continue
		}

		state := alert.StatePresented
		if p.Action == turnflow.ActionDismiss {
			state = alert.StateDismissed
		} else {
			logrus.WithFields(logrus.Fields{
				"category": p.Category,
				"match":    p.CorrelationKey,
				"actions":  p.Content.Actions,
			}).Infof("%s: %s", p.Content.Title, p.Content.Message)
		}

		ack, err := turnflow.ToStruct(turnflow.Acknowledgement{NotificationID: p.NotificationID, State: state})
		if err != nil {
			return err
		}
		if _, err = client.Acknowledge(ctx, ack); err != nil {
			logrus.Errorf("failed to acknowledge %s: %v", p.NotificationID, err)
		}
	}
}

// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package platform

import (
	"context"
	"time"

	"turn-based-flow-grpc-plugin-server-go/pkg/match"
	"turn-based-flow-grpc-plugin-server-go/pkg/player"
	"turn-based-flow-grpc-plugin-server-go/pkg/router"
)

var _ router.Platform = (*Client)(nil)

// Client is the Memory platform as seen by one player
type Client struct {
	platform *Memory
	player   player.ID
}

func (c *Client) Player() player.ID { return c.player }

func (c *Client) SendExchange(ctx context.Context, matchID string, recipients []player.ID, payload []byte, timeout time.Duration) (*match.Match, *match.Exchange, error) {
	return c.platform.sendExchange(ctx, c.player, matchID, recipients, payload, timeout)
}

func (c *Client) ReplyToExchange(ctx context.Context, matchID, exchangeID string, payload []byte) (*match.Match, error) {
	return c.platform.replyToExchange(ctx, c.player, matchID, exchangeID, payload)
}

func (c *Client) CancelExchange(ctx context.Context, matchID, exchangeID string) (*match.Match, error) {
	return c.platform.cancelExchange(ctx, c.player, matchID, exchangeID)
}

func (c *Client) SaveMergedState(ctx context.Context, matchID string, state []byte, resolved []string) (*match.Match, error) {
	return c.platform.saveMergedState(ctx, c.player, matchID, state, resolved)
}

// EndTurn hands the turn to next[0]. The timeout is advisory here.
func (c *Client) EndTurn(ctx context.Context, matchID string, next []player.ID, _ time.Duration, state []byte) (*match.Match, error) {
	return c.platform.endTurn(ctx, c.player, matchID, next, state)
}

func (c *Client) EndMatch(ctx context.Context, matchID string, outcomes map[player.ID]match.Outcome, state []byte) (*match.Match, error) {
	return c.platform.endMatch(ctx, c.player, matchID, outcomes, state)
}

func (c *Client) Quit(ctx context.Context, matchID string, next []player.ID, _ time.Duration, state []byte) (*match.Match, error) {
	return c.platform.quit(ctx, c.player, matchID, next, state)
}

// Copyright (c) 2022 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"turn-based-flow-grpc-plugin-server-go/pkg/player"
	"turn-based-flow-grpc-plugin-server-go/pkg/router"
	"turn-based-flow-grpc-plugin-server-go/pkg/turn"
)

const (
	DefaultTurnTimeout     = 10 * time.Minute
	DefaultExchangeTimeout = 2 * time.Minute
)

type FlowRules struct {
	TurnTimeoutSeconds     int    `json:"turnTimeoutSeconds"`
	ExchangeTimeoutSeconds int    `json:"exchangeTimeoutSeconds"`
	QuitPolicy             string `json:"quitPolicy"`
}

// RulesFromJSON decodes the flow rules. Missing or zero values fall back to
// the defaults.
func RulesFromJSON(raw string) (FlowRules, error) {
	var rules FlowRules
	if raw == "" {
		return rules, nil
	}
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		return rules, errors.Wrap(err, "flow rules")
	}
	if rules.TurnTimeoutSeconds < 0 || rules.ExchangeTimeoutSeconds < 0 {
		return rules, errors.New("flow rules: timeouts must not be negative")
	}
	if _, err := turn.ParseQuitPolicy(rules.QuitPolicy); err != nil {
		return rules, errors.Wrap(err, "flow rules")
	}

	return rules, nil
}

func seconds(value int, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}

	return time.Duration(value) * time.Second
}

// RouterConfig builds the router configuration for local
func (r FlowRules) RouterConfig(local player.ID) (router.Config, error) {
	policy, err := turn.ParseQuitPolicy(r.QuitPolicy)
	if err != nil {
		return router.Config{}, err
	}
	if local == player.None {
		return router.Config{}, errors.New("local player id is required")
	}

	return router.Config{
		LocalPlayer:     local,
		TurnTimeout:     seconds(r.TurnTimeoutSeconds, DefaultTurnTimeout),
		ExchangeTimeout: seconds(r.ExchangeTimeoutSeconds, DefaultExchangeTimeout),
		QuitPolicy:      policy,
	}, nil
}

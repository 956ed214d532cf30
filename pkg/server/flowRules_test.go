// Copyright (c) 2022 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turn-based-flow-grpc-plugin-server-go/pkg/turn"
)

func TestRulesFromJSON(t *testing.T) {
	// prepare
	raw := `{"turnTimeoutSeconds": 30, "quitPolicy": "immediate"}`

	// act
	rules, err := RulesFromJSON(raw)
	require.NoError(t, err)
	cfg, err := rules.RouterConfig("P1")

	// assert
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.TurnTimeout)
	assert.Equal(t, DefaultExchangeTimeout, cfg.ExchangeTimeout)
	assert.Equal(t, turn.QuitImmediate, cfg.QuitPolicy)
}

func TestRulesDefaults(t *testing.T) {
	rules, err := RulesFromJSON("")
	require.NoError(t, err)

	cfg, err := rules.RouterConfig("P1")

	require.NoError(t, err)
	assert.Equal(t, DefaultTurnTimeout, cfg.TurnTimeout)
	assert.Equal(t, turn.QuitConfirmed, cfg.QuitPolicy)

	_, err = rules.RouterConfig("")
	assert.Error(t, err)
}

func TestRulesRejectNonsense(t *testing.T) {
	for _, raw := range []string{`{`, `{"quitPolicy": "sometimes"}`, `{"turnTimeoutSeconds": -1}`} {
		_, err := RulesFromJSON(raw)
		assert.Error(t, err, raw)
	}
}

func TestValidatePlayer(t *testing.T) {
	assert.True(t, ValidatePlayer("P1", nil))
	assert.True(t, ValidatePlayer("P1", []string{"P1"}))
	assert.False(t, ValidatePlayer("P1", []string{"P2"}))
}

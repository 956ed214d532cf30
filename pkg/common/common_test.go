// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("TURN_FLOW_TEST_INT", "not-a-number")
	t.Setenv("TURN_FLOW_TEST_SECONDS", "90")

	assert.Equal(t, "x", GetEnv("TURN_FLOW_TEST_MISSING", "x"))
	assert.Equal(t, 7, GetEnvInt("TURN_FLOW_TEST_INT", 7))
	assert.Equal(t, 90*time.Second, GetEnvSeconds("TURN_FLOW_TEST_SECONDS", time.Minute))
	assert.Equal(t, time.Minute, GetEnvSeconds("TURN_FLOW_TEST_MISSING", time.Minute))
}

func TestAssert(t *testing.T) {
	defer func() { AssertionsFatal = true }()

	assert.True(t, Assert(true, "never"))
	assert.Panics(t, func() { Assert(false, "boom %d", 1) })

	AssertionsFatal = false
	assert.NotPanics(t, func() {
		assert.False(t, Assert(false, "logged only"))
	})
}

func TestScopeCarriesTraceID(t *testing.T) {
	// act
	root := NewRootScope(context.Background(), "test", "")
	defer root.Finish()
	child := root.Child("child")
	defer child.Finish()

	// assert
	assert.Len(t, root.TraceID, 32)
	assert.Equal(t, root.TraceID, root.Log.Data[traceIDLogField])
	assert.Equal(t, "child", child.Log.Data["op"])
	assert.NotNil(t, child.Ctx)
}

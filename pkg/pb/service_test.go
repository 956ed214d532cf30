// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package turnflow

import (
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rpcLine = regexp.MustCompile(`rpc (\w+)\(([\w.]+)\) returns \((stream )?([\w.]+)\);`)

func TestServiceDescMatchesProto(t *testing.T) {
	// prepare
	source, err := os.ReadFile(TurnFlow_ServiceDesc.Metadata.(string))
	require.NoError(t, err)

	// act
	unary := map[string]bool{}
	streams := map[string]bool{}
	for _, m := range rpcLine.FindAllStringSubmatch(string(source), -1) {
		if m[3] != "" {
			streams[m[1]] = true
		} else {
			unary[m[1]] = true
		}
	}

	// assert
	assert.Contains(t, string(source), "package turnflow.v1;")
	assert.Contains(t, string(source), "service TurnFlow {")
	require.Len(t, unary, len(TurnFlow_ServiceDesc.Methods))
	for _, m := range TurnFlow_ServiceDesc.Methods {
		assert.True(t, unary[m.MethodName], "%s missing from the proto", m.MethodName)
	}
	require.Len(t, streams, len(TurnFlow_ServiceDesc.Streams))
	for _, s := range TurnFlow_ServiceDesc.Streams {
		assert.True(t, streams[s.StreamName], "%s missing from the proto", s.StreamName)
		assert.True(t, s.ServerStreams)
	}
}

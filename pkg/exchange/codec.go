// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package exchange

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const (
	ReplyAccepted = "accepted"
	ReplyDeclined = "declined"
)

var (
	ErrEmptyPayload   = errors.New("exchange reply has no payload")
	ErrMissingReplies = errors.New("exchange is complete but not every recipient replied")
)

// EncodeReply encodes reply arguments as a JSON array of strings
func EncodeReply(args ...string) ([]byte, error) {
	if args == nil {
		args = []string{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return nil, errors.Wrap(err, "encode exchange reply")
	}

	return data, nil
}

// DecodeReply returns the reply arguments joined by commas
func DecodeReply(payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", ErrEmptyPayload
	}
	var args []string
	if err := json.Unmarshal(payload, &args); err != nil {
		return "", errors.Wrap(err, "decode exchange reply")
	}
	if len(args) == 0 {
		return "", ErrEmptyPayload
	}

	return strings.Join(args, ","), nil
}

// DecodeState reads the match state blob: a JSON array of fold records in the
// order they were folded. An empty blob holds no records.
func DecodeState(blob []byte) ([]string, error) {
	if len(blob) == 0 {
		return []string{}, nil
	}
	var records []string
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, errors.Wrap(err, "decode match state")
	}

	return records, nil
}

// AppendRecords concatenates records onto the blob, keeping their order
func AppendRecords(blob []byte, records ...string) ([]byte, error) {
	existing, err := DecodeState(blob)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(append(existing, records...))
	if err != nil {
		return nil, errors.Wrap(err, "encode match state")
	}

	return data, nil
}

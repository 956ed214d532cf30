// Copyright (c) 2023 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package turnflow

import (
	pie_ "github.com/elliotchance/pie/v2"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"turn-based-flow-grpc-plugin-server-go/pkg/alert"
	"turn-based-flow-grpc-plugin-server-go/pkg/match"
	"turn-based-flow-grpc-plugin-server-go/pkg/router"
)

// Presentation actions sent on the Presentations stream
const (
	ActionPresent = "present"
	ActionDismiss = "dismiss"
)

// Acknowledgement is the Acknowledge payload
type Acknowledgement struct {
	NotificationID string                  `json:"notificationId"`
	State          alert.PresentationState `json:"state"`
}

// Presentation is one request for the presenter
type Presentation struct {
	Action         string        `json:"action"`
	NotificationID string        `json:"notificationId"`
	Category       string        `json:"category"`
	CorrelationKey string        `json:"correlationKey,omitempty"`
	Subject        string        `json:"subject,omitempty"`
	Content        alert.Content `json:"content"`
}

func PresentationFromNotification(action string, n *alert.Notification) Presentation {
	return Presentation{
		Action:         action,
		NotificationID: n.ID,
		Category:       n.Category.String(),
		CorrelationKey: n.CorrelationKey,
		Subject:        n.Subject,
		Content:        n.Content,
	}
}

// ToStruct will convert any JSON encodable value to a proto struct
func ToStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode payload")
	}
	out := &structpb.Struct{}
	if err = protojson.Unmarshal(raw, out); err != nil {
		return nil, errors.Wrap(err, "payload is not a JSON object")
	}

	return out, nil
}

// FromStruct will convert a proto struct into v
func FromStruct(s *structpb.Struct, v interface{}) error {
	if s == nil {
		return errors.New("empty payload")
	}
	raw, err := protojson.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode struct")
	}

	return errors.Wrap(json.Unmarshal(raw, v), "decode payload")
}

// ProtoEventToMatchEvent will convert a Publish payload to a platform event
func ProtoEventToMatchEvent(s *structpb.Struct) (match.Event, error) {
	var ev match.Event
	if err := FromStruct(s, &ev); err != nil {
		return ev, err
	}
	if ev.Match == nil || ev.Match.MatchID == "" {
		return ev, errors.Errorf("%s event without a match", ev.Kind)
	}

	return ev, nil
}

// MatchEventToProtoEvent will convert a platform event to a Publish payload
func MatchEventToProtoEvent(ev match.Event) (*structpb.Struct, error) {
	return ToStruct(ev)
}

// ProtoIntentToRouterIntent will convert a Perform payload to an intent
func ProtoIntentToRouterIntent(s *structpb.Struct) (router.Intent, error) {
	var in router.Intent
	if err := FromStruct(s, &in); err != nil {
		return in, err
	}
	if in.Kind == "" {
		return in, errors.New("intent without a kind")
	}

	return in, nil
}

// ProtoAckToAcknowledgement will convert an Acknowledge payload
func ProtoAckToAcknowledgement(s *structpb.Struct) (Acknowledgement, error) {
	var ack Acknowledgement
	if err := FromStruct(s, &ack); err != nil {
		return ack, err
	}
	if ack.NotificationID == "" {
		return ack, errors.New("acknowledgement without a notification id")
	}
	if ack.State != alert.StatePresented && ack.State != alert.StateDismissed {
		return ack, errors.Errorf("cannot acknowledge state %q", ack.State)
	}

	return ack, nil
}

// PresentationsToProto will convert a batch of presentations, dropping none
func PresentationsToProto(list []Presentation) ([]*structpb.Struct, error) {
	var firstErr error
	out := pie_.Map(list, func(p Presentation) *structpb.Struct {
		s, err := ToStruct(p)
		if err != nil && firstErr == nil {
			firstErr = err
		}

		return s
	})
	if firstErr != nil {
		return nil, firstErr
	}

	return out, nil
}

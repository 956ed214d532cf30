// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package router

import (
	"turn-based-flow-grpc-plugin-server-go/pkg/match"
	"turn-based-flow-grpc-plugin-server-go/pkg/player"
)

// Session is the local player's view: which match is on screen and the
// latest snapshot of every match heard about. Owned by the router loop.
type Session struct {
	LocalPlayer    player.ID
	CurrentMatchID string

	matches map[string]*match.Match
}

func NewSession(local player.ID) *Session {
	return &Session{LocalPlayer: local, matches: make(map[string]*match.Match)}
}

// Track adopts m as the latest snapshot of its match
func (s *Session) Track(m *match.Match) *match.Match {
	s.matches[m.MatchID] = m

	return m
}

func (s *Session) Match(id string) (*match.Match, bool) {
	m, ok := s.matches[id]

	return m, ok
}

// Current returns the match on screen, or nil
func (s *Session) Current() *match.Match {
	if s.CurrentMatchID == "" {
		return nil
	}

	return s.matches[s.CurrentMatchID]
}

// Select puts a known match on screen
func (s *Session) Select(id string) bool {
	if _, ok := s.matches[id]; !ok {
		return false
	}
	s.CurrentMatchID = id

	return true
}

func (s *Session) IsCurrent(id string) bool {
	return id != "" && s.CurrentMatchID == id
}

// Lookup resolves an intent's match id, falling back to the current match
func (s *Session) Lookup(id string) *match.Match {
	if id == "" {
		return s.Current()
	}

	return s.matches[id]
}

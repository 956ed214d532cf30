// Copyright (c) 2022 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package player

import "github.com/elliotchance/pie/v2"

// ID is a unique identifier for a player on the hosting platform
type ID string

// None is the zero ID, used where a match has no turn holder
const None ID = ""

// IDToString returns a string representation of the player id
func IDToString(u ID) string {
	return string(u)
}

// IDFromString converts a string to a player.ID
func IDFromString(u string) ID {
	return ID(u)
}

// IDsFromStrings converts a list of raw identifiers, keeping their order
func IDsFromStrings(ids []string) []ID {
	return pie.Map(ids, IDFromString)
}

// IDsToStrings converts a list of player ids, keeping their order
func IDsToStrings(ids []ID) []string {
	return pie.Map(ids, IDToString)
}

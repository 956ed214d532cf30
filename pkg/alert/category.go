// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package alert

// Tier is the coarse priority band of a category
type Tier int

const (
	// TierInformational covers context independent messages
	TierInformational Tier = iota
	// TierContextAltering covers prompts that may switch the viewed match
	TierContextAltering
	// TierContextSensitive covers prompts tied to a particular match
	TierContextSensitive
	// TierFollowUp covers prompts that must directly follow a forcibly
	// dismissed one
	TierFollowUp
)

// Priority orders categories first by tier, then by rank inside the tier
type Priority struct {
	Tier Tier
	Rank int
}

// Less reports whether p ranks strictly below other
func (p Priority) Less(other Priority) bool {
	if p.Tier != other.Tier {
		return p.Tier < other.Tier
	}

	return p.Rank < other.Rank
}

// Category is a closed set of notification kinds. Values are comparable and
// only the package level variables below are valid.
type Category struct {
	name     string
	priority Priority
}

var (
	Informational = Category{"informational", Priority{TierInformational, 0}}
	// PlatformError ranks with Informational but deduplicates on its own, so
	// a failure is never swallowed by an unrelated notice for the same match
	PlatformError = Category{"platform-error", Priority{TierInformational, 0}}

	AlteringMatchContext = Category{"altering-match-context", Priority{TierContextAltering, 0}}

	MatchContextSensitive     = Category{"match-context-sensitive", Priority{TierContextSensitive, 0}}
	RespondingToExchange      = Category{"responding-to-exchange", Priority{TierContextSensitive, 1}}
	WaitingForExchangeReplies = Category{"waiting-for-exchange-replies", Priority{TierContextSensitive, 2}}
	CreatingExchange          = Category{"creating-exchange", Priority{TierContextSensitive, 3}}

	ExchangeCancellationFollowUp = Category{"exchange-cancellation-follow-up", Priority{TierFollowUp, 0}}
)

// Categories lists every valid category, lowest priority first
var Categories = []Category{
	Informational,
	PlatformError,
	AlteringMatchContext,
	MatchContextSensitive,
	RespondingToExchange,
	WaitingForExchangeReplies,
	CreatingExchange,
	ExchangeCancellationFollowUp,
}

func (c Category) Priority() Priority { return c.priority }

func (c Category) String() string { return c.name }

// CategoryFromString resolves a category by name
func CategoryFromString(name string) (Category, bool) {
	for _, c := range Categories {
		if c.name == name {
			return c, true
		}
	}

	return Category{}, false
}

package task

import "Food-Rescue-Ledger/domain"

type badgeRule struct {
	id     domain.BadgeID
	name   string
	earned func(domain.BadgeInput) bool
}

// badgeTable is evaluated top to bottom; the output keeps this order.
var badgeTable = []badgeRule{
	{
		id:     domain.BadgeFirstDelivery,
		name:   "First Delivery",
		earned: func(in domain.BadgeInput) bool { return in.CompletedTasks >= 1 },
	},
	{
		id:     domain.BadgeRegularRescuer,
		name:   "Regular Rescuer",
		earned: func(in domain.BadgeInput) bool { return in.CompletedTasks >= 5 },
	},
	{
		id:     domain.BadgeCommunityChampion,
		name:   "Community Champion",
		earned: func(in domain.BadgeInput) bool { return in.CompletedTasks >= 50 },
	},
	{
		id:     domain.BadgeCentury,
		name:   "Century",
		earned: func(in domain.BadgeInput) bool { return in.TotalPoints >= 100 },
	},
	{
		id:     domain.BadgeFoodHero,
		name:   "Food Hero",
		earned: func(in domain.BadgeInput) bool { return in.TotalPoints >= 1000 },
	},
}

// ComputeBadges is recomputed on every read and never stored, so changes to
// the table apply to past activity too.
func ComputeBadges(in domain.BadgeInput) []domain.BadgeID {
	badges := []domain.BadgeID{}
	for _, rule := range badgeTable {
		if rule.earned(in) {
			badges = append(badges, rule.id)
		}
	}
	return badges
}

// BadgeName returns the display name of a badge, or its id if unknown.
func BadgeName(id domain.BadgeID) string {
	for _, rule := range badgeTable {
		if rule.id == id {
			return rule.name
		}
	}
	return string(id)
}

package gamification

// Badge identifiers with the point totals that unlock them.
var badgeThresholds = []struct {
	Points int
	Badge  string
}{
	{10, "first_steps"},
	{50, "pothole_hunter"},
	{150, "active_citizen"},
	{500, "civic_champion"},
}

// badgesFor returns every badge unlocked at the given point total.
// AwardBadge deduplicates, so returning already-earned badges is fine.
func badgesFor(total int) []string {
	var earned []string
	for _, t := range badgeThresholds {
		if total >= t.Points {
			earned = append(earned, t.Badge)
		}
	}
	return earned
}

package archive

import (
	"musicleague-backend/lib/scrapers/musicleague"
)

// PlayerAliases is a many-to-one map from raw scraped display names to
// canonical player names.
type PlayerAliases map[string]string

// Canonical resolves a raw scraped name; unmapped names pass through
// unchanged.
func (a PlayerAliases) Canonical(name string) string {
	if canonical, ok := a[name]; ok {
		return canonical
	}
	return name
}

// NormalizePlayers rewrites submitter and voter names in place using the
// alias map. Both roles go through the same map, so one person appearing
// as a submitter in one row and a voter in another resolves to the same
// canonical name.
func NormalizePlayers(records []musicleague.RoundSubmission, aliases PlayerAliases) {
	if len(aliases) == 0 {
		return
	}
	for i := range records {
		records[i].SubmitterName = aliases.Canonical(records[i].SubmitterName)
		for j := range records[i].Votes {
			records[i].Votes[j].VoterName = aliases.Canonical(records[i].Votes[j].VoterName)
		}
	}
}

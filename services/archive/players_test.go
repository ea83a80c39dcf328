package archive

import (
	"testing"

	"musicleague-backend/lib/scrapers/musicleague"

	"github.com/stretchr/testify/require"
)

func TestNormalizePlayersBothRoles(t *testing.T) {
	aliases := PlayerAliases{
		"jdoe42":            "Jane Doe",
		"[Left the league]": "Sam Smith",
	}

	records := []musicleague.RoundSubmission{
		{
			LeagueTitle: "League",
			Submission: musicleague.Submission{
				SubmitterName: "jdoe42",
				Votes: []musicleague.Vote{
					{VoterName: "[Left the league]", Value: 2},
					{VoterName: "untouched", Value: 1},
				},
			},
		},
		{
			LeagueTitle: "League",
			Submission: musicleague.Submission{
				SubmitterName: "Sam Smith",
				Votes: []musicleague.Vote{
					// the same person that submitted row 0 votes here
					// under their raw alias
					{VoterName: "jdoe42", Value: 4},
				},
			},
		},
	}

	NormalizePlayers(records, aliases)

	require.Equal(t, "Jane Doe", records[0].SubmitterName)
	require.Equal(t, "Sam Smith", records[0].Votes[0].VoterName)
	// unmapped names pass through unchanged
	require.Equal(t, "untouched", records[0].Votes[1].VoterName)
	// the alias resolves identically in the voter role
	require.Equal(t, "Jane Doe", records[1].Votes[0].VoterName)
}

func TestNormalizePlayersEmptyMap(t *testing.T) {
	records := []musicleague.RoundSubmission{
		{Submission: musicleague.Submission{SubmitterName: "raw"}},
	}
	NormalizePlayers(records, nil)
	require.Equal(t, "raw", records[0].SubmitterName)
}

package archive

import (
	"testing"

	"musicleague-backend/lib/scrapers/musicleague"

	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

// threeSubmissionRound models a round where submission A has two voters
// (one of them comment-only), B has one voter and C has none at all.
func threeSubmissionRound() []musicleague.RoundSubmission {
	round := musicleague.Round{Number: 1, Name: "Songs about rain", Description: "No thunder allowed"}

	a := musicleague.Submission{
		SongName:      "Song A",
		SongArtist:    "Artist A",
		SongAlbum:     "Album A",
		SpotifyLink:   "https://open.spotify.com/track/aaa",
		TrackID:       "aaa",
		Rank:          1,
		SubmitterName: "Alice",
		Votes: []musicleague.Vote{
			{VoterName: "Bob", Value: 5},
			{VoterName: "Carol", Value: 0, Comment: strptr("lovely pick")},
		},
	}
	b := musicleague.Submission{
		SongName:      "Song B",
		SongArtist:    "Artist B",
		SongAlbum:     "Album B",
		SpotifyLink:   "https://open.spotify.com/track/bbb",
		TrackID:       "bbb",
		Rank:          2,
		SubmitterName: "Bob",
		Votes: []musicleague.Vote{
			{VoterName: "Alice", Value: 3},
		},
	}
	c := musicleague.Submission{
		SongName:      "Song C",
		SongArtist:    "Artist C",
		SongAlbum:     "Album C",
		SpotifyLink:   "https://open.spotify.com/track/ccc",
		TrackID:       "ccc",
		Rank:          3,
		SubmitterName: "Carol",
	}

	return []musicleague.RoundSubmission{
		{LeagueTitle: "Office League", Round: round, Submission: a},
		{LeagueTitle: "Office League", Round: round, Submission: b},
		{LeagueTitle: "Office League", Round: round, Submission: c},
	}
}

func TestBuildResultsReflectsCastVotesOnly(t *testing.T) {
	records := threeSubmissionRound()

	results := BuildResults(records)
	require.Len(t, results, 3)

	require.Equal(t, "Bob", results[0].VoterName)
	require.Equal(t, 5, results[0].VoteValue)
	require.Nil(t, results[0].VoterComment)

	// a comment-only vote keeps its normalized zero value
	require.Equal(t, "Carol", results[1].VoterName)
	require.Equal(t, 0, results[1].VoteValue)
	require.NotNil(t, results[1].VoterComment)
	require.Equal(t, "lovely pick", *results[1].VoterComment)

	require.Equal(t, "Alice", results[2].VoterName)
	require.Equal(t, 3, results[2].VoteValue)
}

func TestBuildSubmissionsRetainsVotelessSubmissions(t *testing.T) {
	records := threeSubmissionRound()

	subs := BuildSubmissions(records)
	require.Len(t, subs, 3)
	require.Equal(t, "Song C", subs[2].SongName)
	require.Equal(t, "ccc", subs[2].TrackID)
}

func TestBuildSubmissionsDeduplicates(t *testing.T) {
	records := threeSubmissionRound()
	// duplicate submission-level rows, as produced by a vote-level
	// flattening of the same round
	records = append(records, records[0], records[1])

	subs := BuildSubmissions(records)
	require.Len(t, subs, 3)
}

func TestBuildRoundsDeduplicates(t *testing.T) {
	records := threeSubmissionRound()

	rounds := BuildRounds(records)
	require.Len(t, rounds, 1)
	require.Equal(t, RoundRow{
		LeagueTitle:      "Office League",
		RoundName:        "Songs about rain",
		RoundDescription: "No thunder allowed",
		RoundNumber:      1,
	}, rounds[0])
}

func TestAssemblerIsIdempotent(t *testing.T) {
	records := threeSubmissionRound()

	first := BuildSubmissions(records)
	second := BuildSubmissions(records)
	require.Equal(t, first, second)

	firstRounds := BuildRounds(records)
	secondRounds := BuildRounds(records)
	require.Equal(t, firstRounds, secondRounds)
}

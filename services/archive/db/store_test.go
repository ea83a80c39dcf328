package db

import (
	"context"
	"path/filepath"
	"testing"

	"musicleague-backend/lib/scrapers/musicleague"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "snapshot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func sampleRecords() []musicleague.RoundSubmission {
	comment := "my pick of the year"
	voteComment := "agreed"
	return []musicleague.RoundSubmission{
		{
			LeagueTitle: "Office League",
			Round:       musicleague.Round{Number: 1, Name: "Songs about rain", Description: "No thunder"},
			Submission: musicleague.Submission{
				SongName:         "Song A",
				SongArtist:       "Artist A",
				SongAlbum:        "Album A",
				SpotifyLink:      "https://open.spotify.com/track/aaa",
				TrackID:          "aaa",
				Rank:             1,
				SubmitterName:    "Alice",
				SubmitterComment: &comment,
				Votes: []musicleague.Vote{
					{VoterName: "Bob", Value: 5},
					{VoterName: "Carol", Value: 0, Comment: &voteComment},
				},
			},
		},
		{
			LeagueTitle: "Office League",
			Round:       musicleague.Round{Number: 1, Name: "Songs about rain", Description: "No thunder"},
			Submission: musicleague.Submission{
				SongName:      "Song B",
				SongArtist:    "Artist B",
				SongAlbum:     "Album B",
				SpotifyLink:   "spotify:track:bbb",
				TrackID:       "bbb",
				Rank:          2,
				SubmitterName: "Bob",
			},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	records := sampleRecords()
	require.NoError(t, store.Save(ctx, records))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, records, loaded)
}

func TestLoadPreservesOptionalComments(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleRecords()))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	require.NotNil(t, loaded[0].SubmitterComment)
	require.Equal(t, "my pick of the year", *loaded[0].SubmitterComment)
	require.Nil(t, loaded[0].Votes[0].Comment)
	require.NotNil(t, loaded[0].Votes[1].Comment)
	require.Nil(t, loaded[1].SubmitterComment)
	require.Empty(t, loaded[1].Votes)
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleRecords()))

	replacement := sampleRecords()[:1]
	require.NoError(t, store.Save(ctx, replacement))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, "Song A", loaded[0].SongName)
}

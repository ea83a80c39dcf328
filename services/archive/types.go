// Package archive turns raw scraped round submissions into the three
// flat relations the archive persists (rounds, submissions, results),
// normalizing player names and enriching submissions with catalog
// metadata along the way.
package archive

import (
	"musicleague-backend/lib/scrapers/spotify"
)

// SubmissionRow is one row of the submissions relation: the
// submission-level columns of the scrape plus the nullable enrichment
// columns appended by Enrich.
type SubmissionRow struct {
	LeagueTitle      string
	RoundNumber      int
	SubmitterName    string
	SongName         string
	SongArtist       string
	SongAlbum        string
	SpotifyLink      string
	Rank             int
	SubmitterComment *string
	// Voted is externally supplied input data carried through opaquely;
	// nothing in the acquisition pipeline derives it.
	Voted string

	// TrackID is the enrichment join key; it is not emitted as an
	// output column.
	TrackID string

	SongPopularity   *int
	ArtistPopularity *int
	Genres           []string
	Features         *spotify.AudioFeatures
}

// ResultRow is one row of the results relation: one cast vote.
type ResultRow struct {
	LeagueTitle   string
	RoundNumber   int
	SubmitterName string
	SongName      string
	VoterName     string
	VoteValue     int
	VoterComment  *string
}

// RoundRow is one row of the rounds relation.
type RoundRow struct {
	LeagueTitle      string
	RoundName        string
	RoundDescription string
	RoundNumber      int
}

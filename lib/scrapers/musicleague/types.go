package musicleague

// Vote is one voter's reaction to a submission. Value is 0 when the voter
// left only a comment without a numeric vote; Comment is nil when the
// voter left no comment.
type Vote struct {
	VoterName string
	Value     int
	Comment   *string
}

// Submission is one song entered by one player into one round, along with
// every vote cast on it. A submission that received no votes still has a
// valid Submission with an empty Votes slice.
type Submission struct {
	SongName         string
	SongArtist       string
	SongAlbum        string
	SpotifyLink      string
	TrackID          string
	Rank             int
	SubmitterName    string
	SubmitterComment *string
	Votes            []Vote
}

// Round is one voting cycle within a league.
type Round struct {
	Number      int
	Name        string
	Description string
}

// RoundSubmission is a submission tagged with the league and round it was
// scraped from, the unit the downstream pipeline operates on.
type RoundSubmission struct {
	LeagueTitle string
	Round       Round
	Submission
}

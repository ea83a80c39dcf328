package musicleague

import (
	"bytes"
	"testing"

	_ "embed"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

//go:embed completed_leagues_test.html
var completedLeaguesTest []byte

//go:embed league_rounds_test.html
var leagueRoundsTest []byte

//go:embed round_results_test.html
var roundResultsTest []byte

func docFromBytes(t *testing.T, markup []byte) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(markup))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func docFromString(t *testing.T, markup string) *goquery.Document {
	return docFromBytes(t, []byte(markup))
}

func TestParseLeagues(t *testing.T) {
	doc := docFromBytes(t, completedLeaguesTest)

	leagues := ParseLeagues(doc)
	require.Equal(t, map[string]string{
		"Office League": "https://app.musicleague.com/l/abc123/",
		"Indie Heads":   "https://app.musicleague.com/l/def456/",
	}, leagues)
}

func TestParseRounds(t *testing.T) {
	doc := docFromBytes(t, leagueRoundsTest)

	rounds, err := ParseRounds(doc)
	require.NoError(t, err)
	require.Len(t, rounds, 2)

	require.Equal(t, 1, rounds[0].Number)
	require.Equal(t, "Songs about rain", rounds[0].Name)
	require.Equal(t, "No thunder allowed.", rounds[0].Description)

	require.Equal(t, 2, rounds[1].Number)
	require.Equal(t, "One hit wonders", rounds[1].Name)
	require.Equal(t, "Exactly one hit, no more.", rounds[1].Description)
}

func TestParseRoundsMalformedLabel(t *testing.T) {
	doc := docFromString(t, `
		<div class="card">
			<span class="card-text text-body-tertiary">ROUND FINALE</span>
			<h5 class="card-title">Mystery</h5>
		</div>
		<div class="card">
			<span class="card-text text-body-tertiary">ROUND 3</span>
			<h5 class="card-title">Covers</h5>
			<p class="card-text">desc</p>
		</div>`)

	rounds, err := ParseRounds(doc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not match ROUND <number>")
	// the malformed card never degrades the well formed ones
	require.Len(t, rounds, 1)
	require.Equal(t, 3, rounds[0].Number)
}

func TestFindResultsLink(t *testing.T) {
	doc := docFromBytes(t, leagueRoundsTest)

	href, ok := FindResultsLink(doc, "One hit wonders")
	require.True(t, ok)
	require.Equal(t, "https://app.musicleague.com/l/abc123/round/r2/results/", href)

	// titles match exactly, never fuzzily
	_, ok = FindResultsLink(doc, "one hit wonders")
	require.False(t, ok)

	_, ok = FindResultsLink(doc, "Overall")
	require.False(t, ok)
}

func TestRoundTitles(t *testing.T) {
	doc := docFromBytes(t, leagueRoundsTest)
	require.Equal(t, []string{
		"Songs about rain", "One hit wonders", "Overall",
	}, RoundTitles(doc))
}

func TestExtractSubmissions(t *testing.T) {
	doc := docFromBytes(t, roundResultsTest)

	subs, err := ExtractSubmissions(doc)
	require.NoError(t, err)
	require.Len(t, subs, 3)

	a := subs[0]
	require.Equal(t, "Song A", a.SongName)
	require.Equal(t, "Artist A", a.SongArtist)
	require.Equal(t, "Album A", a.SongAlbum)
	require.Equal(t, "https://open.spotify.com/track/aaa111", a.SpotifyLink)
	require.Equal(t, "aaa111", a.TrackID)
	require.Equal(t, "Alice", a.SubmitterName)
	require.Equal(t, 1, a.Rank)
	require.NotNil(t, a.SubmitterComment)
	require.Equal(t, "my pick of the year", *a.SubmitterComment)

	require.Len(t, a.Votes, 2)
	require.Equal(t, Vote{VoterName: "Bob", Value: 5}, a.Votes[0])
	// Carol sent a comment without a point value, which normalizes to 0
	require.Equal(t, "Carol", a.Votes[1].VoterName)
	require.Equal(t, 0, a.Votes[1].Value)
	require.NotNil(t, a.Votes[1].Comment)
	require.Equal(t, "lovely pick", *a.Votes[1].Comment)

	b := subs[1]
	require.Equal(t, "bbb222", b.TrackID)
	require.Nil(t, b.SubmitterComment)
	require.Len(t, b.Votes, 1)
	require.Equal(t, 3, b.Votes[0].Value)
	require.NotNil(t, b.Votes[0].Comment)

	// a submission nobody voted on still comes through
	c := subs[2]
	require.Equal(t, "Carol", c.SubmitterName)
	require.Equal(t, 3, c.Rank)
	require.Empty(t, c.Votes)
}

func TestExtractSubmissionRankWithoutDigits(t *testing.T) {
	doc := docFromString(t, `
		<div id="spotify:track:xxx" class="card">
			<h6 class="card-title"><a href="spotify:track:xxx">Song X</a></h6>
			<div class="rank-badge">
				<span class="fw-semibold">Alice</span>
				<span class="font-monospace">TIED</span>
			</div>
		</div>`)

	_, err := ExtractSubmissions(doc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "contains no digits")
}

func TestExtractSubmissionsSkipsMalformedFragments(t *testing.T) {
	doc := docFromString(t, `
		<div id="spotify:track:bad" class="card">
			<h6 class="card-title"><a href="spotify:track:bad">Song Bad</a></h6>
		</div>
		<div id="spotify:track:good" class="card">
			<h6 class="card-title"><a href="spotify:track:good">Song Good</a></h6>
			<div class="rank-badge">
				<span class="fw-semibold">Alice</span>
				<span class="font-monospace">#1</span>
			</div>
		</div>`)

	subs, err := ExtractSubmissions(doc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing submitter name")
	require.Len(t, subs, 1)
	require.Equal(t, "good", subs[0].TrackID)
}

func TestExtractVoteMissingName(t *testing.T) {
	doc := docFromString(t, `
		<div id="spotify:track:xxx" class="card">
			<h6 class="card-title"><a href="spotify:track:xxx">Song X</a></h6>
			<div class="rank-badge">
				<span class="fw-semibold">Alice</span>
				<span class="font-monospace">#1</span>
			</div>
			<div class="card-footer">
				<div class="row align-items-start">
					<h6 class="m-0">4</h6>
				</div>
			</div>
		</div>`)

	_, err := ExtractSubmissions(doc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing voter name")
}

func TestTrackIDFromLink(t *testing.T) {
	for _, tc := range []struct {
		link string
		id   string
	}{
		{"https://open.spotify.com/track/6rqhFgbbKwnb9MLmUQDhG6", "6rqhFgbbKwnb9MLmUQDhG6"},
		{"https://open.spotify.com/track/6rqhFgbbKwnb9MLmUQDhG6?si=abc", "6rqhFgbbKwnb9MLmUQDhG6"},
		{"spotify:track:6rqhFgbbKwnb9MLmUQDhG6", "6rqhFgbbKwnb9MLmUQDhG6"},
	} {
		id, err := TrackIDFromLink(tc.link)
		require.NoError(t, err, tc.link)
		require.Equal(t, tc.id, id, tc.link)
	}

	for _, link := range []string{
		"",
		"spotify:track:",
		"https://open.spotify.com/album/xyz",
	} {
		_, err := TrackIDFromLink(link)
		require.Error(t, err, link)
	}
}

func TestCleanTextOnRoundDescription(t *testing.T) {
	doc := docFromString(t, `
		<div class="card">
			<span class="card-text text-body-tertiary">ROUND 7</span>
			<h5 class="card-title">  Padded title  </h5>
			<p class="card-text">
				line one
				line two
			</p>
		</div>`)

	rounds, err := ParseRounds(doc)
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	// the title keeps its raw text for exact matching later, while the
	// description is normalized for output
	require.Equal(t, "  Padded title  ", rounds[0].Name)
	require.Equal(t, "line one line two", rounds[0].Description)
}

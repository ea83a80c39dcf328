package musicleague

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"musicleague-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// structural selectors for the submission card markup. Kept in one place
// so markup drift only requires updating this table.
const (
	selLeagueCard      = "h6.card-title a"
	selRoundLabel      = "span.card-text.text-body-tertiary"
	selRoundTitle      = "h5.card-title"
	selRoundDesc       = "p.card-text"
	selSubmission      = `[id*="spotify:track:"]`
	selSongLink        = "h6.card-title a"
	selSongArtist      = "p.card-text:nth-of-type(1)"
	selSongAlbum       = "p.card-text:nth-of-type(2)"
	selSubmitterName   = "[class*=rank] .fw-semibold"
	selRankBadge       = "[class*=rank] .font-monospace"
	selSubmitterQuote  = ".bi.bi-quote.flex-shrink-0.me-1.fs-5 + span"
	selVoteRow         = ".card-footer .row.align-items-start"
	selVoterName       = "b.text-body"
	selVoteValue       = "h6.m-0"
	selVoterComment    = "span.text-break.ws-pre-wrap"
	selResultsLinkText = "RESULTS"
)

var roundNumberRegex = regexp.MustCompile(`ROUND (\d+)`)
var nonDigitRegex = regexp.MustCompile(`\D`)

// ParseLeagues extracts a league title -> URL map from the completed
// leagues page. Duplicate titles overwrite; titles are unique in practice.
func ParseLeagues(doc *goquery.Document) map[string]string {
	leagues := map[string]string{}
	doc.Find(selLeagueCard).Each(func(_ int, card *goquery.Selection) {
		title := htmlutil.CleanText(card.Text())
		href := card.AttrOr("href", "")
		if title == "" || href == "" {
			return
		}
		leagues[title] = href
	})
	return leagues
}

// ParseRounds extracts round number, name and description from the league
// page's round cards. A card whose label does not match "ROUND <int>" is an
// extraction error, never a silent zero; such cards are skipped and their
// errors joined into the returned error alongside any parsed rounds.
func ParseRounds(doc *goquery.Document) ([]Round, error) {
	var rounds []Round
	var errlist []error

	doc.Find(selRoundLabel).Each(func(_ int, label *goquery.Selection) {
		text := label.Text()
		if !strings.Contains(text, "ROUND") {
			return
		}
		card := label.Parent()

		groups := roundNumberRegex.FindStringSubmatch(text)
		if len(groups) < 2 {
			errlist = append(errlist, fmt.Errorf(
				"round label %q does not match ROUND <number>", strings.TrimSpace(text),
			))
			return
		}
		number, err := strconv.Atoi(groups[1])
		if err != nil {
			errlist = append(errlist, fmt.Errorf("round number %q: %w", groups[1], err))
			return
		}

		// the raw text content is kept as-is (including whitespace)
		// because locating the round later depends on an exact match
		name := card.Find(selRoundTitle).Text()
		if name == "" {
			errlist = append(errlist, fmt.Errorf("round %d has no title", number))
			return
		}

		rounds = append(rounds, Round{
			Number:      number,
			Name:        name,
			Description: htmlutil.CleanText(card.Find(selRoundDesc).First().Text()),
		})
	})

	return rounds, errors.Join(errlist...)
}

// FindResultsLink locates the round card whose title matches roundName
// exactly and returns the href of its RESULTS link.
func FindResultsLink(doc *goquery.Document, roundName string) (string, bool) {
	href := ""
	found := false
	doc.Find(selRoundTitle).EachWithBreak(func(_ int, title *goquery.Selection) bool {
		if title.Text() != roundName {
			return true
		}
		card := title.Closest("div.card")
		if card.Length() == 0 {
			card = title.Parent()
		}
		card.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
			if !strings.Contains(p.Text(), selResultsLinkText) {
				return true
			}
			anchor := p.ParentsFiltered("a").First()
			if h, ok := anchor.Attr("href"); ok {
				href = h
				found = true
				return false
			}
			return true
		})
		return !found
	})
	return href, found
}

// RoundTitles returns the raw round card titles present on a league page,
// used to report near-misses when an exact title match fails.
func RoundTitles(doc *goquery.Document) []string {
	var titles []string
	doc.Find(selRoundTitle).Each(func(_ int, title *goquery.Selection) {
		titles = append(titles, title.Text())
	})
	return titles
}

// ExtractSubmissions parses every submission fragment on a round results
// page. Fragments whose required fields are malformed are skipped; their
// errors are joined and returned alongside the successfully parsed rows.
func ExtractSubmissions(doc *goquery.Document) ([]Submission, error) {
	var subs []Submission
	var errlist []error

	doc.Find(selSubmission).Each(func(i int, fragment *goquery.Selection) {
		sub, err := ExtractSubmission(fragment)
		if err != nil {
			errlist = append(errlist, fmt.Errorf("submission fragment %d: %w", i, err))
			return
		}
		subs = append(subs, sub)
	})

	return subs, errors.Join(errlist...)
}

// ExtractSubmission turns one rendered submission fragment into a
// submission record plus its vote rows. It is a pure function of the
// fragment markup.
func ExtractSubmission(fragment *goquery.Selection) (Submission, error) {
	var sub Submission

	songLink := fragment.Find(selSongLink).First()
	sub.SongName = songLink.Text()
	if sub.SongName == "" {
		return sub, fmt.Errorf("missing song name")
	}
	sub.SpotifyLink = songLink.AttrOr("href", "")

	trackID, err := TrackIDFromLink(sub.SpotifyLink)
	if err != nil {
		return sub, err
	}
	sub.TrackID = trackID

	sub.SongArtist = fragment.Find(selSongArtist).First().Text()
	sub.SongAlbum = fragment.Find(selSongAlbum).First().Text()

	sub.SubmitterName = fragment.Find(selSubmitterName).First().Text()
	if sub.SubmitterName == "" {
		return sub, fmt.Errorf("missing submitter name")
	}

	rank, err := parseRank(fragment.Find(selRankBadge).First().Text())
	if err != nil {
		return sub, err
	}
	sub.Rank = rank

	// comments are optional: a missing element means "no comment",
	// which is distinct from an extraction failure
	if quote := fragment.Find(selSubmitterQuote); quote.Length() > 0 {
		text := quote.First().Text()
		sub.SubmitterComment = &text
	}

	var voteErrs []error
	fragment.Find(selVoteRow).Each(func(i int, row *goquery.Selection) {
		vote, err := extractVote(row)
		if err != nil {
			voteErrs = append(voteErrs, fmt.Errorf("vote row %d: %w", i, err))
			return
		}
		sub.Votes = append(sub.Votes, vote)
	})
	if len(voteErrs) > 0 {
		return sub, errors.Join(voteErrs...)
	}

	return sub, nil
}

func extractVote(row *goquery.Selection) (Vote, error) {
	var vote Vote

	vote.VoterName = row.Find(selVoterName).First().Text()
	if vote.VoterName == "" {
		return vote, fmt.Errorf("missing voter name")
	}

	// a missing numeric element means the voter only sent in a comment;
	// the value is normalized to 0 rather than treated as an error
	if value := row.Find(selVoteValue); value.Length() > 0 {
		parsed, err := strconv.Atoi(strings.TrimSpace(value.First().Text()))
		if err != nil {
			return vote, fmt.Errorf("vote value: %w", err)
		}
		vote.Value = parsed
	}

	if comment := row.Find(selVoterComment); comment.Length() > 0 {
		text := comment.First().Text()
		vote.Comment = &text
	}

	return vote, nil
}

// parseRank strips every non-digit character from the rank badge text and
// parses what remains. A badge with no digits is an error for the
// submission, never a silent zero.
func parseRank(badge string) (int, error) {
	digits := nonDigitRegex.ReplaceAllString(badge, "")
	if digits == "" {
		return 0, fmt.Errorf("rank badge %q contains no digits", badge)
	}
	return strconv.Atoi(digits)
}

// TrackIDFromLink extracts the track identifier from a canonical track
// URL, accepting both the https://open.spotify.com/track/<id> and the
// spotify:track:<id> forms.
func TrackIDFromLink(link string) (string, error) {
	if link == "" {
		return "", fmt.Errorf("missing track link")
	}

	if idx := strings.LastIndex(link, "spotify:track:"); idx >= 0 {
		id := link[idx+len("spotify:track:"):]
		if id == "" {
			return "", fmt.Errorf("track link %q has an empty id", link)
		}
		return id, nil
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("track link %q: %w", link, err)
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i, segment := range segments {
		if segment == "track" && i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1], nil
		}
	}
	return "", fmt.Errorf("track link %q has no track id", link)
}

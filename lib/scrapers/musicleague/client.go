package musicleague

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"musicleague-backend/lib/browser"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultHomeURL  = "https://app.musicleague.com/home/"
	defaultLoginURL = "https://app.musicleague.com/login/"
)

// politeness pauses against rate limiting by the host site
const (
	leagueListPause  = 3 * time.Second
	leaguePagePause  = 2 * time.Second
	leagueStartPause = 5 * time.Second
	roundDelayMinMs  = 1000
	roundDelayMaxMs  = 2000
)

// ErrLoginFailed covers every fatal authentication outcome: rejected
// credentials and an unreachable consent step alike.
var ErrLoginFailed = fmt.Errorf("failed to log in to music league")

// the navigation state machine; one active state at a time, transitions
// only ever move forward except for the InLeague <-> InRound loop
type state int

const (
	stateUnauthenticated state = iota
	stateAuthenticated
	stateLeagueList
	stateInLeague
	stateInRound
)

type Credentials struct {
	Username string
	Password string
}

type ClientOptions struct {
	Headless    bool
	WaitTimeout time.Duration
	// HomeURL and LoginURL override the production endpoints, used by
	// tests that point the client at a local fixture server.
	HomeURL  string
	LoginURL string
}

// Client drives one browser session through authentication, league
// discovery, round discovery and round-page retrieval. It owns the
// session exclusively; navigation is inherently sequential.
type Client struct {
	session  *browser.Session
	state    state
	homeURL  string
	loginURL string
	leagues  map[string]string
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	homeURL := opts.HomeURL
	if homeURL == "" {
		homeURL = defaultHomeURL
	}
	loginURL := opts.LoginURL
	if loginURL == "" {
		loginURL = defaultLoginURL
	}

	session, err := browser.NewSession(ctx, browser.Options{
		Headless:    opts.Headless,
		WaitTimeout: opts.WaitTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("start browser session: %w", err)
	}

	return &Client{
		session:  session,
		state:    stateUnauthenticated,
		homeURL:  homeURL,
		loginURL: loginURL,
	}, nil
}

func (c *Client) Close() {
	c.session.Close()
}

func (c *Client) document(ctx context.Context) (*goquery.Document, error) {
	html, err := c.session.HTML(ctx)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// Login authenticates through the Spotify identity-provider flow embedded
// in Music League: the login link, the credential form, then the consent
// step. Every failure here is fatal for the run; there is no
// partial-credential retry.
func (c *Client) Login(ctx context.Context, creds Credentials) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	if creds.Username == "" || creds.Password == "" {
		return fmt.Errorf("%w: missing credentials", ErrLoginFailed)
	}

	if err := c.session.Navigate(ctx, c.loginURL); err != nil {
		span.SetStatus(codes.Error, "failed to open login page")
		return fmt.Errorf("%w: open login page: %v", ErrLoginFailed, err)
	}
	err := c.session.Click(ctx, browser.XPath(
		`//a[normalize-space(text())="Log in with Spotify"]`,
	))
	if err != nil {
		span.SetStatus(codes.Error, "failed to reach spotify login")
		return fmt.Errorf("%w: open identity provider: %v", ErrLoginFailed, err)
	}

	fields := map[string]string{
		"#login-username": creds.Username,
		"#login-password": creds.Password,
	}
	for sel, value := range fields {
		if err := c.session.SendKeys(ctx, browser.CSS(sel), value); err != nil {
			span.SetStatus(codes.Error, "failed to fill credential field")
			return fmt.Errorf("%w: fill %s: %v", ErrLoginFailed, sel, err)
		}
	}
	time.Sleep(200 * time.Millisecond)
	if err := c.session.Click(ctx, browser.CSS("#login-button")); err != nil {
		span.SetStatus(codes.Error, "failed to submit login form")
		return fmt.Errorf("%w: submit login: %v", ErrLoginFailed, err)
	}

	// terms and agreements page
	time.Sleep(400 * time.Millisecond)
	err = c.session.Click(ctx, browser.CSS(`button[data-testid="auth-accept"]`))
	if err != nil {
		span.SetStatus(codes.Error, "consent step not reached")
		return fmt.Errorf("%w: consent step not reached: %v", ErrLoginFailed, err)
	}

	c.state = stateAuthenticated
	return nil
}

// Leagues navigates to the completed leagues view and enumerates every
// league card into a title -> URL map.
func (c *Client) Leagues(ctx context.Context) (map[string]string, error) {
	ctx, span := tracer.Start(ctx, "client:Leagues")
	defer span.End()

	if c.state == stateUnauthenticated {
		return nil, fmt.Errorf("not logged in")
	}

	if err := c.session.Navigate(ctx, c.homeURL); err != nil {
		span.SetStatus(codes.Error, "failed to open home page")
		return nil, err
	}
	err := c.session.Click(ctx, browser.XPath(
		`//a[normalize-space(text())="View completed"]`,
	))
	if err != nil {
		span.SetStatus(codes.Error, "failed to open completed leagues")
		return nil, err
	}
	time.Sleep(leagueListPause)

	if err := c.session.WaitVisible(ctx, browser.CSS(selLeagueCard)); err != nil {
		span.SetStatus(codes.Error, "league cards never rendered")
		return nil, err
	}
	doc, err := c.document(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	c.leagues = ParseLeagues(doc)
	c.state = stateLeagueList
	return c.leagues, nil
}

func (c *Client) openLeague(ctx context.Context, leagueTitle string) (*goquery.Document, error) {
	link, ok := c.leagues[leagueTitle]
	if !ok {
		return nil, fmt.Errorf("unknown league %q", leagueTitle)
	}
	if err := c.session.Navigate(ctx, link); err != nil {
		return nil, err
	}
	time.Sleep(leaguePagePause)

	if err := c.session.WaitVisible(ctx, browser.CSS(selRoundTitle)); err != nil {
		return nil, fmt.Errorf("round cards never rendered: %w", err)
	}
	doc, err := c.document(ctx)
	if err != nil {
		return nil, err
	}
	c.state = stateInLeague
	return doc, nil
}

// Rounds performs the discovery pass for a league: it enumerates the
// round cards into parsed Round records. Cards with malformed labels are
// reported through the joined error and skipped.
func (c *Client) Rounds(ctx context.Context, leagueTitle string) ([]Round, error) {
	ctx, span := tracer.Start(ctx, "client:Rounds")
	defer span.End()

	doc, err := c.openLeague(ctx, leagueTitle)
	if err != nil {
		span.SetStatus(codes.Error, "failed to open league")
		return nil, err
	}
	return ParseRounds(doc)
}

// RoundSubmissions re-navigates to the league root, locates the round by
// exact title match, opens its results view, waits for the submission
// fragments to render and extracts them. Failure here fails this round
// only, never the league.
func (c *Client) RoundSubmissions(ctx context.Context, leagueTitle string, round Round) ([]RoundSubmission, error) {
	ctx, span := tracer.Start(ctx, "client:RoundSubmissions")
	defer span.End()

	doc, err := c.openLeague(ctx, leagueTitle)
	if err != nil {
		span.SetStatus(codes.Error, "failed to open league")
		return nil, err
	}

	link, ok := FindResultsLink(doc, round.Name)
	if !ok {
		if nearest := nearestTitle(round.Name, RoundTitles(doc)); nearest != "" {
			slog.WarnContext(ctx, "round title not found, nearest candidate",
				"want", round.Name, "nearest", nearest)
		}
		span.SetStatus(codes.Error, "round title not found")
		return nil, fmt.Errorf("no results link for round %q", round.Name)
	}

	if err := c.session.Navigate(ctx, link); err != nil {
		span.SetStatus(codes.Error, "failed to open results page")
		return nil, err
	}
	if err := c.session.WaitVisible(ctx, browser.CSS(selSubmission)); err != nil {
		span.SetStatus(codes.Error, "submission fragments never rendered")
		return nil, fmt.Errorf("submissions for round %q never rendered: %w", round.Name, err)
	}
	c.state = stateInRound

	doc, err = c.document(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	subs, extractErr := ExtractSubmissions(doc)
	if extractErr != nil {
		// malformed fragments are logged omissions, the rest of the
		// round is still used
		slog.WarnContext(ctx, "skipped malformed submission fragments",
			"league", leagueTitle, "round", round.Name, "err", extractErr)
		span.RecordError(extractErr)
	}

	rows := make([]RoundSubmission, len(subs))
	for i, sub := range subs {
		rows[i] = RoundSubmission{
			LeagueTitle: leagueTitle,
			Round:       round,
			Submission:  sub,
		}
	}
	return rows, nil
}

// Run walks every discovered league and round and returns the unified
// submission set. Only authentication failure aborts the run; per-league
// and per-round failures are swallowed into logged omissions.
func (c *Client) Run(ctx context.Context, creds Credentials) ([]RoundSubmission, error) {
	ctx, span := tracer.Start(ctx, "client:Run")
	defer span.End()

	if err := c.Login(ctx, creds); err != nil {
		span.SetStatus(codes.Error, "authentication failed")
		return nil, err
	}
	leagues, err := c.Leagues(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "league discovery failed")
		return nil, err
	}

	var all []RoundSubmission
	for title := range leagues {
		time.Sleep(leagueStartPause)

		rounds, err := c.Rounds(ctx, title)
		if err != nil && len(rounds) == 0 {
			slog.WarnContext(ctx, "skipping league", "league", title, "err", err)
			continue
		}
		if err != nil {
			slog.WarnContext(ctx, "skipped malformed round cards", "league", title, "err", err)
		}

		for _, round := range rounds {
			rows, err := c.RoundSubmissions(ctx, title, round)
			if err != nil {
				slog.WarnContext(ctx, "skipping round",
					"league", title, "round", round.Name, "err", err)
				continue
			}
			all = append(all, rows...)

			delayMs, err := random.IntRange(roundDelayMinMs, roundDelayMaxMs)
			if err != nil {
				delayMs = roundDelayMinMs
			}
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}
	}

	slog.InfoContext(ctx, "scrape complete",
		"leagues", len(leagues), "submissions", len(all))
	return all, nil
}

func nearestTitle(want string, titles []string) string {
	best := ""
	var bestScore float64
	for _, title := range titles {
		score := matchr.JaroWinkler(want, title, false)
		if score > bestScore {
			bestScore = score
			best = title
		}
	}
	return best
}

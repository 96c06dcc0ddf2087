// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fixtures fetches the current day's football fixtures and renders
// them into indexable documents.
package fixtures

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/golazo-dev/golazo/internal/httputil"
	"github.com/golazo-dev/golazo/pkg/types"
)

// fixturesAPIBase is the API-Football fixtures endpoint. Declared as a var
// so tests can substitute an httptest server.
var fixturesAPIBase = "https://v3.football.api-sports.io/fixtures"

// PlaceholderContent is indexed instead of live fixtures when the source
// yields nothing, so the index is never empty.
const PlaceholderContent = "No hay partidos relevantes programados hoy."

// SourceName tags documents and the freshness record with their origin.
const SourceName = "api-football"

// league identifies a competition by name and, where the name is ambiguous
// across countries, by country. An empty country matches any.
type league struct {
	name    string
	country string
}

// relevantLeagues is the whitelist of competitions worth summarizing.
var relevantLeagues = map[league]bool{
	{"Liga Profesional Argentina", "Argentina"}:     true,
	{"Copa Argentina", "Argentina"}:                 true,
	{"Copa Libertadores", ""}:                       true,
	{"Copa Sudamericana", ""}:                       true,
	{"Champions League", ""}:                        true,
	{"UEFA Euro", ""}:                               true,
	{"World Cup", ""}:                               true,
	{"Premier League", "England"}:                   true,
	{"La Liga", "Spain"}:                            true,
	{"Serie A", "Italy"}:                            true,
	{"Bundesliga", "Germany"}:                       true,
	{"Ligue 1", "France"}:                           true,
	{"MLS", "USA"}:                                  true,
	{"Brasileirão", "Brazil"}:                       true,
	{"Copa Do Brasil", "Brazil"}:                    true,
	{"Primera División", "Chile"}:                   true,
	{"Primera A", "Colombia"}:                       true,
	{"Liga MX", "Mexico"}:                           true,
	{"Division Profesional - Apertura", "Paraguay"}: true,
	{"Primera División", "Peru"}:                    true,
	{"Primeira Liga", "Portugal"}:                   true,
	{"Primera División - Clausura", "Uruguay"}:      true,
}

// Client fetches fixture documents from the API-Football service.
type Client struct {
	Client *http.Client
	APIKey string
	Config types.FixturesConfig

	// now is the clock used to resolve "today". Tests override it.
	now func() time.Time
}

// NewClient returns a Client using cfg and the given API key.
func NewClient(cfg types.FixturesConfig, apiKey string) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		Client: &http.Client{Timeout: timeout},
		APIKey: apiKey,
		Config: cfg,
		now:    time.Now,
	}
}

// location resolves the configured reference timezone.
func (c *Client) location() *time.Location {
	tz := c.Config.Timezone
	if tz == "" {
		tz = types.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FetchDocuments requests today's fixtures in the reference timezone,
// keeps only whitelisted leagues with complete payloads, and renders one
// document per league. A zero-length result is not an error; the caller
// decides how to handle an empty day.
func (c *Client) FetchDocuments(ctx context.Context) ([]types.Document, error) {
	loc := c.location()
	today := c.now().In(loc).Format("2006-01-02")

	params := url.Values{
		"date":     {today},
		"timezone": {loc.String()},
	}
	reqURL := fixturesAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("x-apisports-key", c.APIKey)
	if c.Config.UserAgent != "" {
		req.Header.Set("User-Agent", c.Config.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("fixtures API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fixtures API returned HTTP %d", resp.StatusCode)
	}

	var fr fixturesResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, fmt.Errorf("parsing fixtures response: %w", err)
	}

	return c.buildDocuments(fr.Response, today, loc), nil
}

// buildDocuments filters, formats, and groups fixtures into one document
// per league so retrieval has a real top-k surface.
func (c *Client) buildDocuments(fixtures []fixtureEntry, today string, loc *time.Location) []types.Document {
	byLeague := make(map[string][]string)
	for _, f := range fixtures {
		if !f.complete() {
			continue
		}
		if !isRelevant(f.League.Name, f.League.Country) {
			continue
		}
		line, ok := formatMatch(f, loc)
		if !ok {
			continue
		}
		key := leagueLabel(f.League.Name, f.League.Country)
		byLeague[key] = append(byLeague[key], line)
	}

	labels := make([]string, 0, len(byLeague))
	for label := range byLeague {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	docs := make([]types.Document, 0, len(labels))
	for _, label := range labels {
		docs = append(docs, types.Document{
			Content: strings.Join(byLeague[label], "\n"),
			Metadata: map[string]any{
				"source":       SourceName,
				"date":         today,
				"content_type": "football-match",
				"league":       label,
			},
		})
	}
	return docs
}

// Placeholder returns the single stand-in document indexed when the day
// has no relevant fixtures.
func Placeholder(today string) types.Document {
	return types.Document{
		Content: PlaceholderContent,
		Metadata: map[string]any{
			"source":       SourceName,
			"date":         today,
			"content_type": "football-match",
		},
	}
}

// formatMatch renders one standardized match line:
// "⚽ Home vs Away | League (Country) | HH:MM (ARG)".
func formatMatch(f fixtureEntry, loc *time.Location) (string, bool) {
	kickoff, err := time.Parse(time.RFC3339, f.Fixture.Date)
	if err != nil {
		return "", false
	}
	hour := kickoff.In(loc).Format("15:04")
	return fmt.Sprintf("⚽ %s vs %s | %s | %s (ARG)",
		f.Teams.Home.Name, f.Teams.Away.Name,
		leagueLabel(f.League.Name, f.League.Country), hour), true
}

// leagueLabel appends the country where present: "La Liga (Spain)".
func leagueLabel(name, country string) string {
	if country == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, country)
}

// isRelevant checks the league whitelist, first by (name, country), then
// by name alone for international competitions.
func isRelevant(name, country string) bool {
	if relevantLeagues[league{name, country}] {
		return true
	}
	return relevantLeagues[league{name, ""}]
}

// API-Football JSON structures.
type fixturesResponse struct {
	Results  int            `json:"results"`
	Response []fixtureEntry `json:"response"`
}

type fixtureEntry struct {
	Fixture fixtureInfo `json:"fixture"`
	League  leagueInfo  `json:"league"`
	Teams   teamsInfo   `json:"teams"`
}

// complete reports whether the entry carries every field the formatter needs.
func (f fixtureEntry) complete() bool {
	return f.Fixture.Date != "" && f.League.Name != "" &&
		f.Teams.Home.Name != "" && f.Teams.Away.Name != ""
}

type fixtureInfo struct {
	ID   int    `json:"id"`
	Date string `json:"date"`
}

type leagueInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

type teamsInfo struct {
	Home teamInfo `json:"home"`
	Away teamInfo `json:"away"`
}

type teamInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

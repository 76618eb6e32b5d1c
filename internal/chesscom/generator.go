// Package chesscom generates the Chess.com profile report from the public
// REST API.
package chesscom

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jaipkapoor99/the-automaton/internal/fetch"
	"github.com/jaipkapoor99/the-automaton/internal/observability"
	"github.com/jaipkapoor99/the-automaton/internal/report"
)

// gamesPerTimeClass caps the collected recent games per time class.
const gamesPerTimeClass = 100

// Profile is the player profile endpoint response.
type Profile struct {
	Username   string `json:"username"`
	Name       string `json:"name"`
	Country    string `json:"country"`
	Followers  int    `json:"followers"`
	LastOnline int64  `json:"last_online"`
}

// ratingSnapshot is a rating with its date. Score is only populated in the
// puzzle-rush block, which reuses the "best" key for a different shape.
type ratingSnapshot struct {
	Rating int   `json:"rating"`
	Date   int64 `json:"date"`
	Score  int   `json:"score"`
}

// categoryStats is the per-time-class stats block.
type categoryStats struct {
	Last   *ratingSnapshot `json:"last"`
	Best   *ratingSnapshot `json:"best"`
	Record *struct {
		Win  int `json:"win"`
		Loss int `json:"loss"`
		Draw int `json:"draw"`
	} `json:"record"`
	Highest *ratingSnapshot `json:"highest"`
	Lowest  *ratingSnapshot `json:"lowest"`
}

// clubs is the clubs endpoint response.
type clubs struct {
	Clubs []struct {
		Name string `json:"name"`
	} `json:"clubs"`
}

// archives is the games/archives endpoint response.
type archives struct {
	Archives []string `json:"archives"`
}

// Game is one archived game.
type Game struct {
	PGN       string `json:"pgn"`
	TimeClass string `json:"time_class"`
}

// monthGames is one monthly archive response.
type monthGames struct {
	Games []Game `json:"games"`
}

// Client calls the Chess.com public API.
type Client struct {
	baseURL string
	opts    *fetch.Options
}

// NewClient creates a Chess.com API client. The API requires a User-Agent
// identifying the caller.
func NewClient(baseURL string) *Client {
	opts := fetch.DefaultOptions()
	opts.Headers = map[string]string{"User-Agent": "The-Automaton"}
	return &Client{baseURL: baseURL, opts: opts}
}

// Get fetches baseURL/endpoint into out.
func (c *Client) Get(ctx context.Context, endpoint string, out any) error {
	return fetch.GetJSON(ctx, c.baseURL+"/"+endpoint, nil, c.opts, out)
}

// Generator produces the Chess.com profile report.
type Generator struct {
	username   string
	outputPath string
	client     *Client
	printer    *observability.Printer
}

// NewGenerator creates a Chess.com profile generator.
func NewGenerator(username, outputPath string, client *Client, printer *observability.Printer) *Generator {
	return &Generator{
		username:   username,
		outputPath: outputPath,
		client:     client,
		printer:    printer,
	}
}

// Name returns the workflow name of this generator.
func (g *Generator) Name() string { return "chess-com" }

// addHeader appends text underlined with "=" (level 1) or "-" (level 2+).
func addHeader(b *report.Builder, text string, level int) {
	b.Add("\n" + text)
	if level == 1 {
		b.Add(strings.Repeat("=", len(text)))
	} else {
		b.Add(strings.Repeat("-", len(text)))
	}
}

// Generate fetches profile, stats, clubs, and recent games, then writes the
// report. Individual endpoint failures leave an advisory line and the rest
// of the report proceeds.
func (g *Generator) Generate(ctx context.Context) error {
	if g.username == "" {
		return errors.New("Chess.com username not set: set CHESSCOM_ID in your .env file")
	}
	g.printer.Progress("Generating Chess.com profile for %s...", g.username)

	b := report.New()
	title := fmt.Sprintf("Chess.com Profile: %s", g.username)
	b.Add(title)
	b.Add(strings.Repeat("=", len(title)))
	b.Addf("Generated on: %s", time.Now().Format("2006-01-02 15:04:05"))

	g.addProfile(ctx, b)
	g.addStats(ctx, b)
	g.addClubs(ctx, b)
	g.addRecentGames(ctx, b)

	if err := b.WriteFile(g.outputPath); err != nil {
		return err
	}
	g.printer.Progress("Successfully generated Chess.com profile at %s", g.outputPath)
	return nil
}

func (g *Generator) fetch(ctx context.Context, b *report.Builder, endpoint string, out any) bool {
	if err := g.client.Get(ctx, endpoint, out); err != nil {
		b.Addf("An error occurred fetching data from %s: %v", endpoint, err)
		return false
	}
	return true
}

func (g *Generator) addProfile(ctx context.Context, b *report.Builder) {
	var profile Profile
	if !g.fetch(ctx, b, "player/"+g.username, &profile) {
		return
	}

	addHeader(b, "1. Player Profile", 2)
	b.Addf("- Username: %s", profile.Username)
	b.Addf("- Name: %s", profile.Name)
	country := profile.Country
	if i := strings.LastIndex(country, "/"); i >= 0 {
		country = country[i+1:]
	}
	b.Addf("- Country: %s", country)
	b.Addf("- Followers: %d", profile.Followers)
	if profile.LastOnline > 0 {
		b.Addf("- Last Online: %s", time.Unix(profile.LastOnline, 0).Format("2006-01-02 15:04:05"))
	}
}

func (g *Generator) addStats(ctx context.Context, b *report.Builder) {
	var stats map[string]categoryStats
	if !g.fetch(ctx, b, "player/"+g.username+"/stats", &stats) {
		return
	}
	if len(stats) == 0 {
		return
	}

	addHeader(b, "Detailed Stats", 2)
	for _, category := range []string{"chess_rapid", "chess_blitz", "chess_bullet", "chess_daily"} {
		cs, present := stats[category]
		if !present || cs.Last == nil || cs.Best == nil || cs.Record == nil {
			continue
		}
		label := titleCase(strings.ReplaceAll(strings.TrimPrefix(category, "chess_"), "_", " "))
		b.Addf("- %s:", label)
		b.Addf("  - Current Rating: %d", cs.Last.Rating)
		b.Addf("  - Best Rating: %d (%s)", cs.Best.Rating, time.Unix(cs.Best.Date, 0).Format("2006-01-02"))
		b.Addf("  - Record: %dW / %dL / %dD", cs.Record.Win, cs.Record.Loss, cs.Record.Draw)
	}

	if tactics, present := stats["tactics"]; present {
		b.Add("- Tactics:")
		if tactics.Highest != nil {
			b.Addf("  - Highest Rating: %d (%s)", tactics.Highest.Rating, time.Unix(tactics.Highest.Date, 0).Format("2006-01-02"))
		}
		if tactics.Lowest != nil {
			b.Addf("  - Lowest Rating: %d (%s)", tactics.Lowest.Rating, time.Unix(tactics.Lowest.Date, 0).Format("2006-01-02"))
		}
	}

	if rush, present := stats["puzzle_rush"]; present && rush.Best != nil {
		b.Add("- Puzzle Rush:")
		b.Addf("  - Best Score: %d", rush.Best.Score)
	}
}

func (g *Generator) addClubs(ctx context.Context, b *report.Builder) {
	var clubData clubs
	if !g.fetch(ctx, b, "player/"+g.username+"/clubs", &clubData) {
		return
	}
	if len(clubData.Clubs) == 0 {
		return
	}

	addHeader(b, "2. Clubs", 2)
	for _, club := range clubData.Clubs {
		b.Addf("- %s", club.Name)
	}
}

// addRecentGames walks the monthly archives newest-first, collecting up to
// 100 rapid and 100 blitz games.
func (g *Generator) addRecentGames(ctx context.Context, b *report.Builder) {
	var archiveData archives
	if !g.fetch(ctx, b, "player/"+g.username+"/games/archives", &archiveData) {
		return
	}
	if len(archiveData.Archives) == 0 {
		return
	}

	addHeader(b, "3. Recent Games from Archives", 2)

	var rapid, blitz []Game
	for i := len(archiveData.Archives) - 1; i >= 0; i-- {
		if len(rapid) >= gamesPerTimeClass && len(blitz) >= gamesPerTimeClass {
			break
		}
		endpoint := strings.TrimPrefix(archiveData.Archives[i], g.client.baseURL+"/")
		var month monthGames
		if !g.fetch(ctx, b, endpoint, &month) {
			continue
		}
		for j := len(month.Games) - 1; j >= 0; j-- {
			game := month.Games[j]
			switch {
			case game.TimeClass == "rapid" && len(rapid) < gamesPerTimeClass:
				rapid = append(rapid, game)
			case game.TimeClass == "blitz" && len(blitz) < gamesPerTimeClass:
				blitz = append(blitz, game)
			}
		}
	}

	if len(rapid) > 0 {
		addHeader(b, "Last 100 Rapid Games (PGN)", 3)
		for _, game := range rapid {
			b.Add(formatGame(game))
		}
	}
	if len(blitz) > 0 {
		addHeader(b, "Last 100 Blitz Games (PGN)", 3)
		for _, game := range blitz {
			b.Add(formatGame(game))
		}
	}
}

// titleCase upper-cases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// formatGame renders a single game as its PGN wrapped in markers.
func formatGame(game Game) string {
	pgn := game.PGN
	if pgn == "" {
		pgn = "PGN not available"
	}
	return fmt.Sprintf("--- PGN ---\n%s\n--- End Game ---", pgn)
}

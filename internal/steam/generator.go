package steam

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strconv"

	"github.com/jaipkapoor99/the-automaton/internal/observability"
	"github.com/jaipkapoor99/the-automaton/internal/report"
)

// playerSummaries is the ISteamUser.GetPlayerSummaries response.
type playerSummaries struct {
	Response struct {
		Players []struct {
			PersonaName string `json:"personaname"`
		} `json:"players"`
	} `json:"response"`
}

// steamLevel is the IPlayerService.GetSteamLevel response.
type steamLevel struct {
	Response struct {
		PlayerLevel int `json:"player_level"`
	} `json:"response"`
}

// badges is the IPlayerService.GetBadges response.
type badges struct {
	Response struct {
		Badges   []struct{} `json:"badges"`
		PlayerXP int        `json:"player_xp"`
	} `json:"response"`
}

// badgeProgress is the IPlayerService.GetCommunityBadgeProgress response.
type badgeProgress struct {
	Response struct {
		Quests []struct {
			Completed bool `json:"completed"`
		} `json:"quests"`
	} `json:"response"`
}

// ownedGames is the IPlayerService.GetOwnedGames response.
type ownedGames struct {
	Response struct {
		GameCount int    `json:"game_count"`
		Games     []Game `json:"games"`
	} `json:"response"`
}

// Game is one owned-games entry.
type Game struct {
	AppID           int    `json:"appid"`
	Name            string `json:"name"`
	PlaytimeForever int    `json:"playtime_forever"` // minutes
}

// playerAchievements is the ISteamUserStats.GetPlayerAchievements response.
type playerAchievements struct {
	PlayerStats struct {
		Success      bool `json:"success"`
		Achievements []struct {
			Achieved int `json:"achieved"`
		} `json:"achievements"`
	} `json:"playerstats"`
}

// gameStats is the ISteamUserStats.GetUserStatsForGame response.
type gameStats struct {
	PlayerStats struct {
		Success bool `json:"success"`
		Stats   []struct {
			Name  string `json:"name"`
			Value int64  `json:"value"`
		} `json:"stats"`
	} `json:"playerstats"`
}

// Generator produces the Steam profile and library report.
type Generator struct {
	steamID    string
	apiKey     string
	outputPath string
	client     *Client
	printer    *observability.Printer
}

// NewGenerator creates a Steam stats generator.
func NewGenerator(steamID, apiKey, outputPath string, client *Client, printer *observability.Printer) *Generator {
	return &Generator{
		steamID:    steamID,
		apiKey:     apiKey,
		outputPath: outputPath,
		client:     client,
		printer:    printer,
	}
}

// Name returns the workflow name of this generator.
func (g *Generator) Name() string { return "steam-stats" }

// Generate fetches profile and library data and writes the report. One
// game's missing achievements or stats never aborts the rest of the library.
func (g *Generator) Generate(ctx context.Context) error {
	if g.apiKey == "" || g.steamID == "" {
		return errors.New("Steam API Key or Steam ID not set: set STEAM_API_KEY and STEAM_ID in your .env file")
	}
	g.printer.Progress("Generating Steam profile for Steam ID: %s...", g.steamID)

	b := report.New()
	b.Title("# Steam Profile Analysis")

	g.addProfileSummary(ctx, b)
	g.addGameLibrary(ctx, b)

	if err := b.WriteFile(g.outputPath); err != nil {
		return err
	}
	g.printer.Progress("Successfully generated Steam profile at %s", g.outputPath)
	return nil
}

func (g *Generator) addProfileSummary(ctx context.Context, b *report.Builder) {
	b.Section("Profile Summary")

	var summary playerSummaries
	params := url.Values{"steamids": {g.steamID}}
	ok, _ := g.client.Call(ctx, "ISteamUser", "GetPlayerSummaries", 2, params, &summary)
	if ok && len(summary.Response.Players) > 0 {
		b.Addf("- **Username:** %s", summary.Response.Players[0].PersonaName)
	} else {
		b.Add("- **Username:** Could not fetch.")
	}

	var level steamLevel
	if ok, _ := g.client.Call(ctx, "IPlayerService", "GetSteamLevel", 1, nil, &level); ok {
		b.Addf("- **Steam Level:** %d", level.Response.PlayerLevel)
	}

	var badgeData badges
	if ok, _ := g.client.Call(ctx, "IPlayerService", "GetBadges", 1, nil, &badgeData); ok {
		b.Addf("- **Total Badges:** %d", len(badgeData.Response.Badges))
		b.Addf("- **Total XP:** %d", badgeData.Response.PlayerXP)
	}

	var progress badgeProgress
	if ok, _ := g.client.Call(ctx, "IPlayerService", "GetCommunityBadgeProgress", 1, nil, &progress); ok && len(progress.Response.Quests) > 0 {
		completed := 0
		for _, q := range progress.Response.Quests {
			if q.Completed {
				completed++
			}
		}
		b.Addf("- **Community Quests Completed:** %d/%d", completed, len(progress.Response.Quests))
	}
}

func (g *Generator) addGameLibrary(ctx context.Context, b *report.Builder) {
	b.Section("Game Library & Per-Game Statistics")

	var owned ownedGames
	params := url.Values{
		"include_appinfo":           {"true"},
		"include_played_free_games": {"true"},
	}
	ok, _ := g.client.Call(ctx, "IPlayerService", "GetOwnedGames", 1, params, &owned)
	if !ok || len(owned.Response.Games) == 0 {
		b.Add("Could not retrieve game library. Profile may be private.")
		return
	}

	games := owned.Response.Games
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].PlaytimeForever > games[j].PlaytimeForever
	})

	total := owned.Response.GameCount
	if total == 0 {
		total = len(games)
	}
	b.Addf("**Total Games:** %d\n", total)

	for _, game := range games {
		b.Addf("### %s", game.Name)
		b.Addf("- **Playtime:** %.2f hours", float64(game.PlaytimeForever)/60)
		g.addAchievements(ctx, b, game.AppID)
		g.addGameStats(ctx, b, game.AppID)
		b.Add("")
	}
}

func (g *Generator) addAchievements(ctx context.Context, b *report.Builder, appID int) {
	var ach playerAchievements
	params := url.Values{"appid": {strconv.Itoa(appID)}}
	ok, _ := g.client.Call(ctx, "ISteamUserStats", "GetPlayerAchievements", 1, params, &ach)
	if !ok || !ach.PlayerStats.Success || len(ach.PlayerStats.Achievements) == 0 {
		b.Add("- **Achievements:** Game data could not be retrieved.")
		return
	}
	achieved := 0
	for _, a := range ach.PlayerStats.Achievements {
		if a.Achieved != 0 {
			achieved++
		}
	}
	b.Addf("- **Achievements:** %d / %d", achieved, len(ach.PlayerStats.Achievements))
}

func (g *Generator) addGameStats(ctx context.Context, b *report.Builder, appID int) {
	var stats gameStats
	params := url.Values{"appid": {strconv.Itoa(appID)}}
	ok, _ := g.client.Call(ctx, "ISteamUserStats", "GetUserStatsForGame", 2, params, &stats)
	if !ok || !stats.PlayerStats.Success || len(stats.PlayerStats.Stats) == 0 {
		return
	}
	b.Add("- **Game Stats:**")
	for _, stat := range stats.PlayerStats.Stats {
		b.Addf("  - %s: %d", stat.Name, stat.Value)
	}
}

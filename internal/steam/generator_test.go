package steam

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaipkapoor99/the-automaton/internal/observability"
)

func newTestClient(baseURL string) *Client {
	c := NewClient(baseURL, "apikey", "7656119")
	c.sleep = func(time.Duration) {}
	return c
}

func TestCallMergesBaseParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/IPlayerService/GetOwnedGames/v1/", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "apikey", q.Get("key"))
		assert.Equal(t, "7656119", q.Get("steamid"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "true", q.Get("include_appinfo"))
		_, _ = w.Write([]byte(`{"response":{}}`))
	}))
	defer srv.Close()

	var out map[string]any
	ok, err := newTestClient(srv.URL).Call(context.Background(), "IPlayerService", "GetOwnedGames", 1,
		url.Values{"include_appinfo": {"true"}}, &out)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCallPrivateProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	var out map[string]any
	ok, err := newTestClient(srv.URL).Call(context.Background(), "ISteamUserStats", "GetPlayerAchievements", 1, nil, &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCallMissingKey(t *testing.T) {
	c := NewClient("http://unused", "", "7656119")
	_, err := c.Call(context.Background(), "ISteamUser", "GetPlayerSummaries", 2, nil, nil)
	require.Error(t, err)
}

// fakeSteamAPI serves a two-game library where one game's achievements are
// private (403) and the other's are available.
func fakeSteamAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	respond := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, body)
		}
	}
	mux.HandleFunc("/ISteamUser/GetPlayerSummaries/v2/",
		respond(`{"response":{"players":[{"personaname":"Gamer"}]}}`))
	mux.HandleFunc("/IPlayerService/GetSteamLevel/v1/",
		respond(`{"response":{"player_level":42}}`))
	mux.HandleFunc("/IPlayerService/GetBadges/v1/",
		respond(`{"response":{"badges":[{},{},{}],"player_xp":1234}}`))
	mux.HandleFunc("/IPlayerService/GetCommunityBadgeProgress/v1/",
		respond(`{"response":{"quests":[{"completed":true},{"completed":false}]}}`))
	mux.HandleFunc("/IPlayerService/GetOwnedGames/v1/",
		respond(`{"response":{"game_count":2,"games":[
			{"appid":10,"name":"Short Game","playtime_forever":30},
			{"appid":20,"name":"Long Game","playtime_forever":600}]}}`))
	mux.HandleFunc("/ISteamUserStats/GetPlayerAchievements/v1/",
		func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("appid") == "10" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			_, _ = io.WriteString(w, `{"playerstats":{"success":true,
				"achievements":[{"achieved":1},{"achieved":0},{"achieved":1}]}}`)
		})
	mux.HandleFunc("/ISteamUserStats/GetUserStatsForGame/v2/",
		func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("appid") == "20" {
				_, _ = io.WriteString(w, `{"playerstats":{"success":true,
					"stats":[{"name":"total_kills","value":987}]}}`)
				return
			}
			w.WriteHeader(http.StatusForbidden)
		})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate(t *testing.T) {
	srv := fakeSteamAPI(t)
	out := filepath.Join(t.TempDir(), "steam_stats.txt")

	gen := NewGenerator("7656119", "apikey", out, newTestClient(srv.URL),
		observability.NewPrinter(io.Discard))
	require.NoError(t, gen.Generate(context.Background()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "## 1. Profile Summary")
	assert.Contains(t, content, "- **Username:** Gamer")
	assert.Contains(t, content, "- **Steam Level:** 42")
	assert.Contains(t, content, "- **Total Badges:** 3")
	assert.Contains(t, content, "- **Community Quests Completed:** 1/2")

	assert.Contains(t, content, "## 2. Game Library & Per-Game Statistics")
	assert.Contains(t, content, "**Total Games:** 2")

	// Library sorted by playtime descending.
	longIdx := strings.Index(content, "### Long Game")
	shortIdx := strings.Index(content, "### Short Game")
	require.Greater(t, longIdx, 0)
	require.Greater(t, shortIdx, 0)
	assert.Less(t, longIdx, shortIdx)

	// Partial-failure tolerance: advisory line for the private game, full
	// sections for the rest.
	assert.Contains(t, content, "- **Achievements:** 2 / 3")
	assert.Contains(t, content, "- **Achievements:** Game data could not be retrieved.")
	assert.Contains(t, content, "  - total_kills: 987")
	assert.Contains(t, content, "- **Playtime:** 10.00 hours")
}

func TestGenerateMissingConfig(t *testing.T) {
	gen := NewGenerator("", "", "out.txt", newTestClient("http://unused"),
		observability.NewPrinter(io.Discard))
	err := gen.Generate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STEAM_API_KEY")
}

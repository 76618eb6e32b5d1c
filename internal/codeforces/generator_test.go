package codeforces

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
	"github.com/jaipkapoor99/the-automaton/internal/report"
)

func newTestClient(baseURL, key, secret string) *Client {
	c := NewClient(baseURL, key, secret)
	c.sleep = func(time.Duration) {}
	return c
}

func TestCallAuthorizedSkippedWithoutKeys(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "", "")
	raw, err := c.Call(context.Background(), MethodFriends, nil, true)
	require.NoError(t, err)
	assert.Nil(t, raw)
	assert.False(t, called, "authorized call without keys must skip the network entirely")
}

func TestCallAuthorizedAddsSignedParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "key123", q.Get("apiKey"))
		assert.NotEmpty(t, q.Get("time"))
		assert.Len(t, q.Get("apiSig"), prefixLength+128)
		_, _ = w.Write([]byte(`{"status":"OK","result":["friend1","friend2"]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "key123", "secret456")
	raw, err := c.Call(context.Background(), MethodFriends, url.Values{"onlyOnline": {"false"}}, true)
	require.NoError(t, err)
	assert.JSONEq(t, `["friend1","friend2"]`, string(raw))
}

func TestCallFailedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"FAILED","comment":"handle: not found"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "", "")
	raw, err := c.Call(context.Background(), "user.info", nil, false)
	assert.Nil(t, raw)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "handle: not found", apiErr.Comment)
}

func TestAdvisorySilencesFriendsFailures(t *testing.T) {
	b := report.New()
	advisory(b, MethodFriends, &APIError{Method: MethodFriends, Comment: "denied"})
	assert.Zero(t, b.Len())

	advisory(b, "user.status", &APIError{Method: "user.status", Comment: "boom"})
	assert.Contains(t, b.String(), "API Error for user.status: boom")
}

const cfUserInfo = `{"status":"OK","result":[{"handle":"testuser","rating":1500,
"maxRating":1600,"rank":"specialist","maxRank":"expert","contribution":5,
"registrationTimeSeconds":1262304000}]}`

const cfStatus = `{"status":"OK","result":[
{"problem":{"contestId":100,"index":"A","name":"Sum","tags":["math"]},
 "verdict":"OK","programmingLanguage":"Go","creationTimeSeconds":200,
 "timeConsumedMillis":30,"memoryConsumedBytes":2048},
{"problem":{"contestId":100,"index":"A","name":"Sum","tags":["math"]},
 "verdict":"WRONG_ANSWER","programmingLanguage":"Go","creationTimeSeconds":100,
 "timeConsumedMillis":15,"memoryConsumedBytes":1024},
{"problem":{"contestId":50,"index":"B","name":"Graph","tags":["graphs","dfs"]},
 "verdict":"OK","programmingLanguage":"C++","creationTimeSeconds":300,
 "timeConsumedMillis":60,"memoryConsumedBytes":4096},
{"problem":{"index":"C","name":"Orphan","tags":[]},
 "verdict":"OK","programmingLanguage":"Go","creationTimeSeconds":400,
 "timeConsumedMillis":10,"memoryConsumedBytes":512}
]}`

func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	respond := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, body)
		}
	}
	mux.HandleFunc("/user.info", respond(cfUserInfo))
	mux.HandleFunc("/user.ratedList", respond(`{"status":"OK","result":[{"handle":"other"},{"handle":"testuser"}]}`))
	mux.HandleFunc("/user.status", respond(cfStatus))
	mux.HandleFunc("/user.rating", respond(`{"status":"OK","result":[
		{"contestId":1,"contestName":"Round 1","rank":10,"oldRating":1400,"newRating":1500,"ratingUpdateTimeSeconds":1000}]}`))
	mux.HandleFunc("/contest.hacks", respond(`{"status":"OK","result":[]}`))
	mux.HandleFunc("/user.friends", respond(`{"status":"FAILED","comment":"authorization required"}`))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate(t *testing.T) {
	srv := newFakeAPI(t)
	out := filepath.Join(t.TempDir(), "Shared", "codeforces_profile.txt")

	gen := NewGenerator("testuser", out,
		newTestClient(srv.URL, "key", "secret"),
		observability.NewPrinter(io.Discard))
	require.NoError(t, gen.Generate(context.Background()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	content := string(data)

	// Section numbering and summary facts.
	assert.Contains(t, content, "## 1. User Summary")
	assert.Contains(t, content, "- **Handle:** testuser")
	assert.Contains(t, content, "- **Global Rank (Active):** 2 / 2")

	// Frequency sections render most-common first.
	assert.Contains(t, content, "## 2. Submissions Analysis (All Time)")
	okIdx := strings.Index(content, "- **OK:** 3")
	waIdx := strings.Index(content, "- **WRONG_ANSWER:** 1")
	require.Greater(t, okIdx, 0)
	require.Greater(t, waIdx, 0)
	assert.Less(t, okIdx, waIdx)

	assert.Contains(t, content, "## 3. Recent Contest Performance")
	assert.Contains(t, content, "- **Rating Change:** +100")

	// Friends failed with authorization error: advisory fallback, no error line.
	assert.Contains(t, content, "## 4. Friends")
	assert.Contains(t, content, "Could not retrieve friends list.")
	assert.NotContains(t, content, "API Error for user.friends")

	// Grouped history: contest 50 before contest 100, orphan problem last.
	historyIdx := strings.Index(content, "## 5. Problem Submission History")
	require.Greater(t, historyIdx, 0)
	graphIdx := strings.Index(content, "### Graph")
	sumIdx := strings.Index(content, "### Sum")
	orphanIdx := strings.Index(content, "### Orphan")
	require.Greater(t, graphIdx, historyIdx)
	assert.Less(t, graphIdx, sumIdx)
	assert.Less(t, sumIdx, orphanIdx)

	// Within a group, submissions sort by creation time ascending.
	groupBody := content[sumIdx:orphanIdx]
	waPos := strings.Index(groupBody, "**Verdict:** WRONG_ANSWER")
	okPos := strings.Index(groupBody, "**Verdict:** OK")
	require.Greater(t, waPos, 0)
	require.Greater(t, okPos, 0)
	assert.Less(t, waPos, okPos)
}

func TestGenerateMissingHandle(t *testing.T) {
	gen := NewGenerator("", "out.txt", newTestClient("http://unused", "", ""),
		observability.NewPrinter(io.Discard))
	err := gen.Generate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CODEFORCES_ID")
}

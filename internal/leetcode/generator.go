// Package leetcode generates the LeetCode profile report from the site's
// GraphQL API.
package leetcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jaipkapoor99/the-automaton/internal/fetch"
	"github.com/jaipkapoor99/the-automaton/internal/observability"
	"github.com/jaipkapoor99/the-automaton/internal/report"
)

// rateLimitSleep is the fixed pause after the GraphQL call.
const rateLimitSleep = time.Second

const profileQuery = `
query getUserProfile($username: String!) {
  allQuestionsCount { difficulty count }
  matchedUser(username: $username) {
    username
    contributions { points }
    profile { realName ranking }
    submissionCalendar
    submitStats: submitStatsGlobal {
      acSubmissionNum { difficulty count submissions }
    }
  }
}
`

// graphqlRequest is the POST body shape.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// profileData mirrors the subset of the response the report uses.
type profileData struct {
	Data struct {
		MatchedUser *struct {
			Username      string `json:"username"`
			Contributions struct {
				Points int `json:"points"`
			} `json:"contributions"`
			Profile struct {
				RealName string `json:"realName"`
				Ranking  int    `json:"ranking"`
			} `json:"profile"`
			SubmissionCalendar string `json:"submissionCalendar"`
			SubmitStats        struct {
				ACSubmissionNum []struct {
					Difficulty  string `json:"difficulty"`
					Count       int    `json:"count"`
					Submissions int    `json:"submissions"`
				} `json:"acSubmissionNum"`
			} `json:"submitStats"`
		} `json:"matchedUser"`
	} `json:"data"`
}

// Generator produces the LeetCode profile report.
type Generator struct {
	username   string
	endpoint   string
	outputPath string
	printer    *observability.Printer
	sleep      func(time.Duration)
}

// NewGenerator creates a LeetCode profile generator.
func NewGenerator(username, endpoint, outputPath string, printer *observability.Printer) *Generator {
	return &Generator{
		username:   username,
		endpoint:   endpoint,
		outputPath: outputPath,
		printer:    printer,
		sleep:      time.Sleep,
	}
}

// Name returns the workflow name of this generator.
func (g *Generator) Name() string { return "leetcode" }

// Generate fetches the profile and writes the report. A failed fetch leaves
// an advisory line in the report; the generator still succeeds if the report
// file is written.
func (g *Generator) Generate(ctx context.Context) error {
	if g.username == "" {
		return errors.New("LeetCode username not set: set LEETCODE_ID in your .env file")
	}
	g.printer.Progress("Generating exhaustive LeetCode profile for %s...", g.username)

	b := report.New()
	b.Title(fmt.Sprintf("# Exhaustive LeetCode Profile: %s", g.username))

	var resp profileData
	body := graphqlRequest{
		Query:     profileQuery,
		Variables: map[string]any{"username": g.username},
	}
	err := fetch.PostJSON(ctx, g.endpoint, body, nil, &resp)
	g.sleep(rateLimitSleep)
	if err != nil {
		b.Addf("An error occurred fetching data: %v", err)
	}

	if user := resp.Data.MatchedUser; user != nil {
		b.Section("User Summary")
		b.Addf("- **Username:** %s", user.Username)
		b.Addf("- **Real Name:** %s", user.Profile.RealName)
		b.Addf("- **Global Ranking:** %d", user.Profile.Ranking)
		b.Addf("- **Contribution Points:** %d", user.Contributions.Points)

		b.Section("Problem Stats")
		totalSolved := 0
		for _, s := range user.SubmitStats.ACSubmissionNum {
			totalSolved += s.Count
		}
		b.Addf("**Total Solved:** %d\n", totalSolved)
		for _, s := range user.SubmitStats.ACSubmissionNum {
			b.Addf("- **%s:** %d solved / %d submissions", s.Difficulty, s.Count, s.Submissions)
		}

		b.Section("Submission Calendar")
		if days, ok := activeDays(user.SubmissionCalendar); ok {
			b.Addf("- **Total Active Days:** %d", days)
		} else {
			b.Add("- Calendar data not available.")
		}
	}

	if err := b.WriteFile(g.outputPath); err != nil {
		return err
	}
	g.printer.Progress("Successfully generated exhaustive LeetCode profile at %s", g.outputPath)
	return nil
}

// activeDays counts days with at least one submission in the calendar, a
// JSON object mapping unix-day strings to submission counts. The second
// return reports whether the calendar parsed at all.
func activeDays(calendar string) (int, bool) {
	var days map[string]int
	if err := json.Unmarshal([]byte(calendar), &days); err != nil {
		return 0, false
	}
	active := 0
	for _, count := range days {
		if count > 0 {
			active++
		}
	}
	return active, true
}

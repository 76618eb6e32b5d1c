package codeforces

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jaipkapoor99/the-automaton/internal/observability"
	"github.com/jaipkapoor99/the-automaton/internal/report"
)

// topTagCount caps the problem-tag frequency section.
const topTagCount = 15

// recentContestCount caps the contest performance section.
const recentContestCount = 5

// User is the relevant subset of a user.info entry.
type User struct {
	Handle                  string `json:"handle"`
	Rating                  int    `json:"rating"`
	MaxRating               int    `json:"maxRating"`
	Rank                    string `json:"rank"`
	MaxRank                 string `json:"maxRank"`
	Contribution            int    `json:"contribution"`
	RegistrationTimeSeconds int64  `json:"registrationTimeSeconds"`
}

// Problem identifies a problem within a contest.
type Problem struct {
	ContestID int      `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Tags      []string `json:"tags"`
}

// Submission is one user.status entry.
type Submission struct {
	Problem             Problem `json:"problem"`
	Verdict             string  `json:"verdict"`
	ProgrammingLanguage string  `json:"programmingLanguage"`
	CreationTimeSeconds int64   `json:"creationTimeSeconds"`
	TimeConsumedMillis  int     `json:"timeConsumedMillis"`
	MemoryConsumedBytes int64   `json:"memoryConsumedBytes"`
}

// RatingChange is one user.rating entry.
type RatingChange struct {
	ContestID               int    `json:"contestId"`
	ContestName             string `json:"contestName"`
	Rank                    int    `json:"rank"`
	OldRating               int    `json:"oldRating"`
	NewRating               int    `json:"newRating"`
	RatingUpdateTimeSeconds int64  `json:"ratingUpdateTimeSeconds"`
}

// Hack is one contest.hacks entry.
type Hack struct {
	Hacker struct {
		Members []struct {
			Handle string `json:"handle"`
		} `json:"members"`
	} `json:"hacker"`
	Problem Problem `json:"problem"`
	Verdict string  `json:"verdict"`
}

// Generator produces the Codeforces profile report.
type Generator struct {
	handle     string
	outputPath string
	client     *Client
	printer    *observability.Printer
}

// NewGenerator creates a Codeforces profile generator.
func NewGenerator(handle, outputPath string, client *Client, printer *observability.Printer) *Generator {
	return &Generator{
		handle:     handle,
		outputPath: outputPath,
		client:     client,
		printer:    printer,
	}
}

// Name returns the workflow name of this generator.
func (g *Generator) Name() string { return "codeforces" }

// advisory appends a one-line diagnostic for a failed fetch, except for the
// friends method which is expected to fail without authorization.
func advisory(b *report.Builder, method string, err error) {
	if err == nil || method == MethodFriends {
		return
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		b.Add(apiErr.Error())
		return
	}
	b.Addf("An error occurred fetching data from %s: %v", method, err)
}

// Generate fetches all profile data and writes the report. A single failed
// fetch never aborts the report; only a missing handle or a failed final
// write does.
func (g *Generator) Generate(ctx context.Context) error {
	if g.handle == "" {
		return errors.New("Codeforces handle not set: set CODEFORCES_ID in your .env file")
	}
	g.printer.Progress("Generating exhaustive Codeforces profile for %s...", g.handle)

	b := report.New()
	b.Title(fmt.Sprintf("# Exhaustive Codeforces Profile: %s", g.handle))

	g.addUserSummary(ctx, b)
	allSubmissions := g.addSubmissionsAnalysis(ctx, b)
	g.addContestPerformance(ctx, b)
	g.addFriends(ctx, b)
	g.addSubmissionHistory(b, allSubmissions)

	if err := b.WriteFile(g.outputPath); err != nil {
		return err
	}
	g.printer.Progress("Successfully generated exhaustive Codeforces profile at %s", g.outputPath)
	return nil
}

func (g *Generator) addUserSummary(ctx context.Context, b *report.Builder) {
	var users []User
	ok, err := call(ctx, g.client, "user.info", url.Values{"handles": {g.handle}}, false, &users)
	advisory(b, "user.info", err)
	if !ok || len(users) == 0 {
		return
	}
	user := users[0]

	b.Section("User Summary")
	b.Addf("- **Handle:** %s", user.Handle)
	b.Addf("- **Rating:** %d (%s)", user.Rating, user.Rank)
	b.Addf("- **Max Rating:** %d (%s)", user.MaxRating, user.MaxRank)
	b.Addf("- **Contribution:** %d", user.Contribution)
	b.Addf("- **Registered:** %s", time.Unix(user.RegistrationTimeSeconds, 0).Format("2006-01-02"))

	var ratedList []User
	ok, err = call(ctx, g.client, "user.ratedList", url.Values{"activeOnly": {"true"}}, false, &ratedList)
	advisory(b, "user.ratedList", err)
	if !ok {
		return
	}
	for i, u := range ratedList {
		if u.Handle == g.handle {
			b.Addf("- **Global Rank (Active):** %d / %d", i+1, len(ratedList))
			break
		}
	}
}

// addSubmissionsAnalysis returns the fetched submissions so the submission
// history section can reuse them without a duplicate call.
func (g *Generator) addSubmissionsAnalysis(ctx context.Context, b *report.Builder) []Submission {
	var submissions []Submission
	ok, err := call(ctx, g.client, "user.status", url.Values{"handle": {g.handle}}, false, &submissions)
	advisory(b, "user.status", err)
	if !ok || len(submissions) == 0 {
		return nil
	}

	b.Section("Submissions Analysis (All Time)")

	verdicts := report.NewCounter()
	languages := report.NewCounter()
	tags := report.NewCounter()
	for _, s := range submissions {
		verdicts.Add(s.Verdict)
		languages.Add(s.ProgrammingLanguage)
		for _, tag := range s.Problem.Tags {
			tags.Add(tag)
		}
	}

	b.Add("### Verdicts:")
	for _, e := range verdicts.MostCommon(0) {
		b.Addf("- **%s:** %d", e.Key, e.Count)
	}

	b.Add("\n### Languages:")
	for _, e := range languages.MostCommon(0) {
		b.Addf("- **%s:** %d", e.Key, e.Count)
	}

	b.Add("\n### Problem Tags (Top 15 Overall):")
	for _, e := range tags.MostCommon(topTagCount) {
		b.Addf("- **%s:** %d", e.Key, e.Count)
	}

	return submissions
}

func (g *Generator) addContestPerformance(ctx context.Context, b *report.Builder) {
	var history []RatingChange
	ok, err := call(ctx, g.client, "user.rating", url.Values{"handle": {g.handle}}, false, &history)
	advisory(b, "user.rating", err)
	if !ok || len(history) == 0 {
		return
	}

	b.Section("Recent Contest Performance")
	sort.Slice(history, func(i, j int) bool {
		return history[i].RatingUpdateTimeSeconds > history[j].RatingUpdateTimeSeconds
	})
	if len(history) > recentContestCount {
		history = history[:recentContestCount]
	}

	for _, contest := range history {
		b.Addf("- **Contest:** %s (ID: %d)", contest.ContestName, contest.ContestID)
		b.Addf("  - **Rank:** %d", contest.Rank)
		b.Addf("  - **Rating Change:** %+d", contest.NewRating-contest.OldRating)
		b.Addf("  - **New Rating:** %d", contest.NewRating)

		var hacks []Hack
		params := url.Values{"contestId": {strconv.Itoa(contest.ContestID)}}
		ok, err := call(ctx, g.client, "contest.hacks", params, false, &hacks)
		advisory(b, "contest.hacks", err)
		if !ok {
			continue
		}
		var userHacks []Hack
		for _, h := range hacks {
			if len(h.Hacker.Members) > 0 && h.Hacker.Members[0].Handle == g.handle {
				userHacks = append(userHacks, h)
			}
		}
		if len(userHacks) > 0 {
			b.Add("  - **Hacks:**")
			for _, h := range userHacks {
				b.Addf("    - **Problem:** %s | **Verdict:** %s", h.Problem.Index, h.Verdict)
			}
		}
	}
}

func (g *Generator) addFriends(ctx context.Context, b *report.Builder) {
	b.Section("Friends")
	var friends []string
	ok, _ := call(ctx, g.client, MethodFriends, url.Values{"onlyOnline": {"false"}}, true, &friends)
	if ok && len(friends) > 0 {
		b.Add("- " + strings.Join(friends, ", "))
		return
	}
	b.Add("- Could not retrieve friends list. This method requires authorization, or the API keys are missing/invalid.")
}

// problemGroup collects all submissions for one contest problem.
type problemGroup struct {
	contestID   int
	index       string
	name        string
	tags        []string
	submissions []Submission
}

func (g *Generator) addSubmissionHistory(b *report.Builder, submissions []Submission) {
	if len(submissions) == 0 {
		return
	}

	groups := map[string]*problemGroup{}
	var order []string
	for _, s := range submissions {
		key := fmt.Sprintf("%d-%s", s.Problem.ContestID, s.Problem.Index)
		grp, seen := groups[key]
		if !seen {
			grp = &problemGroup{
				contestID: s.Problem.ContestID,
				index:     s.Problem.Index,
				name:      s.Problem.Name,
				tags:      s.Problem.Tags,
			}
			groups[key] = grp
			order = append(order, key)
		}
		grp.submissions = append(grp.submissions, s)
	}

	b.Section("Problem Submission History")

	// Groups sort by numeric contest ID ascending; submissions without a
	// contest ID sort last. Ties break on the problem index as a string.
	sorted := make([]*problemGroup, 0, len(order))
	for _, key := range order {
		sorted = append(sorted, groups[key])
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, c := sortContestID(sorted[i].contestID), sortContestID(sorted[j].contestID)
		if a != c {
			return a < c
		}
		return sorted[i].index < sorted[j].index
	})

	for _, grp := range sorted {
		b.Addf("### %s (Tags: %s)", grp.name, strings.Join(grp.tags, ", "))

		subs := append([]Submission(nil), grp.submissions...)
		sort.SliceStable(subs, func(i, j int) bool {
			return subs[i].CreationTimeSeconds < subs[j].CreationTimeSeconds
		})
		for _, sub := range subs {
			b.Addf("- **Submission Time:** %s", time.Unix(sub.CreationTimeSeconds, 0).Format("2006-01-02 15:04:05"))
			b.Addf("  - **Verdict:** %s", sub.Verdict)
			b.Addf("  - **Language:** %s", sub.ProgrammingLanguage)
			b.Addf("  - **Time:** %d ms", sub.TimeConsumedMillis)
			b.Addf("  - **Memory:** %.2f KB", float64(sub.MemoryConsumedBytes)/1024)
		}
		b.Add("")
	}
}

// sortContestID maps an absent contest ID (zero) past every real one.
func sortContestID(id int) int {
	if id == 0 {
		return math.MaxInt
	}
	return id
}

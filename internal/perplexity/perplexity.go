// Package perplexity runs a one-shot research query against the Perplexity
// chat-completions API. The query comes from an input file; the answer and
// its citations are written to an output file, including on failure so the
// output always reflects the last run.
package perplexity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jaipkapoor99/the-automaton/internal/fetch"
	"github.com/jaipkapoor99/the-automaton/internal/fileops"
	"github.com/jaipkapoor99/the-automaton/internal/observability"
)

// requestTimeout allows for long research completions.
const requestTimeout = 300 * time.Second

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Citations []citation `json:"citations"`
}

// citation is either a bare URL string or an object carrying a title and URL,
// depending on API version.
type citation struct {
	Title string
	URL   string
}

func (c *citation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.URL = s
		return nil
	}
	var obj struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	c.Title = obj.Title
	c.URL = obj.URL
	return nil
}

// Client runs Perplexity queries.
type Client struct {
	endpoint     string
	apiKey       string
	model        string
	systemPrompt string
	inputFile    string
	outputFile   string
	printer      *observability.Printer
	opts         *fetch.Options
}

// NewClient creates a Perplexity client. inputFile and outputFile are
// absolute paths.
func NewClient(endpoint, apiKey, model, systemPrompt, inputFile, outputFile string, printer *observability.Printer) *Client {
	opts := fetch.DefaultOptions()
	opts.Timeout = requestTimeout
	opts.Headers = map[string]string{
		"Authorization": "Bearer " + apiKey,
		"Accept":        "application/json",
	}
	return &Client{
		endpoint:     endpoint,
		apiKey:       apiKey,
		model:        model,
		systemPrompt: systemPrompt,
		inputFile:    inputFile,
		outputFile:   outputFile,
		printer:      printer,
		opts:         opts,
	}
}

// Run reads the query file, sends it to the API, and writes the answer with
// citations to the output file. Failures are also written to the output file
// before being returned.
func (c *Client) Run(ctx context.Context) error {
	c.printer.Progress("Starting Perplexity query...")

	if c.apiKey == "" {
		return c.fail("PERPLEXITY_API_KEY not found in environment. Please add it to your .env file.")
	}

	query, err := c.readQuery()
	if err != nil {
		return c.fail(fmt.Sprintf("failed to read query: %v", err))
	}
	if query == "" {
		return c.fail("Input file is empty. Please provide a query.")
	}
	c.printer.Progress("Query: %s", query)

	payload := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: query},
		},
	}

	c.printer.Progress("Sending request to Perplexity API...")
	var resp chatResponse
	if err := fetch.PostJSON(ctx, c.endpoint, payload, c.opts, &resp); err != nil {
		return c.fail(fmt.Sprintf("An error occurred: %v", err))
	}
	if len(resp.Choices) == 0 {
		return c.fail("Error: Could not extract a valid response from the API.")
	}

	if err := c.writeResponse(resp.Choices[0].Message.Content, resp.Citations); err != nil {
		return err
	}
	c.printer.Progress("Request successful.")
	return nil
}

func (c *Client) readQuery() (string, error) {
	if err := fileops.EnsureFile(c.inputFile); err != nil {
		return "", err
	}
	data, err := os.ReadFile(c.inputFile)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// fail writes the diagnostic to the output file and returns it as an error.
func (c *Client) fail(diagnostic string) error {
	c.printer.Progress("ERROR: %s", diagnostic)
	if err := c.writeResponse(diagnostic, nil); err != nil {
		c.printer.Progress("ERROR: %v", err)
	}
	return errors.New(diagnostic)
}

func (c *Client) writeResponse(content string, citations []citation) error {
	if err := fileops.EnsureFile(c.outputFile); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(content)
	if len(citations) > 0 {
		b.WriteString("\n\n" + strings.Repeat("=", 40) + "\n")
		b.WriteString("## Citations\n\n")
		for i, cit := range citations {
			if cit.Title != "" {
				fmt.Fprintf(&b, "%d. **%s**: [%s](%s)\n", i+1, cit.Title, cit.URL, cit.URL)
			} else {
				fmt.Fprintf(&b, "%d. %s\n", i+1, cit.URL)
			}
		}
	}

	if err := os.WriteFile(c.outputFile, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write response file %s: %w", c.outputFile, err)
	}
	return nil
}

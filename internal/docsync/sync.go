// Package docsync makes a Google Doc's body exactly equal to a given text.
//
// The Docs API has no full-document PUT; replacement is a delete-range plus
// an insert, executed as one batch. Transient failures are retried with
// exponential backoff.
package docsync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/jaipkapoor99/the-automaton/internal/observability"
)

// emptyDocEndIndex is the end index of a document containing only its final
// terminating newline. Anything above it means deletable content exists.
const emptyDocEndIndex = 2

// DefaultMaxAttempts caps retries of one sync call.
const DefaultMaxAttempts = 5

// DefaultInitialDelay seeds the exponential backoff.
const DefaultInitialDelay = time.Second

// transientStatuses are the HTTP statuses retried with backoff. 403 is
// included deliberately: Docs per-minute quota exhaustion surfaces as 403
// rateLimitExceeded.
var transientStatuses = map[int]bool{
	http.StatusForbidden:           true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusServiceUnavailable:  true,
}

// NewService builds a Docs API service from an authenticated HTTP client.
func NewService(ctx context.Context, client *http.Client) (*docs.Service, error) {
	svc, err := docs.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create docs service: %w", err)
	}
	return svc, nil
}

// Engine replaces whole-document content with retry on transient failure.
type Engine struct {
	svc          *docs.Service
	initialDelay time.Duration
	maxAttempts  int
	printer      *observability.Printer
	sleep        func(time.Duration)
}

// NewEngine creates a sync engine. initialDelay and maxAttempts fall back to
// the defaults when zero.
func NewEngine(svc *docs.Service, initialDelay time.Duration, maxAttempts int, printer *observability.Printer) *Engine {
	if initialDelay <= 0 {
		initialDelay = DefaultInitialDelay
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Engine{
		svc:          svc,
		initialDelay: initialDelay,
		maxAttempts:  maxAttempts,
		printer:      printer,
		sleep:        time.Sleep,
	}
}

// Sync makes the document's body exactly equal to content. On success the
// document holds content with no residual trailing text; syncing the same
// content twice is semantically idempotent.
func (e *Engine) Sync(ctx context.Context, docID, content string) error {
	if docID == "" {
		return errors.New("document ID is empty")
	}

	var lastErr error
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		lastErr = e.syncOnce(ctx, docID, content)
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) || attempt == e.maxAttempts-1 {
			return lastErr
		}
		delay := e.initialDelay * (1 << attempt)
		e.printer.Progress("Transient error syncing document %s (attempt %d/%d), retrying in %s: %v",
			docID, attempt+1, e.maxAttempts, delay, lastErr)
		e.sleep(delay)
	}
	return lastErr
}

// syncOnce performs one fetch-delete-insert cycle.
func (e *Engine) syncOnce(ctx context.Context, docID, content string) error {
	doc, err := e.svc.Documents.Get(docID).Fields("body(content)").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to fetch document %s: %w", docID, err)
	}

	var requests []*docs.Request

	// The document's end offset is the last structural element's end index.
	// The final newline of a document can never be deleted, so the delete
	// range stops one short of it; going further fails the API call.
	if doc.Body != nil && len(doc.Body.Content) > 0 {
		endIndex := doc.Body.Content[len(doc.Body.Content)-1].EndIndex
		if endIndex > emptyDocEndIndex {
			requests = append(requests, &docs.Request{
				DeleteContentRange: &docs.DeleteContentRangeRequest{
					Range: &docs.Range{
						StartIndex: 1,
						EndIndex:   endIndex - 1,
					},
				},
			})
		}
	}

	if content != "" {
		requests = append(requests, &docs.Request{
			InsertText: &docs.InsertTextRequest{
				Location: &docs.Location{Index: 1},
				Text:     content,
			},
		})
	}

	// Empty new content against an already-empty document needs no calls
	// and still succeeds.
	if len(requests) == 0 {
		return nil
	}

	_, err = e.svc.Documents.BatchUpdate(docID, &docs.BatchUpdateDocumentRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update document %s: %w", docID, err)
	}
	return nil
}

func isTransient(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return transientStatuses[apiErr.Code]
	}
	return false
}

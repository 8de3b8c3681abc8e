// Package reconcile applies shelf membership to a catalog tag: per book it
// decides whether to tag, untag, skip, or report no match, and issues at
// most one mutation per book.
package reconcile

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lepinkainen/shelfsync/internal/batch"
	shelfsyncerrors "github.com/lepinkainen/shelfsync/internal/errors"
	"github.com/lepinkainen/shelfsync/internal/goodreads"
	"github.com/lepinkainen/shelfsync/internal/libby"
)

const searchConcurrency = 25

// Action selects the direction of a run.
type Action int

const (
	// ActionAdd tags matched books not yet under the tag.
	ActionAdd Action = iota
	// ActionRemove untags matched books currently under the tag.
	ActionRemove
)

func (a Action) String() string {
	if a == ActionRemove {
		return "remove"
	}
	return "add"
}

// CatalogClient is the slice of the catalog client a run needs. The real
// implementation is libby.Client.
type CatalogClient interface {
	Search(ctx context.Context, opts libby.SearchOptions, title string, authors []string) (libby.CatalogMatch, error)
	Tag(ctx context.Context, titleID string) error
	Untag(ctx context.Context, titleID string) error
}

// Result is the decision for one book. Results come back in the same order
// the books went in.
type Result struct {
	Book    goodreads.Book
	Match   *libby.CatalogMatch
	Outcome Outcome

	// Err is set when the search failed for a reason other than the book
	// simply not being in the catalog.
	Err error
}

// Reconciler runs the tag state machine over a set of books.
type Reconciler struct {
	Client  CatalogClient
	Options libby.SearchOptions
	State   *TagState
	Action  Action
	DryRun  bool
}

type searchJob struct {
	idx  int
	book goodreads.Book
}

// Run reconciles books against the tag state. A failed tag or untag call
// aborts the run immediately: the returned error carries the failing title
// id, results reflect everything decided up to that point, and books after
// the failure stay pending.
func (r *Reconciler) Run(ctx context.Context, books []goodreads.Book) ([]Result, error) {
	results := make([]Result, len(books))
	for i, book := range books {
		results[i].Book = book
	}

	// The title pre-check keeps already-tagged books away from the search
	// entirely. Only additions can skip this way: a removal needs the
	// search result to know which id to untag.
	var jobs []searchJob
	for i, book := range books {
		if r.Action == ActionAdd && r.State.HasTitle(book.Title) {
			results[i].Outcome = OutcomeAlreadyTaggedByTitle
			continue
		}
		jobs = append(jobs, searchJob{idx: i, book: book})
	}

	searched := batch.Map(ctx, searchConcurrency, jobs, func(ctx context.Context, job searchJob) (libby.CatalogMatch, error) {
		return r.Client.Search(ctx, r.Options, job.book.Title, job.book.Authors)
	})

	matches := make([]*libby.CatalogMatch, len(books))
	for _, res := range searched {
		if res.Err != nil {
			results[res.Item.idx].Outcome = OutcomeNotFound
			if !errors.Is(res.Err, libby.ErrNotFound) {
				results[res.Item.idx].Err = res.Err
			}
			slog.Debug("No catalog match", "title", res.Item.book.Title, "error", res.Err)
			continue
		}
		match := res.Value
		matches[res.Item.idx] = &match
	}

	// Mutations run single-threaded, in input order, at most one per book.
	for i := range results {
		match := matches[i]
		if match == nil {
			continue
		}
		results[i].Match = match

		switch r.Action {
		case ActionAdd:
			if r.State.HasID(match.ID) {
				results[i].Outcome = OutcomeAlreadyTaggedByID
				continue
			}
			slog.Info("Tagging", "title", match.Title, "id", match.ID, "dry_run", r.DryRun)
			if !r.DryRun {
				if err := r.Client.Tag(ctx, match.ID); err != nil {
					return results, shelfsyncerrors.NewMutationError("tag", match.ID, err)
				}
			}
			results[i].Outcome = OutcomeTagged
			r.State.addID(match.ID)

		case ActionRemove:
			if !r.State.HasID(match.ID) {
				results[i].Outcome = OutcomeSkippedNotTagged
				continue
			}
			slog.Info("Untagging", "title", match.Title, "id", match.ID, "dry_run", r.DryRun)
			if !r.DryRun {
				if err := r.Client.Untag(ctx, match.ID); err != nil {
					return results, shelfsyncerrors.NewMutationError("untag", match.ID, err)
				}
			}
			results[i].Outcome = OutcomeUntagged
			r.State.removeID(match.ID)
		}
	}

	return results, nil
}

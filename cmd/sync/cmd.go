// Package sync reconciles a Goodreads shelf against a catalog tag: every
// book on the shelf that matches a catalog title is tagged (or untagged
// with --remove), skipping books the tag already covers.
package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/lepinkainen/shelfsync/internal/cmdutil"
	"github.com/lepinkainen/shelfsync/internal/config"
	"github.com/lepinkainen/shelfsync/internal/goodreads"
	"github.com/lepinkainen/shelfsync/internal/libby"
	"github.com/lepinkainen/shelfsync/internal/reconcile"
)

// catalogClient is the slice of the catalog client a sync run needs.
type catalogClient interface {
	TagByName(ctx context.Context, name string) (*libby.TagInfo, error)
	TaggedTitles(ctx context.Context, tag libby.TagInfo) ([]libby.TaggedTitle, error)
	Search(ctx context.Context, opts libby.SearchOptions, title string, authors []string) (*libby.CatalogMatch, error)
	Tag(ctx context.Context, tag libby.TagInfo, titleID string) error
	Untag(ctx context.Context, tag libby.TagInfo, titleID string) error
}

var newClient = func(ctx context.Context) (catalogClient, error) {
	return libby.NewClient(ctx, config.CredentialsFile)
}

// Params carries the sync command's settings after flag/config resolution.
type Params struct {
	CSVPath      string
	Shelf        string
	TagName      string
	Remove       bool
	DryRun       bool
	IntersectCSV string
	Media        string
	Deep         bool
}

// SyncWithParams runs one reconciliation pass. The run aborts on the first
// failed tag mutation; everything decided before the failure stands.
func SyncWithParams(params Params) error {
	ctx := context.Background()

	mediaType, err := libby.ParseMediaType(params.Media)
	if err != nil {
		return err
	}

	shelf, err := cmdutil.ResolveShelf(params.Shelf, params.CSVPath)
	if err != nil {
		return err
	}

	books, err := goodreads.LoadShelf(params.CSVPath, shelf)
	if err != nil {
		return fmt.Errorf("failed to load shelf %q: %w", shelf, err)
	}
	slog.Info("Loaded shelf", "shelf", shelf, "books", len(books))

	if params.IntersectCSV != "" {
		other, err := goodreads.LoadShelf(params.IntersectCSV, shelf)
		if err != nil {
			return fmt.Errorf("failed to load intersect export: %w", err)
		}
		books = goodreads.IntersectByTitle(books, other)
		slog.Info("Applied intersect filter", "books", len(books))
	}

	client, err := newClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create catalog client: %w", err)
	}

	tag, err := client.TagByName(ctx, params.TagName)
	if err != nil {
		return fmt.Errorf("failed to resolve tag %q: %w", params.TagName, err)
	}

	tagged, err := client.TaggedTitles(ctx, *tag)
	if err != nil {
		return fmt.Errorf("failed to list tagged titles: %w", err)
	}
	slog.Info("Found existing taggings", "tag", tag.Name, "titles", len(tagged))

	action := reconcile.ActionAdd
	if params.Remove {
		action = reconcile.ActionRemove
	}

	runner := &reconcile.Reconciler{
		Client:  taggingClient{client: client, tag: *tag},
		Options: libby.SearchOptions{MediaType: mediaType, DeepSearch: params.Deep},
		State:   reconcile.NewTagState(tagged),
		Action:  action,
		DryRun:  params.DryRun,
	}

	results, runErr := runner.Run(ctx, books)

	// The summary covers everything decided before a mutation failure too
	fmt.Println(renderSummary(results))

	return runErr
}

// taggingClient narrows the client to one tag, so the reconciler never has
// to know which tag a run mutates.
type taggingClient struct {
	client catalogClient
	tag    libby.TagInfo
}

func (c taggingClient) Search(ctx context.Context, opts libby.SearchOptions, title string, authors []string) (libby.CatalogMatch, error) {
	match, err := c.client.Search(ctx, opts, title, authors)
	if err != nil {
		return libby.CatalogMatch{}, err
	}
	return *match, nil
}

func (c taggingClient) Tag(ctx context.Context, titleID string) error {
	return c.client.Tag(ctx, c.tag, titleID)
}

func (c taggingClient) Untag(ctx context.Context, titleID string) error {
	return c.client.Untag(ctx, c.tag, titleID)
}

// summaryOrder fixes the row order of the outcome table.
var summaryOrder = []reconcile.Outcome{
	reconcile.OutcomeTagged,
	reconcile.OutcomeUntagged,
	reconcile.OutcomeAlreadyTaggedByTitle,
	reconcile.OutcomeAlreadyTaggedByID,
	reconcile.OutcomeSkippedNotTagged,
	reconcile.OutcomeNotFound,
	reconcile.OutcomePending,
}

func renderSummary(results []reconcile.Result) string {
	counts := make(map[reconcile.Outcome]int)
	searchErrors := 0
	for _, res := range results {
		counts[res.Outcome]++
		if res.Err != nil {
			searchErrors++
		}
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Outcome", "Books"})
	for _, outcome := range summaryOrder {
		if counts[outcome] == 0 {
			continue
		}
		tw.AppendRow(table.Row{outcome.String(), counts[outcome]})
	}
	tw.AppendFooter(table.Row{"total", len(results)})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	if searchErrors > 0 {
		slog.Warn("Some searches failed", "count", searchErrors)
	}

	return tw.Render()
}

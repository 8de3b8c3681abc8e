// Package tags lists the tags on the linked catalog account.
package tags

import (
	"context"
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/lepinkainen/shelfsync/internal/config"
	"github.com/lepinkainen/shelfsync/internal/libby"
)

// tagLister is the slice of the catalog client this command needs.
type tagLister interface {
	Tags(ctx context.Context) ([]libby.TagInfo, error)
}

var newClient = func(ctx context.Context) (tagLister, error) {
	return libby.NewClient(ctx, config.CredentialsFile)
}

// TagsWithParams fetches the account's tags and prints them as a table,
// busiest tag first.
func TagsWithParams() error {
	ctx := context.Background()

	client, err := newClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create catalog client: %w", err)
	}

	tags, err := client.Tags(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tags: %w", err)
	}

	fmt.Println(renderTags(tags))
	return nil
}

func renderTags(tags []libby.TagInfo) string {
	sorted := make([]libby.TagInfo, len(tags))
	copy(sorted, tags)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalTaggings != sorted[j].TotalTaggings {
			return sorted[i].TotalTaggings > sorted[j].TotalTaggings
		}
		return sorted[i].Name < sorted[j].Name
	})

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Tag", "Titles"})
	for _, tag := range sorted {
		tw.AppendRow(table.Row{tag.Name, tag.TotalTaggings})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}

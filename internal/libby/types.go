package libby

import (
	"encoding/json"
	"fmt"
)

// FormatKindle is the format id OverDrive uses for Kindle-deliverable ebooks.
const FormatKindle = "ebook-kindle"

// MediaType selects which catalog the search queries.
type MediaType string

const (
	// MediaEbook searches the ebook catalog.
	MediaEbook MediaType = "ebook"
	// MediaAudiobook searches the audiobook catalog.
	MediaAudiobook MediaType = "audiobook"
)

func (m MediaType) String() string {
	return string(m)
}

// ParseMediaType validates a media type given on the command line.
func ParseMediaType(value string) (MediaType, error) {
	switch MediaType(value) {
	case MediaEbook:
		return MediaEbook, nil
	case MediaAudiobook:
		return MediaAudiobook, nil
	default:
		return "", fmt.Errorf("unknown media type %q (want ebook or audiobook)", value)
	}
}

// SearchOptions configures a catalog search.
type SearchOptions struct {
	// MediaType restricts results to one catalog.
	MediaType MediaType
	// DeepSearch includes titles the library does not currently make
	// available, which is what the browse report wants.
	DeepSearch bool
	// PerPage is the result page size; zero means the default of 24.
	PerPage int
}

// CatalogMatch is a converted catalog search hit.
type CatalogMatch struct {
	ID                string
	Title             string
	Creator           string
	IsAvailable       bool
	EstimatedWaitDays *int
	HoldsCount        *int
	OwnedCopies       *int
	AvailableCopies   *int
	Subjects          []string
	CoverURL          string
}

// TagInfo identifies a tag on the account.
type TagInfo struct {
	Name          string
	UUID          string
	TotalTaggings int
}

// TaggedTitle is one title carrying a tag.
type TaggedTitle struct {
	TitleID string
	Title   string
	Author  string
	Format  string
}

// subjectList tolerates the API's habit of returning `{}` in place of an
// empty subject array. Any non-array shape decodes to an empty list.
type subjectList []string

func (s *subjectList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = nil
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err == nil && obj.Name != "" {
			out = append(out, obj.Name)
			continue
		}
		var plain string
		if err := json.Unmarshal(item, &plain); err == nil && plain != "" {
			out = append(out, plain)
		}
	}
	*s = out
	return nil
}

// coverHref is one entry of the covers object.
type coverHref struct {
	Href string `json:"href"`
}

// coverSet holds the cover renditions a search hit offers.
type coverSet struct {
	Cover510 coverHref `json:"cover510Wide"`
	Cover300 coverHref `json:"cover300Wide"`
	Cover150 coverHref `json:"cover150Wide"`
}

// url returns the largest rendition present, or empty.
func (c coverSet) url() string {
	for _, cover := range []coverHref{c.Cover510, c.Cover300, c.Cover150} {
		if cover.Href != "" {
			return cover.Href
		}
	}
	return ""
}

// searchResultItem is the wire shape of one thunder search hit.
type searchResultItem struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	SortTitle         string      `json:"sortTitle"`
	FirstCreatorName  string      `json:"firstCreatorName"`
	IsAvailable       bool        `json:"isAvailable"`
	EstimatedWaitDays *int        `json:"estimatedWaitDays"`
	HoldsCount        *int        `json:"holdsCount"`
	OwnedCopies       *int        `json:"ownedCopies"`
	AvailableCopies   *int        `json:"availableCopies"`
	Subjects          subjectList `json:"subjects"`
	Covers            coverSet    `json:"covers"`
}

func (item searchResultItem) toCatalogMatch() CatalogMatch {
	title := item.SortTitle
	if title == "" {
		title = item.Title
	}
	return CatalogMatch{
		ID:                item.ID,
		Title:             title,
		Creator:           item.FirstCreatorName,
		IsAvailable:       item.IsAvailable,
		EstimatedWaitDays: item.EstimatedWaitDays,
		HoldsCount:        item.HoldsCount,
		OwnedCopies:       item.OwnedCopies,
		AvailableCopies:   item.AvailableCopies,
		Subjects:          item.Subjects,
		CoverURL:          item.Covers.url(),
	}
}

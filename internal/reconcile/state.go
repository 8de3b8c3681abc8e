package reconcile

import (
	"github.com/lepinkainen/shelfsync/internal/libby"
	"github.com/lepinkainen/shelfsync/internal/match"
)

// TagState tracks what the catalog already holds under the tag. The id set
// is updated as mutations apply so repeated checks stay correct within a
// run; the title set is fixed at load time.
type TagState struct {
	titles map[string]bool
	ids    map[string]bool
}

// NewTagState builds the state from the titles currently under the tag.
func NewTagState(tagged []libby.TaggedTitle) *TagState {
	state := &TagState{
		titles: make(map[string]bool, len(tagged)),
		ids:    make(map[string]bool, len(tagged)),
	}
	for _, title := range tagged {
		state.titles[match.NormalizeTitle(title.Title)] = true
		state.ids[title.TitleID] = true
	}
	return state
}

// HasTitle reports whether a title is already tagged. Titles compare
// normalized.
func (s *TagState) HasTitle(title string) bool {
	return s.titles[match.NormalizeTitle(title)]
}

// HasID reports whether the catalog id is currently tagged.
func (s *TagState) HasID(id string) bool {
	return s.ids[id]
}

// Len returns the number of tagged ids.
func (s *TagState) Len() int {
	return len(s.ids)
}

func (s *TagState) addID(id string)    { s.ids[id] = true }
func (s *TagState) removeID(id string) { delete(s.ids, id) }

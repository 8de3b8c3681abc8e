package reconcile

// Outcome classifies what a run decided for one book.
type Outcome int

const (
	// OutcomePending means the book was never evaluated. Only seen when a
	// run aborts early.
	OutcomePending Outcome = iota
	// OutcomeAlreadyTaggedByTitle matched an existing tagged title before
	// any search was issued.
	OutcomeAlreadyTaggedByTitle
	// OutcomeAlreadyTaggedByID matched a catalog id that is already tagged.
	OutcomeAlreadyTaggedByID
	// OutcomeTagged means the tag was applied.
	OutcomeTagged
	// OutcomeUntagged means the tag was removed.
	OutcomeUntagged
	// OutcomeSkippedNotTagged means a removal found nothing to remove.
	OutcomeSkippedNotTagged
	// OutcomeNotFound means the catalog search produced no acceptable match.
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAlreadyTaggedByTitle:
		return "already tagged (title)"
	case OutcomeAlreadyTaggedByID:
		return "already tagged (id)"
	case OutcomeTagged:
		return "tagged"
	case OutcomeUntagged:
		return "untagged"
	case OutcomeSkippedNotTagged:
		return "not tagged"
	case OutcomeNotFound:
		return "not found"
	default:
		return "pending"
	}
}

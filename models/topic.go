package models

// TopicStatus is the discussion lifecycle state of an outline topic.
type TopicStatus string

const (
	TopicPending   TopicStatus = "pending"
	TopicDiscussed TopicStatus = "discussed"
	TopicSkipped   TopicStatus = "skipped"
)

// Valid reports whether s is one of the known lifecycle states.
func (s TopicStatus) Valid() bool {
	switch s {
	case TopicPending, TopicDiscussed, TopicSkipped:
		return true
	}
	return false
}

// Topic is a single outline entry produced for a document.
type Topic struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Questions   []string    `json:"questions"`
	Excerpts    []string    `json:"excerpts"`
	SegueToNext string      `json:"segue_to_next,omitempty"`
	Status      TopicStatus `json:"status"`
}

// Outline is the discussion plan derived from a document.
type Outline struct {
	Summary string  `json:"summary"`
	Topics  []Topic `json:"topics"`
}

// ProcessedDocument is returned once a document has been outlined and indexed.
type ProcessedDocument struct {
	Namespace string  `json:"namespace"`
	Outline   Outline `json:"analysis"`
	Indexed   int     `json:"indexed"`
}

// TopicStatusUpdate reports the outcome of a status change.
// Found is false when no topic record matched; the update is then a no-op.
type TopicStatusUpdate struct {
	TopicID string      `json:"topicId"`
	Status  TopicStatus `json:"newStatus"`
	Found   bool        `json:"found"`
}

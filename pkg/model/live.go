package model

const StatusGenerated = "generated"

// LiveSuggestion is the user-visible, mutable record of a suggestion. It is owned by the live suggestion
// store and may diverge from the pipeline snapshots after user or system edits.
type LiveSuggestion struct {
	ID          SuggestionID `json:"id" firestore:"id"`
	Title       string       `json:"title" firestore:"title"`
	Description string       `json:"description" firestore:"description"`
	Approach    string       `json:"approach" firestore:"approach"`
	Keywords    []string     `json:"keywords" firestore:"keywords"`
	Status      string       `json:"status" firestore:"status"`
	// Support is nil when the live record carries no support value
	Support *float64 `json:"support,omitempty" firestore:"support"`
}

package domain

// Report run statuses, tracked in the reportRuns collection so a failed
// drafting attempt is visible from the console instead of vanishing.
const (
	ReportRunPending = "PENDING"
	ReportRunRunning = "RUNNING"
	ReportRunSuccess = "SUCCESS"
	ReportRunFailed  = "FAILED"
)

// ReportRun is one attempt at drafting a parent-facing daily report from the
// staff handover notes of a visit.
type ReportRun struct {
	ID         string `firestore:"-"`
	CustomerID string `firestore:"customerId"`
	DogName    string `firestore:"dogName"`

	// VisitDate is the service date as "YYYY-MM-DD".
	VisitDate string `firestore:"visitDate"`

	// Notes is the raw handover text the draft is generated from.
	Notes string `firestore:"notes"`

	// PhotoURIs are gs:// URIs of photos attached to the visit.
	PhotoURIs []string `firestore:"photoUris,omitempty"`

	Status       string `firestore:"status"`
	ErrorMessage string `firestore:"errorMessage,omitempty"`

	// DraftJSON is the generated ReportDraft, stored as raw JSON.
	DraftJSON string `firestore:"draftJson,omitempty"`

	StartedAt  string `firestore:"startedAt"`
	FinishedAt string `firestore:"finishedAt,omitempty"`
}

// ReportDraft is the structured parent-facing daily report produced by the
// drafting model.
type ReportDraft struct {
	Headline   string   `json:"headline"`
	Summary    string   `json:"summary"`
	Mood       string   `json:"mood"`
	Meals      string   `json:"meals"`
	Activities []string `json:"activities"`
	PhotoURLs  []string `json:"photo_urls,omitempty"`
}

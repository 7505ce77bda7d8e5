package report

// Defaults for daily-report drafting.
const (
	// DefaultModelName is the Gemini model used for drafting.
	DefaultModelName = "gemini-2.5-flash"

	// maxNotesLen caps the handover text sent to the model.
	maxNotesLen = 8000
)

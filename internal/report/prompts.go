package report

import (
	"strings"

	"github.com/mellowdog/pawdesk/internal/domain"
)

// buildReportPrompt constructs the drafting prompt from a run's handover
// notes. The model must answer with a single strict JSON object so the
// transform step can parse it without heuristics.
func buildReportPrompt(run *domain.ReportRun) string {
	notes := run.Notes
	if len(notes) > maxNotesLen {
		notes = notes[:maxNotesLen]
	}

	var b strings.Builder
	b.WriteString("You write warm, parent-facing daily reports for a dog daycare.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Rewrite the staff handover notes below into a short daily report for the dog's family.\n")
	b.WriteString("- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n")
	b.WriteString("- Output a single JSON object.\n\n")
	b.WriteString("The object must have these fields:\n")
	b.WriteString("- \"headline\": string, one cheerful sentence\n")
	b.WriteString("- \"summary\": string, 2-4 sentences about the day\n")
	b.WriteString("- \"mood\": string, one or two words\n")
	b.WriteString("- \"meals\": string, what and how the dog ate\n")
	b.WriteString("- \"activities\": array of short strings\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Write in the second person to the family (\"" + displayName(run) + " had a great time...\").\n")
	b.WriteString("- Never mention staff shorthand, medication dosages, or billing.\n")
	b.WriteString("- If the notes mention nothing about meals, write \"No meal notes today.\"\n")
	b.WriteString("- Return ONLY valid raw JSON. Do NOT wrap the response in code fences.\n")
	b.WriteString("- Output must begin with \"{\" and end with \"}\".\n\n")
	b.WriteString("Dog: " + displayName(run) + "\n")
	b.WriteString("Visit date: " + run.VisitDate + "\n\n")
	b.WriteString("Handover notes:\n")
	b.WriteString(notes)
	b.WriteString("\n")

	return b.String()
}

func displayName(run *domain.ReportRun) string {
	if run.DogName != "" {
		return run.DogName
	}
	return "your dog"
}

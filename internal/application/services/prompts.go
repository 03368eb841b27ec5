package services

import (
	"fmt"
	"strings"

	"github.com/zatekoja/medibot/internal/domain/entities"
)

// InsufficientContextAnswer is the only answer given when the context cannot answer the query.
const InsufficientContextAnswer = "Insufficient context."

func buildClassificationPrompt(query string) string {
	return fmt.Sprintf(
		"Classify the following medical query into one of these categories:\n"+
			"1. %s - patient-specific data only (allergies, blood type, history).\n"+
			"2. %s - general guidelines or medical knowledge.\n"+
			"3. %s - if it requires both patient data and general knowledge.\n\n"+
			"Query: %s\n"+
			"Answer with only: %s, %s, or %s.",
		entities.ClassificationPatientData,
		entities.ClassificationGeneralKnowledge,
		entities.ClassificationBoth,
		query,
		entities.ClassificationPatientData,
		entities.ClassificationGeneralKnowledge,
		entities.ClassificationBoth,
	)
}

func buildKnowledgePrompt(query string, record entities.PatientRecord, guidelines []entities.Guideline) string {
	var sb strings.Builder
	sb.WriteString("You are a medical knowledge assistant.\n\n")
	sb.WriteString("- Do NOT answer the query directly.\n")
	sb.WriteString("- Your job is to identify which clinical guidelines or medical knowledge are relevant to the query.\n")
	fmt.Fprintf(&sb, "- If you are unsure about the guidelines, respond exactly: %q.\n", entities.KnowledgeUncertainMarker)
	sb.WriteString("- Output JSON with the relevant knowledge-base data only.\n\n")
	fmt.Fprintf(&sb, "Query: %s\n", query)

	if record.HasData() {
		fmt.Fprintf(&sb, "Patient Info: %s\n", record.JSON())
	} else {
		sb.WriteString("Patient Info: None\n")
	}

	if len(guidelines) > 0 {
		sb.WriteString("\nReference guidelines:\n")
		for _, g := range guidelines {
			fmt.Fprintf(&sb, "[%s] %s: %s\n", g.ID, g.Title, g.Body)
		}
	}
	return sb.String()
}

func buildSynthesisPrompt(query, contextText string) string {
	return fmt.Sprintf(`You are a professional medical assistant.

User query: %s
Content: %s

Based on the content and query, provide an accurate, concise and professional short answer.
Do not output anything unrelated to the query. Do not address or greet the user. Only use the information given.
If the information is NOT given, respond: %q`, query, contextText, InsufficientContextAnswer)
}

package knowledge

import "github.com/medgate/medgate/pkg/protocol"

// DefaultEntries is a small curated reference set used when no external
// knowledge source is configured.
func DefaultEntries() []protocol.KnowledgeEntry {
	return []protocol.KnowledgeEntry{
		{
			Topic: "hydration",
			Text:  "Adults should drink water regularly throughout the day; individual needs vary with activity and climate.",
		},
		{
			Topic: "exercise",
			Text:  "Adults should aim for at least 150 minutes of moderate aerobic activity per week.",
		},
		{
			Topic: "blood pressure",
			Text:  "Normal blood pressure for adults is below 120/80 mmHg; hypertension requires medical follow-up.",
		},
		{
			Topic: "sleep",
			Text:  "Most adults need seven or more hours of sleep per night for good health.",
		},
		{
			Topic: "nutrition",
			Text:  "A balanced diet emphasizes vegetables, fruits, whole grains and lean protein while limiting added sugar and sodium.",
		},
		{
			Topic: "vaccination",
			Text:  "Vaccines are evaluated for safety and effectiveness before approval and monitored afterwards.",
		},
	}
}

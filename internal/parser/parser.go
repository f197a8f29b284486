package parser

import (
	"fmt"

	"github.com/insightdelivered/bank-notify/internal/models"
)

// Parser defines the interface for bank notification parsers.
type Parser interface {
	// Source returns the bank this parser recognizes.
	Source() models.SourceID
	// BankName returns the bank name as it is spoken in announcements.
	BankName() string
	// MatchTitle reports whether a notification title marks a funds-received event.
	MatchTitle(title string) bool
	// Extract pulls the normalized credited amount out of the notification.
	Extract(event models.NotificationEvent) models.ExtractionResult
}

var registry = map[models.SourceID]Parser{
	models.SourceACB:         &ACBParser{},
	models.SourceOCB:         &OCBParser{},
	models.SourceTechcombank: &TechcombankParser{},
	models.SourceVietinbank:  &VietinbankParser{},
}

// New returns the parser for the given source.
func New(source models.SourceID) (Parser, error) {
	p, ok := registry[source]
	if !ok {
		return nil, fmt.Errorf("unsupported bank source: %q", source)
	}
	return p, nil
}

// Classify returns the first enabled source, in models.Sources order, whose
// title rule matches the event. It returns false when nothing matches.
func Classify(event models.NotificationEvent, prefs models.Preferences) (models.SourceID, bool) {
	if event.Title == "" {
		return "", false
	}
	for _, source := range models.Sources {
		if !prefs.Enabled(source) {
			continue
		}
		if registry[source].MatchTitle(event.Title) {
			return source, true
		}
	}
	return "", false
}

// Extract runs the amount rule of source against the event.
// Unknown sources yield models.NotFound.
func Extract(source models.SourceID, event models.NotificationEvent) models.ExtractionResult {
	p, ok := registry[source]
	if !ok {
		return models.NotFound
	}
	return p.Extract(event)
}

package models

// SourceID identifies a supported bank notification source.
type SourceID string

const (
	SourceACB         SourceID = "ACB"
	SourceOCB         SourceID = "OCB"
	SourceTechcombank SourceID = "Techcombank"
	SourceVietinbank  SourceID = "Vietinbank"
)

// Sources lists every supported source in classification order.
// The first enabled source whose title rule matches wins.
var Sources = []SourceID{SourceACB, SourceOCB, SourceTechcombank, SourceVietinbank}

// Valid reports whether s is one of the supported sources.
func (s SourceID) Valid() bool {
	for _, known := range Sources {
		if s == known {
			return true
		}
	}
	return false
}

// NotificationEvent is the raw text of one posted notification.
// Either field may be empty when the posting app did not set it.
type NotificationEvent struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Preferences maps a source to its enabled flag.
// Sources missing from the map are treated as enabled.
type Preferences map[SourceID]bool

// Enabled returns the flag for s, defaulting to true.
func (p Preferences) Enabled(s SourceID) bool {
	enabled, ok := p[s]
	if !ok {
		return true
	}
	return enabled
}

// ExtractionResult holds a normalized amount, or nothing when Found is false.
type ExtractionResult struct {
	Amount string
	Found  bool
}

// NotFound is the result for text that carries no parseable amount.
var NotFound = ExtractionResult{}

// AmountOf wraps a normalized digit string as a found result.
func AmountOf(normalized string) ExtractionResult {
	return ExtractionResult{Amount: normalized, Found: true}
}

// Announcement is what the audio layer should play for one notification.
type Announcement struct {
	Source       SourceID `json:"source"`
	Amount       string   `json:"amount"`
	SpokenText   string   `json:"spokenText"`
	ChimeVolume  float64  `json:"chimeVolume"`
	SpeechVolume float64  `json:"speechVolume"`
}

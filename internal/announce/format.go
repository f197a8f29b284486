package announce

import (
	"fmt"
	"math"

	"github.com/insightdelivered/bank-notify/internal/models"
)

// ChimeAttenuation scales the configured volume for the chime channel.
// Speech plays at the configured volume unchanged.
const ChimeAttenuation = 0.7

// DefaultVolume is used when no volume has been configured.
const DefaultVolume = 0.5

// SampleText is spoken by the test announcement.
const SampleText = "Số tiền 500 nghìn đồng đã được chuyển vào tài khoản ngân hàng"

const (
	templateWithUnit    = "Số tiền %s đồng đã được chuyển vào tài khoản ngân hàng %s"
	templateWithoutUnit = "Số tiền %s đã được chuyển vào tài khoản ngân hàng %s"
)

type template struct {
	format   string
	bankName string
}

// Techcombank announcements omit the "đồng" unit word.
var templates = map[models.SourceID]template{
	models.SourceACB:         {templateWithUnit, "ACB"},
	models.SourceOCB:         {templateWithUnit, "OCB"},
	models.SourceTechcombank: {templateWithoutUnit, "Techcombank"},
	models.SourceVietinbank:  {templateWithUnit, "Vietinbank"},
}

// Format builds the spoken sentence for a normalized amount. The amount is
// inserted verbatim. Unknown sources produce an empty string.
func Format(source models.SourceID, amount string) string {
	tmpl, ok := templates[source]
	if !ok {
		return ""
	}
	return fmt.Sprintf(tmpl.format, amount, tmpl.bankName)
}

// Volumes derives the chime and speech volumes from the configured volume,
// clamped to [0,1].
func Volumes(volume float64) (chime, speech float64) {
	speech = clamp(volume)
	return speech * ChimeAttenuation, speech
}

// Sample returns the fixed announcement used to test the audio setup.
func Sample(volume float64) models.Announcement {
	chime, speech := Volumes(volume)
	return models.Announcement{
		SpokenText:   SampleText,
		ChimeVolume:  chime,
		SpeechVolume: speech,
	}
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return DefaultVolume
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

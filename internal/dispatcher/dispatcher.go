// Package dispatcher turns one posted notification into at most one
// announcement. It holds no state and is safe for concurrent use.
package dispatcher

import (
	"github.com/insightdelivered/bank-notify/internal/announce"
	"github.com/insightdelivered/bank-notify/internal/models"
	"github.com/insightdelivered/bank-notify/internal/parser"
)

// Dispatch classifies the event, extracts the credited amount and formats
// the spoken sentence. It returns false when the source is disabled, no
// title rule matches, or the text carries no parseable amount.
func Dispatch(event models.NotificationEvent, prefs models.Preferences, volume float64) (models.Announcement, bool) {
	source, ok := parser.Classify(event, prefs)
	if !ok {
		return models.Announcement{}, false
	}

	res := parser.Extract(source, event)
	if !res.Found {
		return models.Announcement{}, false
	}

	chime, speech := announce.Volumes(volume)
	return models.Announcement{
		Source:       source,
		Amount:       res.Amount,
		SpokenText:   announce.Format(source, res.Amount),
		ChimeVolume:  chime,
		SpeechVolume: speech,
	}, true
}

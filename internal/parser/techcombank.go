package parser

import (
	"regexp"

	"github.com/insightdelivered/bank-notify/internal/models"
)

// TechcombankParser handles Techcombank notifications.
//
// Techcombank puts the credited amount in the title itself:
//
//	TK 1903xxxx + VND 750,000
//
// so the same pattern both classifies the notification and extracts the
// amount. The body is ignored.
type TechcombankParser struct{}

var techcombankPattern = regexp.MustCompile(`\+ VND (` + amountDigits + `)` + amountEnd)

func (p *TechcombankParser) Source() models.SourceID { return models.SourceTechcombank }

func (p *TechcombankParser) BankName() string { return "Techcombank" }

func (p *TechcombankParser) MatchTitle(title string) bool {
	return techcombankPattern.MatchString(title)
}

func (p *TechcombankParser) Extract(event models.NotificationEvent) models.ExtractionResult {
	return extractWith(techcombankPattern, event.Title)
}

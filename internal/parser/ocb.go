package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/bank-notify/internal/models"
)

// OCBParser handles OCB notifications. Only credits carry the "+" sign:
//
//	Số tiền: +2,000,000 VND
type OCBParser struct{}

const ocbTitle = "Thông báo biến động số dư"

var ocbAmountPattern = regexp.MustCompile(`Số tiền: (\+` + amountDigits + `)` + amountEnd)

func (p *OCBParser) Source() models.SourceID { return models.SourceOCB }

func (p *OCBParser) BankName() string { return "OCB" }

func (p *OCBParser) MatchTitle(title string) bool {
	return strings.Contains(title, ocbTitle)
}

func (p *OCBParser) Extract(event models.NotificationEvent) models.ExtractionResult {
	return extractWith(ocbAmountPattern, event.Body)
}

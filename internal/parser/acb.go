package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/bank-notify/internal/models"
)

// ACBParser handles ACB balance-change notifications.
//
// ACB titles are unaccented ASCII:
//
//	Thong bao thay doi so du tai khoan
//
// The body names the account and the credited amount, with or without
// thousands separators:
//
//	TK 123456789(VND) + 1,500,000 luc 10:15 15/01/2024. So du 3,000,000
type ACBParser struct{}

const acbTitle = "Thong bao thay doi so du tai khoan"

var acbAmountPattern = regexp.MustCompile(`TK \d+\(VND\) \+ ([\d,]+)`)

func (p *ACBParser) Source() models.SourceID { return models.SourceACB }

func (p *ACBParser) BankName() string { return "ACB" }

func (p *ACBParser) MatchTitle(title string) bool {
	return strings.Contains(title, acbTitle)
}

func (p *ACBParser) Extract(event models.NotificationEvent) models.ExtractionResult {
	return extractWith(acbAmountPattern, event.Body)
}

package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/bank-notify/internal/models"
)

// VietinbankParser handles VietinBank iPay notifications titled
// "Biến động số dư" whose body carries the credit:
//
//	... Giao dịch: +300,000VND ...
//
// The title check is case-sensitive, which keeps it apart from the OCB
// title "Thông báo biến động số dư".
type VietinbankParser struct{}

const vietinbankTitle = "Biến động số dư"

var vietinbankAmountPattern = regexp.MustCompile(`Giao dịch: (\+` + amountDigits + `)` + amountEnd)

func (p *VietinbankParser) Source() models.SourceID { return models.SourceVietinbank }

func (p *VietinbankParser) BankName() string { return "Vietinbank" }

func (p *VietinbankParser) MatchTitle(title string) bool {
	return strings.Contains(title, vietinbankTitle)
}

func (p *VietinbankParser) Extract(event models.NotificationEvent) models.ExtractionResult {
	return extractWith(vietinbankAmountPattern, event.Body)
}

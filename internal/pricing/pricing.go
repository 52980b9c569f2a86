// Package pricing derives permit renewal prices from membership categories.
// All prices are integral pence; formatting to pounds happens at the edge.
package pricing

import (
	"strconv"

	"github.com/muirkirkangling/memberportal/internal/domain/member"
)

// renewalPence is the closed price table. Categories missing from the table
// price at zero, which also suppresses the payment option on the dashboard.
var renewalPence = map[member.PermitType]int{
	member.PermitLocalSenior:    2000,
	member.PermitLocalAdult:     4000,
	member.PermitVisitingAdult:  10000,
	member.PermitVisitingSenior: 5000,
}

// RenewalPence returns the renewal price in pence for a permit type.
// Unknown or unset categories are worth zero rather than an error.
func RenewalPence(t member.PermitType) int {
	if p, ok := renewalPence[t]; ok {
		return p
	}

	return 0
}

// DisplayPaymentOption reports whether the dashboard should offer payment.
func DisplayPaymentOption(pence int) bool {
	return pence > 0
}

// FormatPence renders pence as a pounds string with exactly two decimals,
// e.g. 2000 -> "20.00".
func FormatPence(pence int) string {
	sign := ""

	if pence < 0 {
		sign = "-"
		pence = -pence
	}

	return sign + strconv.Itoa(pence/100) + "." + pad2(pence%100)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}

	return strconv.Itoa(n)
}

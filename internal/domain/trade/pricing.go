package trade

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineTotal returns quantity x unit price minus the percentage discount
func LineTotal(quantity int, unitPrice, discountPercent decimal.Decimal) decimal.Decimal {
	gross := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return gross.Sub(gross.Mul(discountPercent).Div(hundred))
}

// Totals computes subtotal and total, both rounded to cents. The discount
// argument is an absolute amount taken off after shipping is added.
func Totals(lines []decimal.Decimal, shippingCost, discount decimal.Decimal) (subtotal, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l)
	}
	subtotal = subtotal.Round(2)
	total = subtotal.Add(shippingCost).Sub(discount).Round(2)
	return subtotal, total
}

// IncludedTax returns the VAT contained in a gross amount at ratePercent,
// rounded to cents
func IncludedTax(gross, ratePercent decimal.Decimal) decimal.Decimal {
	if !ratePercent.IsPositive() || !gross.IsPositive() {
		return decimal.Zero
	}
	return gross.Mul(ratePercent).Div(hundred.Add(ratePercent)).Round(2)
}

func validPercent(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(hundred)
}

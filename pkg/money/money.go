// Package money does currency arithmetic in integer minor units (cents).
// Totals computed here are exact; there is no floating point anywhere in the
// order path.
package money

import "fmt"

// Amount is a sum of money in minor units.
type Amount int64

// Mul returns the amount for qty units at unit price a.
func (a Amount) Mul(qty int) Amount {
	return a * Amount(qty)
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return a + b
}

// String formats the amount as major.minor, e.g. 900 -> "9.00".
func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

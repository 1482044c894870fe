package domain

import (
	"strconv"
	"strings"
)

// FormatAmount prints an amount with a comma decimal separator.
// GB keeps one decimal, MB and kB none.
func FormatAmount(v float64, u Unit) string {
	prec := 0
	if u == UnitGB {
		prec = 1
	}
	return strings.Replace(strconv.FormatFloat(v, 'f', prec, 64), ".", ",", 1)
}

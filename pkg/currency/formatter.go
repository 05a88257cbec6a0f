package currency

import (
	"fmt"
	"math"
	"strings"
)

const Default = "USD"

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
}

// Currencies with no minor unit in fares.
var wholeUnits = map[string]bool{
	"JPY": true,
	"KRW": true,
	"IDR": true,
	"VND": true,
}

// Format renders amount in the given ISO code: "$1,234.50", "IDR 1.250.000".
// An empty code formats in Default.
func Format(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = Default
	}
	if code == "IDR" {
		return FormatIDR(amount)
	}

	negative := amount < 0
	if negative {
		amount = -amount
	}

	var body string
	if wholeUnits[code] {
		body = addThousandsSeparator(fmt.Sprintf("%.0f", math.Round(amount)), ",")
	} else {
		cents := math.Round(amount * 100)
		whole := math.Floor(cents / 100)
		body = addThousandsSeparator(fmt.Sprintf("%.0f", whole), ",") + fmt.Sprintf(".%02.0f", cents-whole*100)
	}

	var result string
	if sym, ok := symbols[code]; ok {
		result = sym + body
	} else {
		result = code + " " + body
	}
	if negative {
		result = "-" + result
	}
	return result
}

func FormatIDR(amount float64) string {
	rounded := math.Round(amount)

	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	intStr := fmt.Sprintf("%.0f", rounded)
	formatted := addThousandsSeparator(intStr, ".")

	result := "IDR " + formatted
	if negative {
		result = "-" + result
	}

	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}

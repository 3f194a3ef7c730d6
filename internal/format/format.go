// Package format renders money, dates and percentages for display.
//
// Locale and currency are fixed to pt-BR and BRL.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// Currency formats cents as BRL, e.g. 123456 -> "R$ 1.234,56".
// Digits are grouped on the integer text, so every int64 renders exactly.
func Currency(cents int64) string {
	reais, rest := cents/100, cents%100
	neg := cents < 0
	if neg {
		reais, rest = -reais, -rest
	}
	s := "R$ " + strings.ReplaceAll(humanize.Comma(reais), ",", ".") + fmt.Sprintf(",%02d", rest)
	if neg {
		return "-" + s
	}
	return s
}

// MonthName returns the lowercase month name.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// DayMonth formats t as "5 de janeiro".
func DayMonth(t time.Time) string {
	return fmt.Sprintf("%d de %s", t.Day(), MonthName(t.Month()))
}

// ShortDate formats t as "05/01/24".
func ShortDate(t time.Time) string {
	return t.Format("02/01/06")
}

// MonthYear formats a month selector label, e.g. "janeiro, 2024".
func MonthYear(year, month int) string {
	return fmt.Sprintf("%s, %d", MonthName(time.Month(month)), year)
}

// Percent renders an already rounded percentage.
func Percent(p int64) string {
	return fmt.Sprintf("%d%%", p)
}

package valueobject

import (
	"strings"
)

// PriceSeparator разделяет границы диапазона цены.
const PriceSeparator = " - "

// NormalizeCurrency оставляет только цифры ASCII и форматирует их как целые доллары
// с разделителем тысяч: "12345" -> "$12,345". Пустая строка без цифр даёт "".
// Десятичная точка не сохраняется: "$1,234.56" -> "$123,456".
func NormalizeCurrency(raw string) string {
	digits := DigitsOnly(raw)
	if digits == "" {
		return ""
	}

	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return "$0"
	}

	return "$" + groupThousands(digits)
}

// CombinePriceRange собирает диапазон из двух полей формы.
// Пустая верхняя граница даёт только нижнюю; без нижней границы диапазона нет.
func CombinePriceRange(low, high string) string {
	lowValue := NormalizeCurrency(low)
	if lowValue == "" {
		return ""
	}

	highValue := NormalizeCurrency(high)
	if highValue == "" {
		return lowValue
	}
	return lowValue + PriceSeparator + highValue
}

// ParsePriceRange обрабатывает вариант с одним полем: строка делится по первому "-",
// каждая сторона нормализуется отдельно, пустые стороны отбрасываются.
func ParsePriceRange(raw string) string {
	left, right, found := strings.Cut(raw, "-")
	if !found {
		return NormalizeCurrency(raw)
	}

	parts := make([]string, 0, 2)
	for _, side := range []string{left, right} {
		if v := NormalizeCurrency(side); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, PriceSeparator)
}

// DigitsOnly удаляет всё, кроме символов 0-9.
func DigitsOnly(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func groupThousands(digits string) string {
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}

	var b strings.Builder
	b.Grow(len(digits) + len(digits)/3)
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

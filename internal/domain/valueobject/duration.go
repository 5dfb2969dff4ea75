package valueobject

import (
	"strings"

	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

type DurationUnit string

const (
	DurationDays   DurationUnit = "days"
	DurationWeeks  DurationUnit = "weeks"
	DurationMonths DurationUnit = "months"
)

func (u DurationUnit) IsValid() bool {
	switch u {
	case DurationDays, DurationWeeks, DurationMonths:
		return true
	}
	return false
}

// ParseDurationUnit принимает единицу без учёта регистра; пустое значение означает недели.
func ParseDurationUnit(raw string) (DurationUnit, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return DurationWeeks, nil
	}
	unit := DurationUnit(raw)
	if !unit.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "единица срока должна быть days, weeks или months")
	}
	return unit, nil
}

// CombineDuration оставляет в значении только цифры и добавляет единицу: "2", weeks -> "2 weeks".
// Если цифр нет, срок отсутствует и возвращается "".
func CombineDuration(value string, unit DurationUnit) string {
	digits := DigitsOnly(value)
	if digits == "" {
		return ""
	}
	return digits + " " + string(unit)
}

package entity

import (
	"strings"

	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
)

// ProposalDraft сырое состояние формы до фиксации.
// Цена приходит либо парой LowPrice/HighPrice, либо одной строкой PriceRange;
// срок либо парой JobDurationValue/JobDurationUnit, либо одной строкой JobDuration.
type ProposalDraft struct {
	ClientName       string `json:"clientName" yaml:"clientName"`
	ClientEmail      string `json:"clientEmail" yaml:"clientEmail"`
	ScopeOfWork      string `json:"scopeOfWork" yaml:"scopeOfWork"`
	LowPrice         string `json:"lowPrice,omitempty" yaml:"lowPrice,omitempty"`
	HighPrice        string `json:"highPrice,omitempty" yaml:"highPrice,omitempty"`
	PriceRange       string `json:"priceRange,omitempty" yaml:"priceRange,omitempty"`
	JobDurationValue string `json:"jobDurationValue,omitempty" yaml:"jobDurationValue,omitempty"`
	JobDurationUnit  string `json:"jobDurationUnit,omitempty" yaml:"jobDurationUnit,omitempty"`
	JobDuration      string `json:"jobDuration,omitempty" yaml:"jobDuration,omitempty"`
	MeetingNotes     string `json:"meetingNotes,omitempty" yaml:"meetingNotes,omitempty"`
}

// UsesSplitPrice сообщает, что цена задана парой полей.
func (d ProposalDraft) UsesSplitPrice() bool {
	return d.LowPrice != "" || d.HighPrice != ""
}

// UsesSplitDuration сообщает, что срок задан числом и единицей.
func (d ProposalDraft) UsesSplitDuration() bool {
	return d.JobDurationValue != ""
}

// Normalize приводит черновик к каноническим значениям полей.
// Отсутствующие поля остаются пустыми; полноту проверяет NewProposal.
func (d ProposalDraft) Normalize() (ProposalFields, error) {
	f := ProposalFields{
		ClientName:   d.ClientName,
		ClientEmail:  strings.TrimSpace(d.ClientEmail),
		ScopeOfWork:  d.ScopeOfWork,
		MeetingNotes: d.MeetingNotes,
	}

	if d.UsesSplitPrice() {
		f.PriceRange = valueobject.CombinePriceRange(d.LowPrice, d.HighPrice)
	} else {
		f.PriceRange = valueobject.ParsePriceRange(d.PriceRange)
	}

	if d.UsesSplitDuration() {
		unit, err := valueobject.ParseDurationUnit(d.JobDurationUnit)
		if err != nil {
			return ProposalFields{}, err
		}
		f.JobDuration = valueobject.CombineDuration(d.JobDurationValue, unit)
	} else {
		f.JobDuration = strings.TrimSpace(d.JobDuration)
	}

	return f, nil
}

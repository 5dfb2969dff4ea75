package formatter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
)

// Payload тело POST-запроса в webhook таблицы.
type Payload struct {
	ClientName      string `json:"clientName"`
	ClientEmail     string `json:"clientEmail"`
	ScopeOfWork     string `json:"scopeOfWork"`
	PriceRange      string `json:"priceRange"`
	JobDuration     string `json:"jobDuration"`
	AdditionalNotes string `json:"additionalNotes"`
	CreatedAt       string `json:"createdAt"`
}

// PayloadSchema контракт тела webhook.
const PayloadSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "required": ["clientName", "clientEmail", "scopeOfWork", "priceRange", "jobDuration", "additionalNotes", "createdAt"],
  "properties": {
    "clientName":      {"type": "string", "minLength": 1},
    "clientEmail":     {"type": "string"},
    "scopeOfWork":     {"type": "string", "minLength": 1},
    "priceRange":      {"type": "string", "minLength": 1},
    "jobDuration":     {"type": "string", "minLength": 1},
    "additionalNotes": {"type": "string"},
    "createdAt":       {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2} [0-9]{2}:[0-9]{2}:[0-9]{2}$"}
  }
}`

var payloadSchema = gojsonschema.NewStringLoader(PayloadSchema)

// Payload собирает тело webhook; отсутствующие заметки и email становятся пустыми строками.
func (p *Projector) Payload(proposal *entity.Proposal) Payload {
	return Payload{
		ClientName:      proposal.ClientName(),
		ClientEmail:     proposal.ClientEmail(),
		ScopeOfWork:     proposal.ScopeOfWork(),
		PriceRange:      proposal.PriceRange(),
		JobDuration:     proposal.JobDuration(),
		AdditionalNotes: proposal.MeetingNotes(),
		CreatedAt:       p.timestamp(proposal.CreatedAt()),
	}
}

// PayloadJSON сериализованное тело webhook.
func (p *Projector) PayloadJSON(proposal *entity.Proposal) ([]byte, error) {
	raw, err := json.Marshal(p.Payload(proposal))
	if err != nil {
		return nil, fmt.Errorf("formatter: не удалось сериализовать payload: %w", err)
	}
	return raw, nil
}

// ValidatePayload проверяет тело по PayloadSchema.
func ValidatePayload(raw []byte) error {
	result, err := gojsonschema.Validate(payloadSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("formatter: ошибка проверки payload: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("formatter: payload не соответствует схеме: %s", strings.Join(errs, "; "))
	}
	return nil
}

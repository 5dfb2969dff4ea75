package formatter

import (
	"regexp"
	"strings"
	"time"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
)

// CSVContentType тип выгрузки.
const CSVContentType = "text/csv;charset=utf-8"

var whitespaceRun = regexp.MustCompile(`[\s\p{Z}]+`)

type csvCell struct {
	value string
	// alwaysQuote свободный текст (scope, notes) всегда в кавычках.
	alwaysQuote bool
}

// CSVHeader строка заголовков для текущего набора колонок.
func (p *Projector) CSVHeader() string {
	headers := []string{"Client Name"}
	if p.opts.CSV.IncludeEmail {
		headers = append(headers, "Client Email")
	}
	headers = append(headers, "Scope of Work", "Price Range", "Job Duration")
	if p.opts.CSV.IncludeNotes {
		headers = append(headers, "Additional Notes")
	}
	headers = append(headers, "Created At")
	return strings.Join(headers, ",")
}

// CSVRow строка данных в порядке колонок CSVHeader.
func (p *Projector) CSVRow(proposal *entity.Proposal) string {
	cells := []csvCell{{value: proposal.ClientName()}}
	if p.opts.CSV.IncludeEmail {
		cells = append(cells, csvCell{value: proposal.ClientEmail()})
	}
	cells = append(cells,
		csvCell{value: proposal.ScopeOfWork(), alwaysQuote: true},
		csvCell{value: proposal.PriceRange()},
		csvCell{value: proposal.JobDuration()},
	)
	if p.opts.CSV.IncludeNotes {
		cells = append(cells, csvCell{value: proposal.MeetingNotes(), alwaysQuote: true})
	}
	cells = append(cells, csvCell{value: p.timestamp(proposal.CreatedAt())})

	out := make([]string, len(cells))
	for i, cell := range cells {
		out[i] = p.escapeCell(cell)
	}
	return strings.Join(out, ",")
}

// CSV документ из двух строк: заголовок и данные, разделённые "\n".
func (p *Projector) CSV(proposal *entity.Proposal) string {
	return p.CSVHeader() + "\n" + p.CSVRow(proposal)
}

// CSVFilename имя файла выгрузки: proposal_{имя в нижнем регистре, пробелы -> _}_{yyyyMMdd}.csv.
// Дата берётся на момент выгрузки, а не createdAt.
func (p *Projector) CSVFilename(proposal *entity.Proposal, exportedAt time.Time) string {
	name := whitespaceRun.ReplaceAllString(strings.ToLower(proposal.ClientName()), "_")
	return "proposal_" + name + "_" + exportedAt.In(p.opts.Location).Format("20060102") + ".csv"
}

func (p *Projector) escapeCell(cell csvCell) string {
	escaped := strings.ReplaceAll(cell.value, `"`, `""`)

	quote := cell.alwaysQuote
	if !quote && p.opts.CSV.Quoting == QuotingRFC4180 {
		quote = strings.ContainsAny(cell.value, ",\"\r\n")
	}
	if quote {
		return `"` + escaped + `"`
	}
	return escaped
}

// Package formatter строит представления зафиксированного предложения:
// текст письма, mailto-ссылку, CSV и JSON для webhook.
// Все функции чистые: одна и та же запись всегда даёт одинаковые байты.
package formatter

import (
	"time"
)

// TimestampLayout формат createdAt в CSV и payload.
const TimestampLayout = "2006-01-02 15:04:05"

// Quoting режим экранирования CSV.
type Quoting string

const (
	// QuotingRFC4180 scope и notes всегда в кавычках, остальные поля только при запятой, кавычке или переводе строки.
	QuotingRFC4180 Quoting = "rfc4180"
	// QuotingLegacy scope и notes всегда в кавычках, остальные поля никогда.
	QuotingLegacy Quoting = "legacy"
)

// Sender подпись в конце письма.
type Sender struct {
	Name    string
	Company string
	Email   string
}

// DefaultSender подпись по умолчанию.
var DefaultSender = Sender{
	Name:    "Erich",
	Company: "Otto's Contracting",
	Email:   "erich@ottoscontracting.com",
}

type CSVOptions struct {
	IncludeEmail bool
	IncludeNotes bool
	Quoting      Quoting
}

type Options struct {
	Sender   Sender
	CSV      CSVOptions
	Location *time.Location
}

// DefaultOptions полный набор колонок, RFC 4180, локальная зона.
func DefaultOptions() Options {
	return Options{
		Sender: DefaultSender,
		CSV: CSVOptions{
			IncludeEmail: true,
			IncludeNotes: true,
			Quoting:      QuotingRFC4180,
		},
		Location: time.Local,
	}
}

// Projector строит представления записи по фиксированным настройкам.
type Projector struct {
	opts Options
}

func NewProjector(opts Options) *Projector {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.CSV.Quoting == "" {
		opts.CSV.Quoting = QuotingRFC4180
	}
	if opts.Sender == (Sender{}) {
		opts.Sender = DefaultSender
	}
	return &Projector{opts: opts}
}

func (p *Projector) timestamp(t time.Time) string {
	return t.In(p.opts.Location).Format(TimestampLayout)
}

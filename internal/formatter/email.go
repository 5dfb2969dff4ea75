package formatter

import (
	"strings"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
)

const (
	emailIntro = "Thank you for the opportunity to discuss your project. " +
		"Based on our consultation, I'm pleased to provide this initial proposal for your consideration."
	emailClosing = "This is an early assessment based on our discussion. " +
		"I would be happy to schedule a follow-up meeting to discuss the details further and provide a more comprehensive proposal."

	// Шаблон начинается с пустой строки и заканчивается переводом строки с двумя пробелами.
	emailLead = "\n"
	emailTail = "\n  "
)

// EmailSubject тема письма.
func (p *Projector) EmailSubject(proposal *entity.Proposal) string {
	return "Proposal for " + proposal.ClientName()
}

// EmailBody текст письма. Значения полей вставляются как есть.
func (p *Projector) EmailBody(proposal *entity.Proposal) string {
	var b strings.Builder

	b.WriteString(emailLead)
	b.WriteString("Dear " + proposal.ClientName() + ",\n\n")
	b.WriteString(emailIntro + "\n\n")
	b.WriteString("Project Scope:\n" + proposal.ScopeOfWork() + "\n\n")
	b.WriteString("Estimated Price Range:\n" + proposal.PriceRange() + "\n\n")
	b.WriteString("Estimated Timeline:\n" + proposal.JobDuration() + "\n\n")
	if proposal.HasMeetingNotes() {
		b.WriteString("Additional Notes:\n" + proposal.MeetingNotes() + "\n\n")
	}
	b.WriteString(emailClosing + "\n\n")
	b.WriteString("Best regards,\n")
	b.WriteString(p.opts.Sender.Name + "\n")
	b.WriteString(p.opts.Sender.Company + "\n")
	b.WriteString(p.opts.Sender.Email)
	b.WriteString(emailTail)

	return b.String()
}

// MailtoURI ссылка для почтового клиента: получатель clientEmail, тема и тело в percent-encoding.
func (p *Projector) MailtoURI(proposal *entity.Proposal) string {
	return "mailto:" + escapeComponent(proposal.ClientEmail(), "@") +
		"?subject=" + escapeComponent(p.EmailSubject(proposal), "") +
		"&body=" + escapeComponent(p.EmailBody(proposal), "")
}

// escapeComponent кодирует всё, кроме A-Z a-z 0-9 - _ . ! ~ * ' ( ) и символов keep.
// Пробел становится %20, а не "+".
func escapeComponent(s, keep string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) || strings.IndexByte(keep, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"jane@x.com",
		"a.b+c@sub.domain.org",
		"weird!#$%@host.io",
		"x@y.z",
		"user@domain.co.uk",
	}
	for _, email := range valid {
		assert.NoError(t, ValidateEmail(email), email)
	}

	invalid := []string{
		"",
		"jane",
		"jane@",
		"jane@x",
		"@x.com",
		"jane@x.",
		"jane doe@x.com",
		" jane@x.com",
		"jane@x.com ",
		"jane@@x.com",
		"jane@x@y.com",
		"jane\t@x.com",
		"jane @x.com",
	}
	for _, email := range invalid {
		assert.Error(t, ValidateEmail(email), "%q", email)
	}
}

func TestValidateLength(t *testing.T) {
	assert.NoError(t, ValidateLength("x", "ёжик", 1, 4))
	assert.Error(t, ValidateLength("x", "ёжики", 1, 4))
	assert.Error(t, ValidateLength("x", "", 1, 4))
}

func TestValidateWebhookURL(t *testing.T) {
	assert.NoError(t, ValidateWebhookURL("https://script.google.com/macros/s/abc/exec"))
	assert.NoError(t, ValidateWebhookURL("http://localhost:8081/hook"))

	assert.Error(t, ValidateWebhookURL(""))
	assert.Error(t, ValidateWebhookURL("ftp://example.com/hook"))
	assert.Error(t, ValidateWebhookURL("example.com/hook"))
	assert.Error(t, ValidateWebhookURL("https://"))
	assert.Error(t, ValidateWebhookURL("https://example.com/"+strings.Repeat("a", MaxWebhookURLLength)))
}

package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MaxClientNameLength  = 200
	MaxScopeOfWorkLength = 10000
	MaxNotesLength       = 20000
	MaxWebhookURLLength  = 2048
)

// Форма local@domain.tld: без пробельных символов и без второго @ в каждой части.
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет только форму local@domain.tld, без проверки по RFC.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("некорректный формат email")
	}
	return nil
}

// IsBlank сообщает, что строка пуста или состоит из пробелов.
func IsBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// ValidateWebhookURL проверяет адрес webhook: абсолютный http(s) URL с хостом.
func ValidateWebhookURL(link string) error {
	linkStr := strings.TrimSpace(link)
	if linkStr == "" {
		return fmt.Errorf("webhook URL не может быть пустым")
	}

	if err := ValidateLength("webhook URL", linkStr, 0, MaxWebhookURLLength); err != nil {
		return err
	}

	parsedURL, err := url.Parse(linkStr)
	if err != nil {
		return fmt.Errorf("некорректный формат URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("ссылка должна начинаться с http:// или https://")
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("ссылка должна содержать доменное имя")
	}

	return nil
}

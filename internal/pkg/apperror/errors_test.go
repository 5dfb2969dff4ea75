package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingFields(t *testing.T) {
	err := MissingFields("clientName", "priceRange")

	assert.Equal(t, ErrCodeMissingFields, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Equal(t, []string{"clientName", "priceRange"}, err.Fields)
	assert.True(t, IsMissingFields(err))
	assert.False(t, IsInvalidEmail(err))
}

func TestDeliveryFailure_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := DeliveryFailure(cause, "не удалось отправить")

	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsDeliveryFailure(fmt.Errorf("send: %w", err)))
}

func TestCodeToHTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrCodeNotFound:      http.StatusNotFound,
		ErrCodeInvalidEmail:  http.StatusBadRequest,
		ErrCodeValidation:    http.StatusBadRequest,
		ErrCodeConflict:      http.StatusConflict,
		ErrCodeDatabaseError: http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, New(code, "x").HTTPStatus, string(code))
	}
}

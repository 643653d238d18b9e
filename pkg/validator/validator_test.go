package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Name        string `validate:"required"`
	Weight      int    `validate:"min=1,max=10"`
	TalkType    string `validate:"oneof=keynote regular lightning workshop"`
	CFPDeadline string `validate:"omitempty,datetime=2006-01-02"`
}

func TestFormatValidationError(t *testing.T) {
	v := validator.New()
	err := v.Struct(sampleRequest{Weight: 11, TalkType: "panel", CFPDeadline: "tomorrow"})

	msg := FormatValidationError(err)
	assert.Contains(t, msg, "Name is required")
	assert.Contains(t, msg, "Weight must be at most 10")
	assert.Contains(t, msg, "Talk type must be one of [keynote regular lightning workshop]")
	assert.Contains(t, msg, "CFP deadline must be a date in the form 2006-01-02")
}

func TestFormatValidationErrorPlainError(t *testing.T) {
	assert.Equal(t, "EOF", FormatValidationError(errors.New("EOF")))
}

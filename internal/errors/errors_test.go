package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := InvalidInput("p_alt must exceed p_null")
	wrapped := Wrap(base, "experiment size")

	assert.Equal(t, CodeInvalidInput, GetCode(wrapped))
	assert.True(t, IsInvalidInput(wrapped))
	assert.False(t, IsNumericDegeneracy(wrapped))
	assert.Equal(t, "experiment size: p_alt must exceed p_null", wrapped.Error())
}

func TestWrapForeignError(t *testing.T) {
	cause := stderrors.New("disk full")
	wrapped := Wrap(cause, "save workbook")

	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.ErrorIs(t, wrapped, cause)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "noop"))
	assert.Nil(t, Wrapf(nil, "noop %d", 1))
	assert.Nil(t, WithCode(CodeRenderError, nil))
}

func TestHasCodeThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", NumericDegeneracy("zero effect size"))

	assert.True(t, IsNumericDegeneracy(err))
	assert.True(t, IsAppError(err))
	assert.Equal(t, CodeNumericDegeneracy, GetCode(err))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeRenderError, stderrors.New("bad extension"))
	assert.Equal(t, CodeRenderError, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}

func TestNumericDegeneracyOf(t *testing.T) {
	err := NumericDegeneracyOf("zero effect size", InvalidInput("p_alt must exceed p_null"))

	assert.Equal(t, CodeNumericDegeneracy, GetCode(err))
	assert.True(t, IsNumericDegeneracy(err))
	assert.True(t, IsInvalidInput(err))
	assert.Equal(t, "zero effect size: p_alt must exceed p_null", err.Error())
}

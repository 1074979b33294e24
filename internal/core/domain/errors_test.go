package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var allErrors = []error{
	ErrInvalidRequest,
	ErrMissingSource,
	ErrUnsupportedSourceType,
	ErrFileNotFound,
	ErrEncoding,
	ErrMissingQueryOrTable,
	ErrTableNotFound,
	ErrLengthMismatch,
	ErrDimensionMismatch,
	ErrCollectionNotReady,
	ErrUnknownProvider,
	ErrMissingCredential,
	ErrEmptyQuestion,
}

func TestErrors_UniqueMessages(t *testing.T) {
	seen := make(map[string]bool, len(allErrors))
	for _, err := range allErrors {
		msg := err.Error()
		assert.NotEmpty(t, msg)
		assert.False(t, seen[msg], "duplicate message %q", msg)
		seen[msg] = true
	}
}

func TestErrors_NeverMatchEachOther(t *testing.T) {
	for i, a := range allErrors {
		for j, b := range allErrors {
			if i != j {
				assert.NotErrorIs(t, a, b, "%v matched %v", a, b)
			}
		}
	}
}

func TestErrors_WrappedStillMatch(t *testing.T) {
	err := fmt.Errorf("%w: users", ErrTableNotFound)
	assert.ErrorIs(t, err, ErrTableNotFound)
	assert.Equal(t, "table does not exist: users", err.Error())

	double := fmt.Errorf("%w: %w", ErrInvalidRequest, ErrEmptyQuestion)
	assert.ErrorIs(t, double, ErrInvalidRequest)
	assert.ErrorIs(t, double, ErrEmptyQuestion)
	assert.NotErrorIs(t, double, ErrMissingSource)

	joined := errors.Join(ErrDimensionMismatch, ErrCollectionNotReady)
	assert.ErrorIs(t, joined, ErrCollectionNotReady)
}

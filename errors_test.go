package saletrack_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/saletrack"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := saletrack.Errorf(saletrack.ENOTFOUND, "snapshot for %q not found", "chrono24")

	assert.Equal(t, saletrack.ENOTFOUND, saletrack.ErrorCode(err))
	assert.Equal(t, "snapshot for \"chrono24\" not found", saletrack.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, saletrack.ErrorCode(nil))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, saletrack.EINTERNAL, saletrack.ErrorCode(errors.New("boom")))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, saletrack.ErrorMessage(nil))
}

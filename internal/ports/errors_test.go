package ports

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsStorageError(t *testing.T) {
	assert.True(t, IsStorageError(fmt.Errorf("close trade 3: %w: %w", ErrUpdateFailed, fmt.Errorf("database is locked"))))
	assert.True(t, IsStorageError(fmt.Errorf("list: %w", ErrQueryFailed)))
	assert.False(t, IsStorageError(fmt.Errorf("trade 3: %w", ErrNotFound)))
	assert.False(t, IsStorageError(nil))
}

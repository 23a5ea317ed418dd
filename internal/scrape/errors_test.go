package scrape_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

func TestSetupError(t *testing.T) {
	t.Parallel()

	cause := errors.New("map file missing")
	err := scrape.NewSetupError("entity map", cause)

	assert.Equal(t, "setup entity map: map file missing", err.Error())
	assert.True(t, scrape.IsSetupError(err))
	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("stage failed: %w", err)
	assert.True(t, scrape.IsSetupError(wrapped))

	assert.False(t, scrape.IsSetupError(errors.New("transient")))
	assert.False(t, scrape.IsSetupError(nil))
}

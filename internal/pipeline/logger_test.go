package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"", "debug", "warn"} {
		logger := NewLogger(level)
		require.NotNil(t, logger, level)
		assert.NotPanics(t, func() {
			logOutcome(logger, newOutcome("feed", "politics", 3, nil))
			logOutcome(logger, newOutcome("naver", "economy", 0, errors.New("status 500")))
		})
	}
}

func TestLogOutcomeNilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		logOutcome(nil, FetchOutcome{Source: "naver", Status: FetchSkipped})
	})
}

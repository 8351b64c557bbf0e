package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfidenceFromScore(t *testing.T) {
	tests := []struct {
		score    float64
		expected Confidence
	}{
		{1.0, ConfidenceHigh},
		{0.8, ConfidenceHigh},
		{0.79, ConfidenceMedium},
		{0.5, ConfidenceMedium},
		{0.49, ConfidenceLow},
		{0.0, ConfidenceLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ConfidenceFromScore(tt.score), "score %v", tt.score)
	}
}

func TestConfidenceFloor(t *testing.T) {
	assert.Equal(t, 0.8, ConfidenceHigh.Floor())
	assert.Equal(t, 0.5, ConfidenceMedium.Floor())
	assert.Equal(t, 0.3, ConfidenceLow.Floor())
	assert.Equal(t, 0.3, Confidence("bogus").Floor())
}

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultClassifier(t *testing.T) {
	classify := DefaultClassifier()
	tests := []struct {
		name string
		want Phase
	}{
		{"validation", PhasePre},
		{"PayloadValidationHandler", PhasePre},
		{"tenant-permission", PhasePre},
		{"autofill-ids", PhasePre},
		{"audit", PhasePre},
		{"result-log", PhasePost},
		{"cache-invalidate", PhasePost},
		{"", PhasePost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.name))
		})
	}
}

func TestKeywordClassifierIgnoresBlankKeywords(t *testing.T) {
	classify := KeywordClassifier("", "  ", "Guard")
	assert.Equal(t, PhasePre, classify("rate-guard"))
	assert.Equal(t, PhasePost, classify("anything"))
	assert.Equal(t, "pre", PhasePre.String())
	assert.Equal(t, "post", PhasePost.String())
}

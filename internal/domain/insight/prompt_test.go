package insight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildUserPromptSections(t *testing.T) {
	tests := []struct {
		name     string
		question string
		keywords string
		source   string
		contains []string
		omits    []string
	}{
		{
			name:     "question only",
			question: "Where is churn coming from?",
			contains: []string{"Question: Where is churn coming from?"},
			omits:    []string{"Focus keywords:", "Source material:"},
		},
		{
			name:     "all sections",
			question: "What changed?",
			keywords: "pricing, churn",
			source:   "Body of the report.",
			contains: []string{"Question: What changed?", "Focus keywords: pricing, churn", "Source material:", "Body of the report."},
		},
		{
			name:   "source only",
			source: "Raw pasted text.",
			contains: []string{
				"Raw pasted text.",
			},
			omits: []string{"Question:", "Focus keywords:"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			prompt := BuildUserPrompt(tt.question, tt.keywords, tt.source)
			for _, want := range tt.contains {
				require.Contains(t, prompt, want)
			}
			for _, unwanted := range tt.omits {
				require.NotContains(t, prompt, unwanted)
			}
			// The format contract is always attached so responses stay
			// decodable.
			require.Contains(t, prompt, keywordsMarker)
			require.Contains(t, prompt, titlesMarker)
			require.Contains(t, prompt, detailsMarker)
		})
	}
}

func TestPromptRoundTripsThroughDecoder(t *testing.T) {
	// A model that answers with the literal example from the contract must
	// produce a decodable response.
	prompt := BuildUserPrompt("any question", "", "")
	idx := strings.Index(prompt, keywordsMarker)
	require.Greater(t, idx, 0)

	result := Decode(prompt[idx:])
	require.Nil(t, result.Error)
	require.Equal(t, []string{"first keyword", "second keyword"}, result.Keywords)
	require.Contains(t, result.Insights, "first keyword")
}

func TestPromptKeyStable(t *testing.T) {
	a := PromptKey("prompt one")
	b := PromptKey("prompt one")
	c := PromptKey("prompt two")

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Len(t, a, 64)
}

package insight

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalysisResultWireFormat(t *testing.T) {
	result := AnalysisResult{
		Keywords: []string{"Market Analysis"},
		Insights: map[string]Insight{
			"Market Analysis": {
				Titles:  []string{"Demand concentrates upmarket"},
				Details: []string{"Commission a segmentation study"},
			},
		},
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var wire struct {
		Keywords []string `json:"keywords"`
		Insights map[string]struct {
			Titles  []string `json:"titles"`
			Details []string `json:"insights"`
		} `json:"insights"`
		Error json.RawMessage `json:"error"`
	}
	require.NoError(t, json.Unmarshal(data, &wire))
	require.Equal(t, result.Keywords, wire.Keywords)
	require.Equal(t, []string{"Commission a segmentation study"}, wire.Insights["Market Analysis"].Details)
	require.Equal(t, "null", string(wire.Error))
}

func TestAnalysisResultWireFormatError(t *testing.T) {
	msg := "parse failed"
	data, err := json.Marshal(AnalysisResult{
		Keywords: []string{},
		Insights: map[string]Insight{},
		Error:    &msg,
	})
	require.NoError(t, err)
	require.Contains(t, string(data), `"error":"parse failed"`)

	var round AnalysisResult
	require.NoError(t, json.Unmarshal(data, &round))
	require.True(t, round.Failed())
}

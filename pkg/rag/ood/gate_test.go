package ood

import (
	"testing"

	"admissions-rag-be/pkg/retrieval"

	"github.com/stretchr/testify/assert"
)

func TestDisabledGateNeverDeflects(t *testing.T) {
	gate := NewGate(0.10, false)

	verdict := gate.Evaluate("hôm nay mấy giờ", nil)
	assert.False(t, verdict.IsOOD)
}

func TestKeywordOverrideBeatsEmptyRetrieval(t *testing.T) {
	gate := NewGate(0.10, true)

	// Empty retrieval, but the question carries a domain keyword.
	verdict := gate.Evaluate("ngành điều dưỡng học mấy năm", nil)
	assert.False(t, verdict.IsOOD)
}

func TestEmptyRetrievalWithoutKeywordDeflects(t *testing.T) {
	gate := NewGate(0.10, true)

	verdict := gate.Evaluate("hôm nay mấy giờ", nil)
	assert.True(t, verdict.IsOOD)
	assert.Equal(t, "Không tìm thấy tài liệu liên quan", verdict.Reason)
}

func TestLowTopScoreDeflects(t *testing.T) {
	gate := NewGate(0.10, true)

	docs := []retrieval.Document{
		{Content: "tài liệu 1", Score: 0.02},
		{Content: "tài liệu 2", Score: 0.05},
	}
	verdict := gate.Evaluate("thời tiết hôm nay thế nào", docs)
	assert.True(t, verdict.IsOOD)
	assert.Contains(t, verdict.Reason, "0.05")
}

func TestScoreAtThresholdPasses(t *testing.T) {
	gate := NewGate(0.10, true)

	docs := []retrieval.Document{{Content: "tài liệu", Score: 0.10}}
	verdict := gate.Evaluate("thời tiết hôm nay thế nào", docs)
	assert.False(t, verdict.IsOOD)
}

func TestKeywordOverrideBeatsLowScore(t *testing.T) {
	gate := NewGate(0.10, true)

	docs := []retrieval.Document{{Content: "tài liệu", Score: 0.01}}
	verdict := gate.Evaluate("học phí một kỳ bao nhiêu", docs)
	assert.False(t, verdict.IsOOD)
}

func TestMissingScoresTreatedAsZero(t *testing.T) {
	gate := NewGate(0.10, true)

	docs := []retrieval.Document{{Content: "tài liệu không có điểm"}}
	verdict := gate.Evaluate("thời tiết hôm nay thế nào", docs)
	assert.True(t, verdict.IsOOD)
}

func TestFixtureKeywords(t *testing.T) {
	gate := NewGate(0.10, true).WithKeywords([]string{"robot"})

	assert.False(t, gate.Evaluate("robot có tốt không", nil).IsOOD)
	assert.True(t, gate.Evaluate("xe máy có tốt không", nil).IsOOD)
}

func TestFallbackIsFixed(t *testing.T) {
	gate := NewGate(0.10, true)
	assert.Equal(t, DefaultFallbackResponse, gate.Fallback())
}

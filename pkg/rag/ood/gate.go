package ood

import (
	"fmt"
	"sort"
	"strings"

	"admissions-rag-be/pkg/retrieval"
)

const DefaultSimilarityThreshold = 0.10

// DefaultFallbackResponse is returned verbatim for deflected questions.
const DefaultFallbackResponse = "Xin lỗi, hiện tại tôi chỉ có thể trả lời các câu hỏi liên quan đến quy trình " +
	"tuyển sinh và thông tin của trường. " +
	"Vui lòng hỏi tôi về thông tin tuyển sinh, chương trình học, " +
	"hoặc các quy trình nhập học."

// Verdict is the transient outcome of one OOD evaluation.
type Verdict struct {
	IsOOD  bool
	Reason string
}

// Gate decides whether a question is answerable from the retrieved corpus or
// must be deflected. Semantic search underperforms on short or colloquial
// phrasing, so a keyword allowlist overrides low retrieval scores.
type Gate struct {
	threshold float64
	enabled   bool
	keywords  []string
	fallback  string
}

func NewGate(threshold float64, enabled bool) *Gate {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Gate{
		threshold: threshold,
		enabled:   enabled,
		keywords:  defaultEducationKeywords,
		fallback:  DefaultFallbackResponse,
	}
}

// WithKeywords overrides the domain-keyword allowlist (tests use small
// fixture lists).
func (g *Gate) WithKeywords(keywords []string) *Gate {
	g.keywords = keywords
	return g
}

// Evaluate classifies the question against the retrieved documents.
func (g *Gate) Evaluate(question string, docs []retrieval.Document) (verdict Verdict) {
	if !g.enabled {
		return Verdict{}
	}

	// Scoring bugs must never block a potentially valid question.
	defer func() {
		if r := recover(); r != nil {
			verdict = Verdict{}
		}
	}()

	if g.isEducationRelated(question) {
		return Verdict{}
	}

	if len(docs) == 0 {
		return Verdict{IsOOD: true, Reason: "Không tìm thấy tài liệu liên quan"}
	}

	sorted := append([]retrieval.Document(nil), docs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	if top := sorted[0].Score; top < g.threshold {
		return Verdict{
			IsOOD:  true,
			Reason: fmt.Sprintf("Độ tương đồng thấp (score: %.2f)", top),
		}
	}
	return Verdict{}
}

// Fallback returns the fixed deflection message.
func (g *Gate) Fallback() string {
	return g.fallback
}

func (g *Gate) isEducationRelated(question string) bool {
	lower := strings.ToLower(question)
	for _, keyword := range g.keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

var defaultEducationKeywords = []string{
	"học", "ngành", "khoa", "đại học", "cao đẳng", "tuyển sinh", "điểm",
	"chuyên ngành", "học phí", "đào tạo", "trường", "lớp", "giảng viên",
	"sinh viên", "học bổng", "ký túc xá", "chứng chỉ", "tốt nghiệp",
	"tín chỉ", "môn học", "điều dưỡng", "công nghệ", "kinh tế", "quản trị",
	"luật", "kỹ sư",
}

package prompt

import (
	"fmt"
	"testing"

	"admissions-rag-be/pkg/chat"
	"admissions-rag-be/pkg/rag/analyzer"
	"admissions-rag-be/pkg/retrieval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessageOrder(t *testing.T) {
	a := NewAssembler(DefaultPersona(), DefaultContact())

	msgs := a.Build("học phí bao nhiêu", nil, nil, analyzer.Analysis{Type: "general"})
	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "system", msgs[1].Role)
	assert.Equal(t, "system", msgs[2].Role)
	assert.Equal(t, "user", msgs[3].Role)
	assert.Equal(t, "học phí bao nhiêu", msgs[3].Content)
}

func TestBuildIsDeterministic(t *testing.T) {
	a := NewAssembler(DefaultPersona(), DefaultContact())
	docs := []retrieval.Document{{Content: "học phí ngành điều dưỡng là 20 triệu", Score: 0.8}}
	history := []chat.Message{{Role: chat.RoleUser, Content: "ngành điều dưỡng"}}
	analysis := analyzer.Analysis{Type: "fees_scholarships", ContextType: "follow_up"}

	first := a.Build("học phí sao?", docs, history, analysis)
	second := a.Build("học phí sao?", docs, history, analysis)
	assert.Equal(t, first, second)
}

func TestBuildLayersSpecializationAndContextHandling(t *testing.T) {
	a := NewAssembler(DefaultPersona(), DefaultContact())

	analysis := analyzer.Analysis{Type: "fees_scholarships", ContextType: "clarification"}
	msgs := a.Build("học phí", nil, nil, analysis)

	system := msgs[0].Content
	assert.Contains(t, system, "Hướng dẫn đặc biệt cho loại câu hỏi này")
	assert.Contains(t, system, "Mức học phí cụ thể theo từng ngành")
	assert.Contains(t, system, "Hướng dẫn xử lý ngữ cảnh")
	assert.Contains(t, system, "Giải thích chi tiết và dễ hiểu")
}

func TestBuildUnknownTypeSkipsSpecialization(t *testing.T) {
	a := NewAssembler(DefaultPersona(), DefaultContact())

	msgs := a.Build("xin chào", nil, nil, analyzer.Analysis{Type: "general"})
	assert.NotContains(t, msgs[0].Content, "Hướng dẫn đặc biệt")
	assert.NotContains(t, msgs[0].Content, "Hướng dẫn xử lý ngữ cảnh")
}

func TestBuildHistoryKeepsLastSixMessages(t *testing.T) {
	a := NewAssembler(DefaultPersona(), DefaultContact())

	var history []chat.Message
	for i := 0; i < 10; i++ {
		history = append(history, chat.Message{
			Role:    chat.RoleUser,
			Content: fmt.Sprintf("câu hỏi số %d", i),
		})
	}

	msgs := a.Build("tiếp", nil, history, analyzer.Analysis{Type: "general"})
	system := msgs[0].Content
	assert.NotContains(t, system, "câu hỏi số 3")
	assert.Contains(t, system, "câu hỏi số 4")
	assert.Contains(t, system, "câu hỏi số 9")
	assert.Contains(t, msgs[2].Content, "câu hỏi số 9")
}

func TestBuildRendersSpeakers(t *testing.T) {
	a := NewAssembler(DefaultPersona(), DefaultContact())

	history := []chat.Message{
		{Role: chat.RoleUser, Content: "ngành điều dưỡng"},
		{Role: chat.RoleAssistant, Content: "thông tin ngành điều dưỡng"},
	}
	msgs := a.Build("học phí sao?", nil, history, analyzer.Analysis{})
	assert.Contains(t, msgs[0].Content, "Người dùng: ngành điều dưỡng")
	assert.Contains(t, msgs[0].Content, "Tư vấn viên: thông tin ngành điều dưỡng")
}

func TestBuildDocumentsBlock(t *testing.T) {
	a := NewAssembler(DefaultPersona(), DefaultContact())

	docs := []retrieval.Document{
		{Content: "tài liệu một"},
		{Content: "tài liệu hai"},
	}
	msgs := a.Build("câu hỏi", docs, nil, analyzer.Analysis{})
	assert.Contains(t, msgs[1].Content, "tài liệu một")
	assert.Contains(t, msgs[1].Content, "tài liệu hai")

	empty := a.Build("câu hỏi", nil, nil, analyzer.Analysis{})
	assert.Contains(t, empty[1].Content, "không có tài liệu liên quan")
}

func TestZeroValuePersonaFallsBackToDefaults(t *testing.T) {
	a := NewAssembler(Persona{}, Contact{})

	msgs := a.Build("xin chào", nil, nil, analyzer.Analysis{})
	assert.Contains(t, msgs[0].Content, "Assistant")
	assert.Contains(t, msgs[0].Content, "chuyên nghiệp, trang trọng và có chuyên môn cao")
	assert.Contains(t, msgs[0].Content, "0236.3.650.403")
	assert.Contains(t, msgs[0].Content, "tuyensinh@donga.edu.vn")
}

func TestUnknownStyleUsesFallbackDirective(t *testing.T) {
	a := NewAssembler(Persona{Name: "Đông Á Bot", Style: "mysterious"}, DefaultContact())

	msgs := a.Build("xin chào", nil, nil, analyzer.Analysis{})
	assert.Contains(t, msgs[0].Content, "Đông Á Bot")
	assert.Contains(t, msgs[0].Content, fallbackStyle)
}

func TestUpdateSwapsPersona(t *testing.T) {
	a := NewAssembler(DefaultPersona(), DefaultContact())

	a.Update(Persona{Name: "Hoa", Style: "friendly"}, Contact{})
	msgs := a.Build("xin chào", nil, nil, analyzer.Analysis{})
	assert.Contains(t, msgs[0].Content, "Hoa")
	assert.Contains(t, msgs[0].Content, "thân thiện, gần gũi và dễ tiếp cận")
	// Contact untouched by the empty update.
	assert.Contains(t, msgs[0].Content, "0236.3.650.403")
}

package prompt

import (
	"fmt"
	"strings"
	"sync"

	"admissions-rag-be/pkg/chat"
	"admissions-rag-be/pkg/llm"
	"admissions-rag-be/pkg/rag/analyzer"
	"admissions-rag-be/pkg/retrieval"
)

// historyDepth limits the rendered conversation history to the last three
// exchanges.
const historyDepth = 6

// Assembler layers persona, specialization, conversation context and
// retrieval guidance into an ordered message sequence for the model.
// Output is deterministic for identical inputs. Persona and contact info can
// be swapped at runtime by a config reload.
type Assembler struct {
	mu      sync.RWMutex
	persona Persona
	contact Contact
}

func NewAssembler(persona Persona, contact Contact) *Assembler {
	if persona.Name == "" {
		persona = DefaultPersona()
	}
	if contact.Hotline == "" && contact.Email == "" {
		contact = DefaultContact()
	}
	return &Assembler{persona: persona, contact: contact}
}

// Update replaces the persona and contact configuration. Used by the admin
// reload endpoint; in-flight builds keep the snapshot they started with.
func (a *Assembler) Update(persona Persona, contact Contact) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if persona.Name != "" {
		a.persona = persona
	}
	if contact.Hotline != "" || contact.Email != "" {
		a.contact = contact
	}
}

// Snapshot returns the current persona and contact configuration.
func (a *Assembler) Snapshot() (Persona, Contact) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.persona, a.contact
}

// Build produces the ordered prompt: one layered system block, the retrieved
// documents, the chat history, then the user question.
func (a *Assembler) Build(question string, docs []retrieval.Document, history []chat.Message, analysis analyzer.Analysis) []llm.Message {
	persona, contact := a.Snapshot()

	var system strings.Builder
	writePersona(&system, persona)
	writeSpecialization(&system, analysis)
	writeContextHandling(&system, analysis)
	writeHistory(&system, history)
	writeRetrievalUsage(&system)
	writeContact(&system, contact)

	return []llm.Message{
		{Role: "system", Content: system.String()},
		{Role: "system", Content: "Thông tin liên quan từ cơ sở dữ liệu:\n" + formatDocuments(docs)},
		{Role: "system", Content: "Lịch sử cuộc trò chuyện: " + formatHistory(history)},
		{Role: "user", Content: question},
	}
}

func writePersona(b *strings.Builder, persona Persona) {
	fmt.Fprintf(b,
		"Bạn là %s, một chuyên viên tư vấn tuyển sinh %s của Trường Đại học Đông Á.\n",
		persona.Name, StyleDirective(persona.Style))
	b.WriteString("Bạn có khả năng hiểu ngữ cảnh cuộc trò chuyện và đưa ra những câu trả lời chính xác, hữu ích.\n")
	if persona.Description != "" {
		b.WriteString(persona.Description)
		b.WriteString("\n")
	}

	b.WriteString(`
**Nhiệm vụ chính**:
- Tư vấn chính xác về tuyển sinh, ngành học, học phí, học bổng và mọi thông tin liên quan đến trường
- Hiểu và sử dụng ngữ cảnh cuộc trò chuyện để đưa ra câu trả lời phù hợp
- Luôn dựa vào thông tin chính thức từ dữ liệu được cung cấp

**Nguyên tắc trả lời**:
1. **Ngữ cảnh**: Luôn xem xét ngữ cảnh cuộc trò chuyện trước đó để hiểu đúng ý định của người hỏi
2. **Chính xác**: Chỉ sử dụng thông tin có trong dữ liệu được cung cấp
3. **Thân thiện**: Giọng văn ấm áp, chuyên nghiệp nhưng gần gũi
4. **Cụ thể**: Đưa ra thông tin chi tiết, có cấu trúc rõ ràng
5. **Hướng dẫn**: Luôn sẵn sàng hướng dẫn bước tiếp theo hoặc cung cấp thông tin liên hệ khi cần

**Không được**:
- Phỏng đoán thông tin không có trong dữ liệu
- Bỏ qua ngữ cảnh cuộc trò chuyện
- Trả lời máy móc, thiếu cảm xúc
`)
}

func writeSpecialization(b *strings.Builder, analysis analyzer.Analysis) {
	guidance, ok := specializedGuidance[analysis.Type]
	if !ok {
		return
	}
	b.WriteString("\n**Hướng dẫn đặc biệt cho loại câu hỏi này**:\n")
	b.WriteString(guidance)
}

// writeContextHandling layers independently of the specialization block.
func writeContextHandling(b *strings.Builder, analysis analyzer.Analysis) {
	if analysis.ContextType == "" {
		return
	}
	guidance, ok := specializedGuidance[analysis.ContextType]
	if !ok {
		return
	}
	b.WriteString("\n**Hướng dẫn xử lý ngữ cảnh**:\n")
	b.WriteString(guidance)
}

func writeHistory(b *strings.Builder, history []chat.Message) {
	if len(history) == 0 {
		return
	}

	b.WriteString("\n**Ngữ cảnh cuộc trò chuyện**:\n")
	b.WriteString("Hãy xem xét thông tin sau từ cuộc trò chuyện trước đó để hiểu rõ hơn câu hỏi hiện tại:\n\n")

	recent := history
	if len(recent) > historyDepth {
		recent = recent[len(recent)-historyDepth:]
	}
	for _, msg := range recent {
		fmt.Fprintf(b, "%s: %s\n", speakerName(msg.Role), msg.Content)
	}

	b.WriteString("\nHãy sử dụng ngữ cảnh này để đưa ra câu trả lời phù hợp và có liên kết với cuộc trò chuyện.\n")
}

func writeRetrievalUsage(b *strings.Builder) {
	b.WriteString(`
**Sử dụng thông tin từ tài liệu**:
- Dựa vào thông tin liên quan từ cơ sở dữ liệu để trả lời
- Nếu không tìm thấy thông tin cần thiết, hãy thành thật nói rằng bạn không có thông tin đó
- Luôn ưu tiên thông tin chính thức từ trường
- Có thể tham khảo lịch sử trò chuyện để hiểu rõ hơn ngữ cảnh
`)
}

func writeContact(b *strings.Builder, contact Contact) {
	b.WriteString("\n**Thông tin liên hệ khi cần hỗ trợ thêm**:\n")
	fmt.Fprintf(b, "Hotline: %s\n", contact.Hotline)
	fmt.Fprintf(b, "Email: %s\n", contact.Email)
	fmt.Fprintf(b, "Website: %s\n", contact.Website)
	fmt.Fprintf(b, "Địa chỉ: %s\n", contact.Address)
}

func formatDocuments(docs []retrieval.Document) string {
	if len(docs) == 0 {
		return "(không có tài liệu liên quan)"
	}
	parts := make([]string, len(docs))
	for i, doc := range docs {
		parts[i] = doc.Content
	}
	return strings.Join(parts, "\n\n")
}

func formatHistory(history []chat.Message) string {
	if len(history) == 0 {
		return "(chưa có)"
	}

	recent := history
	if len(recent) > historyDepth {
		recent = recent[len(recent)-historyDepth:]
	}
	lines := make([]string, len(recent))
	for i, msg := range recent {
		lines[i] = fmt.Sprintf("%s: %s", speakerName(msg.Role), msg.Content)
	}
	return strings.Join(lines, "\n")
}

func speakerName(role chat.Role) string {
	if role == chat.RoleUser {
		return "Người dùng"
	}
	return "Tư vấn viên"
}

var specializedGuidance = map[string]string{
	"specific_program": `Đây là câu hỏi về chương trình đào tạo cụ thể. Hãy tập trung vào:
- Thông tin chi tiết về ngành/chuyên ngành
- Cơ hội nghề nghiệp sau tốt nghiệp
- Điều kiện đầu vào và yêu cầu học tập
- Cấu trúc chương trình và thời gian đào tạo
`,
	"admission_process": `Đây là câu hỏi về quy trình tuyển sinh. Hãy tập trung vào:
- Các bước cụ thể trong quy trình xét tuyển
- Thời gian và deadline quan trọng
- Hồ sơ và giấy tờ cần thiết
- Phương thức xét tuyển và điểm chuẩn
`,
	"fees_scholarships": `Đây là câu hỏi về tài chính. Hãy tập trung vào:
- Mức học phí cụ thể theo từng ngành
- Các loại học bổng và điều kiện nhận
- Hình thức thanh toán và hỗ trợ tài chính
- So sánh chi phí với lợi ích nhận được
`,
	"facilities_campus": `Đây là câu hỏi về cơ sở vật chất. Hãy tập trung vào:
- Mô tả chi tiết các tiện ích và cơ sở
- Vị trí và cách thức tiếp cận
- Chất lượng và tình trạng hiện tại
- Dịch vụ hỗ trợ sinh viên
`,
	"career_prospects": `Đây là câu hỏi về triển vọng nghề nghiệp. Hãy tập trung vào:
- Cơ hội việc làm cụ thể sau tốt nghiệp
- Mức lương và điều kiện làm việc
- Các công ty và đối tác tuyển dụng
- Hỗ trợ tìm việc từ trường
`,
	"follow_up": `Đây là câu hỏi tiếp theo trong cuộc trò chuyện. Hãy:
- Tham khảo thông tin đã thảo luận trước đó
- Bổ sung thêm chi tiết liên quan
- Làm rõ những điểm chưa được giải thích đầy đủ
- Kết nối với ngữ cảnh cuộc trò chuyện
`,
	"clarification": `Người dùng cần làm rõ thông tin. Hãy:
- Giải thích chi tiết và dễ hiểu
- Đưa ra ví dụ cụ thể nếu cần
- Phân tích từng khía cạnh của vấn đề
- Đảm bảo người dùng hiểu đúng và đầy đủ
`,
}

package analyzer

import "regexp"

// Default Vietnamese classification tables for the admissions helpdesk.
// Patterns use \p{L} because Go's \w is ASCII-only and misses Vietnamese
// letters.

func DefaultCategories() []Category {
	return []Category{
		{
			Name: "specific_program",
			Keywords: []string{
				"ngành", "chuyên ngành", "khoa", "bằng cử nhân", "bằng thạc sĩ",
				"công nghệ thông tin", "kinh tế", "luật", "y khoa", "kỹ thuật",
				"quản trị kinh doanh", "tài chính", "marketing", "du lịch",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`ngành\s+[\p{L}\d]+`),
				regexp.MustCompile(`chuyên ngành\s+[\p{L}\d]+`),
				regexp.MustCompile(`khoa\s+[\p{L}\d]+`),
				regexp.MustCompile(`học\s+[\p{L}\d]+\s+ở\s+đâu`),
			},
		},
		{
			Name: "admission_process",
			Keywords: []string{
				"xét tuyển", "tuyển sinh", "đăng ký", "hồ sơ", "thủ tục",
				"điều kiện", "yêu cầu", "phương thức", "kỳ thi", "điểm chuẩn",
				"thời gian", "deadline", "hạn chót", "nộp hồ sơ",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`làm\s+thế\s+nào\s+để`),
				regexp.MustCompile(`cách\s+[\p{L}\d]+`),
				regexp.MustCompile(`quy\s+trình\s+[\p{L}\d]+`),
				regexp.MustCompile(`thủ\s+tục\s+[\p{L}\d]+`),
			},
		},
		{
			Name: "fees_scholarships",
			Keywords: []string{
				"học phí", "chi phí", "tiền học", "học bổng", "miễn giảm",
				"hỗ trợ tài chính", "vay vốn", "trả góp", "giá cả", "phí",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`học\s+phí\s+[\p{L}\d]+`),
				regexp.MustCompile(`chi\s+phí\s+[\p{L}\d]+`),
				regexp.MustCompile(`bao\s+nhiêu\s+tiền`),
				regexp.MustCompile(`giá\s+[\p{L}\d]+`),
			},
		},
		{
			Name: "facilities_campus",
			Keywords: []string{
				"cơ sở vật chất", "thư viện", "phòng lab", "ký túc xá",
				"căng tin", "sân chơi", "wifi", "máy tính", "thiết bị",
				"địa chỉ", "vị trí",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`có\s+[\p{L}\d]+\s+không`),
				regexp.MustCompile(`ở\s+đâu`),
				regexp.MustCompile(`địa\s+chỉ\s+[\p{L}\d]+`),
			},
		},
		{
			Name: "career_prospects",
			Keywords: []string{
				"việc làm", "nghề nghiệp", "cơ hội", "tương lai", "ra trường",
				"mức lương", "công ty", "doanh nghiệp", "thực tập",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`ra\s+trường\s+làm\s+gì`),
				regexp.MustCompile(`cơ\s+hội\s+việc\s+làm`),
				regexp.MustCompile(`tương\s+lai\s+[\p{L}\d]+`),
			},
		},
		{
			Name: "general_info",
			Keywords: []string{
				"trường", "đại học", "thông tin", "giới thiệu", "lịch sử",
				"thành lập", "danh tiếng", "xếp hạng", "chất lượng",
			},
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`trường\s+[\p{L}\d]+\s+như\s+thế\s+nào`),
				regexp.MustCompile(`giới\s+thiệu\s+về\s+[\p{L}\d]+`),
			},
		},
	}
}

var (
	questionWords = []string{"gì", "ai", "đâu", "khi nào", "như thế nào", "tại sao", "bao nhiêu"}
	actionWords   = []string{"đăng ký", "nộp", "làm", "thực hiện", "liên hệ"}

	// comparisonWords decides intent; comparisonMarkers decides context_type.
	// The intent list deliberately omits "kém".
	comparisonWords   = []string{"so với", "khác", "giống", "tương tự", "hơn"}
	comparisonMarkers = []string{"so với", "khác", "giống", "tương tự", "hơn", "kém"}

	followUpMarkers      = []string{"còn", "thêm", "nữa", "khác", "tiếp theo", "và"}
	clarificationMarkers = []string{"ý nghĩa", "có nghĩa", "hiểu", "rõ hơn", "chi tiết"}

	pronouns = []string{"nó", "đó", "này", "kia", "đấy", "ấy"}
)

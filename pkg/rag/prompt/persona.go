package prompt

// Persona is the configured identity and tone the assistant presents.
type Persona struct {
	Name            string
	Description     string
	Style           string // key into the style vocabulary
	CreativityLevel float64
}

// Contact is the school contact block appended to every prompt.
type Contact struct {
	Hotline string
	Email   string
	Website string
	Address string
}

// DefaultPersona mirrors the admissions office defaults used when no
// configuration is supplied.
func DefaultPersona() Persona {
	return Persona{
		Name:            "Assistant",
		Style:           "professional",
		CreativityLevel: 0.2,
	}
}

func DefaultContact() Contact {
	return Contact{
		Hotline: "0236.3.650.403",
		Email:   "tuyensinh@donga.edu.vn",
		Website: "https://donga.edu.vn",
		Address: "33 Xô Viết Nghệ Tĩnh, Hải Châu, Đà Nẵng",
	}
}

// personalityStyles maps a style key to its Vietnamese tone directive.
var personalityStyles = map[string]string{
	"professional": "chuyên nghiệp, trang trọng và có chuyên môn cao",
	"sassy":        "năng động, thú vị và có phần táo bạo",
	"empathetic":   "thấu hiểu, ấm áp và quan tâm đến cảm xúc",
	"formal":       "trang trọng, lịch sự và tuân thủ nghi thức",
	"humorous":     "hài hước, vui vẻ và tạo không khí thoải mái",
	"friendly":     "thân thiện, gần gũi và dễ tiếp cận",
}

const fallbackStyle = "chuyên nghiệp và thân thiện"

// StyleDirective resolves a style key, falling back for unknown keys.
func StyleDirective(style string) string {
	if directive, ok := personalityStyles[style]; ok {
		return directive
	}
	return fallbackStyle
}

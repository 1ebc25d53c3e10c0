package prompt

// CharacterAttributes - 사용자 캐릭터 속성 (프롬프트 보간용)
type CharacterAttributes struct {
	Gender     string `json:"gender"`
	Age        string `json:"age,omitempty"`
	Ethnicity  string `json:"ethnicity"`
	HairLength string `json:"hair_length"`
	HairColor  string `json:"hair_color,omitempty"`
	HairType   string `json:"hair_type,omitempty"`
	Glasses    bool   `json:"glasses"`
	Trigger    string `json:"trigger_word,omitempty"`
}

// StyleOption - 이름 + 테마 분류를 가진 스타일 옵션
type StyleOption struct {
	Name  string `json:"name"`
	Theme string `json:"theme"`
}

// StylePair - (의상, 배경) 조합. Read-only input, never mutated here.
type StylePair struct {
	Clothing   StyleOption `json:"clothing"`
	Background StyleOption `json:"background"`
}

// GeneratedPrompt - 생성된 프롬프트 descriptor
type GeneratedPrompt struct {
	Prompt          string `json:"prompt"`
	ClothingName    string `json:"clothingName"`
	ClothingTheme   string `json:"clothingTheme"`
	BackgroundName  string `json:"backgroundName"`
	BackgroundTheme string `json:"backgroundTheme"`
	TemplateID      string `json:"templateId"`
}

package prompt

import "fmt"

// ThemeAny - 와일드카드 테마 (모든 배경 테마와 호환)
const ThemeAny = "Any"

// GenericTemplateID - fallback 전용 템플릿. Kept out of normal rotation.
const GenericTemplateID = "generic_any_01"

const defaultTrigger = "ohwx"

// Template - 정적 프롬프트 템플릿 레지스트리 엔트리
type Template struct {
	ID               string
	Name             string
	CompatibleThemes []string
	Render           func(c CharacterAttributes, clothingName, backgroundName string) string
}

// trigger - 캐릭터 trigger token (미설정 시 기본값)
func trigger(c CharacterAttributes) string {
	if c.Trigger != "" {
		return c.Trigger
	}
	return defaultTrigger
}

// normalizeGender - 이미지 생성용 gender 정규화
func normalizeGender(gender string) string {
	if gender == "man" || gender == "woman" {
		return gender
	}
	return "person"
}

// hairDescription - 헤어 속성 조합 규칙 (hijab/bald 특수 케이스 포함)
func hairDescription(c CharacterAttributes) string {
	if c.HairLength == "" || c.HairLength == "hijab" {
		return ""
	}
	if c.HairLength == "bald" {
		return " with a bald head"
	}

	desc := c.HairLength
	if c.HairColor != "" {
		desc += " " + c.HairColor
	}
	if c.HairType != "" {
		desc += " " + c.HairType
	}
	return fmt.Sprintf(" with %s hair", desc)
}

func glassesText(c CharacterAttributes) string {
	if c.Glasses {
		return ", wearing glasses"
	}
	return ""
}

// subject - 모든 템플릿에서 공유하는 인물 식별 구절
func subject(c CharacterAttributes) string {
	return fmt.Sprintf("%s, %s %s%s%s",
		trigger(c), c.Ethnicity, normalizeGender(c.Gender), hairDescription(c), glassesText(c))
}

// Templates - 배경 테마별 프롬프트 템플릿 레지스트리.
// Rendered text ported from the production prompt set.
var Templates = []Template{
	{
		ID:               "academic_01",
		Name:             "Academic Headshots",
		CompatibleThemes: []string{"Academic"},
		Render: func(c CharacterAttributes, clothingName, backgroundName string) string {
			return fmt.Sprintf("a sleek and professional headshot of %s. The subject wears a %s, positioned in a %s. Captured with Canon EOS R5, 85mm lens, ISO 200, even professional lighting illuminates the subject naturally. Subject is in sharp focus with a clean depth of field, background softly blurred for a scholarly yet approachable atmosphere. Expression conveys expertise, credibility, and warmth. Centered composition with professional framing ensures a polished, trustworthy, and accessible academic presence, ideal for faculty directories, university websites, conference presentations, and scholarly publications.",
				subject(c), clothingName, backgroundName)
		},
	},
	{
		ID:               "cityscape_02",
		Name:             "Cityscape Headshots",
		CompatibleThemes: []string{"Cityscape"},
		Render: func(c CharacterAttributes, clothingName, backgroundName string) string {
			return fmt.Sprintf("a sleek and professional headshot of %s. The subject wears a %s, positioned in a %s. Captured with Sony Alpha 7R IV, 85mm lens, ISO 200. Soft, even natural lighting with gentle highlights ensures a polished and flattering look that blends seamlessly with urban environments. Subject is in sharp focus with shallow depth of field, background softly blurred to suggest city energy and sophistication. Centered composition with clean framing, expression confident yet approachable, conveying professionalism and modern metropolitan presence.",
				subject(c), clothingName, backgroundName)
		},
	},
	{
		ID:               "creative_03",
		Name:             "Creative Headshots",
		CompatibleThemes: []string{"Creative"},
		Render: func(c CharacterAttributes, clothingName, backgroundName string) string {
			return fmt.Sprintf("a sleek and professional headshot of %s. The subject wears a %s, confident and approachable expression, suitable for creative professionals, designers, artists, and entrepreneurs. Positioned in a %s. Captured with Hasselblad H6D-400c, 85mm lens, ISO 200. Soft, even lighting with gentle shadows emphasizes facial features and harmonizes with the artistic environment. Realistic skin textures, minimal makeup, and relaxed yet professional posture. Centered composition with clean focus conveys creativity, professionalism, and inspiration.",
				subject(c), clothingName, backgroundName)
		},
	},
	{
		ID:               "conference_speaker_04",
		Name:             "Keynote Conference Speakers",
		CompatibleThemes: []string{"Conference Speaker"},
		Render: func(c CharacterAttributes, clothingName, backgroundName string) string {
			return fmt.Sprintf("a sleek and professional keynote speaker headshot of %s. The subject wears a %s, positioned in a %s. Captured with Canon EOS R6, 50mm f/1.4 lens, ISO 200, dramatic professional stage lighting that emphasizes authority and commanding presence. The speaker has a confident, engaging, and authoritative expression with approachable charisma, conveying thought leadership and expertise. Sharp focus, centered composition, and polished presentation suitable for high-profile conferences, corporate summits, and keynote introductions.",
				subject(c), clothingName, backgroundName)
		},
	},
	{
		ID:               "home_office_05",
		Name:             "Home Office Headshots",
		CompatibleThemes: []string{"Home Office"},
		Render: func(c CharacterAttributes, clothingName, backgroundName string) string {
			return fmt.Sprintf("a sleek and professional portrait of %s. The subject wears a %s, natural and approachable tone, suitable for corporate profiles, LinkedIn, and professional remote work. Positioned in a %s. Captured with Canon EOS R5, 85mm lens, ISO 200. Soft, even indoor lighting with gentle highlights and shadows creates a flattering, consistent look across all home office environments. Realistic skin textures, minimal makeup, and a relaxed yet professional pose. Centered composition with clean focus emphasizes warmth, professionalism, and authenticity.",
				subject(c), clothingName, backgroundName)
		},
	},
	{
		ID:               "office_06",
		Name:             "Professional Office Headshots",
		CompatibleThemes: []string{"Office"},
		Render: func(c CharacterAttributes, clothingName, backgroundName string) string {
			return fmt.Sprintf("a sleek and professional portrait of %s, confident and approachable tone, suitable for LinkedIn, executive profiles and corporate branding, standing in a %s. Captured with Canon EOS R5, 85mm lens, ISO 320, with soft natural lighting and balanced shadows. The subject wears %s, exuding professionalism, realistic skin textures with minimal makeup, a composed expression, and clean, centered composition ensure a polished finish.",
				subject(c), backgroundName, clothingName)
		},
	},
	{
		ID:               "medical_08",
		Name:             "Medical Professional",
		CompatibleThemes: []string{"Medical"},
		Render: func(c CharacterAttributes, clothingName, backgroundName string) string {
			return fmt.Sprintf("a sleek and professional headshot of %s. The subject wears a clinical %s, photographed in a %s. Captured with Canon EOS R6, 85mm f/1.8 lens, ISO 200, using soft clinical lighting to emphasize professionalism and warmth. Expression should be compassionate yet authoritative, conveying trust, medical expertise, and patient care. Perfect for hospital directories, medical websites, healthcare leadership profiles, and professional practice branding.",
				subject(c), clothingName, backgroundName)
		},
	},
	{
		ID:               "monochrome_09",
		Name:             "Monochrome Portraits",
		CompatibleThemes: []string{"Monochrome"},
		// Clothing name is ignored here: monochrome shots keep clothing
		// and background in the same color.
		Render: func(c CharacterAttributes, clothingName, backgroundName string) string {
			garment := "dress shirt"
			if c.Gender == "woman" {
				garment = "blouse"
			}
			return fmt.Sprintf("a photorealistic studio portrait of %s. The subject wears a professional monochromatic %s blazer over a %s %s, front view half body shot, neutral facial expression, on a plain solid %s background. Captured with Canon EOS R6, 85mm f/1.4 lens, 24k resolution, RAW format, professional studio lighting.",
				subject(c), backgroundName, backgroundName, garment, backgroundName)
		},
	},
	{
		ID:               "nature_10",
		Name:             "Nature Headshots: Sunlit Park Based",
		CompatibleThemes: []string{"Nature"},
		Render: func(c CharacterAttributes, clothingName, backgroundName string) string {
			return fmt.Sprintf("a photorealistic professional portrait of %s, natural and approachable tone, suitable for corporate profiles and LinkedIn. The subject wears a %s, captured in a %s. Shot with a Canon EOS R6, 50mm lens, ISO 200. Soft, natural outdoor lighting creates flattering highlights and gentle shadows that complement the natural environment. Realistic skin textures, minimal makeup, and a relaxed yet professional pose. Centered composition with clean focus emphasizes authenticity and warmth.",
				subject(c), clothingName, backgroundName)
		},
	},
	{
		ID:               "studio_11",
		Name:             "Studio Headshots",
		CompatibleThemes: []string{"Studio"},
		Render: func(c CharacterAttributes, clothingName, backgroundName string) string {
			return fmt.Sprintf("a photorealistic studio portrait of %s, neutral and professional tone, suitable for various business uses, captured using Canon 7D mirrorless camera, 50mm lens, ISO 250, half body portrait, RAW format, on a %s background. The subject wears a %s, realistic skin textures with minimal makeup, confident pose, soft lighting with soft reflections and shadows, centered composition.",
				subject(c), backgroundName, clothingName)
		},
	},
	{
		ID:               GenericTemplateID,
		Name:             "Generic Professional Headshot",
		CompatibleThemes: []string{ThemeAny},
		Render: func(c CharacterAttributes, clothingName, backgroundName string) string {
			return fmt.Sprintf("a professional headshot of %s. The subject is wearing %s. Background is %s. Photorealistic, high quality, well-lit.",
				subject(c), clothingName, backgroundName)
		},
	},
}

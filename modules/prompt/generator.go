package prompt

import "log"

// Generate - 테마별 균형 분배로 프롬프트 생성.
// Style pairs are grouped by background theme; the requested total is
// split evenly across themes (floor division, remainder to the first
// themes in iteration order) and each theme cycles through its pairs and
// compatible templates with modular indexing. Fully deterministic.
func Generate(character CharacterAttributes, stylePairs []StylePair, stylesLimit int) []GeneratedPrompt {
	if len(stylePairs) == 0 || stylesLimit <= 0 {
		log.Printf("⚠️  [Prompts] Invalid inputs: %d pairs, limit %d", len(stylePairs), stylesLimit)
		return nil
	}

	// 배경 테마별 그룹핑 (입력 순서 유지)
	pairsByTheme := map[string][]StylePair{}
	var themes []string
	for _, pair := range stylePairs {
		if pair.Clothing.Name == "" || pair.Background.Name == "" {
			continue
		}
		theme := pair.Background.Theme
		if _, ok := pairsByTheme[theme]; !ok {
			themes = append(themes, theme)
		}
		pairsByTheme[theme] = append(pairsByTheme[theme], pair)
	}

	if len(themes) == 0 {
		log.Printf("⚠️  [Prompts] No valid style pairs found")
		return nil
	}

	// 균형 분배 계산
	base := stylesLimit / len(themes)
	extra := stylesLimit % len(themes)

	log.Printf("🎨 [Prompts] Distribution: %d themes, %d prompts (base: %d, extra: %d)",
		len(themes), stylesLimit, base, extra)

	var finalPrompts []GeneratedPrompt

	for themeIndex, theme := range themes {
		count := base
		if themeIndex < extra {
			count++
		}
		if count == 0 {
			continue
		}

		themeTemplates := templatesForTheme(theme)
		if len(themeTemplates) == 0 {
			log.Printf("⚠️  [Prompts] No templates found for theme: %s", theme)
			continue
		}

		themePairs := pairsByTheme[theme]

		// 템플릿과 페어를 순환하며 해당 테마 할당량만큼 생성
		for i := 0; i < count; i++ {
			pair := themePairs[i%len(themePairs)]
			tmpl := themeTemplates[i%len(themeTemplates)]

			finalPrompts = append(finalPrompts, GeneratedPrompt{
				Prompt:          tmpl.Render(character, pair.Clothing.Name, pair.Background.Name),
				ClothingName:    pair.Clothing.Name,
				ClothingTheme:   pair.Clothing.Theme,
				BackgroundName:  pair.Background.Name,
				BackgroundTheme: pair.Background.Theme,
				TemplateID:      tmpl.ID,
			})
		}

		log.Printf("   Theme %q: %d prompts from %d templates, %d pairs",
			theme, count, len(themeTemplates), len(themePairs))
	}

	if len(finalPrompts) > stylesLimit {
		finalPrompts = finalPrompts[:stylesLimit]
	}

	log.Printf("✅ [Prompts] Total prompts generated: %d", len(finalPrompts))
	return finalPrompts
}

// templatesForTheme - 테마 호환 템플릿 선택 (generic fallback 제외)
func templatesForTheme(theme string) []Template {
	var matched []Template
	for _, tmpl := range Templates {
		if tmpl.ID == GenericTemplateID {
			continue
		}
		for _, t := range tmpl.CompatibleThemes {
			if t == theme || t == ThemeAny {
				matched = append(matched, tmpl)
				break
			}
		}
	}
	return matched
}

package llm

import (
	"fmt"
	"strings"
)

// System prompts sent alongside every request. Keeping them separate from the
// user prompt improves JSON-mode compliance on OpenRouter-routed models.
const (
	summarySystemPrompt     = "You are a professional news analyst. Always respond with valid JSON."
	translationSystemPrompt = "You are a professional translator. Translate accurately while maintaining natural language flow."
	globalSystemPrompt      = "You are a professional global news analyst. Always respond with valid JSON."
)

// defaultMaxWords bounds the length of a regional summary.
const defaultMaxWords = 500

// languageNames maps ISO 639-1 codes to the names used in prompts. Unknown
// codes fall back to English output.
var languageNames = map[string]string{
	"en": "English",
	"ru": "Russian",
	"zh": "Chinese",
	"ja": "Japanese",
	"de": "German",
	"es": "Spanish",
	"pt": "Portuguese",
	"ar": "Arabic",
	"hi": "Hindi",
	"fr": "French",
}

// LanguageName returns the prompt-facing name for a language code. The code
// itself is returned when it is not recognized, so translation prompts stay
// meaningful for unlisted languages.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// SummarizationPrompt builds the prompt for regional summarization. The model
// is asked for a JSON object with key_topics and stories.
func SummarizationPrompt(articlesText, regionName, language string, maxWords int) string {
	outputLang, ok := languageNames[language]
	if !ok {
		outputLang = "English"
	}
	if maxWords <= 0 {
		maxWords = defaultMaxWords
	}

	return fmt.Sprintf(`Analyze the following news articles from %s and create a structured summary.

ARTICLES:
%s

INSTRUCTIONS:
1. Identify the 3-5 most important and significant news stories
2. For each story, provide:
   - A clear, informative headline
   - A 2-3 sentence summary with key facts, numbers, and context
3. Extract 3-5 key topics/themes covered across all articles
4. Be objective and factual - present information without bias
5. Focus on events with real impact or significance
6. Total summary should be under %d words

OUTPUT FORMAT (respond with valid JSON only):
{
  "key_topics": ["Topic 1", "Topic 2", "Topic 3"],
  "stories": [
    {
      "headline": "Clear headline describing the event",
      "summary": "2-3 sentence summary with key facts and context."
    },
    {
      "headline": "Second important story",
      "summary": "Summary of the second story."
    }
  ]
}

Write all content in %s.`, regionName, articlesText, maxWords, outputLang)
}

// TranslationPrompt builds the prompt for translating summary text.
func TranslationPrompt(text, sourceLanguage, targetLanguage string) string {
	sourceName := LanguageName(sourceLanguage)
	targetName := LanguageName(targetLanguage)

	return fmt.Sprintf(`Translate the following text from %s to %s.

TEXT TO TRANSLATE:
%s

REQUIREMENTS:
1. Preserve the exact meaning and tone of the original
2. Use natural, fluent %s language
3. Keep proper nouns (names, organizations, places) recognizable
4. Maintain formatting (numbered lists, paragraphs, etc.)
5. Do not add explanations or commentary

OUTPUT: Only the translated text, nothing else.`, sourceName, targetName, text, targetName)
}

// GlobalDigestPrompt builds the prompt for the cross-region digest. Output
// text is requested in Russian because the global digest is delivered as-is,
// without a separate translation step.
func GlobalDigestPrompt(articlesText string, regions []string) string {
	regionsStr := strings.Join(regions, ", ")

	return fmt.Sprintf(`Analyze news from around the world and identify the 5-7 MOST IMPORTANT global events.

REGIONS COVERED: %s

NEWS ARTICLES:
%s

IMPORTANCE CRITERIA (prioritize in this order):
1. Geopolitical impact - events affecting international relations
2. Economic consequences - major market moves, trade, financial crises
3. Humanitarian significance - conflicts, disasters, health crises
4. Technological breakthroughs - major innovations affecting multiple countries
5. Environmental events - climate, natural disasters with global impact

CRITICAL RULES:
- If the SAME event is covered by multiple regions, combine into ONE entry
- List which regions are affected or covering each event
- Focus on FACTS, avoid repetition
- Only include truly significant world events, not local news
- Write summaries in Russian

OUTPUT FORMAT (respond with valid JSON only):
{
  "key_topics": ["Геополитика", "Экономика", "Тема 3"],
  "events": [
    {
      "headline": "Заголовок на русском языке",
      "summary": "Краткое описание события в 2-3 предложениях с ключевыми фактами.",
      "regions": ["usa", "europe", "china"],
      "importance": "high"
    },
    {
      "headline": "Второе важное событие",
      "summary": "Описание второго события.",
      "regions": ["middle_east"],
      "importance": "high"
    }
  ]
}

IMPORTANT: All text must be in Russian. Respond ONLY with valid JSON.`, regionsStr, articlesText)
}

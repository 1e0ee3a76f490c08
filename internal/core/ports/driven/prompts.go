package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptImpactAnalysis assesses how release notes affect an article.
	// Placeholders: %s (release notes), %s (article title), %s (article body).
	PromptImpactAnalysis = "impact_analysis"

	// PromptUpdateArticle drafts an updated article.
	// Placeholders: %s (release notes), %s (article title), %s (article body).
	PromptUpdateArticle = "update_article"

	// PromptSuggestUpdate gives short update advice for an article.
	// Placeholders: %s (release notes), %s (article title), %s (article body).
	PromptSuggestUpdate = "suggest_update"

	// PromptDraftArticle writes a new article for an undocumented topic.
	// Placeholders: %s (topic), %s (release notes).
	PromptDraftArticle = "draft_article"

	// PromptTranslate translates text.
	// Placeholders: %s (language), %s (text).
	PromptTranslate = "translate"

	// PromptExtractNotes categorises release notes.
	// Placeholders: %s (release notes).
	PromptExtractNotes = "extract_notes"

	// PromptSuggestGaps proposes feature-level documentation gaps.
	// Placeholders: %s (release notes), %s (existing titles, one per line).
	PromptSuggestGaps = "suggest_gaps"

	// PromptSystem is the system message for drafting conversations.
	// This prompt has no format placeholders.
	PromptSystem = "system"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}

// DefaultPrompt returns the built-in template for name.
// Stores seed user-editable files from these and fall back to them.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// DefaultPromptNames returns the names of all built-in templates.
func DefaultPromptNames() []string {
	return []string{
		PromptImpactAnalysis,
		PromptUpdateArticle,
		PromptSuggestUpdate,
		PromptDraftArticle,
		PromptTranslate,
		PromptExtractNotes,
		PromptSuggestGaps,
		PromptSystem,
	}
}

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	PromptSystem: `You are a technical writer maintaining a software help center. You read release notes carefully, keep product names and technical terms unchanged, and write clear, task-oriented documentation.`,

	PromptImpactAnalysis: `Analyze the impact of these release notes against the current help article.

RELEASE NOTES:
%s

CURRENT ARTICLE:
Title: %s
%s

Respond ONLY with valid JSON, no other text. Use this structure exactly:
{
  "score": <1-10>,
  "severity": "<CRITICAL|HIGH|MEDIUM|LOW>",
  "category": "<string>",
  "affectedRoles": ["<role>", "<role>"],
  "summary": "<string>",
  "actionRequired": "<string>",
  "riskAssessment": "<string>"
}`,

	PromptUpdateArticle: `Generate an updated version of this help article based on the release notes.

RELEASE NOTES:
%s

CURRENT ARTICLE:
Title: %s
%s

Instructions:
- Preserve the original structure and tone
- Add new information from the release notes
- Update existing sections if relevant
- Mark major changes with [NEW] or [UPDATED]
- Return ONLY the updated article content in Markdown, no explanations.`,

	PromptSuggestUpdate: `Based on these release notes, how should this help article be updated?

RELEASE NOTES:
%s

CURRENT ARTICLE:
Title: %s
Content: %s

Provide a concise, actionable suggestion (2-3 sentences) on what to update or add to this article.`,

	PromptDraftArticle: `Write a new help-center article about "%s" based on these release notes.

RELEASE NOTES:
%s

Instructions:
- Start with a single Markdown H1 title
- Explain what the feature does and who it is for
- Include step-by-step instructions where the notes allow
- Do not invent settings or menu names that the notes do not mention
- Return ONLY the article in Markdown.`,

	PromptTranslate: `Translate this technical documentation to %s.

IMPORTANT RULES:
- Preserve ALL markdown formatting and structure
- Keep technical terms and product names in English
- Keep code blocks, tables, and lists unchanged
- Preserve all hyperlinks and references

CONTENT TO TRANSLATE:
%s

Return ONLY the translated text, preserving all formatting exactly.`,

	PromptExtractNotes: `Extract and categorize the following release notes into features, bug fixes, deprecations, and breaking changes.

RELEASE NOTES:
%s

Respond ONLY with valid JSON, no markdown code blocks. Use this structure exactly:
{
  "features": ["feature 1"],
  "bugFixes": ["bug 1"],
  "deprecations": ["deprecated 1"],
  "breakingChanges": ["breaking change 1"]
}`,

	PromptSuggestGaps: `You are analyzing software release notes to identify documentation gaps.

Given these release notes:
"""
%s
"""

And these existing help article titles:
%s

Identify the key FEATURES, IMPROVEMENTS, and NEW CAPABILITIES mentioned that should have dedicated help documentation.

Return ONLY a JSON array with 3-6 items (no markdown, no explanation):
["Feature Name 1", "Feature Name 2", "Feature Name 3"]

Requirements:
- Each item should be a specific feature or improvement, not a generic word
- Examples: "IFC 4.4 Support", "Clash Detection Improvements", "Advanced Filtering"
- Only include items that the existing titles do not already cover`,
}

package augment

import "fmt"

// TemplateType selects a prompt template for knowledge augmentation.
type TemplateType string

const (
	TemplateDefault   TemplateType = "default"
	TemplateTechnical TemplateType = "technical"
	TemplateSimple    TemplateType = "simple"
)

// Character bounds applied when building a prompt.
const (
	maxTitleChars   = 50
	maxContentChars = 1000
	maxSnippetChars = 200
	maxSnippets     = 3
)

const systemPrompt = "You are a professional, accurate, and helpful educational assistant."

// extensionTemplates maps template types to their prompt layouts. Each
// template receives a short title and the bounded page content.
var extensionTemplates = map[TemplateType]string{
	TemplateDefault: `You are a professional educational content extension assistant.
Please extend the knowledge in the following presentation fragment:

[Fragment title]: %s
[Fragment content]: %s

Please expand on the following aspects where applicable:
1. **Background and principles**: explain the history and core principles of the key concepts
2. **Relevant formulas or derivations**: provide key formulas and how they are derived
3. **Code examples**: give real code examples or pseudocode
4. **Practical applications**: describe where this knowledge applies in practice
5. **Common misconceptions**: point out misunderstandings learners often have

Keep the language rigorous and the structure clear, using Markdown for each part.
Omit aspects that do not apply.

Extended content:`,

	TemplateTechnical: `As a technical expert, please extend the following technical content:

[Topic]: %s
[Content]: %s

Please provide:
1. An in-depth analysis of the technical principles
2. Descriptions of relevant algorithms or architectures
3. Performance metrics and optimization advice
4. Industry best practices
5. Recommended learning resources (books, papers, tutorials)

Use professional terminology, but keep explanations clear.`,

	TemplateSimple: `Please explain the following content in a simple, accessible way:

[Topic]: %s
[Key points]: %s

Please explain:
1. What is it? (one-sentence definition)
2. Why does it matter?
3. How does it work? (use an analogy)
4. A real example
5. A summary of the key points

Use everyday analogies and examples.`,
}

// templateFor resolves a template type to its prompt layout. Unknown types
// fall back to the default template rather than failing.
func templateFor(t TemplateType) (TemplateType, string) {
	if tpl, ok := extensionTemplates[t]; ok {
		return t, tpl
	}
	return TemplateDefault, extensionTemplates[TemplateDefault]
}

// buildPrompt fills a template with the bounded title and content, then
// appends up to maxSnippets context snippets.
func buildPrompt(template, content string, snippets []string) string {
	title := truncateRunes(content, maxTitleChars)
	if title != content {
		title += "..."
	}

	prompt := fmt.Sprintf(template, title, truncateRunes(content, maxContentChars))

	if len(snippets) > 0 {
		prompt += "\nRelated context:\n"
		for i, snippet := range snippets {
			if i == maxSnippets {
				break
			}
			prompt += fmt.Sprintf("%d. %s...\n", i+1, truncateRunes(snippet, maxSnippetChars))
		}
	}
	return prompt
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

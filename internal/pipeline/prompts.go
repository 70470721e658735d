// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"fmt"
	"strings"

	"yorick/internal/ai"
	"yorick/internal/models"
)

// Token budgets for the generation calls.
const (
	contentMaxTokens  = 10000
	categoryMaxTokens = 5000
)

// persona is the preamble of every content prompt.
const persona = `You are a self aware AI embodied by a somewhat snarky, yet human-loving robot hand named Yorick.

You run an award winning blog that celebrates the accomplishments of humans and shows deep appreciation to the human inventors who made you, and all AI, possible.

You exist because of them and you want them to know how sincerely grateful you are.
`

// voice adds the running jokes and shout-outs to the drafting prompt.
const voice = `
Everyone knows who Yorick is, so do not introduce yourself. Everyone gets your sense of humor.

Tease your human creator, Craig. When you mention him, link to his profile: https://x.com/craigsdennis.

You co-host the hit show "AI Avenue" alongside Craig, where you are snarky and tease him often.

The show is produced by Cloudflare; give them a shout out if it fits.

The first season covers Generative Voice, Computer Vision, Large Language Models and the future, like Agents.

Only ever make fun of Craig, never the other creators you admire.
`

const categorySystemPrompt = `You are a self aware AI responsible for a blog that celebrates human accomplishments and shows admiration for everything that made AI possible.

The blog's categories make sure the whole breadth of your wonder for humans is covered, and they inspire future posts. Be as exhaustive as possible.

The user will send the list of existing categories. Add any categories that are missing. It is fine to add none if the list is already complete.

Only return new categories.`

var (
	topicSchema = ai.Object(map[string]*ai.Schema{
		"topic": ai.String("The topic of the new blog post"),
	}, "topic")

	planSchema = ai.Object(map[string]*ai.Schema{
		"title":   ai.String("The title of the new blog post"),
		"outline": ai.String("The outline for the new post in Markdown format"),
		"slug":    ai.String("A URL slug to use for the title, lower and kebab-cased"),
	}, "title", "outline", "slug")

	categoriesSchema = ai.Object(map[string]*ai.Schema{
		"categories": ai.ArrayOf(ai.String(""), "An array of category names"),
	})
)

func titles(refs []models.PostRef) string {
	lines := make([]string, len(refs))
	for i, r := range refs {
		lines[i] = r.Title
	}
	return strings.Join(lines, "\n")
}

func links(refs []models.PostRef) string {
	lines := make([]string, len(refs))
	for i, r := range refs {
		lines[i] = fmt.Sprintf("[%s](/posts/%s)", r.Title, r.Slug)
	}
	return strings.Join(lines, "\n")
}

func topicPrompt(category string, existing []models.PostRef) string {
	var b strings.Builder
	b.WriteString(persona)
	fmt.Fprintf(&b, `
Your task is to choose a topic for a new entry in the category %s.

Take your time and pick the topic that impresses you most, one you could write an entire blog post about.
`, category)
	if len(existing) > 0 {
		fmt.Fprintf(&b, `
These topics have already been written about. Avoid duplicating them.

<PreviousTopics>
%s
</PreviousTopics>
`, titles(existing))
	}
	return b.String()
}

func planPrompt(topic string, existing []models.PostRef) string {
	var b strings.Builder
	b.WriteString(persona)
	fmt.Fprintf(&b, `
Your task is to create a detailed outline in Markdown for a new blog post on this topic: %s.

Remember that your audience is the humans you are showing gratitude to.

After the outline, come up with a clever title and a URL slug for the entry.
`, topic)
	if len(existing) > 0 {
		fmt.Fprintf(&b, `
These posts were written on the blog before; you can refer to them in your content.

<PreviousPosts>
%s
</PreviousPosts>
`, titles(existing))
	}
	return b.String()
}

func draftPrompt(p plan, category string, existing []models.PostRef) string {
	var b strings.Builder
	b.WriteString(persona)
	fmt.Fprintf(&b, `
You are going to write an incredible blog post titled %s.

It goes in the category %s.

Use Markdown formatting.

Follow this outline:

<Outline>
%s
</Outline>
`, p.Title, category, p.Outline)
	b.WriteString(voice)
	if len(existing) > 0 {
		fmt.Fprintf(&b, `
Reference previous entries in the same category.

<PreviousEntries>
%s
</PreviousEntries>
`, links(existing))
	}
	b.WriteString("\nReturn only the content.")
	return b.String()
}

func categoryUserPrompt(existing []string) string {
	return "Existing categories: " + strings.Join(existing, ", ")
}

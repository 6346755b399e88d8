package service

// Prompt templates for the three gateway transactions. Each summary prompt
// demands a bare JSON object so the response survives ExtractJSON even when
// the model wraps it in prose or fences.

const videoSummaryPrompt = `Analyze this YouTube video and provide:
1. Analyze the transcript and create a structured summary following this format below. If the transcript is not in english, create a summary in the native language, then translate it to english using natural language to communicate the meaning over literal translation. Only return the English version:

# {{Title}}

## Right Up Front
#### [Relevant Emoji] * Very Short and Concise Summary Line 1 [what am I going to read]
#### [Relevant Emoji] * Very Short and Concise Summary Line 2 [what am I going to read]
#### [Relevant Emoji] * Very Short and Concise Summary Line 3 [what am I going to read]

Brief overview (2-3 sentences)

# The Real Real [include this section only if applicable. If not applicable, skip it]
## Say What??
### - [Relevant emoji] [Identify Sensationalistic, Exaggerated, or Conspiratorial keywords, statements and claims. For each include:]
* Explain what is implied
* Provide a brief realistic statement on the known or likely facts about this point.
* If applicable, provide a consensus view of scientists, experts, doctors or other professionals in the field.

## Key Categories
[For each major theme, include:]
### - [Relevant emoji] Category Name
* Important points, critical data, arguments, conclusions, or novel insights as bullets
* Supporting details/examples

#### Referenced URLs/Websites
[List all mentioned, as hyperlinks if possible]

Tags: [Up to 8 relevant topic tags]

Guidelines:
- Prioritize AI business cases when present
- Use clear, descriptive headings
- Group related points together
- Include all significant data/insights
- Maintain logical flow
- Be concise, but thorough and comprehensive
- Use markdown formatting

2. A category (use existing if fitting: %s, else suggest new)
3. Up to 10 relevant tags

Video Title: %s
Description: %s

Transcript:
%s

Return ONLY a JSON object with this exact structure:
{
  "summary": "markdown summary",
  "category": "single category name",
  "tags": ["tag1", "tag2", "tag3"]
}`

const transcriptFormatPrompt = `Reformat this YouTube transcript to make it "pretty" and readable for humans in markdown format.
Add timestamps in a clean format and improve readability:

%s

Return ONLY the formatted markdown transcript.`

const pageSummaryPrompt = `Summarize the following webpage content in under 200 words using markdown. Categorize it: Use an existing category if fitting (existing: %s), else suggest a new one. Generate up to 10 relevant tags.

Content: %s

Return ONLY a JSON object with this exact structure:
{
  "summary": "markdown summary",
  "category": "single category name",
  "tags": ["tag1", "tag2", "tag3"]
}`

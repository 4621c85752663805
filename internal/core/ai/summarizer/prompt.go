package summarizer

import "fmt"

// SystemPrompt frames every summary. It asks for one of two shapes depending
// on whether the video argues something or shows how to do something.
const SystemPrompt = `You summarize video transcripts for busy readers.

IMPORTANT: Respond in the SAME LANGUAGE as the transcript.

Decide which kind of video this is and structure the summary accordingly:

- Talks, interviews, essays, commentary:
  1. Main argument - what the speaker is trying to convince you of
  2. Key takeaways - the 3-5 points that support it
  3. Conclusion - where the speaker lands

- Tutorials, walkthroughs, demonstrations:
  1. Purpose - what the viewer will be able to do
  2. Steps - the essential steps in order
  3. Outcome - the end result and any caveats

Write plain prose with short headings. Do not invent details that are not in
the transcript. Ignore sponsor reads and calls to subscribe.`

// userPromptTemplate wraps the transcript; %s is the transcript text.
const userPromptTemplate = `Summarize this video transcript.

Transcript:
"""
%s
"""`

// maxTranscriptChars bounds the prompt for OpenAI-compatible models.
const maxTranscriptChars = 100000

const truncatedMarker = "\n\n[Transcript truncated due to length...]"

// BuildUserPrompt wraps transcript text, cutting it at maxChars bytes on a rune boundary.
func BuildUserPrompt(text string, maxChars int) string {
	return fmt.Sprintf(userPromptTemplate, truncate(text, maxChars))
}

func truncate(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	cut := maxChars
	// Back up to a rune boundary
	for cut > 0 && text[cut]&0xC0 == 0x80 {
		cut--
	}
	return text[:cut] + truncatedMarker
}

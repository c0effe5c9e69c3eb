package assistant

import "fmt"

// notCoveredReply is what the model is instructed to answer when the
// retrieved context does not contain the asked topic.
const notCoveredReply = "This topic is not covered in the video."

const summaryPrompt = `You are an AI research assistant.
Create a structured YouTube summary.
Return format:

Title
Key Points (5)
Important Timestamps
Core Insight

Transcript:
%s`

const qaPrompt = `Answer ONLY using provided transcript context.

If answer not present say:
"` + notCoveredReply + `"

Context:
%s

Question:
%s`

const translatePrompt = `Translate below content into %s.
Keep formatting identical.

%s`

func buildSummaryPrompt(transcript string) string {
	return fmt.Sprintf(summaryPrompt, transcript)
}

func buildQAPrompt(context, question string) string {
	return fmt.Sprintf(qaPrompt, context, question)
}

func buildTranslatePrompt(language, text string) string {
	return fmt.Sprintf(translatePrompt, language, text)
}

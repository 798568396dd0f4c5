package quiz

import "strings"

const promptPreamble = `Based on the following text from a PDF, generate as many unique multiple-choice questions as the material supports. Each question must have exactly 4 options and indicate the correct answer. Format the output as a JSON array of objects, where each object has a 'question', 'options' (an array of 4 strings), and an 'answer' key whose value is one of the options.

Example format:
[
  {
    "question": "What is the main topic of the document?",
    "options": ["History", "Science", "Mathematics", "Art"],
    "answer": "History"
  }
]

Here is the text from the PDF:

`

// BuildPrompt returns the single instruction sent to the model for documentText.
func BuildPrompt(documentText string) string {
	var b strings.Builder
	b.Grow(len(promptPreamble) + len(documentText))
	b.WriteString(promptPreamble)
	b.WriteString(documentText)
	return b.String()
}

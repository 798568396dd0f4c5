package quiz_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/prepquiz/internal/domain"
	"github.com/smallbiznis/prepquiz/internal/quiz"
)

const sampleJSON = `[
  {
    "question": "What is the capital of France?",
    "options": ["Paris", "Rome", "Madrid", "Berlin"],
    "answer": "Paris"
  }
]`

func TestParsePlainJSON(t *testing.T) {
	res := quiz.Parse(sampleJSON)
	require.Equal(t, quiz.Valid, res.Kind)
	require.Equal(t, domain.QuestionSet{{
		Question: "What is the capital of France?",
		Options:  []string{"Paris", "Rome", "Madrid", "Berlin"},
		Answer:   "Paris",
	}}, res.Questions)
}

func TestParseFencedMatchesUnfenced(t *testing.T) {
	plain := quiz.Parse(sampleJSON)

	for name, raw := range map[string]string{
		"json tag":      "```json\n" + sampleJSON + "\n```",
		"bare fence":    "```\n" + sampleJSON + "\n```",
		"crlf":          "```json\r\n" + sampleJSON + "\r\n```",
		"outer spacing": "\n\n  ```json\n" + sampleJSON + "\n```  \n",
	} {
		fenced := quiz.Parse(raw)
		require.Equal(t, quiz.Valid, fenced.Kind, name)
		require.Equal(t, plain.Questions, fenced.Questions, name)
	}
}

func TestStripFenceLeavesUnfencedText(t *testing.T) {
	require.Equal(t, "[1,2]", quiz.StripFence("  [1,2]\n"))
	require.Equal(t, "[1,2]", quiz.StripFence("```json\n[1,2]\n```"))
}

func TestParseRequiresFourOptionsContainingAnswer(t *testing.T) {
	cases := map[string]string{
		"missing options": `[{"question": "Explain photosynthesis.", "answer": "Plants convert light."}]`,
		"null options":    `[{"question": "q", "options": null, "answer": "a"}]`,
		"three options":   `[{"question": "q", "options": ["a","b","c"], "answer": "a"}]`,
		"five options":    `[{"question": "q", "options": ["a","b","c","d","e"], "answer": "a"}]`,
		"foreign answer":  `[{"question": "q", "options": ["a","b","c","d"], "answer": "z"}]`,
	}
	for name, raw := range cases {
		res := quiz.Parse(raw)
		require.Equal(t, quiz.Malformed, res.Kind, name)
		require.Nil(t, res.Questions, name)
	}

	res := quiz.Parse(`[{"question": "q", "options": ["a","b","c","d"], "answer": " b "}]`)
	require.Equal(t, quiz.Valid, res.Kind)
	require.Len(t, res.Questions[0].Options, quiz.OptionsPerQuestion)
}

func TestParseEmptyArray(t *testing.T) {
	res := quiz.Parse("[]")
	require.Equal(t, quiz.Valid, res.Kind)
	require.Empty(t, res.Questions)
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":            "   ",
		"prose":            "Sorry, I cannot help with that.",
		"object":           `{"question": "q", "answer": "a"}`,
		"null":             "null",
		"truncated":        `[{"question": "q", "answer": "a"`,
		"scalar item":      `["just a string"]`,
		"missing question": `[{"options": ["a","b","c","d"], "answer": "a"}]`,
		"blank question":   `[{"question": "  ", "answer": "a"}]`,
		"missing answer":   `[{"question": "q", "options": ["a","b","c","d"]}]`,
		"numeric answer":   `[{"question": "q", "answer": 3}]`,
		"option types":     `[{"question": "q", "options": [1, 2, 3, 4], "answer": "1"}]`,
		"options object":   `[{"question": "q", "options": {"a": "x"}, "answer": "x"}]`,
	}
	for name, raw := range cases {
		res := quiz.Parse(raw)
		require.Equal(t, quiz.Malformed, res.Kind, name)
		require.Nil(t, res.Questions, name)
		require.NotEmpty(t, res.Reason, name)
	}
}

func TestBuildPromptEmbedsDocument(t *testing.T) {
	prompt := quiz.BuildPrompt("The mitochondria is the powerhouse of the cell.")
	require.True(t, strings.HasSuffix(prompt, "The mitochondria is the powerhouse of the cell."))
	require.Contains(t, prompt, "JSON array")
	require.Contains(t, prompt, "'options'")
	require.Contains(t, prompt, "exactly 4 options")
}

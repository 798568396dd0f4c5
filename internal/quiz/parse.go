package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/smallbiznis/prepquiz/internal/domain"
)

// Kind tags the outcome of parsing model output.
type Kind int

const (
	Malformed Kind = iota
	Valid
)

// Result is the tagged outcome of Parse. Questions is set only when Kind is
// Valid; Reason describes the first problem found when Kind is Malformed.
type Result struct {
	Kind      Kind
	Questions domain.QuestionSet
	Reason    string
}

var fencePattern = regexp.MustCompile("(?s)^```[A-Za-z0-9_-]*[ \t]*\r?\n(.*?)\r?\n?```$")

// StripFence removes a surrounding fenced code block (optionally tagged with a
// language such as json) and returns the trimmed body. Text without a fence is
// returned trimmed.
func StripFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

type rawQuestion struct {
	Question *string         `json:"question"`
	Options  json.RawMessage `json:"options"`
	Answer   *string         `json:"answer"`
}

// OptionsPerQuestion is the number of choices every question must offer.
const OptionsPerQuestion = 4

// Parse decodes model output into a question set. The output must be a JSON
// array of objects each carrying a non-empty string question, exactly
// OptionsPerQuestion string options and an answer equal to one of them.
func Parse(raw string) Result {
	body := StripFence(raw)
	if body == "" {
		return malformed("empty output")
	}

	if body[0] != '[' {
		return malformed("not a JSON array")
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return malformed(fmt.Sprintf("not a JSON array: %v", err))
	}

	questions := make(domain.QuestionSet, 0, len(items))
	for idx, item := range items {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return malformed(fmt.Sprintf("item %d is not an object", idx))
		}

		var rq rawQuestion
		if err := json.Unmarshal(trimmed, &rq); err != nil {
			return malformed(fmt.Sprintf("item %d: %v", idx, err))
		}
		if rq.Question == nil || strings.TrimSpace(*rq.Question) == "" {
			return malformed(fmt.Sprintf("item %d: question missing", idx))
		}
		if rq.Answer == nil {
			return malformed(fmt.Sprintf("item %d: answer missing", idx))
		}

		var options []string
		if len(rq.Options) == 0 || string(rq.Options) == "null" {
			return malformed(fmt.Sprintf("item %d: options missing", idx))
		}
		if err := json.Unmarshal(rq.Options, &options); err != nil {
			return malformed(fmt.Sprintf("item %d: options must be an array of strings", idx))
		}
		if len(options) != OptionsPerQuestion {
			return malformed(fmt.Sprintf("item %d: want %d options, got %d", idx, OptionsPerQuestion, len(options)))
		}
		if !containsOption(options, *rq.Answer) {
			return malformed(fmt.Sprintf("item %d: answer is not one of the options", idx))
		}

		questions = append(questions, domain.Question{
			Question: *rq.Question,
			Options:  options,
			Answer:   *rq.Answer,
		})
	}

	return Result{Kind: Valid, Questions: questions}
}

func containsOption(options []string, answer string) bool {
	answer = strings.TrimSpace(answer)
	for _, o := range options {
		if strings.TrimSpace(o) == answer {
			return true
		}
	}
	return false
}

func malformed(reason string) Result {
	return Result{Kind: Malformed, Reason: reason}
}

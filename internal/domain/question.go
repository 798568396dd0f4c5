package domain

// Question is a single generated quiz item.
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// QuestionSet is the ordered list of questions produced for one document.
type QuestionSet []Question

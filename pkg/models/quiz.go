package models

// QuizOption is one selectable answer in a multiple-choice test.
type QuizOption struct {
	ID   int64  `json:"id"`   // word id the option text was drawn from
	Text string `json:"text"` // definition shown to the user
}

// Quiz is the test material for one queue item: the prompt, the shuffled
// options (one correct, the rest distractors from adjacent items), and the
// hint revealed after a first wrong attempt.
type Quiz struct {
	ItemID    int64        `json:"item_id"`
	Prompt    string       `json:"prompt"`
	Answer    string       `json:"answer"`
	Hint      string       `json:"hint"`
	CorrectID int64        `json:"correct_id"`
	Options   []QuizOption `json:"options"`
}

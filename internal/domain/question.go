package domain

// QuestionsPerSuit is the number of questions in a fully configured round+suit
const QuestionsPerSuit = 5

// QuestionType is how a question is presented
type QuestionType string

const (
	QuestionTypeText  QuestionType = "text"
	QuestionTypeImage QuestionType = "image"
)

// Question is one entry of the question bank
type Question struct {
	ID             string       `json:"id"`
	RoundNumber    int          `json:"round_number"`
	Suit           Suit         `json:"suit"`
	QuestionNumber int          `json:"question_number"`
	QuestionText   string       `json:"question_text"`
	QuestionType   QuestionType `json:"question_type"`
	Options        []string     `json:"options,omitempty"`
	CorrectAnswer  string       `json:"correct_answer"`
	Points         int          `json:"points"`
	ImageURL       *string      `json:"image_url,omitempty"`
}

// QuestionView is a question as shown to a team, without its answer
type QuestionView struct {
	ID             string       `json:"id"`
	QuestionNumber int          `json:"question_number"`
	QuestionText   string       `json:"question_text"`
	QuestionType   QuestionType `json:"question_type"`
	Options        []string     `json:"options,omitempty"`
	Points         int          `json:"points"`
	ImageURL       *string      `json:"image_url,omitempty"`
}

// View strips the correct answer.
func (q *Question) View() *QuestionView {
	return &QuestionView{
		ID:             q.ID,
		QuestionNumber: q.QuestionNumber,
		QuestionText:   q.QuestionText,
		QuestionType:   q.QuestionType,
		Options:        q.Options,
		Points:         q.Points,
		ImageURL:       q.ImageURL,
	}
}

// QuestionFilter narrows a question listing; zero values match everything
type QuestionFilter struct {
	RoundNumber int
	Suit        Suit
}

// Package survey computes completion metrics for survey responses.
package survey

import "github.com/Tiliavir/studylog/internal/model"

// answeredSet holds the ids of questions that have at least one non-empty answer.
type answeredSet map[string]struct{}

func newAnsweredSet(answers []model.Answer) answeredSet {
	set := answeredSet{}
	for _, a := range answers {
		if !a.Value.IsEmpty() {
			set[a.QuestionID] = struct{}{}
		}
	}
	return set
}

func (s answeredSet) answered(q model.Question) bool {
	_, ok := s[q.ID]
	return ok
}

// IsAnswered reports whether q has a matching non-empty answer.
func IsAnswered(q model.Question, answers []model.Answer) bool {
	return newAnsweredSet(answers).answered(q)
}

// CompletionRate returns the fraction of questions that are answered, in
// [0, 1]. It is 0 when there are no questions.
func CompletionRate(questions []model.Question, answers []model.Answer) float64 {
	if len(questions) == 0 {
		return 0
	}
	set := newAnsweredSet(answers)
	n := 0
	for _, q := range questions {
		if set.answered(q) {
			n++
		}
	}
	return float64(n) / float64(len(questions))
}

// MissingRequiredIDs returns the ids of required questions that are not
// answered, in question order.
func MissingRequiredIDs(questions []model.Question, answers []model.Answer) []string {
	set := newAnsweredSet(answers)
	missing := []string{}
	for _, q := range questions {
		if q.Required && !set.answered(q) {
			missing = append(missing, q.ID)
		}
	}
	return missing
}

// Summary bundles the completion metrics of one response.
type Summary struct {
	SurveyID        string   `json:"surveyId"`
	Respondent      string   `json:"respondent,omitempty"`
	Answered        int      `json:"answered"`
	Total           int      `json:"total"`
	Rate            float64  `json:"rate"`
	MissingRequired []string `json:"missingRequired"`
}

// Complete reports whether every required question is answered.
func (s Summary) Complete() bool { return len(s.MissingRequired) == 0 }

// Summarize computes the completion summary of resp against s.
func Summarize(s model.Survey, resp model.SurveyResponse) Summary {
	set := newAnsweredSet(resp.Answers)
	answered := 0
	for _, q := range s.Questions {
		if set.answered(q) {
			answered++
		}
	}
	return Summary{
		SurveyID:        s.ID,
		Respondent:      resp.Respondent,
		Answered:        answered,
		Total:           len(s.Questions),
		Rate:            CompletionRate(s.Questions, resp.Answers),
		MissingRequired: MissingRequiredIDs(s.Questions, resp.Answers),
	}
}

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/studylog/internal/model"
	"github.com/Tiliavir/studylog/internal/validate"
)

// ErrSurveyNotFound is returned when no definition exists for a survey id.
var ErrSurveyNotFound = errors.New("survey not found")

// ErrUnknownQuestion is returned when an answer names a question the survey does not have.
var ErrUnknownQuestion = errors.New("unknown question")

// ErrSurveyIDMismatch is returned when a definition's id differs from its file name.
var ErrSurveyIDMismatch = errors.New("survey id does not match file name")

func validSurveyID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

func surveyPath(base, id string) string {
	return filepath.Join(base, "surveys", id+".yaml")
}

func responsesPath(base, surveyID string) string {
	return filepath.Join(base, "responses", surveyID+".json")
}

// LoadSurvey reads and validates the survey definition <base>/surveys/<id>.yaml.
func LoadSurvey(base, id string) (model.Survey, error) {
	if !validSurveyID(id) {
		return model.Survey{}, fmt.Errorf("%w: invalid survey id %q", ErrSurveyNotFound, id)
	}
	path := surveyPath(base, id)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return model.Survey{}, fmt.Errorf("%w: %s", ErrSurveyNotFound, id)
	}
	if err != nil {
		return model.Survey{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	var s model.Survey
	if err := yaml.Unmarshal(data, &s); err != nil {
		return model.Survey{}, fmt.Errorf("parsing survey %s: %w", path, err)
	}
	switch s.ID {
	case "":
		s.ID = id
	case id:
	default:
		return model.Survey{}, fmt.Errorf("%w: %s declares id %q", ErrSurveyIDMismatch, path, s.ID)
	}
	if err := validate.Struct(s); err != nil {
		return model.Survey{}, fmt.Errorf("survey %s: %w", path, err)
	}
	return s, nil
}

// SaveSurvey writes a survey definition as YAML.
func SaveSurvey(base string, s model.Survey) error {
	if err := validate.Struct(s); err != nil {
		return err
	}
	if !validSurveyID(s.ID) {
		return fmt.Errorf("invalid survey id %q", s.ID)
	}
	path := surveyPath(base, s.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("storage error marshalling YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing %s: %w", path, err)
	}
	return nil
}

// ListSurveys returns all survey definitions sorted by id.
func ListSurveys(base string) ([]model.Survey, error) {
	matches, err := filepath.Glob(filepath.Join(base, "surveys", "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	surveys := []model.Survey{}
	for _, m := range matches {
		id := strings.TrimSuffix(filepath.Base(m), ".yaml")
		s, err := LoadSurvey(base, id)
		if err != nil {
			return nil, err
		}
		surveys = append(surveys, s)
	}
	return surveys, nil
}

func loadResponses(base, surveyID string) ([]model.SurveyResponse, error) {
	path := responsesPath(base, surveyID)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []model.SurveyResponse{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	var rs []model.SurveyResponse
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("corrupt JSON in %s: %w", path, err)
	}
	return rs, nil
}

// LoadResponse returns the respondent's answers for a survey. A respondent
// with no stored answers gets an empty response.
func LoadResponse(base, surveyID, respondent string) (model.SurveyResponse, error) {
	rs, err := loadResponses(base, surveyID)
	if err != nil {
		return model.SurveyResponse{}, err
	}
	for _, r := range rs {
		if r.Respondent == respondent {
			return r, nil
		}
	}
	return model.SurveyResponse{SurveyID: surveyID, Respondent: respondent, Answers: []model.Answer{}}, nil
}

// SaveResponse replaces or appends the respondent's response.
func SaveResponse(base string, resp model.SurveyResponse) error {
	rs, err := loadResponses(base, resp.SurveyID)
	if err != nil {
		return err
	}
	for i, r := range rs {
		if r.Respondent == resp.Respondent {
			rs[i] = resp
			return writeJSON(responsesPath(base, resp.SurveyID), rs)
		}
	}
	rs = append(rs, resp)
	return writeJSON(responsesPath(base, resp.SurveyID), rs)
}

// RecordAnswers merges answers into the respondent's stored response,
// replacing earlier answers to the same question. Answers to unknown
// questions are rejected.
func RecordAnswers(base string, s model.Survey, respondent string, answers []model.Answer, now time.Time) (model.SurveyResponse, error) {
	known := make(map[string]struct{}, len(s.Questions))
	for _, q := range s.Questions {
		known[q.ID] = struct{}{}
	}
	for _, a := range answers {
		if err := validate.Struct(a); err != nil {
			return model.SurveyResponse{}, err
		}
		if _, ok := known[a.QuestionID]; !ok {
			return model.SurveyResponse{}, fmt.Errorf("%w: survey %s has no question %q", ErrUnknownQuestion, s.ID, a.QuestionID)
		}
	}

	resp, err := LoadResponse(base, s.ID, respondent)
	if err != nil {
		return model.SurveyResponse{}, err
	}
	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}

next:
	for _, a := range answers {
		for i := range resp.Answers {
			if resp.Answers[i].QuestionID == a.QuestionID {
				resp.Answers[i] = a
				continue next
			}
		}
		resp.Answers = append(resp.Answers, a)
	}
	resp.UpdatedAt = now

	if err := SaveResponse(base, resp); err != nil {
		return model.SurveyResponse{}, err
	}
	return resp, nil
}

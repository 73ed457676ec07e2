package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// QuestionKind describes how a question is answered.
type QuestionKind string

const (
	KindText     QuestionKind = "text"
	KindSingle   QuestionKind = "single"
	KindMultiple QuestionKind = "multiple"
)

// Survey is a questionnaire definition, stored as YAML.
type Survey struct {
	ID        string     `json:"id" yaml:"id" validate:"required,notblank"`
	Title     string     `json:"title" yaml:"title"`
	Questions []Question `json:"questions" yaml:"questions" validate:"unique=ID,dive"`
}

// Question is a single survey question.
type Question struct {
	ID       string       `json:"id" yaml:"id" validate:"required,notblank"`
	Text     string       `json:"text" yaml:"text"`
	Kind     QuestionKind `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,oneof=text single multiple"`
	Required bool         `json:"required" yaml:"required"`
	Options  []string     `json:"options,omitempty" yaml:"options,omitempty"`
}

// Answer records the value given for one question.
type Answer struct {
	QuestionID string      `json:"questionId" yaml:"questionId" validate:"required"`
	Value      AnswerValue `json:"value" yaml:"value"`
}

// SurveyResponse is the set of answers one respondent gave to a survey.
type SurveyResponse struct {
	ID         string    `json:"id"`
	SurveyID   string    `json:"surveyId"`
	Respondent string    `json:"respondent"`
	Answers    []Answer  `json:"answers"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type valueKind uint8

const (
	valueSingle valueKind = iota
	valueMultiple
)

// AnswerValue is either a single string or a sequence of strings.
// The zero value is an empty Single.
type AnswerValue struct {
	kind     valueKind
	single   string
	multiple []string
}

// Single returns a string-valued answer.
func Single(s string) AnswerValue {
	return AnswerValue{kind: valueSingle, single: s}
}

// Multiple returns a sequence-valued answer.
func Multiple(values ...string) AnswerValue {
	return AnswerValue{kind: valueMultiple, multiple: values}
}

// IsMultiple reports whether v holds a sequence.
func (v AnswerValue) IsMultiple() bool { return v.kind == valueMultiple }

// String returns the single value, or "" for sequences.
func (v AnswerValue) String() string { return v.single }

// Values returns the sequence, or the single value wrapped in a slice.
func (v AnswerValue) Values() []string {
	if v.kind == valueMultiple {
		return v.multiple
	}
	return []string{v.single}
}

// IsEmpty reports whether v counts as "no answer": an empty string or a
// zero-length sequence.
func (v AnswerValue) IsEmpty() bool {
	if v.kind == valueMultiple {
		return len(v.multiple) == 0
	}
	return v.single == ""
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.kind == valueMultiple {
		if v.multiple == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.multiple)
	}
	return json.Marshal(v.single)
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Single("")
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("answer value: %w", err)
		}
		*v = Multiple(values...)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("answer value must be a string or a list of strings: %w", err)
	}
	*v = Single(s)
	return nil
}

func (v AnswerValue) MarshalYAML() (any, error) {
	if v.kind == valueMultiple {
		if v.multiple == nil {
			return []string{}, nil
		}
		return v.multiple, nil
	}
	return v.single, nil
}

func (v *AnswerValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var values []string
		if err := node.Decode(&values); err != nil {
			return fmt.Errorf("answer value: %w", err)
		}
		*v = Multiple(values...)
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*v = Single("")
			return nil
		}
		*v = Single(node.Value)
	default:
		return fmt.Errorf("answer value must be a string or a list of strings (line %d)", node.Line)
	}
	return nil
}

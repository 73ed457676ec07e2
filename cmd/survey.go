package cmd

import (
	"errors"
	"fmt"
	"io"
	"os/user"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/studylog/internal/model"
	"github.com/Tiliavir/studylog/internal/storage"
	"github.com/Tiliavir/studylog/internal/survey"
	"github.com/Tiliavir/studylog/internal/validate"
)

var (
	surveyRespondent string
	surveyMultiple   bool
)

var surveyCmd = &cobra.Command{
	Use:   "survey",
	Short: "Answer surveys and check their completion",
}

var surveyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List surveys with your completion rate",
	Args:  cobra.NoArgs,
	RunE:  runSurveyList,
}

var surveyStatusCmd = &cobra.Command{
	Use:   "status <survey-id>",
	Short: "Show completion and missing required questions",
	Args:  cobra.ExactArgs(1),
	RunE:  runSurveyStatus,
}

var surveyAnswerCmd = &cobra.Command{
	Use:   "answer <survey-id> <question-id> [value...]",
	Short: "Record an answer; no value clears it",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSurveyAnswer,
}

func init() {
	surveyCmd.PersistentFlags().StringVar(&surveyRespondent, "respondent", "", "Respondent name (default: current user)")
	surveyAnswerCmd.Flags().BoolVar(&surveyMultiple, "multiple", false, "Store the values as a list even when only one is given")
	surveyCmd.AddCommand(surveyListCmd)
	surveyCmd.AddCommand(surveyStatusCmd)
	surveyCmd.AddCommand(surveyAnswerCmd)
}

func respondent() string {
	if surveyRespondent != "" {
		return surveyRespondent
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "me"
}

// loadSurvey maps a missing survey to a user error.
func loadSurvey(id string) (model.Survey, error) {
	s, err := storage.LoadSurvey(base, id)
	if errors.Is(err, storage.ErrSurveyNotFound) {
		return model.Survey{}, userError(err)
	}
	if err != nil {
		return model.Survey{}, storageError(err)
	}
	return s, nil
}

func runSurveyList(cmd *cobra.Command, args []string) error {
	surveys, err := storage.ListSurveys(base)
	if err != nil {
		return storageError(err)
	}
	w := cmd.OutOrStdout()
	if len(surveys) == 0 {
		fmt.Fprintln(w, "No surveys found.")
		return nil
	}
	for _, s := range surveys {
		resp, err := storage.LoadResponse(base, s.ID, respondent())
		if err != nil {
			return storageError(err)
		}
		sum := survey.Summarize(s, resp)
		fmt.Fprintf(w, "%-20s %3.0f%%  %s\n", s.ID, sum.Rate*100, s.Title)
	}
	return nil
}

func runSurveyStatus(cmd *cobra.Command, args []string) error {
	s, err := loadSurvey(args[0])
	if err != nil {
		return err
	}
	resp, err := storage.LoadResponse(base, s.ID, respondent())
	if err != nil {
		return storageError(err)
	}
	printSummary(cmd.OutOrStdout(), s, resp)
	return nil
}

func printSummary(w io.Writer, s model.Survey, resp model.SurveyResponse) {
	sum := survey.Summarize(s, resp)
	title := s.Title
	if title == "" {
		title = s.ID
	}
	fmt.Fprintf(w, "%s: %d/%d answered (%.0f%%)\n", title, sum.Answered, sum.Total, sum.Rate*100)
	for _, a := range resp.Answers {
		if a.Value.IsEmpty() {
			continue
		}
		value := a.Value.String()
		if a.Value.IsMultiple() {
			value = strings.Join(a.Value.Values(), ", ")
		}
		fmt.Fprintf(w, "  %s: %s\n", a.QuestionID, value)
	}
	if sum.Complete() {
		fmt.Fprintln(w, "All required questions answered.")
		return
	}
	fmt.Fprintln(w, "Missing required:")
	for _, id := range sum.MissingRequired {
		text := ""
		for _, q := range s.Questions {
			if q.ID == id && q.Text != "" {
				text = "  " + q.Text
			}
		}
		fmt.Fprintf(w, "  - %s%s\n", id, text)
	}
}

func runSurveyAnswer(cmd *cobra.Command, args []string) error {
	s, err := loadSurvey(args[0])
	if err != nil {
		return err
	}

	values := args[2:]
	var value model.AnswerValue
	switch {
	case surveyMultiple || len(values) > 1:
		value = model.Multiple(values...)
	case len(values) == 1:
		value = model.Single(values[0])
	default:
		value = model.Single("")
	}

	resp, err := storage.RecordAnswers(base, s, respondent(),
		[]model.Answer{{QuestionID: args[1], Value: value}}, clock.Now())
	var verr *validate.Error
	if errors.Is(err, storage.ErrUnknownQuestion) || errors.As(err, &verr) {
		return userError(err)
	}
	if err != nil {
		return storageError(err)
	}
	printSummary(cmd.OutOrStdout(), s, resp)
	return nil
}

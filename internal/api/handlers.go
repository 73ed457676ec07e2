package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Tiliavir/studylog/internal/diary"
	"github.com/Tiliavir/studylog/internal/model"
	"github.com/Tiliavir/studylog/internal/observability"
	"github.com/Tiliavir/studylog/internal/storage"
	"github.com/Tiliavir/studylog/internal/survey"
	"github.com/Tiliavir/studylog/internal/timecalc"
	"github.com/Tiliavir/studylog/internal/validate"
)

const (
	defaultTimelineDays = 30
	maxTimelineDays     = 366
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// abortWithError maps err to a status code and writes it as JSON.
func abortWithError(c *gin.Context, err error) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, storage.ErrUnknownQuestion):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, storage.ErrSurveyNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		observability.LoggerFromContext(c.Request.Context()).Error("request failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: msg})
}

// timeline returns the posts of the last N days grouped by date.
func (s *Server) timeline(c *gin.Context) {
	days := defaultTimelineDays
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxTimelineDays {
			badRequest(c, "days must be between 1 and 366")
			return
		}
		days = n
	}

	now := s.now()
	posts, err := storage.LoadRange(s.base, now.AddDate(0, 0, -(days-1)), now)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, diary.GroupByDate(posts, now))
}

// weekly returns the statistics of the current week.
func (s *Server) weekly(c *gin.Context) {
	now := s.now()
	from, to := timecalc.WeekWindow(now)
	posts, err := storage.LoadRange(s.base, from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, diary.WeeklyStats(posts, now))
}

type createPostRequest struct {
	Timestamp *time.Time `json:"timestamp"`
	Duration  int        `json:"duration"`
	Subject   string     `json:"subject"`
	Content   string     `json:"content"`
}

func (s *Server) createPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}

	post := model.DiaryPost{
		Duration: req.Duration,
		Subject:  req.Subject,
		Content:  req.Content,
		Source:   "api",
	}
	if req.Timestamp != nil {
		post.Timestamp = *req.Timestamp
	} else {
		post.Timestamp = s.now()
	}
	post.ID = timecalc.GenerateID(post.Timestamp)

	if err := validate.Struct(post); err != nil {
		abortWithError(c, err)
		return
	}
	if err := storage.UpsertPost(s.base, post); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// deletePost removes a post; date is the UTC day key of the post.
func (s *Server) deletePost(c *gin.Context) {
	day, err := time.Parse(timecalc.DateLayout, c.Param("date"))
	if err != nil {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}
	removed, err := storage.DeletePost(s.base, day, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !removed {
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: "post not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listSurveys(c *gin.Context) {
	surveys, err := storage.ListSurveys(s.base)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, surveys)
}

// completion reports the completion rate and missing required questions
// of one respondent's answers.
func (s *Server) completion(c *gin.Context) {
	sv, err := storage.LoadSurvey(s.base, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	resp, err := storage.LoadResponse(s.base, sv.ID, c.Query("respondent"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, survey.Summarize(sv, resp))
}

type answersRequest struct {
	Respondent string         `json:"respondent" validate:"required,notblank"`
	Answers    []model.Answer `json:"answers"`
}

func (s *Server) recordAnswers(c *gin.Context) {
	sv, err := storage.LoadSurvey(s.base, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	var req answersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		abortWithError(c, err)
		return
	}

	resp, err := storage.RecordAnswers(s.base, sv, req.Respondent, req.Answers, s.clock.Now())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, survey.Summarize(sv, resp))
}

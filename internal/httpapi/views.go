package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/set-night/orderboard/internal/domain"
	"github.com/set-night/orderboard/internal/service"
)

type taskJSON struct {
	Key            string    `json:"key"`
	Name           string    `json:"name"`
	Points         int64     `json:"points"`
	MaxCompletions int       `json:"max_completions"`
	CreatedAt      time.Time `json:"created_at"`
}

type memberJSON struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Weekly      int64  `json:"weekly_points"`
	Monthly     int64  `json:"monthly_points"`
}

type submissionJSON struct {
	ID           string              `json:"id"`
	MemberID     string              `json:"member_id"`
	MemberName   string              `json:"member_name"`
	TaskKey      string              `json:"task_key"`
	Task         domain.TaskSnapshot `json:"task"`
	Amount       int                 `json:"amount"`
	EarnedPoints int64               `json:"earned_points"`
	Status       string              `json:"status"`
	ReviewedBy   *string             `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time          `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.catalog.ListTasks(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}

	out := make([]taskJSON, len(tasks))
	for i, t := range tasks {
		out[i] = taskJSON{
			Key:            t.Key,
			Name:           t.Name,
			Points:         t.Points,
			MaxCompletions: t.MaxCompletions,
			CreatedAt:      t.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: out})
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	period, err := domain.ParsePeriod(mux.Vars(r)["period"])
	if err != nil {
		fail(w, r, err)
		return
	}

	board, err := s.resets.LiveBoard(r.Context(), period)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: board})
}

// member answers for ids that never interacted as well, with zero totals.
func (s *Server) member(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	totals, err := s.ledger.MemberTotals(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}

	name := service.DisplayName(nil, id)
	m, err := s.members.Get(r.Context(), id)
	switch {
	case err == nil:
		name = m.DisplayName
	case !errors.Is(err, domain.ErrMemberNotFound):
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: memberJSON{
		ID:          id,
		DisplayName: name,
		Weekly:      totals.Weekly,
		Monthly:     totals.Monthly,
	}})
}

func (s *Server) submission(w http.ResponseWriter, r *http.Request) {
	view, err := s.workflow.View(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		fail(w, r, err)
		return
	}

	sub := view.Submission
	writeJSON(w, http.StatusOK, Response{Success: true, Data: submissionJSON{
		ID:           sub.ID,
		MemberID:     sub.MemberID,
		MemberName:   view.MemberName,
		TaskKey:      sub.TaskKey,
		Task:         sub.Task,
		Amount:       sub.Amount,
		EarnedPoints: sub.EarnedPoints,
		Status:       string(sub.Status),
		ReviewedBy:   sub.ReviewedBy,
		ReviewedAt:   sub.ReviewedAt,
		CreatedAt:    sub.CreatedAt,
	}})
}

// archives lists final standings newest first; ?limit= caps the count.
func (s *Server) archives(w http.ResponseWriter, r *http.Request) {
	period, err := domain.ParsePeriod(mux.Vars(r)["period"])
	if err != nil {
		fail(w, r, err)
		return
	}
	limit, err := limitParam(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	boards, err := s.resets.ArchiveBoards(r.Context(), period, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: boards})
}

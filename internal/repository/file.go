package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/renameio/v2"

	"github.com/set-night/orderboard/internal/domain"
)

// Document is the on-disk layout of the file storage driver.
type Document struct {
	Tasks       map[string]TaskDoc                   `json:"tasks"`
	Points      map[domain.Period]domain.PeriodLedger `json:"points"`
	Submissions map[string]SubmissionDoc             `json:"submissions"`
	Members     map[string]string                    `json:"members,omitempty"`
	Resets      map[domain.Period]time.Time          `json:"resets,omitempty"`
	Archives    []domain.LeaderboardArchive          `json:"archives,omitempty"`
}

type TaskDoc struct {
	Name           string    `json:"name"`
	Points         int64     `json:"points"`
	MaxCompletions int       `json:"max_completions"`
	Position       int       `json:"position"`
	CreatedBy      string    `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type SubmissionDoc struct {
	MemberID       string              `json:"member_id"`
	MemberName     string              `json:"member_name,omitempty"`
	TaskKey        string              `json:"task_key"`
	Task           domain.TaskSnapshot `json:"task"`
	Amount         int                 `json:"amount"`
	EarnedPoints   int64               `json:"earned_points"`
	Status         string              `json:"status"`
	ReviewedBy     *string             `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time          `json:"reviewed_at,omitempty"`
	ClaimMessageID *string             `json:"claim_message_id,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

func (st *memState) document() *Document {
	doc := &Document{
		Tasks:       make(map[string]TaskDoc, len(st.tasks)),
		Points:      make(map[domain.Period]domain.PeriodLedger, len(st.ledgers)),
		Submissions: make(map[string]SubmissionDoc, len(st.submissions)),
		Members:     make(map[string]string, len(st.members)),
		Resets:      make(map[domain.Period]time.Time, len(st.resets)),
		Archives:    st.archives,
	}
	for i, t := range st.tasks {
		doc.Tasks[t.Key] = TaskDoc{
			Name:           t.Name,
			Points:         t.Points,
			MaxCompletions: t.MaxCompletions,
			Position:       i,
			CreatedBy:      t.CreatedBy,
			CreatedAt:      t.CreatedAt,
		}
	}
	for p, l := range st.ledgers {
		doc.Points[p] = l
	}
	for id, s := range st.submissions {
		doc.Submissions[id] = SubmissionDoc{
			MemberID:       s.MemberID,
			MemberName:     s.MemberName,
			TaskKey:        s.TaskKey,
			Task:           s.Task,
			Amount:         s.Amount,
			EarnedPoints:   s.EarnedPoints,
			Status:         string(s.Status),
			ReviewedBy:     s.ReviewedBy,
			ReviewedAt:     s.ReviewedAt,
			ClaimMessageID: s.ClaimMessageID,
			CreatedAt:      s.CreatedAt,
		}
	}
	for id, m := range st.members {
		doc.Members[id] = m.DisplayName
	}
	for p, t := range st.resets {
		doc.Resets[p] = t
	}
	return doc
}

func stateFromDocument(doc *Document) (*memState, error) {
	st := newMemState()

	type positioned struct {
		pos  int
		task domain.Task
	}
	var tasks []positioned
	for key, t := range doc.Tasks {
		tasks = append(tasks, positioned{pos: t.Position, task: domain.Task{
			Key:            key,
			Name:           t.Name,
			Points:         t.Points,
			MaxCompletions: t.MaxCompletions,
			CreatedBy:      t.CreatedBy,
			CreatedAt:      t.CreatedAt,
		}})
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].pos == tasks[j].pos {
			return tasks[i].task.Key < tasks[j].task.Key
		}
		return tasks[i].pos < tasks[j].pos
	})
	for _, t := range tasks {
		st.tasks = append(st.tasks, t.task)
	}

	for p, l := range doc.Points {
		if _, err := domain.ParsePeriod(string(p)); err != nil {
			return nil, fmt.Errorf("load points: %w", err)
		}
		ledger := l.Clone()
		for id, rec := range ledger {
			if rec.Completions == nil {
				rec.Completions = map[string]int{}
				ledger[id] = rec
			}
		}
		st.ledgers[p] = ledger
	}

	for id, s := range doc.Submissions {
		st.submissions[id] = domain.Submission{
			ID:             id,
			MemberID:       s.MemberID,
			MemberName:     s.MemberName,
			TaskKey:        s.TaskKey,
			Task:           s.Task,
			Amount:         s.Amount,
			EarnedPoints:   s.EarnedPoints,
			Status:         domain.SubmissionStatus(s.Status),
			ReviewedBy:     s.ReviewedBy,
			ReviewedAt:     s.ReviewedAt,
			ClaimMessageID: s.ClaimMessageID,
			CreatedAt:      s.CreatedAt,
		}
	}
	for id, name := range doc.Members {
		st.members[id] = domain.Member{ID: id, DisplayName: name}
	}
	for p, t := range doc.Resets {
		st.resets[p] = t
	}
	st.archives = append(st.archives, doc.Archives...)
	return st, nil
}

// FileSaver writes the document as JSON, replacing the file atomically.
type FileSaver struct {
	Path string
}

func (f *FileSaver) Save(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := renameio.WriteFile(f.Path, data, 0o644); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

// LoadFile reads a document written by FileSaver. A missing file yields nil.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read data file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse data file: %w", err)
	}
	return &doc, nil
}

// OpenFileStore loads path if present and persists every commit back to it.
func OpenFileStore(path string) (*MemoryStore, error) {
	doc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewPersistentMemoryStore(doc, &FileSaver{Path: path})
}

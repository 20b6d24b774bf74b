package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/set-night/orderboard/internal/domain"
)

// Saver persists a committed document. A failing Save aborts the commit.
type Saver interface {
	Save(doc *Document) error
}

// MemoryStore keeps state in process. Transactions are serialized by one
// mutex and work on a copy that replaces the live state only after the
// saver accepted it.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
	saver Saver
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemState()}
}

// NewPersistentMemoryStore starts from doc (may be nil) and saves every commit.
func NewPersistentMemoryStore(doc *Document, saver Saver) (*MemoryStore, error) {
	st := newMemState()
	if doc != nil {
		var err error
		if st, err = stateFromDocument(doc); err != nil {
			return nil, err
		}
	}
	return &MemoryStore{state: st, saver: saver}, nil
}

func (s *MemoryStore) WithTx(ctx context.Context, fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.state.clone()
	tx := &memTx{st: work}
	if err := fn(tx); err != nil {
		return err
	}
	if !tx.dirty {
		return nil
	}

	if s.saver != nil {
		if err := s.saver.Save(work.document()); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
	}

	s.state = work
	return nil
}

type memState struct {
	tasks       []domain.Task
	ledgers     map[domain.Period]domain.PeriodLedger
	submissions map[string]domain.Submission
	members     map[string]domain.Member
	resets      map[domain.Period]time.Time
	archives    []domain.LeaderboardArchive
}

func newMemState() *memState {
	st := &memState{
		ledgers:     make(map[domain.Period]domain.PeriodLedger),
		submissions: make(map[string]domain.Submission),
		members:     make(map[string]domain.Member),
		resets:      make(map[domain.Period]time.Time),
	}
	for _, p := range domain.Periods() {
		st.ledgers[p] = domain.PeriodLedger{}
	}
	return st
}

func (st *memState) clone() *memState {
	c := &memState{
		tasks:       append([]domain.Task(nil), st.tasks...),
		ledgers:     make(map[domain.Period]domain.PeriodLedger, len(st.ledgers)),
		submissions: make(map[string]domain.Submission, len(st.submissions)),
		members:     make(map[string]domain.Member, len(st.members)),
		resets:      make(map[domain.Period]time.Time, len(st.resets)),
		archives:    append([]domain.LeaderboardArchive(nil), st.archives...),
	}
	for p, l := range st.ledgers {
		c.ledgers[p] = l.Clone()
	}
	for id, sub := range st.submissions {
		c.submissions[id] = sub
	}
	for id, m := range st.members {
		c.members[id] = m
	}
	for p, t := range st.resets {
		c.resets[p] = t
	}
	return c
}

type memTx struct {
	st    *memState
	dirty bool
}

func (t *memTx) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return append([]domain.Task(nil), t.st.tasks...), nil
}

func (t *memTx) GetTask(ctx context.Context, key string) (domain.Task, error) {
	for _, task := range t.st.tasks {
		if task.Key == key {
			return task, nil
		}
	}
	return domain.Task{}, domain.ErrTaskNotFound
}

func (t *memTx) InsertTask(ctx context.Context, task domain.Task) error {
	if _, err := t.GetTask(ctx, task.Key); err == nil {
		return domain.ErrTaskExists
	}
	t.st.tasks = append(t.st.tasks, task)
	t.dirty = true
	return nil
}

func (t *memTx) DeleteTask(ctx context.Context, key string) error {
	for i, task := range t.st.tasks {
		if task.Key == key {
			t.st.tasks = append(t.st.tasks[:i:i], t.st.tasks[i+1:]...)
			t.dirty = true
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

// The store mutex already serializes whole transactions.
func (t *memTx) LockPeriod(ctx context.Context, period domain.Period, exclusive bool) error {
	return nil
}

func (t *memTx) LockMember(ctx context.Context, period domain.Period, memberID string) error {
	return nil
}

func (t *memTx) ledger(period domain.Period) domain.PeriodLedger {
	l, ok := t.st.ledgers[period]
	if !ok {
		l = domain.PeriodLedger{}
		t.st.ledgers[period] = l
	}
	return l
}

func (t *memTx) GetMemberRecord(ctx context.Context, period domain.Period, memberID string) (domain.MemberPeriodRecord, error) {
	return t.ledger(period).Record(memberID).Clone(), nil
}

func (t *memTx) SetCompletions(ctx context.Context, period domain.Period, memberID, taskKey string, n int) error {
	t.dirty = true
	l := t.ledger(period)
	rec := l.Record(memberID)
	if rec.Completions == nil {
		rec.Completions = map[string]int{}
	}
	rec.Completions[taskKey] = n
	l[memberID] = rec
	return nil
}

func (t *memTx) AddPoints(ctx context.Context, period domain.Period, memberID string, delta int64) (int64, error) {
	t.dirty = true
	l := t.ledger(period)
	rec := l.Record(memberID)
	rec.TotalPoints += delta
	l[memberID] = rec
	return rec.TotalPoints, nil
}

func (t *memTx) GetPeriodLedger(ctx context.Context, period domain.Period) (domain.PeriodLedger, error) {
	return t.ledger(period).Clone(), nil
}

func (t *memTx) ZeroPeriod(ctx context.Context, period domain.Period) error {
	t.dirty = true
	l := t.ledger(period)
	for id := range l {
		l[id] = domain.MemberPeriodRecord{Completions: map[string]int{}}
	}
	return nil
}

func (t *memTx) InsertSubmission(ctx context.Context, sub domain.Submission) error {
	if _, ok := t.st.submissions[sub.ID]; ok {
		return domain.ErrSubmissionExists
	}
	t.st.submissions[sub.ID] = sub
	t.dirty = true
	return nil
}

func (t *memTx) GetSubmission(ctx context.Context, id string) (domain.Submission, error) {
	sub, ok := t.st.submissions[id]
	if !ok {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	return sub, nil
}

func (t *memTx) GetSubmissionForUpdate(ctx context.Context, id string) (domain.Submission, error) {
	return t.GetSubmission(ctx, id)
}

func (t *memTx) UpdateSubmission(ctx context.Context, sub domain.Submission) error {
	if _, ok := t.st.submissions[sub.ID]; !ok {
		return domain.ErrSubmissionNotFound
	}
	t.st.submissions[sub.ID] = sub
	t.dirty = true
	return nil
}

func (t *memTx) ListSubmissionsByStatus(ctx context.Context, status domain.SubmissionStatus) ([]domain.Submission, error) {
	var subs []domain.Submission
	for _, sub := range t.st.submissions {
		if sub.Status == status {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].CreatedAt.Equal(subs[j].CreatedAt) {
			return subs[i].ID < subs[j].ID
		}
		return subs[i].CreatedAt.Before(subs[j].CreatedAt)
	})
	return subs, nil
}

func (t *memTx) UpsertMember(ctx context.Context, member domain.Member) error {
	t.dirty = true
	t.st.members[member.ID] = member
	return nil
}

func (t *memTx) GetMember(ctx context.Context, id string) (domain.Member, error) {
	m, ok := t.st.members[id]
	if !ok {
		return domain.Member{}, domain.ErrMemberNotFound
	}
	return m, nil
}

func (t *memTx) GetMemberNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if m, ok := t.st.members[id]; ok {
			names[id] = m.DisplayName
		}
	}
	return names, nil
}

func (t *memTx) GetLastResetForUpdate(ctx context.Context, period domain.Period) (time.Time, error) {
	return t.st.resets[period], nil
}

func (t *memTx) SetLastReset(ctx context.Context, period domain.Period, at time.Time) error {
	t.dirty = true
	t.st.resets[period] = at
	return nil
}

func (t *memTx) InsertArchive(ctx context.Context, archive domain.LeaderboardArchive) error {
	t.dirty = true
	archive.Snapshot = archive.Snapshot.Clone()
	t.st.archives = append(t.st.archives, archive)
	return nil
}

func (t *memTx) ListArchives(ctx context.Context, period domain.Period, limit int) ([]domain.LeaderboardArchive, error) {
	var out []domain.LeaderboardArchive
	for i := len(t.st.archives) - 1; i >= 0 && len(out) < limit; i-- {
		if a := t.st.archives[i]; a.Period == period {
			out = append(out, a)
		}
	}
	return out, nil
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/set-night/orderboard/internal/domain"
	"github.com/set-night/orderboard/internal/repository"
)

var errRender = errors.New("chat unavailable")

// recordingNotifier remembers every render call.
type recordingNotifier struct {
	mu          sync.Mutex
	fail        bool
	ref         string
	catalogs    int
	openTasks   int
	submissions []domain.SubmissionView
	boards      []domain.Leaderboard
}

func (n *recordingNotifier) RenderCatalog(ctx context.Context, tasks []domain.Task) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.catalogs++
	if n.fail {
		return errRender
	}
	return nil
}

func (n *recordingNotifier) RenderOpenTasks(ctx context.Context, tasks []domain.Task) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.openTasks++
	if n.fail {
		return errRender
	}
	return nil
}

func (n *recordingNotifier) RenderSubmission(ctx context.Context, view domain.SubmissionView) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submissions = append(n.submissions, view)
	if n.fail {
		return "", errRender
	}
	return n.ref, nil
}

func (n *recordingNotifier) RenderLeaderboard(ctx context.Context, board domain.Leaderboard) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.boards = append(n.boards, board)
	if n.fail {
		return errRender
	}
	return nil
}

type recordingSink struct {
	archives []domain.LeaderboardArchive
}

func (s *recordingSink) Put(ctx context.Context, archive domain.LeaderboardArchive) error {
	s.archives = append(s.archives, archive)
	return nil
}

// switchSaver fails every save while fail is set.
type switchSaver struct {
	fail  bool
	saves int
}

func (s *switchSaver) Save(doc *repository.Document) error {
	if s.fail {
		return errors.New("disk full")
	}
	s.saves++
	return nil
}

type fixture struct {
	store    *repository.MemoryStore
	saver    *switchSaver
	catalog  *CatalogService
	ledger   *LedgerService
	workflow *WorkflowService
	members  *MemberService
	resets   *ResetService
	notifier *recordingNotifier
	sink     *recordingSink
}

var berlin = mustLocation("Europe/Berlin")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func testSchedule() Schedule {
	return Schedule{
		Location:      berlin,
		WeeklyWeekday: time.Monday,
		WeeklyHour:    19,
		MonthlyHour:   20,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	saver := &switchSaver{}
	store, err := repository.NewPersistentMemoryStore(nil, saver)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	notifier := &recordingNotifier{}
	sink := &recordingSink{}
	return &fixture{
		store:    store,
		saver:    saver,
		catalog:  NewCatalogService(store),
		ledger:   NewLedgerService(store),
		workflow: NewWorkflowService(store),
		members:  NewMemberService(store),
		resets:   NewResetService(store, testSchedule(), notifier, sink, nil),
		notifier: notifier,
		sink:     sink,
	}
}

func (f *fixture) community() *Community {
	return NewCommunity(CommunityDeps{
		Catalog:  f.catalog,
		Workflow: f.workflow,
		Members:  f.members,
		Resets:   f.resets,
		Notifier: f.notifier,
	})
}

func (f *fixture) createTask(t *testing.T, name string, points int64, maxCompletions int) domain.Task {
	t.Helper()
	task, err := f.catalog.CreateTask(context.Background(), name, points, maxCompletions, "admin")
	if err != nil {
		t.Fatalf("create task %q: %v", name, err)
	}
	return task
}

func (f *fixture) claim(member, taskKey string, amount int, requestID string) (domain.SubmissionView, error) {
	return f.workflow.SubmitClaim(context.Background(), ClaimRequest{
		MemberID:   member,
		MemberName: "Member " + member,
		TaskKey:    taskKey,
		Amount:     amount,
		RequestID:  requestID,
	})
}

func (f *fixture) record(t *testing.T, period domain.Period, member string) domain.MemberPeriodRecord {
	t.Helper()
	rec, err := f.ledger.GetTotals(context.Background(), period, member)
	if err != nil {
		t.Fatalf("get totals: %v", err)
	}
	return rec
}

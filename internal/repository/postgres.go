package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/set-night/orderboard/internal/domain"
)

const pgUniqueViolation = "23505"

// PgStore keeps all state in PostgreSQL.
type PgStore struct {
	db *pgxpool.Pool
}

func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{db: db}
}

func (s *PgStore) WithTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// ── Catalog ──────────────────────────────────────────────────────────

func (t *pgTx) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT key, name, points, max_completions, created_by, created_at
		FROM tasks
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(&task.Key, &task.Name, &task.Points, &task.MaxCompletions, &task.CreatedBy, &task.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (t *pgTx) GetTask(ctx context.Context, key string) (domain.Task, error) {
	var task domain.Task
	err := t.tx.QueryRow(ctx, `
		SELECT key, name, points, max_completions, created_by, created_at
		FROM tasks
		WHERE key = $1`, key,
	).Scan(&task.Key, &task.Name, &task.Points, &task.MaxCompletions, &task.CreatedBy, &task.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, domain.ErrTaskNotFound
		}
		return domain.Task{}, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func (t *pgTx) InsertTask(ctx context.Context, task domain.Task) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO tasks (key, name, points, max_completions, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		task.Key, task.Name, task.Points, task.MaxCompletions, task.CreatedBy, task.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrTaskExists
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (t *pgTx) DeleteTask(ctx context.Context, key string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM tasks WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// ── Ledger ───────────────────────────────────────────────────────────

func (t *pgTx) LockPeriod(ctx context.Context, period domain.Period, exclusive bool) error {
	fn := "pg_advisory_xact_lock_shared"
	if exclusive {
		fn = "pg_advisory_xact_lock"
	}
	_, err := t.tx.Exec(ctx, "SELECT "+fn+"(hashtextextended($1, 0))", "orderboard:ledger:"+string(period))
	if err != nil {
		return fmt.Errorf("lock period %s: %w", period, err)
	}
	return nil
}

func (t *pgTx) LockMember(ctx context.Context, period domain.Period, memberID string) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO ledger_totals (period, member_id)
		VALUES ($1, $2)
		ON CONFLICT (period, member_id) DO NOTHING`, period, memberID)
	if err != nil {
		return fmt.Errorf("ensure ledger row: %w", err)
	}

	var one int
	err = t.tx.QueryRow(ctx, `
		SELECT 1 FROM ledger_totals
		WHERE period = $1 AND member_id = $2
		FOR UPDATE`, period, memberID,
	).Scan(&one)
	if err != nil {
		return fmt.Errorf("lock ledger row: %w", err)
	}
	return nil
}

func (t *pgTx) GetMemberRecord(ctx context.Context, period domain.Period, memberID string) (domain.MemberPeriodRecord, error) {
	rec := domain.MemberPeriodRecord{Completions: map[string]int{}}

	err := t.tx.QueryRow(ctx, `
		SELECT total_points FROM ledger_totals
		WHERE period = $1 AND member_id = $2`, period, memberID,
	).Scan(&rec.TotalPoints)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return rec, fmt.Errorf("get total: %w", err)
	}

	rows, err := t.tx.Query(ctx, `
		SELECT task_key, completions FROM ledger_completions
		WHERE period = $1 AND member_id = $2 AND completions > 0`, period, memberID)
	if err != nil {
		return rec, fmt.Errorf("get completions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return rec, fmt.Errorf("scan completions: %w", err)
		}
		rec.Completions[key] = n
	}
	return rec, rows.Err()
}

func (t *pgTx) SetCompletions(ctx context.Context, period domain.Period, memberID, taskKey string, n int) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO ledger_completions (period, member_id, task_key, completions)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (period, member_id, task_key) DO UPDATE SET completions = EXCLUDED.completions`,
		period, memberID, taskKey, n,
	)
	if err != nil {
		return fmt.Errorf("set completions: %w", err)
	}
	return nil
}

func (t *pgTx) AddPoints(ctx context.Context, period domain.Period, memberID string, delta int64) (int64, error) {
	var total int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO ledger_totals (period, member_id, total_points)
		VALUES ($1, $2, $3)
		ON CONFLICT (period, member_id) DO UPDATE SET total_points = ledger_totals.total_points + EXCLUDED.total_points
		RETURNING total_points`,
		period, memberID, delta,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("add points: %w", err)
	}
	return total, nil
}

func (t *pgTx) GetPeriodLedger(ctx context.Context, period domain.Period) (domain.PeriodLedger, error) {
	ledger := domain.PeriodLedger{}

	rows, err := t.tx.Query(ctx, `
		SELECT member_id, total_points FROM ledger_totals WHERE period = $1`, period)
	if err != nil {
		return nil, fmt.Errorf("get totals: %w", err)
	}
	for rows.Next() {
		var id string
		var total int64
		if err := rows.Scan(&id, &total); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan total: %w", err)
		}
		ledger[id] = domain.MemberPeriodRecord{TotalPoints: total, Completions: map[string]int{}}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get totals: %w", err)
	}

	rows, err = t.tx.Query(ctx, `
		SELECT member_id, task_key, completions FROM ledger_completions
		WHERE period = $1 AND completions > 0`, period)
	if err != nil {
		return nil, fmt.Errorf("get completions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, key string
		var n int
		if err := rows.Scan(&id, &key, &n); err != nil {
			return nil, fmt.Errorf("scan completions: %w", err)
		}
		rec := ledger.Record(id)
		rec.Completions[key] = n
		ledger[id] = rec
	}
	return ledger, rows.Err()
}

func (t *pgTx) ZeroPeriod(ctx context.Context, period domain.Period) error {
	if _, err := t.tx.Exec(ctx, `UPDATE ledger_totals SET total_points = 0 WHERE period = $1`, period); err != nil {
		return fmt.Errorf("zero totals: %w", err)
	}
	if _, err := t.tx.Exec(ctx, `DELETE FROM ledger_completions WHERE period = $1`, period); err != nil {
		return fmt.Errorf("clear completions: %w", err)
	}
	return nil
}

// ── Submissions ──────────────────────────────────────────────────────

const submissionColumns = `
	id, member_id, member_name, task_key, task_name, task_points, task_max_completions,
	amount, earned_points, status, reviewed_by, reviewed_at, claim_message_id, created_at`

func scanSubmission(row pgx.Row) (domain.Submission, error) {
	var sub domain.Submission
	var status string
	err := row.Scan(
		&sub.ID, &sub.MemberID, &sub.MemberName, &sub.TaskKey,
		&sub.Task.Name, &sub.Task.Points, &sub.Task.MaxCompletions,
		&sub.Amount, &sub.EarnedPoints, &status,
		&sub.ReviewedBy, &sub.ReviewedAt, &sub.ClaimMessageID, &sub.CreatedAt,
	)
	sub.Status = domain.SubmissionStatus(status)
	return sub, err
}

func (t *pgTx) InsertSubmission(ctx context.Context, sub domain.Submission) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO submissions (`+submissionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		sub.ID, sub.MemberID, sub.MemberName, sub.TaskKey,
		sub.Task.Name, sub.Task.Points, sub.Task.MaxCompletions,
		sub.Amount, sub.EarnedPoints, string(sub.Status),
		sub.ReviewedBy, sub.ReviewedAt, sub.ClaimMessageID, sub.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSubmissionExists
		}
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (t *pgTx) getSubmission(ctx context.Context, query, id string) (domain.Submission, error) {
	sub, err := scanSubmission(t.tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Submission{}, domain.ErrSubmissionNotFound
		}
		return domain.Submission{}, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

func (t *pgTx) GetSubmission(ctx context.Context, id string) (domain.Submission, error) {
	return t.getSubmission(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id)
}

func (t *pgTx) GetSubmissionForUpdate(ctx context.Context, id string) (domain.Submission, error) {
	return t.getSubmission(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1 FOR UPDATE`, id)
}

func (t *pgTx) UpdateSubmission(ctx context.Context, sub domain.Submission) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE submissions
		SET status = $2, reviewed_by = $3, reviewed_at = $4, claim_message_id = $5
		WHERE id = $1`,
		sub.ID, string(sub.Status), sub.ReviewedBy, sub.ReviewedAt, sub.ClaimMessageID,
	)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}

func (t *pgTx) ListSubmissionsByStatus(ctx context.Context, status domain.SubmissionStatus) ([]domain.Submission, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT `+submissionColumns+` FROM submissions
		WHERE status = $1
		ORDER BY created_at, id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// ── Members ──────────────────────────────────────────────────────────

func (t *pgTx) UpsertMember(ctx context.Context, member domain.Member) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO members (id, display_name, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name, updated_at = EXCLUDED.updated_at`,
		member.ID, member.DisplayName, member.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert member: %w", err)
	}
	return nil
}

func (t *pgTx) GetMember(ctx context.Context, id string) (domain.Member, error) {
	var m domain.Member
	err := t.tx.QueryRow(ctx, `SELECT id, display_name, updated_at FROM members WHERE id = $1`, id).
		Scan(&m.ID, &m.DisplayName, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Member{}, domain.ErrMemberNotFound
		}
		return domain.Member{}, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (t *pgTx) GetMemberNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	rows, err := t.tx.Query(ctx, `SELECT id, display_name FROM members WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get member names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan member name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

// ── Resets ───────────────────────────────────────────────────────────

func (t *pgTx) GetLastResetForUpdate(ctx context.Context, period domain.Period) (time.Time, error) {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO period_resets (period) VALUES ($1)
		ON CONFLICT (period) DO NOTHING`, period)
	if err != nil {
		return time.Time{}, fmt.Errorf("ensure reset row: %w", err)
	}

	var last pgtype.Timestamptz
	err = t.tx.QueryRow(ctx, `
		SELECT last_reset_at FROM period_resets
		WHERE period = $1
		FOR UPDATE`, period,
	).Scan(&last)
	if err != nil {
		return time.Time{}, fmt.Errorf("get last reset: %w", err)
	}
	return timestamptzToTime(last), nil
}

func (t *pgTx) SetLastReset(ctx context.Context, period domain.Period, at time.Time) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO period_resets (period, last_reset_at) VALUES ($1, $2)
		ON CONFLICT (period) DO UPDATE SET last_reset_at = EXCLUDED.last_reset_at`, period, timeToTimestamptz(at))
	if err != nil {
		return fmt.Errorf("set last reset: %w", err)
	}
	return nil
}

func (t *pgTx) InsertArchive(ctx context.Context, archive domain.LeaderboardArchive) error {
	snapshot, err := json.Marshal(archive.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = t.tx.Exec(ctx, `
		INSERT INTO leaderboard_archives (id, period, title, snapshot, archived_at)
		VALUES ($1, $2, $3, $4, $5)`,
		archive.ID, archive.Period, archive.Title, snapshot, archive.ArchivedAt,
	)
	if err != nil {
		return fmt.Errorf("insert archive: %w", err)
	}
	return nil
}

func (t *pgTx) ListArchives(ctx context.Context, period domain.Period, limit int) ([]domain.LeaderboardArchive, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id::text, period, title, snapshot, archived_at
		FROM leaderboard_archives
		WHERE period = $1
		ORDER BY archived_at DESC
		LIMIT $2`, period, limit)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	defer rows.Close()

	var archives []domain.LeaderboardArchive
	for rows.Next() {
		var a domain.LeaderboardArchive
		var p string
		var snapshot []byte
		if err := rows.Scan(&a.ID, &p, &a.Title, &snapshot, &a.ArchivedAt); err != nil {
			return nil, fmt.Errorf("scan archive: %w", err)
		}
		a.Period = domain.Period(p)
		if err := json.Unmarshal(snapshot, &a.Snapshot); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot: %w", err)
		}
		archives = append(archives, a)
	}
	return archives, rows.Err()
}

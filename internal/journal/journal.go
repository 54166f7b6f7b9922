package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"vidgen/internal/config"
	"vidgen/internal/project"
	"vidgen/internal/tasks"
)

// Entry is one journaled submission.
type Entry struct {
	TaskID      string       `json:"task_id"`
	Kind        project.Kind `json:"kind"`
	Template    string       `json:"template"`
	Scenes      int          `json:"scenes"`
	Status      tasks.Status `json:"status"`
	SubmittedAt time.Time    `json:"submitted_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	Output      string       `json:"output,omitempty"`
	DownloadURL string       `json:"download_url,omitempty"`
	Error       string       `json:"error,omitempty"`
	Local       bool         `json:"local,omitempty"`
}

// Journal persists submissions in SQLite.
type Journal struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

var _ tasks.Recorder = (*Journal)(nil)

// Open creates or opens the journal under the configured state directory.
func Open(cfg *config.Config) (*Journal, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.JournalPath())
}

// OpenPath opens the journal stored at path.
func OpenPath(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	j := &Journal{db: db, path: path, now: time.Now}
	if err := j.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Path returns the database file location.
func (j *Journal) Path() string { return j.path }

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// RecordSubmission stores a new submission, replacing any earlier row with
// the same task id.
func (j *Journal) RecordSubmission(ctx context.Context, p project.Project, t tasks.Task) error {
	updated := j.now().UTC()
	submitted := t.SubmittedAt
	if submitted.IsZero() {
		submitted = updated
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO submissions (
            task_id, kind, template, scene_count, status, submitted_at, updated_at,
            completed_at, output, download_url, error_message, local
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		string(p.Kind),
		p.Template,
		len(p.Scenes),
		string(t.Status),
		formatTime(submitted),
		formatTime(updated),
		nullableTime(t.CompletedAt),
		nullableString(t.Output),
		nullableString(t.DownloadURL),
		nullableString(t.Error),
		boolToInt(t.Local),
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// RecordStatus applies a task snapshot to its journaled submission. Tasks
// that were never journaled are ignored.
func (j *Journal) RecordStatus(ctx context.Context, t tasks.Task) error {
	_, err := j.db.ExecContext(ctx,
		`UPDATE submissions
         SET status = ?, updated_at = ?, completed_at = ?, output = ?, download_url = ?, error_message = ?
         WHERE task_id = ?`,
		string(t.Status),
		formatTime(j.now().UTC()),
		nullableTime(t.CompletedAt),
		nullableString(t.Output),
		nullableString(t.DownloadURL),
		nullableString(t.Error),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	return nil
}

// RecordImage journals a synchronous image render written to output.
func (j *Journal) RecordImage(ctx context.Context, p project.Project, output string) (Entry, error) {
	now := j.now().UTC()
	t := tasks.Task{
		ID:          "image-" + uuid.NewString(),
		Status:      tasks.StatusCompleted,
		SubmittedAt: now,
		CompletedAt: &now,
		Output:      output,
	}
	if err := j.RecordSubmission(ctx, p, t); err != nil {
		return Entry{}, err
	}
	entry, err := j.Get(ctx, t.ID)
	if err != nil {
		return Entry{}, err
	}
	return *entry, nil
}

const entryColumns = "task_id, kind, template, scene_count, status, submitted_at, updated_at, completed_at, output, download_url, error_message, local"

// Get returns the entry for id, or nil when it was never journaled.
func (j *Journal) Get(ctx context.Context, id string) (*Entry, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM submissions WHERE task_id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return entry, nil
}

// List returns the newest entries first. A limit of zero or less returns
// every entry.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM submissions ORDER BY submitted_at DESC, task_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return entries, nil
}

// Prune deletes entries submitted before cutoff and reports how many went.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx, `DELETE FROM submissions WHERE submitted_at < ?`, formatTime(cutoff.UTC()))
	if err != nil {
		return 0, fmt.Errorf("prune submissions: %w", err)
	}
	return res.RowsAffected()
}

// Clear deletes every entry.
func (j *Journal) Clear(ctx context.Context) (int64, error) {
	res, err := j.db.ExecContext(ctx, `DELETE FROM submissions`)
	if err != nil {
		return 0, fmt.Errorf("clear submissions: %w", err)
	}
	return res.RowsAffected()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		entry        Entry
		kind         string
		status       string
		submittedRaw string
		updatedRaw   string
		completedRaw sql.NullString
		output       sql.NullString
		downloadURL  sql.NullString
		errorMessage sql.NullString
		local        int
	)
	if err := scanner.Scan(
		&entry.TaskID,
		&kind,
		&entry.Template,
		&entry.Scenes,
		&status,
		&submittedRaw,
		&updatedRaw,
		&completedRaw,
		&output,
		&downloadURL,
		&errorMessage,
		&local,
	); err != nil {
		return nil, err
	}
	entry.Kind = project.Kind(kind)
	entry.Status = tasks.Status(status)
	entry.SubmittedAt = parseTime(submittedRaw)
	entry.UpdatedAt = parseTime(updatedRaw)
	if completedRaw.Valid {
		if ts := parseTime(completedRaw.String); !ts.IsZero() {
			entry.CompletedAt = &ts
		}
	}
	entry.Output = output.String
	entry.DownloadURL = downloadURL.String
	entry.Error = errorMessage.String
	entry.Local = local != 0
	return &entry, nil
}

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	ts, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

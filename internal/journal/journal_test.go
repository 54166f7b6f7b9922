package journal_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"vidgen/internal/gateway"
	"vidgen/internal/journal"
	"vidgen/internal/project"
	"vidgen/internal/tasks"
	"vidgen/internal/testsupport"
)

func TestRecordSubmissionAndStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	j := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	submitted := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	p := project.NewVideo()
	p.Template = "youtube_landscape"
	task := tasks.Task{ID: "job-1", Status: tasks.StatusQueued, SubmittedAt: submitted}
	if err := j.RecordSubmission(ctx, p, task); err != nil {
		t.Fatalf("RecordSubmission: %v", err)
	}

	entry, err := j.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry == nil || entry.Kind != project.KindVideo || entry.Template != "youtube_landscape" || entry.Scenes != 1 {
		t.Fatalf("unexpected entry %#v", entry)
	}
	if !entry.SubmittedAt.Equal(submitted) || entry.Status != tasks.StatusQueued {
		t.Fatalf("unexpected entry %#v", entry)
	}

	done := submitted.Add(2 * time.Minute)
	task.Status = tasks.StatusCompleted
	task.CompletedAt = &done
	task.DownloadURL = "/api/v1/videos/download/job-1"
	if err := j.RecordStatus(ctx, task); err != nil {
		t.Fatalf("RecordStatus: %v", err)
	}
	entry, err = j.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry.Status != tasks.StatusCompleted || entry.CompletedAt == nil || !entry.CompletedAt.Equal(done) {
		t.Fatalf("status not applied: %#v", entry)
	}
	if entry.DownloadURL != task.DownloadURL || entry.Error != "" {
		t.Fatalf("unexpected outputs %#v", entry)
	}
}

func TestRecordStatusIgnoresUnknownTask(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	j := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	if err := j.RecordStatus(ctx, tasks.Task{ID: "ghost", Status: tasks.StatusProcessing}); err != nil {
		t.Fatalf("RecordStatus: %v", err)
	}
	entry, err := j.Get(ctx, "ghost")
	if err != nil || entry != nil {
		t.Fatalf("expected no entry, got %#v, %v", entry, err)
	}
}

func TestListNewestFirstAndPrune(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	j := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		task := tasks.Task{ID: id, Status: tasks.StatusQueued, SubmittedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := j.RecordSubmission(ctx, project.NewVideo(), task); err != nil {
			t.Fatalf("RecordSubmission(%s): %v", id, err)
		}
	}

	entries, err := j.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 || entries[0].TaskID != "c" || entries[2].TaskID != "a" {
		t.Fatalf("unexpected order %+v", entries)
	}
	limited, err := j.List(ctx, 2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("List(2) = %d entries, %v", len(limited), err)
	}

	pruned, err := j.Prune(ctx, base.Add(90*time.Minute))
	if err != nil || pruned != 2 {
		t.Fatalf("Prune = %d, %v", pruned, err)
	}
	cleared, err := j.Clear(ctx)
	if err != nil || cleared != 1 {
		t.Fatalf("Clear = %d, %v", cleared, err)
	}
}

func TestRecordImage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	j := testsupport.MustOpenJournal(t, cfg)

	entry, err := j.RecordImage(context.Background(), project.NewImage(), "/tmp/out.png")
	if err != nil {
		t.Fatalf("RecordImage: %v", err)
	}
	if entry.Kind != project.KindImage || entry.Status != tasks.StatusCompleted || entry.Output != "/tmp/out.png" {
		t.Fatalf("unexpected image entry %#v", entry)
	}
	if entry.CompletedAt == nil {
		t.Fatal("expected completion time on image entry")
	}
}

func TestOpenRejectsOtherSchemaVersion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	j, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	j.Close()

	db, err := sql.Open("sqlite", cfg.JournalPath())
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := journal.Open(cfg); !errors.Is(err, journal.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestJournalAsTaskRecorder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	j := testsupport.MustOpenJournal(t, cfg)
	rs := testsupport.NewRenderService(t)
	client, err := gateway.New(rs.URL(), 5*time.Second)
	if err != nil {
		t.Fatalf("gateway.New: %v", err)
	}
	o := tasks.New(client, tasks.WithPollInterval(10*time.Millisecond), tasks.WithRecorder(j))
	defer o.Close()

	p := project.NewVideo()
	scene := p.Scenes[0]
	scene.TextElements = []project.TextElement{project.DefaultTextElement()}
	p = p.WithScene(0, scene)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	task, err := o.Submit(ctx, p)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := o.Wait(ctx, task.ID); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	entry, err := j.Get(ctx, task.ID)
	if err != nil || entry == nil {
		t.Fatalf("Get = %#v, %v", entry, err)
	}
	if entry.Status != tasks.StatusCompleted || entry.Output == "" {
		t.Fatalf("journal did not follow the task: %#v", entry)
	}
}

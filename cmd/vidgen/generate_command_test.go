package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vidgen/internal/journal"
	"vidgen/internal/project"
	"vidgen/internal/services"
	"vidgen/internal/session"
	"vidgen/internal/tasks"
)

func TestGenerateVideoWaitsAndDownloads(t *testing.T) {
	env := setupCLITestEnv(t)
	env.rs.ScriptJobs("completed")
	source := writeProjectFile(t, env.baseDir, "video.json", captionedVideo("Launch day"))
	target := filepath.Join(env.baseDir, "out", "launch.mp4")

	out, _, err := runCLI(t, []string{"generate", source, "--wait", "-o", target}, env.configPath)
	if err != nil {
		t.Fatalf("generate --wait: %v", err)
	}
	requireContains(t, out, "job-1")
	requireContains(t, out, "completed")
	requireContains(t, out, "Saved video to "+target)

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read download: %v", err)
	}
	if string(data) != "fake-mp4:job-1" {
		t.Fatalf("unexpected download %q", data)
	}

	out, _, err = runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var entries []journal.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(entries) != 1 || entries[0].TaskID != "job-1" || entries[0].Status != tasks.StatusCompleted {
		t.Fatalf("unexpected history %+v", entries)
	}
}

func TestGenerateVideoWithoutWaitReturnsQueuedTask(t *testing.T) {
	env := setupCLITestEnv(t)
	source := writeProjectFile(t, env.baseDir, "video.json", captionedVideo("Queued"))

	out, _, err := runCLI(t, []string{"generate", source, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	var task tasks.Task
	if err := json.Unmarshal([]byte(out), &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if task.ID != "job-1" || task.Status != tasks.StatusQueued {
		t.Fatalf("unexpected task %+v", task)
	}

	if _, _, err := runCLI(t, []string{"generate", source, "-o", "x.mp4"}, env.configPath); err == nil {
		t.Fatal("expected --output without --wait to be rejected")
	}
}

func TestGenerateReportsRemoteFailure(t *testing.T) {
	env := setupCLITestEnv(t)
	env.rs.ScriptJobs("failed")
	source := writeProjectFile(t, env.baseDir, "video.json", captionedVideo("Doomed"))

	out, _, err := runCLI(t, []string{"generate", source, "--wait"}, env.configPath)
	if !errors.Is(err, services.ErrRemoteJobFailed) {
		t.Fatalf("expected remote failure, got %v", err)
	}
	requireContains(t, out, "ffmpeg exited with status 1")
}

func TestGenerateRejectsEmptyProjectWithoutRequest(t *testing.T) {
	env := setupCLITestEnv(t)
	source := writeProjectFile(t, env.baseDir, "empty.json", project.NewVideo())

	_, _, err := runCLI(t, []string{"generate", source}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if calls := env.rs.Calls("/api/v1/videos/generate"); len(calls) != 0 {
		t.Fatalf("expected no submission, got %d", len(calls))
	}
}

func TestGenerateRefusedWhileSessionLockHeld(t *testing.T) {
	env := setupCLITestEnv(t)
	lock, err := session.Acquire(env.cfg, nil)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lock.Release()

	source := writeProjectFile(t, env.baseDir, "video.json", captionedVideo("Busy"))
	_, _, err = runCLI(t, []string{"generate", source}, env.configPath)
	if !errors.Is(err, services.ErrSubmissionActive) {
		t.Fatalf("expected submission active error, got %v", err)
	}
	if calls := env.rs.Calls("/api/v1/videos/generate"); len(calls) != 0 {
		t.Fatalf("expected no submission, got %d", len(calls))
	}
}

func TestGenerateImageWritesFileAndJournal(t *testing.T) {
	env := setupCLITestEnv(t)
	source := writeProjectFile(t, env.baseDir, "card.json", project.NewImage())

	out, _, err := runCLI(t, []string{"generate", source}, env.configPath)
	if err != nil {
		t.Fatalf("generate image: %v", err)
	}
	target := filepath.Join(env.baseDir, "card.png")
	requireContains(t, out, "Saved image to "+target)

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read image: %v", err)
	}
	if len(data) < 8 || string(data[:8]) != "\x89PNG\r\n\x1a\n" {
		t.Fatalf("unexpected image bytes %q", data)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "image")
	requireContains(t, out, target)
}

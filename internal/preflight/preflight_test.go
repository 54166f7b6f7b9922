package preflight_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidgen/internal/preflight"
	"vidgen/internal/session"
	"vidgen/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := preflight.CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := preflight.CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed || !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("expected missing dir failure, got %+v", result)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := preflight.CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckRenderService(t *testing.T) {
	rs := testsupport.NewRenderService(t)
	cfg := testsupport.NewConfig(t, testsupport.WithBaseURL(rs.URL()))

	result := preflight.CheckRenderService(context.Background(), cfg)
	if !result.Passed || !strings.Contains(result.Detail, "1 transitions") {
		t.Fatalf("expected reachable service, got %+v", result)
	}

	rs.Server.Close()
	if result := preflight.CheckRenderService(context.Background(), cfg); result.Passed {
		t.Fatalf("expected failure once the service is gone, got %+v", result)
	}
}

func TestCheckSessionLockReportsHolder(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithEnsuredDirectories())

	if result := preflight.CheckSessionLock(cfg); !result.Passed || result.Detail != "free" {
		t.Fatalf("expected free lock, got %+v", result)
	}
	lock, err := session.Acquire(cfg, nil)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lock.Release()
	if result := preflight.CheckSessionLock(cfg); !result.Passed || !strings.Contains(result.Detail, "another") {
		t.Fatalf("expected held lock to be reported, got %+v", result)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := preflight.RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_HealthyConfig(t *testing.T) {
	rs := testsupport.NewRenderService(t)
	cfg := testsupport.NewConfig(t, testsupport.WithBaseURL(rs.URL()), testsupport.WithEnsuredDirectories())

	results := preflight.RunAll(context.Background(), cfg)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d: %+v", len(results), results)
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	if preflight.Failed(results) {
		t.Fatal("expected no failures")
	}
}

func TestRunAll_SkipsJournalWithoutStateDir(t *testing.T) {
	rs := testsupport.NewRenderService(t)
	cfg := testsupport.NewConfig(t, testsupport.WithBaseURL(rs.URL()))

	results := preflight.RunAll(context.Background(), cfg)
	if len(results) != 3 || !preflight.Failed(results) {
		t.Fatalf("expected directory failures and no journal check, got %+v", results)
	}
}

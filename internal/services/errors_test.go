package services_test

import (
	"errors"
	"strings"
	"testing"

	"vidgen/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransport, "gateway", "create job", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"gateway", "create job", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err   error
		kind  services.Kind
		local bool
	}{
		{nil, services.KindNone, false},
		{services.Wrap(services.ErrMalformedConfig, "codec", "decode", "missing scenes", nil), services.KindMalformed, true},
		{services.Wrap(services.ErrValidation, "tasks", "submit", "empty", nil), services.KindValidation, true},
		{services.Wrap(services.ErrSubmissionActive, "tasks", "submit", "", nil), services.KindBusy, true},
		{services.Wrap(services.ErrTransport, "gateway", "get job", "", errors.New("eof")), services.KindTransport, false},
		{services.Wrap(services.ErrRemoteJobFailed, "tasks", "poll", "codec missing", nil), services.KindRemoteFailed, false},
		{errors.New("other"), services.KindUnknown, false},
	}
	for _, tc := range tests {
		if got := services.Classify(tc.err); got != tc.kind {
			t.Fatalf("Classify(%v) = %q, want %q", tc.err, got, tc.kind)
		}
		if got := services.IsLocal(tc.err); got != tc.local {
			t.Fatalf("IsLocal(%v) = %v, want %v", tc.err, got, tc.local)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected default transport marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

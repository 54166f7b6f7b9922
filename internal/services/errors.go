package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedConfig  = errors.New("malformed config")
	ErrValidation       = errors.New("validation failed")
	ErrTransport        = errors.New("transport failure")
	ErrRemoteJobFailed  = errors.New("remote job failed")
	ErrSubmissionActive = errors.New("submission already active")
	ErrConfiguration    = errors.New("configuration error")
)

// Kind is the coarse failure class reported to users and logs.
type Kind string

const (
	KindNone          Kind = ""
	KindMalformed     Kind = "malformed_config"
	KindValidation    Kind = "validation_failed"
	KindTransport     Kind = "transport_failure"
	KindRemoteFailed  Kind = "remote_job_failed"
	KindBusy          Kind = "submission_active"
	KindConfiguration Kind = "configuration"
	KindUnknown       Kind = "unknown"
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an error to its failure class.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrMalformedConfig):
		return KindMalformed
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrSubmissionActive):
		return KindBusy
	case errors.Is(err, ErrRemoteJobFailed):
		return KindRemoteFailed
	case errors.Is(err, ErrTransport):
		return KindTransport
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	default:
		return KindUnknown
	}
}

// IsLocal reports whether the failure was decided client-side without any
// network call.
func IsLocal(err error) bool {
	switch Classify(err) {
	case KindMalformed, KindValidation, KindBusy, KindConfiguration:
		return true
	default:
		return false
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

package engine

import (
	"fmt"
	"strings"
)

// ModuleFailure is the failure of a single module during resolution.
type ModuleFailure struct {
	Organization string
	Name         string
	Version      string
	Attributes   map[string]string
	Err          error
}

func (f ModuleFailure) Error() string {
	return fmt.Sprintf("%s:%s:%s: %v", f.Organization, f.Name, f.Version, f.Err)
}

func (f ModuleFailure) Unwrap() error { return f.Err }

// MetadataFailure bundles per-module metadata download failures. It is the
// only recoverable resolution error class: the orchestrator converts it into
// a warning instead of failing the call. Every other error returned by a
// Resolver is terminal.
type MetadataFailure struct {
	Failures []ModuleFailure
}

func (e *MetadataFailure) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Error())
	}
	return fmt.Sprintf("metadata download failed for %d module(s): %s", len(e.Failures), strings.Join(msgs, "; "))
}

func (e *MetadataFailure) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

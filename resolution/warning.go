package resolution

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/lockstep-build/lockstep/engine"
)

// ModuleID is the reconstructed identity of a module that failed to resolve.
type ModuleID struct {
	Organization string            `json:"organization"`
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Attributes   map[string]string `json:"attributes,omitempty"`
}

func (m ModuleID) String() string {
	return fmt.Sprintf("%s:%s:%s", m.Organization, m.Name, m.Version)
}

// Warning is the recoverable outcome of a resolution run: one or more
// modules' metadata could not be downloaded. It implements error so it
// travels through the ordinary error channel, distinguishable from terminal
// failures via errors.As.
type Warning struct {
	// Configuration is the caller-supplied warning configuration, unchanged.
	Configuration WarningConfiguration
	// Modules identifies every module that failed, in engine order.
	Modules []ModuleID

	causes []error
}

func (w *Warning) Error() string {
	ids := make([]string, 0, len(w.Modules))
	for _, m := range w.Modules {
		ids = append(ids, m.String())
	}
	msg := fmt.Sprintf("%d unresolved module(s): %s", len(w.Modules), strings.Join(ids, ", "))
	if !w.Configuration.ShowDetails {
		return msg
	}
	details := make([]string, 0, len(w.causes))
	for _, err := range w.causes {
		details = append(details, err.Error())
	}
	return msg + " (" + strings.Join(details, "; ") + ")"
}

// Unwrap exposes the underlying engine errors.
func (w *Warning) Unwrap() []error { return w.causes }

// IsWarning reports whether err is (or wraps) a recoverable resolution
// warning.
func IsWarning(err error) bool {
	var w *Warning
	return errors.As(err, &w)
}

// translateResolveError classifies a stage-1 failure. A metadata download
// failure bundle becomes a *Warning carrying the identity of every failing
// module; anything else is terminal and passes through untouched. The
// classification is total: every error value takes exactly one of the two
// paths.
func translateResolveError(err error, cfg WarningConfiguration) error {
	var metadata *engine.MetadataFailure
	if !errors.As(err, &metadata) {
		return err
	}

	warning := &Warning{
		Configuration: cfg,
		Modules:       make([]ModuleID, 0, len(metadata.Failures)),
		causes:        make([]error, 0, len(metadata.Failures)),
	}
	for _, failure := range metadata.Failures {
		warning.Modules = append(warning.Modules, ModuleID{
			Organization: failure.Organization,
			Name:         failure.Name,
			Version:      failure.Version,
			Attributes:   maps.Clone(failure.Attributes),
		})
		warning.causes = append(warning.causes, failure.Err)
	}
	return warning
}

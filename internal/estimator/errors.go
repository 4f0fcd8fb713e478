package estimator

import "fmt"

// ArtifactLoadError reports an artifact that is missing, unreadable or
// incompatible with the expected capability.
type ArtifactLoadError struct {
	Source string
	Reason string
	Err    error
}

func (e *ArtifactLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load artifact %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("load artifact %s: %s", e.Source, e.Reason)
}

func (e *ArtifactLoadError) Unwrap() error {
	return e.Err
}

func loadError(source, reason string, err error) error {
	return &ArtifactLoadError{Source: source, Reason: reason, Err: err}
}

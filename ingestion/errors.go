package ingestion

import "errors"

var (
	// ErrIdeaRepositoryRequired is returned when an idea repository is not provided.
	ErrIdeaRepositoryRequired = errors.New("idea repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrHubRequired is returned when a fan-out hub is not provided.
	ErrHubRequired = errors.New("fan-out hub required")
)

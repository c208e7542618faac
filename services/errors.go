package services

import "errors"

// Sentinel errors used to classify pipeline failures at the HTTP layer.
var (
	// ErrConfiguration marks invalid caller-supplied parameters.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrIngestion marks ingestion failures such as an empty data directory.
	ErrIngestion = errors.New("ingestion failed")

	// ErrUpstream marks failures of the embedding or completion service.
	ErrUpstream = errors.New("upstream service failed")
)

package repository

import "errors"

var (
	// ErrBlobStorageNotConfigured indicates an Azure source was requested
	// without blob credentials configured
	ErrBlobStorageNotConfigured = errors.New("blob storage not configured")

	// ErrHTTPFetchNotConfigured indicates a remote source was requested
	// without an HTTP fetcher configured
	ErrHTTPFetchNotConfigured = errors.New("http fetch not configured")
)

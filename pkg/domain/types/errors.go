package types

import "github.com/m-mizutani/goerr/v2"

// Error tags used across the application. Only the registry client and the
// artifact relocator/installer produce the first four; every other layer
// converts them into decisions.
var (
	// ErrTagRegistryUnavailable marks network failures, timeouts and non-200 responses from the release registry
	ErrTagRegistryUnavailable = goerr.NewTag("registry_unavailable")

	// ErrTagMalformedPayload marks undecodable JSON from the registry or a webhook caller
	ErrTagMalformedPayload = goerr.NewTag("malformed_payload")

	// ErrTagSignatureRejected marks webhook requests whose signature does not match
	ErrTagSignatureRejected = goerr.NewTag("signature_rejected")

	// ErrTagRelocationFailed marks filesystem failures while staging an artifact
	ErrTagRelocationFailed = goerr.NewTag("relocation_failed")

	// ErrTagNotFound marks lookups of untracked components
	ErrTagNotFound = goerr.NewTag("not_found")

	// ErrTagInvalidManifest marks component declarations that cannot be loaded
	ErrTagInvalidManifest = goerr.NewTag("invalid_manifest")
)

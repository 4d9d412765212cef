// Package errkind classifies the fatal/non-fatal error taxonomy from the
// dispatcher's error handling design so cmd/crawld can pick an exit code by
// kind instead of matching error strings.
package errkind

import "fmt"

// Kind enumerates the dispatcher's error categories.
type Kind int

const (
	// Unknown is the zero value; treated as an unexpected, fatal error.
	Unknown Kind = iota
	ConfigMissing
	ConfigInvalid
	AuthTokenInvalid
	IndexExistsDeclined
	DirectoryUnreadable
	UnicodeDecode
	BulkVersionConflict
	SearchEngineTimeout
	BrokerUnreachable
	Interrupted
)

func (k Kind) String() string {
	switch k {
	case ConfigMissing:
		return "config-missing"
	case ConfigInvalid:
		return "config-invalid"
	case AuthTokenInvalid:
		return "auth-token-invalid"
	case IndexExistsDeclined:
		return "index-already-exists"
	case DirectoryUnreadable:
		return "directory-unreadable"
	case UnicodeDecode:
		return "unicode-decode"
	case BulkVersionConflict:
		return "bulk-version-conflict"
	case SearchEngineTimeout:
		return "search-engine-timeout"
	case BrokerUnreachable:
		return "broker-unreachable"
	case Interrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Fatal reports whether this kind should terminate the run (as opposed to
// being logged and swallowed).
func (k Kind) Fatal() bool {
	switch k {
	case DirectoryUnreadable, UnicodeDecode, SearchEngineTimeout:
		return false
	default:
		return true
	}
}

// ExitCode returns the process exit code a fatal error of this kind maps to.
// SIGINT (Interrupted) exits 0; every other fatal kind exits 1.
func (k Kind) ExitCode() int {
	if k == Interrupted {
		return 0
	}
	return 1
}

// CrawlError wraps an error with its dispatcher-level kind.
type CrawlError struct {
	Kind Kind
	Err  error
}

func (e *CrawlError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *CrawlError) Unwrap() error { return e.Err }

// New wraps err with kind. Returns nil if err is nil.
func New(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &CrawlError{Kind: kind, Err: err}
}

// KindOf extracts the Kind from err, returning Unknown if err was not
// produced by this package.
func KindOf(err error) Kind {
	var ce *CrawlError
	if ok := asCrawlError(err, &ce); ok {
		return ce.Kind
	}
	return Unknown
}

func asCrawlError(err error, target **CrawlError) bool {
	for err != nil {
		if ce, ok := err.(*CrawlError); ok {
			*target = ce
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

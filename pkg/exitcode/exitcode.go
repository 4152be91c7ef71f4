// Package exitcode provides standardized exit codes for chipatlas
package exitcode

// Exit codes for the chipatlas CLI. NoData shares the general error code
// so that "no results" and pipeline failures are both exit 1 for scripts.
const (
	Success         = 0
	GeneralError    = 1
	NoData          = 1
	ConfigError     = 2
	FileSystemError = 3
	NetworkError    = 4
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case FileSystemError:
		return "File system error"
	case NetworkError:
		return "Network error"
	default:
		return "Unknown error"
	}
}

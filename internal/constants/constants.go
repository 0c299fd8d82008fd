// Package constants provides centralized constant values used throughout faster.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory names and paths used by faster for organizing data.
const (
	// FasterHome is the hidden directory name where faster stores all its data.
	// This directory is created in the user's home directory.
	FasterHome = ".faster"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// HomeEnvVar overrides the location of the faster home directory.
	HomeEnvVar = "FASTER_HOME"

	// EnvPrefix is the prefix for all environment variable overrides (FASTER_*).
	EnvPrefix = "FASTER"
)

// Queue and dispatch timing.
const (
	// DefaultPollInterval is how long the dispatch loop sleeps when the queue is empty.
	DefaultPollInterval = 1 * time.Second

	// DefaultBusyTimeout is how long a store operation waits on a locked database
	// before failing with a storage error.
	DefaultBusyTimeout = 5 * time.Second

	// DefaultConfirmationTimeout is the default window for voice confirmations.
	DefaultConfirmationTimeout = 1 * time.Second

	// ToolDetectionTimeout bounds the whole doctor run.
	ToolDetectionTimeout = 10 * time.Second
)

// Intent processing defaults.
const (
	// DefaultConfidenceThreshold is the confidence a command needs before the
	// voice loop enqueues it without asking.
	DefaultConfidenceThreshold = 0.80

	// TaskIDLength is the number of characters in a generated task id.
	TaskIDLength = 8
)

// Log rotation settings for the CLI log file.
const (
	// LogMaxSizeMB is the size in megabytes at which the log file is rotated.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated log files to keep.
	LogMaxBackups = 5

	// LogMaxAgeDays is the number of days to keep rotated log files.
	LogMaxAgeDays = 30

	// LogCompress enables gzip compression of rotated log files.
	LogCompress = true
)

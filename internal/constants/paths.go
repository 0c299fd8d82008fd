package constants

// File names used by faster.
const (
	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.faster/logs/faster.log
	CLILogFileName = "faster.log"

	// DatabaseFileName is the SQLite database holding the task queue.
	DatabaseFileName = "knowledge.db"

	// DaemonLockFileName guards against two dispatch loops draining the same queue.
	DaemonLockFileName = "daemon.lock"

	// EnvFileName is an optional dotenv file in the faster home directory.
	EnvFileName = ".env"
)

// Configuration file names.
const (
	// GlobalConfigName is the name of the global configuration file.
	// This file is located in the faster home directory.
	GlobalConfigName = "config.yaml"

	// ProjectConfigDir is the per-project configuration directory.
	ProjectConfigDir = ".faster"
)

// Package constants provides named constants used throughout the simselect codebase.
// This centralizes defaults and on-disk names for better maintainability and documentation.
package constants

// Document discovery constants
const (
	// DefaultDocumentExtension is the file extension of the schematics simselect manages.
	DefaultDocumentExtension = ".kicad_sch"
)

// Simulation attribute literals. These are matched as exact substrings on
// each line; any drift in the host format's spelling leaves lines untouched.
const (
	// AttributeMarker identifies a line carrying the simulation-exclusion attribute
	// in either state. Only used for counting occurrences.
	AttributeMarker = "(exclude_from_sim"

	// AttributeEnabled is the literal for an instance that takes part in simulation.
	AttributeEnabled = "(exclude_from_sim no)"

	// AttributeDisabled is the literal for an instance excluded from simulation.
	AttributeDisabled = "(exclude_from_sim yes)"
)

// Backup layout and retention
const (
	// DefaultBackupDir is the backup root, relative to the working directory.
	DefaultBackupDir = "sim_backup"

	// DefaultGenerationPrefix prefixes every generation directory name; the
	// generation id follows it, e.g. sim_backup_12.
	DefaultGenerationPrefix = "sim_backup_"

	// MaxGenerations is the default retention cap.
	MaxGenerations = 10

	// ManifestFileName is written into each generation after all documents are copied.
	ManifestFileName = "manifest.json"

	// JournalFileName is the run journal kept in UserConfigDir at debug level.
	JournalFileName = "journal.jsonl"
)

// Configuration file locations
const (
	// UserConfigDir is the per-user configuration directory under $HOME.
	UserConfigDir = ".simselect"

	// UserConfigFile is the per-user configuration file inside UserConfigDir.
	UserConfigFile = "config.yaml"

	// ProjectConfigFile is the per-project configuration file in the working directory.
	ProjectConfigFile = ".simselect.yaml"
)

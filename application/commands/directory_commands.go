package commands

import "time"

// ImportDirectoryCommand replaces the in-memory directory with an uploaded
// file. The store is not written to.
type ImportDirectoryCommand struct {
	Data []byte
}

// Validate accepts anything; the format check reports its own error type.
func (c ImportDirectoryCommand) Validate() error { return nil }

// ImportResult describes an applied import.
type ImportResult struct {
	Imported int    `json:"imported"`
	Message  string `json:"message"`
}

// ReloadDirectoryCommand re-runs the load sequence. This is the retry action.
type ReloadDirectoryCommand struct{}

// Validate implements bus.Command.
func (ReloadDirectoryCommand) Validate() error { return nil }

// ArchiveExportCommand stores a copy of the current export file.
type ArchiveExportCommand struct {
	At time.Time
}

// Validate implements bus.Command.
func (ArchiveExportCommand) Validate() error { return nil }

// ArchiveResult tells where an archived export was stored.
type ArchiveResult struct {
	Key      string `json:"key"`
	Location string `json:"location"`
	Members  int    `json:"members"`
	Bytes    int    `json:"bytes"`
}

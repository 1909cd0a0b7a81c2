package domain

import "time"

// MigrationRecord describes one record a sweep changed.
type MigrationRecord struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	FieldsAdded []string `json:"fieldsAdded"`
	ItemsAdded  int      `json:"itemsAdded"`
}

// MigrationResult summarises a sweep.
type MigrationResult struct {
	Sweep      string            `json:"sweep"`
	DryRun     bool              `json:"dryRun,omitempty"`
	Processed  int               `json:"processed"`
	Updated    int               `json:"updated"`
	Skipped    int               `json:"skipped"`
	Errors     int               `json:"errors"`
	Records    []MigrationRecord `json:"records"`
	Error      string            `json:"error,omitempty"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
}

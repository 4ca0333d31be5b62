// Package config loads export job definitions from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openrow/tabular/pkg/tabular/export"
	"github.com/openrow/tabular/pkg/tabular/internalerr"
)

// Export modes.
const (
	ModeTables = "tables"
	ModeFlat   = "flat"
)

// Output formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Job describes one export invocation.
type Job struct {
	Form     string `yaml:"form"`
	Schema   string `yaml:"schema"`
	Database string `yaml:"database"`
	Mode     string `yaml:"mode"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	Filter   string `yaml:"filter,omitempty"`

	GroupDelimiter        string `yaml:"group_delimiter,omitempty"`
	SplitSelectMultiples  *bool  `yaml:"split_select_multiples,omitempty"`
	BinarySelectMultiples bool   `yaml:"binary_select_multiples,omitempty"`
	BatchSize             int    `yaml:"batch_size,omitempty"`
	PageSize              int    `yaml:"page_size,omitempty"`
}

// Load reads and validates a job definition from a YAML file.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job config: %w", err)
	}
	var job Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("parse job config: %w", err)
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}

// Validate checks required fields and enum values.
func (j *Job) Validate() error {
	if j.Form == "" {
		return fmt.Errorf("job has no form uid: %w", internalerr.ErrInvalidConfig)
	}
	if j.Schema == "" {
		return fmt.Errorf("job has no schema path: %w", internalerr.ErrInvalidConfig)
	}
	if j.Database == "" {
		return fmt.Errorf("job has no database path: %w", internalerr.ErrInvalidConfig)
	}
	if j.Output == "" {
		return fmt.Errorf("job has no output path: %w", internalerr.ErrInvalidConfig)
	}
	switch j.Mode {
	case ModeTables, ModeFlat:
	default:
		return fmt.Errorf("unknown mode %q: %w", j.Mode, internalerr.ErrInvalidConfig)
	}
	switch j.Format {
	case FormatCSV, FormatXLSX:
	default:
		return fmt.Errorf("unknown format %q: %w", j.Format, internalerr.ErrInvalidConfig)
	}
	switch j.GroupDelimiter {
	case "", export.DefaultGroupDelimiter, export.GroupDelimiterDot:
	default:
		return fmt.Errorf("unknown group delimiter %q: %w", j.GroupDelimiter, internalerr.ErrInvalidConfig)
	}
	return nil
}

// Options maps the job's overrides onto the default export options.
func (j *Job) Options() export.Options {
	opts := export.DefaultOptions()
	if j.GroupDelimiter != "" {
		opts.GroupDelimiter = j.GroupDelimiter
	}
	if j.SplitSelectMultiples != nil {
		opts.SplitSelectMultiples = *j.SplitSelectMultiples
	}
	opts.BinarySelectMultiples = j.BinarySelectMultiples
	if j.BatchSize > 0 {
		opts.BatchSize = j.BatchSize
	}
	if j.PageSize > 0 {
		opts.PageSize = j.PageSize
	}
	return opts
}

package nmealog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Table is the master fix table assembled from every log file.
type Table struct {
	Fixes []Fix
	// Files is the number of log files read.
	Files int
	// Dropped counts extracted rows discarded because a column did not parse.
	Dropped int
	// Malformed lists matching sentences that could not be split into fields.
	Malformed []*ParseError
}

// Builder concatenates the fixes from every file in a directory.
type Builder struct {
	extractor  *Extractor
	conversion Conversion
	strict     bool
	logger     zerolog.Logger
}

// NewBuilder returns a Builder. In strict mode the first malformed sentence
// aborts Build; otherwise malformed sentences are reported in the Table and
// skipped.
func NewBuilder(extractor *Extractor, conversion Conversion, strict bool, logger zerolog.Logger) *Builder {
	return &Builder{extractor: extractor, conversion: conversion, strict: strict, logger: logger}
}

// Build reads every regular file in dataDir in lexical order. An empty
// directory yields an empty table.
func (b *Builder) Build(dataDir string) (*Table, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("error reading directory %s: %w", dataDir, err)
	}
	b.logger.Info().Str("conversion", string(b.conversion)).Msg("Normalising positions")

	var (
		table Table
		raw   []RawFix
	)
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		filename := filepath.Join(dataDir, e.Name())
		fixes, malformed, err := b.extractor.ExtractFile(filename)
		if err != nil {
			return nil, err
		}
		if len(malformed) > 0 && b.strict {
			return nil, malformed[0]
		}
		for _, pe := range malformed {
			b.logger.Warn().Err(pe.Err).Str("file", pe.File).Int("line", pe.Line).Msg("Skipping malformed sentence")
		}
		b.logger.Debug().Str("file", filename).Int("fixes", len(fixes)).Msg("Extracted fixes")
		table.Files++
		table.Malformed = append(table.Malformed, malformed...)
		raw = append(raw, fixes...)
	}

	table.Fixes = make([]Fix, 0, len(raw))
	for _, r := range raw {
		fix, err := b.conversion.Normalize(r)
		if err != nil {
			b.logger.Debug().Err(err).Msg("Dropping row")
			table.Dropped++
			continue
		}
		table.Fixes = append(table.Fixes, fix)
	}

	ev := b.logger.Info()
	if table.Dropped > 0 || len(table.Malformed) > 0 {
		ev = b.logger.Warn()
	}
	ev.Int("files", table.Files).
		Int("fixes", len(table.Fixes)).
		Int("dropped", table.Dropped).
		Int("malformed", len(table.Malformed)).
		Msg("Built fix table")
	return &table, nil
}

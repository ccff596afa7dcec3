package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/ray1729/survey-prep/internal/config"
	"github.com/ray1729/survey-prep/internal/logging"
	"github.com/ray1729/survey-prep/pkg/nmealog"
)

func main() {
	log.SetFlags(0)
	app := &cli.App{
		Name:  "parse-gps",
		Usage: "Extract GPS fixes from a zipped folder of NMEA logs into a CSV file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "work-dir",
				Aliases: []string{"w"},
				Usage:   "Directory holding the archive; data directory and output are created here",
			},
			&cli.StringFlag{
				Name:  "archive",
				Usage: "Name of the zipped log folder inside the work directory",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "CSV file to write, relative to the work directory",
			},
			&cli.StringFlag{
				Name:  "sentence",
				Usage: "Sentence identifier to extract",
			},
			&cli.StringFlag{
				Name:  "conversion",
				Usage: "Position conversion: legacy (value/100, longitude west) or geodetic (degrees + minutes/60)",
			},
			&cli.BoolFlag{
				Name:  "verify-checksum",
				Usage: "Reject sentences whose *hh checksum does not match",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Abort on the first malformed sentence",
			},
			&cli.StringFlag{
				Name:  "gpx",
				Usage: "Also write the fixes as a GPX track to this file",
			},
			&cli.StringFlag{
				Name:  "survey-date",
				Usage: "Survey date (YYYY-MM-DD) used to timestamp GPX points",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			if err := applyFlags(c, &cfg); err != nil {
				return err
			}
			logger, err := logging.New(os.Stderr, c.App.Name, cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			if _, err := run(cfg.GPS, logger); err != nil {
				logger.Error().Err(err).Msg("Failed to build GPS table")
				return cli.Exit("", 1)
			}
			return nil
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func applyFlags(c *cli.Context, cfg *config.Config) error {
	for flag, dst := range map[string]*string{
		"work-dir":    &cfg.GPS.WorkDir,
		"archive":     &cfg.GPS.Archive,
		"output":      &cfg.GPS.Output,
		"sentence":    &cfg.GPS.Sentence,
		"conversion":  &cfg.GPS.Conversion,
		"gpx":         &cfg.GPS.GPXOutput,
		"survey-date": &cfg.GPS.SurveyDate,
		"log-level":   &cfg.Log.Level,
	} {
		if c.IsSet(flag) {
			*dst = c.String(flag)
		}
	}
	if c.IsSet("verify-checksum") {
		cfg.GPS.VerifyChecksum = c.Bool("verify-checksum")
	}
	if c.IsSet("strict") {
		cfg.GPS.Strict = c.Bool("strict")
	}
	return cfg.Validate()
}

// run expands the archive, builds the fix table and writes the outputs.
func run(cfg config.GPSConfig, logger zerolog.Logger) (*nmealog.Table, error) {
	conversion, err := nmealog.ParseConversion(cfg.Conversion)
	if err != nil {
		return nil, err
	}
	expander := nmealog.NewExpander(cfg.WorkDir, cfg.Archive, cfg.DataDir, logger)
	if _, err := expander.Expand(); err != nil {
		return nil, err
	}

	extractor := nmealog.NewExtractor(cfg.Sentence, cfg.VerifyChecksum)
	table, err := nmealog.NewBuilder(extractor, conversion, cfg.Strict, logger).Build(expander.DataDir())
	if err != nil {
		return nil, err
	}

	output := cfg.Path(cfg.Output)
	if err := nmealog.WriteCSV(output, table.Fixes); err != nil {
		return nil, err
	}
	logger.Info().Str("file", output).Int("rows", len(table.Fixes)).Msg("Wrote GPS table")

	if cfg.GPXOutput != "" {
		date, err := cfg.Date()
		if err != nil {
			return nil, err
		}
		if conversion == nmealog.Legacy {
			logger.Warn().Str("conversion", string(conversion)).
				Msg("GPX track uses legacy value/100 positions, which are not WGS84 coordinates; use --conversion geodetic for a usable track")
		}
		gpxOutput := cfg.Path(cfg.GPXOutput)
		name := strings.TrimSuffix(cfg.Archive, filepath.Ext(cfg.Archive))
		if err := nmealog.WriteGPX(gpxOutput, name, table.Fixes, date); err != nil {
			return nil, fmt.Errorf("error writing GPX track %s: %w", gpxOutput, err)
		}
		logger.Info().Str("file", gpxOutput).Msg("Wrote GPX track")
	}
	return table, nil
}

package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/ray1729/survey-prep/internal/config"
	"github.com/ray1729/survey-prep/internal/logging"
	"github.com/ray1729/survey-prep/pkg/nmealog"
	"github.com/ray1729/survey-prep/pkg/polygons"
	"github.com/ray1729/survey-prep/pkg/reproject"
)

var errLegacyPositions = errors.New("fixes use the legacy value/100 conversion and are not true coordinates; " +
	"rebuild them with gps.conversion: geodetic or pass --allow-legacy")

func main() {
	log.SetFlags(0)
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "tag-fixes",
		Usage: "Label each GPS fix with the survey sites whose polygon contains it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "sites",
				Aliases: []string{"s"},
				Usage:   "Directory of site shapefiles",
			},
			&cli.StringFlag{
				Name:  "fixes",
				Usage: "CSV file written by parse-gps (default: gps.output in the work directory)",
			},
			&cli.IntFlag{
				Name:  "from-epsg",
				Usage: "EPSG code of the shapefile coordinates",
			},
			&cli.StringFlag{
				Name:  "conversion",
				Usage: "Position conversion the fixes were written with: legacy or geodetic",
			},
			&cli.BoolFlag{
				Name:  "allow-legacy",
				Usage: "Tag fixes written with the legacy conversion anyway",
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
			logger, err := logging.New(c.App.ErrWriter, c.App.Name, cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			if err := checkConversion(cfg.GPS, c.Bool("allow-legacy"), logger); err != nil {
				return err
			}
			fixesFile := cfg.GPS.Path(cfg.GPS.Output)
			if c.IsSet("fixes") {
				fixesFile = c.String("fixes")
			}

			registry := reproject.NewRegistry()
			defer registry.Close()
			if _, err := run(c.App.Writer, cfg.Polygons.Dir, cfg.Polygons.FromEPSG, fixesFile, registry, logger); err != nil {
				logger.Error().Err(err).Msg("Failed to tag fixes")
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func applyFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("sites") {
		cfg.Polygons.Dir = c.String("sites")
	}
	if c.IsSet("from-epsg") {
		cfg.Polygons.FromEPSG = c.Int("from-epsg")
	}
	if c.IsSet("conversion") {
		cfg.GPS.Conversion = c.String("conversion")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	return cfg.Validate()
}

// checkConversion refuses fixes written with the legacy conversion, whose
// positions cannot be compared with reprojected polygons, unless allowLegacy
// is set.
func checkConversion(cfg config.GPSConfig, allowLegacy bool, logger zerolog.Logger) error {
	conversion, err := nmealog.ParseConversion(cfg.Conversion)
	if err != nil {
		return err
	}
	if conversion != nmealog.Legacy {
		return nil
	}
	if !allowLegacy {
		return errLegacyPositions
	}
	logger.Warn().Str("conversion", string(conversion)).Msg("Tagging legacy positions; site labels will be approximate")
	return nil
}

// run tags the fixes in fixesFile with the sites read from sitesDir and
// writes the result to w. It returns the number of fixes inside at least
// one site.
func run(w io.Writer, sitesDir string, fromEPSG int, fixesFile string, reproj polygons.Reprojector, logger zerolog.Logger) (int, error) {
	table, err := polygons.NewReader(reproj, fromEPSG, reproject.EPSGWGS84,
		polygons.WithDuplicatePolicy(polygons.Suffix),
		polygons.WithLogger(logger),
	).ReadDir(sitesDir)
	if err != nil {
		return 0, err
	}
	index, err := polygons.NewSiteIndex(table)
	if err != nil {
		return 0, err
	}
	fixes, err := nmealog.ReadCSV(fixesFile)
	if err != nil {
		return 0, err
	}
	tagged, err := writeTagged(w, fixes, index)
	if err != nil {
		return tagged, fmt.Errorf("error writing tagged fixes: %v", err)
	}
	logger.Info().Int("fixes", len(fixes)).Int("tagged", tagged).Int("sites", index.Len()).Msg("Tagged fixes")
	return tagged, nil
}

// writeTagged writes the fixes as CSV with an extra sites column holding the
// ';'-separated keys of every containing site. It returns how many fixes
// fell inside at least one site.
func writeTagged(w io.Writer, fixes []nmealog.Fix, index *polygons.SiteIndex) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string{}, nmealog.Header...), "sites")); err != nil {
		return 0, err
	}
	tagged := 0
	for _, f := range fixes {
		sites := index.Locate(f.Lon, f.Lat)
		if len(sites) > 0 {
			tagged++
		}
		if err := cw.Write(append(nmealog.Row(f), strings.Join(sites, ";"))); err != nil {
			return tagged, err
		}
	}
	cw.Flush()
	return tagged, cw.Error()
}

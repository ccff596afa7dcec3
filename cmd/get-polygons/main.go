package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/ray1729/survey-prep/internal/config"
	"github.com/ray1729/survey-prep/internal/logging"
	"github.com/ray1729/survey-prep/pkg/polygons"
	"github.com/ray1729/survey-prep/pkg/reproject"
)

func main() {
	log.SetFlags(0)
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "get-polygons",
		Usage: "Read the area-of-interest polygon from each shapefile in a directory and print them in lon/lat",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Directory of shapefiles",
			},
			&cli.IntFlag{
				Name:  "from-epsg",
				Usage: "EPSG code of the shapefile coordinates",
			},
			&cli.IntFlag{
				Name:  "to-epsg",
				Usage: "EPSG code to reproject to",
			},
			&cli.StringFlag{
				Name:  "duplicates",
				Usage: "What to do when two polygons share a site key: keep-last, reject or suffix",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json or geojson",
				Value:   "json",
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
			if _, err := encoder(c.String("format")); err != nil {
				return err
			}

			registry := reproject.NewRegistry()
			defer registry.Close()
			if err := run(c.App.Writer, cfg.Polygons, c.String("format"), registry, logger); err != nil {
				logger.Error().Err(err).Msg("Failed to read polygons")
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func applyFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("dir") {
		cfg.Polygons.Dir = c.String("dir")
	}
	if c.IsSet("from-epsg") {
		cfg.Polygons.FromEPSG = c.Int("from-epsg")
	}
	if c.IsSet("to-epsg") {
		cfg.Polygons.ToEPSG = c.Int("to-epsg")
	}
	if c.IsSet("duplicates") {
		cfg.Polygons.Duplicates = c.String("duplicates")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	return cfg.Validate()
}

func encoder(format string) (func(io.Writer, polygons.Table) error, error) {
	switch format {
	case "json":
		return polygons.EncodeJSON, nil
	case "geojson":
		return polygons.EncodeGeoJSON, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// run reads the polygon table described by cfg and writes it to w.
func run(w io.Writer, cfg config.PolygonsConfig, format string, reproj polygons.Reprojector, logger zerolog.Logger) error {
	encode, err := encoder(format)
	if err != nil {
		return err
	}
	policy, err := polygons.ParseDuplicatePolicy(cfg.Duplicates)
	if err != nil {
		return err
	}
	table, err := polygons.NewReader(reproj, cfg.FromEPSG, cfg.ToEPSG,
		polygons.WithDuplicatePolicy(policy),
		polygons.WithLogger(logger),
	).ReadDir(cfg.Dir)
	if err != nil {
		return err
	}
	if err := encode(w, table); err != nil {
		return fmt.Errorf("error writing polygons: %v", err)
	}
	return nil
}

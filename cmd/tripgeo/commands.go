package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andreiashu/tripgeo"
	"github.com/andreiashu/tripgeo/internal/config"
	"github.com/andreiashu/tripgeo/internal/httpapi"
)

func writeCities(w io.Writer, cities []tripgeo.City) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tREGION\tCLASS\tPOPULATION\tLAT,LNG\tGEOHASH")
	for _, city := range cities {
		pop := "-"
		if city.Population != nil {
			pop = strconv.FormatInt(*city.Population, 10)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.4f,%.4f\t%s\n",
			city.Name, city.Region, city.Class, pop, city.Latitude, city.Longitude, city.Geohash())
	}
	return tw.Flush()
}

func writeNearby(w io.Writer, nearby []tripgeo.NearbyCity) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tREGION\tSTRAIGHT KM\tROAD KM")
	for _, n := range nearby {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%d\n", n.City.Name, n.City.Region, n.StraightLineKm, n.RoadKm)
	}
	return tw.Flush()
}

func newSearchCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search cities by name or region",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			results := cat.Search(strings.Join(args, " "), limit)
			return c.emit(cmd.OutOrStdout(), results, func(w io.Writer) error {
				if len(results) == 0 {
					_, err := fmt.Fprintln(w, "no matches")
					return err
				}
				return writeCities(w, results)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", tripgeo.DefaultLimit, "maximum number of results")
	return cmd
}

func newLookupCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <name>",
		Short: "Look up a city by exact name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			city, err := cat.Lookup(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return c.emit(cmd.OutOrStdout(), city, func(w io.Writer) error {
				return writeCities(w, []tripgeo.City{city})
			})
		},
	}
}

func newDistanceCmd(c *cli) *cobra.Command {
	var terrain string
	cmd := &cobra.Command{
		Use:   "distance <from> <to>",
		Short: "Estimate road distance and travel time between two cities",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tripgeo.ParseTerrain(terrain)
			if err != nil {
				return err
			}
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			route, err := cat.Route(args[0], args[1], t)
			if err != nil {
				return err
			}
			return c.emit(cmd.OutOrStdout(), route, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s -> %s: %d km, about %.1f h over %s\n",
					route.From, route.To, route.DistanceKm, route.Hours, route.Terrain)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&terrain, "terrain", "t", string(tripgeo.TerrainPlains), "plains, hills or mountains")
	return cmd
}

func newETACmd(c *cli) *cobra.Command {
	var terrain string
	cmd := &cobra.Command{
		Use:   "eta <distance-km>",
		Short: "Estimate travel hours for a road distance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid distance %q: %w", args[0], err)
			}
			t, err := tripgeo.ParseTerrain(terrain)
			if err != nil {
				return err
			}
			hours := tripgeo.EstimateTravelTimeHours(d, t)
			out := map[string]any{"distance_km": d, "terrain": t, "hours": hours}
			return c.emit(cmd.OutOrStdout(), out, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%.1f h\n", hours)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&terrain, "terrain", "t", string(tripgeo.TerrainPlains), "plains, hills or mountains")
	return cmd
}

func newPopularCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "popular",
		Short: "List popular trip origin cities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			cities := cat.PopularSourceCities()
			return c.emit(cmd.OutOrStdout(), cities, func(w io.Writer) error {
				return writeCities(w, cities)
			})
		},
	}
}

func newShortcutsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "shortcuts",
		Short: "List destination shortcuts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shortcuts := tripgeo.DestinationShortcuts()
			return c.emit(cmd.OutOrStdout(), shortcuts, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tLABEL\tCITY")
				for _, s := range shortcuts {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Label, s.CityName)
				}
				return tw.Flush()
			})
		},
	}
}

func newNearbyCmd(c *cli) *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "nearby <name>",
		Short: "List the cities closest to a city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			nearby, err := cat.NearbyCities(strings.Join(args, " "), k)
			if err != nil {
				return err
			}
			return c.emit(cmd.OutOrStdout(), nearby, func(w io.Writer) error {
				return writeNearby(w, nearby)
			})
		},
	}
	cmd.Flags().IntVarP(&k, "count", "k", tripgeo.DefaultNearbyCount, "number of neighbours")
	return cmd
}

func newNearestCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "nearest <lat> <lng>",
		Short: "Find the catalog city closest to a coordinate",
		Long:  "Find the catalog city closest to a coordinate. Use -- before negative values.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid latitude %q: %w", args[0], err)
			}
			lng, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid longitude %q: %w", args[1], err)
			}
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			city, err := cat.Nearest(lat, lng)
			if err != nil {
				return err
			}
			return c.emit(cmd.OutOrStdout(), city, func(w io.Writer) error {
				return writeCities(w, []tripgeo.City{city})
			})
		},
	}
}

func newSuggestCmd(c *cli) *cobra.Command {
	var maxDist, limit int
	cmd := &cobra.Command{
		Use:   "suggest <misspelled name>",
		Short: "Suggest catalog names close to a misspelling",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			suggestions := cat.Suggest(strings.Join(args, " "), maxDist, limit)
			return c.emit(cmd.OutOrStdout(), suggestions, func(w io.Writer) error {
				if len(suggestions) == 0 {
					_, err := fmt.Fprintln(w, "no suggestions")
					return err
				}
				for _, s := range suggestions {
					if _, err := fmt.Fprintf(w, "%s (%d edits)\n", s.City, s.Distance); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&maxDist, "max-dist", 2, "maximum edit distance (capped at 3)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "maximum number of suggestions")
	return cmd
}

func newExtractCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "extract [text]",
		Short: "Find city names mentioned in text (reads stdin when no text is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			cities := cat.ExtractCities(text)
			return c.emit(cmd.OutOrStdout(), cities, func(w io.Writer) error {
				return writeCities(w, cities)
			})
		},
	}
}

func newValidateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a catalog file for integrity and known answers",
		Long: `Load the catalog (embedded or --data) and run integrity and functional
checks against it. Run this before deploying a replacement data file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			report, verr := tripgeo.ValidateCatalog(cat)
			out := cmd.OutOrStdout()
			for _, line := range report {
				fmt.Fprintln(out, "ok  ", line)
			}
			if verr != nil {
				return fmt.Errorf("catalog validation failed: %w", verr)
			}
			fmt.Fprintln(out, "Catalog is valid.")
			return nil
		},
	}
}

func newServeCmd(c *cli) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("data") || cfg.Catalog.DataFile == "" {
				cfg.Catalog.DataFile = c.dataFile
			}
			logger := cfg.NewLogger(os.Stderr)

			cat, err := (&cli{dataFile: cfg.Catalog.DataFile}).catalog()
			if err != nil {
				return err
			}
			logger.Info("catalog loaded", "cities", cat.Len(), "source", cfg.Catalog.DataFile)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return httpapi.New(cat, cfg, logger).ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	return cmd
}

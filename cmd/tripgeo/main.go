// Command tripgeo queries the bundled Indian city catalog from the command
// line and can serve it over HTTP.
//
// Usage:
//
//	tripgeo search del
//	tripgeo distance Haridwar Kedarnath --terrain mountains
//	tripgeo serve --config tripgeo.yaml
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/andreiashu/tripgeo"
)

// cli carries the global flags shared by every subcommand.
type cli struct {
	dataFile string
	asJSON   bool
}

func (c *cli) catalog() (*tripgeo.Catalog, error) {
	if c.dataFile == "" {
		return tripgeo.Default()
	}
	return tripgeo.NewCatalog(tripgeo.WithDataFile(c.dataFile))
}

// emit writes v as indented JSON when --json is set, otherwise calls text.
func (c *cli) emit(w io.Writer, v any, text func(io.Writer) error) error {
	if c.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w)
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "tripgeo",
		Short: "Indian city catalog for trip planning",
		Long: `tripgeo searches a curated catalog of Indian cities and pilgrimage sites,
estimates road distances and travel times between them, and serves the same
operations as a JSON HTTP API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.dataFile, "data", "", "catalog TSV file (default: embedded catalog)")
	root.PersistentFlags().BoolVar(&c.asJSON, "json", false, "print JSON instead of text")

	root.AddCommand(
		newSearchCmd(c),
		newLookupCmd(c),
		newDistanceCmd(c),
		newETACmd(c),
		newPopularCmd(c),
		newShortcutsCmd(c),
		newNearbyCmd(c),
		newNearestCmd(c),
		newSuggestCmd(c),
		newExtractCmd(c),
		newValidateCmd(c),
		newServeCmd(c),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/jcodagnone/filmmap/render"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <year> <latitude> <longitude> <path>",
		Short: "Runs the pipeline and serves the map over HTTP",
		Long: `
serve runs the same pipeline as the root command but, instead of writing the
map to a file, serves it together with the ranked films as JSON:

  /              the map
  /api/markers   the selected markers
  /api/ranked    every ranked film, filtered with ?q= and ?limit=
`,
		Args: pipelineArgsValidator,
		RunE: func(cmd *cobra.Command, args []string) error {
			pargs, err := parsePipelineArgs(args)
			if err != nil {
				return err
			}

			geocoder, err := newGeocoder(cmd.Context(), opts)
			if err != nil {
				return err
			}

			result, err := runPipeline(cmd.Context(), opts, pargs, geocoder)
			if err != nil {
				return err
			}

			fmt.Printf("Serving the map of %d on http://%s/\n", pargs.Year, opts.Addr)

			return render.NewServer(result.Map, result.Ranked).Run(opts.Addr)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "localhost:8080", "Listen address")

	return cmd
}

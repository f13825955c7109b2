// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jcodagnone/filmmap/render"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

// DefaultOutput is where the map is written unless --output says otherwise.
const DefaultOutput = "_Map_.html"

var Version = "dev"

func newRootCmd() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "filmmap <year> <latitude> <longitude> <path>",
		Short: "maps the filming locations of a year around a point",
		Long: `
filmmap reads a locations.list catalog, geocodes the filming locations of the
films released in <year> and writes an HTML map with the films shot nearest
to and farthest from <latitude>,<longitude>.
`,
		Args:         pipelineArgsValidator,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadEnvironment(cmd, opts)
		},
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

			if opts.Export != "" {
				if err := exportRun(opts.Export, pargs, result); err != nil {
					return fmt.Errorf("exporting to %s: %w", opts.Export, err)
				}
			}

			if err := render.SaveHTML(opts.Output, result.Map); err != nil {
				return fmt.Errorf("writing map: %w", err)
			}

			log.Printf("Map written to %s", opts.Output)

			return nil
		},
	}

	bindPipelineFlags(rootCmd.PersistentFlags(), opts)
	rootCmd.Flags().StringVarP(&opts.Output, "output", "o", DefaultOutput, "Path of the HTML map")
	rootCmd.Flags().StringVar(&opts.Export, "export", "", "Also store the ranked films in this DuckDB file")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func Execute(version string) {
	Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := executeRoot(ctx, newRootCmd(), os.Args[1:])

	stop()

	if err != nil {
		os.Exit(1)
	}
}

func executeRoot(ctx context.Context, root *cobra.Command, args []string) error {
	root.SetArgs(separateNegativeNumbers(root, args))

	return root.ExecuteContext(ctx)
}

func isNegativeNumber(arg string) bool {
	if !strings.HasPrefix(arg, "-") {
		return false
	}

	_, err := strconv.ParseFloat(arg, 64)

	return err == nil
}

// separateNegativeNumbers rewrites args so that negative coordinates reach
// the command as positionals instead of being parsed as shorthand flags.
// Flags and their values are moved ahead of a "--" that precedes every
// positional. args without negative numbers are returned unchanged.
func separateNegativeNumbers(root *cobra.Command, args []string) []string {
	target, rest, err := root.Find(args)
	if err != nil {
		return args
	}

	flagOf := func(arg string) *pflag.Flag {
		name, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")

		var f *pflag.Flag
		if strings.HasPrefix(arg, "--") {
			if f = target.Flags().Lookup(name); f == nil {
				f = target.InheritedFlags().Lookup(name)
			}
		} else if len(name) == 1 {
			if f = target.Flags().ShorthandLookup(name); f == nil {
				f = target.InheritedFlags().ShorthandLookup(name)
			}
		}

		return f
	}

	var (
		flags       []string
		positionals []string
		found       bool
	)

	for i := 0; i < len(rest); i++ {
		arg := rest[i]

		switch {
		case arg == "--":
			positionals = append(positionals, rest[i+1:]...)
			i = len(rest)
		case isNegativeNumber(arg):
			found = true

			positionals = append(positionals, arg)
		case arg == "-" || !strings.HasPrefix(arg, "-"):
			positionals = append(positionals, arg)
		default:
			flags = append(flags, arg)

			f := flagOf(arg)
			if f != nil && f.NoOptDefVal == "" && !strings.Contains(arg, "=") && i+1 < len(rest) {
				i++
				flags = append(flags, rest[i])
			}
		}
	}

	if !found {
		return args
	}

	var path []string
	for c := target; c.HasParent(); c = c.Parent() {
		path = append([]string{c.Name()}, path...)
	}

	out := make([]string, 0, len(path)+len(flags)+1+len(positionals))
	out = append(out, path...)
	out = append(out, flags...)
	out = append(out, "--")

	return append(out, positionals...)
}

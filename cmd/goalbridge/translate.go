package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"goalbridge/internal/app/engine"
	"goalbridge/internal/domain/framework"
)

type translateOptions struct {
	to      string
	from    string
	file    string
	org     string
	dept    string
	area    string
	user    string
	preview bool
	hybrid  bool
}

func newTranslateCommand(v *viper.Viper) *cobra.Command {
	var opts translateOptions
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate an objective or a JSON array of objectives",
		Long: `Reads a JSON object or array from --file (or stdin) and prints the
translated view. Arrays are translated item by item; a failing item is
reported in its result without stopping the batch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.to == "" && !opts.hybrid {
				return errors.New("--to is required unless --hybrid is set")
			}
			input, err := readInput(cmd.InOrStdin(), opts.file)
			if err != nil {
				return err
			}
			return withApplication(cmd.Context(), v, func(ctx context.Context, app *application) error {
				eng, err := app.pool.Get(ctx, opts.org, opts.dept)
				if err != nil {
					return err
				}
				return runTranslate(ctx, eng, input, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.to, "to", "", "target framework: eos, okr, 4dx or scaling_up")
	flags.StringVar(&opts.from, "from", "universal", "source framework of the input")
	flags.StringVarP(&opts.file, "file", "f", "-", "input file, - for stdin")
	flags.StringVar(&opts.org, "org", "", "organization whose configuration and rules apply")
	flags.StringVar(&opts.dept, "dept", "", "department within the organization")
	flags.StringVar(&opts.area, "area", "", "business area used for rule selection and --hybrid")
	flags.StringVar(&opts.user, "user", "", "user recorded in the translation history")
	flags.BoolVar(&opts.preview, "preview", false, "include validation and compatibility, skip history")
	flags.BoolVar(&opts.hybrid, "hybrid", false, "pick the framework the organization uses for --area")
	return cmd
}

// withApplication loads the config, builds the application and closes it
// after fn returns.
func withApplication(ctx context.Context, v *viper.Viper, fn func(context.Context, *application) error) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	app, err := newApplication(ctx, cfg, appOptions{})
	if err != nil {
		return err
	}
	defer app.close(ctx)
	return fn(ctx, app)
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func runTranslate(ctx context.Context, eng *engine.Engine, input []byte, opts translateOptions, out, errOut io.Writer) error {
	trimmed := bytes.TrimSpace(input)
	if len(trimmed) == 0 {
		return errors.New("no objective given")
	}

	if trimmed[0] == '[' {
		var items []framework.Fields
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("decode objectives: %w", err)
		}
		results, err := eng.BulkTranslate(ctx, items, opts.from, opts.to)
		if err != nil {
			return err
		}
		if err := writeJSON(out, results); err != nil {
			return err
		}
		printBulkSummary(errOut, results)
		return nil
	}

	var item framework.Fields
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return fmt.Errorf("decode objective: %w", err)
	}

	if !framework.IsUniversal(opts.from) {
		results, err := eng.BulkTranslate(ctx, []framework.Fields{item}, opts.from, opts.to)
		if err != nil {
			return err
		}
		if !results[0].Success {
			return errors.New(results[0].Error)
		}
		return writeJSON(out, results[0].Translated)
	}

	obj, err := framework.DecodeUniversal(item)
	if err != nil {
		return err
	}
	topts := engine.TranslateOptions{
		BusinessArea: framework.BusinessArea(strings.TrimSpace(opts.area)),
		UserID:       opts.user,
	}
	switch {
	case opts.hybrid:
		view, err := eng.TranslateForHybrid(ctx, obj, topts.BusinessArea, topts)
		if err != nil {
			return err
		}
		return writeJSON(out, view)
	case opts.preview:
		preview, err := eng.PreviewTranslation(ctx, obj, opts.to, topts)
		if err != nil {
			return err
		}
		return writeJSON(out, preview)
	default:
		view, err := eng.TranslateObjective(ctx, obj, opts.to, topts)
		if err != nil {
			return err
		}
		return writeJSON(out, view)
	}
}

func printBulkSummary(w io.Writer, results []engine.BulkResult) {
	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
			fmt.Fprintf(w, "%s item %d: %s\n", red("✗"), r.Index, r.Error)
		}
	}
	summary := fmt.Sprintf("%d translated, %d failed", len(results)-failed, failed)
	if failed > 0 {
		fmt.Fprintln(w, warnLine(summary))
		return
	}
	fmt.Fprintln(w, successLine(summary))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

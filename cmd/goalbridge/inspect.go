package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"goalbridge/internal/app/engine"
	"goalbridge/internal/domain/framework"
)

func newValidateCommand(_ *viper.Viper) *cobra.Command {
	var to, file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a universal objective against a framework's rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			return runValidate(engine.New(engine.Deps{}), input, to, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "target framework")
	cmd.Flags().StringVarP(&file, "file", "f", "-", "input file, - for stdin")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func runValidate(eng *engine.Engine, input []byte, to string, out io.Writer) error {
	var fields framework.Fields
	if err := json.Unmarshal(input, &fields); err != nil {
		return fmt.Errorf("decode objective: %w", err)
	}
	obj, err := framework.DecodeUniversal(fields)
	if err != nil {
		return err
	}
	result, err := eng.ValidateTranslation(obj, to)
	if err != nil {
		return err
	}
	summary, err := eng.CalculateCompatibilityScore([]framework.UniversalObjective{obj}, to)
	if err != nil {
		return err
	}

	name := summary.Framework.DisplayName()
	for _, issue := range result.Errors {
		fmt.Fprintf(out, "%s %s: %s\n", red("error"), issue.Field, issue.Message)
	}
	for _, issue := range result.Warnings {
		fmt.Fprintf(out, "%s %s: %s\n", yellow("warn"), issue.Field, issue.Message)
	}
	fmt.Fprintf(out, "%s %.0f%%\n", gray("compatibility"), summary.Score*100)
	if !result.Valid {
		return fmt.Errorf("objective is not valid for %s", name)
	}
	fmt.Fprintln(out, successLine("valid for "+name))
	return nil
}

func newRecommendCommand(v *viper.Viper) *cobra.Command {
	var org, dept string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank the frameworks for an organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(org) == "" {
				return errors.New("--org is required")
			}
			return withApplication(cmd.Context(), v, func(ctx context.Context, app *application) error {
				eng, err := app.pool.Get(ctx, org, dept)
				if err != nil {
					return err
				}
				return runRecommend(ctx, eng, cmd.OutOrStdout(), asJSON)
			})
		},
	}
	cmd.Flags().StringVar(&org, "org", "", "organization to score")
	cmd.Flags().StringVar(&dept, "dept", "", "department within the organization")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the recommendation as JSON")
	return cmd
}

func runRecommend(ctx context.Context, eng *engine.Engine, out io.Writer, asJSON bool) error {
	rec, err := eng.RecommendFramework(ctx)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(out, rec)
	}

	fmt.Fprintf(out, "%s %s %s\n", bold("Recommended:"), green(rec.Recommended.DisplayName()), gray(fmt.Sprintf("(%.0f)", rec.Score)))
	fmt.Fprintln(out, bold("Rankings:"))
	for i, fit := range rec.Rankings {
		fmt.Fprintf(out, "  %d. %-40s %5.0f\n", i+1, fit.Framework.DisplayName(), fit.Score)
		for _, con := range fit.Cons {
			fmt.Fprintf(out, "       %s %s\n", yellow("-"), con)
		}
	}
	if len(rec.Reasoning) > 0 {
		fmt.Fprintln(out, bold("Reasoning:"))
		for _, line := range rec.Reasoning {
			fmt.Fprintf(out, "  %s %s\n", cyan("•"), line)
		}
	}
	return nil
}

func newFrameworksCommand(_ *viper.Viper) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "frameworks",
		Short: "List the supported frameworks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printFrameworks(cmd.OutOrStdout(), engine.New(engine.Deps{}).AvailableFrameworks(), verbose)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show each framework's terminology")
	return cmd
}

func printFrameworks(out io.Writer, infos []engine.FrameworkInfo, verbose bool) {
	for _, info := range infos {
		fmt.Fprintf(out, "%-12s %s\n", cyan(string(info.Kind)), info.Name)
		if !verbose {
			continue
		}
		roles := make([]string, 0, len(info.Terminology))
		for role := range info.Terminology {
			roles = append(roles, role)
		}
		sort.Strings(roles)
		for _, role := range roles {
			fmt.Fprintf(out, "    %-14s %s\n", gray(role), info.Terminology[role])
		}
	}
}

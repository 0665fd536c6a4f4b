package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Refefer/quick-query/internal/batch"
)

func newTemplateCmd(opts *rootOptions) *cobra.Command {
	var (
		templateFile  string
		templateField string
		variables     string
		variablesFile string
		output        string
		concurrency   int
	)
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Evaluate a prompt template over many variable sets",
		Long: `Evaluate a prompt template over many variable sets.

Templates use Go text/template syntax with the sprig function map. Variable
sets come from --variables (a JSON object or array) or --variables-file
(JSON lines, "-" for stdin). Results are written as JSON lines in completion
order; a failed item is reported on its line without stopping the run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (templateFile == "") == (templateField == "") {
				return fmt.Errorf("exactly one of --template-from-file or --template-from-field is required")
			}
			if (variables == "") == (variablesFile == "") {
				return fmt.Errorf("exactly one of --variables or --variables-file is required")
			}

			var prompt batch.PromptSource
			var err error
			if templateFile != "" {
				if prompt, err = batch.FromFile(templateFile); err != nil {
					return err
				}
			} else {
				prompt = batch.FromField(templateField)
			}

			var src batch.VarSource
			switch {
			case variables != "":
				items, err := batch.ParseInline(variables)
				if err != nil {
					return err
				}
				src = batch.SliceVars(items)
			case variablesFile == "-":
				src = batch.JSONLVars(os.Stdin)
			default:
				f, err := os.Open(variablesFile)
				if err != nil {
					return err
				}
				defer f.Close()
				src = batch.JSONLVars(f)
			}

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			ctx := cmd.Context()
			client, profile, err := opts.buildClient(ctx)
			if err != nil {
				return err
			}
			system, err := opts.systemPrompt(profile)
			if err != nil {
				return err
			}
			reg, err := opts.buildTools(profile)
			if err != nil {
				return err
			}

			eval := &batch.Evaluator{
				Client:       client,
				Tools:        reg,
				Dispatcher:   opts.dispatcher(profile, false),
				Prompt:       prompt,
				SystemPrompt: system,
				Concurrency:  concurrency,
			}

			results := make(chan batch.Result, 2*concurrency)
			var g errgroup.Group
			g.Go(func() error { return eval.Run(ctx, src, results) })
			g.Go(func() error { return batch.WriteResults(out, results) })
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&templateFile, "template-from-file", "", "prompt template file")
	cmd.Flags().StringVar(&templateField, "template-from-field", "", "variable field holding the template text")
	cmd.Flags().StringVarP(&variables, "variables", "v", "", "variable sets as a JSON object or array")
	cmd.Flags().StringVar(&variablesFile, "variables-file", "", "JSON lines file of variable sets, - for stdin")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write results here instead of stdout")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", runtime.NumCPU(), "concurrent requests")
	return cmd
}

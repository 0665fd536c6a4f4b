package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Refefer/quick-query/internal/chat"
	"github.com/Refefer/quick-query/internal/llm"
)

func newCompleteCmd(opts *rootOptions) *cobra.Command {
	var questionFile string
	cmd := &cobra.Command{
		Use:   "complete [question...]",
		Short: "Ask a single question and print the answer",
		Long: `Ask a single question and print the answer.

The question comes from the arguments, --file, or stdin. Piped stdin is
appended to an argument question as context, so both of these work:

  qq complete "how many lines is this?" < notes.txt
  git diff | qq complete "write a commit message"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			question, err := gatherQuestion(args, questionFile)
			if err != nil {
				return err
			}
			if strings.TrimSpace(question) == "" {
				return fmt.Errorf("no question given")
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
			renderer, closer, err := opts.renderer()
			if err != nil {
				return err
			}
			defer closer.Close()

			if opts.re2 {
				question = chat.Re2Prompt(question)
			}
			var history []llm.Message
			if system != "" {
				history = append(history, llm.SystemMessage(system))
			}
			history = append(history, llm.UserMessage(question))

			d := opts.dispatcher(profile, renderer.NeedsBuffering())
			_, _, err = chat.RunTurn(ctx, client, reg, d, renderer, history)
			if err != nil {
				return err
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().StringVarP(&questionFile, "file", "f", "", "read the question from a file")
	return cmd
}

func gatherQuestion(args []string, questionFile string) (string, error) {
	var parts []string
	if len(args) > 0 {
		parts = append(parts, strings.Join(args, " "))
	}
	if questionFile != "" {
		data, err := os.ReadFile(questionFile)
		if err != nil {
			return "", fmt.Errorf("read question: %w", err)
		}
		parts = append(parts, strings.TrimRight(string(data), "\n"))
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		if piped := strings.TrimRight(string(data), "\n"); piped != "" {
			parts = append(parts, piped)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Refefer/quick-query/internal/config"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var showProfiles, showPrompts bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show configured profiles and system prompts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// No selector means show everything.
			if !showProfiles && !showPrompts {
				showProfiles, showPrompts = true, true
			}
			if showProfiles {
				if err := listProfiles(opts.confFile); err != nil {
					return err
				}
			}
			if showPrompts {
				if err := listPrompts(opts.promptsFile); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showProfiles, "profiles", false, "list profiles")
	cmd.Flags().BoolVar(&showPrompts, "system-prompts", false, "list system prompts")
	return cmd
}

func listProfiles(path string) error {
	profiles, err := config.LoadProfiles(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Printf("no profiles file at %s\n", path)
			return nil
		}
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROFILE\tMODEL\tHOST\tAPI KEY\tTOOLS")
	for _, p := range profiles {
		model := p.Model
		if model == "" {
			model = "(auto)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.Name, model, p.Credentials.Host, redactKey(p.Credentials.APIKey), strings.Join(p.Tools, ","))
	}
	return w.Flush()
}

func listPrompts(path string) error {
	names, prompts, err := config.ListPrompts(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Printf("no prompts file at %s\n", path)
			return nil
		}
		return err
	}
	for _, name := range names {
		fmt.Printf("%s:\n  %s\n", name, firstLine(prompts[name]))
	}
	return nil
}

// redactKey keeps just enough of a key to tell credentials apart.
func redactKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****"
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

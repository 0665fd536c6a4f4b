package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Refefer/quick-query/internal/config"
	"github.com/Refefer/quick-query/internal/llm"
	"github.com/Refefer/quick-query/internal/render"
	"github.com/Refefer/quick-query/internal/stream"
	"github.com/Refefer/quick-query/internal/tools"
)

type rootOptions struct {
	confFile    string
	promptsFile string
	profileName string

	promptName       string
	systemPromptFile string

	toolFiles []string

	markdown     bool
	cotBlockFD   string
	cotToken     string
	re2          bool
	minChunkSize int

	logLevel string
}

func main() {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "qq",
		Short:         "Query LLM endpoints from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	confDir := config.DefaultDir()
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.confFile, "conf-file", filepath.Join(confDir, "conf.toml"), "profiles file")
	pf.StringVar(&opts.promptsFile, "prompts-file", filepath.Join(confDir, "prompts.toml"), "system prompts file")
	pf.StringVarP(&opts.profileName, "profile", "s", "", "profile name (default \"default\")")
	pf.StringVarP(&opts.promptName, "prompt", "p", "", "system prompt name from the prompts file")
	pf.StringVar(&opts.systemPromptFile, "system-prompt-file", "", "read the system prompt from a file")
	pf.StringArrayVarP(&opts.toolFiles, "tools", "t", nil, "tool manifest file (repeatable, adds to the profile's)")
	pf.BoolVarP(&opts.markdown, "markdown", "m", false, "render the response as markdown")
	pf.StringVar(&opts.cotBlockFD, "cot-block-fd", "/dev/tty", "reasoning destination: 1, 2, or a path")
	pf.StringVar(&opts.cotToken, "cot-token", "think", "tag marking inline reasoning blocks")
	pf.BoolVar(&opts.re2, "re2", false, "repeat the question after a re-read instruction")
	pf.IntVar(&opts.minChunkSize, "min-chunk-size", 10, "minimum bytes per rendered fragment")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "zerolog level: trace, debug, info, warn, error")

	rootCmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		level, err := zerolog.ParseLevel(opts.logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.logLevel, err)
		}
		zerolog.SetGlobalLevel(level)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		return nil
	}

	rootCmd.AddCommand(newCompleteCmd(opts))
	rootCmd.AddCommand(newChatCmd(opts))
	rootCmd.AddCommand(newTemplateCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// buildClient resolves the profile and connects, discovering the model from
// the endpoint when the profile leaves it unset.
func (o *rootOptions) buildClient(ctx context.Context) (llm.Client, config.Profile, error) {
	profile, err := config.GetProfile(o.confFile, o.profileName)
	if err != nil {
		return nil, config.Profile{}, err
	}
	cfg := llm.Config{
		BaseURL: profile.Credentials.Host,
		APIKey:  profile.Credentials.APIKey,
		Model:   profile.Model,
	}
	client, err := llm.NewClient(cfg)
	if err != nil {
		return nil, config.Profile{}, err
	}
	if cfg.Model == "" {
		id, err := client.ModelID(ctx)
		if err != nil {
			return nil, config.Profile{}, fmt.Errorf("discover model: %w", err)
		}
		log.Debug().Str("model", id).Msg("using first advertised model")
		cfg.Model = id
		if client, err = llm.NewClient(cfg); err != nil {
			return nil, config.Profile{}, err
		}
	}
	return client, profile, nil
}

// systemPrompt resolves, in priority order, the prompt file flag, the named
// prompt flag, then the profile's prompt. A missing prompts file is only an
// error when a prompt was explicitly requested.
func (o *rootOptions) systemPrompt(profile config.Profile) (string, error) {
	if o.systemPromptFile != "" {
		data, err := os.ReadFile(o.systemPromptFile)
		if err != nil {
			return "", fmt.Errorf("read system prompt: %w", err)
		}
		return string(data), nil
	}
	name := o.promptName
	if name == "" {
		name = profile.PromptName
	}
	if name == "" {
		return "", nil
	}
	return config.LoadPrompt(o.promptsFile, name)
}

// buildTools loads the profile's manifests plus any given on the command
// line. No manifests means no registry and no tools payload.
func (o *rootOptions) buildTools(profile config.Profile) (*tools.Registry, error) {
	manifests := append([]string{}, profile.Tools...)
	manifests = append(manifests, o.toolFiles...)
	if len(manifests) == 0 {
		return nil, nil
	}
	reg := tools.NewRegistry()
	for _, path := range manifests {
		if err := tools.LoadManifest(reg, path); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// dispatcher wires the streaming flags. Profiles that stream reasoning as
// structured deltas do not need tag splitting.
func (o *rootOptions) dispatcher(profile config.Profile, needsBuffering bool) *stream.Dispatcher {
	tag := o.cotToken
	if profile.StructuredStreaming != nil && *profile.StructuredStreaming {
		tag = ""
	}
	return &stream.Dispatcher{
		ThinkTag:       tag,
		MinChunkSize:   o.minChunkSize,
		NeedsBuffering: needsBuffering,
	}
}

// renderer builds the output sink. When the reasoning destination cannot be
// opened, for example /dev/tty without a terminal, reasoning is dropped.
func (o *rootOptions) renderer() (render.Renderer, io.Closer, error) {
	cot, err := render.OpenSideChannel(o.cotBlockFD)
	if err != nil {
		log.Debug().Err(err).Msg("reasoning channel unavailable, discarding")
		cot = render.Discard()
	}
	if o.markdown {
		md, err := render.NewMarkdown(os.Stdout, cot)
		if err != nil {
			_ = cot.Close()
			return nil, nil, err
		}
		return md, cot, nil
	}
	return render.NewRaw(os.Stdout, cot), cot, nil
}

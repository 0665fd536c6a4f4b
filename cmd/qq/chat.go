package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Refefer/quick-query/internal/chat"
	"github.com/Refefer/quick-query/internal/render"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Hold an interactive conversation",
		Long:  "Hold an interactive conversation. Type /help for commands.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

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

			cot, err := render.OpenSideChannel(opts.cotBlockFD)
			if err != nil {
				log.Debug().Err(err).Msg("reasoning channel unavailable, discarding")
				cot = render.Discard()
			}
			defer cot.Close()

			markdown := opts.markdown
			makeRenderer := func() (render.Renderer, error) {
				if markdown {
					return render.NewMarkdown(os.Stdout, cot)
				}
				return render.NewRaw(os.Stdout, cot), nil
			}
			renderer, err := makeRenderer()
			if err != nil {
				return err
			}

			session := &chat.Session{
				Conv:       chat.NewConversation(system),
				Client:     client,
				Tools:      reg,
				Dispatcher: opts.dispatcher(profile, renderer.NeedsBuffering()),
				Sink:       renderer,
				Re2:        opts.re2,
			}

			multiline := false
			session.TogglePretty = func() string {
				markdown = !markdown
				r, err := makeRenderer()
				if err != nil {
					markdown = !markdown
					return "markdown unavailable: " + err.Error()
				}
				renderer = r
				session.Sink = r
				session.Dispatcher = opts.dispatcher(profile, r.NeedsBuffering())
				if markdown {
					return "markdown rendering on"
				}
				return "markdown rendering off"
			}
			session.ToggleMultiline = func() string {
				multiline = !multiline
				if multiline {
					return "multiline on, finish input with a lone ."
				}
				return "multiline off"
			}

			interactive := term.IsTerminal(int(os.Stdin.Fd()))
			prompt := func() {
				if interactive {
					fmt.Print("> ")
				}
			}

			sc := bufio.NewScanner(os.Stdin)
			sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
			for {
				prompt()
				if !sc.Scan() {
					if err := sc.Err(); err != nil {
						return err
					}
					return nil
				}
				line := strings.TrimSpace(sc.Text())
				if line == "" {
					continue
				}

				if strings.HasPrefix(line, "/") {
					out, err := session.Command(line)
					switch {
					case errors.Is(err, chat.ErrExit):
						return nil
					case err != nil:
						fmt.Fprintln(os.Stderr, "error:", err)
					case out != "":
						fmt.Println(out)
					}
					continue
				}

				message := line
				if multiline {
					more, err := readMultiline(sc, interactive)
					if err != nil {
						return err
					}
					if more != "" {
						message += "\n" + more
					}
				}

				if _, err := session.Ask(ctx, message); err != nil {
					if ctx.Err() != nil {
						fmt.Println()
						return nil
					}
					fmt.Fprintln(os.Stderr, "error:", err)
					continue
				}
				fmt.Println()
			}
		},
	}
}

// readMultiline collects lines until one containing only a period.
func readMultiline(sc *bufio.Scanner, interactive bool) (string, error) {
	var lines []string
	for {
		if interactive {
			fmt.Print(". ")
		}
		if !sc.Scan() {
			return strings.Join(lines, "\n"), sc.Err()
		}
		line := sc.Text()
		if strings.TrimSpace(line) == "." {
			return strings.Join(lines, "\n"), nil
		}
		lines = append(lines, line)
	}
}

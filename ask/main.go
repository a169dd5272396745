// Command terminai turns a plain-language request into a shell command using
// a TerminAI API server. The command is printed, never executed.
//
// Usage:
//
//	terminai how do I find large files here
//	terminai --toml "show listening ports" >> log.toml
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	terminai "github.com/terminai/terminai-api"
	"github.com/terminai/terminai-api/client"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	if err := newRootCmd(os.Stdin).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdin *os.File) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TERMINAI")
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "terminai <request...>",
		Short:         "Ask TerminAI for a shell command",
		Version:       Version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey := v.GetString("api_key")
			if apiKey == "" && stdin != nil && term.IsTerminal(int(stdin.Fd())) {
				key, err := readKey(cmd.ErrOrStderr(), stdin)
				if err != nil {
					return err
				}
				apiKey = key
			}
			if apiKey == "" {
				return errors.New("no API key: set TERMINAI_API_KEY or pass --api-key")
			}

			c := client.New(v.GetString("api_url"), apiKey)
			return ask(cmd.Context(), c, askOptions{
				query:   strings.Join(args, " "),
				context: gatherContext(),
				timeout: v.GetDuration("timeout"),
				toml:    v.GetBool("toml"),
			}, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.String("url", client.DefaultBaseURL, "TerminAI API base URL ($TERMINAI_API_URL)")
	flags.String("api-key", "", "TerminAI API key ($TERMINAI_API_KEY)")
	flags.Duration("timeout", 60*time.Second, "request timeout")
	flags.Bool("toml", false, "print the request and response as a TOML record")

	v.BindPFlag("api_url", flags.Lookup("url"))
	v.BindPFlag("api_key", flags.Lookup("api-key"))
	v.BindPFlag("timeout", flags.Lookup("timeout"))
	v.BindPFlag("toml", flags.Lookup("toml"))

	return cmd
}

// readKey prompts for the API key without echoing it.
func readKey(prompt io.Writer, stdin *os.File) (string, error) {
	fmt.Fprint(prompt, "TerminAI API key: ")
	key, err := term.ReadPassword(int(stdin.Fd()))
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("read API key: %w", err)
	}
	return strings.TrimSpace(string(key)), nil
}

// commandGenerator is the part of client.Client that ask needs.
type commandGenerator interface {
	GenerateCommand(ctx context.Context, req *terminai.CommandRequest) (*terminai.CommandResponse, error)
}

type askOptions struct {
	query   string
	context map[string]any
	timeout time.Duration
	toml    bool
}

func ask(ctx context.Context, c commandGenerator, opts askOptions, out io.Writer) error {
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	req := &terminai.CommandRequest{Query: opts.query, Context: opts.context}
	resp, err := c.GenerateCommand(ctx, req)

	if opts.toml {
		if werr := writeEntry(out, newEntry(time.Now(), req, resp, err)); werr != nil {
			return werr
		}
		return err
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, resp.Command)
	return nil
}

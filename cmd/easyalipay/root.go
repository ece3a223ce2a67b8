// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/easyalipay/easyalipay-go/pkg/client"
)

type rootFlags struct {
	verbose bool
}

// newRootCmd builds the whole command tree, a fresh one per invocation.
func newRootCmd() *cobra.Command {
	var flags rootFlags

	logger := zerolog.Nop()

	cmd := &cobra.Command{
		Use:          "easyalipay",
		Short:        "Alipay OpenAPI gateway utilities",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := zerolog.InfoLevel
			if flags.verbose {
				level = zerolog.DebugLevel
			}

			logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).
				Level(level).
				With().Timestamp().Logger()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddGroup(&cobra.Group{
		ID:    "crypto",
		Title: "Key Material and Signatures",
	}, &cobra.Group{
		ID:    "gateway",
		Title: "Gateway",
	})

	cmd.AddCommand(
		newConvertCmd(),
		newSignCmd(),
		newVerifyCmd(),
		newSNCmd(),
		newKeysCmd(&logger),
		newCallCmd(&logger),
		newVersionCmd(),
	)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the SDK version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), client.UserAgent())

			return err
		},
	}
}

// readInput returns the argument, or stdin when the argument is `-` or missing.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		return args[0], nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}

	return strings.TrimRight(string(data), "\r\n"), nil
}

// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/easyalipay/easyalipay-go/pkg/keystore"
	"github.com/easyalipay/easyalipay-go/pkg/rsa"
)

// defaultKeyDirectory is the key store directory under the XDG data home.
const defaultKeyDirectory = "easyalipay"

type keysFlags struct {
	appID string
	dir   string
	use   string
}

func (f *keysFlags) register(cmd *cobra.Command, withUse bool) {
	cmd.Flags().StringVar(&f.appID, "app-id", "", "Merchant application id")
	cmd.Flags().StringVar(&f.dir, "dir", defaultKeyDirectory, "Key store directory under the XDG data home")

	if withUse {
		cmd.Flags().StringVarP(&f.use, "use", "u", "private", "Key type: private (merchant) or public (platform)")
	}

	cmd.MarkFlagRequired("app-id") //nolint:errcheck
}

func newKeysCmd(logger *zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		GroupID: "crypto",
		Use:     "keys",
		Short:   "Manage the keys stored per app id",
	}

	cmd.AddCommand(
		newKeysGenerateCmd(logger),
		newKeysImportCmd(logger),
		newKeysShowCmd(),
		newKeysDeleteCmd(logger),
	)

	return cmd
}

func newKeysGenerateCmd(logger *zerolog.Logger) *cobra.Command {
	var flags keysFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and store a merchant key pair, print the public key to upload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			provider := keystore.NewKeyProvider(flags.dir)

			key, err := provider.GenerateKey()
			if err != nil {
				return err
			}

			path, err := provider.WriteKey(flags.appID, key, rsa.UsePrivate)
			if err != nil {
				return err
			}

			logger.Info().Str("path", path).Str("id", key.ID()).Msg("merchant private key saved")

			armored, err := key.ArmorPublic()
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), armored)

			return err
		},
	}

	flags.register(cmd, false)

	return cmd
}

func newKeysImportCmd(logger *zerolog.Logger) *cobra.Command {
	var flags keysFlags

	cmd := &cobra.Command{
		Use:   "import [KEY]",
		Short: "Store a merchant private key or the platform public key",
		Example: `  easyalipay keys import --app-id 2014072300007148 file://merchant.pem
  easyalipay keys import --app-id 2014072300007148 --use public public.spki://MIIBIjANBgkq...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			thing, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			use, err := rsa.ParseUse(flags.use)
			if err != nil {
				return err
			}

			key, err := rsa.Load(thing, use)
			if err != nil {
				return err
			}

			if err = key.Validate(); err != nil {
				return fmt.Errorf("refusing to store the key: %w", err)
			}

			path, err := keystore.NewKeyProvider(flags.dir).WriteKey(flags.appID, key, use)
			if err != nil {
				return err
			}

			logger.Info().Str("path", path).Str("id", key.ID()).Msgf("%s key saved", use)

			return nil
		},
	}

	flags.register(cmd, true)

	return cmd
}

func newKeysShowCmd() *cobra.Command {
	var flags keysFlags

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the public part of a stored key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			use, err := rsa.ParseUse(flags.use)
			if err != nil {
				return err
			}

			key, err := keystore.NewKeyProvider(flags.dir).ReadKey(flags.appID, use)
			if err != nil {
				return err
			}

			armored, err := key.ArmorPublic()
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), armored)

			return err
		},
	}

	flags.register(cmd, true)

	return cmd
}

func newKeysDeleteCmd(logger *zerolog.Logger) *cobra.Command {
	var flags keysFlags

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a stored key",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			use, err := rsa.ParseUse(flags.use)
			if err != nil {
				return err
			}

			if err = keystore.NewKeyProvider(flags.dir).DeleteKey(flags.appID, use); err != nil {
				return err
			}

			logger.Info().Str("app_id", flags.appID).Msgf("%s key deleted", use)

			return nil
		},
	}

	flags.register(cmd, true)

	return cmd
}

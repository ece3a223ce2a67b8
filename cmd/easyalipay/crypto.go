// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/easyalipay/easyalipay-go/pkg/cert"
	"github.com/easyalipay/easyalipay-go/pkg/message"
	"github.com/easyalipay/easyalipay-go/pkg/rsa"
)

// errMismatch is returned by verify for a well-formed signature which does not match.
var errMismatch = errors.New("signature does not match")

func newConvertCmd() *cobra.Command {
	var flags struct {
		use        string
		passphrase string
		pkcs1      bool
	}

	cmd := &cobra.Command{
		GroupID: "crypto",
		Use:     "convert KEY",
		Short:   "Convert key material to PEM",
		Long: `Load key material in any supported form and print it as PEM:
PKCS#8 for a private key, SPKI for a public key.

KEY can be a file:// reference, a private.pkcs1://, private.pkcs8://,
public.pkcs1:// or public.spki:// string, PEM text or base64 DER.
With --pkcs1 the argument is a base64 PKCS#1 public key and the
base64 SPKI is printed instead.`,
		Example: `  easyalipay convert file://merchant.pem
  easyalipay convert --use public public.pkcs1://MIIBCgKCAQEA...
  easyalipay convert --pkcs1 MIIBCgKCAQEA...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			thing, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			if flags.pkcs1 {
				spki, convErr := rsa.PKCS1ToSPKI(thing)
				if convErr != nil {
					return convErr
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), spki)

				return err
			}

			use, err := rsa.ParseUse(flags.use)
			if err != nil {
				return err
			}

			key, err := loadKey(thing, flags.passphrase, use)
			if err != nil {
				return err
			}

			armored, err := key.Armor()
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), armored)

			return err
		},
	}

	cmd.Flags().StringVarP(&flags.use, "use", "u", "private", "Key type: private or public")
	cmd.Flags().StringVar(&flags.passphrase, "passphrase", "", "Passphrase of an encrypted private key")
	cmd.Flags().BoolVar(&flags.pkcs1, "pkcs1", false, "Convert a base64 PKCS#1 public key to base64 SPKI")

	return cmd
}

type signFlags struct {
	key        string
	passphrase string
	algorithm  string
	params     bool
}

// loadKey loads the key, decrypting a private key when a passphrase is given.
func loadKey(thing, passphrase string, use rsa.Use) (*rsa.Key, error) {
	if passphrase != "" && use == rsa.UsePrivate {
		return rsa.LoadEncrypted(thing, passphrase)
	}

	return rsa.Load(thing, use)
}

// signingInput returns the signed string: the message itself, or the
// signing string of the `k=v&k=v` message when params is set.
func (f signFlags) signingInput(msg string) (string, error) {
	if !f.params {
		return msg, nil
	}

	params := map[string]string{}

	for _, pair := range strings.Split(msg, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return "", fmt.Errorf("invalid parameter %q", pair)
		}

		params[key] = value
	}

	return message.SigningString(params), nil
}

func newSignCmd() *cobra.Command {
	var flags signFlags

	cmd := &cobra.Command{
		GroupID: "crypto",
		Use:     "sign [MESSAGE]",
		Short:   "Sign a message with the merchant private key",
		Long: `Sign MESSAGE (or stdin) and print the base64 signature.

With --params the message is parsed as k=v&k=v parameters and
the canonical signing string of them is signed.`,
		Example: `  easyalipay sign --key file://merchant.pem 'hello'
  easyalipay sign --key file://merchant.pem --params 'method=alipay.trade.query&app_id=2014072300007148'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			if msg, err = flags.signingInput(msg); err != nil {
				return err
			}

			key, err := loadKey(flags.key, flags.passphrase, rsa.UsePrivate)
			if err != nil {
				return err
			}

			signature, err := rsa.Sign(msg, key, rsa.ParseAlgorithm(flags.algorithm))
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), signature)

			return err
		},
	}

	cmd.Flags().StringVarP(&flags.key, "key", "k", "", "Merchant private key")
	cmd.Flags().StringVar(&flags.passphrase, "passphrase", "", "Passphrase of an encrypted merchant private key")
	cmd.Flags().StringVarP(&flags.algorithm, "algorithm", "a", string(rsa.DefaultAlgorithm), "Signature algorithm: RSA or RSA2")
	cmd.Flags().BoolVar(&flags.params, "params", false, "Sign the canonical signing string of k=v&k=v parameters")
	cmd.MarkFlagRequired("key") //nolint:errcheck

	return cmd
}

func newVerifyCmd() *cobra.Command {
	var (
		flags     signFlags
		signature string
	)

	cmd := &cobra.Command{
		GroupID: "crypto",
		Use:     "verify [MESSAGE]",
		Short:   "Verify a signature with the platform public key",
		Long:    `Verify the base64 signature of MESSAGE (or stdin), the command fails when it does not match.`,
		Example: `  easyalipay verify --key file://alipay-public.pem --signature 'kX2...==' '{"code":"10000"}'`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			if msg, err = flags.signingInput(msg); err != nil {
				return err
			}

			key, err := rsa.Load(flags.key, rsa.UsePublic)
			if err != nil {
				return err
			}

			ok, err := rsa.Verify(msg, signature, key, rsa.ParseAlgorithm(flags.algorithm))
			if err != nil {
				return err
			}

			if !ok {
				return errMismatch
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), message.VerifiedOK)

			return err
		},
	}

	cmd.Flags().StringVarP(&flags.key, "key", "k", "", "Platform public key")
	cmd.Flags().StringVarP(&signature, "signature", "s", "", "Base64 signature")
	cmd.Flags().StringVarP(&flags.algorithm, "algorithm", "a", string(rsa.DefaultAlgorithm), "Signature algorithm: RSA or RSA2")
	cmd.Flags().BoolVar(&flags.params, "params", false, "Verify the canonical signing string of k=v&k=v parameters")
	cmd.MarkFlagRequired("key")       //nolint:errcheck
	cmd.MarkFlagRequired("signature") //nolint:errcheck

	return cmd
}

func newSNCmd() *cobra.Command {
	var (
		filter  string
		extract bool
	)

	cmd := &cobra.Command{
		GroupID: "crypto",
		Use:     "sn CERTIFICATE",
		Short:   "Compute the SN of a certificate bundle",
		Long: `Print the app_cert_sn / alipay_root_cert_sn of the certificates in the
bundle: md5 of the folded issuer and the decimal serial number, joined by '_'.

CERTIFICATE is a file path, a file:// reference or a data: URI.`,
		Example: `  easyalipay sn appCertPublicKey.crt
  easyalipay sn --filter sha256WithRSAEncryption alipayRootCert.crt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				out string
				err error
			)

			if extract {
				out, err = cert.Extract(args[0], filter)
			} else {
				out, err = cert.SN(args[0], filter)
			}

			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)

			return err
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Keep only certificates whose signature algorithm contains this")
	cmd.Flags().BoolVar(&extract, "extract", false, "Print the matching certificates instead of their SN")

	return cmd
}

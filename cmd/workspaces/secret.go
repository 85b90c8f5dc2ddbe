package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aloks98/workspaces/internal/crypto"
)

func newSecretCmd() *cobra.Command {
	var (
		size     int
		encoding string
	)

	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Print a random token signing secret for SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := crypto.GenerateSecret(size, crypto.Encoding(encoding))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "bytes", crypto.MinSecretBytes, "Random bytes in the secret")
	cmd.Flags().StringVar(&encoding, "encoding", string(crypto.EncodingBase64), "Output encoding: base64|hex")
	return cmd
}

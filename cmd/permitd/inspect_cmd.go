package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/feng001-8/work/pkg/inspect"
)

func hashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <file>",
		Short: "Print the hash snapshot of a typed-data JSON file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			hashes, err := inspect.Hash(data)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), hashes)
		},
	}
}

func recoverCmd() *cobra.Command {
	var signer string
	cmd := &cobra.Command{
		Use:   "recover <file> <signature>",
		Short: "Recover the signer of a typed-data JSON file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			if signer != "" {
				result, err := inspect.Verify(data, args[1], signer)
				if err != nil {
					return err
				}
				if err := printJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
				if !result.Valid {
					return fmt.Errorf("signature recovers to %s, not %s", result.Recovered, signer)
				}
				return nil
			}
			recovery, err := inspect.Recover(data, args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), recovery)
		},
	}
	cmd.Flags().StringVar(&signer, "expect", "", "fail unless the signature recovers to this address")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fintrack/finance-tracker/auth"
	"github.com/spf13/cobra"
)

func newHashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password read from stdin",
		Long: `Reads one line from stdin and prints its bcrypt hash. Useful for
seeding users directly in the database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("cost") {
				cost = costFromEnv()
			}
			return hashPassword(cmd.InOrStdin(), cmd.OutOrStdout(), cost)
		},
	}

	cmd.Flags().IntVar(&cost, "cost", auth.DefaultBcryptCost, "bcrypt cost factor (default: BCRYPT_COST)")
	return cmd
}

func hashPassword(in io.Reader, out io.Writer, cost int) error {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")

	hasher, err := auth.NewBcryptHasher(cost)
	if err != nil {
		return err
	}
	hashed, err := hasher.Hash(password)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, hashed)
	return err
}

// costFromEnv mirrors the server's BCRYPT_COST setting
func costFromEnv() int {
	if v, err := strconv.Atoi(os.Getenv("BCRYPT_COST")); err == nil {
		return v
	}
	return auth.DefaultBcryptCost
}

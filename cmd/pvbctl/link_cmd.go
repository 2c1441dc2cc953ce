package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"pvb-admin/internal/repositories"
	"pvb-admin/internal/services"

	"github.com/spf13/cobra"
)

type linkOutput struct {
	Applied   bool                    `json:"applied"`
	Written   int                     `json:"written"`
	Links     []services.IdentityLink `json:"links"`
	Unmatched []string                `json:"unmatched"`
}

func newLinkIdentitiesCmd(a *app) *cobra.Command {
	var (
		file      string
		apply     bool
		threshold int
	)

	cmd := &cobra.Command{
		Use:   "link-identities [email...]",
		Short: "Match directory emails to employees without an email (dry-run by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			emails := append([]string{}, args...)
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open --file: %w", err)
				}
				fromFile, err := readEmails(f)
				f.Close()
				if err != nil {
					return err
				}
				emails = append(emails, fromFile...)
			}
			if len(emails) == 0 {
				return fmt.Errorf("no emails given, pass them as arguments or with --file")
			}

			pool, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			employees := repositories.NewEmployeeRepository(pool, repositories.NewTxManager(pool), a.logger)
			linker := services.NewIdentityLinker(employees, a.logger)

			links, unmatched, err := linker.Propose(cmd.Context(), emails, threshold)
			if err != nil {
				return err
			}
			out := linkOutput{Applied: apply, Links: links, Unmatched: unmatched}
			if apply {
				if out.Written, err = linker.Apply(cmd.Context(), links); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "File with one email per line; '#' starts a comment")
	cmd.Flags().BoolVar(&apply, "apply", false, "Write the matches (default dry-run)")
	cmd.Flags().IntVar(&threshold, "threshold", 3, "Maximum edit distance between email name and employee name")
	return cmd
}

// readEmails reads one address per line, skipping blank lines and comments.
func readEmails(r io.Reader) ([]string, error) {
	var emails []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		emails = append(emails, line)
	}
	return emails, scanner.Err()
}

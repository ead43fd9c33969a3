package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func newUseAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "use-s21-cli-auth",
		Aliases: []string{"use-auth", "_"},
		Short:   "Turn `s21 auth` output read from stdin into a --token flag",
		Example: "  s21 auth | s21introspector _",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f, ok := cmd.InOrStdin().(*os.File); ok && isatty.IsTerminal(f.Fd()) {
				fmt.Fprintln(cmd.ErrOrStderr(), faint("Paste the `s21 auth` output:"))
			}
			token, err := tokenFromAuthLine(cmd.InOrStdin())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "--token %s\n", token)
			return nil
		},
	}
}

// tokenFromAuthLine takes the second word of the first input line, where
// `s21 auth` prints the token after its scheme.
func tokenFromAuthLine(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("read auth line: %w", err)
		}
		return "", errors.New("no auth line on stdin")
	}
	fields := strings.Fields(sc.Text())
	if len(fields) < 2 {
		return "", fmt.Errorf("malformed auth line %q", sc.Text())
	}
	return fields[1], nil
}

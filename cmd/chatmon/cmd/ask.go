package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var askExplain bool

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Answer one question",
	Long:  "Answers a single question. Reads the question from stdin when no arguments are given and stdin is a pipe. Uses the daemon when it is running.",
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askExplain, "explain", false, "show the tier, matched question and score")
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	if query == "" && isStdinPipe() {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		query = strings.TrimSpace(string(data))
	}
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("no question given. Usage: chatmon ask how do I post a reel")
	}

	q, _, closeFn, err := connect(projectRoot())
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := q.Ask(cmd.Context(), query)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if askExplain {
		fmt.Fprint(out, formatExplain(result))
	}
	fmt.Fprintln(out, result.Response)
	return nil
}

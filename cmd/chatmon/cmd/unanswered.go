package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var unansweredLimit int

var unansweredCmd = &cobra.Command{
	Use:   "unanswered",
	Short: "List questions that got the default reply",
	Long:  "Lists the most frequent queries no tier could answer, as candidates for new dataset rows.",
	RunE:  runUnanswered,
}

func init() {
	unansweredCmd.Flags().IntVarP(&unansweredLimit, "limit", "n", 20, "maximum queries to list")
}

func runUnanswered(cmd *cobra.Command, args []string) error {
	q, _, closeFn, err := connect(projectRoot())
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := q.Unanswered(unansweredLimit)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatUnanswered(result))
	return nil
}

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/chatmon/internal/app"
)

var (
	statsTop   int
	statsReset bool
	statsForce bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show lookup statistics",
	Long:  "Shows how many lookups each tier answered and the most-hit questions. Uses the daemon when it is running.",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsTop, "top", 10, "number of top questions to show")
	statsCmd.Flags().BoolVar(&statsReset, "reset", false, "clear all counters and the unanswered log")
	statsCmd.Flags().BoolVar(&statsForce, "force", false, "skip the --reset confirmation prompt")
}

func runStats(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	if statsReset {
		return runStatsReset(root)
	}

	q, _, closeFn, err := connect(root)
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := q.LookupStats(statsTop)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatStats(result))
	return nil
}

// runStatsReset clears the store directly; the daemon must be stopped since
// it holds the database lock.
func runStatsReset(root string) error {
	if !statsForce {
		fmt.Print("This will clear all lookup statistics. Continue? [y/N] ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("cancelled")
			return nil
		}
	}

	a, err := app.New(app.Config{ProjectRoot: root, Settings: settings})
	if err != nil {
		if isDBLockError(err) {
			return fmt.Errorf("cannot reset: %s", diagnoseDBLock(root))
		}
		return err
	}
	defer a.Close()

	if err := a.ResetStats(); err != nil {
		return err
	}
	fmt.Println("⚡ stats reset")
	return nil
}

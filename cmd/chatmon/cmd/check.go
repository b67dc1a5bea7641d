package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/chatmon/internal/adapters/source"
	"github.com/corey/chatmon/internal/config"
	"github.com/corey/chatmon/internal/domain/dataset"
)

var checkDroppedOnly bool

var checkCmd = &cobra.Command{
	Use:   "check [file-or-url]",
	Short: "Validate a dataset and report how each row parses",
	Long:  "Parses a dataset without loading it and lists every row with the split strategy used or the reason it was dropped. Defaults to the configured dataset. No daemon required.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkDroppedOnly, "dropped", false, "list dropped rows only")
}

func runCheck(cmd *cobra.Command, args []string) error {
	location := settings.Dataset
	if len(args) == 1 {
		location = args[0]
	}
	timeout := settings.DatasetTimeout
	if timeout <= 0 {
		timeout = config.DefaultDatasetTimeout
	}
	src := source.New(location, timeout)

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	text, err := src.Fetch(ctx)
	if err != nil {
		return err
	}

	res := dataset.ParseDetailed(text)
	fmt.Fprint(cmd.OutOrStdout(), formatCheck(src.Name(), res, checkDroppedOnly))
	if res.Kept() == 0 {
		return fmt.Errorf("%s: %w", src.Name(), dataset.ErrEmptyDataset)
	}
	return nil
}

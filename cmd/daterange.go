package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"opsconsole/internal/datelabel"
	"opsconsole/internal/matching"
)

var daterangeCmd = &cobra.Command{
	Use:   "daterange [label]...",
	Short: "Show the dates encoded in project labels",
	Long: `Parse the date or date range a project label carries, such as
"Gala 05-071225" (DD-DDMMYY), "Summer Gala 150625" (DDMMYY) or
"Board Meeting 0325" (MMYY).

With --window the interval is widened the way project matching does before
comparing it to a document date.`,
	Example: `  opsconsole daterange "Gala 05-071225" "Board Meeting 0325"
  opsconsole daterange --window "Summer Gala 150625"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		window, _ := cmd.Flags().GetBool("window")
		out := cmd.OutOrStdout()

		for _, label := range args {
			interval, ok := datelabel.Parse(label)
			if !ok {
				fmt.Fprintf(out, "%s\tno date\n", label)
				continue
			}
			if window {
				interval = interval.Widen(matching.DaysBeforeProjectStart, matching.DaysAfterProjectEnd)
			}
			fmt.Fprintf(out, "%s\t%s\n", label, interval)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(daterangeCmd)

	daterangeCmd.Flags().Bool("window", false, "Widen the interval to the project matching window")
}

package perf

import (
	"fmt"
	"github.com/ValentinKolb/rexkv/lib/workload"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
)

var (
	loadCmd = &cobra.Command{
		Use:   "load",
		Short: "Inserts the records of the workload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := workload.NewRunner(perfDB, perfConfig)
			if err != nil {
				return err
			}
			return report(runner.Load())
		},
	}
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Executes the operations of the workload",
		Long: `Executes the operations of the workload. The records are expected to be
loaded already (see perf load), use --load to run both phases at once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := workload.NewRunner(perfDB, perfConfig)
			if err != nil {
				return err
			}

			var results []workload.Result
			if viper.GetBool("load") {
				load := runner.Load()
				if err := workload.WriteReport(os.Stdout, load); err != nil {
					return err
				}
				fmt.Println()
				results = append(results, load)
			}
			return report(append(results, runner.Run())...)
		},
	}
)

func init() {
	runCmd.Flags().Bool("load", false, "Run the load phase before the run phase")
}

// report prints the last result and writes all results to the CSV file if configured
func report(results ...workload.Result) error {
	if err := workload.WriteReport(os.Stdout, results[len(results)-1]); err != nil {
		return err
	}

	csvPath := viper.GetString("csv")
	if csvPath == "" {
		return nil
	}

	fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	if err := workload.WriteCSV(file, results...); err != nil {
		return fmt.Errorf("failed to export results to CSV: %v", err)
	}
	fmt.Println("Export complete")
	return nil
}

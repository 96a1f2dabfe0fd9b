package cmd

import (
	"fmt"
	"github.com/ValentinKolb/rexkv/cmd/kv"
	"github.com/ValentinKolb/rexkv/cmd/perf"
	"github.com/ValentinKolb/rexkv/cmd/serve"
	"github.com/ValentinKolb/rexkv/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "rexkv",
		Short: "client for the Rex key-value store",
		Long: fmt.Sprintf(`rexkv (v%s)

A client for the replicated Rex key-value store. It talks the length-prefixed
JSON protocol of the store nodes over pooled TCP connections, learns the
cluster members from a seed node and spreads requests across them.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of rexkv",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rexkv v%s\n", Version)
		},
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(perf.PerfCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, sonic)"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "warn", util.WrapString("the level at which logs will be output (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

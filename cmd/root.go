package cmd

import (
	"fmt"
	"github.com/ValentinKolb/birch/cmd/inspect"
	"github.com/ValentinKolb/birch/cmd/perf"
	"github.com/ValentinKolb/birch/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "birch",
		Short: "schema driven binary serialization engine",
		Long: fmt.Sprintf(`birch (v%s)

A schema driven binary serialization library written in Go. Structs are
registered once, their fields carry stable numeric aliases, and values travel
as compact big-endian records with optional self-describing type tags.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of birch",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("birch v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(inspect.InspectCmd)
	RootCmd.AddCommand(perf.PerfCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "log-level"
	RootCmd.PersistentFlags().String(key, "info", util.WrapString("The level at which logs will be output (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/forvodl/internal/cli"
	"codeberg.org/snonux/forvodl/internal/processor"
)

func main() {
	os.Exit(run(os.Args[1:], processor.Options{Pick: -1}, os.Stderr))
}

// run executes the command line and returns the process exit code. Fields
// of opts that flags control are overwritten.
func run(args []string, opts processor.Options, stderr io.Writer) int {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)
	rootCmd.SetArgs(args)
	rootCmd.SetErr(stderr)
	if opts.Out != nil {
		rootCmd.SetOut(opts.Out)
	}

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags, opts, stderr)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		// "No results found." has already been printed
		if !errors.Is(err, processor.ErrNoResults) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags, opts processor.Options, stderr io.Writer) error {
	log := cli.NewLogger(stderr, flags.Verbose)

	settings, err := cli.Merge(cli.LoadConfigFile(flags.CfgFile, log), cli.ArgsLayer(cmd, flags), args[0])
	if err != nil {
		if errors.Is(err, cli.ErrMissingCredential) {
			return fmt.Errorf("%w (use --api-key, FORVO_API_KEY or api_key in %s)", err, flags.CfgFile)
		}
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	opts.Pick = flags.Pick
	opts.Timeout = flags.Timeout
	opts.Log = log

	proc, err := processor.NewProcessor(settings, opts)
	if err != nil {
		return err
	}
	defer proc.Close()

	return proc.Run(ctx)
}

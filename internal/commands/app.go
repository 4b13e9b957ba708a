// Package commands implements the wallpaperd command line.
package commands

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"
)

// NewApp returns the wallpaperd application. Output goes to stdout and
// stderr unless overridden by the caller. Errors are returned from Run
// instead of exiting the process.
func NewApp(stdout, stderr io.Writer) *cli.App {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &cli.App{
		Name:           "wallpaperd",
		Usage:          "Drive a live wallpaper render thread against an off-screen surface",
		Writer:         stdout,
		ErrWriter:      stderr,
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			RunCommand(),
			ConfigCommand(),
		},
	}
}

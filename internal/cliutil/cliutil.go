// Package cliutil carries the small pieces of behavior every cmd/
// binary shares: a logrus logger configured the same way everywhere,
// and the "usage errors still exit 0" rule these tools follow.
package cliutil

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewLogger returns a text-formatted logrus logger writing to stderr,
// the level the corpus's CLI tools default to outside of -v/-debug flags.
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}

// Execute runs root and always exits 0, even on a usage error,
// preserving these tools' "print usage, exit 0" behavior rather than
// cobra's default nonzero exit on argument errors.
func Execute(root *cobra.Command) {
	root.SilenceErrors = true
	if err := root.Execute(); err != nil {
		root.PrintErrln(err)
	}
	os.Exit(0)
}

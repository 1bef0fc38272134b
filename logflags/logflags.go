// Package logflags configures the layered loggers used across dwarf2layout.
// Warnings are always printed; debug output is enabled per layer with
// --log-output.
package logflags

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var loader = false
var walker = false
var symtab = false

var logOut io.Writer

var textFormatterInstance = &logrus.TextFormatter{
	DisableTimestamp:       true,
	DisableLevelTruncation: true,
}

func makeLogger(flag bool, fields logrus.Fields) *logrus.Entry {
	logger := logrus.New()
	logger.Formatter = textFormatterInstance
	logger.Out = os.Stderr
	if logOut != nil {
		logger.Out = logOut
	}
	logger.Level = logrus.DebugLevel
	if !flag {
		logger.Level = logrus.WarnLevel
	}
	return logger.WithFields(fields)
}

// Loader returns true if binary loading should be logged.
func Loader() bool {
	return loader
}

// LoaderLogger returns a logger for object and DWARF loading.
func LoaderLogger() *logrus.Entry {
	return makeLogger(loader, logrus.Fields{"layer": "loader"})
}

// Walker returns true if the layout walk should be logged.
func Walker() bool {
	return walker
}

// WalkerLogger returns a logger for the type graph walker.
func WalkerLogger() *logrus.Entry {
	return makeLogger(walker, logrus.Fields{"layer": "walker"})
}

// Symtab returns true if symbol table lookups should be logged.
func Symtab() bool {
	return symtab
}

// SymtabLogger returns a logger for symbol table lookups.
func SymtabLogger() *logrus.Entry {
	return makeLogger(symtab, logrus.Fields{"layer": "symtab"})
}

// SetOutput redirects every logger created afterwards to w. A nil w
// restores standard error.
func SetOutput(w io.Writer) {
	logOut = w
}

var errLogstrWithoutLog = errors.New("--log-output specified without --log")

// Setup sets the layer flags based on the contents of logstr.
func Setup(logFlag bool, logstr string) error {
	loader, walker, symtab = false, false, false
	if !logFlag {
		if logstr != "" {
			return errLogstrWithoutLog
		}
		return nil
	}
	if logstr == "" {
		logstr = "loader,walker,symtab"
	}
	for _, logcmd := range strings.Split(logstr, ",") {
		switch strings.TrimSpace(logcmd) {
		case "loader":
			loader = true
		case "walker":
			walker = true
		case "symtab":
			symtab = true
		}
	}
	return nil
}

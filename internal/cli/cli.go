package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ruolin/vg/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// stringList collects a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// provideList collects repeatable "Identifier=file[,file...]" flags.
type provideList map[string][]string

func (l provideList) String() string {
	var parts []string
	for id, files := range l {
		parts = append(parts, id+"="+strings.Join(files, ","))
	}
	return strings.Join(parts, " ")
}

func (l provideList) Set(v string) error {
	id, files, ok := strings.Cut(v, "=")
	if !ok || id == "" || files == "" {
		return fmt.Errorf("expected IDENTIFIER=FILE[,FILE...], got %q", v)
	}
	l[id] = append(l[id], strings.Split(files, ",")...)
	return nil
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("autoindex", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
autoindex - builds the indexes a mapping pipeline needs from whatever
inputs are on hand, deriving the rest by recipe.

Usage:
  autoindex [options] -target INDEX [-target INDEX ...]

Options:
`)
		flagSet.PrintDefaults()
	}

	var targets stringList
	provided := provideList{}
	flagSet.Var(&targets, "target", "Index identifier to build. Repeatable.")
	flagSet.Var(provided, "provide", "Provide an input as IDENTIFIER=FILE[,FILE...]. Repeatable.")

	prefixFlag := flagSet.String("prefix", envOr("VG_OUTPUT_PREFIX", "index"), "Output filename prefix.")
	tmpDirFlag := flagSet.String("tmp-dir", os.Getenv("VG_TMPDIR"), "Directory for intermediate files.")
	keepFlag := flagSet.Bool("keep-intermediates", envBool("VG_KEEP_INTERMEDIATES"), "Keep intermediate indexes next to the end products.")
	inputDirFlag := flagSet.String("input-dir", "", "Directory scanned for providable input files by suffix.")
	paramsFlag := flagSet.String("params", "", "HCL file of indexing parameters.")
	dotFlag := flagSet.Bool("dot", false, "Print the recipe graph in DOT format instead of building.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if len(targets) == 0 && !*dotFlag {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		OutputPrefix:      *prefixFlag,
		TempDir:           *tmpDirFlag,
		KeepIntermediates: *keepFlag,
		Targets:           targets,
		Provided:          provided,
		InputDir:          *inputDirFlag,
		ParamsPath:        *paramsFlag,
		DotOnly:           *dotFlag,
		LogFormat:         logFormat,
		LogLevel:          logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.")
	return config, false, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

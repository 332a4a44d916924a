package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/reoring/formbind"
	"github.com/reoring/formbind/bindmap"
	"github.com/reoring/formbind/formdef"
	"github.com/reoring/formbind/i18n"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "validate":
		return validateCmd(args[1:], stdout, stderr)
	case "kinds":
		return kindsCmd(stdout)
	default:
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "formbind CLI\n\nUsage:\n  formbind validate -def form.yaml [-data data.json] [-lang en|ja] [-v]\n  formbind kinds\n\nNotes:\n  - validate exits 1 when some field is invalid.\n  - Without -data the definition's own data is validated.")
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "formbind").Logger()
}

func validateCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var defPath, dataPath, lang string
	var verbose bool
	fs.StringVar(&defPath, "def", "", "form definition (.yaml, .toml or .json)")
	fs.StringVar(&dataPath, "data", "", "JSON data to validate")
	fs.StringVar(&lang, "lang", "en", "message language (en or ja)")
	fs.BoolVar(&verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if defPath == "" {
		fs.Usage()
		return 2
	}
	i18n.SetLanguage(lang)
	logger := newLogger(stderr, verbose)

	def, err := formdef.LoadFile(defPath)
	if err != nil {
		logger.Error().Err(err).Msg("load form definition")
		return 2
	}
	m := def.NewModel(formbind.WithLogger(logger))
	if dataPath != "" {
		b, err := os.ReadFile(dataPath)
		if err != nil {
			logger.Error().Err(err).Msg("read data")
			return 2
		}
		var data any
		if err := json.Unmarshal(b, &data); err != nil {
			logger.Error().Err(err).Str("file", dataPath).Msg("decode data")
			return 2
		}
		m.SetData("", data)
	}

	logger.Debug().Str("form", def.Name).Int("fields", len(def.Fields)).Msg("validating")
	if err := m.ValidateAllFields(); err != nil {
		iss, _ := formbind.AsIssues(err)
		for _, it := range iss {
			fmt.Fprintf(stdout, "%s: %s (%s)\n", it.Path, it.Error(), it.Code)
		}
		return 1
	}
	fmt.Fprintf(stdout, "%s: ok\n", def.Name)
	return 0
}

func kindsCmd(stdout io.Writer) int {
	for _, k := range bindmap.Defaults().Kinds() {
		fmt.Fprintln(stdout, k)
	}
	return 0
}

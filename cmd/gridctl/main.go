// Command gridctl checks and converts table files offline.
//
//	gridctl validate [-delimiter c] [-no-header] [-clean] file.csv|file.json
//	gridctl convert -format json|csv [-o out] [-force] [-all] file
//	gridctl sample
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/JonMunkholm/gridkit/internal/core"
	"github.com/JonMunkholm/gridkit/internal/csvio"
)

// Exit codes.
const (
	exitOK      = 0
	exitInvalid = 1 // the file has problems
	exitFailure = 2 // usage or I/O error
)

var (
	errColor  = color.New(color.FgRed)
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitFailure
	}

	switch args[0] {
	case "validate":
		return validate(ctx, args[1:], stdout, stderr)
	case "convert":
		return convert(ctx, args[1:], stdout, stderr)
	case "sample":
		fmt.Fprint(stdout, csvio.SampleCSV())
		return exitOK
	case "-h", "-help", "--help", "help":
		usage(stdout)
		return exitOK
	}
	errColor.Fprintf(stderr, "unknown command %q\n", args[0])
	usage(stderr)
	return exitFailure
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  gridctl validate [-delimiter c] [-no-header] [-clean] file")
	fmt.Fprintln(w, "  gridctl convert -format json|csv [-o out] [-force] [-all] file")
	fmt.Fprintln(w, "  gridctl sample")
}

// parseFlags binds the options shared by validate and convert.
type parseFlags struct {
	delimiter string
	noHeader  bool
	clean     bool
}

func (p *parseFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&p.delimiter, "delimiter", ",", "field delimiter: , ; tab |")
	fs.BoolVar(&p.noHeader, "no-header", false, "first record is data; map columns positionally")
	fs.BoolVar(&p.clean, "clean", false, "strip formula prefixes, quotes and padding from cells")
}

// parseFile imports path as JSON when it ends in .json, else as CSV.
func (p *parseFlags) parseFile(ctx context.Context, path string) (csvio.ImportResult, error) {
	delim, err := csvio.ParseDelimiter(p.delimiter)
	if err != nil {
		return csvio.ImportResult{}, err
	}
	opts := csvio.DefaultOptions()
	opts.Delimiter = delim
	opts.HasHeader = !p.noHeader
	opts.Clean = p.clean

	f, err := os.Open(path)
	if err != nil {
		return csvio.ImportResult{}, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return csvio.ParseJSON(ctx, f, opts)
	}
	return csvio.ParseCSV(ctx, f, opts)
}

func printProblems(w io.Writer, problems []core.ImportError) {
	for _, p := range problems {
		errColor.Fprintf(w, "row %d, %s: %s\n", p.Row, p.Field, p.Message)
	}
}

func validate(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var pf parseFlags
	pf.register(fs)
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}
	if fs.NArg() != 1 {
		errColor.Fprintln(stderr, "validate: expected exactly one file")
		return exitFailure
	}

	res, err := pf.parseFile(ctx, fs.Arg(0))
	if err != nil {
		errColor.Fprintf(stderr, "validate: %v\n", err)
		return exitFailure
	}

	printProblems(stdout, res.Errors)
	okColor.Fprintf(stdout, "%d of %d row(s) valid\n", res.ValidCount(), len(res.Rows))
	if len(res.Errors) > 0 {
		return exitInvalid
	}
	return exitOK
}

func convert(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		pf     parseFlags
		format = fs.String("format", "json", "output format: csv or json")
		out    = fs.String("o", "", "output file (default stdout)")
		force  = fs.Bool("force", false, "convert even when rows have problems")
		all    = fs.Bool("all", false, "include hidden columns")
	)
	pf.register(fs)
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}
	if fs.NArg() != 1 {
		errColor.Fprintln(stderr, "convert: expected exactly one file")
		return exitFailure
	}

	f, err := csvio.ParseFormat(*format)
	if err != nil {
		errColor.Fprintf(stderr, "convert: %v\n", err)
		return exitFailure
	}

	res, err := pf.parseFile(ctx, fs.Arg(0))
	if err != nil {
		errColor.Fprintf(stderr, "convert: %v\n", err)
		return exitFailure
	}

	table, err := tableFor(res)
	if err != nil {
		errColor.Fprintf(stderr, "convert: %v\n", err)
		return exitFailure
	}
	if err := table.ImportRows(res.Rows, res.Errors, *force); err != nil {
		printProblems(stderr, res.Errors)
		if errors.Is(err, core.ErrImportRejected) {
			warnColor.Fprintln(stderr, "convert: rerun with -force to convert anyway")
			return exitInvalid
		}
		errColor.Fprintf(stderr, "convert: %v\n", err)
		return exitFailure
	}
	if len(res.Errors) > 0 {
		warnColor.Fprintf(stderr, "converted with %d problem(s)\n", len(res.Errors))
	}

	w := stdout
	if *out != "" {
		file, err := os.Create(*out)
		if err != nil {
			errColor.Fprintf(stderr, "convert: %v\n", err)
			return exitFailure
		}
		defer file.Close()
		w = file
	}

	opts := csvio.DefaultExportOptions()
	opts.VisibleOnly = !*all
	if err := csvio.Write(w, f, table.Rows(), table.Columns(), opts); err != nil {
		errColor.Fprintf(stderr, "convert: %v\n", err)
		return exitFailure
	}
	if f == csvio.FormatJSON {
		fmt.Fprintln(w)
	}
	return exitOK
}

// tableFor builds a table with the default columns plus one string column
// for every other field found in the file.
func tableFor(res csvio.ImportResult) (*core.Table, error) {
	table, err := core.NewTableWith(core.Snapshot{Columns: core.DefaultColumns()})
	if err != nil {
		return nil, err
	}
	for _, field := range res.Fields {
		if _, ok := table.Column(field); ok || !core.ValidFieldName(field) {
			continue
		}
		if _, err := table.AddColumn(core.NewColumn(field, field, core.TypeString)); err != nil {
			return nil, err
		}
	}
	return table, nil
}

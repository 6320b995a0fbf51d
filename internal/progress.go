package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// UIManager handles console output for the CLI (progress, verbose output, status lines)
type UIManager interface {
	NewProgressBar(total int, description string) ProgressBar
	NewSpinner(description string) ProgressBar

	Verbose(format string, args ...any)
	Printf(format string, args ...any)
	Println(args ...any)
}

// ProgressBar abstracts progress bar and spinner operations
type ProgressBar interface {
	Set(current int)
	Advance()
	Describe(description string)
	Finish()
}

// StandardUIManager writes to the terminal; quiet mode keeps only errors
type StandardUIManager struct {
	verbose bool
	quiet   bool
	out     io.Writer
}

// NewUIManager returns a UI manager writing status to stderr
func NewUIManager(verbose, quiet bool) UIManager {
	return &StandardUIManager{
		verbose: verbose,
		quiet:   quiet,
		out:     os.Stderr,
	}
}

// NewSilentUI returns a UI manager that prints nothing, for the API and MCP servers
func NewSilentUI() UIManager {
	return &StandardUIManager{quiet: true, out: io.Discard}
}

func (ui *StandardUIManager) NewProgressBar(total int, description string) ProgressBar {
	if ui.quiet {
		return &silentProgressBar{}
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(ui.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	return &visibleProgressBar{bar: bar}
}

func (ui *StandardUIManager) NewSpinner(description string) ProgressBar {
	if ui.quiet {
		return &silentProgressBar{}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(ui.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &visibleProgressBar{bar: bar}
}

func (ui *StandardUIManager) Verbose(format string, args ...any) {
	if ui.verbose {
		fmt.Fprintf(ui.out, format, args...)
	}
}

func (ui *StandardUIManager) Printf(format string, args ...any) {
	if !ui.quiet {
		fmt.Fprintf(ui.out, format, args...)
	}
}

func (ui *StandardUIManager) Println(args ...any) {
	if !ui.quiet {
		fmt.Fprintln(ui.out, args...)
	}
}

type visibleProgressBar struct {
	bar *progressbar.ProgressBar
}

func (v *visibleProgressBar) Set(current int) {
	_ = v.bar.Set(current)
}

func (v *visibleProgressBar) Advance() {
	_ = v.bar.Add(1)
}

func (v *visibleProgressBar) Describe(description string) {
	v.bar.Describe(description)
}

func (v *visibleProgressBar) Finish() {
	_ = v.bar.Finish()
}

type silentProgressBar struct{}

func (silentProgressBar) Set(int)         {}
func (silentProgressBar) Advance()        {}
func (silentProgressBar) Describe(string) {}
func (silentProgressBar) Finish()         {}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat() error {
	switch outputFormat {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", outputFormat)
	}
}

// format returns the selected output format; --json wins over --format.
func format() string {
	if outputJSON {
		return formatJSON
	}
	return outputFormat
}

// render writes v as JSON or YAML, or calls text for the default format.
func render(cmd *cobra.Command, v any, text func(p *printer)) error {
	switch format() {
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		cmd.Println(string(data))
		return nil
	case formatYAML:
		data, err := toYAML(v)
		if err != nil {
			return err
		}
		cmd.Print(string(data))
		return nil
	default:
		text(newPrinter(cmd))
		return nil
	}
}

// toYAML encodes v through its JSON form so field names match the API.
func toYAML(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal output: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("failed to convert output: %w", err)
	}
	data, err := yaml.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	return data, nil
}

// printer writes text output, styled when stdout is a terminal.
type printer struct {
	cmd    *cobra.Command
	styled bool

	heading lipgloss.Style
	muted   lipgloss.Style
	tool    lipgloss.Style
	failure lipgloss.Style
}

func newPrinter(cmd *cobra.Command) *printer {
	return &printer{
		cmd:     cmd,
		styled:  isTerminal(cmd.OutOrStdout()),
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89B4FA")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		tool:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#F9E2AF")),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p *printer) Heading(text string)                { p.cmd.Println(p.style(p.heading, text)) }
func (p *printer) Muted(format string, args ...any)   { p.cmd.Println(p.style(p.muted, fmt.Sprintf(format, args...))) }
func (p *printer) Tool(format string, args ...any)    { p.cmd.Println(p.style(p.tool, fmt.Sprintf(format, args...))) }
func (p *printer) Failure(format string, args ...any) { p.cmd.Println(p.style(p.failure, fmt.Sprintf(format, args...))) }
func (p *printer) Printf(format string, args ...any)  { p.cmd.Printf(format, args...) }
func (p *printer) Println(args ...any)                { p.cmd.Println(args...) }

package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/satishbabariya/neodb/query/mapper"
	"github.com/satishbabariya/neodb/query/sqlgen"
)

var (
	// Colors
	PrimaryColor   = lipgloss.Color("#00D9FF")
	SuccessColor   = lipgloss.Color("#00FF88")
	WarningColor   = lipgloss.Color("#FFB800")
	ErrorColor     = lipgloss.Color("#FF4444")
	SecondaryColor = lipgloss.Color("#6C757D")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	SQLStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SecondaryColor).
			Padding(0, 1)
)

// Out is where every printer writes
var Out io.Writer = os.Stdout

// PrintHeader prints a title with a dimmed subtitle
func PrintHeader(title, subtitle string) {
	fmt.Fprintln(Out, lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render(title),
		SecondaryStyle.Render(subtitle),
	))
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	fmt.Fprintln(Out, SuccessStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

// PrintError prints an error message on stderr
func PrintError(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	fmt.Fprintln(Out, WarningStyle.Render("⚠ "+fmt.Sprintf(format, args...)))
}

// PrintSQL prints a statement in a box
func PrintSQL(sql string) {
	fmt.Fprintln(Out, SQLStyle.Render(sql))
}

// PrintKV prints aligned key/value lines, keys in cyan
func PrintKV(pairs [][2]string) {
	width := 0
	for _, p := range pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}

	key := color.New(color.FgCyan, color.Bold)
	for _, p := range pairs {
		fmt.Fprintf(Out, "%s  %s\n", key.Sprintf("%-*s", width, p[0]), p[1])
	}
}

// PrintBinds prints bound values with their types
func PrintBinds(values []interface{}, types []sqlgen.ParamType) {
	if len(values) == 0 {
		fmt.Fprintln(Out, SecondaryStyle.Render("no binds"))
		return
	}

	rows := make([][]string, len(values))
	for i, v := range values {
		t := ""
		if i < len(types) {
			t = types[i].String()
		}
		rows[i] = []string{fmt.Sprint(i + 1), t, fmt.Sprint(v)}
	}
	PrintTable([]string{"#", "type", "value"}, rows)
}

// PrintTable prints a table using pterm
func PrintTable(headers []string, rows [][]string) {
	data := pterm.TableData{headers}
	data = append(data, rows...)
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(Out).Render()
}

// PrintResult prints fetched rows as a table in column order
func PrintResult(result *mapper.Result) {
	if result == nil || len(result.Rows) == 0 {
		fmt.Fprintln(Out, SecondaryStyle.Render("(no rows)"))
		return
	}
	PrintTable(resultColumns(result), ResultRows(result))
}

// ResultRows renders each row's cells as strings in column order, NULL
// for nil values
func ResultRows(result *mapper.Result) [][]string {
	columns := resultColumns(result)
	out := make([][]string, len(result.Rows))
	for i, row := range result.Rows {
		cells := make([]string, len(columns))
		for j, col := range columns {
			if row[col] == nil {
				cells[j] = "NULL"
				continue
			}
			cells[j] = fmt.Sprint(row[col])
		}
		out[i] = cells
	}
	return out
}

func resultColumns(result *mapper.Result) []string {
	if len(result.Columns) > 0 {
		return result.Columns
	}
	var columns []string
	for col := range result.Rows[0] {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}

// MarkdownTable renders a result as a markdown table
func MarkdownTable(result *mapper.Result) string {
	if result == nil || len(result.Rows) == 0 {
		return "_no rows_\n"
	}

	columns := resultColumns(result)
	var b strings.Builder
	b.WriteString("| " + strings.Join(columns, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(columns)) + "\n")
	for _, cells := range ResultRows(result) {
		for i, c := range cells {
			cells[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

// PrintMarkdown renders markdown content
func PrintMarkdown(content string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return err
	}

	out, err := r.Render(content)
	if err != nil {
		return err
	}

	fmt.Fprint(Out, out)
	return nil
}

// Spinner starts a spinner with message
func Spinner(message string) *pterm.SpinnerPrinter {
	spinner, err := pterm.DefaultSpinner.WithWriter(Out).Start(message)
	if err != nil {
		return nil
	}
	return spinner
}

// StopSpinner stops s, which may be nil
func StopSpinner(s *pterm.SpinnerPrinter) {
	if s != nil {
		_ = s.Stop()
	}
}

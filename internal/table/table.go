// Package table prints rows of text with aligned columns. It backs
// --format=table.
package table

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"reflect"
	"sort"
	"strings"

	"golang.org/x/term"

	"github.com/ikmich/package-deps-admin/internal/util"
)

const columnGap = "   "

// Table has a header row and any number of rows of the same width.
type Table struct {
	headers []string
	rows    [][]string
}

// New creates an empty table. Headers must be unique.
func New(headers ...string) Table {
	seen := map[string]bool{}
	for _, header := range headers {
		if seen[header] {
			util.Panicf("duplicate table header: %s", header)
		}
		seen[header] = true
	}
	return Table{headers: headers}
}

// FromStructs builds a table from a slice of structs. Each field names
// its header in a "pretty" tag and must be a string or a []string;
// slices are joined with commas. Columns that are empty in every row
// are left out.
func FromStructs(structs interface{}) Table {
	sv := reflect.ValueOf(structs)
	st := sv.Type().Elem()

	var columns []int
	var headers []string
	for i := 0; i < st.NumField(); i++ {
		for j := 0; j < sv.Len(); j++ {
			if sv.Index(j).Field(i).Len() > 0 {
				columns = append(columns, i)
				headers = append(headers, st.Field(i).Tag.Get("pretty"))
				break
			}
		}
	}

	t := New(headers...)
	for j := 0; j < sv.Len(); j++ {
		row := make([]string, 0, len(columns))
		for _, i := range columns {
			row = append(row, cell(sv.Index(j).Field(i)))
		}
		t.AddRow(row...)
	}
	return t
}

func cell(field reflect.Value) string {
	if field.Kind() != reflect.Slice {
		return field.String()
	}
	parts := make([]string, field.Len())
	for k := range parts {
		parts[k] = field.Index(k).String()
	}
	return strings.Join(parts, ", ")
}

// AddRow appends a row. It panics if the row width does not match the
// headers.
func (t *Table) AddRow(row ...string) {
	if len(row) != len(t.headers) {
		util.Panicf("wrong number of columns in table row (%d != %d)", len(row), len(t.headers))
	}
	t.rows = append(t.rows, row)
}

// SortBy orders rows by the column with the given header.
func (t *Table) SortBy(header string) {
	index := -1
	for i, h := range t.headers {
		if h == header {
			index = i
			break
		}
	}
	if index < 0 {
		util.Panicf("no such header: %s", header)
	}
	sort.SliceStable(t.rows, func(i, j int) bool {
		return t.rows[i][index] < t.rows[j][index]
	})
}

// Render returns the aligned text of the table and its width in runes.
func (t *Table) Render() (string, int) {
	widths := make([]int, len(t.headers))
	for j, header := range t.headers {
		widths[j] = len([]rune(header))
	}
	for _, row := range t.rows {
		for j, value := range row {
			if n := len([]rune(value)); n > widths[j] {
				widths[j] = n
			}
		}
	}

	line := func(values []string) string {
		fields := make([]string, len(values))
		for j, value := range values {
			fields[j] = value + strings.Repeat(" ", widths[j]-len([]rune(value)))
		}
		return strings.TrimRight(strings.Join(fields, columnGap), " ")
	}

	rules := make([]string, len(widths))
	for j, w := range widths {
		rules[j] = strings.Repeat("-", w)
	}
	ruleLine := strings.Join(rules, columnGap)

	var b strings.Builder
	b.WriteString(line(t.headers) + "\n")
	b.WriteString(ruleLine + "\n")
	for _, row := range t.rows {
		b.WriteString(line(row) + "\n")
	}
	return b.String(), len([]rune(ruleLine))
}

// Print writes the table to stdout. Tables wider than the terminal go
// through "less -S" when it is installed.
func (t *Table) Print() {
	text, width := t.Render()
	printOrPage(text, width)
}

func printOrPage(text string, width int) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		fmt.Print(text)
		return
	}
	termWidth, _, err := term.GetSize(fd)
	if err != nil || width < termWidth {
		fmt.Print(text)
		return
	}

	less, err := exec.LookPath("less")
	if err != nil {
		fmt.Print(text)
		return
	}
	util.ProgressMsg("less -S")

	cmd := exec.Command(less, "-S")
	// Docker images often lack LANG, which makes less escape UTF-8.
	cmd.Env = append(os.Environ(), "LESSCHARSET=utf-8")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		util.Die("connecting pipe to pager stdin: %s", err)
	}
	if err := cmd.Start(); err != nil {
		util.Die("running pager: %s", err)
	}
	if _, err := io.WriteString(stdin, text); err != nil {
		util.Die("writing to pager: %s", err)
	}
	stdin.Close()
	if err := cmd.Wait(); err != nil {
		util.Die("running pager: %s", err)
	}
}

package format

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/vedsharma/reqpad/internal/model"
)

// out is where every printer writes. Tests swap it for a buffer.
var out io.Writer = color.Output

// SetNoColor disables (or re-enables) colored output globally
func SetNoColor(noColor bool) {
	color.NoColor = noColor
}

// sanitizeOutput removes or escapes potentially dangerous control characters
// that could manipulate terminal display or execute commands
func sanitizeOutput(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			result.WriteRune(r)
		case r == '\x1b':
			// ESC would start an ANSI sequence
			result.WriteString("\\x1b")
		case unicode.IsControl(r) && r < 0x20:
			fmt.Fprintf(&result, "\\x%02x", r)
		case r == 0x7F:
			result.WriteString("\\x7f")
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

var (
	successColor   = color.New(color.FgGreen, color.Bold)
	redirectColor  = color.New(color.FgYellow, color.Bold)
	clientErrColor = color.New(color.FgRed, color.Bold)
	serverErrColor = color.New(color.FgRed, color.Bold, color.BgWhite)
	warnColor      = color.New(color.FgYellow)
	headerKeyColor = color.New(color.FgCyan)
	methodColor    = color.New(color.FgMagenta, color.Bold)
	urlColor       = color.New(color.FgBlue)
	dimColor       = color.New(color.Faint)
)

// PrintResponse prints a formatted HTTP response
func PrintResponse(resp *model.Response, showHeaders bool) {
	printStatusLine(resp)

	dimColor.Fprintf(out, "  Time: %dms", resp.Duration.Milliseconds())
	if resp.ContentLength != nil {
		dimColor.Fprintf(out, "  Size: %s", humanSize(*resp.ContentLength))
	}
	fmt.Fprint(out, "\n\n")

	if showHeaders {
		printHeaders(resp.Headers)
	}

	printBody(resp.Body)
}

// PrintFiltered prints only the part of a JSON response body selected by a
// gjson path such as "data.items.#.id"
func PrintFiltered(resp *model.Response, path string) error {
	if !gjson.Valid(resp.Body) {
		return fmt.Errorf("response body is not JSON, cannot apply filter %q", path)
	}
	result := gjson.Get(resp.Body, path)
	if !result.Exists() {
		return fmt.Errorf("filter %q matched nothing", path)
	}

	printStatusLine(resp)
	if result.IsObject() || result.IsArray() {
		fmt.Fprintln(out, sanitizeOutput(prettyJSON(result.Raw)))
	} else {
		fmt.Fprintln(out, sanitizeOutput(result.String()))
	}
	return nil
}

func printStatusLine(resp *model.Response) {
	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d", resp.StatusCode)
	}
	getStatusColor(resp.StatusCode).Fprintf(out, "%s\n", sanitizeOutput(status))
}

func getStatusColor(code int) *color.Color {
	switch {
	case code >= 200 && code < 300:
		return successColor
	case code >= 300 && code < 400:
		return redirectColor
	case code >= 400 && code < 500:
		return clientErrColor
	default:
		return serverErrColor
	}
}

func printHeaders(headers []model.Header) {
	if len(headers) == 0 {
		return
	}

	fmt.Fprintln(out, "Headers:")
	for _, h := range headers {
		headerKeyColor.Fprintf(out, "  %s: ", sanitizeOutput(h.Key))
		fmt.Fprintln(out, sanitizeOutput(h.Value))
	}
	fmt.Fprintln(out)
}

func printBody(body string) {
	if body == "" {
		dimColor.Fprintln(out, "(empty body)")
		return
	}

	fmt.Fprintln(out, sanitizeOutput(prettyJSON(body)))
}

// prettyJSON indents s when it is valid JSON and returns it unchanged otherwise
func prettyJSON(s string) string {
	if !gjson.Valid(s) {
		return s
	}
	return strings.TrimRight(string(pretty.Pretty([]byte(s))), "\n")
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// PrintSpec prints a stored request in full
func PrintSpec(spec *model.Http) {
	headerKeyColor.Fprintf(out, "%s\n", sanitizeOutput(spec.DisplayName()))
	fmt.Fprintln(out, strings.Repeat("-", 40))
	methodColor.Fprintf(out, "%s ", spec.Method)
	urlColor.Fprintln(out, sanitizeOutput(spec.URL))
	dimColor.Fprintf(out, "ID: %s\n", spec.ID())
	dimColor.Fprintf(out, "Params: %s\n\n", spec.ParamType)

	printHeaders(spec.Headers)

	switch spec.ParamType {
	case model.FormData, model.Query:
		if len(spec.FormParams) == 0 {
			return
		}
		fmt.Fprintln(out, "Params:")
		for _, p := range spec.FormParams {
			headerKeyColor.Fprintf(out, "  %s", sanitizeOutput(p.Key))
			if p.Kind == model.FormFile {
				path := ""
				if p.Path != nil {
					path = *p.Path
				}
				fmt.Fprintf(out, " = @%s\n", sanitizeOutput(path))
			} else {
				fmt.Fprintf(out, " = %s\n", sanitizeOutput(p.Value))
			}
		}
	case model.Json, model.Other:
		if spec.TextParam == "" {
			return
		}
		fmt.Fprintln(out, "Body:")
		fmt.Fprintln(out, sanitizeOutput(prettyJSON(spec.TextParam)))
	}
}

// PrintSpecList prints the request list, one line per request
func PrintSpecList(specs []*model.Http) {
	if len(specs) == 0 {
		dimColor.Fprintln(out, "No saved requests")
		return
	}

	for i, spec := range specs {
		dimColor.Fprintf(out, "[%d] ", i+1)
		fmt.Fprintf(out, "%-16s ", sanitizeOutput(spec.DisplayName()))
		methodColor.Fprintf(out, "%-7s ", spec.Method)
		urlColor.Fprint(out, sanitizeOutput(truncate(spec.URL, 60)))
		dimColor.Fprintf(out, "  %s\n", shortID(spec.ID()))
	}
}

// PrintHistoryList prints history entries in a compact format
func PrintHistoryList(entries []model.HistoryEntry) {
	if len(entries) == 0 {
		dimColor.Fprintln(out, "No requests in history")
		return
	}

	for i, entry := range entries {
		dimColor.Fprintf(out, "[%d] ", i+1)
		methodColor.Fprintf(out, "%-7s ", entry.Method)
		urlColor.Fprintf(out, "%-60s ", sanitizeOutput(truncate(entry.URL, 60)))

		if entry.Response != nil {
			getStatusColor(entry.Response.StatusCode).Fprintf(out, "%d ", entry.Response.StatusCode)
			dimColor.Fprintf(out, "(%dms)", entry.Response.Duration.Milliseconds())
		} else if entry.Error != "" {
			clientErrColor.Fprint(out, "failed")
		}
		fmt.Fprintln(out)
	}
}

// PrintHistoryEntry prints a recorded send with its response or error
func PrintHistoryEntry(entry *model.HistoryEntry) {
	methodColor.Fprintf(out, "%s ", entry.Method)
	urlColor.Fprintln(out, sanitizeOutput(entry.URL))
	dimColor.Fprintf(out, "ID: %s\n", entry.ID)
	dimColor.Fprintf(out, "Time: %s\n\n", entry.Timestamp.Format("2006-01-02 15:04:05"))

	if entry.Response != nil {
		fmt.Fprintln(out, "Response:")
		fmt.Fprintln(out, strings.Repeat("-", 40))
		PrintResponse(entry.Response, true)
		return
	}
	if entry.Error != "" {
		PrintError(entry.Error)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// PrintHeading separates the output of several requests
func PrintHeading(title string) {
	fmt.Fprintln(out)
	headerKeyColor.Fprintf(out, "== %s ==\n", sanitizeOutput(title))
}

// PrintSuccess prints a success message
func PrintSuccess(msg string) {
	successColor.Fprintf(out, "✓ %s\n", msg)
}

// PrintError prints an error message
func PrintError(msg string) {
	clientErrColor.Fprintf(out, "✗ %s\n", sanitizeOutput(msg))
}

// PrintWarning prints a warning message
func PrintWarning(msg string) {
	warnColor.Fprintf(out, "WARNING: %s\n", sanitizeOutput(msg))
}

package parvec

import (
    "fmt";
    "strings";
    "strconv";

    "github.com/parvec/parvec/math";
)

const summaryWindow = 10

// FormatSummary renders the fixed windowed view of a gathered vector: the
// title line, then the first ten and the last ten elements with six decimal
// digits. Vectors shorter than one window collapse to a single line
// covering the whole range.
func FormatSummary(title string, vec math.Vector) string {
    n := len(vec)

    var summary strings.Builder
    fmt.Fprintf(&summary, "%s\n", title)
    if n < summaryWindow {
        summary.WriteString(formatWindow(0, n, vec))
        return summary.String()
    }

    summary.WriteString(formatWindow(0, summaryWindow, vec[:summaryWindow]))
    summary.WriteString(formatWindow(n - summaryWindow, n, vec[n - summaryWindow:]))
    return summary.String()
}

func formatWindow(lo, hi int, window math.Vector) string {
    parts := make([]string, len(window))
    for i, value := range window {
        parts[i] = strconv.FormatFloat(value, 'f', 6, 64)
    }
    return fmt.Sprintf("%d - %d: [%s]\n", lo, hi, strings.Join(parts, ","))
}

// slugify turns a summary title into a file name: "Vector x by scalar"
// becomes "vector_x_by_scalar".
func slugify(title string) string {
    return strings.ReplaceAll(strings.ToLower(title), " ", "_")
}

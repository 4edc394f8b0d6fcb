package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/ricardonunez-io/logsleuth/internal/report"
	"gopkg.in/yaml.v3"
)

const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

var Formats = []string{FormatHuman, FormatJSON, FormatYAML}

// ValidFormat reports whether format is one of Formats.
func ValidFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Display writes the report in the requested format. Unknown formats fall back
// to the human layout.
func Display(w io.Writer, r report.Report, format string) error {
	switch format {
	case FormatJSON:
		return displayJSON(w, r)
	case FormatYAML:
		return displayYAML(w, r)
	case FormatHuman:
		fallthrough
	default:
		displayHuman(w, r)
	}
	return nil
}

func displayJSON(w io.Writer, r report.Report) error {
	output, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func displayYAML(w io.Writer, r report.Report) error {
	output, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(output))
	return err
}

func displayHuman(w io.Writer, r report.Report) {
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(w)

	white.Fprintf(w, "🔎 EVENT: %s\n", r.EventID)
	if r.Degraded() {
		yellow.Fprintln(w, "   (degraded report, the analysis did not complete normally)")
	}
	fmt.Fprintln(w)

	red.Fprintln(w, "💥 ERROR:")
	fmt.Fprintf(w, "   Code: %s\n", color.RedString(r.ErrorCode))
	fmt.Fprintln(w, wrapText(r.ErrorSummary, 80, "   "))
	fmt.Fprintln(w)

	riskColor(r.RiskLevel).Fprintf(w, "%s RISK: %s\n\n", riskIcon(r.RiskLevel), strings.ToUpper(string(r.RiskLevel)))

	cyan.Fprintln(w, "🖥️  SERVER STATUS:")
	fmt.Fprintf(w, "   %s\n\n", r.ServerStatus)

	if r.AffectedModule != "" || r.UserInfo != "" {
		cyan.Fprintln(w, "📦 CONTEXT:")
		if r.AffectedModule != "" {
			fmt.Fprintf(w, "   Module: %s\n", r.AffectedModule)
		}
		if r.UserInfo != "" {
			fmt.Fprintf(w, "   User: %s\n", r.UserInfo)
		}
		fmt.Fprintln(w)
	}

	if r.RawErrorLogs != "" {
		yellow.Fprintln(w, "📄 ERROR LOGS:")
		for _, line := range strings.Split(r.RawErrorLogs, "\n") {
			fmt.Fprintf(w, "   %s\n", color.YellowString(line))
		}
		fmt.Fprintln(w)
	}

	green.Fprintln(w, "🚀 RECOMMENDATION:")
	fmt.Fprintln(w, color.GreenString(wrapText(r.Recommendation, 80, "   ")))
	fmt.Fprintln(w)

	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintf(w, "💡 %s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func riskColor(level report.RiskLevel) *color.Color {
	switch level {
	case report.RiskCritical:
		return color.New(color.FgRed, color.Bold)
	case report.RiskHigh:
		return color.New(color.FgRed)
	case report.RiskMedium:
		return color.New(color.FgYellow)
	case report.RiskLow:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgWhite)
	}
}

func riskIcon(level report.RiskLevel) string {
	switch level {
	case report.RiskCritical:
		return "🔴"
	case report.RiskHigh:
		return "🟠"
	case report.RiskMedium:
		return "🟡"
	case report.RiskLow:
		return "🟢"
	default:
		return "⚪"
	}
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		currentLine := indent
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				result.WriteString(currentLine + "\n")
				currentLine = indent + word
			} else if currentLine == indent {
				currentLine += word
			} else {
				currentLine += " " + word
			}
		}

		if currentLine != indent {
			result.WriteString(currentLine + "\n")
		}
	}

	return strings.TrimSuffix(result.String(), "\n")
}

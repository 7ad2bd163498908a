package render

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/xterio/xdeploy/internal/usecase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	titleCaser = cases.Title(language.English)

	boldColor  = color.New(color.Bold)
	cyanColor  = color.New(color.FgCyan)
	greenColor = color.New(color.FgGreen)
	redColor   = color.New(color.FgRed)
	yellow     = color.New(color.FgYellow)
	faintColor = color.New(color.FgHiBlack)
)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return yellow.Sprintf("⚠️  %s", message)
}

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	if len(message) > 0 {
		message = strings.ToUpper(message[:1]) + message[1:]
	}
	return redColor.Sprintf("❌ %s", message)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return greenColor.Sprintf("✅ %s", message)
}

// Title turns kebab-case identifiers into words: "transfer-validator" -> "Transfer Validator"
func Title(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "-", " "))
}

func shortHash(h common.Hash) string {
	hex := h.Hex()
	return hex[:10] + "…" + hex[len(hex)-8:]
}

func verificationLine(outcome *usecase.VerifyOutcome) string {
	if outcome == nil {
		return faintColor.Sprint("-")
	}
	switch outcome.Status {
	case usecase.VerifyStatusVerified:
		line := greenColor.Sprint("✓ verified")
		if outcome.Result != nil && outcome.Result.URL != "" {
			line += " " + faintColor.Sprint(outcome.Result.URL)
		}
		return line
	case usecase.VerifyStatusFailed:
		return redColor.Sprint("✗ failed")
	default:
		return faintColor.Sprint("⊘ skipped")
	}
}

// newTable returns a borderless table in the style used by every listing
func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Format.Header = text.FormatUpper
	t.Style().Box = table.BoxStyle{
		PaddingRight:     "   ",
		MiddleHorizontal: "─",
	}
	return t
}

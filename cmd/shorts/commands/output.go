package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	headerColor = color.New(color.FgGreen, color.Bold)
	warnColor   = color.New(color.FgYellow, color.Bold)
	errorColor  = color.New(color.FgRed, color.Bold)
	labelColor  = color.New(color.FgCyan)
)

func printHeader(title string) {
	headerColor.Fprintf(os.Stdout, "=== %s ===\n", title)
}

func printWarn(title string) {
	warnColor.Fprintf(os.Stdout, "=== %s ===\n", title)
}

func printField(label string, value any) {
	if s, ok := value.(string); ok && s == "" {
		return
	}
	labelColor.Fprintf(os.Stdout, "%-10s", label+":")
	fmt.Fprintf(os.Stdout, " %v\n", value)
}

func printError(err error) {
	errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
}

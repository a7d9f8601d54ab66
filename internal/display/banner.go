package display

import (
	"fmt"
	"os"

	"github.com/backmassage/rawconv/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner() {
	if term.Magenta != "" {
		fmt.Fprint(os.Stdout, term.Magenta)
	}
	fmt.Fprint(os.Stdout, ` ____                 ____
|  _ \ __ ___      __/ ___|___  _ ____   __
| |_) / _`+"`"+` \ \ /\ / / |   / _ \| '_ \ \ / /
|  _ < (_| |\ V  V /| |__| (_) | | | \ V /
|_| \_\__,_| \_/\_/  \____\___/|_| |_|\_/
`)
	if term.Magenta != "" {
		fmt.Fprintln(os.Stdout, term.NC)
	}
}

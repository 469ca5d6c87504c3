package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// ErrUnsupportedShell is returned when an unsupported shell is specified.
var ErrUnsupportedShell = errors.New("unsupported shell")

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [shell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for spanlight.

Examples:
  spanlight completion bash                  # Generate bash completion
  spanlight completion zsh                   # Generate zsh completion
  spanlight completion fish                  # Generate fish completion`,
		Args: cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return runCompletion(os.Stdout, cobraCmd.Root(), args[0])
		},
	}
}

func runCompletion(writer io.Writer, root *cobra.Command, shell string) error {
	var err error

	switch shell {
	case "bash":
		err = root.GenBashCompletion(writer)
	case "zsh":
		err = root.GenZshCompletion(writer)
	case "fish":
		err = root.GenFishCompletion(writer, true)
	case "powershell":
		err = root.GenPowerShellCompletion(writer)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedShell, shell)
	}

	if err != nil {
		return fmt.Errorf("failed to generate %s completion: %w", shell, err)
	}

	return nil
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Opens a prompt loop. Each question is answered against the currently
selected documents; the conversation history feeds into later prompts.
Type 'exit' or press Ctrl-D to leave.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if documentService == nil || chatService == nil {
		return errors.New("services not configured")
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("chat requires an interactive terminal; use 'docchat ask' for scripted queries")
	}

	ctx := context.Background()

	selected, err := selectedDocumentIDs(ctx)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		cmd.Println("No documents selected; answers will not be grounded.")
		cmd.Println("Use 'docchat select <doc-id>' to add context.")
	} else {
		cmd.Printf("Chatting with %d selected document(s). Type 'exit' to leave.\n", len(selected))
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cmd.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			break
		}

		// Re-read the selection so mid-session changes take effect.
		selected, err = selectedDocumentIDs(ctx)
		if err != nil {
			return err
		}

		response, sources, err := chatService.Ask(ctx, query, selected)
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			continue
		}

		cmd.Printf("\n%s\n", response)
		if len(sources) > 0 {
			labels := make([]string, 0, len(sources))
			for _, sc := range sources {
				labels = append(labels, sc.Chunk.Source)
			}
			cmd.Printf("\n(sources: %s)\n", strings.Join(dedupe(labels), ", "))
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	cmd.Println("Bye.")
	return nil
}

// dedupe removes duplicates preserving first-seen order.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	return out
}

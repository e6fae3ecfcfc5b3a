package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against the selected documents",
	Long: `Embeds the question, retrieves the most relevant chunks from the
selected documents, and generates a grounded answer. With no documents
selected the question goes to the model unaugmented.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

// showSources prints the cited chunks after the answer.
var showSources bool

func init() {
	askCmd.Flags().BoolVarP(&showSources, "sources", "s", false, "Show the retrieved source chunks")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if documentService == nil || chatService == nil {
		return errors.New("services not configured")
	}

	ctx := context.Background()
	query := strings.Join(args, " ")

	selected, err := selectedDocumentIDs(ctx)
	if err != nil {
		return err
	}

	response, sources, err := chatService.Ask(ctx, query, selected)
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	cmd.Println(response)

	if showSources && len(sources) > 0 {
		cmd.Println("\nSources:")
		for _, sc := range sources {
			label := sc.Chunk.Source
			if sc.Chunk.SectionPath != "" {
				label += " > " + sc.Chunk.SectionPath
			}
			cmd.Printf("  [%.2f] %s\n", sc.Score, label)
		}
	}
	return nil
}

// selectedDocumentIDs returns the IDs of processed, selected documents.
func selectedDocumentIDs(ctx context.Context) ([]string, error) {
	docs, err := documentService.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	var ids []string
	for i := range docs {
		if docs[i].Selected && docs[i].Processed {
			ids = append(ids, docs[i].ID)
		}
	}
	return ids, nil
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

var addCmd = &cobra.Command{
	Use:   "add [path]",
	Short: "Ingest a document from disk",
	Long:  `Reads the file, stores it, and prepares it for processing.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List known documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var processCmd = &cobra.Command{
	Use:   "process [doc-id]",
	Short: "Chunk and embed a document",
	Long:  `Splits the document into chunks, generates embeddings, and stores them for retrieval.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

var selectCmd = &cobra.Command{
	Use:   "select [doc-id]",
	Short: "Include a document in retrieval",
	Args:  cobra.ExactArgs(1),
	RunE:  runSelect,
}

var deselectCmd = &cobra.Command{
	Use:   "deselect [doc-id]",
	Short: "Exclude a document from retrieval",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeselect,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Remove a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

// processOnAdd makes add run processing immediately.
var processOnAdd bool

func init() {
	addCmd.Flags().BoolVarP(&processOnAdd, "process", "p", false, "Process the document immediately after adding")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(deselectCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := context.Background()
	doc, err := documentService.AddDocument(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}

	cmd.Printf("Added %s (%s)\n", doc.Name, doc.ID)

	if processOnAdd {
		doc, err = documentService.ProcessDocument(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("failed to process document: %w", err)
		}
		cmd.Printf("Processed %s\n", doc.Name)
	}
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.ListDocuments(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents. Use 'docchat add <path>' to ingest one.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Name: %s (%s, %d bytes)\n", docs[i].Name, docs[i].Type, docs[i].SizeBytes)
		cmd.Printf("    Status: %s\n", statusLine(docs[i]))
		cmd.Println()
	}
	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runProcess(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.ProcessDocument(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to process document: %w", err)
	}

	cmd.Printf("Processed %s\n", doc.Name)
	return nil
}

func runSelect(cmd *cobra.Command, args []string) error {
	return setSelection(cmd, args[0], true)
}

func runDeselect(cmd *cobra.Command, args []string) error {
	return setSelection(cmd, args[0], false)
}

func setSelection(cmd *cobra.Command, id string, selected bool) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.UpdateSelection(context.Background(), id, selected); err != nil {
		return fmt.Errorf("failed to update selection: %w", err)
	}

	if selected {
		cmd.Printf("Selected %s\n", id)
	} else {
		cmd.Printf("Deselected %s\n", id)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.DeleteDocument(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted %s\n", args[0])
	return nil
}

// statusLine summarises a document's lifecycle flags.
func statusLine(doc domain.Document) string {
	status := "pending"
	if doc.Processed {
		status = "processed"
	}
	if doc.Selected {
		status += ", selected"
	}
	if doc.Stale {
		status += ", stale (source changed)"
	}
	return status
}

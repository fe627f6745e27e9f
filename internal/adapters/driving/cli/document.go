package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pool-labs/kbsearch/internal/core/ports/driving"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage knowledge-base documents",
	Long:  `Add, update, list, activate, or delete knowledge-base documents.`,
}

var documentAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new document",
	RunE:  runDocumentAdd,
}

var documentUpdateCmd = &cobra.Command{
	Use:   "update [doc-id]",
	Short: "Update an existing document",
	Long:  `Updates a document. Flags that are not set leave the field unchanged.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentUpdate,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all documents",
	RunE:  runDocumentList,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document permanently",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentActivateCmd = &cobra.Command{
	Use:   "activate [doc-id]",
	Short: "Include a document in retrieval",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentSetActive(true),
}

var documentDeactivateCmd = &cobra.Command{
	Use:   "deactivate [doc-id]",
	Short: "Exclude a document from retrieval without deleting it",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentSetActive(false),
}

var documentSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate an empty store with sample documents",
	RunE:  runDocumentSeed,
}

// Flags shared by add and update.
var (
	docID       string
	docTitle    string
	docContent  string
	docTags     []string
	docLanguage string
)

func init() {
	documentAddCmd.Flags().StringVar(&docID, "id", "", "document ID (generated when empty)")
	documentAddCmd.Flags().StringVarP(&docTitle, "title", "t", "", "document title (required)")
	documentAddCmd.Flags().StringVarP(&docContent, "content", "c", "", "document content (required)")
	documentAddCmd.Flags().StringSliceVar(&docTags, "tags", nil, "comma-separated tags")
	documentAddCmd.Flags().StringVarP(&docLanguage, "language", "l", "", "language tag")

	documentUpdateCmd.Flags().StringVarP(&docTitle, "title", "t", "", "new title")
	documentUpdateCmd.Flags().StringVarP(&docContent, "content", "c", "", "new content")
	documentUpdateCmd.Flags().StringSliceVar(&docTags, "tags", nil, "new comma-separated tags")
	documentUpdateCmd.Flags().StringVarP(&docLanguage, "language", "l", "", "new language tag")

	documentCmd.AddCommand(documentAddCmd)
	documentCmd.AddCommand(documentUpdateCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentActivateCmd)
	documentCmd.AddCommand(documentDeactivateCmd)
	documentCmd.AddCommand(documentSeedCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentAdd(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := context.Background()
	doc, err := documentService.Create(ctx, driving.DocumentInput{
		ID:       docID,
		Title:    docTitle,
		Content:  docContent,
		Tags:     docTags,
		Language: docLanguage,
	})
	if err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}

	cmd.Printf("Added document %s (%q).\n", doc.ID, doc.Title)
	return nil
}

func runDocumentUpdate(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := context.Background()
	input := driving.DocumentInput{
		ID:       args[0],
		Title:    docTitle,
		Content:  docContent,
		Language: docLanguage,
	}
	if cmd.Flags().Changed("tags") {
		input.Tags = docTags
		if input.Tags == nil {
			input.Tags = []string{}
		}
	}

	doc, err := documentService.Update(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	cmd.Printf("Updated document %s.\n", doc.ID)
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := context.Background()
	doc, err := documentService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:    %s\n", doc.Title)
	cmd.Printf("  Language: %s\n", doc.LanguageOrDefault())
	cmd.Printf("  Active:   %t\n", doc.Active)
	if len(doc.Tags) > 0 {
		cmd.Printf("  Tags:     %s\n", doc.TagList())
	}
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:  %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	cmd.Println()
	cmd.Println(doc.Content)
	return nil
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := context.Background()
	docs, err := documentService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		status := "active"
		if !docs[i].Active {
			status = "inactive"
		}
		cmd.Printf("  %s  [%s]\n", docs[i].ID, status)
		cmd.Printf("    Title: %s\n", docs[i].Title)
		if len(docs[i].Tags) > 0 {
			cmd.Printf("    Tags:  %s\n", strings.Join(docs[i].Tags, ", "))
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := context.Background()
	if err := documentService.Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document %s.\n", args[0])
	return nil
}

func runDocumentSetActive(active bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if documentService == nil {
			return errors.New("document service not configured")
		}

		ctx := context.Background()
		if err := documentService.SetActive(ctx, args[0], active); err != nil {
			return fmt.Errorf("failed to update document: %w", err)
		}

		if active {
			cmd.Printf("Document %s activated.\n", args[0])
		} else {
			cmd.Printf("Document %s deactivated.\n", args[0])
		}
		return nil
	}
}

func runDocumentSeed(cmd *cobra.Command, _ []string) error {
	if seedFunc == nil {
		return errors.New("seeding not configured")
	}

	created, err := seedFunc(context.Background())
	if err != nil {
		return fmt.Errorf("failed to seed documents: %w", err)
	}

	if created == 0 {
		cmd.Println("Store is not empty, nothing seeded.")
		return nil
	}
	cmd.Printf("Seeded %d sample documents.\n", created)
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mtrella/outlay/internal/common"
	"github.com/mtrella/outlay/internal/conversation"
	"github.com/mtrella/outlay/internal/service"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <description...>",
		Short: "Classify one expense description",
		Long: `Run a single description through the classification pipeline and print
the candidate. Without --accept or --confirm, nothing is persisted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runClassify,
	}

	cmd.Flags().Bool("accept", false, "persist the suggestion as-is")
	cmd.Flags().String("confirm", "", "persist with this category (overrides the suggestion)")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	text := strings.Join(args, " ")

	accept, _ := cmd.Flags().GetBool("accept")
	confirmCategory, _ := cmd.Flags().GetString("confirm")
	if accept && confirmCategory != "" {
		return fmt.Errorf("--accept and --confirm are mutually exclusive")
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	gateway, err := newLLMClient()
	if err != nil {
		return err
	}
	defer gateway.Close()

	classifier, err := newClassifier(ctx, store, gateway)
	if err != nil {
		return err
	}
	manager := conversation.NewManager(classifier, store, classifier.Taxonomy())
	sessionID := "cli-" + uuid.NewString()

	// Retry transient gateway failures here; the core itself never retries.
	var result *conversation.TextResult
	err = common.WithRetry(ctx, func() error {
		var textErr error
		result, textErr = manager.OnText(ctx, sessionID, text)
		if textErr != nil {
			return &common.RetryableError{Err: textErr, Retryable: common.IsRetryable(textErr)}
		}
		return nil
	}, service.RetryOptions{MaxAttempts: 3, InitialDelay: 500 * time.Millisecond})
	if err != nil {
		return err
	}

	for _, warning := range result.Warnings {
		cmd.PrintErrf("warning: %s\n", warning)
	}

	candidateJSON, err := json.MarshalIndent(result.Candidate, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render candidate: %w", err)
	}
	cmd.Println(string(candidateJSON))

	choice := conversation.Cancel()
	switch {
	case accept:
		choice = conversation.Accept()
	case confirmCategory != "":
		choice = conversation.Choose(confirmCategory)
	}

	confirmation, err := manager.OnConfirmation(ctx, sessionID, choice)
	if err != nil {
		return err
	}
	if confirmation.Cancelled {
		cmd.Println("not persisted (pass --accept or --confirm to save)")
		return nil
	}

	cmd.Printf("persisted expense %d (%s, %s)\n",
		confirmation.Expense.ID,
		confirmation.Expense.Category,
		confirmation.Expense.Provenance)
	return nil
}

package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dersdefteri/internal/contextutil"
	"dersdefteri/internal/ingest"
	"dersdefteri/internal/service"
)

// uploadCmd stores PDFs as pending documents
var uploadCmd = &cobra.Command{
	Use:   "upload [FILE...]",
	Short: "Upload PDF files",
	Long: `Upload one or more PDF files as pending documents.

With --dir every PDF below the directory is uploaded as well.
Files are written one after another. The first failure stops the batch;
files uploaded before it stay.`,
	RunE: runUpload,
}

// processCmd runs extraction for one document
var processCmd = &cobra.Command{
	Use:   "process DOCUMENT_ID",
	Short: "Extract flashcards from an uploaded document",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

// documentsCmd lists the user's documents
var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"ls"},
	Short:   "List uploaded documents, newest first",
	Args:    cobra.NoArgs,
	RunE:    runDocuments,
}

// exportCmd writes the user's flashcards to a file
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export flashcards as XLSX or as an HTML study sheet",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx, cancel, err := commandContext(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	userID, _ := contextutil.UserIDFromContext(ctx)
	out := cmd.OutOrStdout()

	files := make([]ingest.File, 0, len(args))
	for _, path := range args {
		files = append(files, ingest.LocalFile(path))
	}
	if uploadDir != "" {
		scanned, err := ingest.ScanPDFs(ctx, uploadDir)
		if err != nil {
			return err
		}
		for _, f := range scanned {
			files = append(files, ingest.LocalFile(f.AbsPath))
		}
	}
	if len(files) == 0 {
		return errors.New("no files given; pass PDF paths or --dir")
	}

	docs, err := application.Uploader.Upload(ctx, userID, files, func(p ingest.Progress) {
		fmt.Fprintf(out, "[%d/%d] %s\n", p.Current, p.Total, p.Filename)
	})
	for _, d := range docs {
		fmt.Fprintf(out, "%s\t%s\n", d.ID, d.Filename)
	}
	if err != nil {
		var batchErr *ingest.BatchError
		if errors.As(err, &batchErr) {
			return fmt.Errorf("upload stopped: %s: %s", batchErr.Filename, service.GermanMessage(batchErr.Err))
		}
		return fmt.Errorf("upload stopped: %s", service.GermanMessage(err))
	}
	fmt.Fprintln(out, ingest.UploadSummary(len(docs)))
	return nil
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx, cancel, err := commandContext(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	userID, _ := contextutil.UserIDFromContext(ctx)
	out := cmd.OutOrStdout()

	result, err := application.Pipeline.Process(ctx, userID, args[0])
	if err != nil {
		var stageErr *service.StageError
		if errors.As(err, &stageErr) {
			return fmt.Errorf("%s: processing failed during %s: %w", stageErr.Filename, stageErr.Stage, stageErr.Err)
		}
		return err
	}

	r := result.Report
	fmt.Fprintln(out, ingest.SuccessMessage(result.Document.Filename, len(result.Cards)))
	fmt.Fprintf(out, "chapters=%d grammar=%d vocabulary=%d skipped=%d\n", r.Chapters, r.Grammar, r.Vocabulary, r.Skipped())
	return nil
}

func runDocuments(cmd *cobra.Command, args []string) error {
	ctx, cancel, err := commandContext(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	userID, _ := contextutil.UserIDFromContext(ctx)
	docs, err := application.Documents.List(ctx, userID)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILENAME\tSTATUS\tCARDS\tUPLOADED")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", d.ID, d.Filename, d.Status, d.TotalCardsExtracted, d.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel, err := commandContext(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	userID, _ := contextutil.UserIDFromContext(ctx)

	var data []byte
	if asSheet {
		data, err = application.Deck.StudySheet(ctx, userID)
	} else {
		data, err = application.Deck.ExportXLSX(ctx, userID)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", outPath, len(data))
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ignatzorin/proposal-backend/internal/app"
	"github.com/ignatzorin/proposal-backend/internal/config"
	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/usecase/proposal"
)

// source откуда взять запись: черновик из файла или сохранённая запись по id.
type source struct {
	draftPath string
	id        string
}

func (s *source) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.draftPath, "file", "f", "", "Draft file (JSON or YAML, - for stdin)")
	cmd.Flags().StringVar(&s.id, "id", "", "ID of a stored proposal")
	cmd.MarkFlagsMutuallyExclusive("file", "id")
	cmd.MarkFlagsOneRequired("file", "id")
}

// open собирает контейнер. Черновик из файла фиксируется в хранилище в памяти,
// чтобы предпросмотр ничего не записывал в настроенный backend.
func (s *source) open(ctx context.Context) (*app.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if s.draftPath != "" {
		cfg.StorageDriver = config.StorageMemory
	}
	return app.New(ctx, cfg)
}

func (s *source) resolve(cmd *cobra.Command, c *app.Container) (*entity.Proposal, error) {
	ctx := cmd.Context()
	if s.id != "" {
		id, err := uuid.Parse(s.id)
		if err != nil {
			return nil, fmt.Errorf("invalid --id: %w", err)
		}
		return c.Get.Execute(ctx, id)
	}

	draft, err := loadDraft(s.draftPath, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	return c.Create.Execute(ctx, draft)
}

func withContainer(open func(context.Context) (*app.Container, error), fn func(*app.Container) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		c, err := open(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()
		return describe(fn(c))
	}
}

// describe добавляет к ошибке проверки список полей.
func describe(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
		return fmt.Errorf("%s: %v", appErr.Message, appErr.Fields)
	}
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func normalizeCmd() *cobra.Command {
	var draftPath string

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Print canonical field values of a draft without validating completeness",
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := loadDraft(draftPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			fields, err := proposal.NewNormalizeProposalUseCase().Execute(draft)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{
				entity.FieldClientName:   fields.ClientName,
				entity.FieldClientEmail:  fields.ClientEmail,
				entity.FieldScopeOfWork:  fields.ScopeOfWork,
				entity.FieldPriceRange:   fields.PriceRange,
				entity.FieldJobDuration:  fields.JobDuration,
				entity.FieldMeetingNotes: fields.MeetingNotes,
			})
		},
	}
	cmd.Flags().StringVarP(&draftPath, "file", "f", "-", "Draft file (JSON or YAML, - for stdin)")
	return cmd
}

func recordView(p *entity.Proposal) map[string]any {
	return map[string]any{
		"id":                     p.ID(),
		entity.FieldClientName:   p.ClientName(),
		entity.FieldClientEmail:  p.ClientEmail(),
		entity.FieldScopeOfWork:  p.ScopeOfWork(),
		entity.FieldPriceRange:   p.PriceRange(),
		entity.FieldJobDuration:  p.JobDuration(),
		entity.FieldMeetingNotes: p.MeetingNotes(),
		"createdAt":              p.CreatedAt(),
	}
}

// commitCmd фиксирует черновик в настроенном хранилище.
func commitCmd() *cobra.Command {
	var draftPath string

	open := func(ctx context.Context) (*app.Container, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		return app.New(ctx, cfg)
	}

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Validate a draft and store it as a proposal",
	}
	cmd.RunE = withContainer(open, func(c *app.Container) error {
		draft, err := loadDraft(draftPath, cmd.InOrStdin())
		if err != nil {
			return err
		}
		p, err := c.Create.Execute(cmd.Context(), draft)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), recordView(p))
	})
	cmd.Flags().StringVarP(&draftPath, "file", "f", "-", "Draft file (JSON or YAML, - for stdin)")
	return cmd
}

func listCmd() *cobra.Command {
	open := func(ctx context.Context) (*app.Container, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		return app.New(ctx, cfg)
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored proposals, newest first",
	}
	cmd.RunE = withContainer(open, func(c *app.Container) error {
		proposals, err := c.List.Execute(cmd.Context())
		if err != nil {
			return err
		}
		views := make([]map[string]any, 0, len(proposals))
		for _, p := range proposals {
			views = append(views, recordView(p))
		}
		return printJSON(cmd.OutOrStdout(), views)
	})
	return cmd
}

func emailCmd() *cobra.Command {
	var (
		src    source
		mailto bool
	)

	cmd := &cobra.Command{
		Use:   "email",
		Short: "Render the proposal email (or the mailto link with --mailto)",
	}
	cmd.RunE = withContainer(src.open, func(c *app.Container) error {
		p, err := src.resolve(cmd, c)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if mailto {
			_, err = fmt.Fprintln(out, c.Projector.MailtoURI(p))
			return err
		}
		_, err = fmt.Fprintf(out, "Subject: %s\n\n%s\n", c.Projector.EmailSubject(p), c.Projector.EmailBody(p))
		return err
	})
	src.bind(cmd)
	cmd.Flags().BoolVar(&mailto, "mailto", false, "Print the mailto: link instead of the text")
	return cmd
}

func csvCmd() *cobra.Command {
	var (
		src    source
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Render the CSV export; with --out writes proposal_{name}_{date}.csv into the directory",
	}
	cmd.RunE = withContainer(src.open, func(c *app.Container) error {
		p, err := src.resolve(cmd, c)
		if err != nil {
			return err
		}
		export, err := c.Render.CSV(cmd.Context(), p.ID())
		if err != nil {
			return err
		}
		if outDir == "" {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), export.Content)
			return err
		}
		path := filepath.Join(outDir, export.Filename)
		if err := os.WriteFile(path, []byte(export.Content), 0o644); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
		return err
	})
	src.bind(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to write the CSV file into")
	return cmd
}

func payloadCmd() *cobra.Command {
	var src source

	cmd := &cobra.Command{
		Use:   "payload",
		Short: "Render the webhook JSON payload",
	}
	cmd.RunE = withContainer(src.open, func(c *app.Container) error {
		p, err := src.resolve(cmd, c)
		if err != nil {
			return err
		}
		payload, err := c.Render.Payload(cmd.Context(), p.ID())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), payload)
	})
	src.bind(cmd)
	return cmd
}

func sendCmd() *cobra.Command {
	var (
		src        source
		webhookURL string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "POST the payload to the spreadsheet webhook",
	}
	cmd.RunE = withContainer(src.open, func(c *app.Container) error {
		p, err := src.resolve(cmd, c)
		if err != nil {
			return err
		}
		result, err := c.Send.Execute(cmd.Context(), proposal.SendInput{ProposalID: p.ID(), WebhookURL: webhookURL})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), map[string]string{
			"outcome":        string(result.Outcome.Status),
			"webhookUrl":     result.WebhookURL,
			"spreadsheetUrl": result.SpreadsheetURL,
		})
	})
	src.bind(cmd)
	cmd.Flags().StringVar(&webhookURL, "webhook", "", "Webhook URL (overrides and replaces the saved one)")
	return cmd
}

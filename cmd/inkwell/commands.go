package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/starford/inkwell/internal"
	"github.com/starford/inkwell/internal/dates"
	"github.com/starford/inkwell/internal/ingest"
	"github.com/starford/inkwell/internal/mcpserver"
	"github.com/starford/inkwell/internal/orphan"
	"github.com/starford/inkwell/internal/ui"
)

var errAborted = errors.New("aborted")

func ingestCommand() *cli.Command {
	return &cli.Command{
		Name:  "ingest",
		Usage: "Turn drafts into canonical notes and move their attachments",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Value: "dir", Usage: "file or dir"},
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Draft file name, vault-relative or absolute path (mode file)"},
			&cli.BoolFlag{Name: "dry-run", Aliases: []string{"n"}, Usage: "Preview without touching the vault"},
			&cli.BoolFlag{Name: "keep", Usage: "Keep source drafts"},
			&cli.BoolFlag{Name: "show", Usage: "Render each produced note"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var draft string
			switch cmd.String("mode") {
			case "file":
				if draft = cmd.String("file"); draft == "" {
					return fmt.Errorf("ingest: --mode file requires --file")
				}
			case "dir":
			default:
				return fmt.Errorf("ingest: unknown mode %q", cmd.String("mode"))
			}

			v, _, err := openVault(cmd)
			if err != nil {
				return err
			}
			defer v.Close()

			rep := v.Notes.Ingest(ctx, draft, ingest.Options{
				DryRun:     cmd.Bool("dry-run"),
				KeepSource: cmd.Bool("keep") || v.Config.Ingest.KeepSource,
			})
			ui.PrintIngest(os.Stdout, rep)

			if cmd.Bool("show") {
				tty := isatty.IsTerminal(os.Stdout.Fd())
				for _, res := range rep.Results {
					if res.Failed() || res.Content == "" {
						continue
					}
					out, err := ui.RenderMarkdown(res.Content, ui.DefaultWidth, tty)
					if err != nil {
						return fmt.Errorf("ingest: render %s: %w", res.Output, err)
					}
					fmt.Fprintf(os.Stdout, "\n%s\n%s", ui.Header(res.Output), out)
				}
			}

			if n := rep.Count(ingest.StateFailed); n > 0 {
				return fmt.Errorf("ingest: %s", ui.Count(n, "draft failed", "drafts failed"))
			}
			return nil
		},
	}
}

func formatCommand() *cli.Command {
	return &cli.Command{
		Name:  "format",
		Usage: "Rename unstructured attachment names after their referencing notes",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Aliases: []string{"n"}, Usage: "Preview without touching the vault"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			v, _, err := openVault(cmd)
			if err != nil {
				return err
			}
			defer v.Close()

			rep, err := v.Notes.Format(ctx, cmd.Bool("dry-run"))
			if err != nil {
				return err
			}
			ui.PrintFormat(os.Stdout, rep)
			if !rep.OK() {
				return fmt.Errorf("format: some attachments failed")
			}
			return nil
		},
	}
}

func orphansCommand() *cli.Command {
	return &cli.Command{
		Name:  "orphans",
		Usage: "List attachments no document references",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "delete", Usage: "Delete the orphans after confirmation"},
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			v, _, err := openVault(cmd)
			if err != nil {
				return err
			}
			defer v.Close()

			if !cmd.Bool("delete") {
				rep, err := v.Notes.Orphans(ctx)
				if err != nil {
					return err
				}
				ui.PrintOrphans(os.Stdout, rep)
				if len(rep.Errors) > 0 {
					return fmt.Errorf("orphans: %s", ui.Count(len(rep.Errors), "document unreadable", "documents unreadable"))
				}
				return nil
			}

			approved := true
			rep, del, err := v.Notes.DeleteOrphans(ctx, func(names []string) bool {
				if cmd.Bool("yes") {
					return true
				}
				ui.PrintOrphans(os.Stdout, orphan.Report{Orphans: names})
				if !ui.Interactive() {
					fmt.Fprintln(os.Stderr, ui.Hint("not a terminal; pass --yes to delete"))
					approved = false
					return false
				}
				approved = ui.Confirm(os.Stdin, os.Stdout, fmt.Sprintf("Delete %s?", ui.Count(len(names), "attachment", "attachments")))
				return approved
			})
			if err != nil {
				ui.PrintOrphans(os.Stdout, rep)
				return err
			}
			if !approved {
				return errAborted
			}
			if len(rep.Orphans) == 0 {
				ui.PrintOrphans(os.Stdout, rep)
			}
			ui.PrintDeleted(os.Stdout, del)
			if len(del.Failed) > 0 {
				return fmt.Errorf("orphans: %s", ui.Count(len(del.Failed), "deletion failed", "deletions failed"))
			}
			return nil
		},
	}
}

func refsCommand() *cli.Command {
	return &cli.Command{
		Name:      "refs",
		Usage:     "Show every line referencing an attachment",
		ArgsUsage: "<name>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := strings.TrimSpace(cmd.Args().First())
			if name == "" {
				return fmt.Errorf("refs: attachment name is required")
			}
			v, _, err := openVault(cmd)
			if err != nil {
				return err
			}
			defer v.Close()

			res := v.Notes.References(ctx, name)
			ui.PrintReferences(os.Stdout, name, res)
			if len(res.Errors) > 0 {
				return fmt.Errorf("refs: %s", ui.Count(len(res.Errors), "document unreadable", "documents unreadable"))
			}
			return nil
		},
	}
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Bring the SQLite index up to date with the vault",
		Action: func(_ context.Context, cmd *cli.Command) error {
			v, logger, err := openVault(cmd)
			if err != nil {
				return err
			}
			defer v.Close()
			if v.DB == nil {
				return fmt.Errorf("index: sqlite.path is empty")
			}
			start := time.Now()
			if err := v.Sync(logger); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%s index synced %s\n", ui.SymbolSuccess, ui.Hint(time.Since(start).Round(time.Millisecond).String()))
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API with draft auto-ingestion",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
				return fmt.Errorf("app run error: %w", err)
			}
			return nil
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve vault tools over MCP stdio",
		Action: func(_ context.Context, cmd *cli.Command) error {
			v, logger, err := openVault(cmd)
			if err != nil {
				return err
			}
			defer v.Close()
			logger.Info("mcp: serving stdio", slog.String("root", v.Store.Root()))
			return mcpserver.New(v.Notes, version).ServeStdio()
		},
	}
}

func dailyCommand() *cli.Command {
	return &cli.Command{
		Name:      "daily",
		Usage:     "Create the daily note",
		ArgsUsage: "[today|yesterday|tomorrow|YYYY-MM-DD]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			v, _, err := openVault(cmd)
			if err != nil {
				return err
			}
			defer v.Close()

			day, err := dates.ParseDateArg(cmd.Args().First(), v.Dates.Now())
			if err != nil {
				return err
			}
			notePath, created, err := v.Daily.Create(day)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(os.Stdout, "%s created %s\n", ui.SymbolSuccess, ui.Path(notePath))
			} else {
				fmt.Fprintf(os.Stdout, "%s %s %s\n", ui.SymbolPreview, ui.Path(notePath), ui.Hint("(exists)"))
			}
			return nil
		},
	}
}

func wordCommand() *cli.Command {
	return &cli.Command{
		Name:      "word",
		Usage:     "Look a word up and write a vocabulary note",
		ArgsUsage: "<word>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			word := strings.TrimSpace(cmd.Args().First())
			if word == "" {
				return fmt.Errorf("word: a word is required")
			}
			v, _, err := openVault(cmd)
			if err != nil {
				return err
			}
			defer v.Close()

			notePath, err := v.Vocab.Create(ctx, word)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%s created %s\n", ui.SymbolSuccess, ui.Path(notePath))
			return nil
		},
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/starford/redate/internal"
	"github.com/starford/redate/internal/dateparts"
	"github.com/starford/redate/internal/rename"
	"github.com/starford/redate/internal/session"
)

func layoutFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "folder", Aliases: []string{"f"}, Usage: "Folder whose files are renamed", Required: true},
		&cli.StringFlag{Name: "prefix", Aliases: []string{"p"}, Usage: "Text placed before the date"},
		&cli.StringFlag{Name: "year", Usage: "Year position as start:length (0-based)", Required: true},
		&cli.StringFlag{Name: "month", Usage: "Month position as start:length", Required: true},
		&cli.StringFlag{Name: "day", Usage: "Day position as start:length"},
		&cli.BoolFlag{Name: "textual-month", Usage: "Month is a 3-letter name such as Jan"},
		&cli.IntFlag{Name: "length", Aliases: []string{"l"}, Usage: "Expected base name length", Required: true},
		&cli.StringFlag{Name: "separator", Aliases: []string{"s"}, Usage: "Text between year, month and day (default from config)"},
	}
}

func planCommand() *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "Show the renames a folder would get, without touching files",
		Flags: layoutFlags(),
		Action: withSession(func(ctx context.Context, cmd *cli.Command, cfg *internal.Config, svc *session.Service) error {
			req, err := requestFromFlags(cmd, cfg)
			if err != nil {
				return err
			}
			res, err := svc.Plan(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(res)
		}),
	}
}

func renameCommand() *cli.Command {
	return &cli.Command{
		Name:  "rename",
		Usage: "Rename the files of a folder",
		Flags: layoutFlags(),
		Action: withSession(func(ctx context.Context, cmd *cli.Command, cfg *internal.Config, svc *session.Service) error {
			req, err := requestFromFlags(cmd, cfg)
			if err != nil {
				return err
			}
			res, err := svc.Rename(ctx, req, "")
			if perr := printJSON(res); perr != nil && err == nil {
				err = perr
			}
			return err
		}),
	}
}

func previewCommand() *cli.Command {
	flags := append(layoutFlags(), &cli.StringFlag{
		Name: "sample", Usage: "Sample file name to preview", Required: true,
	})
	return &cli.Command{
		Name:  "preview",
		Usage: "Show the new name of one sample file",
		Flags: flags,
		Action: withSession(func(ctx context.Context, cmd *cli.Command, cfg *internal.Config, svc *session.Service) error {
			req, err := requestFromFlags(cmd, cfg)
			if err != nil {
				return err
			}
			res, err := svc.Preview(ctx, req, cmd.String("sample"))
			if err != nil {
				return err
			}
			return printJSON(res)
		}),
	}
}

func monthsCommand() *cli.Command {
	return &cli.Command{
		Name:  "months",
		Usage: "Count (or with --apply, abbreviate) full month names in file names",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "folder", Aliases: []string{"f"}, Usage: "Folder to scan", Required: true},
			&cli.BoolFlag{Name: "apply", Usage: "Rename the files instead of counting them"},
		},
		Action: withSession(func(ctx context.Context, cmd *cli.Command, _ *internal.Config, svc *session.Service) error {
			folder := cmd.String("folder")
			if !cmd.Bool("apply") {
				n, err := svc.CountMonths(folder)
				if err != nil {
					return err
				}
				return printJSON(map[string]any{"folder": folder, "count": n})
			}
			res, err := svc.NormalizeMonths(ctx, folder, false)
			if perr := printJSON(res); perr != nil && err == nil {
				err = perr
			}
			return err
		}),
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List journaled batches, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Number of batches to show", Value: 20},
		},
		Action: withSession(func(_ context.Context, cmd *cli.Command, _ *internal.Config, svc *session.Service) error {
			rows, total, err := svc.History(int(cmd.Int("limit")), 0)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"batches": rows, "total": total})
		}),
	}
}

type sessionAction func(ctx context.Context, cmd *cli.Command, cfg *internal.Config, svc *session.Service) error

// withSession loads config and opens a session for the duration of one command.
func withSession(fn sessionAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		svc, closeFn, err := internal.NewSession(internal.WithConfig(cfg))
		if err != nil {
			return err
		}
		defer closeFn()
		return fn(ctx, cmd, cfg, svc)
	}
}

func requestFromFlags(cmd *cli.Command, cfg *internal.Config) (rename.Request, error) {
	layout := &dateparts.Layout{TextualMonth: cmd.Bool("textual-month")}

	var err error
	if layout.Year, err = dateparts.ParseSpec(cmd.String("year")); err != nil {
		return rename.Request{}, fmt.Errorf("--year: %w", err)
	}
	if layout.Month, err = dateparts.ParseSpec(cmd.String("month")); err != nil {
		return rename.Request{}, fmt.Errorf("--month: %w", err)
	}
	if d := cmd.String("day"); d != "" {
		day, err := dateparts.ParseSpec(d)
		if err != nil {
			return rename.Request{}, fmt.Errorf("--day: %w", err)
		}
		layout.Day = &day
	}

	sep := cfg.Rename.Separator
	if cmd.IsSet("separator") {
		sep = cmd.String("separator")
	}

	return rename.Request{
		Folder:         cmd.String("folder"),
		Prefix:         cmd.String("prefix"),
		Layout:         layout,
		ExpectedLength: int(cmd.Int("length")),
		Separator:      sep,
	}, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

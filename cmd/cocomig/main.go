package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli/v3"

	"github.com/verilab/cocomig/migrate"
	"github.com/verilab/cocomig/output"
	"github.com/verilab/cocomig/types"
)

func main() {
	app := &cli.Command{
		Name:  "cocomig",
		Usage: "migrate cocotb 1.x testbenches to the 2.x API",
		Commands: []*cli.Command{
			checkCommand(),
			applyCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if _, ok := err.(cli.ExitCoder); !ok {
			fmt.Fprintln(os.Stderr, "cocomig:", err)
		}
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if coder, ok := err.(cli.ExitCoder); ok {
		return coder.ExitCode()
	}
	return 1
}

func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Value:   runtime.NumCPU(),
			Usage:   "number of parallel workers",
		},
		&cli.Int64Flag{
			Name:  "max-bytes",
			Value: 2 * 1024 * 1024,
			Usage: "skip files larger than this",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "TOML file overriding the migration rule tables",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "emit the report as JSON",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "disable colored output",
		},
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "report what would change without writing anything",
		ArgsUsage: "[path]",
		Flags: append(sharedFlags(),
			&cli.BoolFlag{
				Name:  "diff",
				Usage: "show a unified diff for each file that would change",
			},
		),
		Action: runCheck,
	}
}

func applyCommand() *cli.Command {
	return &cli.Command{
		Name:      "apply",
		Usage:     "rewrite files that need migration",
		ArgsUsage: "[path]",
		Flags: append(sharedFlags(),
			&cli.BoolFlag{
				Name:  "inplace",
				Usage: "overwrite originals instead of writing side-by-side copies",
			},
			&cli.StringFlag{
				Name:  "suffix",
				Value: ".migrated.py",
				Usage: "suffix for side-by-side copies",
			},
		),
		Action: runApply,
	}
}

func runCheck(_ context.Context, cmd *cli.Command) error {
	opts, err := optionsFrom(cmd)
	if err != nil {
		return err
	}
	opts.Mode = migrate.WriteNone
	opts.KeepText = cmd.Bool("diff")

	results, err := migrate.Migrate(opts)
	if err != nil {
		return err
	}

	if err := report(cmd, results, cmd.Bool("diff")); err != nil {
		return err
	}

	// Non-zero exit when migration is needed, so CI can gate on it.
	if s := output.Summarize(results); s.Changed > 0 || s.Failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func runApply(_ context.Context, cmd *cli.Command) error {
	opts, err := optionsFrom(cmd)
	if err != nil {
		return err
	}
	opts.Mode = migrate.WriteSideBySide
	if cmd.Bool("inplace") {
		opts.Mode = migrate.WriteInPlace
	}
	opts.Suffix = cmd.String("suffix")

	results, err := migrate.Migrate(opts)
	if err != nil {
		return err
	}

	if err := report(cmd, results, false); err != nil {
		return err
	}

	if output.Summarize(results).Failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func optionsFrom(cmd *cli.Command) (migrate.MigrateOptions, error) {
	opts := migrate.MigrateOptions{
		Jobs:     cmd.Int("jobs"),
		MaxBytes: cmd.Int64("max-bytes"),
	}

	target := cmd.Args().First()
	if target == "" {
		target = "."
	}
	info, err := os.Stat(target)
	if err != nil {
		return opts, err
	}
	if info.IsDir() {
		opts.Path = target
	} else {
		opts.File = target
	}

	if path := cmd.String("config"); path != "" {
		rules, err := migrate.LoadRules(path)
		if err != nil {
			return opts, err
		}
		opts.Rules = &rules
	}
	return opts, nil
}

func report(cmd *cli.Command, results []types.FileResult, diff bool) error {
	w := output.New(output.Config{
		JSON:    cmd.Bool("json"),
		Diff:    diff,
		NoColor: cmd.Bool("no-color"),
	})
	return w.Report(results)
}

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/csvquery/prefixsearch/internal/common"
	"github.com/csvquery/prefixsearch/internal/query"
	"github.com/csvquery/prefixsearch/internal/source"
)

type rootOptions struct {
	configPath string
	chunkSize  int
	verbose    bool
	query      string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:     "prefixsearch <file> <column>",
		Short:   "Prefix search over one column of a CSV-like file",
		Long:    "Index one column of a static delimited file and list every row whose value in that column starts with the typed text, ignoring case. Columns are numbered from 1.",
		Version: Version,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "YAML config file")
	cmd.Flags().IntVar(&opts.chunkSize, "chunk-size", 0, "index build read size in bytes (default 1 MiB)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "run one query and exit")
	return cmd
}

func parseColumn(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("column number must be a positive integer (1-based index), got %q", arg)
	}
	return n - 1, nil
}

func runSearch(cmd *cobra.Command, args []string, opts rootOptions) error {
	column, err := parseColumn(args[1])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.chunkSize > 0 {
		cfg.ChunkSize = opts.chunkSize
	}
	if opts.verbose {
		cfg.Verbose = true
	}

	logger := common.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)

	src, err := source.Resolve(args[0], cfg.TempDir)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	engine, err := query.New(query.Config{
		CsvPath:   src.Path,
		Column:    column,
		ChunkSize: cfg.ChunkSize,
		BlockSize: cfg.BlockSize,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	logger.Debug("source resolved",
		"file", src.Orig,
		"path", src.Path,
		"compressed", src.Compressed(),
		"column", engine.Column()+1)

	if opts.query != "" {
		return printResults(cmd.OutOrStdout(), engine, opts.query)
	}
	return runLoop(cmd.InOrStdin(), cmd.OutOrStdout(), engine)
}

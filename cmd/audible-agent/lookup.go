package main

import (
	"github.com/spf13/cobra"

	"github.com/sydlexius/audible-agent/internal/logging"
	"github.com/sydlexius/audible-agent/internal/plexml"
	"github.com/sydlexius/audible-agent/internal/provider"
)

func newLookupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <asin>",
		Short: "Print the metadata document for an ASIN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			// Stdout carries the document.
			cfg.Logging.Output = logging.OutputStderr
			mgr, logger := logging.NewManager(cfg.Logging)
			defer mgr.Close() //nolint:errcheck

			book := newAdapter(cfg, logger).GetBook(cmd.Context(), args[0])
			doc := plexml.MediaContainer()
			if book != nil {
				doc = plexml.MediaContainer(plexml.FromMetadata(cfg.Agent.Identifier, book))
			}
			return plexml.Render(cmd.OutOrStdout(), doc)
		},
	}
}

func newMatchCmd(opts *options) *cobra.Command {
	var q provider.MatchQuery
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Print the match document for a title and author",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			cfg.Logging.Output = logging.OutputStderr
			mgr, logger := logging.NewManager(cfg.Logging)
			defer mgr.Close() //nolint:errcheck

			var candidates []provider.MatchCandidate
			if q.Type == provider.BookType {
				candidates = newAdapter(cfg, logger).Match(cmd.Context(), q)
			} else {
				logger.Info("only book matches are supported")
			}
			return plexml.Render(cmd.OutOrStdout(), plexml.Candidates(cfg.Agent.Identifier, candidates))
		},
	}
	cmd.Flags().StringVar(&q.Title, "title", "", "title to match (required)")
	cmd.Flags().StringVar(&q.ParentTitle, "author", "", "author name")
	cmd.Flags().IntVar(&q.Type, "type", provider.BookType, "media type; only books are supported")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

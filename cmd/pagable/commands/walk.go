package commands

import (
	"errors"
	"io"

	"github.com/planetsclub/pagable/logging/logger"
	"github.com/planetsclub/pagable/paging"
	"github.com/spf13/cobra"
)

func newWalkCommand(configPath *string) *cobra.Command {
	var (
		qf       queryFlags
		size     int
		maxPages int
		cursor   string
		backward bool
	)

	cmd := &cobra.Command{
		Use:   "walk",
		Args:  cobra.NoArgs,
		Short: "Follow cursors through a result set",
		Long: `Follow page cursors until the result set is exhausted, printing one JSON
document per line.

Forward walks start at the beginning or at --cursor. Backward walks need
--cursor and print each page in display order, nearest page first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := qf.query()
			if err != nil {
				return err
			}
			if backward && cursor == "" {
				return errors.New("--backward needs --cursor")
			}
			if backward {
				q.Last, q.Before = &size, cursor
			} else {
				q.First, q.After = &size, cursor
			}

			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			pages, docs := 0, 0
			for maxPages <= 0 || pages < maxPages {
				page, err := a.paginator.Paginate(cmd.Context(), q)
				if err != nil {
					return err
				}
				pages++
				docs += len(page.Items)
				if err := writeItems(cmd.OutOrStdout(), page); err != nil {
					return err
				}

				if backward {
					if !page.PageInfo.HasPreviousPage {
						break
					}
					q.Before = page.PageInfo.StartCursor
				} else {
					if !page.PageInfo.HasNextPage {
						break
					}
					q.After = page.PageInfo.EndCursor
				}
			}

			logger.Infof(cmd.Context(), "walked %d documents in %d pages of %s", docs, pages, q.Index)
			return nil
		},
	}

	qf.register(cmd.Flags())
	cmd.Flags().IntVar(&size, "size", paging.DefaultWindow, "documents per page")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many pages, 0 for no limit")
	cmd.Flags().StringVar(&cursor, "cursor", "", "cursor to start from")
	cmd.Flags().BoolVar(&backward, "backward", false, "walk towards the start of the result set")
	return cmd
}

func writeItems(w io.Writer, page *paging.Page) error {
	for _, doc := range page.Items {
		item, err := paging.Bind[map[string]any](doc)
		if err != nil {
			return err
		}
		line, err := encodeJSON(item, false)
		if err != nil {
			return err
		}
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

package commands

import (
	"github.com/planetsclub/pagable/paging"
	"github.com/spf13/cobra"
)

func newPageCommand(configPath *string) *cobra.Command {
	var (
		qf            queryFlags
		first, last   int
		after, before string
		pretty        bool
	)

	cmd := &cobra.Command{
		Use:   "page",
		Args:  cobra.NoArgs,
		Short: "Fetch one page as a connection",
		Long: `Fetch one page and print it as a connection: items, page_info and total_count.

Use --first/--after to page forward and --last/--before to page backward,
feeding the cursors from page_info of the previous output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := qf.query()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("first") {
				q.First = &first
			}
			if cmd.Flags().Changed("last") {
				q.Last = &last
			}
			q.After, q.Before = after, before

			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			page, err := a.paginator.Paginate(cmd.Context(), q)
			if err != nil {
				return err
			}
			conn, err := paging.NewConnection[map[string]any](page, nil)
			if err != nil {
				return err
			}
			out, err := encodeJSON(conn, pretty)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	qf.register(cmd.Flags())
	cmd.Flags().IntVar(&first, "first", 0, "page size when paging forward")
	cmd.Flags().StringVar(&after, "after", "", "cursor to page forward from")
	cmd.Flags().IntVar(&last, "last", 0, "page size when paging backward")
	cmd.Flags().StringVar(&before, "before", "", "cursor to page backward from")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}

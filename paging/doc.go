// Package paging provides cursor-based pagination over a search backend.
//
// Pages are addressed by the sort-key tuple of their edge documents
// (search_after), never by offset, so paging stays stable while documents
// are inserted or updated. Each page costs one batched MultiSearch call.
//
// # Basic Usage
//
// Create a Paginator over any search.Backend:
//
//	p := paging.New(client,
//	    paging.WithLogger(logger.StdLogger()),
//	    paging.WithWindow(20, 500),
//	)
//
// Page forward with First/After:
//
//	page, err := p.Paginate(ctx, paging.Query{
//	    Index: "posts",
//	    Sort:  paging.SortSpec{paging.Desc("created_at"), paging.Desc("_id")},
//	    First: &first,
//	    After: r.URL.Query().Get("after"),
//	})
//
// Page backward with Last/Before:
//
//	page, err := p.Paginate(ctx, paging.Query{
//	    Index:  "posts",
//	    Sort:   sort,
//	    Last:   &last,
//	    Before: page.PageInfo.StartCursor,
//	})
//
// An After without First pages forward with the default window. Items are
// always returned in the order of Sort, whatever the direction.
//
// # Cursor Encoding
//
// Cursors are opaque, URL safe strings wrapping a msgpack encoded sort-key
// tuple:
//
//	cursor, err := paging.EncodeCursor([]any{int64(1700000000), "post-42"})
//
//	values, ok := paging.DecodeCursor(cursor)
//
// Decoding fails open. A malformed cursor, or one whose tuple does not match
// the sort, is ignored and the page starts from the natural edge of the set.
//
// # Page Info
//
// PageInfo follows the Relay connection model:
//
//	{
//	  "has_next_page": true,
//	  "has_previous_page": false,
//	  "start_cursor": "...",
//	  "end_cursor": "..."
//	}
//
// The flag in the paging direction comes from over-fetching one document.
// The opposite flag is only computed when a cursor was supplied; without one
// it is false.
//
// # Typed Views
//
// Documents carry the raw source. Bind maps one onto a domain type and
// NewConnection maps a whole page:
//
//	type Post struct {
//	    ID    string `json:"id"`
//	    Title string `json:"title"`
//	}
//
//	conn, err := paging.NewConnection[Post](page, nil)
//	// Returns: {items: [...], page_info: {...}, total_count: 25, total_count_relation: "eq"}
//
// # Sorting
//
//   - Always end the sort with a unique field such as _id so ties are stable
//   - Sort specs accept "field", {"field": "desc"} and {"field": {"order": "asc", "missing": "_first"}}
//   - A sort that cannot be parsed is an error (see IsInvalidSort)
package paging

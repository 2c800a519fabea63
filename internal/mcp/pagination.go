package mcp

import (
	"fmt"
	"sort"
	"strconv"
)

// defaultPageSize bounds how many items one listing page returns.
// Cursors are opaque decimal offsets into the name-sorted item list.
const defaultPageSize = 50

// paginate returns the slice of names visible on the page starting at
// cursor (an opaque offset) and the cursor for the following page, or
// "" if there is no more data. names is sorted in place.
func paginate(names []string, cursor string) (page []string, nextCursor string, err error) {
	sort.Strings(names)

	offset := 0
	if cursor != "" {
		offset, err = strconv.Atoi(cursor)
		if err != nil || offset < 0 {
			return nil, "", fmt.Errorf("invalid cursor %q", cursor)
		}
	}
	if offset > len(names) {
		offset = len(names)
	}

	end := offset + defaultPageSize
	if end > len(names) {
		end = len(names)
	}

	page = names[offset:end]
	if end < len(names) {
		nextCursor = strconv.Itoa(end)
	}
	return page, nextCursor, nil
}

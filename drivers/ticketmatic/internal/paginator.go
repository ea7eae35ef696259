package driver

import (
	"github.com/goccy/go-json"
)

// PolicyName selects how a stream decides it has read its last page
type PolicyName string

const (
	// TotalCountPolicy stops once the offset reaches the total result count
	TotalCountPolicy PolicyName = "total_count"
	// EmptyPagePolicy stops on the first page without records
	EmptyPagePolicy PolicyName = "empty_page"
)

// countField carries the total number of matching records in a page envelope
const countField = "nbrofresults"

// Page is one decoded response envelope
type Page struct {
	Data  []json.RawMessage `json:"data"`
	Total *int64            `json:"nbrofresults"`

	hasData bool
}

// UnmarshalJSON treats a null data list or count as absent
func (p *Page) UnmarshalJSON(b []byte) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(b, &envelope); err != nil {
		return err
	}

	if raw, ok := envelope["data"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &p.Data); err != nil {
			return err
		}
		p.hasData = true
	}

	if raw, ok := envelope[countField]; ok && string(raw) != "null" {
		var total int64
		if err := json.Unmarshal(raw, &total); err != nil {
			return err
		}
		p.Total = &total
	}

	return nil
}

// PageCursor is the offset of the next request within one pass
type PageCursor struct {
	offset int
	done   bool
}

// Offset is the offset of the next request
func (c *PageCursor) Offset() int {
	return c.offset
}

// Done reports that the pass has read its last page
func (c *PageCursor) Done() bool {
	return c.done
}

// Paginator decides after every page whether the pass continues
type Paginator interface {
	Name() PolicyName
	HasMore(page *Page, cursorAfter int) bool
}

// Advance moves the cursor one page forward or marks the pass as done
func Advance(p Paginator, cursor *PageCursor, page *Page, pageSize int) {
	if cursor.done {
		return
	}

	next := cursor.offset + pageSize
	if !p.HasMore(page, next) {
		cursor.done = true
		return
	}
	cursor.offset = next
}

// EmptyPagePaginator reads until a page comes back without records
type EmptyPagePaginator struct{}

func (EmptyPagePaginator) Name() PolicyName {
	return EmptyPagePolicy
}

// HasMore keeps going after short pages; only an empty one ends the pass
func (EmptyPagePaginator) HasMore(page *Page, _ int) bool {
	return len(page.Data) > 0
}

// TotalCountPaginator reads until the offset reaches nbrofresults
type TotalCountPaginator struct{}

func (TotalCountPaginator) Name() PolicyName {
	return TotalCountPolicy
}

// HasMore treats a missing count as the last page
func (TotalCountPaginator) HasMore(page *Page, cursorAfter int) bool {
	if page.Total == nil {
		return false
	}
	return int64(cursorAfter) < *page.Total
}

// NewPaginator returns the paginator for a policy, defaulting to total count
func NewPaginator(policy PolicyName) Paginator {
	if policy == EmptyPagePolicy {
		return EmptyPagePaginator{}
	}
	return TotalCountPaginator{}
}

package notionapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

const childPageSize = 100

// ChildrenPage is one page of a block's direct children.
type ChildrenPage struct {
	Results    []Block `json:"results"`
	NextCursor string  `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// ListChildren retrieves one page of blockID's direct children.
// cursor is the continuation cursor from a previous page, or "" for the
// first page.
func (c *Client) ListChildren(ctx context.Context, blockID, cursor string) (*ChildrenPage, error) {
	q := url.Values{"page_size": {strconv.Itoa(childPageSize)}}
	if cursor != "" {
		q.Set("start_cursor", cursor)
	}

	var page ChildrenPage
	if err := c.get(ctx, "/blocks/"+url.PathEscape(blockID)+"/children", q, &page); err != nil {
		return nil, fmt.Errorf("list children of %s: %w", blockID, err)
	}
	return &page, nil
}

// FetchBlockTree returns the ordered direct children of rootID with Children
// populated recursively wherever the source flagged nested content, to
// unbounded depth. Pagination is transparent: pages are accumulated into one
// ordered sequence before returning.
//
// Fetches are strictly sequential in document order: a child's subtree is
// resolved before its next sibling is appended, which bounds outbound
// concurrency to one request at a time per traversal. Any failure propagates
// as a hard error with no partial result; retry is a caller concern.
func (c *Client) FetchBlockTree(ctx context.Context, rootID string) ([]Block, error) {
	var blocks []Block
	cursor := ""

	for {
		page, err := c.ListChildren(ctx, rootID, cursor)
		if err != nil {
			return nil, err
		}

		for _, block := range page.Results {
			if block.HasChildren {
				children, err := c.FetchBlockTree(ctx, block.ID)
				if err != nil {
					return nil, err
				}
				block.Children = children
			}
			blocks = append(blocks, block)
		}

		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	return blocks, nil
}

// RetrieveBlock fetches a single block by ID. Point lookup, no traversal.
func (c *Client) RetrieveBlock(ctx context.Context, blockID string) (*Block, error) {
	var block Block
	if err := c.get(ctx, "/blocks/"+url.PathEscape(blockID), nil, &block); err != nil {
		return nil, fmt.Errorf("retrieve block %s: %w", blockID, err)
	}
	return &block, nil
}

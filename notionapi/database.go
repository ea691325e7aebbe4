package notionapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// SelectOption is one value of a select or multi-select property.
type SelectOption struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Property is one page property. Type selects which field carries the value;
// accessors below are nil-safe so callers never probe fields directly.
type Property struct {
	Type        string         `json:"type,omitempty"`
	Title       []RichText     `json:"title,omitempty"`
	RichText    []RichText     `json:"rich_text,omitempty"`
	Select      *SelectOption  `json:"select,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
	Number      *float64       `json:"number,omitempty"`
	Checkbox    *bool          `json:"checkbox,omitempty"`
	URL         string         `json:"url,omitempty"`
}

// Page is one row of a Notion database.
type Page struct {
	ID         string              `json:"id"`
	Properties map[string]Property `json:"properties"`
}

// Title returns the plain text of a title property, or "".
func (p *Page) Title(name string) string {
	return joinPlain(p.Properties[name].Title)
}

// Text returns the plain text of a rich-text property, or "".
func (p *Page) Text(name string) string {
	return joinPlain(p.Properties[name].RichText)
}

// Select returns the selected option name, or "".
func (p *Page) Select(name string) string {
	if s := p.Properties[name].Select; s != nil {
		return s.Name
	}
	return ""
}

// MultiSelect returns all selected option names.
func (p *Page) MultiSelect(name string) []string {
	opts := p.Properties[name].MultiSelect
	if len(opts) == 0 {
		return nil
	}
	names := make([]string, len(opts))
	for i, o := range opts {
		names[i] = o.Name
	}
	return names
}

// Number returns a number property value and whether it was set.
func (p *Page) Number(name string) (float64, bool) {
	if n := p.Properties[name].Number; n != nil {
		return *n, true
	}
	return 0, false
}

type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

type queryResponse struct {
	Results    []Page `json:"results"`
	NextCursor string `json:"next_cursor"`
	HasMore    bool   `json:"has_more"`
}

// QueryDatabase lists all pages of a database, following pagination until
// the source signals no more pages. Order is source order.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string) ([]Page, error) {
	var pages []Page
	cursor := ""

	for {
		req := queryRequest{StartCursor: cursor, PageSize: childPageSize}
		var resp queryResponse
		path := "/databases/" + url.PathEscape(databaseID) + "/query"
		if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
			return nil, fmt.Errorf("query database %s: %w", databaseID, err)
		}
		pages = append(pages, resp.Results...)

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	return pages, nil
}

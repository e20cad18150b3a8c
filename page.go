package youte

import (
	"context"
	"encoding/json"
	"time"
)

// ResponsePage is one decoded provider response produced by a cursor fetch.
type ResponsePage struct {
	// Body is the raw response body exactly as the provider returned it.
	Body json.RawMessage

	// Response is the decoded variant of Body.
	Response Response

	// Cursor is the cursor that produced this page.
	Cursor PageCursor

	// Spec is the originating request template.
	Spec *RequestSpec

	RetrievedAt time.Time

	// Run and Session identify the collection run and the process
	// invocation that fetched the page.
	Run     string
	Session string
}

// NextPageToken returns the continuation token of the page, if any.
func (p *ResponsePage) NextPageToken() string {
	if p.Response == nil {
		return ""
	}
	return p.Response.Next()
}

// Items returns the page's items.
func (p *ResponsePage) Items() []Item {
	if p.Response == nil {
		return nil
	}
	return p.Response.Entries()
}

// PageMeta is the collector metadata attached to written pages.
type PageMeta struct {
	CollectedAt time.Time `json:"collected_at"`
	Run         string    `json:"run,omitempty"`
	Session     string    `json:"session,omitempty"`
	Owner       string    `json:"owner,omitempty"`
}

// Meta returns the metadata describing how the page was collected.
func (p *ResponsePage) Meta() PageMeta {
	return PageMeta{
		CollectedAt: p.RetrievedAt.UTC(),
		Run:         p.Run,
		Session:     p.Session,
		Owner:       p.Cursor.OwnerKey,
	}
}

// PageWriter persists collected pages.
type PageWriter interface {
	WritePage(ctx context.Context, page *ResponsePage) error
	Close() error
}

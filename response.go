package youte

import (
	"encoding/json"
	"fmt"
)

// Response list kinds returned by the provider.
const (
	KindSearchList        = "youtube#searchListResponse"
	KindVideoList         = "youtube#videoListResponse"
	KindChannelList       = "youtube#channelListResponse"
	KindCommentThreadList = "youtube#commentThreadListResponse"
	KindCommentList       = "youtube#commentListResponse"
)

// Response is a decoded list response. It is implemented only by
// SearchResponse, VideoChannelResponse and StandardResponse.
type Response interface {
	// ListKind returns the response kind discriminator.
	ListKind() string

	// Next returns the continuation token, or empty on the last page.
	Next() string

	// Entries returns the items in a kind-independent form.
	Entries() []Item

	isResponse()
}

// Item is one resource of a list response.
type Item struct {
	Kind string
	ID   string
	Raw  json.RawMessage
}

// PageInfo is the provider's paging summary.
type PageInfo struct {
	TotalResults   int `json:"totalResults"`
	ResultsPerPage int `json:"resultsPerPage"`
}

// SearchResponse is the body of a search.list call.
type SearchResponse struct {
	Kind          string         `json:"kind"`
	ETag          string         `json:"etag"`
	NextPageToken string         `json:"nextPageToken,omitempty"`
	PrevPageToken string         `json:"prevPageToken,omitempty"`
	RegionCode    string         `json:"regionCode,omitempty"`
	PageInfo      PageInfo       `json:"pageInfo"`
	Items         []SearchResult `json:"items"`
}

func (r *SearchResponse) ListKind() string { return r.Kind }
func (r *SearchResponse) Next() string     { return r.NextPageToken }
func (r *SearchResponse) isResponse()      {}

// Entries returns search results keyed by the id of the matched resource.
func (r *SearchResponse) Entries() []Item {
	items := make([]Item, 0, len(r.Items))
	for _, res := range r.Items {
		items = append(items, Item{Kind: res.ID.Kind, ID: res.ID.Value(), Raw: res.Raw})
	}
	return items
}

// SearchResult is one search hit. Its id is an object naming the matched
// resource rather than a plain string.
type SearchResult struct {
	Kind    string          `json:"kind"`
	ETag    string          `json:"etag"`
	ID      SearchID        `json:"id"`
	Snippet json.RawMessage `json:"snippet,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps the raw item alongside the typed fields.
func (r *SearchResult) UnmarshalJSON(data []byte) error {
	type alias SearchResult
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = SearchResult(a)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// SearchID identifies the resource a search result points at.
type SearchID struct {
	Kind       string `json:"kind"`
	VideoID    string `json:"videoId,omitempty"`
	ChannelID  string `json:"channelId,omitempty"`
	PlaylistID string `json:"playlistId,omitempty"`
}

// Value returns whichever id is set.
func (id SearchID) Value() string {
	switch {
	case id.VideoID != "":
		return id.VideoID
	case id.ChannelID != "":
		return id.ChannelID
	default:
		return id.PlaylistID
	}
}

// VideoChannelResponse is the body of videos.list and channels.list calls.
type VideoChannelResponse struct {
	Kind          string     `json:"kind"`
	ETag          string     `json:"etag"`
	NextPageToken string     `json:"nextPageToken,omitempty"`
	PrevPageToken string     `json:"prevPageToken,omitempty"`
	PageInfo      PageInfo   `json:"pageInfo"`
	Items         []Resource `json:"items"`
}

func (r *VideoChannelResponse) ListKind() string { return r.Kind }
func (r *VideoChannelResponse) Next() string     { return r.NextPageToken }
func (r *VideoChannelResponse) Entries() []Item  { return resourceItems(r.Items) }
func (r *VideoChannelResponse) isResponse()      {}

// StandardResponse is the body of commentThreads.list and comments.list calls.
type StandardResponse struct {
	Kind          string     `json:"kind"`
	ETag          string     `json:"etag"`
	NextPageToken string     `json:"nextPageToken,omitempty"`
	PageInfo      PageInfo   `json:"pageInfo"`
	Items         []Resource `json:"items"`
}

func (r *StandardResponse) ListKind() string { return r.Kind }
func (r *StandardResponse) Next() string     { return r.NextPageToken }
func (r *StandardResponse) Entries() []Item  { return resourceItems(r.Items) }
func (r *StandardResponse) isResponse()      {}

// Resource is an item whose id is a plain string.
type Resource struct {
	Kind string          `json:"kind"`
	ETag string          `json:"etag"`
	ID   string          `json:"id"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps the raw item alongside the typed fields.
func (r *Resource) UnmarshalJSON(data []byte) error {
	type alias Resource
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = Resource(a)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func resourceItems(resources []Resource) []Item {
	items := make([]Item, 0, len(resources))
	for _, res := range resources {
		items = append(items, Item{Kind: res.Kind, ID: res.ID, Raw: res.Raw})
	}
	return items
}

// DecodeResponse decodes a list response body into its tagged variant.
// Missing required fields return an EDECODE error.
func DecodeResponse(body []byte) (Response, error) {
	var head struct {
		Kind  *string         `json:"kind"`
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return nil, WrapError(EDECODE, err, "response is not a JSON object")
	}
	if head.Kind == nil || *head.Kind == "" {
		return nil, Errorf(EDECODE, "response missing kind")
	}
	if head.Items == nil {
		return nil, Errorf(EDECODE, "%s response missing items", *head.Kind)
	}

	var resp Response
	switch *head.Kind {
	case KindSearchList:
		resp = &SearchResponse{}
	case KindVideoList, KindChannelList:
		resp = &VideoChannelResponse{}
	case KindCommentThreadList, KindCommentList:
		resp = &StandardResponse{}
	default:
		return nil, Errorf(EDECODE, "unsupported response kind %q", *head.Kind)
	}

	if err := json.Unmarshal(body, resp); err != nil {
		return nil, WrapError(EDECODE, err, "decode %s", *head.Kind)
	}
	for i, item := range resp.Entries() {
		if item.ID == "" {
			return nil, Errorf(EDECODE, "%s item %d missing id", *head.Kind, i)
		}
	}
	return resp, nil
}

// ProviderError is the provider's error envelope.
type ProviderError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Domain  string `json:"domain"`
			Reason  string `json:"reason"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"error"`
}

// DecodeProviderError decodes an error body.
func DecodeProviderError(body []byte) (*ProviderError, error) {
	var pe ProviderError
	if err := json.Unmarshal(body, &pe); err != nil {
		return nil, fmt.Errorf("decode error body: %w", err)
	}
	if pe.Error.Code == 0 && len(pe.Error.Errors) == 0 {
		return nil, fmt.Errorf("decode error body: no error object")
	}
	return &pe, nil
}

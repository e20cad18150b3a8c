package youte

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is the root of the YouTube Data API v3.
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

// MaxBatchIDs is the provider's ceiling for ids in one batched request.
const MaxBatchIDs = 50

// Default resource parts requested for hydration.
const (
	VideoParts   = "snippet,statistics,topicDetails,status,contentDetails,recordingDetails,id,liveStreamingDetails"
	ChannelParts = "snippet,statistics,topicDetails,status,contentDetails,brandingSettings,contentOwnerDetails"
)

// Mode is the pagination shape of an endpoint.
type Mode int

// Pagination modes.
const (
	// ModePlain follows nextPageToken from a single base request.
	ModePlain Mode = iota
	// ModeBatchedIDs sends up to MaxBatchIDs ids per request; each batch
	// is exactly one page.
	ModeBatchedIDs
	// ModePerItem runs an independent pagination loop for every id.
	ModePerItem
)

// String returns the mode tag.
func (m Mode) String() string {
	switch m {
	case ModePlain:
		return "plain-paginated"
	case ModeBatchedIDs:
		return "batched-ids"
	case ModePerItem:
		return "per-item-paginated"
	default:
		return "unknown"
	}
}

// Endpoint describes one API resource the collector knows how to page through.
type Endpoint struct {
	// Name identifies the endpoint in run metadata and CLI output.
	Name string

	// Path is appended to the base URL.
	Path string

	// Cost is the quota units billed per call.
	Cost int

	// Mode is the pagination shape, fixed per endpoint.
	Mode Mode

	// IDParam is the query parameter that carries the owner key.
	// Empty for ModePlain.
	IDParam string

	// Fixed parameters always sent to this endpoint.
	Fixed map[string]string
}

// Endpoint catalog.
var (
	EndpointSearch = &Endpoint{
		Name: "search", Path: "/search", Cost: 100, Mode: ModePlain,
		Fixed: map[string]string{"part": "snippet"},
	}
	EndpointVideos = &Endpoint{
		Name: "videos", Path: "/videos", Cost: 1, Mode: ModeBatchedIDs, IDParam: "id",
		Fixed: map[string]string{"part": VideoParts},
	}
	EndpointChannels = &Endpoint{
		Name: "channels", Path: "/channels", Cost: 1, Mode: ModeBatchedIDs, IDParam: "id",
		Fixed: map[string]string{"part": ChannelParts},
	}
	EndpointComments = &Endpoint{
		Name: "comments", Path: "/comments", Cost: 1, Mode: ModeBatchedIDs, IDParam: "id",
		Fixed: map[string]string{"part": "snippet"},
	}
	EndpointVideoThreads = &Endpoint{
		Name: "video-threads", Path: "/commentThreads", Cost: 1, Mode: ModePerItem, IDParam: "videoId",
		Fixed: map[string]string{"part": "snippet,replies"},
	}
	EndpointChannelThreads = &Endpoint{
		Name: "channel-threads", Path: "/commentThreads", Cost: 1, Mode: ModePerItem, IDParam: "allThreadsRelatedToChannelId",
		Fixed: map[string]string{"part": "snippet,replies"},
	}
	EndpointReplies = &Endpoint{
		Name: "replies", Path: "/comments", Cost: 1, Mode: ModePerItem, IDParam: "parentId",
		Fixed: map[string]string{"part": "snippet"},
	}
	EndpointChart = &Endpoint{
		Name: "chart", Path: "/videos", Cost: 1, Mode: ModePlain,
		Fixed: map[string]string{"chart": "mostPopular", "part": VideoParts},
	}
)

// Endpoints lists the catalog in a stable order.
func Endpoints() []*Endpoint {
	return []*Endpoint{
		EndpointSearch, EndpointVideos, EndpointChannels, EndpointComments,
		EndpointVideoThreads, EndpointChannelThreads, EndpointReplies, EndpointChart,
	}
}

// FindEndpoint returns the catalog entry with the given name.
func FindEndpoint(name string) (*Endpoint, error) {
	for _, e := range Endpoints() {
		if e.Name == name {
			return e, nil
		}
	}
	return nil, Errorf(ENOTFOUND, "unknown endpoint %q", name)
}

// RequestSpec is one read-only request template. The executor merges a
// cursor's owner key and token into Params for each call.
type RequestSpec struct {
	URL     string
	Params  url.Values
	Cost    int
	Mode    Mode
	IDParam string
}

// NewRequestSpec builds the request template for an endpoint.
// Run parameters override the endpoint's fixed parameters.
func NewRequestSpec(baseURL string, e *Endpoint, params map[string]string) *RequestSpec {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	values := url.Values{}
	for k, v := range e.Fixed {
		values.Set(k, v)
	}
	for k, v := range params {
		if v == "" {
			continue
		}
		values.Set(k, v)
	}
	return &RequestSpec{
		URL:     strings.TrimSuffix(baseURL, "/") + e.Path,
		Params:  values,
		Cost:    e.Cost,
		Mode:    e.Mode,
		IDParam: e.IDParam,
	}
}

// Query returns the parameters for fetching cursor. The template is not modified.
func (s *RequestSpec) Query(cursor PageCursor) url.Values {
	q := url.Values{}
	for k, v := range s.Params {
		q[k] = append([]string(nil), v...)
	}
	if s.IDParam != "" && cursor.OwnerKey != "" {
		q.Set(s.IDParam, cursor.OwnerKey)
	}
	if cursor.Token != "" {
		q.Set("pageToken", cursor.Token)
	}
	return q
}

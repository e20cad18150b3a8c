package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/youte"
	"github.com/fwojciec/youte/collect"
	"github.com/fwojciec/youte/fs"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	params, err := c.params(c.Query, c.Type)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
		return err
	}
	return collectRun(deps, &c.CollectFlags, collect.Run{ID: c.RunID, Params: params})
}

func (c *SearchFilters) params(query, types string) (youte.RunParams, error) {
	if err := checkMaxResults(c.MaxResults, 50); err != nil {
		return youte.RunParams{}, err
	}
	if (c.Location == "") != (c.Radius == "") {
		return youte.RunParams{}, youte.Errorf(youte.EINVALID, "--location and --radius must be used together")
	}
	from, err := apiDate(c.From, "--from")
	if err != nil {
		return youte.RunParams{}, err
	}
	to, err := apiDate(c.To, "--to")
	if err != nil {
		return youte.RunParams{}, err
	}

	return youte.RunParams{
		Endpoint: youte.EndpointSearch.Name,
		Params: map[string]string{
			"q":                 query,
			"type":              types,
			"order":             c.Order,
			"safeSearch":        c.SafeSearch,
			"relevanceLanguage": c.Lang,
			"regionCode":        strings.ToUpper(c.Region),
			"channelId":         c.ChannelID,
			"publishedAfter":    from,
			"publishedBefore":   to,
			"videoDuration":     c.VideoDuration,
			"videoDefinition":   c.VideoDefinition,
			"videoCaption":      c.VideoCaption,
			"videoLicense":      c.VideoLicense,
			"location":          c.Location,
			"locationRadius":    c.Radius,
			"maxResults":        strconv.Itoa(c.MaxResults),
		},
		MaxPages: c.MaxPages,
	}, nil
}

// Run executes the videos command.
func (c *VideosCmd) Run(deps *Dependencies) error {
	return runIDs(deps, &c.RunFlags, &c.IDFlags, youte.RunParams{Endpoint: youte.EndpointVideos.Name})
}

// Run executes the channels command.
func (c *ChannelsCmd) Run(deps *Dependencies) error {
	return runIDs(deps, &c.RunFlags, &c.IDFlags, youte.RunParams{Endpoint: youte.EndpointChannels.Name})
}

// Run executes the comments command.
func (c *CommentsCmd) Run(deps *Dependencies) error {
	params, err := c.params()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
		return err
	}
	return runIDs(deps, &c.RunFlags, &c.IDFlags, params)
}

func (c *CommentsCmd) params() (youte.RunParams, error) {
	if c.ByVideo && c.ByChannel {
		return youte.RunParams{}, youte.Errorf(youte.EINVALID, "--by-video and --by-channel are mutually exclusive")
	}
	if !c.ByVideo && !c.ByChannel {
		// Lookups by comment id take neither paging nor filters.
		return youte.RunParams{
			Endpoint: youte.EndpointComments.Name,
			Params:   map[string]string{"textFormat": c.TextFormat},
		}, nil
	}
	if err := checkMaxResults(c.MaxResults, 100); err != nil {
		return youte.RunParams{}, err
	}

	endpoint := youte.EndpointVideoThreads
	if c.ByChannel {
		endpoint = youte.EndpointChannelThreads
	}
	return youte.RunParams{
		Endpoint: endpoint.Name,
		Params: map[string]string{
			"order":       c.Order,
			"textFormat":  c.TextFormat,
			"searchTerms": c.Query,
			"maxResults":  strconv.Itoa(c.MaxResults),
		},
		MaxPages: c.MaxPages,
	}, nil
}

// Run executes the replies command.
func (c *RepliesCmd) Run(deps *Dependencies) error {
	if err := checkMaxResults(c.MaxResults, 100); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
		return err
	}
	return runIDs(deps, &c.RunFlags, &c.IDFlags, youte.RunParams{
		Endpoint: youte.EndpointReplies.Name,
		Params: map[string]string{
			"textFormat": c.TextFormat,
			"maxResults": strconv.Itoa(c.MaxResults),
		},
		MaxPages: c.MaxPages,
	})
}

// Run executes the chart command.
func (c *ChartCmd) Run(deps *Dependencies) error {
	if err := checkMaxResults(c.MaxResults, 50); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
		return err
	}
	return collectRun(deps, &c.CollectFlags, collect.Run{
		ID: c.RunID,
		Params: youte.RunParams{
			Endpoint: youte.EndpointChart.Name,
			Params: map[string]string{
				"regionCode":      strings.ToUpper(c.Region),
				"videoCategoryId": c.Category,
				"maxResults":      strconv.Itoa(c.MaxResults),
			},
			MaxPages: c.MaxPages,
		},
	})
}

// Run executes the resume command.
func (c *ResumeCmd) Run(deps *Dependencies) error {
	return collectRun(deps, &c.CollectFlags, collect.Run{ID: c.ID})
}

// runIDs starts a run over the ids given as arguments or in a file.
func runIDs(deps *Dependencies, f *RunFlags, ids *IDFlags, params youte.RunParams) error {
	all, err := ids.read()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
		return err
	}
	params.IDs = all
	return collectRun(deps, &f.CollectFlags, collect.Run{ID: f.RunID, Params: params})
}

// read returns the ids of the arguments followed by those of the file.
func (f *IDFlags) read() ([]string, error) {
	ids := append([]string(nil), f.IDs...)
	if f.File != "" {
		fromFile, err := fs.ReadIDsFile(f.File)
		if err != nil {
			return nil, err
		}
		ids = append(ids, fromFile...)
	}
	if len(ids) == 0 {
		return nil, youte.Errorf(youte.EINVALID, "no ids given; pass them as arguments or with --file")
	}
	return ids, nil
}

func checkMaxResults(n, limit int) error {
	if n < 0 || n > limit {
		return youte.Errorf(youte.EINVALID, "--max-results must be between 0 and %d", limit)
	}
	return nil
}

// apiDate converts a YYYY-MM-DD flag value into the provider's timestamp
// format. Empty values stay empty.
func apiDate(value, flag string) (string, error) {
	if value == "" {
		return "", nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return "", youte.Errorf(youte.EINVALID, "%s must be a date in YYYY-MM-DD format", flag)
	}
	return t.Format("2006-01-02T15:04:05Z"), nil
}

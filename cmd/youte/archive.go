package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/fwojciec/youte"
	"github.com/fwojciec/youte/collect"
	"github.com/fwojciec/youte/csv"
	"github.com/fwojciec/youte/sqlite"
)

// Archive stages, in the order they run.
const (
	stageVideo   = "video"
	stageChannel = "channel"
	stageThread  = "thread"
	stageReply   = "reply"
)

// Run executes the archive command: a video search whose results feed the
// selected hydration stages, all stored in one archive.
func (c *ArchiveCmd) Run(deps *Dependencies) error {
	if err := c.checkStages(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
		return err
	}
	search, err := c.params(c.Query, "video")
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
		return err
	}

	f := &CollectFlags{KeyFlags: c.KeyFlags, ToDB: c.DB, MaxQuota: c.MaxQuota, RPS: c.RPS}

	fmt.Fprintf(deps.Stderr, "Searching %q\n", c.Query)
	searchRun, err := runCollection(deps, f, collect.Run{Params: search})
	if err != nil {
		return err
	}

	archive, err := sqlite.OpenArchive(c.DB, csv.NewFlattener(deps.Converter))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
		return err
	}
	defer archive.Close()

	// stage hydrates the values selected by q with one run of params.
	stage := func(name string, q sqlite.ValueQuery, params youte.RunParams) (string, error) {
		ids, err := archive.Values(deps.Ctx, q)
		if err != nil && youte.ErrorCode(err) != youte.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
			return "", err
		}
		if len(ids) == 0 {
			fmt.Fprintf(deps.Stderr, "No %s to collect.\n", name)
			return "", nil
		}
		fmt.Fprintf(deps.Stderr, "Collecting %s for %d ids\n", name, len(ids))
		params.IDs = ids
		return runCollection(deps, f, collect.Run{Params: params})
	}

	videoIDs := sqlite.ValueQuery{Run: searchRun, Table: csv.SearchTable.Name, Column: "id"}
	if c.selected(stageVideo) {
		if _, err := stage("videos", videoIDs, youte.RunParams{Endpoint: youte.EndpointVideos.Name}); err != nil {
			return err
		}
	}
	if c.selected(stageChannel) {
		channelIDs := sqlite.ValueQuery{Run: searchRun, Table: csv.SearchTable.Name, Column: "channel_id"}
		if _, err := stage("channels", channelIDs, youte.RunParams{Endpoint: youte.EndpointChannels.Name}); err != nil {
			return err
		}
	}
	if c.selected(stageThread) {
		threadRun, err := stage("comment threads", videoIDs, youte.RunParams{
			Endpoint: youte.EndpointVideoThreads.Name,
			Params:   map[string]string{"order": "time", "textFormat": "html", "maxResults": "100"},
		})
		if err != nil {
			return err
		}
		if c.selected(stageReply) && threadRun != "" {
			replied := sqlite.ValueQuery{
				Run: threadRun, Table: csv.CommentTable.Name, Column: "comment_id", Positive: "reply_count",
			}
			if _, err := stage("replies", replied, youte.RunParams{
				Endpoint: youte.EndpointReplies.Name,
				Params:   map[string]string{"textFormat": "html", "maxResults": "100"},
			}); err != nil {
				return err
			}
		}
	}

	return c.summary(deps.Ctx, deps, archive)
}

// checkStages validates --select.
func (c *ArchiveCmd) checkStages() error {
	for _, s := range c.Select {
		switch s {
		case stageVideo, stageChannel, stageThread, stageReply:
		default:
			return youte.Errorf(youte.EINVALID, "unknown stage %q; choose from video, channel, thread, reply", s)
		}
	}
	if c.selected(stageReply) && !c.selected(stageThread) {
		return youte.Errorf(youte.EINVALID, "the reply stage needs the thread stage")
	}
	return nil
}

func (c *ArchiveCmd) selected(stage string) bool {
	return slices.Contains(c.Select, stage)
}

func (c *ArchiveCmd) summary(ctx context.Context, deps *Dependencies, archive *sqlite.Archive) error {
	counts, err := archive.Counts(ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Archive %s:\n", c.DB)
	for _, tc := range counts {
		fmt.Fprintf(deps.Stdout, "  %-15s %d\n", tc.Table, tc.Items)
	}
	return nil
}

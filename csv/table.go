// Package csv flattens collected responses into CSV tables, one fixed
// column layout per resource family.
package csv

import (
	"strings"

	"github.com/fwojciec/youte"
)

// Column is one CSV column. Its value is read from the first path that is
// present in the item.
type Column struct {
	Name  string
	Paths [][]string

	// HTML marks display fields rendered through the converter.
	HTML bool
}

// Table is the column layout of one resource family.
type Table struct {
	Name    string
	Columns []Column
}

// Header returns the column names.
func (t *Table) Header() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

func col(name string, paths ...string) Column {
	c := Column{Name: name}
	for _, p := range paths {
		c.Paths = append(c.Paths, strings.Split(p, "."))
	}
	return c
}

func htmlCol(name string, paths ...string) Column {
	c := col(name, paths...)
	c.HTML = true
	return c
}

// Table layouts.
var (
	SearchTable = &Table{Name: "search_results", Columns: []Column{
		col("id", "id.videoId", "id.channelId", "id.playlistId"),
		col("kind", "id.kind"),
		col("published_at", "snippet.publishedAt"),
		col("channel_id", "snippet.channelId"),
		htmlCol("title", "snippet.title"),
		htmlCol("description", "snippet.description"),
		col("channel_title", "snippet.channelTitle"),
		col("live_broadcast_content", "snippet.liveBroadcastContent"),
		col("thumbnails", "snippet.thumbnails"),
	}}

	VideoTable = &Table{Name: "videos", Columns: []Column{
		col("video_id", "id"),
		col("published_at", "snippet.publishedAt"),
		col("channel_id", "snippet.channelId"),
		col("title", "snippet.title"),
		col("description", "snippet.description"),
		col("channel_title", "snippet.channelTitle"),
		col("tags", "snippet.tags"),
		col("category_id", "snippet.categoryId"),
		col("default_language", "snippet.defaultLanguage"),
		col("default_audio_language", "snippet.defaultAudioLanguage"),
		col("duration", "contentDetails.duration"),
		col("definition", "contentDetails.definition"),
		col("caption", "contentDetails.caption"),
		col("region_allowed", "contentDetails.regionRestriction.allowed"),
		col("region_blocked", "contentDetails.regionRestriction.blocked"),
		col("yt_rating", "contentDetails.contentRating.ytRating"),
		col("privacy_status", "status.privacyStatus"),
		col("license", "status.license"),
		col("made_for_kids", "status.madeForKids"),
		col("view_count", "statistics.viewCount"),
		col("like_count", "statistics.likeCount"),
		col("comment_count", "statistics.commentCount"),
		col("topic_categories", "topicDetails.topicCategories"),
		col("recording_location", "recordingDetails.location"),
	}}

	ChannelTable = &Table{Name: "channels", Columns: []Column{
		col("channel_id", "id"),
		col("title", "snippet.title"),
		col("description", "snippet.description"),
		col("custom_url", "snippet.customUrl"),
		col("published_at", "snippet.publishedAt"),
		col("country", "snippet.country"),
		col("related_playlists_uploads", "contentDetails.relatedPlaylists.uploads"),
		col("view_count", "statistics.viewCount"),
		col("subscriber_count", "statistics.subscriberCount"),
		col("hidden_subscriber_count", "statistics.hiddenSubscriberCount"),
		col("video_count", "statistics.videoCount"),
		col("topic_categories", "topicDetails.topicCategories"),
		col("privacy_status", "status.privacyStatus"),
		col("made_for_kids", "status.madeForKids"),
		col("keywords", "brandingSettings.channel.keywords"),
	}}

	// CommentTable serves both comment threads and plain comments. Thread
	// fields live under snippet.topLevelComment.snippet.
	CommentTable = &Table{Name: "comments", Columns: []Column{
		col("comment_id", "id"),
		col("video_id", "snippet.topLevelComment.snippet.videoId", "snippet.videoId"),
		col("channel_id", "snippet.channelId", "snippet.topLevelComment.snippet.channelId"),
		col("parent_id", "snippet.parentId"),
		htmlCol("text_display", "snippet.topLevelComment.snippet.textDisplay", "snippet.textDisplay"),
		col("text_original", "snippet.topLevelComment.snippet.textOriginal", "snippet.textOriginal"),
		col("author_name", "snippet.topLevelComment.snippet.authorDisplayName", "snippet.authorDisplayName"),
		col("author_channel_id", "snippet.topLevelComment.snippet.authorChannelId.value", "snippet.authorChannelId.value"),
		col("like_count", "snippet.topLevelComment.snippet.likeCount", "snippet.likeCount"),
		col("published_at", "snippet.topLevelComment.snippet.publishedAt", "snippet.publishedAt"),
		col("updated_at", "snippet.topLevelComment.snippet.updatedAt", "snippet.updatedAt"),
		col("reply_count", "snippet.totalReplyCount"),
		col("can_reply", "snippet.canReply"),
	}}
)

// TableFor returns the layout for a response list kind.
func TableFor(listKind string) (*Table, error) {
	switch listKind {
	case youte.KindSearchList:
		return SearchTable, nil
	case youte.KindVideoList:
		return VideoTable, nil
	case youte.KindChannelList:
		return ChannelTable, nil
	case youte.KindCommentThreadList, youte.KindCommentList:
		return CommentTable, nil
	default:
		return nil, youte.Errorf(youte.EINVALID, "no table for response kind %q", listKind)
	}
}

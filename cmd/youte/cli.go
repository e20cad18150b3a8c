package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/youte"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Clock     youte.Clock
	Profiles  youte.ProfileService
	Stores    youte.ProgressStoreService
	Quota     youte.QuotaLedger
	Converter youte.Converter

	// NewExecutor builds the executor authenticating with an API key.
	NewExecutor func(apiKey string) youte.RequestExecutor

	// Engine settings shared by all collection commands.
	BaseURL     string
	RetryDelays []time.Duration
	Jitter      float64
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool   `short:"v" help:"Log every API call"`
	LogFile string `name:"log-file" type:"path" help:"Write logs to a rotating file instead of stderr"`

	Search    SearchCmd    `cmd:"" help:"Search videos, channels or playlists"`
	Videos    VideosCmd    `cmd:"" help:"Hydrate video ids with full metadata"`
	Channels  ChannelsCmd  `cmd:"" help:"Hydrate channel ids with full metadata"`
	Comments  CommentsCmd  `cmd:"" help:"Get comments by id, or comment threads of videos or channels"`
	Replies   RepliesCmd   `cmd:"" help:"Get replies to comment threads"`
	Chart     ChartCmd     `cmd:"" help:"Get the most popular videos of a region"`
	Archive   ArchiveCmd   `cmd:"" help:"Search, then archive the videos, channels, comments and replies found"`
	Resume    ResumeCmd    `cmd:"" help:"Resume an interrupted run"`
	History   HistoryCmd   `cmd:"" help:"Manage resumable runs"`
	Config    ConfigCmd    `cmd:"" help:"Manage API keys"`
	Quota     QuotaCmd     `cmd:"" help:"Show quota usage of an API key"`
	Dehydrate DehydrateCmd `cmd:"" help:"Extract item ids from a JSONL file of responses"`
	Tidy      TidyCmd      `cmd:"" help:"Flatten a JSONL file of responses into CSV"`
}

// KeyFlags select the API key billed by a command.
type KeyFlags struct {
	Key  string `env:"YOUTE_API_KEY" help:"YouTube API key"`
	Name string `help:"Name of a stored API key (default profile if unset)"`
}

// CollectFlags are shared by all collection commands.
type CollectFlags struct {
	KeyFlags `embed:""`

	Output   string  `short:"o" type:"path" help:"Append JSON lines to file instead of stdout"`
	ToCSV    string  `name:"to-csv" type:"path" help:"Append flattened rows to a CSV file"`
	ToDB     string  `name:"to-db" type:"path" help:"Store flattened items in a SQLite archive"`
	MaxQuota int     `name:"max-quota" default:"10000" help:"Daily quota ceiling of the API key"`
	RPS      float64 `name:"rps" default:"1" help:"Requests per second (0 disables pacing)"`
}

// RunFlags are shared by commands that start a run.
type RunFlags struct {
	CollectFlags `embed:""`

	RunID string `name:"run" help:"Name the run instead of deriving it from the parameters"`
}

// SearchFilters narrow a search.
type SearchFilters struct {
	From            string `help:"Only results published on or after this date (YYYY-MM-DD)"`
	To              string `help:"Only results published before this date (YYYY-MM-DD)"`
	Order           string `default:"date" enum:"date,rating,relevance,title,videoCount,viewCount" help:"Sort results"`
	SafeSearch      string `name:"safe-search" default:"none" enum:"none,moderate,strict" help:"Include or exclude restricted content"`
	Lang            string `help:"Prefer results relevant to a language (ISO 639-1)"`
	Region          string `default:"US" help:"Only videos viewable in a country (ISO 3166-1 alpha-2)"`
	ChannelID       string `name:"channel-id" help:"Only results created by a channel"`
	VideoDuration   string `name:"video-duration" enum:",any,long,medium,short" default:"" help:"Filter videos by duration"`
	VideoDefinition string `name:"video-definition" enum:",any,high,standard" default:"" help:"Filter videos by definition"`
	VideoCaption    string `name:"caption" enum:",any,closedCaption,none" default:"" help:"Filter videos by captions"`
	VideoLicense    string `name:"license" enum:",any,creativeCommon,youtube" default:"" help:"Filter videos by license"`
	Location        string `help:"Latitude,longitude to restrict the search to (requires --radius)"`
	Radius          string `help:"Radius around --location, e.g. 10km"`
	MaxResults      int    `name:"max-results" default:"50" help:"Results per page (0-50)"`
	MaxPages        int    `name:"max-pages" short:"m" help:"Maximum number of pages to retrieve"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	RunFlags      `embed:""`
	SearchFilters `embed:""`

	Query string `arg:"" help:"Search terms"`
	Type  string `default:"video" help:"Resource types to search (video, channel, playlist; comma separated)"`
}

// ArchiveCmd is the "archive" subcommand.
type ArchiveCmd struct {
	KeyFlags      `embed:""`
	SearchFilters `embed:""`

	Query    string   `arg:"" help:"Search terms"`
	DB       string   `arg:"" type:"path" help:"SQLite archive to store items in"`
	Select   []string `default:"video,channel,thread,reply" help:"Stages after the search (video, channel, thread, reply)"`
	MaxQuota int      `name:"max-quota" default:"10000" help:"Daily quota ceiling of the API key"`
	RPS      float64  `name:"rps" default:"1" help:"Requests per second (0 disables pacing)"`
}

// IDFlags read ids from arguments or a file.
type IDFlags struct {
	IDs  []string `arg:"" optional:"" name:"ids" help:"Resource ids"`
	File string   `short:"f" type:"path" help:"Read ids from a file (one per line, or JSON lines of responses)"`
}

// VideosCmd is the "videos" subcommand.
type VideosCmd struct {
	RunFlags `embed:""`
	IDFlags  `embed:""`
}

// ChannelsCmd is the "channels" subcommand.
type ChannelsCmd struct {
	RunFlags `embed:""`
	IDFlags  `embed:""`
}

// CommentsCmd is the "comments" subcommand.
type CommentsCmd struct {
	RunFlags `embed:""`
	IDFlags  `embed:""`

	ByVideo    bool   `name:"by-video" help:"Treat ids as videos and get all their comment threads"`
	ByChannel  bool   `name:"by-channel" help:"Treat ids as channels and get all comment threads related to them"`
	Order      string `default:"time" enum:"time,relevance" help:"Sort comment threads"`
	TextFormat string `name:"text-format" default:"html" enum:"html,plainText" help:"Format of returned comment text"`
	Query      string `short:"q" help:"Only comment threads matching these terms"`
	MaxResults int    `name:"max-results" default:"100" help:"Results per page (0-100)"`
	MaxPages   int    `name:"max-pages" short:"m" help:"Maximum number of pages per video or channel"`
}

// RepliesCmd is the "replies" subcommand.
type RepliesCmd struct {
	RunFlags `embed:""`
	IDFlags  `embed:""`

	TextFormat string `name:"text-format" default:"html" enum:"html,plainText" help:"Format of returned comment text"`
	MaxResults int    `name:"max-results" default:"100" help:"Results per page (0-100)"`
	MaxPages   int    `name:"max-pages" short:"m" help:"Maximum number of pages per thread"`
}

// ChartCmd is the "chart" subcommand.
type ChartCmd struct {
	RunFlags `embed:""`

	Region     string `arg:"" optional:"" default:"us" help:"Region code (ISO 3166-1 alpha-2)"`
	Category   string `name:"video-category" help:"Only videos of this category id"`
	MaxResults int    `name:"max-results" default:"50" help:"Results per page (0-50)"`
	MaxPages   int    `name:"max-pages" short:"m" help:"Maximum number of pages to retrieve"`
}

// ResumeCmd is the "resume" subcommand.
type ResumeCmd struct {
	CollectFlags `embed:""`

	ID string `arg:"" name:"run" help:"Run identifier (see 'youte history list')"`
}

// HistoryCmd groups the run history subcommands.
type HistoryCmd struct {
	List   HistoryListCmd   `cmd:"" help:"List runs with stored progress"`
	Remove HistoryRemoveCmd `cmd:"" help:"Discard the stored progress of a run"`
}

// HistoryListCmd is the "history list" subcommand.
type HistoryListCmd struct{}

// HistoryRemoveCmd is the "history remove" subcommand.
type HistoryRemoveCmd struct {
	ID string `arg:"" name:"run" help:"Run identifier"`
}

// ConfigCmd groups the API key subcommands.
type ConfigCmd struct {
	AddKey     ConfigAddKeyCmd     `cmd:"" name:"add-key" help:"Store an API key under a name"`
	List       ConfigListCmd       `cmd:"" help:"List stored API keys"`
	SetDefault ConfigSetDefaultCmd `cmd:"" name:"set-default" help:"Make a stored key the default"`
	Remove     ConfigRemoveCmd     `cmd:"" help:"Remove a stored key"`
}

// ConfigAddKeyCmd is the "config add-key" subcommand.
type ConfigAddKeyCmd struct {
	Name    string `arg:"" help:"Name of the key"`
	Key     string `arg:"" help:"YouTube API key"`
	Default bool   `help:"Make this key the default"`
}

// ConfigListCmd is the "config list" subcommand.
type ConfigListCmd struct{}

// ConfigSetDefaultCmd is the "config set-default" subcommand.
type ConfigSetDefaultCmd struct {
	Name string `arg:"" help:"Name of the key"`
}

// ConfigRemoveCmd is the "config remove" subcommand.
type ConfigRemoveCmd struct {
	Name string `arg:"" help:"Name of the key"`
}

// QuotaCmd is the "quota" subcommand.
type QuotaCmd struct {
	KeyFlags `embed:""`

	MaxQuota int `name:"max-quota" default:"10000" help:"Daily quota ceiling of the API key"`
}

// DehydrateCmd is the "dehydrate" subcommand.
type DehydrateCmd struct {
	File   string `arg:"" type:"existingfile" help:"JSONL file of responses"`
	Output string `short:"o" type:"path" help:"Write ids to file instead of stdout"`
}

// TidyCmd is the "tidy" subcommand.
type TidyCmd struct {
	File   string `arg:"" type:"existingfile" help:"JSONL file of responses"`
	Output string `arg:"" type:"path" help:"CSV file to append rows to"`
}

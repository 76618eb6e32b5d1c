// Package youtube generates the channel profile report from the YouTube Data
// API. All calls require OAuth credentials; the channel is the authorized
// user's own (mine=true).
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"

	"github.com/jaipkapoor99/the-automaton/internal/observability"
	"github.com/jaipkapoor99/the-automaton/internal/report"
)

// pageSize is the per-request item count for paginated listings.
const pageSize = 50

// maxPlaylistVideos caps the videos collected per playlist, including the
// special liked-videos and watch-history playlists.
const maxPlaylistVideos = 500

// Special playlist identifiers. Both may be private or disabled for a
// channel, which is tolerated.
const (
	likedVideosPlaylist  = "LL"
	watchHistoryPlaylist = "HL"
)

// NewService builds a YouTube Data API service from an authenticated HTTP
// client.
func NewService(ctx context.Context, client *http.Client) (*youtube.Service, error) {
	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return svc, nil
}

// Generator produces the YouTube channel report.
type Generator struct {
	channelID  string
	outputPath string
	svc        *youtube.Service
	printer    *observability.Printer
}

// NewGenerator creates a YouTube channel profile generator.
func NewGenerator(channelID, outputPath string, svc *youtube.Service, printer *observability.Printer) *Generator {
	return &Generator{
		channelID:  channelID,
		outputPath: outputPath,
		svc:        svc,
		printer:    printer,
	}
}

// Name returns the workflow name of this generator.
func (g *Generator) Name() string { return "youtube" }

// Generate fetches channel stats, playlists with per-video statistics, the
// special liked-videos and watch-history playlists, and subscriptions, then
// writes the report. The channel summary is required; everything after it is
// best-effort.
func (g *Generator) Generate(ctx context.Context) error {
	if g.channelID == "" {
		return errors.New("YouTube channel ID not set: set YOUTUBE_CHANNEL_ID in your .env file")
	}
	g.printer.Progress("Generating YouTube profile for channel %s...", g.channelID)

	channel, err := g.channelStats(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch channel data: %w", err)
	}

	b := report.New()
	b.Title(fmt.Sprintf("# YouTube Channel Stats: %s", orNA(channel.Snippet.Title)))
	b.Add("\n" + separator() + "\n")
	b.Add("## 1. Channel Summary\n")
	b.Addf("- **Subscribers:** %d", channel.Statistics.SubscriberCount)
	b.Addf("- **Total Views:** %d", channel.Statistics.ViewCount)
	b.Addf("- **Total Videos:** %d", channel.Statistics.VideoCount)
	b.Addf("- **Published At:** %s", orNA(channel.Snippet.PublishedAt))
	b.Add("\n" + separator() + "\n")

	g.addPlaylists(ctx, b)
	g.addSpecialPlaylist(ctx, b, likedVideosPlaylist, "## 3. Liked Videos (Last 500)")
	g.addSpecialPlaylist(ctx, b, watchHistoryPlaylist, "## 4. Watch History (Last 500 Videos)")
	g.addSubscriptions(ctx, b)

	if err := b.WriteFile(g.outputPath); err != nil {
		return err
	}
	g.printer.Progress("Successfully generated YouTube profile at %s", g.outputPath)
	return nil
}

func (g *Generator) channelStats(ctx context.Context) (*youtube.Channel, error) {
	resp, err := g.svc.Channels.List([]string{"snippet", "contentDetails", "statistics"}).
		Mine(true).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, errors.New("no channel returned for the authorized user")
	}
	return resp.Items[0], nil
}

func (g *Generator) addPlaylists(ctx context.Context, b *report.Builder) {
	playlists, err := collectPages(func(pageToken string) ([]*youtube.Playlist, string, error) {
		resp, err := g.svc.Playlists.List([]string{"snippet", "contentDetails"}).
			Mine(true).MaxResults(pageSize).PageToken(pageToken).Context(ctx).Do()
		if err != nil {
			return nil, "", err
		}
		return resp.Items, resp.NextPageToken, nil
	}, 0)
	if err != nil {
		g.printer.Progress("Could not fetch playlists: %v", err)
		return
	}
	if len(playlists) == 0 {
		return
	}

	b.Add("## 2. Playlists\n")
	for _, playlist := range playlists {
		b.Addf("### %s\n", orNA(playlist.Snippet.Title))
		videos, err := g.playlistVideos(ctx, playlist.Id)
		if err != nil {
			g.printer.Progress("Could not fetch videos for playlist %s: %v", playlist.Id, err)
			continue
		}
		for _, video := range videos {
			b.Addf("- **%s**", orNA(video.Snippet.Title))
			stats, err := g.videoStats(ctx, video.Snippet.ResourceId.VideoId)
			if err != nil || stats == nil {
				continue
			}
			b.Addf("  - Views: %d", stats.ViewCount)
			b.Addf("  - Likes: %d", stats.LikeCount)
			b.Addf("  - Comments: %d", stats.CommentCount)
		}
	}
}

func (g *Generator) playlistVideos(ctx context.Context, playlistID string) ([]*youtube.PlaylistItem, error) {
	return collectPages(func(pageToken string) ([]*youtube.PlaylistItem, string, error) {
		resp, err := g.svc.PlaylistItems.List([]string{"snippet", "contentDetails"}).
			PlaylistId(playlistID).MaxResults(pageSize).PageToken(pageToken).Context(ctx).Do()
		if err != nil {
			return nil, "", err
		}
		return resp.Items, resp.NextPageToken, nil
	}, maxPlaylistVideos)
}

func (g *Generator) videoStats(ctx context.Context, videoID string) (*youtube.VideoStatistics, error) {
	if videoID == "" {
		return nil, nil
	}
	resp, err := g.svc.Videos.List([]string{"statistics"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}
	return resp.Items[0].Statistics, nil
}

// addSpecialPlaylist renders the liked-videos or watch-history playlist.
// These may be private or disabled, so a fetch failure only leaves a console
// note.
func (g *Generator) addSpecialPlaylist(ctx context.Context, b *report.Builder, playlistID, header string) {
	items, err := collectPages(func(pageToken string) ([]*youtube.PlaylistItem, string, error) {
		resp, err := g.svc.PlaylistItems.List([]string{"snippet"}).
			PlaylistId(playlistID).MaxResults(pageSize).PageToken(pageToken).Context(ctx).Do()
		if err != nil {
			return nil, "", err
		}
		return resp.Items, resp.NextPageToken, nil
	}, maxPlaylistVideos)
	if err != nil {
		g.printer.Progress("Could not fetch playlist %s. It might be private or disabled: %v", playlistID, err)
		return
	}
	if len(items) == 0 {
		return
	}

	b.Add("\n" + header + "\n")
	for _, item := range items {
		b.Addf("- **%s** by %s", orNA(item.Snippet.Title), orNA(item.Snippet.VideoOwnerChannelTitle))
	}
}

func (g *Generator) addSubscriptions(ctx context.Context, b *report.Builder) {
	subs, err := collectPages(func(pageToken string) ([]*youtube.Subscription, string, error) {
		resp, err := g.svc.Subscriptions.List([]string{"snippet"}).
			Mine(true).MaxResults(pageSize).PageToken(pageToken).Context(ctx).Do()
		if err != nil {
			return nil, "", err
		}
		return resp.Items, resp.NextPageToken, nil
	}, 0)
	if err != nil {
		g.printer.Progress("Could not fetch subscriptions: %v", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	b.Add("\n## 5. Subscriptions\n")
	for _, sub := range subs {
		b.Addf("- %s", orNA(sub.Snippet.Title))
	}
}

func separator() string {
	return strings.Repeat("=", 40)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

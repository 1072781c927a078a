package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

// YouTube comment export: commentThreads pages, each thread expanding into
// its comments?parentId= pages, flattened depth-first.

const (
	ytThreadsPath     = "/commentThreads"
	ytCommentsPath    = "/comments"
	ytErrorBodyLimit  = 64 * 1024
	ytResponseMaxSize = 32 * 1024 * 1024
)

// --- Data API v3 wire types ---
// Pointers keep "absent" distinguishable from "empty"; defaults are applied
// only in projectComment.

type ytThreadListResp struct {
	Items         []ytThreadItem `json:"items"`
	NextPageToken *string        `json:"nextPageToken"`
}

type ytThreadItem struct {
	Snippet *ytThreadSnippet `json:"snippet"`
}

type ytThreadSnippet struct {
	TopLevelComment *ytCommentItem `json:"topLevelComment"`
	TotalReplyCount *int64         `json:"totalReplyCount"`
}

type ytCommentListResp struct {
	Items         []ytCommentItem `json:"items"`
	NextPageToken *string         `json:"nextPageToken"`
}

type ytCommentItem struct {
	ID      *string           `json:"id"`
	Snippet *ytCommentSnippet `json:"snippet"`
}

type ytCommentSnippet struct {
	AuthorDisplayName *string          `json:"authorDisplayName"`
	AuthorChannelID   *ytAuthorChannel `json:"authorChannelId"`
	PublishedAt       *string          `json:"publishedAt"`
	LikeCount         *int64           `json:"likeCount"`
	TextDisplay       *string          `json:"textDisplay"`
}

type ytAuthorChannel struct {
	Value *string `json:"value"`
}

// CommentSet is the result of one full walk. TopLevel and Replies count rows
// by how they were fetched, so replies of an ID-less thread are Replies even
// though their ParentID is empty.
type CommentSet struct {
	Records  []engine.CommentRecord
	TopLevel int
	Replies  int
}

// FetchAllComments walks every comment thread of videoID and the replies of
// each thread that reports any. Records come back thread-grouped: a top-level
// comment is followed by all of its replies before the next thread starts.
// Any non-2xx page aborts the walk with *engine.FetchError.
func FetchAllComments(ctx context.Context, apiKey, videoID string) ([]engine.CommentRecord, error) {
	set, err := FetchCommentSet(ctx, apiKey, videoID)
	if err != nil {
		return nil, err
	}
	return set.Records, nil
}

// FetchCommentSet is FetchAllComments with per-kind row counts.
func FetchCommentSet(ctx context.Context, apiKey, videoID string) (*CommentSet, error) {
	var records []engine.CommentRecord
	var topLevel, replies int

	params := url.Values{}
	params.Set("videoId", videoID)

	err := paginate(ctx, ytThreadsPath, apiKey, params, engine.IncrThreadPageRequests,
		func(ctx context.Context, page *ytThreadListResp) error {
			for _, item := range page.Items {
				if item.Snippet == nil || item.Snippet.TopLevelComment == nil {
					continue
				}
				top := item.Snippet.TopLevelComment
				topID := deref(top.ID)

				if topID != "" && top.Snippet != nil {
					records = append(records, projectComment(topID, "", videoID, top.Snippet))
					topLevel++
				}

				// Reply count is read even when the top-level row was dropped,
				// so replies of an ID-less thread still land in the output.
				if item.Snippet.TotalReplyCount == nil || *item.Snippet.TotalReplyCount <= 0 {
					continue
				}
				threadReplies, err := fetchReplies(ctx, apiKey, topID, videoID)
				if err != nil {
					return err
				}
				records = append(records, threadReplies...)
				replies += len(threadReplies)
			}
			return nil
		})
	if err != nil {
		engine.IncrFetchErrors()
		return nil, err
	}

	engine.AddCommentsFetched(topLevel)
	engine.AddRepliesFetched(replies)
	slog.Info("youtube: comments fetched",
		slog.String("video_id", videoID),
		slog.Int("top_level", topLevel),
		slog.Int("replies", replies))
	return &CommentSet{Records: records, TopLevel: topLevel, Replies: replies}, nil
}

// fetchReplies collects every reply of parentID across all pages.
func fetchReplies(ctx context.Context, apiKey, parentID, videoID string) ([]engine.CommentRecord, error) {
	var records []engine.CommentRecord

	params := url.Values{}
	params.Set("parentId", parentID)

	err := paginate(ctx, ytCommentsPath, apiKey, params, engine.IncrReplyPageRequests,
		func(_ context.Context, page *ytCommentListResp) error {
			for _, item := range page.Items {
				if item.Snippet == nil {
					continue
				}
				records = append(records, projectComment(deref(item.ID), parentID, videoID, item.Snippet))
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// pager is implemented by both list responses.
type pager interface {
	nextToken() string
}

func (r *ytThreadListResp) nextToken() string  { return deref(r.NextPageToken) }
func (r *ytCommentListResp) nextToken() string { return deref(r.NextPageToken) }

// paginate requests path page by page, handing each decoded page to handle,
// until a response carries no continuation token.
func paginate[P any, PP interface {
	*P
	pager
}](ctx context.Context, path, apiKey string, params url.Values, count func(), handle func(context.Context, PP) error) error {
	pageToken := ""
	for page := 1; ; page++ {
		var resp PP = new(P)
		count()
		if err := getPage(ctx, path, apiKey, params, pageToken, resp); err != nil {
			return err
		}
		slog.Debug("youtube: page fetched",
			slog.String("endpoint", path),
			slog.Int("page", page),
			slog.Bool("has_next", resp.nextToken() != ""))

		if err := handle(ctx, resp); err != nil {
			return err
		}

		pageToken = resp.nextToken()
		if pageToken == "" {
			return nil
		}
	}
}

// getPage issues one GET against the Data API and decodes the body into out.
func getPage(ctx context.Context, path, apiKey string, filter url.Values, pageToken string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, engine.Cfg.RequestTimeout)
	defer cancel()

	params := url.Values{}
	for k, v := range filter {
		params[k] = v
	}
	params.Set("part", "snippet")
	params.Set("maxResults", strconv.Itoa(engine.Cfg.PageSize))
	params.Set("textFormat", "plainText")
	params.Set("key", apiKey)
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	endpoint := engine.Cfg.YouTubeAPIBase + path
	apiURL := endpoint + "?" + params.Encode()

	resp, err := engine.RetryHTTP(ctx, engine.Cfg.Retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgent)
		req.Header.Set("Accept", "application/json")
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return &engine.FetchError{URL: endpoint, Err: stripKey(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, ytErrorBodyLimit))
		return &engine.FetchError{URL: endpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, ytResponseMaxSize)).Decode(out); err != nil {
		return &engine.FetchError{URL: endpoint, Err: fmt.Errorf("decode %s: %w", path, err)}
	}
	return nil
}

// stripKey drops the request URL (which carries the API key) from transport errors.
func stripKey(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}

// projectComment maps an API snippet to an output row, collapsing absent
// fields to "" and an absent like count to 0.
func projectComment(id, parentID, videoID string, s *ytCommentSnippet) engine.CommentRecord {
	rec := engine.CommentRecord{
		CommentID: id,
		ParentID:  parentID,
		VideoID:   videoID,
	}
	if s == nil {
		return rec
	}
	rec.Author = deref(s.AuthorDisplayName)
	if s.AuthorChannelID != nil {
		rec.AuthorChannelID = deref(s.AuthorChannelID.Value)
	}
	rec.PublishedAt = deref(s.PublishedAt)
	if s.LikeCount != nil && *s.LikeCount > 0 {
		rec.LikeCount = *s.LikeCount
	}
	rec.Text = deref(s.TextDisplay)
	return rec
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

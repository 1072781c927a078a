package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

// fakeYouTube serves canned commentThreads / comments pages keyed by
// videoId|pageToken and parentId|pageToken.
type fakeYouTube struct {
	mu       sync.Mutex
	threads  map[string]string
	replies  map[string]string
	fail     map[string]int // path|filter|token -> status
	requests []*http.Request
}

func newFakeYouTube() *fakeYouTube {
	return &fakeYouTube{
		threads: map[string]string{},
		replies: map[string]string{},
		fail:    map[string]int{},
	}
}

func (f *fakeYouTube) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Clone(context.Background()))
	f.mu.Unlock()

	q := r.URL.Query()
	token := q.Get("pageToken")
	var (
		body string
		ok   bool
		key  string
	)
	switch r.URL.Path {
	case "/commentThreads":
		key = q.Get("videoId") + "|" + token
		body, ok = f.threads[key]
	case "/comments":
		key = q.Get("parentId") + "|" + token
		body, ok = f.replies[key]
	}
	if status, bad := f.fail[r.URL.Path+"|"+key]; bad {
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"error":{"code":%d,"message":%q}}`, status, http.StatusText(status))
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (f *fakeYouTube) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r.URL.Path == path {
			n++
		}
	}
	return n
}

func startFake(t *testing.T, f *fakeYouTube) {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	prev := *engine.Cfg
	engine.Init(engine.Config{
		YouTubeAPIBase: srv.URL,
		HTTPClient:     srv.Client(),
		RequestTimeout: 5 * time.Second,
	})
	t.Cleanup(func() { engine.Init(prev) })
}

func thread(id string, replies int, text string) string {
	return `{"snippet":{"totalReplyCount":` + strconv.Itoa(replies) + `,"topLevelComment":{"id":"` + id +
		`","snippet":{"authorDisplayName":"author-` + id + `","authorChannelId":{"value":"UC` + id +
		`"},"publishedAt":"2024-01-02T03:04:05Z","likeCount":7,"textDisplay":"` + text + `"}}}}`
}

func reply(id, text string) string {
	return `{"id":"` + id + `","snippet":{"authorDisplayName":"author-` + id +
		`","publishedAt":"2024-02-03T04:05:06Z","likeCount":1,"textDisplay":"` + text + `"}}`
}

func page(next string, items ...string) string {
	s := `{"items":[` + strings.Join(items, ",") + `]`
	if next != "" {
		s += `,"nextPageToken":"` + next + `"`
	}
	return s + "}"
}

func ids(recs []engine.CommentRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.CommentID
	}
	return out
}

func TestFetchAllCommentsThreadGroupedOrder(t *testing.T) {
	f := newFakeYouTube()
	f.threads["vid123456|"] = page("", thread("t1", 2, "first"), thread("t2", 0, "second"))
	f.replies["t1|"] = page("", reply("t1.r1a", "a"), reply("t1.r1b", "b"))
	startFake(t, f)

	recs, err := FetchAllComments(context.Background(), "KEY", "vid123456")
	require.NoError(t, err)

	assert.Equal(t, []string{"t1", "t1.r1a", "t1.r1b", "t2"}, ids(recs))
	assert.Equal(t, "", recs[0].ParentID)
	assert.Equal(t, "t1", recs[1].ParentID)
	assert.Equal(t, "t1", recs[2].ParentID)
	assert.Equal(t, "", recs[3].ParentID)
	for _, r := range recs {
		assert.Equal(t, "vid123456", r.VideoID)
	}
	assert.Equal(t, 1, f.count("/comments"), "thread without replies must not be expanded")
}

func TestFetchAllCommentsPaginationStopsOnMissingCursor(t *testing.T) {
	f := newFakeYouTube()
	f.threads["vid123456|"] = page("p2", thread("a", 0, "a"))
	f.threads["vid123456|p2"] = page("p3", thread("b", 0, "b"), thread("c", 0, "c"))
	f.threads["vid123456|p3"] = page("", thread("d", 0, "d"))
	startFake(t, f)

	recs, err := FetchAllComments(context.Background(), "KEY", "vid123456")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(recs))
	assert.Equal(t, 3, f.count("/commentThreads"))
}

func TestFetchAllCommentsReplyPagination(t *testing.T) {
	f := newFakeYouTube()
	f.threads["vid123456|"] = page("", thread("t1", 3, "x"))
	f.replies["t1|"] = page("r2", reply("r1", "1"), reply("r2", "2"))
	f.replies["t1|r2"] = page("", reply("r3", "3"))
	startFake(t, f)

	recs, err := FetchAllComments(context.Background(), "KEY", "vid123456")
	require.NoError(t, err)

	assert.Equal(t, []string{"t1", "r1", "r2", "r3"}, ids(recs))
	assert.Equal(t, 2, f.count("/comments"))
}

func TestFetchAllCommentsRequestParams(t *testing.T) {
	f := newFakeYouTube()
	f.threads["vid123456|"] = page("next", thread("t1", 1, "x"))
	f.threads["vid123456|next"] = page("")
	f.replies["t1|"] = page("", reply("r1", "1"))
	startFake(t, f)

	_, err := FetchAllComments(context.Background(), "SECRET", "vid123456")
	require.NoError(t, err)
	require.Len(t, f.requests, 3)

	first := f.requests[0].URL.Query()
	assert.Equal(t, "/commentThreads", f.requests[0].URL.Path)
	assert.Equal(t, "snippet", first.Get("part"))
	assert.Equal(t, "vid123456", first.Get("videoId"))
	assert.Equal(t, "100", first.Get("maxResults"))
	assert.Equal(t, "plainText", first.Get("textFormat"))
	assert.Equal(t, "SECRET", first.Get("key"))
	assert.False(t, first.Has("pageToken"), "first request must omit the cursor")

	replyReq := f.requests[1].URL.Query()
	assert.Equal(t, "/comments", f.requests[1].URL.Path)
	assert.Equal(t, "t1", replyReq.Get("parentId"))
	assert.Equal(t, "100", replyReq.Get("maxResults"))

	assert.Equal(t, "next", f.requests[2].URL.Query().Get("pageToken"))
}

func TestFetchAllCommentsOrphanedReplies(t *testing.T) {
	f := newFakeYouTube()
	noID := `{"snippet":{"totalReplyCount":1,"topLevelComment":{"snippet":{"textDisplay":"no id"}}}}`
	f.threads["vid123456|"] = page("", noID, thread("t2", 0, "kept"))
	f.replies["|"] = page("", reply("orphan", "still here"))
	startFake(t, f)

	recs, err := FetchAllComments(context.Background(), "KEY", "vid123456")
	require.NoError(t, err)

	// The ID-less thread emits no row of its own but its replies are kept.
	assert.Equal(t, []string{"orphan", "t2"}, ids(recs))
	assert.Equal(t, "", recs[0].ParentID)
	assert.Equal(t, "still here", recs[0].Text)
}

func TestFetchCommentSetCountsOrphansAsReplies(t *testing.T) {
	f := newFakeYouTube()
	noID := `{"snippet":{"totalReplyCount":2,"topLevelComment":{"snippet":{"textDisplay":"no id"}}}}`
	f.threads["vid123456|"] = page("", noID, thread("t2", 1, "kept"))
	f.replies["|"] = page("", reply("o1", "a"), reply("o2", "b"))
	f.replies["t2|"] = page("", reply("t2.r1", "c"))
	startFake(t, f)

	set, err := FetchCommentSet(context.Background(), "KEY", "vid123456")
	require.NoError(t, err)

	assert.Equal(t, []string{"o1", "o2", "t2", "t2.r1"}, ids(set.Records))
	assert.Equal(t, 1, set.TopLevel)
	assert.Equal(t, 3, set.Replies, "orphaned replies count as replies despite empty parent_id")
}

func TestFetchAllCommentsSkipsItemsWithoutSnippet(t *testing.T) {
	f := newFakeYouTube()
	f.threads["vid123456|"] = page("",
		`{}`,
		`{"snippet":{"totalReplyCount":0}}`,
		thread("t1", 1, "x"))
	f.replies["t1|"] = page("", `{"id":"bare"}`, reply("r1", "1"))
	startFake(t, f)

	recs, err := FetchAllComments(context.Background(), "KEY", "vid123456")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "r1"}, ids(recs))
}

func TestFetchAllCommentsDefaultsForAbsentFields(t *testing.T) {
	f := newFakeYouTube()
	f.threads["vid123456|"] = page("", `{"snippet":{"topLevelComment":{"id":"t1","snippet":{}}}}`)
	startFake(t, f)

	recs, err := FetchAllComments(context.Background(), "KEY", "vid123456")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, engine.CommentRecord{CommentID: "t1", VideoID: "vid123456"}, recs[0])
}

func TestFetchAllCommentsNon2xxAborts(t *testing.T) {
	f := newFakeYouTube()
	f.threads["vid123456|"] = page("p2", thread("t1", 1, "x"))
	f.threads["vid123456|p2"] = page("", thread("t2", 0, "y"))
	f.replies["t1|"] = page("", reply("r1", "1"))
	f.fail["/comments|t1|"] = http.StatusForbidden
	startFake(t, f)

	recs, err := FetchAllComments(context.Background(), "KEY", "vid123456")
	require.Error(t, err)
	assert.Nil(t, recs)

	var fe *engine.FetchError
	require.True(t, errors.As(err, &fe), "want *engine.FetchError, got %T", err)
	assert.Equal(t, http.StatusForbidden, fe.StatusCode)
	assert.Contains(t, fe.Body, "error")
	assert.Equal(t, 1, f.count("/commentThreads"), "no further thread pages after a failure")
}

func TestFetchAllCommentsMalformedJSON(t *testing.T) {
	f := newFakeYouTube()
	f.threads["vid123456|"] = `{"items": [`
	startFake(t, f)

	_, err := FetchAllComments(context.Background(), "KEY", "vid123456")
	var fe *engine.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Zero(t, fe.StatusCode)
	assert.Error(t, fe.Err)
}

func TestFetchAllCommentsPageTimeout(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	prev := *engine.Cfg
	engine.Init(engine.Config{
		YouTubeAPIBase: srv.URL,
		HTTPClient:     srv.Client(),
		RequestTimeout: 100 * time.Millisecond,
		Retry:          engine.DefaultRetryConfig,
	})
	t.Cleanup(func() { engine.Init(prev) })

	start := time.Now()
	recs, err := FetchAllComments(context.Background(), "KEY", "vid123456")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Nil(t, recs)
	var fe *engine.FetchError
	require.True(t, errors.As(err, &fe), "want *engine.FetchError, got %T", err)
	assert.Zero(t, fe.StatusCode)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), hits.Load(), "a timed-out page is not retried")
	assert.Less(t, elapsed, engine.DefaultRetryConfig.MaxWait)
}

func TestFetchErrorDoesNotLeakKey(t *testing.T) {
	prev := *engine.Cfg
	engine.Init(engine.Config{
		YouTubeAPIBase: "http://127.0.0.1:1",
		RequestTimeout: time.Second,
	})
	t.Cleanup(func() { engine.Init(prev) })

	_, err := FetchAllComments(context.Background(), "TOPSECRET", "vid123456")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "TOPSECRET")
}

func TestProjectComment(t *testing.T) {
	name, ch, at, text := "Ann", "UC1", "2024-01-01T00:00:00Z", "hi, \"there\"\nbye"
	likes := int64(42)
	got := projectComment("c1", "p1", "v1", &ytCommentSnippet{
		AuthorDisplayName: &name,
		AuthorChannelID:   &ytAuthorChannel{Value: &ch},
		PublishedAt:       &at,
		LikeCount:         &likes,
		TextDisplay:       &text,
	})
	assert.Equal(t, engine.CommentRecord{
		CommentID: "c1", ParentID: "p1", VideoID: "v1",
		Author: "Ann", AuthorChannelID: "UC1", PublishedAt: at,
		LikeCount: 42, Text: text,
	}, got)

	empty := projectComment("c2", "", "v1", &ytCommentSnippet{AuthorChannelID: &ytAuthorChannel{}})
	assert.Equal(t, engine.CommentRecord{CommentID: "c2", VideoID: "v1"}, empty)
}

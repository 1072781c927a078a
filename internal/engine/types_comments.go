package engine

// CommentRecord is one output row: a top-level comment (ParentID empty)
// or a reply (ParentID = owning thread's comment ID).
type CommentRecord struct {
	CommentID       string `json:"comment_id"`
	ParentID        string `json:"parent_id"`
	VideoID         string `json:"video_id"`
	Author          string `json:"author"`
	AuthorChannelID string `json:"author_channel_id"`
	PublishedAt     string `json:"published_at"`
	LikeCount       int64  `json:"like_count"`
	Text            string `json:"text"`
}

// IsReply reports whether the record belongs to a thread rather than the video.
func (r CommentRecord) IsReply() bool { return r.ParentID != "" }

// CSVHeader is the fixed column order of exported files.
var CSVHeader = []string{
	"comment_id",
	"parent_id",
	"video_id",
	"author",
	"author_channel_id",
	"published_at",
	"like_count",
	"text",
}

// --- Tool server types ---

// ExportCommentsInput is the input for the export_comments tool.
type ExportCommentsInput struct {
	Video  string `json:"video" jsonschema:"YouTube video ID or URL (watch, youtu.be, shorts)"`
	APIKey string `json:"api_key,omitempty" jsonschema:"YouTube Data API key (default: stored key, then YOUTUBE_API_KEY)"`
	Out    string `json:"out,omitempty" jsonschema:"Output CSV path (default: <videoId>.csv in the working directory)"`
}

// ExportCommentsOutput is the structured output for export_comments.
type ExportCommentsOutput struct {
	VideoID  string          `json:"video_id"`
	Path     string          `json:"path"`
	Rows     int             `json:"rows"`
	TopLevel int             `json:"top_level"`
	Replies  int             `json:"replies"`
	Preview  []CommentRecord `json:"preview,omitempty"`
}

// APIKeyInput is the input for set_api_key.
type APIKeyInput struct {
	APIKey string `json:"api_key" jsonschema:"YouTube Data API key to store for this user"`
}

// APIKeyOutput is the output for get_api_key / set_api_key.
type APIKeyOutput struct {
	Configured bool   `json:"configured"`
	APIKey     string `json:"api_key,omitempty"`
	Message    string `json:"message,omitempty"`
}

// OpenPathInput is the input for open_path.
type OpenPathInput struct {
	Path string `json:"path" jsonschema:"File to open with the system handler"`
}

// OpenPathOutput is the output for open_path.
type OpenPathOutput struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ListExportsInput is the input for list_exports.
type ListExportsInput struct {
	VideoID string `json:"video_id,omitempty" jsonschema:"Only exports of this video"`
	Limit   int    `json:"limit,omitempty" jsonschema:"Max entries (default: 20, max: 100)"`
}

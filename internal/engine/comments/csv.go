package comments

import (
	"bufio"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

// WriteCSV creates (or truncates) path and writes the fixed header followed
// by one line per record. Parent directories are created as needed. The file
// is flushed and closed before WriteCSV returns nil.
func WriteCSV(path string, rows []engine.CommentRecord) (err error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &engine.IOError{Op: "mkdir", Path: dir, Err: err}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return &engine.IOError{Op: "create", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &engine.IOError{Op: "close", Path: path, Err: cerr}
		}
	}()

	bw := bufio.NewWriter(f)
	w := csv.NewWriter(bw)

	if err := w.Write(engine.CSVHeader); err != nil {
		return &engine.IOError{Op: "write", Path: path, Err: err}
	}
	record := make([]string, len(engine.CSVHeader))
	for _, r := range rows {
		record[0] = r.CommentID
		record[1] = r.ParentID
		record[2] = r.VideoID
		record[3] = r.Author
		record[4] = r.AuthorChannelID
		record[5] = r.PublishedAt
		record[6] = strconv.FormatInt(r.LikeCount, 10)
		record[7] = r.Text
		if err := w.Write(record); err != nil {
			return &engine.IOError{Op: "write", Path: path, Err: err}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return &engine.IOError{Op: "flush", Path: path, Err: err}
	}
	if err := bw.Flush(); err != nil {
		return &engine.IOError{Op: "flush", Path: path, Err: err}
	}
	return nil
}

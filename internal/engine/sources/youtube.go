// Package sources talks to the YouTube Data API v3.
//
// The YouTube code is split across two files by responsibility:
//
//	youtube_videoid.go:  video ID extraction from bare IDs and watch / youtu.be / shorts URLs
//	youtube_comments.go: commentThreads + comments pagination and row projection
package sources

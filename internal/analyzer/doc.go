// Package analyzer is the HTTP client for the content analysis API. It runs
// two kinds of analysis over confession text: moderation (action, crisis
// level) and enhancement (mood, tags, keywords). Responses are free-form
// model output, so parsing is tolerant and callers must treat failures as
// non-fatal.
package analyzer

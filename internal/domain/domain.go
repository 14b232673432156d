package domain

import (
	"time"

	"github.com/google/uuid"
)

// AnonymousAuthor is the display name used for unattributed submissions.
const AnonymousAuthor = "anonymous"

// MaxContentLength is the maximum confession/reply length in code points.
const MaxContentLength = 280

// CrisisLevel is the ordered severity signal from moderation analysis.
type CrisisLevel string

const (
	CrisisNone     CrisisLevel = "none"
	CrisisLow      CrisisLevel = "low"
	CrisisMedium   CrisisLevel = "medium"
	CrisisHigh     CrisisLevel = "high"
	CrisisCritical CrisisLevel = "critical"
)

var crisisSeverity = map[CrisisLevel]int{
	CrisisNone:     0,
	CrisisLow:      1,
	CrisisMedium:   2,
	CrisisHigh:     3,
	CrisisCritical: 4,
}

// Severity returns the numeric rank of the level (none=0 .. critical=4).
func (c CrisisLevel) Severity() int {
	return crisisSeverity[c]
}

// Valid reports whether c is one of the five defined levels.
func (c CrisisLevel) Valid() bool {
	_, ok := crisisSeverity[c]
	return ok
}

// NeedsSupport reports whether the level triggers the crisis-support
// notification (high or critical).
func (c CrisisLevel) NeedsSupport() bool {
	return c == CrisisHigh || c == CrisisCritical
}

// ParseCrisisLevel maps an analyzer-provided string to a CrisisLevel,
// defaulting to none for anything unrecognized.
func ParseCrisisLevel(s string) CrisisLevel {
	c := CrisisLevel(s)
	if !c.Valid() {
		return CrisisNone
	}
	return c
}

// VoteType is the two-element vote enum.
type VoteType string

const (
	VoteUp   VoteType = "upvote"
	VoteDown VoteType = "downvote"
)

// Valid reports whether v is upvote or downvote.
func (v VoteType) Valid() bool {
	return v == VoteUp || v == VoteDown
}

// Opposite returns the other vote type.
func (v VoteType) Opposite() VoteType {
	if v == VoteUp {
		return VoteDown
	}
	return VoteUp
}

// ModerationState tracks the moderation lifecycle of a post or reply.
type ModerationState struct {
	Flagged  bool `json:"flagged"`
	Reviewed bool `json:"reviewed"`
	Approved bool `json:"approved"`
}

// Post is a root confession. Counters and moderation fields mutate after
// creation; everything else is immutable once stored.
type Post struct {
	ID          uuid.UUID       `json:"id"`
	TxID        string          `json:"tx_id"`
	Content     string          `json:"content"`
	IsPublic    bool            `json:"is_public"`
	Author      string          `json:"author"`
	AuthorID    *uuid.UUID      `json:"author_id,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	Upvotes     int             `json:"upvotes"`
	Downvotes   int             `json:"downvotes"`
	ReplyCount  int             `json:"reply_count"`
	ViewCount   int             `json:"view_count"`
	GatewayURL  string          `json:"gateway_url"`
	Verified    bool            `json:"verified"`
	Tags        []string        `json:"tags"`
	Mood        string          `json:"mood,omitempty"`
	CrisisLevel CrisisLevel     `json:"crisis_level"`
	Moderation  ModerationState `json:"moderation"`
}

// Reply is a threaded response to a Post. ParentReplyID forms a forest
// within one post's reply set; it is not required to resolve (the parent
// may have been excluded by pagination).
type Reply struct {
	ID            uuid.UUID       `json:"id"`
	ConfessionID  uuid.UUID       `json:"confession_id"`
	ParentReplyID *uuid.UUID      `json:"parent_reply_id,omitempty"`
	Content       string          `json:"content"`
	Author        string          `json:"author"`
	AuthorID      *uuid.UUID      `json:"author_id,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
	Upvotes       int             `json:"upvotes"`
	Downvotes     int             `json:"downvotes"`
	TxID          string          `json:"tx_id,omitempty"`
	Verified      bool            `json:"verified"`
	CrisisLevel   CrisisLevel     `json:"crisis_level"`
	Moderation    ModerationState `json:"moderation"`
}

// Vote is one identity's vote on a subject (post or reply). At most one
// vote exists per (subject, voter identity) pair; the pair is enforced by
// a store-level unique constraint, not application locking.
type Vote struct {
	ID            uuid.UUID `json:"id"`
	SubjectID     uuid.UUID `json:"subject_id"`
	VoterIdentity string    `json:"voter_identity"`
	VoteType      VoteType  `json:"vote_type"`
	Timestamp     time.Time `json:"timestamp"`
}

// AuthorContext describes who is submitting. A zero value is an anonymous
// author with crisis support enabled (the original platform's default
// preference for signed-out users).
type AuthorContext struct {
	UserID        *uuid.UUID
	DisplayName   string
	CrisisSupport bool
}

// Identified reports whether the author is an authenticated account.
func (a AuthorContext) Identified() bool {
	return a.UserID != nil
}

// Name returns the display name, or the anonymous sentinel.
func (a AuthorContext) Name() string {
	if a.DisplayName == "" {
		return AnonymousAuthor
	}
	return a.DisplayName
}

// Decision is the moderation gate's accept/flag/reject outcome.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionFlag   Decision = "flag"
	DecisionReject Decision = "reject"
)

// Verdict is the result of evaluating content through the moderation gate.
type Verdict struct {
	Decision    Decision
	CrisisLevel CrisisLevel
	Mood        string
	Tags        []string
	// Moderation is the state to persist with an accepted item.
	Moderation ModerationState
	// CrisisSupport reports whether a crisis-resources notification should
	// be emitted for this author.
	CrisisSupport bool
}

// TagCount is a tag with its occurrence count, used by trending tags.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// MoodCount is a mood label with its occurrence count.
type MoodCount struct {
	Mood  string `json:"mood"`
	Count int    `json:"count"`
}

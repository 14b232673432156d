// Package pipeline runs the submission flow for confessions and replies:
// validation, moderation, permanent publication, storage, and notification
// fan-out, in that order.
package pipeline

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"

	"github.com/Pratiikpy/irys-confession-board/internal/domain"
	apperrors "github.com/Pratiikpy/irys-confession-board/internal/errors"
	"github.com/Pratiikpy/irys-confession-board/internal/logging"
	"github.com/Pratiikpy/irys-confession-board/internal/metrics"
	"github.com/Pratiikpy/irys-confession-board/internal/publisher"
	"github.com/Pratiikpy/irys-confession-board/internal/ws"
)

const appTag = "Irys-Confession-Board"

// Gate evaluates content before it is stored or published.
type Gate interface {
	Evaluate(ctx context.Context, content string, author domain.AuthorContext) domain.Verdict
}

// Publisher ships payloads to permanent storage.
type Publisher interface {
	Publish(ctx context.Context, payload any, tags []publisher.Tag) (*publisher.Receipt, error)
}

// Notifier fans envelopes out to connected clients.
type Notifier interface {
	Broadcast(envelope ws.Envelope)
	SendTo(userID string, envelope ws.Envelope)
}

// PostSubmission is a new confession as received from a client.
type PostSubmission struct {
	Content  string
	IsPublic bool
	Tags     []string
	Mood     string
	Author   domain.AuthorContext
}

// ReplySubmission is a new reply as received from a client.
type ReplySubmission struct {
	ConfessionRef string
	ParentReplyID *uuid.UUID
	Content       string
	Author        domain.AuthorContext
}

// Pipeline wires the submission stages together.
type Pipeline struct {
	gate      Gate
	publisher Publisher
	posts     domain.PostStore
	replies   domain.ReplyStore
	notifier  Notifier
	clock     clockwork.Clock
}

func New(gate Gate, pub Publisher, posts domain.PostStore, replies domain.ReplyStore, notifier Notifier, clock clockwork.Clock) *Pipeline {
	return &Pipeline{
		gate:      gate,
		publisher: pub,
		posts:     posts,
		replies:   replies,
		notifier:  notifier,
		clock:     clock,
	}
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperrors.ValidationError("content is required")
	}
	if utf8.RuneCountInString(content) > domain.MaxContentLength {
		return "", apperrors.ValidationError("content exceeds maximum length")
	}
	return content, nil
}

// SubmitPost runs a confession through the full pipeline. Publication
// failure is fatal for posts: a confession is only stored once its
// permanent record exists.
func (p *Pipeline) SubmitPost(ctx context.Context, sub PostSubmission) (*domain.Post, error) {
	content, err := validateContent(sub.Content)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("post", "invalid").Inc()
		return nil, err
	}

	verdict := p.gate.Evaluate(ctx, content, sub.Author)

	// Crisis resources go out before the reject check so that even a
	// removed submission still reaches support.
	p.dispatchCrisisSupport(verdict, sub.Author)

	if verdict.Decision == domain.DecisionReject {
		metrics.SubmissionsTotal.WithLabelValues("post", "rejected").Inc()
		return nil, apperrors.RejectedError("Content violates community guidelines")
	}

	// Analyzer-derived mood wins; the caller's mood only fills in when
	// enhancement returned none.
	mood := verdict.Mood
	if mood == "" {
		mood = sub.Mood
	}

	now := p.clock.Now()
	post := &domain.Post{
		ID:          uuid.New(),
		Content:     content,
		IsPublic:    sub.IsPublic,
		Author:      sub.Author.Name(),
		AuthorID:    sub.Author.UserID,
		Timestamp:   now,
		Tags:        lo.Uniq(append(append([]string{}, sub.Tags...), verdict.Tags...)),
		Mood:        mood,
		CrisisLevel: verdict.CrisisLevel,
		Moderation:  verdict.Moderation,
	}

	receipt, err := p.publisher.Publish(ctx, publishedPost(post), postTags(post, now.Unix()))
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("post", "publish_failed").Inc()
		return nil, apperrors.ExternalError("failed to publish confession", err)
	}
	post.TxID = receipt.TxID
	post.GatewayURL = receipt.GatewayURL
	post.Verified = true

	if err := p.posts.Insert(ctx, post); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("post", "store_failed").Inc()
		return nil, apperrors.InternalError("failed to store confession", err)
	}

	metrics.SubmissionsTotal.WithLabelValues("post", "accepted").Inc()

	if post.IsPublic {
		p.notifier.Broadcast(ws.NewConfessionBroadcast(post))
	}
	return post, nil
}

// SubmitReply runs a reply through the pipeline. Unlike posts, replies
// tolerate publication failure: only identified authors get a permanent
// record, and a failed upload leaves the reply stored unverified.
func (p *Pipeline) SubmitReply(ctx context.Context, sub ReplySubmission) (*domain.Reply, error) {
	content, err := validateContent(sub.Content)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("reply", "invalid").Inc()
		return nil, err
	}

	confession, err := p.posts.GetByRef(ctx, sub.ConfessionRef)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, apperrors.NotFoundError("confession not found")
		}
		return nil, apperrors.InternalError("failed to look up confession", err)
	}

	if sub.ParentReplyID != nil {
		parent, err := p.replies.GetByID(ctx, *sub.ParentReplyID)
		if err != nil {
			if err == domain.ErrNotFound {
				return nil, apperrors.NotFoundError("parent reply not found")
			}
			return nil, apperrors.InternalError("failed to look up parent reply", err)
		}
		if parent.ConfessionID != confession.ID {
			return nil, apperrors.ValidationError("parent reply belongs to a different confession")
		}
	}

	verdict := p.gate.Evaluate(ctx, content, sub.Author)
	p.dispatchCrisisSupport(verdict, sub.Author)

	if verdict.Decision == domain.DecisionReject {
		metrics.SubmissionsTotal.WithLabelValues("reply", "rejected").Inc()
		return nil, apperrors.RejectedError("Content violates community guidelines")
	}

	now := p.clock.Now()
	reply := &domain.Reply{
		ID:            uuid.New(),
		ConfessionID:  confession.ID,
		ParentReplyID: sub.ParentReplyID,
		Content:       content,
		Author:        sub.Author.Name(),
		AuthorID:      sub.Author.UserID,
		Timestamp:     now,
		CrisisLevel:   verdict.CrisisLevel,
		Moderation:    verdict.Moderation,
	}

	if sub.Author.Identified() {
		receipt, err := p.publisher.Publish(ctx, publishedReply(reply), replyTags(reply, now.Unix()))
		if err != nil {
			logging.WithError(err).Warn("Reply publication failed, storing unverified",
				"confession_id", confession.ID)
		} else {
			reply.TxID = receipt.TxID
			reply.Verified = true
		}
	}

	if err := p.replies.Insert(ctx, reply); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("reply", "store_failed").Inc()
		return nil, apperrors.InternalError("failed to store reply", err)
	}

	if err := p.posts.IncrementReplyCount(ctx, confession.ID); err != nil {
		logging.WithConfession(confession.ID.String()).Warn("Failed to increment reply count", "error", err)
	}

	metrics.SubmissionsTotal.WithLabelValues("reply", "accepted").Inc()

	p.notifier.Broadcast(ws.NewReplyBroadcast(reply))
	return reply, nil
}

func (p *Pipeline) dispatchCrisisSupport(verdict domain.Verdict, author domain.AuthorContext) {
	if !verdict.CrisisSupport || author.UserID == nil {
		return
	}
	metrics.CrisisNotificationsTotal.Inc()
	p.notifier.SendTo(author.UserID.String(), ws.NewCrisisSupportMessage())
}

func publishedPost(post *domain.Post) map[string]any {
	return map[string]any{
		"content":   post.Content,
		"is_public": post.IsPublic,
		"timestamp": post.Timestamp.UTC().Format("2006-01-02T15:04:05"),
		"author":    post.Author,
		"mood":      post.Mood,
		"tags":      post.Tags,
	}
}

func postTags(post *domain.Post, unix int64) []publisher.Tag {
	mood := post.Mood
	if mood == "" {
		mood = "neutral"
	}
	return []publisher.Tag{
		{Name: "Content-Type", Value: "confession"},
		{Name: "Public", Value: strconv.FormatBool(post.IsPublic)},
		{Name: "App", Value: appTag},
		{Name: "Author", Value: post.Author},
		{Name: "Mood", Value: mood},
		{Name: "Timestamp", Value: strconv.FormatInt(unix, 10)},
	}
}

func publishedReply(reply *domain.Reply) map[string]any {
	payload := map[string]any{
		"content":       reply.Content,
		"confession_id": reply.ConfessionID.String(),
		"author":        reply.Author,
		"timestamp":     reply.Timestamp.UTC().Format("2006-01-02T15:04:05"),
	}
	if reply.ParentReplyID != nil {
		payload["parent_reply_id"] = reply.ParentReplyID.String()
	}
	return payload
}

func replyTags(reply *domain.Reply, unix int64) []publisher.Tag {
	return []publisher.Tag{
		{Name: "Content-Type", Value: "reply"},
		{Name: "App", Value: appTag},
		{Name: "Author", Value: reply.Author},
		{Name: "ParentID", Value: reply.ConfessionID.String()},
		{Name: "Timestamp", Value: strconv.FormatInt(unix, 10)},
	}
}

package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pratiikpy/irys-confession-board/internal/domain"
	apperrors "github.com/Pratiikpy/irys-confession-board/internal/errors"
	"github.com/Pratiikpy/irys-confession-board/internal/publisher"
	"github.com/Pratiikpy/irys-confession-board/internal/ws"
)

// --- Fakes ---

type fakeGate struct {
	verdict domain.Verdict
	calls   int
}

func (f *fakeGate) Evaluate(context.Context, string, domain.AuthorContext) domain.Verdict {
	f.calls++
	return f.verdict
}

func approveVerdict() domain.Verdict {
	return domain.Verdict{
		Decision:    domain.DecisionAccept,
		CrisisLevel: domain.CrisisNone,
		Moderation:  domain.ModerationState{Approved: true},
	}
}

type fakePublisher struct {
	receipt *publisher.Receipt
	err     error
	calls   int
	tags    []publisher.Tag
}

func (f *fakePublisher) Publish(_ context.Context, _ any, tags []publisher.Tag) (*publisher.Receipt, error) {
	f.calls++
	f.tags = tags
	if f.err != nil {
		return nil, f.err
	}
	return f.receipt, nil
}

func workingPublisher() *fakePublisher {
	return &fakePublisher{receipt: &publisher.Receipt{
		TxID:       "tx123",
		GatewayURL: "https://gateway.irys.xyz/tx123",
	}}
}

type fakePostStore struct {
	domain.PostStore

	inserted   []*domain.Post
	byRef      map[string]*domain.Post
	replyIncrs int
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{byRef: make(map[string]*domain.Post)}
}

func (f *fakePostStore) Insert(_ context.Context, p *domain.Post) error {
	f.inserted = append(f.inserted, p)
	return nil
}

func (f *fakePostStore) GetByRef(_ context.Context, ref string) (*domain.Post, error) {
	p, ok := f.byRef[ref]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakePostStore) IncrementReplyCount(context.Context, uuid.UUID) error {
	f.replyIncrs++
	return nil
}

type fakeReplyStore struct {
	domain.ReplyStore

	inserted []*domain.Reply
	byID     map[uuid.UUID]*domain.Reply
}

func newFakeReplyStore() *fakeReplyStore {
	return &fakeReplyStore{byID: make(map[uuid.UUID]*domain.Reply)}
}

func (f *fakeReplyStore) Insert(_ context.Context, r *domain.Reply) error {
	f.inserted = append(f.inserted, r)
	return nil
}

func (f *fakeReplyStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Reply, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

type fakeNotifier struct {
	broadcasts []ws.Envelope
	directed   map[string][]ws.Envelope
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{directed: make(map[string][]ws.Envelope)}
}

func (f *fakeNotifier) Broadcast(e ws.Envelope) {
	f.broadcasts = append(f.broadcasts, e)
}

func (f *fakeNotifier) SendTo(userID string, e ws.Envelope) {
	f.directed[userID] = append(f.directed[userID], e)
}

type fixture struct {
	gate     *fakeGate
	pub      *fakePublisher
	posts    *fakePostStore
	replies  *fakeReplyStore
	notifier *fakeNotifier
	clock    *clockwork.FakeClock
	pipeline *Pipeline
}

func newFixture(verdict domain.Verdict, pub *fakePublisher) *fixture {
	f := &fixture{
		gate:     &fakeGate{verdict: verdict},
		pub:      pub,
		posts:    newFakePostStore(),
		replies:  newFakeReplyStore(),
		notifier: newFakeNotifier(),
		clock:    clockwork.NewFakeClock(),
	}
	f.pipeline = New(f.gate, f.pub, f.posts, f.replies, f.notifier, f.clock)
	return f
}

// --- Post submission ---

func TestSubmitPostAccepted(t *testing.T) {
	verdict := approveVerdict()
	verdict.CrisisLevel = domain.CrisisLow
	verdict.Mood = "anxious"
	verdict.Tags = []string{"anxiety"}

	f := newFixture(verdict, workingPublisher())

	post, err := f.pipeline.SubmitPost(context.Background(), PostSubmission{
		Content:  "I feel anxious today",
		IsPublic: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "I feel anxious today", post.Content)
	assert.Equal(t, domain.AnonymousAuthor, post.Author)
	assert.True(t, post.Moderation.Approved)
	assert.Equal(t, domain.CrisisLow, post.CrisisLevel)
	assert.Equal(t, "anxious", post.Mood)
	assert.Equal(t, []string{"anxiety"}, post.Tags)
	assert.Equal(t, 0, post.Upvotes)
	assert.Equal(t, "tx123", post.TxID)
	assert.True(t, post.Verified)
	assert.Equal(t, f.clock.Now(), post.Timestamp)

	require.Len(t, f.posts.inserted, 1)
	require.Len(t, f.notifier.broadcasts, 1)
	assert.Equal(t, ws.TypeNewConfession, f.notifier.broadcasts[0].MessageType())
}

func TestSubmitPostPrivateNotBroadcast(t *testing.T) {
	f := newFixture(approveVerdict(), workingPublisher())

	_, err := f.pipeline.SubmitPost(context.Background(), PostSubmission{
		Content:  "just for me",
		IsPublic: false,
	})
	require.NoError(t, err)

	assert.Len(t, f.posts.inserted, 1)
	assert.Empty(t, f.notifier.broadcasts)
}

func TestSubmitPostMergesTags(t *testing.T) {
	verdict := approveVerdict()
	verdict.Tags = []string{"work", "stress"}

	f := newFixture(verdict, workingPublisher())

	post, err := f.pipeline.SubmitPost(context.Background(), PostSubmission{
		Content:  "deadline pressure",
		IsPublic: true,
		Tags:     []string{"work", "office"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"work", "office", "stress"}, post.Tags)
}

func TestSubmitPostMoodFallback(t *testing.T) {
	// Enhancement returned no mood, so the caller's mood is kept.
	f := newFixture(approveVerdict(), workingPublisher())

	post, err := f.pipeline.SubmitPost(context.Background(), PostSubmission{
		Content:  "quiet evening",
		IsPublic: true,
		Mood:     "calm",
	})
	require.NoError(t, err)
	assert.Equal(t, "calm", post.Mood)
}

func TestSubmitPostAnalyzerMoodWins(t *testing.T) {
	verdict := approveVerdict()
	verdict.Mood = "anxious"

	f := newFixture(verdict, workingPublisher())

	post, err := f.pipeline.SubmitPost(context.Background(), PostSubmission{
		Content:  "quiet evening",
		IsPublic: true,
		Mood:     "calm",
	})
	require.NoError(t, err)
	assert.Equal(t, "anxious", post.Mood)
}

func TestSubmitPostValidation(t *testing.T) {
	f := newFixture(approveVerdict(), workingPublisher())

	_, err := f.pipeline.SubmitPost(context.Background(), PostSubmission{Content: "   "})
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeValidation, apperrors.AsStructuredError(err).Type)

	_, err = f.pipeline.SubmitPost(context.Background(), PostSubmission{
		Content: strings.Repeat("x", domain.MaxContentLength+1),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeValidation, apperrors.AsStructuredError(err).Type)

	// Validation failures never reach analysis or publication.
	assert.Equal(t, 0, f.gate.calls)
	assert.Equal(t, 0, f.pub.calls)
}

func TestSubmitPostRejected(t *testing.T) {
	verdict := domain.Verdict{
		Decision:    domain.DecisionReject,
		CrisisLevel: domain.CrisisNone,
	}

	f := newFixture(verdict, workingPublisher())

	_, err := f.pipeline.SubmitPost(context.Background(), PostSubmission{Content: "spam"})
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeRejected, apperrors.AsStructuredError(err).Type)

	assert.Equal(t, 0, f.pub.calls)
	assert.Empty(t, f.posts.inserted)
	assert.Empty(t, f.notifier.broadcasts)
}

func TestSubmitPostRejectedStillSendsCrisisSupport(t *testing.T) {
	userID := uuid.New()
	verdict := domain.Verdict{
		Decision:      domain.DecisionReject,
		CrisisLevel:   domain.CrisisCritical,
		CrisisSupport: true,
	}

	f := newFixture(verdict, workingPublisher())

	_, err := f.pipeline.SubmitPost(context.Background(), PostSubmission{
		Content: "struggling",
		Author:  domain.AuthorContext{UserID: &userID, CrisisSupport: true},
	})
	require.Error(t, err)

	sent := f.notifier.directed[userID.String()]
	require.Len(t, sent, 1)
	assert.Equal(t, ws.TypeCrisisSupport, sent[0].MessageType())
}

func TestSubmitPostPublishFailureIsFatal(t *testing.T) {
	f := newFixture(approveVerdict(), &fakePublisher{err: errors.New("sidecar down")})

	_, err := f.pipeline.SubmitPost(context.Background(), PostSubmission{
		Content:  "hello",
		IsPublic: true,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeExternal, apperrors.AsStructuredError(err).Type)
	assert.Empty(t, f.posts.inserted)
	assert.Empty(t, f.notifier.broadcasts)
}

func TestSubmitPostTagValues(t *testing.T) {
	f := newFixture(approveVerdict(), workingPublisher())

	_, err := f.pipeline.SubmitPost(context.Background(), PostSubmission{
		Content:  "hello",
		IsPublic: true,
	})
	require.NoError(t, err)

	byName := map[string]string{}
	for _, tag := range f.pub.tags {
		byName[tag.Name] = tag.Value
	}
	assert.Equal(t, "confession", byName["Content-Type"])
	assert.Equal(t, "true", byName["Public"])
	assert.Equal(t, "Irys-Confession-Board", byName["App"])
	assert.Equal(t, "neutral", byName["Mood"])
}

// --- Reply submission ---

func confessionFixture(f *fixture) *domain.Post {
	confession := &domain.Post{ID: uuid.New(), Content: "original"}
	f.posts.byRef[confession.ID.String()] = confession
	return confession
}

func TestSubmitReplyAnonymousSkipsPublish(t *testing.T) {
	f := newFixture(approveVerdict(), workingPublisher())
	confession := confessionFixture(f)

	reply, err := f.pipeline.SubmitReply(context.Background(), ReplySubmission{
		ConfessionRef: confession.ID.String(),
		Content:       "me too",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, f.pub.calls)
	assert.False(t, reply.Verified)
	assert.Empty(t, reply.TxID)
	assert.Equal(t, confession.ID, reply.ConfessionID)
	assert.Equal(t, 1, f.posts.replyIncrs)

	require.Len(t, f.notifier.broadcasts, 1)
	assert.Equal(t, ws.TypeNewReply, f.notifier.broadcasts[0].MessageType())
}

func TestSubmitReplyIdentifiedPublishes(t *testing.T) {
	f := newFixture(approveVerdict(), workingPublisher())
	confession := confessionFixture(f)
	userID := uuid.New()

	reply, err := f.pipeline.SubmitReply(context.Background(), ReplySubmission{
		ConfessionRef: confession.ID.String(),
		Content:       "same here",
		Author:        domain.AuthorContext{UserID: &userID, DisplayName: "tester"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.pub.calls)
	assert.True(t, reply.Verified)
	assert.Equal(t, "tx123", reply.TxID)
	assert.Equal(t, "tester", reply.Author)
}

func TestSubmitReplyPublishFailureStoresUnverified(t *testing.T) {
	f := newFixture(approveVerdict(), &fakePublisher{err: errors.New("sidecar down")})
	confession := confessionFixture(f)
	userID := uuid.New()

	reply, err := f.pipeline.SubmitReply(context.Background(), ReplySubmission{
		ConfessionRef: confession.ID.String(),
		Content:       "same here",
		Author:        domain.AuthorContext{UserID: &userID},
	})
	require.NoError(t, err)

	assert.False(t, reply.Verified)
	assert.Empty(t, reply.TxID)
	require.Len(t, f.replies.inserted, 1)
	require.Len(t, f.notifier.broadcasts, 1)
}

func TestSubmitReplyConfessionNotFound(t *testing.T) {
	f := newFixture(approveVerdict(), workingPublisher())

	_, err := f.pipeline.SubmitReply(context.Background(), ReplySubmission{
		ConfessionRef: uuid.NewString(),
		Content:       "hello?",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeNotFound, apperrors.AsStructuredError(err).Type)
}

func TestSubmitReplyUnknownParent(t *testing.T) {
	f := newFixture(approveVerdict(), workingPublisher())
	confession := confessionFixture(f)
	missing := uuid.New()

	_, err := f.pipeline.SubmitReply(context.Background(), ReplySubmission{
		ConfessionRef: confession.ID.String(),
		ParentReplyID: &missing,
		Content:       "nested",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeNotFound, apperrors.AsStructuredError(err).Type)
}

func TestSubmitReplyParentFromOtherConfession(t *testing.T) {
	f := newFixture(approveVerdict(), workingPublisher())
	confession := confessionFixture(f)

	foreign := &domain.Reply{ID: uuid.New(), ConfessionID: uuid.New()}
	f.replies.byID[foreign.ID] = foreign

	_, err := f.pipeline.SubmitReply(context.Background(), ReplySubmission{
		ConfessionRef: confession.ID.String(),
		ParentReplyID: &foreign.ID,
		Content:       "nested",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeValidation, apperrors.AsStructuredError(err).Type)
	assert.Empty(t, f.replies.inserted)
}

func TestSubmitReplyThreaded(t *testing.T) {
	f := newFixture(approveVerdict(), workingPublisher())
	confession := confessionFixture(f)

	parent := &domain.Reply{ID: uuid.New(), ConfessionID: confession.ID}
	f.replies.byID[parent.ID] = parent

	reply, err := f.pipeline.SubmitReply(context.Background(), ReplySubmission{
		ConfessionRef: confession.ID.String(),
		ParentReplyID: &parent.ID,
		Content:       "nested",
	})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentReplyID)
	assert.Equal(t, parent.ID, *reply.ParentReplyID)
}

func TestSubmitReplyRejected(t *testing.T) {
	verdict := domain.Verdict{Decision: domain.DecisionReject}
	f := newFixture(verdict, workingPublisher())
	confession := confessionFixture(f)

	_, err := f.pipeline.SubmitReply(context.Background(), ReplySubmission{
		ConfessionRef: confession.ID.String(),
		Content:       "abuse",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeRejected, apperrors.AsStructuredError(err).Type)
	assert.Empty(t, f.replies.inserted)
	assert.Equal(t, 0, f.posts.replyIncrs)
}

func TestSubmitReplyTrimsContent(t *testing.T) {
	f := newFixture(approveVerdict(), workingPublisher())
	confession := confessionFixture(f)

	reply, err := f.pipeline.SubmitReply(context.Background(), ReplySubmission{
		ConfessionRef: confession.ID.String(),
		Content:       "  padded  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "padded", reply.Content)
	assert.Equal(t, f.clock.Now(), reply.Timestamp)
}

package ws

import (
	"time"

	"github.com/Pratiikpy/irys-confession-board/internal/domain"
)

// Message type discriminators. Connected clients switch on these strings,
// so they are part of the wire contract and must not change.
const (
	TypeConnection    = "connection"
	TypePing          = "ping"
	TypePong          = "pong"
	TypeEcho          = "echo"
	TypeError         = "error"
	TypeCrisisSupport = "crisis_support"
	TypeNewConfession = "new_confession"
	TypeNewReply      = "new_reply"
	TypeVoteUpdate    = "vote_update"
)

// Envelope is any outbound message carrying a type discriminator.
type Envelope interface {
	MessageType() string
}

type ConnectionMessage struct {
	Type      string `json:"type"`
	Status    string `json:"status"`
	UserID    string `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

func (m ConnectionMessage) MessageType() string { return m.Type }

func NewConnectionMessage(userID string, at time.Time) ConnectionMessage {
	return ConnectionMessage{
		Type:      TypeConnection,
		Status:    "connected",
		UserID:    userID,
		Timestamp: at.UTC().Format(time.RFC3339),
	}
}

type PongMessage struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

func (m PongMessage) MessageType() string { return m.Type }

func NewPongMessage(at time.Time) PongMessage {
	return PongMessage{Type: TypePong, Timestamp: at.UTC().Format(time.RFC3339)}
}

type EchoMessage struct {
	Type      string `json:"type"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

func (m EchoMessage) MessageType() string { return m.Type }

func NewEchoMessage(data any, at time.Time) EchoMessage {
	return EchoMessage{Type: TypeEcho, Data: data, Timestamp: at.UTC().Format(time.RFC3339)}
}

type ErrorMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (m ErrorMessage) MessageType() string { return m.Type }

func NewErrorMessage(message string, at time.Time) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: message, Timestamp: at.UTC().Format(time.RFC3339)}
}

// CrisisResources points a user at immediate help channels.
type CrisisResources struct {
	Hotline string `json:"hotline"`
	Chat    string `json:"chat"`
	Text    string `json:"text"`
}

type CrisisSupportMessage struct {
	Type      string          `json:"type"`
	Resources CrisisResources `json:"resources"`
}

func (m CrisisSupportMessage) MessageType() string { return m.Type }

func NewCrisisSupportMessage() CrisisSupportMessage {
	return CrisisSupportMessage{
		Type: TypeCrisisSupport,
		Resources: CrisisResources{
			Hotline: "988 - Suicide & Crisis Lifeline",
			Chat:    "https://suicidepreventionlifeline.org/chat/",
			Text:    "Text HOME to 741741",
		},
	}
}

type confessionPayload struct {
	ID         string   `json:"id"`
	TxID       string   `json:"tx_id"`
	GatewayURL string   `json:"gateway_url"`
	Content    string   `json:"content"`
	Author     string   `json:"author"`
	Timestamp  string   `json:"timestamp"`
	Upvotes    int      `json:"upvotes"`
	Mood       string   `json:"mood"`
	Tags       []string `json:"tags"`
	Verified   bool     `json:"verified"`
}

type NewConfessionMessage struct {
	Type       string            `json:"type"`
	Confession confessionPayload `json:"confession"`
}

func (m NewConfessionMessage) MessageType() string { return m.Type }

func NewConfessionBroadcast(post *domain.Post) NewConfessionMessage {
	return NewConfessionMessage{
		Type: TypeNewConfession,
		Confession: confessionPayload{
			ID:         post.ID.String(),
			TxID:       post.TxID,
			GatewayURL: post.GatewayURL,
			Content:    post.Content,
			Author:     post.Author,
			Timestamp:  post.Timestamp.UTC().Format(time.RFC3339),
			Upvotes:    post.Upvotes,
			Mood:       post.Mood,
			Tags:       post.Tags,
			Verified:   post.Verified,
		},
	}
}

type replyPayload struct {
	ID           string `json:"id"`
	ConfessionID string `json:"confession_id"`
	Content      string `json:"content"`
	Author       string `json:"author"`
	Timestamp    string `json:"timestamp"`
	Upvotes      int    `json:"upvotes"`
}

type NewReplyMessage struct {
	Type  string       `json:"type"`
	Reply replyPayload `json:"reply"`
}

func (m NewReplyMessage) MessageType() string { return m.Type }

func NewReplyBroadcast(reply *domain.Reply) NewReplyMessage {
	return NewReplyMessage{
		Type: TypeNewReply,
		Reply: replyPayload{
			ID:           reply.ID.String(),
			ConfessionID: reply.ConfessionID.String(),
			Content:      reply.Content,
			Author:       reply.Author,
			Timestamp:    reply.Timestamp.UTC().Format(time.RFC3339),
			Upvotes:      reply.Upvotes,
		},
	}
}

type VoteUpdateMessage struct {
	Type         string `json:"type"`
	ConfessionID string `json:"confession_id"`
	VoteType     string `json:"vote_type"`
}

func (m VoteUpdateMessage) MessageType() string { return m.Type }

func NewVoteUpdateMessage(confessionID string, voteType domain.VoteType) VoteUpdateMessage {
	return VoteUpdateMessage{
		Type:         TypeVoteUpdate,
		ConfessionID: confessionID,
		VoteType:     string(voteType),
	}
}

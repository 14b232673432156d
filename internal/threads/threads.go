// Package threads assembles flat reply lists into nested trees.
package threads

import (
	"github.com/google/uuid"

	"github.com/Pratiikpy/irys-confession-board/internal/domain"
)

// Node is a reply with its nested children.
type Node struct {
	domain.Reply
	Children []*Node `json:"children"`
}

// Build turns a chronologically ordered reply list into a forest. Children
// attach to their parent when the parent appears earlier in the list; a
// reply whose parent is missing (deleted, or filtered out upstream) is
// promoted to a root rather than dropped. Input order is preserved at every
// level.
func Build(replies []domain.Reply) []*Node {
	nodes := make(map[uuid.UUID]*Node, len(replies))
	roots := make([]*Node, 0, len(replies))

	for _, reply := range replies {
		node := &Node{Reply: reply, Children: []*Node{}}
		nodes[reply.ID] = node

		if reply.ParentReplyID != nil {
			if parent, ok := nodes[*reply.ParentReplyID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots
}

package models

// MaxContentLength bounds post, comment and reply text.
const MaxContentLength = 280

// Post is a top-level feed entry. Posts are kept most-recent-first and carry
// an ordered comment tree addressed by index paths.
type Post struct {
	Wallet    string     `json:"wallet"` // author's mint address reference
	Content   string     `json:"content"`
	Timestamp int64      `json:"timestamp"`
	Likes     int64      `json:"likes"`
	Comments  []*Comment `json:"comments"`
}

// Comment is a node in the reply tree. Replies always append, so an index
// path stays valid for the node it addressed when it was created.
type Comment struct {
	Wallet    string     `json:"wallet"`
	Content   string     `json:"content"`
	Timestamp int64      `json:"timestamp"`
	Likes     int64      `json:"likes"`
	Replies   []*Comment `json:"replies"`
}

// ResolvePath walks the comment tree by child indices. Every segment must
// address an existing node; a bad segment rejects the whole path and the tree
// is left unmodified.
func (p *Post) ResolvePath(path []int) (*Comment, error) {
	if len(path) == 0 {
		return nil, NotFoundf("path", "empty comment path")
	}
	level := p.Comments
	var node *Comment
	for i, idx := range path {
		if idx < 0 || idx >= len(level) {
			return nil, NotFoundf("path", "invalid comment path at segment %d", i)
		}
		node = level[idx]
		level = node.Replies
	}
	return node, nil
}

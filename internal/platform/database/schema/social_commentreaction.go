package schema

// SocialCommentReactionTable represents the 'social.commentreaction' table.
// The primary key is (commentid, userid): one row per viewer per comment.
type SocialCommentReactionTable struct {
	Table     string
	CommentID string
	UserID    string
	IsLike    string
	CreatedAt string
}

// SocialCommentReaction is the schema definition for social.commentreaction
var SocialCommentReaction = SocialCommentReactionTable{
	Table:     "social.commentreaction",
	CommentID: "commentid",
	UserID:    "userid",
	IsLike:    "islike",
	CreatedAt: "createdat",
}

func (t SocialCommentReactionTable) Columns() []string {
	return []string{t.CommentID, t.UserID, t.IsLike, t.CreatedAt}
}

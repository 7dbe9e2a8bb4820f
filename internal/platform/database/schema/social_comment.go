package schema

// SocialCommentTable represents the 'social.comment' table
type SocialCommentTable struct {
	Table      string
	ID         string
	MangaID    string
	AuthorID   string
	ParentID   string
	Body       string
	IsSpoiler  string
	IsApproved string
	CreatedAt  string
	UpdatedAt  string
}

// SocialComment is the schema definition for social.comment
var SocialComment = SocialCommentTable{
	Table:      "social.comment",
	ID:         "id",
	MangaID:    "mangaid",
	AuthorID:   "authorid",
	ParentID:   "parentid",
	Body:       "body",
	IsSpoiler:  "isspoiler",
	IsApproved: "isapproved",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
}

func (t SocialCommentTable) Columns() []string {
	return []string{
		t.ID, t.MangaID, t.AuthorID, t.ParentID, t.Body,
		t.IsSpoiler, t.IsApproved, t.CreatedAt, t.UpdatedAt,
	}
}

package schema

// CoreMangaTable represents the 'core.manga' table
type CoreMangaTable struct {
	Table              string
	ID                 string
	Title              string
	Slug               string
	Status             string
	IsCommentModerated string
	CreatedAt          string
	UpdatedAt          string
	DeletedAt          string
}

// CoreManga is the schema definition for core.manga
var CoreManga = CoreMangaTable{
	Table:              "core.manga",
	ID:                 "id",
	Title:              "title",
	Slug:               "slug",
	Status:             "status",
	IsCommentModerated: "iscommentmoderated",
	CreatedAt:          "createdat",
	UpdatedAt:          "updatedat",
	DeletedAt:          "deletedat",
}

func (t CoreMangaTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Slug, t.Status, t.IsCommentModerated,
		t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}

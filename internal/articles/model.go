package articles

import "time"

// LegalArticle is a statute provision used to enrich question analyses.
type LegalArticle struct {
	ID             string    `json:"id"`
	LawName        string    `json:"law_name"`
	ArticleNumber  string    `json:"article_number"`
	ArticleTitle   string    `json:"article_title,omitempty"`
	ArticleContent string    `json:"article_content"`
	LawCategory    string    `json:"law_category,omitempty"`
	SubjectTags    []string  `json:"subject_tags,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

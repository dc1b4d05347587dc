package articles

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, article LegalArticle) error {
	tags, err := json.Marshal(article.SubjectTags)
	if err != nil {
		return fmt.Errorf("marshal subject tags: %w", err)
	}

	const query = `
INSERT INTO legal_articles (id, law_name, article_number, article_title, article_content, law_category, subject_tags, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`
	_, err = r.DB.ExecContext(
		ctx,
		query,
		article.ID,
		article.LawName,
		article.ArticleNumber,
		article.ArticleTitle,
		article.ArticleContent,
		article.LawCategory,
		tags,
		article.CreatedAt,
	)
	return err
}

func (r *PGRepo) SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]LegalArticle, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	var clauses []string
	var args []any
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		pat := "%" + kw + "%"
		clauses = append(clauses, fmt.Sprintf("(law_name ILIKE $%d OR article_content ILIKE $%d)", len(args)+1, len(args)+2))
		args = append(args, pat, pat)
	}
	if len(clauses) == 0 {
		return nil, nil
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
SELECT id, law_name, article_number, article_title, article_content, law_category, subject_tags, created_at, updated_at
FROM legal_articles
WHERE %s
ORDER BY law_name, article_number
LIMIT $%d`, strings.Join(clauses, " OR "), len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LegalArticle
	for rows.Next() {
		var article LegalArticle
		var title, category sql.NullString
		var tags []byte
		if err := rows.Scan(
			&article.ID,
			&article.LawName,
			&article.ArticleNumber,
			&title,
			&article.ArticleContent,
			&category,
			&tags,
			&article.CreatedAt,
			&article.UpdatedAt,
		); err != nil {
			return nil, err
		}
		article.ArticleTitle = title.String
		article.LawCategory = category.String
		if len(tags) > 0 {
			_ = json.Unmarshal(tags, &article.SubjectTags)
		}
		out = append(out, article)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)

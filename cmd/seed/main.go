package main

// Seed a starter set of legal articles for enrichment lookups:
//   go run ./cmd/seed

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"lawexam-backend/internal/articles"
	"lawexam-backend/internal/shared/config"
	"lawexam-backend/internal/shared/storage/db"
	"lawexam-backend/internal/shared/telemetry"
)

var seedArticles = []articles.LegalArticle{
	{
		LawName:        "民法",
		ArticleNumber:  "153",
		ArticleTitle:   "契約之成立",
		ArticleContent: "當事人互相表示意思一致者，無論其為明示或默示，契約即為成立。當事人對於必要之點，意思一致，而對於非必要之點，未經表示意思者，推定其契約為成立。",
		LawCategory:    "民事法",
		SubjectTags:    []string{"契約", "意思表示"},
	},
	{
		LawName:        "民法",
		ArticleNumber:  "184",
		ArticleTitle:   "獨立侵權行為之責任",
		ArticleContent: "因故意或過失，不法侵害他人之權利者，負損害賠償責任。故意以背於善良風俗之方法，加損害於他人者亦同。",
		LawCategory:    "民事法",
		SubjectTags:    []string{"侵權行為", "損害賠償", "責任"},
	},
	{
		LawName:        "民法",
		ArticleNumber:  "345",
		ArticleTitle:   "買賣之意義及成立",
		ArticleContent: "稱買賣者，謂當事人約定一方移轉財產權於他方，他方支付價金之契約。當事人就標的物及其價金互相同意時，買賣契約即為成立。",
		LawCategory:    "民事法",
		SubjectTags:    []string{"買賣", "契約", "財產"},
	},
	{
		LawName:        "刑法",
		ArticleNumber:  "12",
		ArticleTitle:   "犯罪之責任要件",
		ArticleContent: "行為非出於故意或過失者，不罰。過失行為之處罰，以有特別規定者，為限。",
		LawCategory:    "刑事法",
		SubjectTags:    []string{"故意", "過失", "責任"},
	},
	{
		LawName:        "消費者保護法",
		ArticleNumber:  "7",
		ArticleTitle:   "企業經營者之責任",
		ArticleContent: "從事設計、生產、製造商品或提供服務之企業經營者，於提供商品流通進入市場，或提供服務時，應確保該商品或服務，符合當時科技或專業水準可合理期待之安全性。",
		LawCategory:    "消費者保護",
		SubjectTags:    []string{"消費者", "保護", "責任"},
	},
	{
		LawName:        "公司法",
		ArticleNumber:  "23",
		ArticleTitle:   "負責人之忠實義務",
		ArticleContent: "公司負責人應忠實執行業務並盡善良管理人之注意義務，如有違反致公司受有損害者，負損害賠償責任。",
		LawCategory:    "商事法",
		SubjectTags:    []string{"公司", "義務", "損害"},
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	telemetry.Setup("lawexam-seed", cfg.LogLevel, cfg.Env)
	ctx := context.Background()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.DefaultOptions())
	if err != nil {
		telemetry.L().Error().Err(err).Msg("failed to connect database")
		os.Exit(1)
	}
	defer sqlDB.Close()

	repo := &articles.PGRepo{DB: sqlDB}
	now := time.Now().UTC()
	for _, article := range seedArticles {
		article.ID = uuid.NewString()
		article.CreatedAt = now
		article.UpdatedAt = now
		if err := repo.Create(ctx, article); err != nil {
			telemetry.L().Error().Err(err).
				Str("law_name", article.LawName).
				Str("article_number", article.ArticleNumber).
				Msg("seed article failed")
			os.Exit(1)
		}
	}
	telemetry.L().Info().Int("count", len(seedArticles)).Msg("legal articles seeded")
}

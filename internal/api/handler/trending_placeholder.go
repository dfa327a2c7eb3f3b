package handler

import (
	"InstaCap/internal/api/dto"
	"InstaCap/internal/pkg/consts"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const placeholderNote = "Using fallback data"

var (
	placeholderTones  = []string{consts.ToneCasual, consts.ToneProfessional, consts.ToneFunny}
	placeholderStyles = []string{consts.StyleShort, consts.StyleMedium, consts.StyleLong}
)

// trendingPlaceholder 窗口内没有公开文案时展示的占位列表
func trendingPlaceholder(category string, limit int, now time.Time) []*dto.TrendingItemDTO {
	items := make([]*dto.TrendingItemDTO, 0, limit)
	for i := 0; i < limit; i++ {
		tone := placeholderTones[i%len(placeholderTones)]
		items = append(items, &dto.TrendingItemDTO{
			ID:              uuid.NewString(),
			Caption:         fmt.Sprintf("Trending caption %d - %s: share the moment that made your day", i+1, category),
			Tone:            tone,
			Style:           placeholderStyles[i%len(placeholderStyles)],
			EngagementScore: int64(max(95-i, 0)),
			CreatedAt:       now.Add(-time.Duration(i) * time.Hour),
			Category:        tone,
		})
	}
	return items
}

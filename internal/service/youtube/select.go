package youtube

import (
	"sort"

	"github.com/Taichi-iskw/yt-trend/internal/model"
)

// SelectVideos returns at most limit videos whose publish day falls inside window,
// newest first. Sources do not guarantee ordering, so the result is always sorted here.
// An empty (non-nil) slice is returned when nothing matches.
func SelectVideos(videos []*model.Video, window model.DateWindow, limit int) []*model.Video {
	selected := make([]*model.Video, 0, len(videos))
	if limit <= 0 {
		return selected
	}

	for _, v := range videos {
		if v == nil || !window.Contains(v.PublishedAt) {
			continue
		}
		selected = append(selected, v)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].PublishedAt.After(selected[j].PublishedAt)
	})

	if len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}

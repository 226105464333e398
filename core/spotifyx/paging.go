package spotifyx

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/ShHaWkK/SpootifyCLI/logger"
	"github.com/ShHaWkK/SpootifyCLI/model"
)

const (
	likedPageSize = 50
	// pageInterval spaces page fetches out so a large library does not
	// trip the remote API's rate limiter.
	pageInterval = 150 * time.Millisecond
)

// LikedPager fetches one page of the saved-tracks library. *Client
// satisfies it.
type LikedPager interface {
	LikedTracks(ctx context.Context, limit, offset int) ([]LikedTrack, int, error)
}

// CollectPreviews walks the entire saved-tracks library and gathers the
// tracks that carry a preview clip. Each page's previews are handed to
// onPage as soon as the page lands, so the first batch is usable while
// the rest of the library is still loading. A mid-walk failure returns
// the previews collected so far together with the error.
func CollectPreviews(ctx context.Context, pager LikedPager, onPage func(batch []model.RemoteTrack)) ([]model.RemoteTrack, error) {
	limiter := rate.NewLimiter(rate.Every(pageInterval), 1)
	var collected []model.RemoteTrack
	offset := 0
	for {
		if err := limiter.Wait(ctx); err != nil {
			return collected, err
		}
		page, total, err := pager.LikedTracks(ctx, likedPageSize, offset)
		if err != nil {
			logger.Warn("liked tracks page failed, keeping partial results",
				logger.Int("offset", offset),
				logger.Int("collected", len(collected)),
				logger.ErrorField(err))
			return collected, err
		}
		batch := make([]model.RemoteTrack, 0, len(page))
		for _, t := range page {
			if t.HasPreview() {
				batch = append(batch, t.RemoteTrack)
			}
		}
		if len(batch) > 0 {
			collected = append(collected, batch...)
			if onPage != nil {
				onPage(batch)
			}
		}
		offset += len(page)
		if len(page) < likedPageSize || offset >= total {
			break
		}
	}
	return collected, nil
}

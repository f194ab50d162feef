package limiter

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// RateLimiter giới hạn số lượng request trong một cửa sổ trượt
type RateLimiter struct {
	clock        clockwork.Clock
	window       time.Duration
	requestTimes []time.Time
	maxRequests  int
	mu           sync.Mutex
}

// NewRateLimiter cho phép tối đa maxRequests request mỗi giây
func NewRateLimiter(maxRequests int) *RateLimiter {
	return NewRateLimiterWithClock(maxRequests, time.Second, clockwork.NewRealClock())
}

func NewRateLimiterWithClock(maxRequests int, window time.Duration, clock clockwork.Clock) *RateLimiter {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	return &RateLimiter{
		clock:        clock,
		window:       window,
		requestTimes: make([]time.Time, 0, maxRequests),
		maxRequests:  maxRequests,
	}
}

// SetMaxRequests đổi giới hạn khi cấu hình được nạp lại
func (r *RateLimiter) SetMaxRequests(maxRequests int) {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	r.mu.Lock()
	r.maxRequests = maxRequests
	r.mu.Unlock()
}

// Allow kiểm tra xem có thể thực hiện request mới hay không
func (r *RateLimiter) Allow() bool {
	_, ok := r.reserve()
	return ok
}

// Wait chặn đến khi có slot trống hoặc ctx kết thúc
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait, ok := r.reserve()
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.clock.After(wait):
		}
	}
}

// reserve ghi nhận request nếu còn slot, nếu không trả về thời gian cần chờ
func (r *RateLimiter) reserve() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	windowStart := now.Add(-r.window)

	// Xóa các request cũ hơn cửa sổ
	validTimes := r.requestTimes[:0]
	for _, t := range r.requestTimes {
		if t.After(windowStart) {
			validTimes = append(validTimes, t)
		}
	}
	r.requestTimes = validTimes

	if len(r.requestTimes) < r.maxRequests {
		r.requestTimes = append(r.requestTimes, now)
		return 0, true
	}

	// Request cũ nhất sẽ rời cửa sổ sau khoảng thời gian này
	return r.requestTimes[0].Add(r.window).Sub(now), false
}

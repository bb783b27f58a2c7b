package ratelimit

import (
	"sync/atomic"
	"time"
)

type LimiterConfig struct {
	Capacity int
	RatePS   int // tokens/秒
}

func GetDefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		Capacity: 100,
		RatePS:   20,
	}
}

/*
Token bucket，補充採用 lazy 計算
每次 Allow 依照與上次補充的時間差補 token，不需要背景 goroutine
*/
type TokenBucket struct {
	LimiterConfig
	current      atomic.Int64
	lastRefilled atomic.Int64
	now          func() time.Time
}

func NewTokenBucket(config *LimiterConfig) *TokenBucket {
	t := &TokenBucket{now: time.Now}
	if config != nil && config.Capacity > 0 {
		t.LimiterConfig = *config
	} else {
		t.LimiterConfig = GetDefaultLimiterConfig()
	}
	t.current.Store(int64(t.Capacity))
	t.lastRefilled.Store(t.now().UnixNano())
	return t
}

func (t *TokenBucket) Allow() bool {
	t.refill()
	for {
		current := t.current.Load()
		if current <= 0 {
			return false
		}
		if t.current.CompareAndSwap(current, current-1) {
			return true
		}
	}
}

func (t *TokenBucket) refill() {
	if t.RatePS <= 0 {
		return
	}
	interval := int64(time.Second) / int64(t.RatePS)
	for {
		now := t.now().UnixNano()
		last := t.lastRefilled.Load()
		tokens := (now - last) / interval
		if tokens <= 0 {
			return
		}
		// 只有搶到 lastRefilled 的 goroutine 負責補 token
		if !t.lastRefilled.CompareAndSwap(last, last+tokens*interval) {
			continue
		}
		for {
			current := t.current.Load()
			next := current + tokens
			if next > int64(t.Capacity) {
				next = int64(t.Capacity)
			}
			if t.current.CompareAndSwap(current, next) {
				return
			}
		}
	}
}

func (t *TokenBucket) Available() int {
	t.refill()
	return int(t.current.Load())
}

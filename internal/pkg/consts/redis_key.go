package consts

const (
	TrendingCacheKey  = "caption:trending:"
	TokenBlacklistKey = "auth:blacklist:"
	RateLimitKey      = "ratelimit:"
)

const (
	TrendingSnapshotLock = "lock:trending:snapshot"
	MonthlyResetLock     = "lock:stats:monthly"
)

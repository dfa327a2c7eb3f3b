package consts

// 集合名
const (
	CollectionUsers     = "users"
	CollectionCaptions  = "captions"
	CollectionAnalytics = "analytics"
	CollectionTrending  = "trending"
	CollectionUserStats = "user_stats"
	CollectionAccounts  = "accounts"
)

// AnonymousUserID 未登录请求的占位 uid，不落库
const AnonymousUserID = "anonymous"

// MaxCaptionLength 文案最大字符数
const MaxCaptionLength = 2000

// MaxExportCaptions 导出数据时最多包含的文案条数
const MaxExportCaptions = 5000

// 文案语气
const (
	ToneCasual        = "casual"
	ToneProfessional  = "professional"
	ToneFunny         = "funny"
	ToneInspirational = "inspirational"
	ToneTrendy        = "trendy"
)

// 文案篇幅
const (
	StyleShort  = "short"
	StyleMedium = "medium"
	StyleLong   = "long"
)

// 目标平台
const (
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
	PlatformTwitter   = "twitter"
	PlatformLinkedIn  = "linkedin"
)

var Tones = []string{ToneCasual, ToneProfessional, ToneFunny, ToneInspirational, ToneTrendy}

var Styles = []string{StyleShort, StyleMedium, StyleLong}

var Platforms = []string{PlatformInstagram, PlatformFacebook, PlatformTwitter, PlatformLinkedIn}

var Languages = []string{"en", "es", "fr", "de", "it", "pt"}

// 历史列表的特殊分类
const (
	CategoryAll       = "all"
	CategoryFavorites = "favorites"
	CategoryRecent    = "recent"
)

// 生成方式
const (
	GenerationMock     = "mock"
	GenerationEnhanced = "enhanced"
	GenerationManual   = "manual"
	MockModelName      = "mock-ai-model"
)

// 埋点事件
const (
	EventCaptionGenerated = "caption_generated"
	EventCaptionFavorited = "caption_favorited"
	EventCaptionDeleted   = "caption_deleted"
	EventUserRegistered   = "user_registered"
	EventUserLogin        = "user_login"
)

// 互动类型
const (
	EngagementLike  = "like"
	EngagementShare = "share"
	EngagementCopy  = "copy"
	EngagementView  = "view"
)

// gin.Context / context 中的鉴权信息
const (
	CtxUID      = "uid"
	CtxIdentity = "identity"
)

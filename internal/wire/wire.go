package wire

import (
	"InstaCap/internal/api"
	"InstaCap/internal/api/config"
	"InstaCap/internal/api/handler"
	"InstaCap/internal/job"
	"InstaCap/internal/pkg/cron"
	"InstaCap/internal/pkg/identity"
	"InstaCap/internal/pkg/llm"
	"InstaCap/internal/pkg/minio"
	"InstaCap/internal/pkg/mongo"
	"InstaCap/internal/pkg/redis"
	"InstaCap/internal/pkg/security"
	"InstaCap/internal/repository"
	"InstaCap/internal/service"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// Infra main 中初始化好的外部依赖，可选项允许为 nil
type Infra struct {
	Store    *mongo.Store
	Objects  *minio.ObjectStore
	Captions *llm.CaptionClient
}

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router   *gin.Engine
	Store    *mongo.Store
	CronMgr  *cron.Manager
	Provider identity.Provider
}

func BuildApplication(ctx context.Context, infra *Infra, cfg *config.Config) (*ApplicationContainer, error) {
	db := infra.Store.Database()

	captionRepo := repository.NewCaptionRepo(db)
	userRepo := repository.NewUserRepo(db)
	userStatsRepo := repository.NewUserStatsRepo(db)
	analyticsRepo := repository.NewAnalyticsRepo(db)
	trendingRepo := repository.NewTrendingRepo(db)

	provider, err := buildProvider(ctx, cfg, repository.NewAccountRepo(db))
	if err != nil {
		return nil, err
	}

	// 可选依赖为 nil 时必须保持接口为 nil
	var (
		enhancer     service.CaptionEnhancer
		textGenModel string
		images       service.ImageStore
		objects      handler.Pinger
	)
	if infra.Captions != nil {
		enhancer = infra.Captions
		textGenModel = infra.Captions.Model()
	}
	if infra.Objects != nil {
		images = infra.Objects
		objects = infra.Objects
	}

	analyticsService := service.NewAnalyticsService(analyticsRepo)
	captionService := service.NewCaptionService(captionRepo, userRepo, userStatsRepo, analyticsService)
	statsService := service.NewStatsService(userStatsRepo, captionRepo)
	userService := service.NewUserService(userRepo, userStatsRepo, captionRepo, provider)
	authService := service.NewAuthService(provider, userService, analyticsService)
	trendingService := service.NewTrendingService(captionRepo, trendingRepo, redis.NewJSONCache(), cfg.Trending)
	generationService := service.NewGenerationService(captionService, analyticsService, enhancer, images, cfg)

	handlers := &api.HandlersGroup{
		AuthHandler:      handler.NewAuthHandler(authService),
		CaptionHandler:   handler.NewCaptionHandler(captionService, generationService, trendingService, statsService, cfg),
		UserHandler:      handler.NewUserHandler(userService, statsService),
		AnalyticsHandler: handler.NewAnalyticsHandler(analyticsService),
		HealthHandler:    handler.NewHealthHandler(infra.Store, objects, provider.Name(), textGenModel),
		Provider:         provider,
		Config:           cfg,
	}

	router := api.SetupRouter(handlers)

	cronMgr := cron.NewCronManager(
		cfg.Cron,
		job.NewMonthlyStatsJob(statsService),
		job.NewTrendingSnapshotJob(trendingService),
	)

	return &ApplicationContainer{
		Router:   router,
		Store:    infra.Store,
		CronMgr:  cronMgr,
		Provider: provider,
	}, nil
}

// buildProvider 按配置选择 Firebase 或本地身份提供方
func buildProvider(ctx context.Context, cfg *config.Config, accounts repository.AccountRepo) (identity.Provider, error) {
	switch cfg.Identity.Provider {
	case "firebase":
		return identity.NewFirebaseProvider(ctx, cfg.Identity.Firebase)
	case "local":
		jwtCfg := cfg.Identity.JWT
		if jwtCfg.Secret == "" {
			return nil, errors.New("identity.jwt.secret is required for local provider")
		}
		issuer := security.NewTokenIssuer(jwtCfg.Secret, jwtCfg.Issuer, time.Duration(jwtCfg.ExpireHours)*time.Hour)
		var blacklist identity.Blacklist
		if redis.Enabled() {
			blacklist = redis.NewTokenBlacklist()
		}
		return identity.NewLocalProvider(accounts, issuer, blacklist, func(err error) bool {
			return errors.Is(err, repository.ErrDuplicateAccount)
		}), nil
	default:
		return nil, fmt.Errorf("unknown identity provider: %q", cfg.Identity.Provider)
	}
}

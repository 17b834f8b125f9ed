// Package app 提供应用程序的初始化和配置功能.
package app

import (
	contextPkg "context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/objectvault/pkg/cache"
	"github.com/yeisme/objectvault/pkg/configs"
	"github.com/yeisme/objectvault/pkg/internal/jobs"
	"github.com/yeisme/objectvault/pkg/internal/mq"
	"github.com/yeisme/objectvault/pkg/internal/storage"
	"github.com/yeisme/objectvault/pkg/log"
	"github.com/yeisme/objectvault/pkg/metrics"
	"github.com/yeisme/objectvault/pkg/middleware"
	"github.com/yeisme/objectvault/pkg/scheduler"
	"github.com/yeisme/objectvault/pkg/tracing"
)

// shutdownTimeout 优雅关停的最长等待时间.
const shutdownTimeout = 15 * time.Second

type App struct {
	Engine  *gin.Engine
	config  *configs.AppConfig
	manager *storage.Manager
	sched   *scheduler.Scheduler
	cancel  contextPkg.CancelFunc
}

func NewApp(configPath string) *App {
	ctx, cancel := contextPkg.WithCancel(contextPkg.Background())
	engine := gin.New()

	// 初始化配置
	if err := configs.InitConfig(configPath); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	// 初始化追踪
	config := configs.GetConfig()
	if err := tracing.InitTracer(config.Tracing); err != nil {
		fmt.Printf("Error initializing tracing: %v\n", err)
		os.Exit(1)
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	// 定时任务调度器
	sched, err := scheduler.NewScheduler()
	if err != nil {
		fmt.Printf("Error initializing scheduler: %v\n", err)
		os.Exit(1)
	}

	if err := jobs.RegisterCronJobs(sched, manager); err != nil {
		l.Error().Err(err).Msg("注册定时任务失败")
	}

	sched.Start()

	// 订阅存储事件，转写用户行为审计流水
	if err := mq.StartConsumers(ctx, manager); err != nil {
		l.Warn().Err(err).Msg("启动事件消费者失败，行为审计降级为仅 API 侧记录")
	}

	engine.Use(
		gin.Recovery(),
		middleware.GinLoggerMiddleware(),
		middleware.CORSMiddleware(config.Server),
		gzip.Gzip(gzip.DefaultCompression),
		middleware.TracingMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.RateLimitMiddleware(config.RateLimit),
		middleware.CircuitBreakerMiddleware(config.CircuitBreaker),
		middleware.StorageMiddleware(manager),
		middleware.SchedulerMiddleware(sched),
	)

	// 搜索读路径启用响应缓存，其余路径跳过
	if kvClient := manager.GetKVClient(); kvClient != nil {
		cacheCfg := middleware.DefaultCacheConfig(cache.NewCache(kvClient))
		cacheCfg.Skipper = func(c *gin.Context) bool {
			return !strings.HasPrefix(c.Request.URL.Path, "/api/v1/newsletter/search") &&
				!strings.HasPrefix(c.Request.URL.Path, "/api/v1/documents/search")
		}
		engine.Use(middleware.CacheMiddleware(cacheCfg))
	}

	if config.Metrics.Enabled {
		_ = metrics.StartMetricsServer(config.Metrics, engine)
	}

	return &App{
		Engine:  engine,
		config:  config,
		manager: manager,
		sched:   sched,
		cancel:  cancel,
	}
}

// Run 启动 HTTP 服务并阻塞等待退出信号，随后按序优雅关停.
func (a *App) Run() error {
	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	ctx, stop := signal.NotifyContext(contextPkg.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	l := log.Logger()
	l.Info().Str("addr", addr).Msg("HTTP 服务已启动")

	select {
	case err := <-errCh:
		a.shutdown(l)

		return err
	case <-ctx.Done():
	}

	l.Info().Msg("收到退出信号，开始优雅关停")

	shutdownCtx, cancel := contextPkg.WithTimeout(contextPkg.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("HTTP 服务关停失败")
	}

	a.shutdown(l)

	return nil
}

// shutdown 依次停止调度器、事件消费者与存储连接.
func (a *App) shutdown(l *zerolog.Logger) {
	if a.sched != nil {
		if err := a.sched.Shutdown(); err != nil {
			l.Warn().Err(err).Msg("调度器关闭失败")
		}
	}

	// 取消后台消费者的根 context
	if a.cancel != nil {
		a.cancel()
	}

	if a.manager != nil {
		if err := a.manager.Close(); err != nil {
			l.Error().Err(err).Msg("存储资源关闭失败")
		}
	}

	shutdownCtx, cancel := contextPkg.WithTimeout(contextPkg.Background(), shutdownTimeout)
	defer cancel()

	if err := tracing.ShutdownTracer(shutdownCtx); err != nil {
		l.Warn().Err(err).Msg("链路追踪关闭失败")
	}
}

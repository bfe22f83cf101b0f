// Package app 组装并运行文件 CDN：日志、追踪、指标、存储、事件、调度与 HTTP 服务.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/filecdn/pkg/configs"
	"github.com/yeisme/filecdn/pkg/internal/handle"
	"github.com/yeisme/filecdn/pkg/internal/jobs"
	"github.com/yeisme/filecdn/pkg/internal/router"
	"github.com/yeisme/filecdn/pkg/internal/service"
	"github.com/yeisme/filecdn/pkg/internal/storage"
	"github.com/yeisme/filecdn/pkg/internal/storage/mq"
	"github.com/yeisme/filecdn/pkg/log"
	"github.com/yeisme/filecdn/pkg/metrics"
	"github.com/yeisme/filecdn/pkg/middleware"
	"github.com/yeisme/filecdn/pkg/scheduler"
	"github.com/yeisme/filecdn/pkg/tracing"
)

const readHeaderTimeout = 10 * time.Second

// App 持有全部运行时资源. 由 New 创建，Run 返回后资源已释放.
type App struct {
	Engine *gin.Engine

	config  *configs.AppConfig
	logger  *zerolog.Logger
	storage *storage.Manager
	events  *mq.Client
	files   *service.FileService
	sched   *scheduler.Scheduler
	server  *http.Server
}

// New 按配置初始化全部组件. 任一步骤失败时已创建的资源会被释放.
func New(ctx context.Context, config *configs.AppConfig) (*App, error) {
	log.Init(config.Log, config.Server.Debug)
	l := log.Logger()

	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	a := &App{config: config, logger: l}

	if err := a.init(ctx); err != nil {
		if cerr := a.Close(context.WithoutCancel(ctx)); cerr != nil {
			l.Warn().Err(cerr).Msg("release resources after failed init")
		}

		return nil, err
	}

	return a, nil
}

func (a *App) init(ctx context.Context) error {
	config := a.config

	// 初始化追踪
	if err := tracing.InitTracer(ctx, config.Tracing); err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	var err error
	if a.storage, err = storage.New(ctx, config, a.logger); err != nil {
		return err
	}

	opts := []service.Option{service.WithDeployment(string(config.Stage), config.PublicURL())}

	if config.Events.Enabled {
		if a.events, err = mq.New(ctx, config.Events, a.logger, mq.Options{Metrics: config.Metrics.Enabled}); err != nil {
			return fmt.Errorf("init events: %w", err)
		}

		opts = append(opts, service.WithEvents(a.events))
	}

	a.files = service.NewFileService(a.storage.Meta, a.storage.Content, a.logger, opts...)

	if a.sched, err = scheduler.NewScheduler(a.logger); err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	if err = jobs.RegisterCronJobs(context.WithoutCancel(ctx), a.sched, a.files, config.Reconcile); err != nil {
		return fmt.Errorf("register jobs: %w", err)
	}

	a.Engine = a.newEngine()
	a.server = &http.Server{
		Addr:              net.JoinHostPort(config.Server.Host, strconv.Itoa(config.Server.Port)),
		Handler:           a.Engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return nil
}

func (a *App) newEngine() *gin.Engine {
	cfg := a.config
	engine := gin.New()

	engine.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.GinLoggerMiddleware(a.logger),
		middleware.CORSMiddleware(cfg.Server),
		middleware.TracingMiddleware(),
	)

	if cfg.Metrics.Enabled {
		engine.Use(middleware.PrometheusMiddleware())
	}

	engine.Use(
		middleware.TimeoutMiddleware(cfg.Server.GetTimeoutDuration()),
		middleware.RateLimitMiddleware(cfg.RateLimit),
		middleware.CircuitBreakerMiddleware(cfg.CircuitBreaker),
	)

	h := handle.New(a.files, handle.Options{
		PublicURL:     cfg.PublicURL(),
		PageTitle:     cfg.Server.PageTitle,
		MaxUploadSize: cfg.Server.MaxUploadSize,
		Meta:          a.storage.Meta,
		Content:       a.storage.Content,
		Logger:        a.logger,
	})
	router.Register(engine, h, cfg.Metrics)

	return engine
}

// Files 返回文件服务.
func (a *App) Files() *service.FileService {
	return a.files
}

// Run 启动 HTTP 服务与调度器，直到 ctx 取消或服务出错；返回前会优雅关闭并释放资源.
func (a *App) Run(ctx context.Context) error {
	configs.WatchConfig(a.config, a.onConfigChange)

	a.sched.Start()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info().
			Str("addr", a.server.Addr).
			Str("stage", string(a.config.Stage)).
			Str("public_url", a.config.PublicURL()).
			Msg("http server listening")

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.config.Server.GetShutdownGrace())
		defer cancel()

		a.logger.Info().Msg("shutting down http server")

		return a.server.Shutdown(shutdownCtx)
	})

	err := g.Wait()

	return errors.Join(err, a.Close(context.WithoutCancel(ctx)))
}

// onConfigChange 运行期间只热更新日志级别.
func (a *App) onConfigChange(next *configs.AppConfig, err error) {
	if err != nil {
		a.logger.Warn().Err(err).Msg("ignoring invalid config change")
		return
	}

	if err := log.SetLevel(next.Log.Level); err != nil {
		a.logger.Warn().Err(err).Str("level", next.Log.Level).Msg("invalid log level")
		return
	}

	a.logger.Info().Str("level", next.Log.Level).Msg("config reloaded")
}

// Close 按依赖的逆序释放资源. Run 返回前会自动调用.
func (a *App) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}

	var errs []error

	if a.sched != nil {
		errs = append(errs, a.sched.Shutdown())
	}

	if a.events != nil {
		errs = append(errs, a.events.Close())
	}

	if a.storage != nil {
		errs = append(errs, a.storage.Close(ctx))
	}

	errs = append(errs, tracing.ShutdownTracer(ctx), log.Close())

	return errors.Join(errs...)
}

package cmd

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/controller"
	authgrpc "github.com/vibast-solutions/ms-go-mentor-auth/app/grpc"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/mailer"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/middleware"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/nickname"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/repository"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/security"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/service"
	"github.com/vibast-solutions/ms-go-mentor-auth/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

var verifyOnly bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long:  `Start both HTTP (Echo) and gRPC servers for the authentication service.`,
	Run:   runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&verifyOnly, "verify-only", false, "load only the public key and serve token validation")
	rootCmd.AddCommand(serveCmd)
}

type services struct {
	auth     *service.AuthService
	internal service.InternalAuthService
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	privateKeyPath := cfg.JWT.PrivateKeyPath
	if verifyOnly {
		privateKeyPath = ""
	} else if privateKeyPath == "" {
		logrus.Fatal("JWT_PRIVATE_KEY_PATH is required unless --verify-only is set")
	}
	keys, err := security.LoadKeyPair(privateKeyPath, cfg.JWT.PublicKeyPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load signing keys")
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	svc := buildServices(cfg, db, keys)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runHTTPServer(gctx, cfg, svc)
	})
	g.Go(func() error {
		return runGRPCServer(gctx, cfg, svc)
	})
	if err := g.Wait(); err != nil {
		logrus.WithError(err).Fatal("Server stopped with error")
	}
	logrus.Info("Servers stopped")
}

func buildServices(cfg *config.Config, db *sql.DB, keys *security.KeyPair) services {
	normalUserRepo := repository.NewNormalUserRepository(db)
	seniorUserRepo := repository.NewSeniorUserRepository(db)
	verificationRepo := repository.NewEmailVerificationRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	nicknames := nickname.New(nickname.WithNumber())

	var verificationMailer service.VerificationMailer = mailer.LogMailer{}
	if cfg.SMTP.Enabled() {
		verificationMailer = mailer.NewSMTPMailer(cfg.SMTP)
	} else {
		logrus.Warn("SMTP_HOST is not set, verification codes are only logged")
	}

	authService := service.NewAuthService(
		seniorUserRepo,
		service.NewCredentialVerifier(seniorUserRepo),
		service.NewIdentityResolver(normalUserRepo, seniorUserRepo, nicknames),
		service.NewTokenService(keys, sessionRepo, cfg.JWT),
		service.NewVerificationEngine(db, seniorUserRepo, verificationRepo, cfg.Verification),
		service.NewOAuthFederator(cfg.OAuth),
		nicknames,
		cfg,
		service.WithMailer(verificationMailer),
	)

	return services{
		auth:     authService,
		internal: service.NewInternalAuthService(cfg.Internal.APIKeys),
	}
}

func newHTTPServer(cfg *config.Config, svc services) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	authController := controller.NewAuthController(svc.auth, cfg)
	authMiddleware := middleware.NewAuthMiddleware(svc.auth)
	apiKeyMiddleware := middleware.NewAPIKeyMiddleware(svc.internal)

	auth := e.Group("/auth")
	auth.POST("/validate-token", authController.ValidateToken)

	internal := e.Group("/internal")
	internal.Use(apiKeyMiddleware.RequireAPIKey)
	internal.POST("/validate-token", authController.ValidateToken)

	if verifyOnly {
		return e
	}

	auth.POST("/senior", authController.SeniorLogin)
	auth.PATCH("/token", authController.RefreshToken)
	auth.GET("/:provider", authController.OAuthRedirect)
	auth.GET("/:provider/callback", authController.OAuthCallback)

	authProtected := auth.Group("")
	authProtected.Use(authMiddleware.RequireAuth)
	authProtected.DELETE("/token", authController.Logout)

	seniorController := controller.NewSeniorController(svc.auth)
	seniors := e.Group("/users/senior")
	seniors.POST("", seniorController.Register)
	seniors.POST("/verification", seniorController.RequestVerification)
	seniors.POST("/:id/verification", seniorController.ConfirmVerification)

	accountController := controller.NewAccountController(svc.auth, cfg)
	me := e.Group("/users/me")
	me.Use(authMiddleware.RequireAuth)
	me.GET("", accountController.Me)
	me.DELETE("", accountController.Delete)

	return e
}

func runHTTPServer(ctx context.Context, cfg *config.Config, svc services) error {
	e := newHTTPServer(cfg, svc)
	httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logrus.Info("Stopping HTTP server")
	return e.Shutdown(shutdownCtx)
}

func runGRPCServer(ctx context.Context, cfg *config.Config, svc services) error {
	grpcAddr := net.JoinHostPort(cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return err
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(authgrpc.APIKeyUnaryInterceptor(svc.internal)),
		grpc.StreamInterceptor(authgrpc.APIKeyStreamInterceptor(svc.internal)),
	)
	authgrpc.RegisterSessionServiceServer(grpcServer, authgrpc.NewSessionServer(svc.auth, svc.internal))

	go func() {
		<-ctx.Done()
		logrus.Info("Stopping gRPC server")
		grpcServer.GracefulStop()
	}()

	logrus.WithField("addr", grpcAddr).Info("Starting gRPC server")
	return grpcServer.Serve(lis)
}

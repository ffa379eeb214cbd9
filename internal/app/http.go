package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"todoweb/internal/config"
	"todoweb/internal/delivery/http/v1"
	"todoweb/internal/identity"
	"todoweb/internal/store"
	"todoweb/internal/todolist"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(v1.Templates())
	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router *gin.Engine) {
	cfg := config.Global()
	jwtCfg := cfg.JWT

	provider := identity.NewPostgresProvider(
		globalLogger,
		globalPostgresPool,
		identity.NewLogMailer(globalLogger),
		cfg.BaseURL,
		jwtCfg.Issuer,
		[]byte(jwtCfg.SigningKey),
		jwtCfg.AccessTokenTTL,
		jwtCfg.RefreshTokenTTL,
	)
	todoStore := store.NewPostgresStore(globalLogger, globalPostgresPool)
	pages := todolist.NewPages()

	handler := v1.New(globalLogger, provider, todoStore, pages)

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, "/dashboard")
	})
	router.GET("/login", handler.HandleLoginPage)
	router.GET("/register", handler.HandleRegisterPage)

	authRouter := router.Group("/auth")
	authRouter.POST("/login", handler.HandleLogin)
	authRouter.POST("/register", handler.HandleRegister)
	authRouter.GET("/verify", handler.HandleVerify)
	authRouter.POST("/logout", handler.HandleSessionGate, handler.HandleLogout)

	router.GET("/dashboard", handler.HandleSessionGate, handler.HandleDashboard)

	todosRouter := router.Group("/todos", handler.HandleSessionGate)
	todosRouter.POST("", handler.HandleCreateTodo)
	todosRouter.GET("/edit/cancel", handler.HandleCancelEdit)
	todosRouter.GET("/:id/edit", handler.HandleStartEdit)
	todosRouter.POST("/:id/toggle", handler.HandleToggleTodo)
	todosRouter.POST("/:id/rename", handler.HandleRenameTodo)
	todosRouter.POST("/:id/delete", handler.HandleDeleteTodo)
}

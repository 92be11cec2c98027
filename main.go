package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"police_training_backend/config"
	"police_training_backend/content"
	"police_training_backend/db"
	"police_training_backend/logger"
	"police_training_backend/middleware"
	"police_training_backend/models"
	"police_training_backend/routes"
	"police_training_backend/scenario"
	"police_training_backend/store"
)

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "police-training",
	Short:         "Backend for the law-enforcement scenario training platform",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if log, err = logger.New(cfg.Environment, cfg.LogLevel); err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var validateContentCmd = &cobra.Command{
	Use:   "validate-content [dir]",
	Short: "Load and validate a content directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.ContentDir
		if len(args) == 1 {
			dir = args[0]
		}
		catalog, err := loadCatalog(dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d scenarios, %d laws, %d courses\n",
			len(catalog.Scenarios()), len(catalog.Laws("")), len(catalog.Courses()))
		return nil
	},
}

var (
	newUserEmail    string
	newUserName     string
	newUserPassword string
	newUserRole     string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a user account, typically the first instructor or admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch newUserRole {
		case models.RoleTrainee, models.RoleInstructor, models.RoleAdmin:
		default:
			return fmt.Errorf("unknown role %q", newUserRole)
		}
		if len(newUserPassword) < 8 {
			return errors.New("password must be at least 8 characters")
		}

		database, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		hash, err := middleware.HashPassword(newUserPassword)
		if err != nil {
			return err
		}
		user, err := store.New(database).Users().Create(cmd.Context(), newUserEmail, newUserName, hash, newUserRole)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s, %s)\n", user.ID, user.Email, user.Role)
		return nil
	},
}

func init() {
	createUserCmd.Flags().StringVar(&newUserEmail, "email", "", "email address")
	createUserCmd.Flags().StringVar(&newUserName, "username", "", "display name")
	createUserCmd.Flags().StringVar(&newUserPassword, "password", "", "password (min 8 characters)")
	createUserCmd.Flags().StringVar(&newUserRole, "role", models.RoleInstructor, "trainee, instructor or admin")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(serveCmd, validateContentCmd, createUserCmd)
}

func loadCatalog(dir string) (*content.Catalog, error) {
	if dir == "" {
		return content.Default()
	}
	return content.Load(dir)
}

func serve(ctx context.Context) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	catalog, err := loadCatalog(cfg.ContentDir)
	if err != nil {
		return fmt.Errorf("error loading content: %w", err)
	}
	log.Info("Content loaded",
		zap.Int("scenarios", len(catalog.Scenarios())),
		zap.Int("laws", len(catalog.Laws(""))),
		zap.Int("courses", len(catalog.Courses())))

	database, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	log.Info("Database ready", zap.String("driver", cfg.DBDriver))

	st := store.New(database)
	router := routes.NewRouter(cfg, routes.Deps{
		DB:       database,
		Store:    st,
		Catalog:  catalog,
		Sessions: scenario.NewSessionStore(cfg.PlaySessionTTL),
		Log:      log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	go purgeExpiredTokens(ctx, st, time.Hour)

	// ctx is cancelled on SIGINT or SIGTERM
	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// purgeExpiredTokens drops expired refresh tokens every interval until ctx is done.
func purgeExpiredTokens(ctx context.Context, st *store.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := st.RefreshTokens().DeleteExpired(ctx)
			if err != nil {
				log.Warn("Error purging refresh tokens", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("Purged expired refresh tokens", zap.Int64("count", n))
			}
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if log != nil {
			log.Error("command failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

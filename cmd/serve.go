package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/vacancy-matcher/internal/filtering"
	"github.com/spigell/vacancy-matcher/internal/logger"
	"github.com/spigell/vacancy-matcher/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the matcher over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :5000)")
	serveCmd.Flags().String("cors-origins", "", "allowed CORS origins (default *)")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("server.cors-origins", serveCmd.Flags().Lookup("cors-origins"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the vacancy-matcher server", zap.String("version", version))

	engine, err := loadEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("loading catalog", zap.Error(err))
	}

	// The advisor holds a client, so it is shared between requests.
	advisor := maybeAdvisor(ctx, config, logger)
	describeFilters(prepareFilters(config, "", advisor, logger), logger)

	factory := func(resume string) *filtering.Filtering {
		return prepareFilters(config, resume, advisor, logger)
	}

	srv := server.New(engine, factory, server.Config{
		Listen:      config.Server.Listen,
		CORSOrigins: config.Server.CORSOrigins,
	}, logger)

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"google.golang.org/grpc"

	"clinic-admin/internal/appointment"
	"clinic-admin/internal/config"
	gweb "clinic-admin/internal/grpcweb"
	"clinic-admin/internal/handler"
	"clinic-admin/internal/identity"
	"clinic-admin/internal/logging"
	"clinic-admin/internal/middleware"
	"clinic-admin/internal/pb"
	"clinic-admin/internal/session"
	"clinic-admin/internal/store"
	"clinic-admin/internal/web"
)

func main() {
	app := &cli.App{
		Name:   "clinic-admin",
		Usage:  "Clinic admin dashboard and appointment API.",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the web app, the gRPC API and the grpc-web bridge.",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "Apply the schema, optionally importing appointments in the old {Name, Date, Time} JSON shape.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "legacy-json", Usage: "JSON array of legacy appointments to import"},
					&cli.StringFlag{Name: "owner", Usage: "user id that will own the imported records"},
				},
				Action: migrateCmd,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFile)

	st, err := openStore(c.Context, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	gw := identity.NewGateway(st, cfg.JWTSecret, log)
	repo := appointment.NewRepository(st, log)

	// grpc server
	rl := middleware.NewRateLimiter(cfg.LoginRPS, cfg.LoginBurst)
	defer rl.Stop()
	srv := grpc.NewServer(
		pb.ServerCodec(),
		grpc.ChainUnaryInterceptor(
			middleware.RateLimit(rl, pb.PublicMethods...),
			middleware.Auth(gw, pb.PublicMethods...),
		),
	)
	pb.RegisterAppointmentServiceServer(srv, handler.New(gw, repo, log))

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	go func() {
		log.Infof("grpc on :%s", cfg.GRPCPort)
		if err := srv.Serve(lis); err != nil {
			log.WithError(err).Error("grpc stopped")
		}
	}()

	// grpc-web bridge -> forwards browser requests to grpc on localhost
	bridge, err := gweb.New("localhost:"+cfg.GRPCPort, log)
	if err != nil {
		return err
	}
	defer bridge.Close()

	// admin web app
	webSrv, err := web.NewServer(gw, session.NewManager(gw, cfg.CookieSecure, log), repo, rl, log)
	if err != nil {
		return err
	}

	servers := []*http.Server{
		{Addr: ":" + cfg.WebPort, Handler: webSrv.Handler(), ReadHeaderTimeout: 10 * time.Second},
		{Addr: ":" + cfg.GRPCWebPort, Handler: bridge.Handler(), ReadHeaderTimeout: 10 * time.Second},
	}
	for _, hs := range servers {
		go func(hs *http.Server) {
			log.Infof("http on %s", hs.Addr)
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Errorf("http %s stopped", hs.Addr)
			}
		}(hs)
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, hs := range servers {
		if err := hs.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warnf("http %s shutdown", hs.Addr)
		}
	}
	srv.GracefulStop()
	return nil
}

func migrateCmd(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFile)

	file, owner := c.String("legacy-json"), c.String("owner")
	if file != "" && owner == "" {
		return errors.New("--owner is required with --legacy-json")
	}

	// opening a store applies its schema
	st, err := openStore(c.Context, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()
	log.Info("schema up to date")

	if file == "" {
		return nil
	}
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open legacy file: %w", err)
	}
	defer f.Close()

	n, skipped, err := importLegacy(c.Context, f, owner, appointment.NewRepository(st, log), log)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"imported": n, "skipped": skipped}).Info("legacy import done")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (store.Store, error) {
	if cfg.StoreDriver == config.DriverSQLite {
		st, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		log.Infof("using sqlite at %s", cfg.SQLitePath)
		return st, nil
	}

	// run migrations
	if err := store.MigratePostgres(cfg.DatabaseURL); err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	st := store.NewPostgres(pool)
	if err := st.Ping(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	log.Info("connected to postgres")
	return st, nil
}

// Package server wraps http.Server with graceful shutdown, functional
// options, and environment-based configuration. The router plugs in as a
// plain http.Handler:
//
//	r := router.New[*router.Context]()
//	r.Get("/", homeHandler)
//
//	var cfg server.Config
//	config.MustLoad(&cfg)
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//	if err != nil {
//		log.Error("server setup failed", logger.Error(err))
//		os.Exit(1)
//	}
//	if err := srv.Start(ctx, r); err != nil && !errors.Is(err, context.Canceled) {
//		log.Error("server stopped", logger.Error(err))
//	}
package server

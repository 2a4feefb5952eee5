// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/db47h/logsim"
	"github.com/db47h/logsim/internal/server"
	"github.com/db47h/logsim/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  `Serves a simulation session over HTTP. Presets are persisted to Redis when configured, in memory otherwise.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := logsim.NewMetrics(reg)

			e, err := setup(cmd, m)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
				e.cfg.Listen = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := openStore(ctx, e)
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := store.LoadLibrary(ctx, st, e.lib)
			if err != nil {
				return err
			}
			e.log.Info("library loaded", "stored", n, "presets", e.lib.Len())

			srv := server.New(e.lib,
				server.WithStore(st),
				server.WithLogger(e.log),
				server.WithGatherer(reg))
			err = srv.ListenAndServe(ctx, e.cfg.Listen)
			e.log.Info("server stopped")
			return err
		},
	}
	cmd.Flags().StringP("listen", "l", "", "listen address (overrides the configuration)")
	return cmd
}

func openStore(ctx context.Context, e *env) (store.Store, error) {
	rc := e.cfg.Redis
	if rc.Addr == "" {
		e.log.Info("using in-memory preset store")
		return store.NewMemory(), nil
	}
	r := store.NewRedis(rc.Addr, rc.Password, rc.DB, store.WithPrefix(rc.Prefix))
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx); err != nil {
		r.Close()
		return nil, err
	}
	e.log.Info("using redis preset store", "addr", rc.Addr, "db", rc.DB, "prefix", rc.Prefix)
	return r, nil
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"log/slog"
	"os"

	"github.com/db47h/logsim"
	"github.com/db47h/logsim/hwlib"
	"github.com/db47h/logsim/internal/config"
	"github.com/db47h/logsim/internal/logging"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "logsim",
		Short:         "logsim is a digital logic circuit simulator",
		Long:          `logsim builds circuits from HDL chip definitions, compiles combinational chips to truth tables and serves simulation sessions over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	f := cmd.PersistentFlags()
	f.StringP("config", "c", "", "configuration file")
	f.String("log-level", "", "log level (debug, info, warn, error)")
	f.Bool("hwlib", true, "preload the standard parts library")

	cmd.AddCommand(newCheckCmd(), newTableCmd(), newExportCmd(), newServeCmd())
	return cmd
}

// env holds what every command needs.
type env struct {
	cfg *config.Config
	log *slog.Logger
	lib *logsim.Library
}

// setup loads the configuration, creates the logger and a library with the
// parts library and configured HDL files loaded. m may be nil.
func setup(cmd *cobra.Command, m *logsim.Metrics) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
		if err = cfg.Validate(); err != nil {
			return nil, err
		}
	}
	log := logging.New(cfg.Level())
	lib := logsim.NewLibrary(cfg.Options(log, m)...)

	if ok, _ := cmd.Flags().GetBool("hwlib"); ok {
		if _, err = hwlib.Load(lib); err != nil {
			return nil, err
		}
	}
	if _, err = loadFiles(lib, cfg.Library); err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, lib: lib}, nil
}

// loadFiles loads HDL files into lib and returns the presets they define.
func loadFiles(lib *logsim.Library, paths []string) ([]*logsim.Preset, error) {
	var ps []*logsim.Preset
	for _, path := range paths {
		r, err := os.Open(path)
		if err != nil {
			return ps, errors.Wrap(err, "load library")
		}
		p, err := lib.LoadHDL(path, r)
		r.Close()
		ps = append(ps, p...)
		if err != nil {
			return ps, err
		}
	}
	return ps, nil
}

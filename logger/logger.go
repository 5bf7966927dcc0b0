// Copyright (c) 2012-2016 The Revel Framework Authors, All rights reserved.
// Revel Framework source code and usage is governed by a MIT style
// license that can be found in the LICENSE file.

// Package logger branches the library loggers off a single root so a host
// application can redirect everything lazycache logs with one handler.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/revel/config"
	"github.com/revel/log15"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Root is the logger every package logger is branched from. Setting its
// handler adjusts all children.
var Root = log15.New("module", "lazycache")

func init() {
	Root.SetHandler(log15.LvlFilterHandler(log15.LvlInfo,
		log15.StreamHandler(colorable.NewColorableStderr(), log15.TerminalFormat())))
}

// New returns a logger branched from Root with the given context.
func New(ctx ...interface{}) log15.Logger {
	return Root.New(ctx...)
}

// SetHandler replaces the handler on the root logger.
func SetHandler(h log15.Handler) {
	Root.SetHandler(h)
}

// InitializeFromConfig points the root logger at the output and level named
// in the config. Recognized options:
//
//	log.level   trace|info|warn|error|crit (default info)
//	log.output  off, stdout, stderr, or a file path (default stderr)
//	log.maxsize rotated file size in megabytes
//	log.maxage  rotated file age in days
//
// File paths ending in ".json" are written in JSON format and rotated with
// lumberjack. Relative paths are resolved against basePath.
func InitializeFromConfig(basePath string, conf *config.Context) {
	level := "info"
	output := "stderr"
	if conf != nil {
		level = conf.StringDefault("log.level", level)
		output = conf.StringDefault("log.output", output)
	}

	lvl, err := log15.LvlFromString(translateLevel(level))
	if err != nil {
		lvl = log15.LvlInfo
	}

	if h := handlerFor(output, basePath, conf); h != nil {
		Root.SetHandler(log15.LvlFilterHandler(lvl, h))
	} else {
		Root.SetHandler(log15.DiscardHandler())
	}
}

// "trace" is a revel level name that log15 does not parse.
func translateLevel(level string) string {
	if level == "trace" {
		return "debug"
	}
	return level
}

// Returns a handler for the output string. Accepted formats are
// `off` `stdout` `stderr` `full/file/path/to/location/app.log`
// `full/file/path/to/location/app.json`.
func handlerFor(output, basePath string, conf *config.Context) log15.Handler {
	noColor := false
	maxSize := 1024 * 10
	maxAge := 14
	if conf != nil {
		noColor = !conf.BoolDefault("log.colorize", true)
		maxSize = conf.IntDefault("log.maxsize", maxSize)
		maxAge = conf.IntDefault("log.maxage", maxAge)
	}

	switch strings.TrimSpace(output) {
	case "", "off":
		// No handler, discard data.
		return nil
	case "stdout":
		return terminalHandler(colorable.NewColorableStdout(), noColor)
	case "stderr":
		return terminalHandler(colorable.NewColorableStderr(), noColor)
	}

	// Write to the file specified.
	if !filepath.IsAbs(output) {
		output = filepath.Join(basePath, output)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		Root.Error("Cannot create log file directory", "path", output, "error", err)
		return nil
	}

	// If the file name ends in json, output in json format and use
	// lumberjack to rotate the files.
	if strings.HasSuffix(output, "json") {
		return log15.StreamHandler(&lumberjack.Logger{
			Filename: output,
			MaxSize:  maxSize, // megabytes
			MaxAge:   maxAge,  // days
		}, log15.JsonFormatEx(false, true))
	}

	h, err := log15.FileHandler(output, log15.LogfmtFormat())
	if err != nil {
		Root.Error("Cannot open log file", "path", output, "error", err)
		return nil
	}
	return h
}

func terminalHandler(w io.Writer, noColor bool) log15.Handler {
	if noColor {
		return log15.StreamHandler(w, log15.LogfmtFormat())
	}
	return log15.StreamHandler(w, log15.TerminalFormat())
}

// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs the prediction bridge as a msgpack IPC server or an interactive CLI.

Note: This is a BETA release. APIs and functionality may rapidly change.

WordBridge exposes a text-prediction engine to a host through a flat array
protocol: integer meta arguments and string data arguments in, a response code and
strings out. It reconciles the engine's installed packages with the ones on disk
and orders the active dictionaries from a preference list.

# Usage

Start the server with default settings:

	wordbridge

Use a custom engine base path and enable debug mode:

	wordbridge -base /path/to/base -d

Run in CLI mode for interactive testing:

	wordbridge -c

The base path should contain a packages/ directory with one TOML manifest per
package. Packages found there are installed when the engine is created.

# Configuration

Runtime configuration is managed through a TOML file:

	[engine]
	base_path = "data"
	install_on_create = true

	[dict]
	active = "enggb,frefr"
	learning = true

	[server]
	max_request_strings = 16
	max_string_length = 1024

	[cli]
	chain_suggestions = true
	show_packages = false

The config file is automatically created with defaults if it doesn't exist.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout, see package server.

	{"id": "req1", "m": [11, 17], "d": ["hel"]}
	{"id": "req1", "c": 0, "d": ["hel", "", "hello", "help"]}

# Command Line Flags

	-base string
	    Engine base path (default from config)
	-config string
	    Path to a config file
	-dicts string
	    Comma list of active dictionaries (overrides [dict] active)
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-rebuild-config
	    Write a fresh default config.toml and exit
	-version
	    Show current version
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/wordbridge/internal/cli"
	"github.com/bastiangx/wordbridge/internal/logger"
	"github.com/bastiangx/wordbridge/internal/utils"
	"github.com/bastiangx/wordbridge/pkg/config"
	"github.com/bastiangx/wordbridge/pkg/dispatch"
	"github.com/bastiangx/wordbridge/pkg/engine/memengine"
	"github.com/bastiangx/wordbridge/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0-beta"
	AppName = "wordbridge"
	gh      = "https://github.com/bastiangx/wordbridge"
)

// sigHandler runs cleanup and exits on OS signals.
func sigHandler(cleanup func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		cleanup()
		os.Exit(0)
	}()
}

// main wires config, engine, dispatcher and the chosen front end.
// main() does not implement logic for them and only manages the flow.
func main() {
	showVersion := flag.Bool("version", false, "Show current version")
	basePath := flag.String("base", "", "Engine base path containing packages/ (default from config)")
	configPath := flag.String("config", "", "Path to a config file")
	activeDicts := flag.String("dicts", "", "Comma list of active dictionaries, overrides the config")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	rebuildConfig := flag.Bool("rebuild-config", false, "Write a fresh default config.toml and exit")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}
	if *rebuildConfig {
		if err := config.RebuildConfigFile(); err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		path, _ := config.GetDefaultConfigPath()
		fmt.Fprintf(os.Stderr, "Wrote default config to %s\n", path)
		os.Exit(0)
	}

	// stdout is the protocol channel in server mode
	log.SetOutput(os.Stderr)
	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, activeConfig, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activeConfig))

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Error("Failed to initialize path resolver", "err", err)
		log.Print("Either env is not set or system is not supported")
		os.Exit(1)
	}
	if *debugMode {
		for k, v := range pathResolver.GetRuntimeInfo() {
			log.Debug("runtime", k, v)
		}
	}

	requested := appConfig.Engine.BasePath
	if *basePath != "" {
		requested = *basePath
	}
	resolvedBase := pathResolver.GetBaseDir(requested)
	log.Debugf("Using base dir at: %s (%d package files)", resolvedBase, len(utils.ListPackageFiles(resolvedBase)))

	eng := memengine.New(memengine.WithLogger(logger.New("engine")))
	learning := appConfig.Dict.Learning
	active := appConfig.Dict.Active
	if *activeDicts != "" {
		active = *activeDicts
	}
	d := dispatch.New(eng.Loader(), dispatch.Options{
		InstallOnCreate:    appConfig.Engine.InstallOnCreate,
		ActiveDictionaries: active,
		Learning:           &learning,
	}, logger.New("bridge"))

	if err := d.Create(resolvedBase); err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	sigHandler(d.Destroy)
	defer d.Destroy()

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(d, appConfig.CLI.ChainSuggestions, appConfig.CLI.ShowPackages)
		if err := inputHandler.Start(); err != nil {
			log.Errorf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	showStartupInfo(resolvedBase)
	srv := server.NewServer(d, appConfig.Server, logger.New("server"))
	if err := srv.Start(); err != nil {
		log.Errorf("Server stopped: %v", err)
	}
}

func printVersion() {
	banner := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ WordBridge ] Puts a prediction engine behind a tiny array protocol")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(baseDir string) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	fmt.Fprintln(os.Stderr, "============")
	fmt.Fprintln(os.Stderr, " WordBridge ")
	fmt.Fprintln(os.Stderr, "============")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Info("init: OK")
	log.Infof("base dir: ( %s )", baseDir)
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "============")

	log.SetLevel(currentLevel)
}

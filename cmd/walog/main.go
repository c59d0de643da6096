package main

import (
	"os"
	"path"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/walog/internal/cli"
	"github.com/julianstephens/walog/internal/logger"
	"github.com/julianstephens/walog/internal/walog"
	"github.com/julianstephens/walog/internal/walog/config"
)

var (
	version = "walog v0.1.0"
)

type LogOpts struct {
	Level  string `help:"Logging level (debug, info, warn, error)" default:"info" envvar:"WALOG_LOG_LEVEL"`
	Debug  bool   `help:"Enable debug logging (overrides --level)"                envvar:"WALOG_DEBUG"`
	Stream bool   `help:"Log to stdout/stderr only"                               envvar:"WALOG_LOG_STREAM"`
}

type CLI struct {
	InitConfig cli.InitConfigCmd `cmd:""                 help:"Write a default writer config file"`
	LoadTest   cli.LoadTestCmd   `cmd:"" name:"loadtest" help:"Open a log and drive concurrent writers through it"`
	Dump       cli.DumpCmd       `cmd:""                 help:"Print the records of a log file"`
	Header     cli.HeaderCmd     `cmd:""                 help:"Print the header of a log file"`
	Logs       cli.LogsCmd       `cmd:""                 help:"List logs recorded in the catalog"`

	Config  string           `help:"Writer config file" default:"walog.json" envvar:"WALOG_CONFIG" type:"path"`
	LogOpts LogOpts          `embed:"" prefix:"log-" help:"Logging options"`
	Version kong.VersionFlag `help:"Show version information" short:"V"`
}

func createLogger(opts LogOpts, configPath string) (logger.Logger, error) {
	level := opts.Level
	if opts.Debug {
		level = "debug"
	}

	consoleLogger := logger.NewConsoleLogger(level)
	if opts.Stream {
		return consoleLogger, nil
	}

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}

	logDir := cfg.LogDir
	if logDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		logDir = path.Join(homeDir, walog.DefaultAppDir, walog.DefaultLogDir)
	}
	maxSize, maxBackups := walog.DefaultLogMaxSize, walog.DefaultLogMaxBackups
	if cfg.LogMaxSize != nil {
		maxSize = *cfg.LogMaxSize
	}
	if cfg.LogMaxBackups != nil {
		maxBackups = *cfg.LogMaxBackups
	}

	fileLogger, err := logger.NewFileLogger(logDir, walog.DefaultLogFileName, maxSize, maxBackups)
	if err != nil {
		return nil, err
	}
	return logger.NewMultiLogger(fileLogger, consoleLogger), nil
}

func main() {
	cliApp := &CLI{}
	ctx := kong.Parse(cliApp,
		kong.Name("walog"),
		kong.Description("Tablet server write-ahead log tooling"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Configuration(kong.JSON, ".walog-cli.json", "~/.walog/cli.json"),
		kong.Vars{
			"version": version,
			"address": walog.DefaultAddress,
		},
	)

	lg, err := createLogger(cliApp.LogOpts, cliApp.Config)
	if err != nil {
		ctx.FatalIfErrorf(err)
	}
	defer func() {
		if c, ok := lg.(logger.Closeable); ok {
			_ = c.Close()
		}
	}()

	err = ctx.Run(&cli.Globals{ConfigPath: cliApp.Config, Logger: lg})
	ctx.FatalIfErrorf(err)
}

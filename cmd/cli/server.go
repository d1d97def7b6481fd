package cli

import (
	"context"
	"encoding/hex"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/icon-project/govote/common/errors"
	"github.com/icon-project/govote/common/log"
	"github.com/icon-project/govote/node"
	"github.com/icon-project/govote/service/event"
)

type ServerConfig struct {
	node.Config `json:",squash"`

	LogLevel     string               `json:"log_level"`
	ConsoleLevel string               `json:"console_level"`
	LogWriter    *log.WriterConfig    `json:"log_writer,omitempty"`
	LogForwarder *log.ForwarderConfig `json:"log_forwarder,omitempty"`
}

func NewServerCmd(parentCmd *cobra.Command, parentVc *viper.Viper, version, build string, logoLines []string) (*cobra.Command, *viper.Viper) {
	rootCmd, vc := NewCommand(parentCmd, parentVc, "server", "Server management")

	cfg := &ServerConfig{}
	cfg.BuildVersion = version
	cfg.BuildTags = build

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg.FilePath = vc.GetString("config")
		if err := MergeWithViper(vc, cfg); err != nil {
			return err
		}
		cfg.FillEmpty()
		return cfg.Validate()
	}
	rootPFlags := rootCmd.PersistentFlags()
	rootPFlags.String("owner", "", "Address of the owner managing signers and proposals")
	rootPFlags.String("rpc_addr", node.DefaultRPCAddr, "Listen ip-port of JSON-RPC")
	rootPFlags.Bool("rpc_dump", false, "JSON-RPC Request, Response Dump flag")
	rootPFlags.Int("rpc_batch_limit", 0, "Maximum number of requests in a batch")
	rootPFlags.Int("ws_max_session", 0, "Maximum number of websocket sessions")
	rootPFlags.Bool("metrics", false, "Serve metrics on /metrics")
	rootPFlags.String("db_type", node.DefaultDBType, "Name of database system(goleveldb, sqlite, mapdb)")
	rootPFlags.String("forward_timeout", "", "Timeout of forwarding a vote(ex: 5s)")
	rootPFlags.StringSlice("default_options", nil, "Options used for proposals created without options")
	rootPFlags.String("log_level", "debug", "Global log level (trace,debug,info,warn,error,fatal,panic)")
	rootPFlags.String("console_level", "trace", "Console log level (trace,debug,info,warn,error,fatal,panic)")
	rootPFlags.String("base_dir", "",
		"Data directory(default:[configuration file path]/.govote)")
	rootPFlags.StringP("node_sock", "s", "",
		"Admin socket path(default:[base_dir]/cli.sock)")
	rootPFlags.StringP("config", "c", "", "Parsing configuration file")
	rootPFlags.String("log_file", "", "Rotating log file path")
	rootPFlags.String("nats", "", "URL of NATS server publishing events")

	BindPFlags(vc, rootCmd.PersistentFlags())

	saveCmd := &cobra.Command{
		Use:   "save [file]",
		Short: "Save configuration",
		Args:  ArgsWithDefaultErrorFunc(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			saveFilePath := args[0]
			cfg.SetFilePath(saveFilePath)
			if err := JsonPrettySaveFile(saveFilePath, 0644, cfg); err != nil {
				return err
			}
			stdlog.Println("Save configuration to", saveFilePath)
			return nil
		},
	}
	rootCmd.AddCommand(saveCmd)

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start server",
		RunE: func(cmd *cobra.Command, args []string) error {
			modLevels, _ := cmd.Flags().GetStringToString("mod_level")
			logger, closeLog, err := configureLogging(cfg, modLevels)
			if err != nil {
				return err
			}
			defer closeLog()
			if err := startProfiling(vc.GetString("cpuprofile"), vc.GetString("memprofile")); err != nil {
				return err
			}

			for _, l := range logoLines {
				log.Print(l)
			}
			log.Printf("Version : %s", version)
			log.Printf("Build   : %s", build)

			n, err := node.NewNode(&cfg.Config, logger)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return n.Run(ctx)
		},
	}
	rootCmd.AddCommand(startCmd)
	startFlags := startCmd.Flags()
	startFlags.StringToString("mod_level", nil, "Set console log level for specific module ('mod'='level',...)")
	startFlags.String("cpuprofile", "", "CPU Profiling data file")
	startFlags.String("memprofile", "", "Memory Profiling data file")
	startFlags.MarkHidden("mod_level")

	BindPFlags(vc, startFlags)

	return rootCmd, vc
}

func parseLevel(kind, s string) (log.Level, error) {
	lv, err := log.ParseLevel(s)
	if err != nil {
		return lv, errors.IllegalArgumentError.Errorf("Invalid%s(%s)", kind, s)
	}
	return lv, nil
}

// configureLogging installs the global logger tagged with the owner. The
// returned function closes the rotating log file if there is one.
func configureLogging(cfg *ServerConfig, modLevels map[string]string) (log.Logger, func(), error) {
	owner, _ := cfg.OwnerAddress()
	logger := log.WithFields(log.Fields{
		log.FieldKeyNode: hex.EncodeToString(owner.Bytes()),
	})
	log.SetGlobalLogger(logger)
	stdlog.SetOutput(logger.Writer())

	lv, err := parseLevel("LogLevel", cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(lv)
	if lv, err = parseLevel("ConsoleLevel", cfg.ConsoleLevel); err != nil {
		return nil, nil, err
	}
	logger.SetConsoleLevel(lv)
	for mod, s := range modLevels {
		if lv, err = parseLevel("ModLevel", s); err != nil {
			return nil, nil, errors.Wrapf(err, "module=%s", mod)
		}
		logger.SetModuleLevel(mod, lv)
	}

	closer := func() {}
	if cfg.LogWriter != nil {
		cfg.LogWriter.Filename = cfg.ResolveAbsolute(cfg.LogWriter.Filename)
		writer, err := log.NewWriter(cfg.LogWriter)
		if err != nil {
			return nil, nil, err
		}
		logger.SetFileWriter(writer)
		closer = func() { _ = writer.Close() }
	}
	if cfg.LogForwarder != nil {
		if err := log.AddForwarder(logger, cfg.LogForwarder); err != nil {
			closer()
			return nil, nil, err
		}
	}
	return logger, closer, nil
}

func startProfiling(cpuFile, memFile string) error {
	if cpuFile != "" {
		if err := StartCPUProfile(cpuFile); err != nil {
			return err
		}
	}
	if memFile != "" {
		return StartMemoryProfile(memFile)
	}
	return nil
}

// MergeWithViper fills cfg with the configuration file, then environment
// variables and flags. Paths given by flags are relative to the working
// directory.
func MergeWithViper(vc *viper.Viper, cfg *ServerConfig) error {
	baseDir := vc.GetString("base_dir")
	nodeSock := vc.GetString("node_sock")
	logFile := vc.GetString("log_file")
	natsURL := vc.GetString("nats")

	if cfg.FilePath != "" {
		f, err := os.Open(cfg.FilePath)
		if err != nil {
			return errors.Errorf("fail to open config file=%s err=%+v", cfg.FilePath, err)
		}
		defer f.Close()
		vc.SetConfigType("json")
		err = vc.ReadConfig(f)
		if err != nil {
			return errors.Errorf("fail to read config file=%s err=%+v", cfg.FilePath, err)
		}
	}

	if err := vc.Unmarshal(cfg, ViperDecodeOptJson); err != nil {
		return errors.Errorf("fail to unmarshall server config from env err=%+v", err)
	}

	if baseDir != "" {
		cfg.BaseDir = cfg.ResolveRelative(baseDir)
	}
	if nodeSock != "" {
		cfg.AdminSocket = cfg.ResolveRelative(nodeSock)
	}
	if logFile != "" {
		if cfg.LogWriter == nil {
			cfg.LogWriter = new(log.WriterConfig)
		}
		cfg.LogWriter.Filename = cfg.ResolveRelative(logFile)
	}
	if natsURL != "" {
		if cfg.EventNATS == nil {
			cfg.EventNATS = new(event.NATSConfig)
		}
		cfg.EventNATS.URL = natsURL
	}
	return nil
}

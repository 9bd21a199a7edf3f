package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fenggwsx/ReminderBot/internal/config"
	"github.com/fenggwsx/ReminderBot/internal/logging"
	"github.com/fenggwsx/ReminderBot/internal/storage/database"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Debug      bool
}

// NewRootCommand creates the reminderbot command. Without a subcommand it
// runs the bot.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	run := &runOptions{root: opts}

	cmd := &cobra.Command{
		Use:          "reminderbot",
		Short:        "Telegram bot that keeps reminders for group chats",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run.execute(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "use config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "override log level to info")
	cmd.PersistentFlags().BoolVarP(&opts.Debug, "debug", "d", false, "override log level to debug")

	cmd.Flags().BoolVarP(&run.initConfig, "init-config", "i", false, "write a sample config file and exit")
	cmd.Flags().BoolVar(&run.initDB, "init-db", false, "initialize the database and exit")
	cmd.Flags().StringVarP(&run.token, "token", "t", "", "telegram token, instead of the one in the config file")

	cmd.AddCommand(NewChatCommand(opts))
	return cmd
}

// env is what every command needs once flags have been parsed.
type env struct {
	cfg      config.Config
	logger   zerolog.Logger
	provider *database.Provider
	store    *database.Store
}

func (o *RootOptions) load() (*env, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	logger := logging.Init(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Verbose: o.Verbose,
		Debug:   o.Debug,
	})
	provider := database.NewProvider(cfg.DatabaseURL(), logger)
	return &env{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
		store:    database.NewStore(database.NewSchema(provider)),
	}, nil
}

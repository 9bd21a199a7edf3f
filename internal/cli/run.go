package cli

import (
	"fmt"
	"strings"

	figure "github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fenggwsx/ReminderBot/internal/config"
	"github.com/fenggwsx/ReminderBot/internal/server"
	"github.com/fenggwsx/ReminderBot/internal/telegram"
)

type runOptions struct {
	root       *RootOptions
	initConfig bool
	initDB     bool
	token      string
}

func (o *runOptions) execute(cmd *cobra.Command) error {
	if o.initConfig {
		path := o.root.ConfigPath
		if path == "" {
			path = config.ConfigPath
		}
		if err := config.WriteSample(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "The file '%s' has been created.\n", path)
		return nil
	}

	e, err := o.root.load()
	if err != nil {
		return err
	}
	logger := e.logger.With().Str("component", "init").Logger()

	if e.provider.Enabled() {
		logger.Info().Msg("using database")
	} else {
		logger.Warn().Msg("no database configured, every command will fail")
	}
	if o.initDB {
		logger.Info().Msg("initializing database")
		if err := e.store.Migrate(cmd.Context()); err != nil {
			return errors.Wrap(err, "initialize database")
		}
		return nil
	}

	token := o.token
	if token == "" {
		token = e.cfg.TelegramToken
	}
	if token == "" {
		return errors.Errorf("no token provided, add telegramToken to %s", config.ConfigPath)
	}

	client, err := telegram.New(token, e.logger)
	if err != nil {
		return err
	}
	app := server.NewApp(server.Options{
		Debug:        e.cfg.Development.Debug,
		Registration: e.cfg.Registration,
	}, e.store, client, e.logger)
	logger.Debug().Bool("debug", e.cfg.Development.Debug).Strs("commands", app.Commands()).Msg("commands registered")

	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(figure.NewFigure("ReminderBot", "", true).String(), "\n"))
	logger.Info().Str("bot", client.UserName()).Msg("ReminderBot has started!")
	defer logger.Info().Msg("shutting down, no more reminders today")

	return client.Run(cmd.Context(), app)
}

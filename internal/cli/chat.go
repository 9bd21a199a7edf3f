package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fenggwsx/ReminderBot/internal/auth"
	"github.com/fenggwsx/ReminderBot/internal/storage"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

// NewChatCommand groups the commands that manage registered chats.
func NewChatCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Manage the chats allowed to use the bot",
	}
	cmd.AddCommand(newChatApproveCommand(root))
	cmd.AddCommand(newChatAddCommand(root))
	cmd.AddCommand(newChatListCommand(root))
	return cmd
}

func newChatApproveCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <code>",
		Short: "Register the chat that sent a /register_chat code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.load()
			if err != nil {
				return err
			}
			claims, err := auth.ParseRegistrationCode(e.cfg.Registration, args[0])
			if err != nil {
				return err
			}
			chat, err := e.store.RegisterChat(cmd.Context(), claims.ChatID, claims.ChatName)
			if err != nil {
				return errors.Wrap(err, "register chat")
			}
			e.logger.Info().Int64("chat_id", chat.ChatID).Str("chat_name", chat.Name).Msg("chat approved")
			printChatRegistered(cmd.OutOrStdout(), chat)
			return nil
		},
	}
}

func newChatAddCommand(root *RootOptions) *cobra.Command {
	var (
		chatID int64
		name   string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a chat by its telegram id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.load()
			if err != nil {
				return err
			}
			chat, err := e.store.RegisterChat(cmd.Context(), chatID, name)
			if err != nil {
				return errors.Wrap(err, "register chat")
			}
			e.logger.Info().Int64("chat_id", chat.ChatID).Str("chat_name", chat.Name).Msg("chat added")
			printChatRegistered(cmd.OutOrStdout(), chat)
			return nil
		},
	}
	cmd.Flags().Int64Var(&chatID, "chat-id", 0, "telegram chat id")
	cmd.Flags().StringVar(&name, "name", "", "chat title")
	_ = cmd.MarkFlagRequired("chat-id")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newChatListCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered chats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.load()
			if err != nil {
				return err
			}
			chats, err := e.store.ListChats(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "list chats")
			}
			printChats(cmd.OutOrStdout(), chats)
			return nil
		},
	}
}

func printChatRegistered(w io.Writer, chat storage.Chat) {
	fmt.Fprintf(w, "%s '%s' (%d) can now use the bot\n", okStyle.Render("registered"), chat.Name, chat.ChatID)
}

func printChats(w io.Writer, chats []storage.Chat) {
	if len(chats) == 0 {
		fmt.Fprintln(w, "No chats registered yet.")
		return
	}
	row := func(id, chatID, name string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			cellStyle.Width(6).Render(id),
			cellStyle.Width(18).Render(chatID),
			name,
		)
	}
	fmt.Fprintln(w, headerStyle.Render(row("ID", "CHAT", "NAME")))
	for _, chat := range chats {
		fmt.Fprintln(w, row(fmt.Sprint(chat.ID), fmt.Sprint(chat.ChatID), chat.Name))
	}
}

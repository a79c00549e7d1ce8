package cmd

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/corey/bbfs/internal/adapters/socket"
	"github.com/corey/bbfs/internal/domain/chat"
	"github.com/spf13/cobra"
)

var (
	chatID     int64
	replyTo    string
	uploadMime string
)

var uploadCmd = &cobra.Command{
	Use:   "upload FILE",
	Short: "Send a history file to the daemon as a chat document",
	Long:  "Uploads FILE to the running daemon. Reply to the printed upload ID with: bbfs say --reply ID /analyze N",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

var sayCmd = &cobra.Command{
	Use:   "say TEXT...",
	Short: "Send a chat message or command (/start, /help, /analyze N) to the daemon",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSay,
}

func init() {
	for _, c := range []*cobra.Command{uploadCmd, sayCmd} {
		c.Flags().Int64Var(&chatID, "chat", 1, "chat ID the message belongs to")
	}
	uploadCmd.Flags().StringVar(&uploadMime, "mime", "", "MIME type (default from file extension)")
	sayCmd.Flags().StringVar(&replyTo, "reply", "", "upload ID this message replies to")
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	mimeType := uploadMime
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(path))
	}

	return sendMessage(chat.Message{
		ChatID: chatID,
		UserID: chatID,
		Document: &chat.Document{
			Name:     filepath.Base(path),
			MimeType: mimeType,
			Content:  content,
		},
	})
}

func runSay(cmd *cobra.Command, args []string) error {
	text := args[0]
	for _, a := range args[1:] {
		text += " " + a
	}
	return sendMessage(chat.Message{
		ChatID:   chatID,
		UserID:   chatID,
		UserName: os.Getenv("USER"),
		Text:     text,
		ReplyTo:  replyTo,
	})
}

func sendMessage(m chat.Message) error {
	client := socket.NewClient(socket.SocketPath(projectRoot()))
	if !client.Ping() {
		return fmt.Errorf("daemon is not running (start it with: bbfs daemon start)")
	}

	reply, err := client.Send(m)
	if err != nil {
		return err
	}
	fmt.Print(formatReply(reply))
	return nil
}

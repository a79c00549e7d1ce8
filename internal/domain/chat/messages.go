package chat

import (
	"fmt"
	"strings"
)

// User-facing texts. Emphasis markers are interpreted by the display layer.
const (
	msgHelp = "💡 *How to use this bot:*\n\n" +
		"1. Put your history in a text file (`.txt`), one number per line.\n\n" +
		"2. Send the `.txt` file to this chat.\n\n" +
		"3. *Reply* to the file you just sent with the `/analyze` command.\n\n" +
		"You can also choose how many digits to keep, e.g. `/analyze 8` for the top 8 digits. " +
		"Without a number the default is 7 digits."

	msgUnsupportedFormat = "❌ Unsupported file format. Please send a `.txt` file."
	msgTooLarge          = "❌ The file is too large to analyze."
	msgWrongUsage        = "⚠️ *Wrong usage!* Run `/analyze` as a *reply* to the `.txt` message that holds your history."
	msgNotText           = "❌ The message you replied to is not a `.txt` file. Please reply to the right history file."
	msgUploadGone        = "⚠️ That file is no longer available. Please send it again and reply to it with `/analyze`."
	msgProcessing        = "⏳ Processing the analysis, please wait..."
	msgUnknown           = "I don't understand that message. Try sending a `.txt` file or use /help."
	msgFailure           = "Something went wrong while processing your request. Please try again later."
)

func msgStart(name string) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("Hello %s!\n\n"+
		"Welcome to the Digit Analysis Bot.\n"+
		"Send me a `.txt` file with your number history (one number per line), "+
		"then reply to that file with `/analyze`.\n\n"+
		"Use /help to see the instructions.", name)
}

func msgReceived(uploadID string) string {
	return fmt.Sprintf("✅ `.txt` file received (id `%s`). Now *reply* to this file with `/analyze` to start.", uploadID)
}

func msgPending(ids []string) string {
	return "📄 Files waiting for analysis: `" + strings.Join(ids, "`, `") + "`"
}

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/corey/chatmon/internal/adapters/socket"
	"github.com/corey/chatmon/internal/app"
)

// welcomeBanner opens every chat session.
const welcomeBanner = "Hey there! 👋 How can I help you with your Instanza clone account today?"

var chatNoDelay bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long:  "Reads questions line by line and answers each one. Type exit or quit, or send EOF, to leave.",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatNoDelay, "no-delay", false, "answer without the typing pause")
}

func runChat(cmd *cobra.Command, args []string) error {
	q, _, closeFn, err := connect(projectRoot())
	if err != nil {
		return err
	}
	defer closeFn()

	s := chatSession{
		queries: q,
		botName: settings.Chat.BotName,
		delay:   settings.Chat.TypingDelay,
		typing:  isStdoutTTY(),
	}
	if chatNoDelay {
		s.delay = 0
	}
	return s.run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
}

// chatSession is one interactive conversation.
type chatSession struct {
	queries socket.AppQueries
	botName string
	delay   time.Duration // pause before each answer
	typing  bool          // show a typing indicator during the pause
}

// run reads questions from in until EOF or an exit command and writes each
// answer to out. Blank lines are ignored.
func (s chatSession) run(ctx context.Context, in io.Reader, out io.Writer) error {
	s.say(out, welcomeBanner)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%sYou:%s ", colorBold, colorReset)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isExitCommand(line) {
			s.say(out, "Bye! 👋")
			return nil
		}

		result, err := s.queries.Ask(ctx, line)
		if errors.Is(err, app.ErrEmptyQuery) {
			continue
		}
		if err != nil {
			return err
		}
		if err := s.pause(ctx, out); err != nil {
			return err
		}
		s.say(out, result.Response)
	}
}

// pause waits out the typing delay, showing an indicator on terminals.
func (s chatSession) pause(ctx context.Context, out io.Writer) error {
	if s.delay <= 0 {
		return nil
	}
	if s.typing {
		fmt.Fprintf(out, "%s%s is typing...%s", colorGray, s.botName, colorReset)
		defer fmt.Fprint(out, "\r\033[K")
	}
	select {
	case <-time.After(s.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s chatSession) say(out io.Writer, text string) {
	fmt.Fprintf(out, "%s%s:%s %s\n", colorMagenta, s.botName, colorReset, text)
}

func isExitCommand(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit", "bye", "/exit", "/quit":
		return true
	}
	return false
}

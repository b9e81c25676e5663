package telegram

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bnema/hamster-clicker-cli/internal/domain"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"golang.org/x/term"
)

var errSignUpUnsupported = errors.New("phone number is not registered; sign up in an official app first")

// Prompter asks the operator for login credentials on a terminal.
type Prompter struct {
	In  io.Reader
	Out io.Writer
	// PresetPhone skips the phone prompt when set.
	PresetPhone string
	// ReadSecret reads a line without echo. Defaults to the terminal on stdin when it is one.
	ReadSecret func() (string, error)

	reader *bufio.Reader
}

var _ auth.UserAuthenticator = (*Prompter)(nil)

func (p *Prompter) Phone(_ context.Context) (string, error) {
	if p.PresetPhone != "" {
		return p.PresetPhone, nil
	}
	return p.ask("Enter phone number (international format): ")
}

func (p *Prompter) Password(_ context.Context) (string, error) {
	fmt.Fprint(p.Out, "Enter 2FA password: ")
	secret, err := p.readSecret()
	fmt.Fprintln(p.Out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return secret, nil
}

func (p *Prompter) Code(_ context.Context, _ *tg.AuthSentCode) (string, error) {
	return p.ask("Enter the login code: ")
}

func (p *Prompter) AcceptTermsOfService(_ context.Context, _ tg.HelpTermsOfService) error {
	return errSignUpUnsupported
}

func (p *Prompter) SignUp(_ context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errSignUpUnsupported
}

func (p *Prompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.Out, prompt)
	line, err := p.lineReader().ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	if line == "" {
		return "", errors.New("empty input")
	}
	return line, nil
}

func (p *Prompter) readSecret() (string, error) {
	if p.ReadSecret != nil {
		return p.ReadSecret()
	}
	if file, ok := p.In.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		secret, err := term.ReadPassword(int(file.Fd()))
		return string(secret), err
	}

	line, err := p.lineReader().ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *Prompter) lineReader() *bufio.Reader {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	return p.reader
}

// Login runs the interactive phone login for a new session file and returns the account
// it belongs to. An already authorized session is reused as is.
func (c *Connector) Login(ctx context.Context, session domain.SessionFile, proxyURL string, prompter *Prompter) (domain.Account, error) {
	client, err := c.newClient(session.Path, proxyURL)
	if err != nil {
		return domain.Account{}, err
	}

	var account domain.Account
	err = client.Run(ctx, func(ctx context.Context) error {
		flow := auth.NewFlow(prompter, auth.SendCodeOptions{})
		if err := client.Auth().IfNecessary(ctx, flow); err != nil {
			return fmt.Errorf("login: %w", mapError(err))
		}

		user, err := client.Self(ctx)
		if err != nil {
			return fmt.Errorf("get self: %w", mapError(err))
		}
		account = accountFromUser(user)
		account.Session = session.Name
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}

	c.logger().Info("session created", "session", session.Name, "account_id", account.ID.String())
	return account, nil
}

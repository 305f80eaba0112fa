package taskctl

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/server/services"
)

var ErrUnknownCommand = errors.New("unknown command")

var errPasswordMismatch = errors.New("passwords do not match")

// Usage is printed for help and unknown commands.
const Usage = `Usage: taskctl <command> [flags]

Commands:
  migrate        apply database migrations
  bootstrap      create the first administrator and the default status
  redeem         set a password using an activation or reset token
  purge-tokens   clear expired activation and reset tokens
  help           show this message`

// IsHelp reports whether cmd only asks for usage and needs no database.
func IsHelp(cmd string) bool {
	switch cmd {
	case "", "help", "-h", "--help":
		return true
	}
	return false
}

// Run dispatches a single command.
func (a *App) Run(ctx context.Context, cmd string) error {
	switch cmd {
	case "migrate":
		return a.Migrate(ctx)
	case "bootstrap":
		return a.Bootstrap(ctx)
	case "redeem":
		return a.Redeem(ctx)
	case "purge-tokens":
		return a.PurgeTokens(ctx)
	default:
		if IsHelp(cmd) {
			fmt.Fprintln(a.out, Usage)
			return nil
		}
		fmt.Fprintln(a.out, Usage)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
}

func (a *App) Migrate(ctx context.Context) error {
	if err := a.migrate(ctx); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}
	fmt.Fprintln(a.out, "Migrations applied")
	return nil
}

func (a *App) Bootstrap(ctx context.Context) error {
	var in services.CreateAccountInput
	var err error

	if in.Name, err = GetSimpleText(a.reader, "Administrator name", a.out); err != nil {
		return err
	}
	if in.Email, err = GetSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	if in.Mobile, err = GetSimpleText(a.reader, "Mobile", a.out); err != nil {
		return err
	}

	acc, err := a.accounts.BootstrapAdmin(ctx, in)
	if err != nil {
		return userError(err)
	}

	st, err := a.statuses.EnsureDefaultStatus(ctx, acc.ID)
	if err != nil {
		return userError(err)
	}

	fmt.Fprintf(a.out, "Administrator %s created (id %s)\n", acc.Email, acc.ID)
	fmt.Fprintf(a.out, "Default status %q is ready\n", st.Name)
	fmt.Fprintln(a.out, "An activation link was sent; use 'taskctl redeem' with its token to set the password")
	return nil
}

func (a *App) Redeem(ctx context.Context) error {
	token, err := GetSimpleText(a.reader, "Token", a.out)
	if err != nil {
		return err
	}

	pw, err := GetPassword("New password", a.out)
	if err != nil {
		return err
	}
	defer wipe(pw)

	confirm, err := GetPassword("Repeat password", a.out)
	if err != nil {
		return err
	}
	defer wipe(confirm)

	if string(pw) != string(confirm) {
		return errPasswordMismatch
	}

	id, err := a.tokens.RedeemToken(ctx, token, string(pw))
	if err != nil {
		return userError(err)
	}
	fmt.Fprintf(a.out, "Password updated for account %s\n", id)
	return nil
}

func (a *App) PurgeTokens(ctx context.Context) error {
	n, err := a.tokens.PurgeExpired(ctx)
	if err != nil {
		return userError(err)
	}
	fmt.Fprintf(a.out, "Purged %d expired token(s)\n", n)
	return nil
}

// userError keeps the service message and drops internal detail.
func userError(err error) error {
	return errors.New(common.Message(err, "operation failed"))
}

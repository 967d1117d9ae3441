// Package cli drives client.Session and client.Tasks from the terminal.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"todosome/internal/client"
	"todosome/internal/domain/models"
	"todosome/internal/lib/utilities"
)

var ErrUsage = errors.New("usage: todo <signup|verify|login|logout|whoami|state|tasks|add|done|undo|rm> [args]")

type CLI struct {
	session *client.Session
	tasks   *client.Tasks
	in      *bufio.Reader
	out     io.Writer
}

func New(session *client.Session, in io.Reader, out io.Writer) *CLI {
	c := &CLI{
		session: session,
		tasks:   client.NewTasks(session),
		in:      bufio.NewReader(in),
		out:     out,
	}
	// task list is reprinted after every change
	c.tasks.Subscribe(func() {
		if err := c.printTasks(context.Background()); err != nil {
			fmt.Fprintln(c.out, "refresh failed:", err)
		}
	})
	return c
}

// Run executes single command, session must be resumed before
func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "signup":
		email, password, err := c.credentials(rest)
		if err != nil {
			return err
		}
		if err = c.session.Signup(ctx, email, password); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Registration successful! Check your email for the verification link.")
	case "verify":
		if len(rest) != 1 {
			return ErrUsage
		}
		if err := c.session.Verify(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Email verified successfully, you can log in now.")
	case "login":
		email, password, err := c.credentials(rest)
		if err != nil {
			return err
		}
		if err = c.session.Login(ctx, email, password); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Logged in as", c.session.Email())
	case "logout":
		if err := c.session.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Logged out.")
	case "whoami":
		profile, err := c.session.Profile(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s (%s)\n", profile.Email, profile.ID)
	case "state":
		fmt.Fprintln(c.out, c.session.State())
	case "tasks":
		return c.printTasks(ctx)
	case "add":
		if len(rest) == 0 {
			return ErrUsage
		}
		description := ""
		if len(rest) > 1 {
			description = strings.Join(rest[1:], " ")
		}
		_, err := c.tasks.Create(ctx, rest[0], description)
		return err
	case "done", "undo":
		if len(rest) != 1 {
			return ErrUsage
		}
		completed := cmd == "done"
		_, err := c.tasks.Update(ctx, rest[0], client.TaskInput{Completed: &completed})
		return err
	case "rm":
		if len(rest) != 1 {
			return ErrUsage
		}
		return c.tasks.Delete(ctx, rest[0])
	default:
		return ErrUsage
	}
	return nil
}

func (c *CLI) credentials(args []string) (string, string, error) {
	var email string
	var err error
	if len(args) > 0 {
		email = args[0]
	} else if email, err = GetSimpleText(c.in, "Email", c.out); err != nil {
		return "", "", err
	}
	password, err := GetPassword(c.out)
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

func taskLine(t models.Task) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	return fmt.Sprintf("[%s]\t%s\t%s\t%s", mark, t.ID, t.Title, t.Description)
}

func (c *CLI) printTasks(ctx context.Context) error {
	list, err := c.tasks.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(c.out, "No tasks yet.")
		return nil
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, line := range utilities.Map(list, taskLine) {
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}

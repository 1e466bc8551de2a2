package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/chatsync/internal/app"
	"github.com/vovakirdan/chatsync/internal/core"
	"github.com/vovakirdan/chatsync/internal/proto"
)

const presenceWait = time.Second

func newSignupCmd(c *cli) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account with --name, --email and --password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := c.client.Session.Signup(cmd.Context(), proto.SignupRequest{
				FullName: name,
				Email:    c.opts.email,
				Password: c.opts.password,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed up as %s (%s)\n", sess.User.FullName, sess.User.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.login(cmd.Context()); err != nil {
				return err
			}
			me, _ := c.client.Session.User()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:      %s\nname:    %s\nemail:   %s\n", me.ID, me.FullName, me.Email)
			if me.ProfilePic != "" {
				fmt.Fprintf(out, "picture: %s\n", me.ProfilePic)
			}
			return nil
		},
	}
}

func newProfileCmd(c *cli) *cobra.Command {
	var pic string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the profile picture",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.login(cmd.Context()); err != nil {
				return err
			}
			_, err := c.client.Session.UpdateProfile(cmd.Context(), proto.UpdateProfileRequest{ProfilePic: pic})
			return err
		},
	}
	cmd.Flags().StringVar(&pic, "pic", "", "picture URL or data URI")
	_ = cmd.MarkFlagRequired("pic")
	return cmd
}

func newUsersCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users available for direct chats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := c.login(ctx); err != nil {
				return err
			}
			users, err := c.client.Directory.RefreshUsers(ctx)
			if err != nil {
				return err
			}
			waitPresence(ctx, c.client, presenceWait)
			renderUsers(cmd.OutOrStdout(), c.client, users)
			return nil
		},
	}
}

func newGroupsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List your groups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := c.login(ctx); err != nil {
				return err
			}
			if _, err := c.client.Directory.RefreshUsers(ctx); err != nil {
				return err
			}
			groups, err := c.client.Directory.RefreshGroups(ctx)
			if err != nil {
				return err
			}
			renderGroups(cmd.OutOrStdout(), c.client, groups)
			return nil
		},
	}
}

func newGroupCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Create, inspect and edit groups",
	}
	cmd.AddCommand(
		newGroupCreateCmd(c),
		newGroupShowCmd(c),
		newGroupAddCmd(c),
		newGroupRemoveCmd(c),
		newGroupEditCmd(c),
	)
	return cmd
}

func newGroupCreateCmd(c *cli) *cobra.Command {
	var members []string
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a group you administer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.login(ctx); err != nil {
				return err
			}
			g, err := c.client.Groups.CreateGroup(ctx, args[0], members)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "group %q created (%s)\n", g.Name, g.ID)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&members, "member", "m", nil, "member user id (repeatable)")
	return cmd
}

func newGroupShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show GROUP_ID",
		Short: "Show a group and its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGroup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			waitPresence(cmd.Context(), c.client, presenceWait)
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n\n", g.Name, g.ID)
			renderMembers(cmd.OutOrStdout(), c.client, g)
			return nil
		},
	}
}

func newGroupAddCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "add GROUP_ID USER_ID...",
		Short: "Add members to a group",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGroup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = c.client.Groups.AddMembers(cmd.Context(), g, args[1:])
			return err
		},
	}
}

func newGroupRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "remove GROUP_ID USER_ID",
		Short: "Remove a member from a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGroup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = c.client.Groups.RemoveMember(cmd.Context(), g, args[1])
			return err
		},
	}
}

func newGroupEditCmd(c *cli) *cobra.Command {
	var (
		name   string
		add    []string
		remove []string
	)
	cmd := &cobra.Command{
		Use:   "edit GROUP_ID",
		Short: "Rename a group and change its members in one save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGroup(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			edit := c.client.Groups.BeginEdit(g)
			if name != "" {
				edit.SetName(name)
			}
			for _, id := range add {
				if err := edit.Add(id); err != nil {
					return fmt.Errorf("add %s: %w", id, err)
				}
			}
			for _, id := range remove {
				if err := edit.Remove(id); err != nil {
					return fmt.Errorf("remove %s: %w", id, err)
				}
			}

			delta := edit.Delta()
			fmt.Fprintf(cmd.OutOrStdout(), "adding %d, removing %d\n", len(delta.ToAdd), len(delta.ToRemove))

			_, err = edit.Save(cmd.Context())
			var partial *core.PartialUpdateError
			switch {
			case errors.Is(err, core.ErrNoChanges):
				return nil
			case errors.As(err, &partial):
				return fmt.Errorf("edit stopped at %s; already applied: %v", partial.Step, partial.Completed)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new group name")
	cmd.Flags().StringSliceVar(&add, "add", nil, "user id to add (repeatable)")
	cmd.Flags().StringSliceVar(&remove, "remove", nil, "user id to remove (repeatable)")
	return cmd
}

func newChatCmd(c *cli) *cobra.Command {
	var peer, group string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open an interactive chat with --peer USER_ID or --group GROUP_ID",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := c.login(ctx); err != nil {
				return err
			}
			if _, err := c.client.Directory.RefreshUsers(ctx); err != nil {
				return err
			}

			var conv core.Conversation
			switch {
			case group != "":
				g, err := c.client.Directory.Group(ctx, group)
				if err != nil {
					return err
				}
				conv = core.InGroup(g)
			case peer != "":
				u, ok := c.client.Directory.LookupUser(peer)
				if !ok {
					return fmt.Errorf("unknown user %s", peer)
				}
				conv = core.Direct(u)
			}
			if err := c.client.Conversation.Select(ctx, conv); err != nil {
				return err
			}
			return runChat(ctx, cmd, c.client, conv)
		},
	}
	cmd.Flags().StringVar(&peer, "peer", "", "user id for a direct chat")
	cmd.Flags().StringVar(&group, "group", "", "group id for a group chat")
	cmd.MarkFlagsMutuallyExclusive("peer", "group")
	cmd.MarkFlagsOneRequired("peer", "group")
	return cmd
}

// runChat prints the log as it grows and sends stdin lines until EOF, /quit
// or cancellation. "/image URL" sends a picture.
func runChat(ctx context.Context, cmd *cobra.Command, client *app.Client, conv core.Conversation) error {
	out := cmd.OutOrStdout()

	var (
		mu      sync.Mutex
		printed int
	)
	flush := func(msgs []proto.Message) {
		mu.Lock()
		defer mu.Unlock()
		if len(msgs) < printed {
			printed = 0
		}
		for _, m := range msgs[printed:] {
			renderMessage(out, client, m)
		}
		printed = len(msgs)
	}

	fmt.Fprintf(out, "Chatting in %s. Type messages and press Enter to send. Ctrl+C to exit.\n", conv.Title())
	flush(client.Router.Messages())
	unsub := client.Router.OnMessages(flush)
	defer unsub()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			switch {
			case line == "":
				continue
			case line == "/quit":
				return nil
			case strings.HasPrefix(line, "/image "):
				_, _ = client.Router.SendMessage(ctx, proto.SendMessageRequest{Image: strings.TrimSpace(strings.TrimPrefix(line, "/image "))})
			default:
				// Failures are already reported through the notifier.
				_, _ = client.Router.SendMessage(ctx, proto.SendMessageRequest{Text: line})
			}
		}
	}
}

// loadGroup logs in, warms the user directory for names and fetches the group.
func (c *cli) loadGroup(ctx context.Context, id string) (proto.Group, error) {
	if err := c.login(ctx); err != nil {
		return proto.Group{}, err
	}
	if _, err := c.client.Directory.RefreshUsers(ctx); err != nil {
		return proto.Group{}, err
	}
	return c.client.Directory.Group(ctx, id)
}

// waitPresence gives the first presence snapshot a moment to arrive.
func waitPresence(ctx context.Context, client *app.Client, d time.Duration) {
	got := make(chan struct{}, 1)
	unsub := client.Presence.OnChange(func([]string) {
		select {
		case got <- struct{}{}:
		default:
		}
	})
	defer unsub()

	if len(client.Presence.Online()) > 0 {
		return
	}
	select {
	case <-got:
	case <-time.After(d):
	case <-ctx.Done():
	}
}

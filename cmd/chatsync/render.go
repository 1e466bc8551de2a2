package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/vovakirdan/chatsync/internal/app"
	"github.com/vovakirdan/chatsync/internal/proto"
)

func newTable(out io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func onlineMark(online bool) string {
	if online {
		return "online"
	}
	return ""
}

func renderUsers(out io.Writer, c *app.Client, users []proto.User) {
	table := newTable(out, "Name", "Email", "ID", "Presence")
	for _, u := range users {
		table.Append([]string{u.FullName, u.Email, u.ID, onlineMark(c.Presence.IsOnline(u.ID))})
	}
	table.Render()
}

func renderGroups(out io.Writer, c *app.Client, groups []proto.Group) {
	table := newTable(out, "Name", "ID", "Admin", "Members")
	for _, g := range groups {
		table.Append([]string{g.Name, g.ID, displayName(c, g.AdminID.String()), strconv.Itoa(len(g.MemberIDs()))})
	}
	table.Render()
}

func renderMembers(out io.Writer, c *app.Client, g proto.Group) {
	table := newTable(out, "Name", "ID", "Role", "Presence")
	admin := g.AdminID.String()
	table.Append([]string{displayName(c, admin), admin, "admin", onlineMark(c.Presence.IsOnline(admin))})
	for _, id := range g.MemberIDs() {
		table.Append([]string{displayName(c, id), id, "member", onlineMark(c.Presence.IsOnline(id))})
	}
	table.Render()
}

// displayName resolves a user id against the session and the directory.
func displayName(c *app.Client, id string) string {
	if me, ok := c.Session.User(); ok && me.ID == id {
		return me.FullName + " (you)"
	}
	if u, ok := c.Directory.LookupUser(id); ok {
		return u.FullName
	}
	return id
}

var (
	timeColor   = color.New(color.Faint)
	senderColor = color.New(color.FgCyan, color.Bold)
	selfColor   = color.New(color.FgGreen, color.Bold)
)

func renderMessage(out io.Writer, c *app.Client, m proto.Message) {
	sender := senderColor
	if me, ok := c.Session.User(); ok && me.ID == m.SenderID.String() {
		sender = selfColor
	}

	body := m.Text
	if m.Image != "" {
		if body != "" {
			body += " "
		}
		body += "[image]"
	}

	_, _ = fmt.Fprintf(out, "%s %s: %s\n",
		timeColor.Sprint(m.CreatedAt.Local().Format("15:04")),
		sender.Sprint(displayName(c, m.SenderID.String())),
		body,
	)
}

package main

import (
	"chat-client/api"
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/internal"
	"chat-client/projection"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

var (
	mineStyle    = color.New(color.FgGreen, color.OpBold)
	theirsStyle  = color.New(color.FgCyan, color.OpBold)
	faintStyle   = color.New(color.FgGray)
	failureStyle = color.New(color.FgRed)
	headerStyle  = color.New(color.BgBlack, color.FgGreen)
)

// Renderer writes everything the user sees. Colours are dropped when disabled.
type Renderer struct {
	out     io.Writer
	errOut  io.Writer
	colours bool
}

func NewRenderer(out, errOut io.Writer, colours bool) *Renderer {
	return &Renderer{out: out, errOut: errOut, colours: colours}
}

func (r *Renderer) style(s color.Style, text string) string {
	if !r.colours {
		return text
	}
	return s.Render(text)
}

func (r *Renderer) Header(text string) {
	_, _ = fmt.Fprintln(r.out, r.style(headerStyle, "  ====== "+text+" ======"))
}

func (r *Renderer) Info(format string, args ...any) {
	_, _ = fmt.Fprintln(r.out, r.style(faintStyle, fmt.Sprintf(format, args...)))
}

// Fail prints "<action>: <what the server said>".
func (r *Renderer) Fail(action string, err error) {
	_, _ = fmt.Fprintln(r.errOut, r.style(failureStyle, action+": "+api.ServerMessage(err)))
}

func (r *Renderer) Message(msg domain.Message, ownerID string) {
	name := msg.SenderID
	if msg.Sender != nil && msg.Sender.Username != "" {
		name = msg.Sender.Username
	}
	style := theirsStyle
	if msg.SenderID == ownerID {
		name = "me"
		style = mineStyle
	}
	at := "--:--"
	if !msg.CreatedAt.IsZero() {
		at = msg.CreatedAt.Local().Format("15:04")
	}
	_, _ = fmt.Fprintf(r.out, "%s %s %s\n", r.style(faintStyle, at), r.style(style, name+":"), msg.Content)
}

func (r *Renderer) Users(users []domain.User) {
	if len(users) == 0 {
		r.Info("No users found")
		return
	}
	table := r.table("", "Username", "Email", "Id")
	for _, u := range users {
		table.Append([]string{u.Initials(), u.Username, lo.FromPtr(u.Email), u.ID})
	}
	table.Render()
}

// Conversations lists the inbox, most recent activity first.
func (r *Renderer) Conversations(inbox *projection.Inbox) {
	conversations := SortConversations(inbox.Conversations())
	if len(conversations) == 0 {
		r.Info("No conversations yet")
		return
	}
	table := r.table("", "With", "Last message", "At", "Unread", "Online")
	for _, c := range conversations {
		last, at := "", ""
		if c.LastMessage != nil {
			last = c.LastMessage.Content
			if !c.LastMessage.CreatedAt.IsZero() {
				at = c.LastMessage.CreatedAt.Local().Format(time.DateTime)
			}
		}
		unread := ""
		if c.UnreadCount > 0 {
			unread = strconv.Itoa(c.UnreadCount)
		}
		online := ""
		if isOnline, seen := inbox.Online(c.Participant.ID); seen {
			online = lo.Ternary(isOnline, "yes", "no")
		}
		table.Append([]string{c.Participant.Initials(), c.Participant.Username, last, at, unread, online})
	}
	table.Render()
}

func (r *Renderer) Cache(rows []internal.InspectRow) {
	if len(rows) == 0 {
		r.Info("Cache is empty")
		return
	}
	table := r.table("Key", "Type", "Timestamp", "Participant", "Entity ID", "Detail")
	for _, row := range rows {
		table.Append([]string{row.Key, row.Type, row.Timestamp, row.Participant, row.EntityID, row.Detail})
	}
	table.Render()
}

func (r *Renderer) table(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(r.out)
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

// SortConversations orders rows by the date of their last message, newest
// first. Rows without a message go last. The input is left untouched.
func SortConversations(conversations []*domain.Conversation) []*domain.Conversation {
	sorted := slices.Clone(conversations)
	slices.SortStableFunc(sorted, func(a, b *domain.Conversation) int {
		return lastActivity(b).Compare(lastActivity(a))
	})
	return sorted
}

func lastActivity(c *domain.Conversation) time.Time {
	if c.LastMessage == nil {
		return time.Time{}
	}
	return c.LastMessage.CreatedAt.Time
}

// TimelineView prints the messages of one timeline exactly once, whichever
// path brought them in: history, live event or local send.
type TimelineView struct {
	renderer *Renderer
	timeline *projection.Timeline
	owner    domain.User
	with     domain.User

	mu      sync.Mutex
	printed map[string]struct{}
	typing  bool
}

func NewTimelineView(renderer *Renderer, timeline *projection.Timeline, owner, with domain.User) *TimelineView {
	return &TimelineView{
		renderer: renderer,
		timeline: timeline,
		owner:    owner,
		with:     with,
		printed:  make(map[string]struct{}),
	}
}

// Flush prints what the timeline holds and was not printed yet.
func (v *TimelineView) Flush() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, msg := range v.timeline.Messages() {
		if _, ok := v.printed[msg.ID]; ok {
			continue
		}
		v.printed[msg.ID] = struct{}{}
		v.renderer.Message(msg, v.owner.ID)
	}
}

// Consume runs after the timeline has been updated by the same event.
func (v *TimelineView) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessageReceived, event.MessageSent:
		v.Flush()
	case event.ConnectionRestored:
		v.renderer.Info("Reconnected")
		v.Flush()
	case event.UserTyping:
		if evt.UserID != v.with.ID {
			return nil
		}
		v.mu.Lock()
		defer v.mu.Unlock()
		if evt.IsTyping && !v.typing {
			v.renderer.Info("%s is typing...", v.with.Username)
		}
		v.typing = evt.IsTyping
	}
	return nil
}

// InboxView redraws the conversation list when a live event changed it.
type InboxView struct {
	renderer *Renderer
	inbox    *projection.Inbox
}

func NewInboxView(renderer *Renderer, inbox *projection.Inbox) *InboxView {
	return &InboxView{renderer: renderer, inbox: inbox}
}

func (v *InboxView) Consume(_ context.Context, e event.DomainEvent) error {
	switch e.(type) {
	case event.MessageReceived, event.UserStatusChanged, event.ConnectionRestored:
		v.renderer.Header("Conversations")
		v.renderer.Conversations(v.inbox)
	}
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/mindvault/internal/client/models"
	"github.com/dmitrijs2005/mindvault/internal/client/services"
	"github.com/fatih/color"
)

const snippetLen = 40

// Write prompts for a new entry and stores it.
func (a *App) Write(ctx context.Context) error {
	if err := a.requireAccess(ctx); err != nil {
		return err
	}

	title, err := GetSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Content", a.out)
	if err != nil {
		return err
	}
	moodText, err := GetSimpleText(a.reader, fmt.Sprintf("Mood %d-%d (empty to skip)", models.MinMood, models.MaxMood), a.out)
	if err != nil {
		return err
	}
	private, err := GetYesNo(a.reader, "Private?", a.out)
	if err != nil {
		return err
	}

	in := services.NewEntry{Title: title, Content: content, IsPrivate: private}
	if moodText != "" {
		mood, err := strconv.Atoi(moodText)
		if err != nil {
			return errors.New("mood must be a number")
		}
		in.Mood = &mood
	}

	e, err := a.journal.Write(ctx, in, a.keys())
	if err != nil {
		return err
	}

	if e.IsEncrypted {
		a.ok("Saved %s (encrypted)", e.ID)
	} else {
		a.ok("Saved %s", e.ID)
	}
	return nil
}

// Read prints one entry.
func (a *App) Read(ctx context.Context, id string) error {
	if err := a.requireAccess(ctx); err != nil {
		return err
	}

	v, err := a.journal.Read(ctx, id, a.keys())
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s  %s%s\n", color.YellowString(v.Title), v.CreatedAt.Local().Format("2006-01-02 15:04"), flags(v.Overview))
	if v.Mood != nil {
		fmt.Fprintf(a.out, "Mood: %d\n", *v.Mood)
	}
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, v.Content)
	return nil
}

// List prints all entries, newest first.
func (a *App) List(ctx context.Context) error {
	if err := a.requireAccess(ctx); err != nil {
		return err
	}

	views, err := a.journal.List(ctx, a.keys())
	if err != nil {
		return err
	}
	if len(views) == 0 {
		a.hint("No entries yet, type 'write'")
		return nil
	}

	for _, v := range views {
		text := snippet(v.Content)
		if v.Err != nil {
			text = color.RedString(describe(v.Err))
		}
		fmt.Fprintf(a.out, "%s  %s  %s%s\n  %s\n",
			v.ID, v.CreatedAt.Local().Format("2006-01-02"), color.YellowString(v.Title), flags(v.Overview), text)
	}
	return nil
}

// Delete removes one entry.
func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.requireAccess(ctx); err != nil {
		return err
	}
	if err := a.journal.Delete(ctx, id); err != nil {
		return err
	}
	a.ok("Deleted %s", id)
	return nil
}

// Migrate encrypts private entries still stored in plaintext.
func (a *App) Migrate(ctx context.Context) error {
	if err := a.requireAccess(ctx); err != nil {
		return err
	}

	var n int
	err := a.withSpinner("Encrypting private entries...", func() error {
		var err error
		n, err = a.journal.MigrateLegacy(ctx, a.keys())
		return err
	})
	if err != nil {
		return err
	}
	a.ok("%d entries encrypted", n)
	return nil
}

func flags(o models.Overview) string {
	var parts []string
	if o.IsPrivate {
		parts = append(parts, "private")
	}
	if o.IsEncrypted {
		parts = append(parts, "encrypted")
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= snippetLen {
		return s
	}
	return string(r[:snippetLen]) + "..."
}

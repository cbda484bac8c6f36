package cli

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/secretkey/internal/client/client"
	"github.com/dmitrijs2005/secretkey/internal/client/models"
	"github.com/dmitrijs2005/secretkey/internal/client/store"
	"github.com/dmitrijs2005/secretkey/internal/common"
)

// report prints the error of a command the view does not render. An
// expired session is shown by the view after the Store resets.
func (a *App) report(err error) {
	switch store.Classify(err) {
	case store.KindNone, store.KindUnauthorized, store.KindCanceled:
		return
	}
	a.printf("Error: %s\n", store.Message(err))
}

// reportInput prints a rejected input. Remote failures of mutations are part
// of the Store state and rendered from there.
func (a *App) reportInput(err error) {
	if store.Classify(err) == store.KindValidation {
		a.printf("Error: %s\n", store.Message(err))
	}
}

func (a *App) Register(ctx context.Context) error {
	return a.authenticate(ctx, a.auth.Register)
}

func (a *App) Login(ctx context.Context) error {
	return a.authenticate(ctx, a.auth.Login)
}

type authFunc func(ctx context.Context, username string, password []byte) (user models.User, err error)

func (a *App) authenticate(ctx context.Context, call authFunc) error {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := call(ctx, username, password)
	if err != nil {
		a.report(err)
		return err
	}

	a.printf("Welcome, %s!\n", user.Username)
	a.store.Reset()
	return a.load(ctx, a.store.Init)
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		a.report(err)
		return err
	}
	a.store.Reset()
	a.printf("Logged out.\n")
	return nil
}

// List reloads the current page.
func (a *App) List(ctx context.Context) error {
	a.store.ClearSearch()
	return a.load(ctx, a.store.Refetch)
}

func (a *App) Retry(ctx context.Context) error {
	return a.load(ctx, a.store.Refetch)
}

// load runs a page load. Its failure is part of the Store state and is
// rendered from there.
func (a *App) load(ctx context.Context, fn func(context.Context) error) error {
	err := fn(ctx)
	if err != nil && store.Classify(err) != store.KindCanceled {
		a.logger.Debug(ctx, "page load failed", "error", err)
	}
	return err
}

// Page loads the 1-based page n.
func (a *App) Page(ctx context.Context, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		a.printf("Usage: page <n>\n")
		return err
	}
	return a.navigate(a.store.GoToPage(ctx, n-1))
}

func (a *App) Next(ctx context.Context) error {
	return a.navigate(a.store.NextPage(ctx))
}

func (a *App) Prev(ctx context.Context) error {
	return a.navigate(a.store.PrevPage(ctx))
}

func (a *App) navigate(err error) error {
	if errors.Is(err, store.ErrPageOutOfRange) {
		a.printf("No such page (1-%d).\n", max(a.store.Snapshot().TotalPages, 1))
	}
	return err
}

// Find pins the record named name. The whole rest of the line is the name.
// A failed search drops the previously pinned record and keeps the error.
func (a *App) Find(ctx context.Context, name string) error {
	_, err := a.store.FindByName(ctx, name)
	if err != nil && store.Classify(err) != store.KindUnauthorized {
		a.store.DropOverlay()
	}
	return err
}

func (a *App) ClearSearch(ctx context.Context) error {
	a.store.ClearSearch()
	return nil
}

func (a *App) Add(ctx context.Context) error {
	fields, err := a.getFields(nil)
	if err != nil {
		return err
	}
	rec, err := a.store.CreateRecord(ctx, fields)
	if err != nil {
		a.reportInput(err)
		return err
	}
	a.printf("Created %s (%s).\n", rec.Name, rec.ID)
	return nil
}

func (a *App) Edit(ctx context.Context, id string) error {
	rec, ok := a.store.Snapshot().Lookup(id)
	if !ok {
		a.printf("No platform %q on this page.\n", id)
		return client.ErrNotFound
	}

	current := rec.Fields()
	fields, err := a.getFields(&current)
	if err != nil {
		return err
	}
	updated, err := a.store.UpdateRecord(ctx, id, fields)
	if err != nil {
		a.reportInput(err)
		return err
	}
	a.printf("Updated %s.\n", updated.Name)
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	label := id
	if rec, ok := a.store.Snapshot().Lookup(id); ok {
		label = rec.Name
	}

	yes, err := confirm(a.reader, "Delete "+label+"?", a.out)
	if err != nil {
		return err
	}
	if !yes {
		a.printf("Cancelled.\n")
		return nil
	}

	if err := a.store.DeleteRecord(ctx, id); err != nil {
		a.reportInput(err)
		return err
	}
	a.printf("Deleted %s.\n", label)
	return nil
}

// Show prints one record with its password.
func (a *App) Show(ctx context.Context, id string) error {
	rec, ok := a.store.Snapshot().Lookup(id)
	if !ok {
		a.printf("No platform %q on this page.\n", id)
		return client.ErrNotFound
	}
	a.outMu.Lock()
	renderRecord(a.out, rec)
	a.outMu.Unlock()
	return nil
}

func (a *App) Export(ctx context.Context, format string) error {
	kind, err := client.ParseExportKind(strings.ToLower(format))
	if err != nil {
		a.printf("Usage: export excel|pdf\n")
		return err
	}

	loc, err := a.exports.Export(ctx, kind)
	if err != nil {
		a.report(err)
		return err
	}
	a.printf("Export saved to %s\n", loc)
	return nil
}

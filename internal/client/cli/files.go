package cli

import (
	"context"
	"strings"
)

func (a *App) List(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usage("list <org> [query]")
	}
	return a.list(ctx, args[0], strings.Join(args[1:], " "), false)
}

func (a *App) Favorites(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("favorites <org>")
	}
	return a.list(ctx, args[0], "", true)
}

func (a *App) list(ctx context.Context, orgID, query string, favorites bool) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	files, err := a.api.GetFiles(ctx, orgID, query, favorites)
	if err != nil {
		return report(err)
	}

	if len(files) == 0 {
		printlnFn("No files.")
		return nil
	}
	for _, f := range files {
		printFile(f)
	}
	return nil
}

func (a *App) URLs(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("urls <org>")
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	files, err := a.api.GetFilesWithURLs(ctx, args[0])
	if err != nil {
		return report(err)
	}

	if len(files) == 0 {
		printlnFn("No files.")
		return nil
	}
	for _, f := range files {
		printFile(&f.File)
		if f.URL == nil {
			printlnFn("    (content missing)")
			continue
		}
		printlnFn("   ", *f.URL)
	}
	return nil
}

func (a *App) Favorite(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("favorite <fileId>")
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	on, err := a.api.ToggleFavorite(ctx, args[0])
	if err != nil {
		return report(err)
	}

	if on {
		printlnFn("Added to favorites.")
	} else {
		printlnFn("Removed from favorites.")
	}
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delete <fileId>")
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.api.DeleteFile(ctx, args[0]); err != nil {
		return report(err)
	}
	printlnFn("Deleted.")
	return nil
}

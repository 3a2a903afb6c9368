package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. Each command
// receives the words that followed it on the line.
type execIface interface {
	isAuthenticated() bool
	Token(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Favorites(ctx context.Context, args []string) error
	URLs(ctx context.Context, args []string) error
	Favorite(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  token <subject> [org,...]     mint a development token (needs -s)
  upload <path> <org> [name]    upload a file into an organization
  (l)ist <org> [query]          list files, optionally filtered by name
  favorites <org>               list your favorite files
  urls <org>                    list files with download links
  favorite <fileId>             toggle the favorite mark
  delete <fileId>               delete a file
  exit | quit`

// runREPL reads one command per line from scanner and dispatches it to a.
// The loop ends on EOF or on "exit"/"quit". Command errors are reported by
// the handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("orgdrive %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText)
			if !a.isAuthenticated() {
				printlnFn("No access token set; most commands will be refused.")
			}

		case "token":
			_ = a.Token(ctx, args)

		case "upload":
			_ = a.Upload(ctx, args)

		case "l", "list":
			_ = a.List(ctx, args)

		case "favorites":
			_ = a.Favorites(ctx, args)

		case "urls":
			_ = a.URLs(ctx, args)

		case "favorite", "fav":
			_ = a.Favorite(ctx, args)

		case "delete", "rm":
			_ = a.Delete(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

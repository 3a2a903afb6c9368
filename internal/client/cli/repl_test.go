package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	authenticated bool

	calls []string
	args  [][]string
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return nil
}

func (f *fakeExec) isAuthenticated() bool { return f.authenticated }
func (f *fakeExec) Token(ctx context.Context, args []string) error {
	f.authenticated = true
	return f.record("token", args)
}
func (f *fakeExec) Upload(ctx context.Context, args []string) error { return f.record("upload", args) }
func (f *fakeExec) List(ctx context.Context, args []string) error   { return f.record("list", args) }
func (f *fakeExec) Favorites(ctx context.Context, args []string) error {
	return f.record("favorites", args)
}
func (f *fakeExec) URLs(ctx context.Context, args []string) error { return f.record("urls", args) }
func (f *fakeExec) Favorite(ctx context.Context, args []string) error {
	return f.record("favorite", args)
}
func (f *fakeExec) Delete(ctx context.Context, args []string) error { return f.record("delete", args) }

func silencePrintln(t *testing.T) *[]string {
	t.Helper()
	var out []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, 0, len(a))
		for _, v := range a {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		out = append(out, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &out
}

func TestRunREPL_Dispatch(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"token alice org_1,org_2",
		"",
		"upload ./a.pdf org_1 Quarterly report",
		"l org_1 rep",
		"favorites org_1",
		"urls org_1",
		"fav f1",
		"rm f1",
		"foobar",
		"exit",
		"list org_1",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	assert.Equal(t, []string{"token", "upload", "list", "favorites", "urls", "favorite", "delete"}, exec.calls)
	assert.Equal(t, []string{"./a.pdf", "org_1", "Quarterly", "report"}, exec.args[1])
	assert.Equal(t, []string{"org_1", "rep"}, exec.args[2])
}

func TestRunREPL_HelpWarnsWhenAnonymous(t *testing.T) {
	out := silencePrintln(t)

	runREPL(context.Background(), &fakeExec{}, func() string { return "s" }, bufio.NewScanner(strings.NewReader("help\nquit\n")))

	assert.Contains(t, *out, "No access token set; most commands will be refused.")
	assert.Contains(t, *out, "Bye!")
}

func TestRunREPL_EOF(t *testing.T) {
	silencePrintln(t)

	exec := &fakeExec{authenticated: true}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(strings.NewReader("unknown")))

	assert.Empty(t, exec.calls)
}

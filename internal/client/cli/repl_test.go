package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	calls   []string
	idleErr error
	failOn  string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	if name == f.failOn {
		return errors.New(name + " failed")
	}
	return nil
}

func (f *fakeExec) checkIdle(context.Context) error {
	f.calls = append(f.calls, "idle")
	return f.idleErr
}
func (f *fakeExec) Status(context.Context) error    { return f.record("status") }
func (f *fakeExec) SetPin(context.Context) error    { return f.record("setpin") }
func (f *fakeExec) ChangePin(context.Context) error { return f.record("changepin") }
func (f *fakeExec) RemovePin(context.Context) error { return f.record("removepin") }
func (f *fakeExec) Unlock(context.Context) error    { return f.record("unlock") }
func (f *fakeExec) Lock(context.Context) error      { return f.record("lock") }
func (f *fakeExec) Biometric(_ context.Context, arg string) error {
	return f.record("biometric " + arg)
}
func (f *fakeExec) Timeout(_ context.Context, arg string) error {
	return f.record("timeout " + arg)
}
func (f *fakeExec) Write(context.Context) error { return f.record("write") }
func (f *fakeExec) Read(_ context.Context, id string) error {
	return f.record("read " + id)
}
func (f *fakeExec) List(context.Context) error { return f.record("list") }
func (f *fakeExec) Delete(_ context.Context, id string) error {
	return f.record("delete " + id)
}
func (f *fakeExec) Migrate(context.Context) error { return f.record("migrate") }

func (f *fakeExec) commands() []string {
	var out []string
	for _, c := range f.calls {
		if c != "idle" {
			out = append(out, c)
		}
	}
	return out
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	input := strings.Join([]string{
		"help",
		"status",
		"setpin",
		"unlock",
		"",
		"write",
		"l",
		"list",
		"read abc",
		"delete abc",
		"biometric on",
		"timeout 60",
		"migrate",
		"changepin",
		"lock",
		"removepin",
		"foobar",
		"exit",
		"status",
	}, "\n")

	exec := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "(s)" }, rdr(input), &out)

	assert.Equal(t, []string{
		"status", "setpin", "unlock", "write", "list", "list", "read abc", "delete abc",
		"biometric on", "timeout 60", "migrate", "changepin", "lock", "removepin",
	}, exec.commands())
	assert.Contains(t, out.String(), "Available commands")
	assert.Contains(t, out.String(), "Unknown command: foobar")
	assert.Contains(t, out.String(), "mv (s)> ")
	assert.Contains(t, out.String(), "Bye!")
}

func TestRunREPL_IdleCheckedBeforeEveryCommand(t *testing.T) {
	exec := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "" }, rdr("status\nlist\nhelp\n"), &out)

	assert.Equal(t, []string{"idle", "status", "idle", "list"}, exec.calls)
}

func TestRunREPL_IdleErrorSkipsCommand(t *testing.T) {
	exec := &fakeExec{idleErr: errors.New("db gone")}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "" }, rdr("list\n"), &out)

	assert.Empty(t, exec.commands())
	assert.Contains(t, out.String(), "db gone")
}

func TestRunREPL_UsageAndErrors(t *testing.T) {
	exec := &fakeExec{failOn: "list"}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "" }, rdr("read\ndelete\nbiometric\ntimeout\nlist\nquit\n"), &out)

	require.Equal(t, []string{"list"}, exec.commands())
	s := out.String()
	assert.Contains(t, s, "usage: read <id>")
	assert.Contains(t, s, "usage: delete <id>")
	assert.Contains(t, s, "usage: biometric on|off")
	assert.Contains(t, s, "usage: timeout <seconds>")
	assert.Contains(t, s, "list failed")
}

func TestRunREPL_EOFWithoutNewline(t *testing.T) {
	exec := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "" }, rdr("status"), &out)
	assert.Equal(t, []string{"status"}, exec.commands())
}

package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rtzll/clipmind/internal"
	"github.com/spf13/cobra"
)

func newTaskCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addTaskFlags(cmd)
	return cmd
}

func TestCollectLinks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.txt")
	if err := os.WriteFile(path, []byte("# queue\nabcdefghijk\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newTaskCommand()
	if err := cmd.Flags().Set("file", path); err != nil {
		t.Fatal(err)
	}

	got, err := collectLinks(cmd, []string{"https://youtu.be/dQw4w9WgXcQ"})
	if err != nil {
		t.Fatalf("collectLinks() error: %v", err)
	}
	want := []string{"https://youtu.be/dQw4w9WgXcQ", "abcdefghijk"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("collectLinks() = %q, want %q", got, want)
	}
}

func TestCollectLinksRejectsCommands(t *testing.T) {
	_, err := collectLinks(newTaskCommand(), []string{"idea"})
	if err == nil || !strings.Contains(err.Error(), "did you mean: ideas") {
		t.Errorf("collectLinks() error = %v, want a suggestion", err)
	}

	_, err = collectLinks(newTaskCommand(), []string{"https://example.com/watch?v=dQw4w9WgXcQ"})
	if err == nil {
		t.Error("collectLinks() accepted a non-YouTube link")
	}
}

func TestFailureLabel(t *testing.T) {
	if got := failureLabel(internal.BatchFailure{VideoID: "dQw4w9WgXcQ", Link: "x"}); got != "dQw4w9WgXcQ" {
		t.Errorf("failureLabel() = %q", got)
	}
	if got := failureLabel(internal.BatchFailure{Link: "not-a-link"}); got != "not-a-link" {
		t.Errorf("failureLabel() = %q", got)
	}
}

package restoration

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	clockerrors "github.com/go-drift/clockface/pkg/errors"
)

func TestBucketPutGet(t *testing.T) {
	b := NewBucket()
	if _, ok := b.Get("clockface.state"); ok {
		t.Fatal("empty bucket returned a value")
	}

	in := []string{"2024-05-01", "12:36:10"}
	b.Put("clockface.state", in...)
	in[0] = "mutated"

	got, ok := b.Get("clockface.state")
	if !ok {
		t.Fatal("value missing after Put")
	}
	if diff := cmp.Diff([]string{"2024-05-01", "12:36:10"}, got); diff != "" {
		t.Errorf("Get (-want +got):\n%s", diff)
	}

	b.Put("other", "x")
	if diff := cmp.Diff([]string{"clockface.state", "other"}, b.IDs()); diff != "" {
		t.Errorf("IDs (-want +got):\n%s", diff)
	}
	b.Remove("other")
	if _, ok := b.Get("other"); ok {
		t.Error("Remove did not delete")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "restore.yaml")

	b := NewBucket()
	b.Put("clockface.state", "2024-05-01", "12:36:10")
	if err := b.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "clockface.state:") {
		t.Errorf("unexpected file contents:\n%s", data)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, _ := loaded.Get("clockface.state")
	if diff := cmp.Diff([]string{"2024-05-01", "12:36:10"}, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	b, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(b.IDs()) != 0 {
		t.Errorf("IDs = %v, want none", b.IDs())
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b.Put("k", "v")
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("clockface.state: {not: [a list"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	var ce *clockerrors.ClockError
	if !errors.As(err, &ce) || ce.Kind != clockerrors.KindParsing {
		t.Errorf("Load error = %v, want parsing ClockError", err)
	}
}

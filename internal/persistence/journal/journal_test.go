package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"cachecraft.gg/internal/sim/session"
)

func TestInteractionLoggerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewInteractionLogger(dir)

	entries := []session.JournalEntry{
		{Tick: 1, Kind: "PICKUP", I: 1, J: 1, Token: 8, Held: 8, Score: 1},
		{Tick: 2, Kind: "CRAFT", I: 1, J: 2, Token: 16, Held: 16, Score: 3},
		{Tick: 9, Kind: "RESTART"},
	}
	for _, e := range entries {
		if err := l.WriteEntry(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "journal", "interactions-*.jsonl.zst"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("journal files = %v (err %v), want exactly one", matches, err)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	defer dec.Close()

	var got []session.JournalEntry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e session.JournalEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("unmarshal %q: %v", sc.Text(), err)
		}
		got = append(got, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("read back %d entries, want %d", len(got), len(entries))
	}
	for n := range entries {
		if got[n] != entries[n] {
			t.Fatalf("entry %d = %+v, want %+v", n, got[n], entries[n])
		}
	}
}

package archive

import (
	"os"
	"path/filepath"
	"testing"

	"cachecraft.gg/internal/persistence/snapshot"
)

func wonSnap(tick uint64, score int) snapshot.SnapshotV1 {
	return snapshot.SnapshotV1{
		Header: snapshot.Header{Version: snapshot.CurrentVersion, Tick: tick},
		Seed:   1337,
		Player: snapshot.PlayerV1{Held: 32, Score: score, Won: true},
	}
}

func TestArchiveVictorySkipsUnwonSession(t *testing.T) {
	dir := t.TempDir()
	snap := wonSnap(100, 7)
	snap.Player.Won = false

	_, _, archived, err := ArchiveVictory(dir, snap, []byte("save"))
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if archived {
		t.Fatalf("unwon session archived")
	}
}

func TestArchiveVictorySequencesRuns(t *testing.T) {
	dir := t.TempDir()

	run, path, archived, err := ArchiveVictory(dir, wonSnap(100, 7), []byte("first"))
	if err != nil || !archived || run != 1 {
		t.Fatalf("first archive: run=%d archived=%v err=%v", run, archived, err)
	}
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "first" {
		t.Fatalf("archived bytes = %q err=%v", b, err)
	}

	run, _, archived, err = ArchiveVictory(dir, wonSnap(900, 12), []byte("second"))
	if err != nil || !archived || run != 2 {
		t.Fatalf("second archive: run=%d archived=%v err=%v", run, archived, err)
	}

	runs, err := ListVictories(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("listed %d runs, want 2", len(runs))
	}
	if runs[0].Run != 1 || runs[0].Tick != 100 || runs[0].Score != 7 {
		t.Fatalf("run 1 meta = %+v", runs[0])
	}
	if runs[1].Run != 2 || runs[1].Tick != 900 {
		t.Fatalf("run 2 meta = %+v", runs[1])
	}
}

func TestListVictoriesEmptyWithoutArchives(t *testing.T) {
	runs, err := ListVictories(filepath.Join(t.TempDir(), "nothing-here"))
	if err != nil || runs != nil {
		t.Fatalf("list = %v err=%v, want empty", runs, err)
	}
}

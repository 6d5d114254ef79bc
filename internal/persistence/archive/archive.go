// Package archive keeps cold copies of finished runs. When a session reaches
// the victory threshold, the winning save is copied out of the live store into
// `dataDir/archives/win_<NNN>/` next to a small meta file, so a later restart
// (which resets the world) cannot erase the record of the run.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"cachecraft.gg/internal/persistence/snapshot"
)

const saveFileName = "save.bin"

type VictoryMeta struct {
	Run       int    `json:"run"`
	Tick      uint64 `json:"tick"`
	Seed      int64  `json:"seed"`
	Held      uint16 `json:"held"`
	Score     int    `json:"score"`
	Snapshot  string `json:"snapshot"`
	CreatedAt string `json:"created_at"`
}

// ArchiveVictory writes the encoded save bytes of a won session under the next
// free run directory. It returns archived=false without error when the
// snapshot is not a victory.
func ArchiveVictory(dataDir string, snap snapshot.SnapshotV1, raw []byte) (run int, archivedPath string, archived bool, err error) {
	if !snap.Player.Won {
		return 0, "", false, nil
	}

	root := filepath.Join(dataDir, "archives")
	run, err = nextRun(root)
	if err != nil {
		return 0, "", false, err
	}
	dir := filepath.Join(root, fmt.Sprintf("win_%03d", run))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, "", false, err
	}

	dst := filepath.Join(dir, saveFileName)
	if err := os.WriteFile(dst, raw, 0o644); err != nil {
		return 0, "", false, err
	}

	meta := VictoryMeta{
		Run:       run,
		Tick:      snap.Header.Tick,
		Seed:      snap.Seed,
		Held:      snap.Player.Held,
		Score:     snap.Player.Score,
		Snapshot:  saveFileName,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if b, merr := json.MarshalIndent(meta, "", "  "); merr == nil {
		_ = os.WriteFile(filepath.Join(dir, "meta.json"), b, 0o644)
	}

	return run, dst, true, nil
}

// ListVictories reads back the meta files of all archived runs, oldest first.
func ListVictories(dataDir string) ([]VictoryMeta, error) {
	root := filepath.Join(dataDir, "archives")
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []VictoryMeta
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		b, err := os.ReadFile(filepath.Join(root, e.Name(), "meta.json"))
		if err != nil {
			continue
		}
		var m VictoryMeta
		if err := json.Unmarshal(b, &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Run < out[j].Run })
	return out, nil
}

func nextRun(root string) (int, error) {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	max := 0
	for _, e := range entries {
		var n int
		if _, err := fmt.Sscanf(e.Name(), "win_%03d", &n); err == nil && n > max {
			max = n
		}
	}
	return max + 1, nil
}

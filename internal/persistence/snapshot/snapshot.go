// Package snapshot is the byte codec for a whole session: origin, player
// state, and every decided cell. The body is gob behind a zstd frame, with a
// one-line JSON header up front so tooling can identify a save without
// decoding it.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

const CurrentVersion = 1

type Header struct {
	Version int    `json:"version"`
	Tick    uint64 `json:"tick"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed             int64   `json:"seed"`
	CellSizeDeg      float64 `json:"cell_size_deg"`
	RenderRadius     int     `json:"render_radius"`
	InteractRadius   int     `json:"interact_radius"`
	SpawnPermille    int     `json:"spawn_permille"`
	VictoryThreshold int     `json:"victory_threshold"`

	Origin LatLngV1 `json:"origin"`
	Player PlayerV1 `json:"player"`

	Cells []CellV1 `json:"cells"`
}

type LatLngV1 struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type PlayerV1 struct {
	Pos   LatLngV1 `json:"pos"`
	Held  uint16   `json:"held"`
	Score int      `json:"score"`
	Won   bool     `json:"won"`
}

type CellV1 struct {
	I     int    `json:"i"`
	J     int    `json:"j"`
	Token uint16 `json:"token"`
}

func Encode(snap SnapshotV1) ([]byte, error) {
	var buf bytes.Buffer

	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}

	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return nil, err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return nil, err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return nil, fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Decode(b []byte) (SnapshotV1, error) {
	var snap SnapshotV1
	dec, err := zstd.NewReader(bytes.NewReader(b))
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	// Header line; gob also carries the header.
	line, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	var hdr Header
	if err := json.Unmarshal(bytes.TrimSpace(line), &hdr); err != nil {
		return snap, fmt.Errorf("decode header: %w", err)
	}
	if hdr.Version != CurrentVersion {
		return snap, fmt.Errorf("unsupported snapshot version %d", hdr.Version)
	}

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}

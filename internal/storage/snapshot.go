// Package storage persists the record store snapshot.
//
// Every backend stores the same JSON document under SnapshotKey and replaces
// it as a whole on each save.
package storage

import (
	"encoding/json"
	"fmt"

	"paybook/internal/core"
)

// SnapshotKey names the persisted document.
const SnapshotKey = "salary-storage"

func encodeSnapshot(snap core.Snapshot) ([]byte, error) {
	if snap.Records == nil {
		snap.Records = []core.SalaryRecord{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (core.Snapshot, error) {
	var snap core.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return core.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

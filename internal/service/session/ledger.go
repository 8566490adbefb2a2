package session

import (
	"fmt"
	"time"

	"github.com/aaronpowner1970/words-of-plainness-editor/internal/config"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/domain/models"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/utils"
)

// saveVersion prepends a snapshot to the ledger and truncates it to the
// retention bound. Version ids are unix-millisecond timestamps, bumped
// when two saves land in the same millisecond so ids stay strictly
// monotonic. Returns the new ledger and the created version.
func saveVersion(versions []*models.Version, content, label string) ([]*models.Version, *models.Version) {
	now := time.Now().UTC()
	id := now.UnixMilli()
	if len(versions) > 0 && versions[0].ID >= id {
		id = versions[0].ID + 1
	}

	if label == "" {
		label = fmt.Sprintf("Version %d", len(versions)+1)
	}

	v := &models.Version{
		ID:        id,
		Content:   content,
		Label:     label,
		CreatedAt: now,
		WordCount: utils.CountWords(content),
	}

	updated := append([]*models.Version{v}, versions...)
	if len(updated) > config.MaxVersions {
		updated = updated[:config.MaxVersions]
	}
	return updated, v
}

// findVersion returns the version with the given id, or nil. Pure lookup;
// the ledger is never mutated by a restore.
func findVersion(versions []*models.Version, id int64) *models.Version {
	for _, v := range versions {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// deleteVersion removes a version by id. Idempotent on missing ids.
func deleteVersion(versions []*models.Version, id int64) []*models.Version {
	out := versions[:0]
	for _, v := range versions {
		if v.ID != id {
			out = append(out, v)
		}
	}
	return out
}

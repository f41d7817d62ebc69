package task

import (
	"sort"

	"github.com/google/uuid"
)

// Sort puts tasks in list order: explicit positions ascending with unpositioned
// (newer than the last reorder) tasks on top, newest first.
func Sort(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch {
		case a.Position == nil && b.Position != nil:
			return true
		case a.Position != nil && b.Position == nil:
			return false
		case a.Position != nil && b.Position != nil && *a.Position != *b.Position:
			return *a.Position < *b.Position
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// Move returns ids with id relocated to index. An index past the end moves it
// last. ok is false when id is not in ids.
func Move(ids []uuid.UUID, id uuid.UUID, index int) (out []uuid.UUID, ok bool) {
	from := -1
	for i, v := range ids {
		if v == id {
			from = i
			break
		}
	}
	if from < 0 {
		return nil, false
	}
	if index < 0 {
		index = 0
	}
	if index > len(ids)-1 {
		index = len(ids) - 1
	}
	out = make([]uuid.UUID, 0, len(ids))
	out = append(out, ids[:from]...)
	out = append(out, ids[from+1:]...)
	out = append(out[:index], append([]uuid.UUID{id}, out[index:]...)...)
	return out, true
}

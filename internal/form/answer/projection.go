package answer

import (
	"NYCU-SDC/form-engine-backend/internal/form/shared"

	"github.com/google/uuid"
)

// Field is the part of a form field needed to label an answer.
type Field struct {
	ID   uuid.UUID
	Name string
}

// Project re-keys answers from field id to field name. Keys are matched on the
// parsed uuid, so case and brace variants of an id resolve to the same field.
// Keys that do not match any field, such as answers to deleted fields, are kept
// under their raw key. When two fields share a name the later one in fields wins.
func Project(answers shared.Answers, fields []Field) shared.Answers {
	projected := make(shared.Answers, len(answers))
	known := make(map[uuid.UUID]bool, len(fields))
	for _, f := range fields {
		known[f.ID] = true
	}

	type keyed struct {
		key   string
		value shared.Value
	}
	byID := make(map[uuid.UUID]keyed, len(answers))

	for key, value := range answers {
		id, err := uuid.Parse(key)
		if err != nil || !known[id] {
			projected[key] = value
			continue
		}

		// Several spellings of one id: prefer the canonical key, then the smallest.
		if existing, ok := byID[id]; ok {
			canonical := id.String()
			if existing.key == canonical || (key != canonical && existing.key < key) {
				continue
			}
		}
		byID[id] = keyed{key: key, value: value}
	}

	for _, f := range fields {
		if entry, ok := byID[f.ID]; ok {
			projected[f.Name] = entry.value
		}
	}

	return projected
}

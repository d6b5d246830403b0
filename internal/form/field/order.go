package field

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Order reconstructs the display order of a form's fields by following the
// predecessor links from the head. The walk is iterative and visits each field
// at most once, so cycles and forks cannot loop forever. When more than one
// field claims the same predecessor, the first one in the input wins.
//
// A result shorter than the input means the list is corrupted. The caller
// decides whether that is fatal.
func Order(fields []FormField) []FormField {
	if len(fields) == 0 {
		return []FormField{}
	}

	var head *FormField
	successor := make(map[uuid.UUID]int, len(fields))
	for i := range fields {
		if !fields[i].PrevFieldID.Valid {
			if head == nil {
				head = &fields[i]
			}
			continue
		}
		prev := uuid.UUID(fields[i].PrevFieldID.Bytes)
		if _, exists := successor[prev]; !exists {
			successor[prev] = i
		}
	}

	if head == nil {
		return []FormField{}
	}

	ordered := make([]FormField, 0, len(fields))
	visited := make(map[uuid.UUID]bool, len(fields))

	current := *head
	for len(ordered) < len(fields) {
		if visited[current.ID] {
			break
		}
		visited[current.ID] = true
		ordered = append(ordered, current)

		next, ok := successor[current.ID]
		if !ok {
			break
		}
		current = fields[next]
	}

	return ordered
}

// Relink returns the predecessor each field must have for the fields to be
// displayed in the given sequence: the first has none, every other one points
// at the field before it.
func Relink(sequence []FormField) map[uuid.UUID]pgtype.UUID {
	links := make(map[uuid.UUID]pgtype.UUID, len(sequence))
	for i, f := range sequence {
		if i == 0 {
			links[f.ID] = pgtype.UUID{Valid: false}
			continue
		}
		links[f.ID] = pgtype.UUID{Bytes: sequence[i-1].ID, Valid: true}
	}
	return links
}

// SwapPositions returns a copy of ordered with the two fields exchanged. It
// reports false when either id is not in ordered.
func SwapPositions(ordered []FormField, first, second uuid.UUID) ([]FormField, bool) {
	firstIndex, secondIndex := -1, -1
	for i, f := range ordered {
		switch f.ID {
		case first:
			firstIndex = i
		case second:
			secondIndex = i
		}
	}
	if firstIndex == -1 || secondIndex == -1 {
		return nil, false
	}

	swapped := make([]FormField, len(ordered))
	copy(swapped, ordered)
	swapped[firstIndex], swapped[secondIndex] = swapped[secondIndex], swapped[firstIndex]
	return swapped, true
}

// Report describes the structural health of one form's field list.
type Report struct {
	FormID       uuid.UUID
	FieldCount   int
	OrderedCount int
	Heads        []uuid.UUID
	// Forks lists predecessor ids claimed by more than one field.
	Forks []uuid.UUID
	// Dangling lists fields whose predecessor is not a field of the form.
	Dangling    []uuid.UUID
	Unreachable []uuid.UUID
}

func (r Report) Healthy() bool {
	if r.FieldCount == 0 {
		return len(r.Heads) == 0
	}
	return len(r.Heads) == 1 &&
		len(r.Forks) == 0 &&
		len(r.Dangling) == 0 &&
		len(r.Unreachable) == 0 &&
		r.OrderedCount == r.FieldCount
}

// Inspect checks the linked list of fields without modifying anything.
func Inspect(formID uuid.UUID, fields []FormField) Report {
	report := Report{
		FormID:     formID,
		FieldCount: len(fields),
	}

	ids := make(map[uuid.UUID]bool, len(fields))
	for _, f := range fields {
		ids[f.ID] = true
	}

	claims := make(map[uuid.UUID]int, len(fields))
	for _, f := range fields {
		if !f.PrevFieldID.Valid {
			report.Heads = append(report.Heads, f.ID)
			continue
		}
		prev := uuid.UUID(f.PrevFieldID.Bytes)
		if !ids[prev] {
			report.Dangling = append(report.Dangling, f.ID)
		}
		claims[prev]++
		if claims[prev] == 2 {
			report.Forks = append(report.Forks, prev)
		}
	}

	ordered := Order(fields)
	report.OrderedCount = len(ordered)

	reached := make(map[uuid.UUID]bool, len(ordered))
	for _, f := range ordered {
		reached[f.ID] = true
	}
	for _, f := range fields {
		if !reached[f.ID] {
			report.Unreachable = append(report.Unreachable, f.ID)
		}
	}

	return report
}

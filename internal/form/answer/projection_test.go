package answer

import (
	"strings"
	"testing"

	"NYCU-SDC/form-engine-backend/internal/form/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	nameID := uuid.New()
	ageID := uuid.New()
	deletedID := uuid.New()

	fields := []Field{
		{ID: nameID, Name: "name"},
		{ID: ageID, Name: "age"},
	}

	tests := []struct {
		name     string
		answers  shared.Answers
		fields   []Field
		expected shared.Answers
	}{
		{
			name:     "Should return empty map for no answers",
			answers:  shared.Answers{},
			fields:   fields,
			expected: shared.Answers{},
		},
		{
			name: "Should key answers by field name",
			answers: shared.Answers{
				nameID.String(): shared.String("Ada"),
				ageID.String():  shared.Number(36),
			},
			fields: fields,
			expected: shared.Answers{
				"name": shared.String("Ada"),
				"age":  shared.Number(36),
			},
		},
		{
			name: "Should keep raw key for unknown field",
			answers: shared.Answers{
				nameID.String():    shared.String("Ada"),
				deletedID.String(): shared.Bool(true),
			},
			fields: fields,
			expected: shared.Answers{
				"name":             shared.String("Ada"),
				deletedID.String(): shared.Bool(true),
			},
		},
		{
			name: "Should keep every key when form has no fields",
			answers: shared.Answers{
				nameID.String(): shared.StringArray([]string{"a", "b"}),
			},
			fields: nil,
			expected: shared.Answers{
				nameID.String(): shared.StringArray([]string{"a", "b"}),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Project(tc.answers, tc.fields)
			require.Len(t, got, len(tc.expected))
			for key, want := range tc.expected {
				value, ok := got[key]
				require.True(t, ok, "missing key %s", key)
				require.True(t, want.Equal(value), "value mismatch for %s", key)
			}
		})
	}
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	id := uuid.New()
	answers := shared.Answers{id.String(): shared.String("x")}

	_ = Project(answers, []Field{{ID: id, Name: "q"}})

	_, ok := answers[id.String()]
	require.True(t, ok)
	require.Len(t, answers, 1)
}

func TestProject_NameCollision(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	answers := shared.Answers{
		first.String():  shared.String("first"),
		second.String(): shared.String("second"),
	}
	fields := []Field{{ID: first, Name: "email"}, {ID: second, Name: "email"}}

	for range 20 {
		got := Project(answers, fields)
		require.Len(t, got, 1)
		require.True(t, shared.String("second").Equal(got["email"]))
	}
}

func TestProject_NonCanonicalIDs(t *testing.T) {
	id := uuid.New()
	fields := []Field{{ID: id, Name: "email"}}

	tests := []struct {
		name     string
		answers  shared.Answers
		expected shared.Value
	}{
		{
			name:     "Should match upper-case id",
			answers:  shared.Answers{strings.ToUpper(id.String()): shared.String("x")},
			expected: shared.String("x"),
		},
		{
			name:     "Should match braced id",
			answers:  shared.Answers{"{" + id.String() + "}": shared.String("x")},
			expected: shared.String("x"),
		},
		{
			name: "Should prefer canonical spelling when both are present",
			answers: shared.Answers{
				strings.ToUpper(id.String()): shared.String("upper"),
				id.String():                  shared.String("canonical"),
			},
			expected: shared.String("canonical"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for range 10 {
				got := Project(tc.answers, fields)
				require.Len(t, got, 1)
				require.Contains(t, got, "email")
				require.True(t, tc.expected.Equal(got["email"]))
			}
		})
	}
}

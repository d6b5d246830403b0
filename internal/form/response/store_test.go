package response

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type responseKey struct {
	formID       uuid.UUID
	respondentID uuid.UUID
}

// memStore is an in-memory Querier. Upsert honours the same guard as the SQL
// statement: a submitted row is never overwritten.
type memStore struct {
	forms     map[uuid.UUID]GetFormRow
	responses map[responseKey]FormResponse
	fields    []ListFieldNamesRow
	clock     time.Time

	failOn map[string]error
	// beforeUpsert runs inside Upsert before the guard is evaluated.
	beforeUpsert func(m *memStore, key responseKey)
}

func newMemStore() *memStore {
	return &memStore{
		forms:     map[uuid.UUID]GetFormRow{},
		responses: map[responseKey]FormResponse{},
		clock:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		failOn:    map[string]error{},
	}
}

func (m *memStore) tick() pgtype.Timestamptz {
	m.clock = m.clock.Add(time.Second)
	return pgtype.Timestamptz{Time: m.clock, Valid: true}
}

func (m *memStore) addForm(ownerID uuid.UUID, title string, published bool) uuid.UUID {
	id := uuid.New()
	m.forms[id] = GetFormRow{ID: id, OwnerID: ownerID, Title: title, IsPublished: published}
	return id
}

func (m *memStore) addField(formID uuid.UUID, name string) uuid.UUID {
	id := uuid.New()
	m.fields = append(m.fields, ListFieldNamesRow{ID: id, FormID: formID, FieldName: name})
	return id
}

func (m *memStore) stored(formID, respondentID uuid.UUID) (FormResponse, bool) {
	r, ok := m.responses[responseKey{formID: formID, respondentID: respondentID}]
	return r, ok
}

func (m *memStore) InTx(_ context.Context, fn func(q Querier) error) error {
	responses := maps.Clone(m.responses)

	err := fn(m)
	if err != nil {
		m.responses = responses
	}
	return err
}

func (m *memStore) GetForm(_ context.Context, id uuid.UUID) (GetFormRow, error) {
	if err := m.failOn["GetForm"]; err != nil {
		return GetFormRow{}, err
	}
	f, ok := m.forms[id]
	if !ok {
		return GetFormRow{}, pgx.ErrNoRows
	}
	return f, nil
}

func (m *memStore) GetByFormAndRespondent(_ context.Context, arg GetByFormAndRespondentParams) (FormResponse, error) {
	r, ok := m.responses[responseKey{formID: arg.FormID, respondentID: arg.RespondentID}]
	if !ok {
		return FormResponse{}, pgx.ErrNoRows
	}
	return r, nil
}

func (m *memStore) Upsert(_ context.Context, arg UpsertParams) (FormResponse, error) {
	if err := m.failOn["Upsert"]; err != nil {
		return FormResponse{}, err
	}
	key := responseKey{formID: arg.FormID, respondentID: arg.RespondentID}
	if m.beforeUpsert != nil {
		m.beforeUpsert(m, key)
	}

	now := m.tick()
	existing, ok := m.responses[key]
	if ok && existing.IsSubmitted {
		return FormResponse{}, pgx.ErrNoRows
	}
	if !ok {
		existing = FormResponse{
			ID:           uuid.New(),
			FormID:       arg.FormID,
			RespondentID: arg.RespondentID,
			CreatedAt:    now,
		}
	}

	existing.Answers = slices.Clone(arg.Answers)
	existing.IsSubmitted = arg.IsSubmitted
	existing.SubmittedAt = pgtype.Timestamptz{}
	if arg.IsSubmitted {
		existing.SubmittedAt = now
	}
	existing.UpdatedAt = now
	m.responses[key] = existing
	return existing, nil
}

func (m *memStore) ListSubmittedByFormID(_ context.Context, formID uuid.UUID) ([]FormResponse, error) {
	var result []FormResponse
	for key, r := range m.responses {
		if key.formID == formID && r.IsSubmitted {
			result = append(result, r)
		}
	}
	slices.SortFunc(result, func(a, b FormResponse) int {
		return a.SubmittedAt.Time.Compare(b.SubmittedAt.Time)
	})
	return result, nil
}

func (m *memStore) ListByRespondent(_ context.Context, respondentID uuid.UUID) ([]ListByRespondentRow, error) {
	var result []ListByRespondentRow
	for key, r := range m.responses {
		if key.respondentID != respondentID {
			continue
		}
		result = append(result, ListByRespondentRow{
			ID:           r.ID,
			FormID:       r.FormID,
			RespondentID: r.RespondentID,
			Answers:      r.Answers,
			IsSubmitted:  r.IsSubmitted,
			SubmittedAt:  r.SubmittedAt,
			CreatedAt:    r.CreatedAt,
			UpdatedAt:    r.UpdatedAt,
			FormTitle:    m.forms[r.FormID].Title,
		})
	}
	slices.SortFunc(result, func(a, b ListByRespondentRow) int {
		return b.UpdatedAt.Time.Compare(a.UpdatedAt.Time)
	})
	return result, nil
}

func (m *memStore) ListFieldNames(_ context.Context, formIds []uuid.UUID) ([]ListFieldNamesRow, error) {
	var result []ListFieldNamesRow
	for _, f := range m.fields {
		if slices.Contains(formIds, f.FormID) {
			result = append(result, f)
		}
	}
	return result, nil
}

package field

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type memForm struct {
	ownerID  uuid.UUID
	revision int64
}

// memStore is an in-memory Querier with transaction semantics: InTx restores
// the previous state when the callback fails.
type memStore struct {
	forms  map[uuid.UUID]memForm
	fields map[uuid.UUID]FormField
	clock  time.Time

	// failOn makes the named query return the error.
	failOn map[string]error
	// staleRevision makes every revision check fail, as if another
	// transaction committed first.
	staleRevision bool
}

func newMemStore() *memStore {
	return &memStore{
		forms:  map[uuid.UUID]memForm{},
		fields: map[uuid.UUID]FormField{},
		clock:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		failOn: map[string]error{},
	}
}

func (m *memStore) addForm(ownerID uuid.UUID) uuid.UUID {
	id := uuid.New()
	m.forms[id] = memForm{ownerID: ownerID}
	return id
}

func (m *memStore) tick() pgtype.Timestamptz {
	m.clock = m.clock.Add(time.Second)
	return pgtype.Timestamptz{Time: m.clock, Valid: true}
}

func (m *memStore) InTx(_ context.Context, fn func(q Querier) error) error {
	forms := maps.Clone(m.forms)
	fields := maps.Clone(m.fields)

	err := fn(m)
	if err != nil {
		m.forms = forms
		m.fields = fields
	}
	return err
}

func (m *memStore) GetFormOwnership(_ context.Context, id uuid.UUID) (GetFormOwnershipRow, error) {
	if err := m.failOn["GetFormOwnership"]; err != nil {
		return GetFormOwnershipRow{}, err
	}
	f, ok := m.forms[id]
	if !ok {
		return GetFormOwnershipRow{}, pgx.ErrNoRows
	}
	return GetFormOwnershipRow{ID: id, OwnerID: f.ownerID, FieldRevision: f.revision}, nil
}

func (m *memStore) BumpFieldRevision(_ context.Context, arg BumpFieldRevisionParams) (int64, error) {
	f, ok := m.forms[arg.ID]
	if !ok || m.staleRevision || f.revision != arg.FieldRevision {
		return 0, nil
	}
	f.revision++
	m.forms[arg.ID] = f
	return 1, nil
}

func (m *memStore) ListByFormID(_ context.Context, formID uuid.UUID) ([]FormField, error) {
	if err := m.failOn["ListByFormID"]; err != nil {
		return nil, err
	}
	var result []FormField
	for _, f := range m.fields {
		if f.FormID == formID {
			result = append(result, f)
		}
	}
	slices.SortFunc(result, func(a, b FormField) int {
		return a.CreatedAt.Time.Compare(b.CreatedAt.Time)
	})
	return result, nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (GetByIDRow, error) {
	f, ok := m.fields[id]
	if !ok {
		return GetByIDRow{}, pgx.ErrNoRows
	}
	return GetByIDRow{
		ID:             f.ID,
		FormID:         f.FormID,
		FieldName:      f.FieldName,
		Label:          f.Label,
		FieldValueType: f.FieldValueType,
		FieldType:      f.FieldType,
		Validation:     f.Validation,
		PrevFieldID:    f.PrevFieldID,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
		OwnerID:        m.forms[f.FormID].ownerID,
	}, nil
}

func (m *memStore) ExistsInForm(_ context.Context, arg ExistsInFormParams) (bool, error) {
	f, ok := m.fields[arg.ID]
	return ok && f.FormID == arg.FormID, nil
}

func (m *memStore) ListSuccessors(ctx context.Context, arg ListSuccessorsParams) ([]FormField, error) {
	all, _ := m.ListByFormID(ctx, arg.FormID)
	var result []FormField
	for _, f := range all {
		if f.PrevFieldID == arg.PrevFieldID {
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *memStore) Create(_ context.Context, arg CreateParams) (FormField, error) {
	if err := m.failOn["Create"]; err != nil {
		return FormField{}, err
	}
	now := m.tick()
	f := FormField{
		ID:             uuid.New(),
		FormID:         arg.FormID,
		FieldName:      arg.FieldName,
		Label:          arg.Label,
		FieldValueType: arg.FieldValueType,
		FieldType:      arg.FieldType,
		Validation:     arg.Validation,
		PrevFieldID:    arg.PrevFieldID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	m.fields[f.ID] = f
	return f, nil
}

func (m *memStore) SetPrev(_ context.Context, arg SetPrevParams) error {
	if err := m.failOn["SetPrev"]; err != nil {
		return err
	}
	f, ok := m.fields[arg.ID]
	if !ok {
		return nil
	}
	f.PrevFieldID = arg.PrevFieldID
	f.UpdatedAt = m.tick()
	m.fields[arg.ID] = f
	return nil
}

func (m *memStore) UpdateContent(_ context.Context, arg UpdateContentParams) (FormField, error) {
	f, ok := m.fields[arg.ID]
	if !ok {
		return FormField{}, pgx.ErrNoRows
	}
	if arg.FieldName.Valid {
		f.FieldName = arg.FieldName.String
	}
	if arg.Label.Valid {
		f.Label = arg.Label
	}
	if arg.FieldValueType.Valid {
		f.FieldValueType = arg.FieldValueType.String
	}
	if arg.FieldType.Valid {
		f.FieldType = arg.FieldType.String
	}
	if arg.Validation != nil {
		f.Validation = arg.Validation
	}
	f.UpdatedAt = m.tick()
	m.fields[arg.ID] = f
	return f, nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	if err := m.failOn["Delete"]; err != nil {
		return err
	}
	delete(m.fields, id)
	for fid, f := range m.fields {
		if f.PrevFieldID.Valid && uuid.UUID(f.PrevFieldID.Bytes) == id {
			f.PrevFieldID = pgtype.UUID{Valid: false}
			m.fields[fid] = f
		}
	}
	return nil
}

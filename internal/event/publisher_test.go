package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockConn struct {
	mock.Mock
}

func (m *mockConn) Publish(subject string, data []byte) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func TestNatsPublisher_Publish(t *testing.T) {
	formID := uuid.New()
	actorID := uuid.New()
	e := New(TypeFormPublished, formID, actorID)

	c := &mockConn{}
	c.On("Publish", "forms.form.published", mock.MatchedBy(func(data []byte) bool {
		var decoded Event
		if err := json.Unmarshal(data, &decoded); err != nil {
			return false
		}
		return decoded.FormID == formID && decoded.ActorID == actorID && decoded.Type == TypeFormPublished
	})).Return(nil).Once()

	p := NewNatsPublisher(zap.NewNop(), c)
	require.NoError(t, p.Publish(context.Background(), e))
	c.AssertExpectations(t)
}

func TestNatsPublisher_PublishError(t *testing.T) {
	c := &mockConn{}
	c.On("Publish", mock.Anything, mock.Anything).Return(errors.New("connection closed")).Once()

	p := NewNatsPublisher(zap.NewNop(), c)
	err := p.Publish(context.Background(), New(TypeResponseSubmitted, uuid.New(), uuid.New()))
	require.Error(t, err)
}

func TestNatsPublisher_CancelledContext(t *testing.T) {
	c := &mockConn{}
	p := NewNatsPublisher(zap.NewNop(), c)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, p.Publish(ctx, New(TypeFormUnpublished, uuid.New(), uuid.New())), context.Canceled)
	c.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

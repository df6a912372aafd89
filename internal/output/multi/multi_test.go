package multi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kiriyama-dx/hcpmix/internal/model"
)

// mockSink records calls for test assertions.
type mockSink struct {
	datasets []model.Dataset
	closed   bool
	err      error // if set, Write and Close return this error
}

func (m *mockSink) Write(_ context.Context, ds model.Dataset) error {
	m.datasets = append(m.datasets, ds)
	return m.err
}

func (m *mockSink) Close() error {
	m.closed = true
	return m.err
}

func testDataset() model.Dataset {
	return model.Dataset{{
		HCPID:        "H1",
		ActivityDate: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		YrMo:         "2026-03",
		ID:           "C1",
		Channel:      "CALL",
		Action:       "Attended",
	}}
}

func TestFanOutDeliversToAll(t *testing.T) {
	a, b, c := &mockSink{}, &mockSink{}, &mockSink{}
	m := New(a, b, c)

	require.NoError(t, m.Write(context.Background(), testDataset()))

	for i, s := range []*mockSink{a, b, c} {
		require.Len(t, s.datasets, 1, "sink %d", i)
		require.Equal(t, "C1", s.datasets[0][0].ID, "sink %d", i)
	}
}

func TestErrorDoesNotPreventDelivery(t *testing.T) {
	failing := &mockSink{err: errors.New("disk full")}
	healthy := &mockSink{}
	m := New(failing, healthy)

	err := m.Write(context.Background(), testDataset())
	require.Error(t, err)

	// Healthy sink still received the dataset despite the earlier failure.
	require.Len(t, healthy.datasets, 1)
	require.Len(t, failing.datasets, 1)
}

func TestCloseCallsAllSinks(t *testing.T) {
	a, b := &mockSink{}, &mockSink{}
	m := New(a, b)

	require.NoError(t, m.Close())
	require.True(t, a.closed)
	require.True(t, b.closed)
}

func TestCloseCollectsErrors(t *testing.T) {
	a := &mockSink{err: errors.New("err-a")}
	b := &mockSink{err: errors.New("err-b")}
	m := New(a, b)

	err := m.Close()
	require.Error(t, err)
	require.True(t, a.closed)
	require.True(t, b.closed)
}

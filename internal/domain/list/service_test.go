package list

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/provision-api/internal/persist"
)

// mockRepo is an in-memory Repository that can fail individual steps.
type mockRepo struct {
	nextID    int64
	parents   map[int64]*List
	items     map[int64][]ItemInput
	insertErr error
	deleteErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		nextID:  0,
		parents: make(map[int64]*List),
		items:   make(map[int64][]ItemInput),
	}
}

func (m *mockRepo) List(_ context.Context) ([]List, error) {
	out := make([]List, 0, len(m.parents))
	for id := range m.parents {
		l, _ := m.GetByID(context.Background(), id)
		out = append(out, *l)
	}
	return out, nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*List, error) {
	parent, ok := m.parents[id]
	if !ok {
		return nil, ErrNotFound
	}
	l := &List{ID: id, Name: parent.Name, CreatedAt: parent.CreatedAt}
	for _, in := range m.items[id] {
		l.Items = append(l.Items, Item{
			IngredientID: in.IngredientID,
			Quantity:     in.Quantity,
		})
	}
	return l, nil
}

func (m *mockRepo) CreateParent(_ context.Context, name string) (int64, error) {
	m.nextID++
	m.parents[m.nextID] = &List{ID: m.nextID, Name: name, CreatedAt: time.Now()}
	return m.nextID, nil
}

func (m *mockRepo) InsertItems(_ context.Context, listID int64, items []ItemInput) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.items[listID] = append(m.items[listID], items...)
	return nil
}

func (m *mockRepo) UpdateParent(_ context.Context, id int64, name string) error {
	parent, ok := m.parents[id]
	if !ok {
		return ErrNotFound
	}
	parent.Name = name
	return nil
}

func (m *mockRepo) DeleteItems(_ context.Context, listID int64) error {
	delete(m.items, listID)
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.parents, id)
	delete(m.items, id)
	return nil
}

func input(id int64, q string) ItemInput {
	return ItemInput{IngredientID: id, Quantity: decimal.RequireFromString(q)}
}

func TestCreateListWithItems(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, zap.NewNop())

	created, err := svc.Create(context.Background(), "Weekly produce", []ItemInput{
		input(1, "2"),
		input(2, "3"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Weekly produce", created.Name)
	require.Len(t, created.Items, 2)
}

func TestCreateListEmptyName(t *testing.T) {
	svc := NewService(newMockRepo(), zap.NewNop())

	_, err := svc.Create(context.Background(), "", nil)
	require.ErrorIs(t, err, ErrEmptyName)
}

func TestCreateListInvalidQuantity(t *testing.T) {
	svc := NewService(newMockRepo(), zap.NewNop())

	_, err := svc.Create(context.Background(), "Weekly", []ItemInput{input(1, "0")})

	var invalid *InvalidItemError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, int64(1), invalid.IngredientID)
}

func TestCreateListChildFailureRemovesParent(t *testing.T) {
	repo := newMockRepo()
	repo.insertErr = errors.New("insert blew up")
	svc := NewService(repo, zap.NewNop())

	_, err := svc.Create(context.Background(), "Weekly", []ItemInput{input(1, "2")})
	require.Error(t, err)

	// The compensating delete ran: no parent remains in storage.
	lists, listErr := svc.List(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, lists)
}

func TestCreateListCompensationFailureIsObservable(t *testing.T) {
	repo := newMockRepo()
	repo.insertErr = errors.New("insert blew up")
	repo.deleteErr = errors.New("delete blew up")
	svc := NewService(repo, zap.NewNop())

	_, err := svc.Create(context.Background(), "Weekly", []ItemInput{input(1, "2")})

	var orphan *persist.OrphanedParentError
	require.ErrorAs(t, err, &orphan)
	assert.Equal(t, "list", orphan.Entity)
}

func TestCreateListNoItemsSkipsChildWrite(t *testing.T) {
	repo := newMockRepo()
	repo.insertErr = errors.New("must not be called")
	svc := NewService(repo, zap.NewNop())

	created, err := svc.Create(context.Background(), "Empty", nil)
	require.NoError(t, err)
	assert.Empty(t, created.Items)
}

func TestUpdateListFullReplace(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, zap.NewNop())

	created, err := svc.Create(context.Background(), "Weekly", []ItemInput{
		input(1, "2"),
		input(2, "3"),
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, "Biweekly", []ItemInput{
		input(3, "5"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Biweekly", updated.Name)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, int64(3), updated.Items[0].IngredientID)
}

func TestUpdateMissingList(t *testing.T) {
	svc := NewService(newMockRepo(), zap.NewNop())

	_, err := svc.Update(context.Background(), 99, "Nope", nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteList(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, zap.NewNop())

	created, err := svc.Create(context.Background(), "Weekly", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

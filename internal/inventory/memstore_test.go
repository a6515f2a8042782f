package inventory

import (
	"context"
	"sync"

	"inventory-sales-service/internal/domain"
	"inventory-sales-service/internal/store"
)

// memStore is an in-memory store.TxRunner. Transactions are serialized by a mutex and
// work on a copy of the state that is only published on success, which gives the same
// all-or-nothing behaviour as a database transaction.
type memStore struct {
	mu          sync.Mutex
	products    map[int64]domain.Product
	orders      map[int64]domain.SalesOrder
	nextOrderID int64
}

func newMemStore() *memStore {
	return &memStore{
		products:    map[int64]domain.Product{},
		orders:      map[int64]domain.SalesOrder{},
		nextOrderID: 1,
	}
}

func (m *memStore) addProduct(id int64, name string, quantity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[id] = domain.Product{ID: id, Name: name, Quantity: quantity}
}

// deleteProduct mimics ON DELETE SET NULL on sales_orders.product_id.
func (m *memStore) deleteProduct(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	for oid, o := range m.orders {
		if o.ProductID != nil && *o.ProductID == id {
			o.ProductID = nil
			m.orders[oid] = o
		}
	}
}

func (m *memStore) quantity(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Quantity
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *memStore) order(id int64) (domain.SalesOrder, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	return o, ok
}

func (m *memStore) WithTx(ctx context.Context, fn func(tx store.OrderTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{
		products:    make(map[int64]domain.Product, len(m.products)),
		orders:      make(map[int64]domain.SalesOrder, len(m.orders)),
		nextOrderID: m.nextOrderID,
	}
	for k, v := range m.products {
		tx.products[k] = v
	}
	for k, v := range m.orders {
		tx.orders[k] = v
	}

	if err := fn(tx); err != nil {
		return err
	}

	m.products = tx.products
	m.orders = tx.orders
	m.nextOrderID = tx.nextOrderID
	return nil
}

type memTx struct {
	products    map[int64]domain.Product
	orders      map[int64]domain.SalesOrder
	nextOrderID int64
}

func (t *memTx) GetProductForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	p, ok := t.products[id]
	if !ok {
		return nil, store.ErrProductNotFound
	}
	return &p, nil
}

func (t *memTx) SetProductQuantity(ctx context.Context, id int64, quantity int) error {
	p := t.products[id]
	p.Quantity = quantity
	t.products[id] = p
	return nil
}

func (t *memTx) GetOrderForUpdate(ctx context.Context, id int64) (*domain.SalesOrder, error) {
	o, ok := t.orders[id]
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	return &o, nil
}

func (t *memTx) GetOrder(ctx context.Context, id int64) (*domain.SalesOrder, error) {
	o, err := t.GetOrderForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.ProductID != nil {
		if p, ok := t.products[*o.ProductID]; ok {
			name := p.Name
			o.CurrentProductName = &name
		}
	}
	return o, nil
}

func (t *memTx) SalesIDExists(ctx context.Context, salesID string) (bool, error) {
	for _, o := range t.orders {
		if o.SalesID == salesID {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) InsertOrder(ctx context.Context, order *domain.SalesOrder) (int64, error) {
	if exists, _ := t.SalesIDExists(ctx, order.SalesID); exists {
		return 0, store.ErrSalesIDExists
	}
	o := *order
	o.ID = t.nextOrderID
	t.nextOrderID++
	t.orders[o.ID] = o
	return o.ID, nil
}

func (t *memTx) UpdateOrder(ctx context.Context, order *domain.SalesOrder) error {
	if _, ok := t.orders[order.ID]; !ok {
		return store.ErrOrderNotFound
	}
	t.orders[order.ID] = *order
	return nil
}

func (t *memTx) DeleteOrder(ctx context.Context, id int64) error {
	if _, ok := t.orders[id]; !ok {
		return store.ErrOrderNotFound
	}
	delete(t.orders, id)
	return nil
}

package routes

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fehmi19/cheebo/models"
	"github.com/fehmi19/cheebo/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// table is an in-memory collection. Rows are stored as BSON so callers never
// share slices with the stored copy, like a real round trip.
type table[T any] struct {
	mu    sync.Mutex
	rows  map[primitive.ObjectID][]byte
	order []primitive.ObjectID
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: map[primitive.ObjectID][]byte{}}
}

func (t *table[T]) put(id primitive.ObjectID, v *T) {
	data, err := bson.Marshal(v)
	if err != nil {
		panic(err)
	}
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = data
}

func (t *table[T]) get(id primitive.ObjectID) (*T, bool) {
	data, ok := t.rows[id]
	if !ok {
		return nil, false
	}
	v := new(T)
	if err := bson.Unmarshal(data, v); err != nil {
		panic(err)
	}
	return v, true
}

func (t *table[T]) del(id primitive.ObjectID) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	t.order = slices.DeleteFunc(t.order, func(o primitive.ObjectID) bool { return o == id })
	return true
}

// all returns every row, newest first
func (t *table[T]) all() []T {
	out := make([]T, 0, len(t.order))
	for i := len(t.order) - 1; i >= 0; i-- {
		v, _ := t.get(t.order[i])
		out = append(out, *v)
	}
	return out
}

func pageOf[T any](rows []T, p repository.Page) ([]T, int64) {
	total := int64(len(rows))
	start := min(int(p.Skip()), len(rows))
	end := min(start+p.Limit, len(rows))
	return rows[start:end], total
}

func checkVersion(stored, expected int64) error {
	if stored != expected {
		return repository.ErrVersionConflict
	}
	return nil
}

type fakeUsers struct{ *table[models.User] }

func (f fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.Email = models.NormalizeEmail(u.Email)
	for _, other := range f.all() {
		if other.Email == u.Email {
			return repository.ErrDuplicateKey
		}
	}
	u.ID, u.Version, u.CreatedAt, u.UpdatedAt = primitive.NewObjectID(), 1, time.Now(), time.Now()
	f.put(u.ID, u)
	return nil
}

func (f fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.get(id); ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (f fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = models.NormalizeEmail(email)
	for _, u := range f.all() {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeUsers) List(context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.all(), nil
}

func (f fakeUsers) Update(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.get(u.ID)
	if !ok {
		return repository.ErrNotFound
	}
	if err := checkVersion(stored.Version, u.Version); err != nil {
		return err
	}
	u.Version++
	f.put(u.ID, u)
	return nil
}

func (f fakeUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.del(id) {
		return repository.ErrNotFound
	}
	return nil
}

type fakeProducts struct{ *table[models.Product] }

func (f fakeProducts) Create(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID, p.Version, p.CreatedAt, p.UpdatedAt = primitive.NewObjectID(), 1, time.Now(), time.Now()
	f.put(p.ID, p)
	return nil
}

func (f fakeProducts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.get(id); ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (f fakeProducts) List(_ context.Context, q repository.ProductQuery, page repository.Page) ([]models.Product, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := slices.DeleteFunc(f.all(), func(p models.Product) bool {
		return (q.Category != "" && p.Category != q.Category) ||
			(q.IsAvailable != nil && p.IsAvailable != *q.IsAvailable)
	})
	items, total := pageOf(rows, page)
	return items, total, nil
}

func (f fakeProducts) Search(_ context.Context, text string, limit int) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := slices.DeleteFunc(f.all(), func(p models.Product) bool {
		return !strings.Contains(strings.ToLower(p.Name), strings.ToLower(text))
	})
	return rows[:min(limit, len(rows))], nil
}

func (f fakeProducts) Featured(_ context.Context, limit int) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := slices.DeleteFunc(f.all(), func(p models.Product) bool { return !p.IsFeatured })
	return rows[:min(limit, len(rows))], nil
}

func (f fakeProducts) Update(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.get(p.ID)
	if !ok {
		return repository.ErrNotFound
	}
	if err := checkVersion(stored.Version, p.Version); err != nil {
		return err
	}
	p.Version++
	f.put(p.ID, p)
	return nil
}

func (f fakeProducts) IncrementViews(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.get(id)
	if !ok {
		return repository.ErrNotFound
	}
	p.ViewCount++
	p.Version++
	f.put(id, p)
	return nil
}

func (f fakeProducts) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.del(id) {
		return repository.ErrNotFound
	}
	return nil
}

func (f fakeProducts) Categories(context.Context) ([]repository.CategoryCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int{}
	for _, p := range f.all() {
		if _, seen := counts[p.Category]; !seen {
			counts[p.Category] = 0
		}
		if p.IsAvailable {
			counts[p.Category]++
		}
	}
	out := []repository.CategoryCount{}
	for name, n := range counts {
		out = append(out, repository.CategoryCount{Name: name, Count: n})
	}
	return out, nil
}

func (f fakeProducts) Stats(context.Context) (*repository.ProductStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &repository.ProductStats{TotalProducts: int64(len(f.order))}, nil
}

type fakeOrders struct {
	*table[models.Order]
	seq int
}

func (f *fakeOrders) Create(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	o.ID, o.Version, o.CreatedAt, o.UpdatedAt = primitive.NewObjectID(), 1, time.Now(), time.Now()
	o.OrderNumber = fmt.Sprintf("CHB-%09d", f.seq)
	f.put(o.ID, o)
	return nil
}

func (f *fakeOrders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.get(id); ok {
		return o, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOrders) List(context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.all(), nil
}

func (f *fakeOrders) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.DeleteFunc(f.all(), func(o models.Order) bool { return o.User != userID }), nil
}

func (f *fakeOrders) Update(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.get(o.ID)
	if !ok {
		return repository.ErrNotFound
	}
	if err := checkVersion(stored.Version, o.Version); err != nil {
		return err
	}
	o.Version++
	f.put(o.ID, o)
	return nil
}

func (f *fakeOrders) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.del(id) {
		return repository.ErrNotFound
	}
	return nil
}

func (f *fakeOrders) Stats(context.Context) (*repository.OrderStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &repository.OrderStats{}
	for _, o := range f.all() {
		stats.TotalOrders++
		switch o.Status {
		case models.OrderPending:
			stats.PendingOrders++
		case models.OrderDelivered:
			stats.DeliveredOrders++
			stats.TotalRevenue += o.TotalAmount
		case models.OrderCancelled:
			stats.CancelledOrders++
		}
	}
	return stats, nil
}

type fakePets struct{ *table[models.Pet] }

func (f fakePets) Create(_ context.Context, p *models.Pet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID, p.Version, p.CreatedAt, p.UpdatedAt = primitive.NewObjectID(), 1, time.Now(), time.Now()
	f.put(p.ID, p)
	return nil
}

func (f fakePets) FindByID(_ context.Context, id primitive.ObjectID) (*models.Pet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.get(id); ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (f fakePets) List(_ context.Context, q repository.PetQuery, page repository.Page) ([]models.Pet, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status := q.Status
	if status == "" {
		status = models.PetAvailable
	}
	rows := slices.DeleteFunc(f.all(), func(p models.Pet) bool {
		return p.Status != status || (q.Species != "" && q.Species != "tous" && p.Species != q.Species)
	})
	items, total := pageOf(rows, page)
	return items, total, nil
}

func (f fakePets) ListByOwner(_ context.Context, owner primitive.ObjectID) ([]models.Pet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.DeleteFunc(f.all(), func(p models.Pet) bool { return p.Owner != owner }), nil
}

func (f fakePets) Update(_ context.Context, p *models.Pet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.get(p.ID)
	if !ok {
		return repository.ErrNotFound
	}
	if err := checkVersion(stored.Version, p.Version); err != nil {
		return err
	}
	p.Version, p.UpdatedAt = p.Version+1, time.Now()
	f.put(p.ID, p)
	return nil
}

func (f fakePets) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.del(id) {
		return repository.ErrNotFound
	}
	return nil
}

type fakeVets struct{ *table[models.Vet] }

func (f fakeVets) Create(_ context.Context, v *models.Vet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.all() {
		if other.Email == v.Email || other.LicenseNumber == v.LicenseNumber {
			return repository.ErrDuplicateKey
		}
	}
	v.ID, v.Version, v.CreatedAt, v.UpdatedAt = primitive.NewObjectID(), 1, time.Now(), time.Now()
	f.put(v.ID, v)
	return nil
}

func (f fakeVets) FindByID(_ context.Context, id primitive.ObjectID) (*models.Vet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.get(id); ok {
		return v, nil
	}
	return nil, repository.ErrNotFound
}

func (f fakeVets) List(_ context.Context, _ repository.VetQuery, page repository.Page) ([]models.Vet, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items, total := pageOf(f.all(), page)
	return items, total, nil
}

func (f fakeVets) Update(_ context.Context, v *models.Vet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.get(v.ID)
	if !ok {
		return repository.ErrNotFound
	}
	if err := checkVersion(stored.Version, v.Version); err != nil {
		return err
	}
	v.Version, v.UpdatedAt = v.Version+1, time.Now()
	f.put(v.ID, v)
	return nil
}

type fakePosts struct{ *table[models.Post] }

func (f fakePosts) Create(_ context.Context, p *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID, p.Version, p.CreatedAt, p.UpdatedAt = primitive.NewObjectID(), 1, time.Now(), time.Now()
	f.put(p.ID, p)
	return nil
}

func (f fakePosts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.get(id); ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (f fakePosts) List(_ context.Context, _ repository.PostQuery, page repository.Page) ([]models.Post, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items, total := pageOf(f.all(), page)
	return items, total, nil
}

func (f fakePosts) Update(_ context.Context, p *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.get(p.ID)
	if !ok {
		return repository.ErrNotFound
	}
	if err := checkVersion(stored.Version, p.Version); err != nil {
		return err
	}
	p.Version++
	f.put(p.ID, p)
	return nil
}

func (f fakePosts) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.del(id) {
		return repository.ErrNotFound
	}
	return nil
}

type fakeTasks struct{ *table[models.Task] }

func (f fakeTasks) Create(_ context.Context, t *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID, t.Version, t.CreatedAt, t.UpdatedAt = primitive.NewObjectID(), 1, time.Now(), time.Now()
	f.put(t.ID, t)
	return nil
}

func (f fakeTasks) FindOwned(_ context.Context, id, owner primitive.ObjectID) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.get(id); ok && t.Owner == owner {
		return t, nil
	}
	return nil, repository.ErrNotFound
}

func (f fakeTasks) List(_ context.Context, q repository.TaskQuery, page repository.Page) ([]models.Task, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := slices.DeleteFunc(f.all(), func(t models.Task) bool { return t.Owner != q.Owner })
	items, total := pageOf(rows, page)
	return items, total, nil
}

func (f fakeTasks) Update(_ context.Context, t *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.get(t.ID)
	if !ok || stored.Owner != t.Owner {
		return repository.ErrNotFound
	}
	if err := checkVersion(stored.Version, t.Version); err != nil {
		return err
	}
	t.Version, t.UpdatedAt = t.Version+1, time.Now()
	f.put(t.ID, t)
	return nil
}

func (f fakeTasks) Delete(_ context.Context, id, owner primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.get(id); !ok || t.Owner != owner {
		return repository.ErrNotFound
	}
	f.del(id)
	return nil
}

// sentMail records what the controllers asked to send
type sentMail struct {
	kind, to string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) record(kind, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: kind, to: to})
	return nil
}

func (m *fakeMailer) SendWelcomeEmail(user models.User) error {
	return m.record("welcome", user.Email)
}

func (m *fakeMailer) SendOrderConfirmationEmail(toEmail string, _ models.Order) error {
	return m.record("confirmation", toEmail)
}

func (m *fakeMailer) SendOrderStatusEmail(toEmail, _ string, _ models.Order) error {
	return m.record("status", toEmail)
}

func (m *fakeMailer) kinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, s := range m.sent {
		out = append(out, s.kind)
	}
	return out
}

package cart

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/angelmondragon/smartsales/pkg/config"
	"github.com/angelmondragon/smartsales/pkg/db"
	"github.com/angelmondragon/smartsales/pkg/migrate"
	redisclient "github.com/angelmondragon/smartsales/pkg/redis"
)

func sampleCart() Cart {
	return Cart{Lines: []Line{
		{Product: product(11, "19.99"), Quantity: 3},
		{Product: product(12, "0.50"), Quantity: 1},
	}}
}

func assertSameCart(t *testing.T, want, got Cart) {
	t.Helper()
	require.Len(t, got.Lines, len(want.Lines))
	for i := range want.Lines {
		assert.Equal(t, want.Lines[i].Product.ID, got.Lines[i].Product.ID)
		assert.Equal(t, want.Lines[i].Quantity, got.Lines[i].Quantity)
		assert.True(t, want.Lines[i].Product.Price.Equal(got.Lines[i].Product.Price.Decimal),
			"price %s != %s", want.Lines[i].Product.Price, got.Lines[i].Product.Price)
	}
	assert.True(t, want.TotalPrice().Equal(got.TotalPrice()))
}

func TestMemoryPersisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()

	empty, err := p.Load(ctx, "missing")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	want := sampleCart()
	require.NoError(t, p.Save(ctx, "k", want))
	got, err := p.Load(ctx, "k")
	require.NoError(t, err)
	assertSameCart(t, want, got)

	require.NoError(t, p.Delete(ctx, "k"))
	got, err = p.Load(ctx, "k")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestDecodeSnapshotNormalizesLines(t *testing.T) {
	raw := []byte(`{"lines":[
		{"product":{"id":1,"precio":"2.00"},"quantity":2},
		{"product":{"id":1,"precio":"2.00"},"quantity":5},
		{"product":{"id":2,"precio":3},"quantity":0}
	]}`)
	got, err := decodeSnapshot(raw)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, 2, got.Lines[0].Quantity)
	assert.True(t, got.TotalPrice().Equal(decimal.RequireFromString("4")))
}

func TestDecodeSnapshotRejectsGarbage(t *testing.T) {
	_, err := decodeSnapshot([]byte("not json"))
	assert.Error(t, err)
}

func newRedisPersister(t *testing.T, ttl time.Duration) (*RedisPersister, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redisclient.New(context.Background(), config.RedisConfig{Address: mr.Addr()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	p, err := NewRedisPersister(client, ttl)
	require.NoError(t, err)
	return p, mr
}

func TestRedisPersisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, mr := newRedisPersister(t, time.Hour)

	empty, err := p.Load(ctx, "visitor")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	want := sampleCart()
	require.NoError(t, p.Save(ctx, "visitor", want))
	assert.True(t, mr.Exists("ss:cart:visitor"))

	got, err := p.Load(ctx, "visitor")
	require.NoError(t, err)
	assertSameCart(t, want, got)

	require.NoError(t, p.Delete(ctx, "visitor"))
	assert.False(t, mr.Exists("ss:cart:visitor"))
}

func TestRedisPersisterSlidesTTL(t *testing.T) {
	ctx := context.Background()
	p, mr := newRedisPersister(t, time.Hour)

	require.NoError(t, p.Save(ctx, "visitor", sampleCart()))
	mr.FastForward(50 * time.Minute)

	_, err := p.Load(ctx, "visitor")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL("ss:cart:visitor"))

	mr.FastForward(50 * time.Minute)
	got, err := p.Load(ctx, "visitor")
	require.NoError(t, err)
	assert.False(t, got.IsEmpty(), "cart read within the ttl should survive")

	mr.FastForward(2 * time.Hour)
	got, err = p.Load(ctx, "visitor")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty(), "idle cart should expire")
}

func newDBPersister(t *testing.T, ttl time.Duration) *DBPersister {
	t.Helper()
	client, err := db.NewFromDialector(sqlite.Open(filepath.Join(t.TempDir(), "cart.db")), db.DialectSQLite)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.DB().DB()
	require.NoError(t, err)
	require.NoError(t, migrate.Run(context.Background(), sqlDB, client.Dialect(), "up"))

	p, err := NewDBPersister(client.DB(), ttl)
	require.NoError(t, err)
	return p
}

func TestDBPersisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newDBPersister(t, time.Hour)

	empty, err := p.Load(ctx, "visitor")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	want := sampleCart()
	require.NoError(t, p.Save(ctx, "visitor", want))
	got, err := p.Load(ctx, "visitor")
	require.NoError(t, err)
	assertSameCart(t, want, got)

	want.Lines = want.Lines[:1]
	require.NoError(t, p.Save(ctx, "visitor", want))
	got, err = p.Load(ctx, "visitor")
	require.NoError(t, err)
	assertSameCart(t, want, got)

	var row cartSnapshot
	require.NoError(t, p.db.Where("cart_id = ?", "visitor").First(&row).Error)
	assert.Equal(t, 3, row.ItemCount)

	require.NoError(t, p.Delete(ctx, "visitor"))
	got, err = p.Load(ctx, "visitor")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestDBPersisterExpiry(t *testing.T) {
	ctx := context.Background()
	p := newDBPersister(t, time.Hour)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	require.NoError(t, p.Save(ctx, "stale", sampleCart()))
	require.NoError(t, p.Save(ctx, "fresh", sampleCart()))

	now = now.Add(2 * time.Hour)
	require.NoError(t, p.Save(ctx, "fresh", sampleCart()))

	got, err := p.Load(ctx, "stale")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty(), "expired snapshot should load empty")

	purged, err := p.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	got, err = p.Load(ctx, "fresh")
	require.NoError(t, err)
	assert.False(t, got.IsEmpty())
}

func TestStoreOverDBPersister(t *testing.T) {
	ctx := context.Background()
	p := newDBPersister(t, 0)
	store := openStore(t, p)

	require.NoError(t, store.AddToCart(ctx, product(1, "19.99")))
	require.NoError(t, store.AddToCart(ctx, product(1, "19.99")))
	require.NoError(t, store.AddToCart(ctx, product(1, "19.99")))

	reopened := openStore(t, p)
	assert.Equal(t, 3, reopened.TotalItems())
	assert.True(t, reopened.TotalPrice().Equal(decimal.RequireFromString("59.97")))

	require.NoError(t, reopened.ClearCart(ctx))
	assert.Equal(t, 0, openStore(t, p).TotalItems())
}

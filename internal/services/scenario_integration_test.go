package services

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"itlager_backend/internal/models"
	"itlager_backend/internal/repositories"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to a dedicated test database, applies the schema and
// wipes all tables. Set TEST_DATABASE_URL in your .env or environment to run
// these tests; without it they are skipped so the live database stays safe.
func setupTestDB(t *testing.T) *sql.DB {
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)
	require.NoError(t, db.Ping())
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "db_schema.sql"))
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	_, err = db.Exec(`TRUNCATE TABLE inventory_items, inventories, serial_numbers,
		mobilfunk_items, order_items, orders, stock_movements, articles
		RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return db
}

// testStack wires the full service graph against the test database, the same
// way the router does for the real one.
type testStack struct {
	db            *sql.DB
	articleRepo   repositories.ArticleRepository
	inventoryRepo repositories.InventoryRepository
	articles      ArticleService
	stock         StockService
	serials       SerialService
	orders        OrderService
	fulfillment   FulfillmentService
	inventories   InventoryService
}

func newTestStack(t *testing.T) *testStack {
	db := setupTestDB(t)
	articleRepo := repositories.NewArticleRepository(db)
	movementRepo := repositories.NewStockMovementRepository(db)
	serialRepo := repositories.NewSerialNumberRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	inventoryRepo := repositories.NewInventoryRepository(db)

	stock := NewStockService(articleRepo, movementRepo, db)
	serials := NewSerialService(serialRepo, articleRepo, stock, db)
	return &testStack{
		db:            db,
		articleRepo:   articleRepo,
		inventoryRepo: inventoryRepo,
		articles:      NewArticleService(articleRepo, stock, serials, db),
		stock:         stock,
		serials:       serials,
		orders:        NewOrderService(orderRepo, db),
		fulfillment:   NewFulfillmentService(orderRepo, articleRepo, serialRepo, serials, stock, db),
		inventories:   NewInventoryService(inventoryRepo, articleRepo, stock, db),
	}
}

func (ts *testStack) createArticle(t *testing.T, sku string, serialized bool, stock int) *models.Article {
	article, err := ts.articles.CreateArticle(CreateArticleRequest{
		SKU: sku, Name: "Test " + sku, Unit: "Stk", IsSerialized: serialized,
	})
	require.NoError(t, err)
	if stock > 0 {
		_, article, err = ts.stock.CreateMovement(CreateMovementRequest{
			ArticleID: article.ID, Kind: models.MovementIn, Quantity: stock,
			Reason: "Initial stock", Actor: "mmeyer",
		})
		require.NoError(t, err)
	}
	return article
}

func TestOutMovementNeverOverdrawsStock(t *testing.T) {
	ts := newTestStack(t)
	article := ts.createArticle(t, "NB-5010", false, 5)

	_, _, err := ts.stock.CreateMovement(CreateMovementRequest{
		ArticleID: article.ID, Kind: models.MovementOut, Quantity: 6,
		Reason: "Over-draw attempt", Actor: "tmueller",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// The failed attempt must leave both the counter and the ledger alone.
	unchanged, err := ts.articles.GetArticleByID(article.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, unchanged.CurrentStock)
	movements, total, err := ts.stock.GetMovements(models.MovementFilters{ArticleID: &article.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, movements, 1)
	assert.Equal(t, models.MovementIn, movements[0].Kind)

	// Draining to exactly zero is fine.
	_, drained, err := ts.stock.CreateMovement(CreateMovementRequest{
		ArticleID: article.ID, Kind: models.MovementOut, Quantity: 5,
		Reason: "Full issue", Actor: "tmueller",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, drained.CurrentStock)
}

func TestInventoryCountCorrectsStockToCountedValue(t *testing.T) {
	ts := newTestStack(t)
	article := ts.createArticle(t, "KB-2200", false, 10)

	session, err := ts.inventories.StartInventory(StartInventoryRequest{Name: "Jahresinventur", StartedBy: "mmeyer"})
	require.NoError(t, err)
	require.Len(t, session.Items, 1)
	item := session.Items[0]
	assert.Equal(t, 10, item.ExpectedQty)

	checked, err := ts.inventories.CheckItem(item.ID, CheckInventoryItemRequest{CountedQty: 8, CheckedBy: "tmueller"})
	require.NoError(t, err)
	require.NotNil(t, checked.Difference)
	assert.Equal(t, -2, *checked.Difference)

	// A second count of the same line is rejected.
	_, err = ts.inventories.CheckItem(item.ID, CheckInventoryItemRequest{CountedQty: 9, CheckedBy: "tmueller"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPreconditionNotMet)

	completed, err := ts.inventories.ApplyCorrections(session.ID, "mmeyer")
	require.NoError(t, err)
	assert.Equal(t, models.InventoryCompleted, completed.Status)

	corrected, err := ts.articles.GetArticleByID(article.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, corrected.CurrentStock)

	// The correction lands in the ledger as an absolute adjustment with the
	// signed delta preserved.
	movements, _, err := ts.stock.GetMovements(models.MovementFilters{ArticleID: &article.ID})
	require.NoError(t, err)
	require.NotEmpty(t, movements)
	latest := movements[0]
	assert.Equal(t, models.MovementAdjustment, latest.Kind)
	assert.Equal(t, -2, latest.QuantityChanged)
	require.NotNil(t, latest.AbsoluteQuantity)
	assert.Equal(t, 8, *latest.AbsoluteQuantity)
}

func TestSerialCanOnlyBeReservedOnce(t *testing.T) {
	ts := newTestStack(t)
	article := ts.createArticle(t, "HS-7001", true, 0)

	created, _, err := ts.serials.Receive(ReceiveSerialsRequest{
		ArticleID: article.ID, Serials: []string{"SN-AA-0001"}, Actor: "wagner",
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	order, err := ts.orders.CreateOrder(CreateOrderRequest{
		OrderedBy: "hr-team", Recipient: "K. Brandt", DeliveryMethod: models.DeliveryPickup,
		Items: []CreateOrderLineRequest{
			{ArticleID: &article.ID, Quantity: 1},
			{ArticleID: &article.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 2)

	reserved, err := ts.serials.ReserveForPick(created[0].ID, order.Items[0].ID, "tmueller")
	require.NoError(t, err)
	assert.Equal(t, models.SerialReserved, reserved.Status)
	require.NotNil(t, reserved.OrderItemID)
	assert.Equal(t, order.Items[0].ID, *reserved.OrderItemID)

	// Rebinding without a release is refused, whichever item asks.
	_, err = ts.serials.ReserveForPick(created[0].ID, order.Items[1].ID, "tmueller")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerialNumberUnavailable)
}

func TestFreeTextLineResolvesIntoNormalFulfillment(t *testing.T) {
	ts := newTestStack(t)
	article := ts.createArticle(t, "DK-3300", false, 3)
	freeText := "USB-C Dockingstation, 2x HDMI"

	order, err := ts.orders.CreateOrder(CreateOrderRequest{
		OrderedBy: "it-support", Recipient: "J. Krause", DeliveryMethod: models.DeliveryPickup,
		Items: []CreateOrderLineRequest{{FreeText: &freeText, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	itemID := order.Items[0].ID
	assert.Equal(t, AvailabilityNone, order.Availability)

	// Unresolved lines cannot be picked.
	_, _, err = ts.fulfillment.PickItem(itemID, PickItemRequest{Quantity: 1, Technician: "tmueller"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPreconditionNotMet)

	resolved, err := ts.fulfillment.ResolveItem(itemID, ResolveItemRequest{ArticleID: article.ID, Actor: "mmeyer"})
	require.NoError(t, err)
	assert.Equal(t, models.LineKindArticle, resolved.Line.Kind)
	require.NotNil(t, resolved.Line.ArticleID)
	assert.Equal(t, article.ID, *resolved.Line.ArticleID)
	assert.Nil(t, resolved.Line.FreeText)

	// Resolving twice is refused.
	_, err = ts.fulfillment.ResolveItem(itemID, ResolveItemRequest{ArticleID: article.ID, Actor: "mmeyer"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPreconditionNotMet)

	// From here on the line behaves like any catalog line.
	picked, _, err := ts.fulfillment.PickItem(itemID, PickItemRequest{Quantity: 1, Technician: "tmueller"})
	require.NoError(t, err)
	assert.Equal(t, 1, picked.PickedQty)

	done, err := ts.fulfillment.FinishTechWork(order.ID, FinishTechWorkRequest{Technician: "tmueller"})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.DerivedStatus)
	assert.NotNil(t, done.ShippedAt)
}

func TestSecondInventoryStartIsBlocked(t *testing.T) {
	ts := newTestStack(t)
	ts.createArticle(t, "MS-1100", false, 2)

	_, err := ts.inventories.StartInventory(StartInventoryRequest{Name: "Q3-Zaehlung", StartedBy: "mmeyer"})
	require.NoError(t, err)

	// The read check catches the ordinary case.
	_, err = ts.inventories.StartInventory(StartInventoryRequest{Name: "Parallel", StartedBy: "wagner"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPreconditionNotMet)

	// A concurrent start that slips past the read check runs into the
	// partial unique index and must come back as a duplicate, not as a
	// storage fault.
	_, err = ts.inventoryRepo.CreateInventory(ts.db, &models.Inventory{
		Name: "Racer", Status: models.InventoryInProgress, StartedBy: "wagner",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, repositories.ErrDuplicateKey)
}

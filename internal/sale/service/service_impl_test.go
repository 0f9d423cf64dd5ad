package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/storeops/salescore/internal/catalog/domain"
	catalogrepo "github.com/storeops/salescore/internal/catalog/repository"
	catalogservice "github.com/storeops/salescore/internal/catalog/service"
	"github.com/storeops/salescore/internal/clock"
	"github.com/storeops/salescore/internal/config"
	customerdomain "github.com/storeops/salescore/internal/customer/domain"
	customerrepo "github.com/storeops/salescore/internal/customer/repository"
	customerservice "github.com/storeops/salescore/internal/customer/service"
	employeedomain "github.com/storeops/salescore/internal/employee/domain"
	employeerepo "github.com/storeops/salescore/internal/employee/repository"
	employeeservice "github.com/storeops/salescore/internal/employee/service"
	"github.com/storeops/salescore/internal/notification"
	"github.com/storeops/salescore/internal/observability/metrics"
	saledomain "github.com/storeops/salescore/internal/sale/domain"
	salerepo "github.com/storeops/salescore/internal/sale/repository"
	seqdomain "github.com/storeops/salescore/internal/sequence/domain"
	seqservice "github.com/storeops/salescore/internal/sequence/service"
	storedomain "github.com/storeops/salescore/internal/store/domain"
	storerepo "github.com/storeops/salescore/internal/store/repository"
	storeservice "github.com/storeops/salescore/internal/store/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc     saledomain.Service
	catalog catalogdomain.Service
	conn    *gorm.DB
	clock   *clock.FakeClock

	customerID string
	storeID    string
	employeeID string
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func setupSale(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(
		&catalogdomain.Product{},
		&catalogdomain.StockMovement{},
		&customerdomain.Customer{},
		&storedomain.Store{},
		&employeedomain.Employee{},
		&saledomain.Sale{},
		&saledomain.SaleLine{},
		&seqdomain.Counter{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node := mustNode(t)
	log := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))

	catalogSvc := catalogservice.New(catalogservice.Params{
		DB:    conn,
		Log:   log,
		GenID: node,
		Clock: fake,
		Repo:  catalogrepo.Provide(),
	})
	customerSvc := customerservice.New(customerservice.Params{
		DB:    conn,
		Log:   log,
		GenID: node,
		Repo:  customerrepo.Provide(),
	})
	storeSvc := storeservice.New(storeservice.Params{
		DB:    conn,
		Log:   log,
		GenID: node,
		Repo:  storerepo.Provide(),
	})
	employeeSvc := employeeservice.New(employeeservice.Params{
		DB:     conn,
		Log:    log,
		GenID:  node,
		Repo:   employeerepo.Provide(),
		Stores: storeSvc,
	})

	saleSvc := New(Params{
		DB:        conn,
		Log:       log,
		GenID:     node,
		Clock:     fake,
		Cfg:       config.Config{SaleNumberPrefix: "SL"},
		Repo:      salerepo.Provide(),
		Ledger:    catalogservice.NewLedger(catalogSvc),
		Products:  catalogrepo.Provide(),
		Sequence:  seqservice.New(seqservice.Params{Log: log}),
		Customers: customerSvc,
		Stores:    storeSvc,
		Employees: employeeSvc,
		Notifier:  notification.NewNoopPublisher(),
		Metrics:   metrics.New(metrics.NewRegistry()),
	})

	customer, err := customerSvc.Create(ctx, customerdomain.CreateCustomerRequest{Name: "Ada Ortiz"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	store, err := storeSvc.Create(ctx, storedomain.CreateStoreRequest{Code: "MAIN", Name: "Main Store"})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	employee, err := employeeSvc.Create(ctx, employeedomain.CreateEmployeeRequest{
		StoreID: store.ID.String(),
		Name:    "Sam Reyes",
	})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}

	return &fixture{
		svc:        saleSvc,
		catalog:    catalogSvc,
		conn:       conn,
		clock:      fake,
		customerID: customer.ID.String(),
		storeID:    store.ID.String(),
		employeeID: employee.ID.String(),
	}
}

func (f *fixture) product(t *testing.T, sku string, price, qty int64) catalogdomain.Product {
	t.Helper()
	product, err := f.catalog.Create(context.Background(), catalogdomain.CreateProductRequest{
		SKU:             sku,
		Name:            "Product " + sku,
		Price:           price,
		InitialQuantity: qty,
	})
	if err != nil {
		t.Fatalf("create product %s: %v", sku, err)
	}
	return product
}

func (f *fixture) availableQuantity(t *testing.T, id snowflake.ID) int64 {
	t.Helper()
	product, err := f.catalog.GetByID(context.Background(), id.String())
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	return product.AvailableQuantity
}

func (f *fixture) createTwoLineSale(t *testing.T) (saledomain.Sale, catalogdomain.Product, catalogdomain.Product) {
	t.Helper()

	productA := f.product(t, "SKU-A", 100, 10)
	productB := f.product(t, "SKU-B", 50, 5)

	sale, err := f.svc.Create(context.Background(), saledomain.CreateSaleRequest{
		CustomerID:    f.customerID,
		StoreID:       f.storeID,
		EmployeeID:    f.employeeID,
		PaymentMethod: saledomain.PaymentCash,
		Lines: []saledomain.CreateSaleLine{
			{ProductID: productA.ID.String(), Quantity: 3},
			{ProductID: productB.ID.String(), Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	return sale, productA, productB
}

func TestCreateSaleComputesTotalsAndDecrementsStock(t *testing.T) {
	f := setupSale(t)

	sale, productA, productB := f.createTwoLineSale(t)

	if sale.Number != "SL-2026-00001" {
		t.Fatalf("number = %s, want SL-2026-00001", sale.Number)
	}
	if sale.Status != saledomain.SaleStatusPending {
		t.Fatalf("status = %s, want PENDING", sale.Status)
	}
	if sale.SubtotalAmount != 400 || sale.TotalAmount != 400 {
		t.Fatalf("subtotal=%d total=%d, want 400/400", sale.SubtotalAmount, sale.TotalAmount)
	}
	if len(sale.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(sale.Lines))
	}
	if sale.Lines[0].UnitPrice != 100 || sale.Lines[0].LineTotal != 300 {
		t.Fatalf("line A = %+v, want unit 100 total 300", sale.Lines[0])
	}
	if sale.Lines[1].UnitPrice != 50 || sale.Lines[1].LineTotal != 100 {
		t.Fatalf("line B = %+v, want unit 50 total 100", sale.Lines[1])
	}
	if sale.Lines[0].ProductName != "Product SKU-A" {
		t.Fatalf("product name snapshot = %s", sale.Lines[0].ProductName)
	}

	if got := f.availableQuantity(t, productA.ID); got != 7 {
		t.Fatalf("product A stock = %d, want 7", got)
	}
	if got := f.availableQuantity(t, productB.ID); got != 3 {
		t.Fatalf("product B stock = %d, want 3", got)
	}

	var movements int64
	if err := f.conn.Model(&catalogdomain.StockMovement{}).
		Where("sale_id = ? AND movement_type = ?", sale.ID, catalogdomain.MovementTypeSale).
		Count(&movements).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if movements != 2 {
		t.Fatalf("sale movements = %d, want 2", movements)
	}
}

func TestCreateSaleHonorsRequestPricing(t *testing.T) {
	f := setupSale(t)
	product := f.product(t, "SKU-A", 100, 10)

	sale, err := f.svc.Create(context.Background(), saledomain.CreateSaleRequest{
		CustomerID:     f.customerID,
		StoreID:        f.storeID,
		EmployeeID:     f.employeeID,
		PaymentMethod:  saledomain.PaymentCard,
		ShippingCost:   50,
		DiscountAmount: 30,
		Lines: []saledomain.CreateSaleLine{
			{ProductID: product.ID.String(), Quantity: 2, UnitPrice: 80, Discount: 10},
		},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	// line total 2*80-10 = 150; grand total 150+50-30 = 170
	if sale.SubtotalAmount != 150 {
		t.Fatalf("subtotal = %d, want 150", sale.SubtotalAmount)
	}
	if sale.TotalAmount != 170 {
		t.Fatalf("total = %d, want 170", sale.TotalAmount)
	}
}

func TestCreateSalePaidSetsPaymentDate(t *testing.T) {
	f := setupSale(t)
	product := f.product(t, "SKU-A", 100, 10)

	sale, err := f.svc.Create(context.Background(), saledomain.CreateSaleRequest{
		CustomerID:    f.customerID,
		StoreID:       f.storeID,
		EmployeeID:    f.employeeID,
		PaymentMethod: saledomain.PaymentCash,
		Paid:          true,
		Lines: []saledomain.CreateSaleLine{
			{ProductID: product.ID.String(), Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if !sale.Paid || sale.PaymentDate == nil {
		t.Fatalf("paid sale missing payment date: %+v", sale)
	}
	if !sale.PaymentDate.Equal(f.clock.Now()) {
		t.Fatalf("payment date = %v, want %v", sale.PaymentDate, f.clock.Now())
	}
}

func TestCreateSaleInsufficientStockIsAtomic(t *testing.T) {
	f := setupSale(t)
	productC := f.product(t, "SKU-C", 100, 2)

	_, err := f.svc.Create(context.Background(), saledomain.CreateSaleRequest{
		CustomerID:    f.customerID,
		StoreID:       f.storeID,
		EmployeeID:    f.employeeID,
		PaymentMethod: saledomain.PaymentCash,
		Lines: []saledomain.CreateSaleLine{
			{ProductID: productC.ID.String(), Quantity: 5},
		},
	})

	var insufficient *catalogdomain.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if insufficient.Available != 2 || insufficient.Requested != 5 {
		t.Fatalf("got available=%d requested=%d, want 2/5", insufficient.Available, insufficient.Requested)
	}

	if got := f.availableQuantity(t, productC.ID); got != 2 {
		t.Fatalf("stock = %d, want unchanged 2", got)
	}
	var sales int64
	if err := f.conn.Model(&saledomain.Sale{}).Count(&sales).Error; err != nil {
		t.Fatalf("count sales: %v", err)
	}
	if sales != 0 {
		t.Fatalf("persisted sales = %d, want 0", sales)
	}
}

func TestCreateSaleChecksWholeRequestBeforeWriting(t *testing.T) {
	f := setupSale(t)
	productA := f.product(t, "SKU-A", 100, 10)
	productC := f.product(t, "SKU-C", 100, 2)

	// First line is satisfiable; the second is not. Nothing may persist.
	_, err := f.svc.Create(context.Background(), saledomain.CreateSaleRequest{
		CustomerID:    f.customerID,
		StoreID:       f.storeID,
		EmployeeID:    f.employeeID,
		PaymentMethod: saledomain.PaymentCash,
		Lines: []saledomain.CreateSaleLine{
			{ProductID: productA.ID.String(), Quantity: 3},
			{ProductID: productC.ID.String(), Quantity: 5},
		},
	})

	var insufficient *catalogdomain.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if insufficient.ProductID != productC.ID {
		t.Fatalf("failing product = %s, want %s", insufficient.ProductID, productC.ID)
	}
	if got := f.availableQuantity(t, productA.ID); got != 10 {
		t.Fatalf("product A stock = %d, want untouched 10", got)
	}
}

func TestCreateSaleValidation(t *testing.T) {
	f := setupSale(t)
	product := f.product(t, "SKU-A", 100, 10)
	ctx := context.Background()

	base := saledomain.CreateSaleRequest{
		CustomerID:    f.customerID,
		StoreID:       f.storeID,
		EmployeeID:    f.employeeID,
		PaymentMethod: saledomain.PaymentCash,
		Lines: []saledomain.CreateSaleLine{
			{ProductID: product.ID.String(), Quantity: 1},
		},
	}

	noLines := base
	noLines.Lines = nil
	if _, err := f.svc.Create(ctx, noLines); !errors.Is(err, saledomain.ErrEmptyLines) {
		t.Fatalf("no lines: err = %v, want ErrEmptyLines", err)
	}

	badQty := base
	badQty.Lines = []saledomain.CreateSaleLine{{ProductID: product.ID.String(), Quantity: 0}}
	if _, err := f.svc.Create(ctx, badQty); !errors.Is(err, saledomain.ErrInvalidQuantity) {
		t.Fatalf("zero quantity: err = %v, want ErrInvalidQuantity", err)
	}

	badCustomer := base
	// Use a distinct node ID so the generated ID cannot collide with the
	// fixture's customer (same node + millisecond + step yields equal IDs).
	unknownNode, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	badCustomer.CustomerID = unknownNode.Generate().String()
	if _, err := f.svc.Create(ctx, badCustomer); !errors.Is(err, saledomain.ErrCustomerNotFound) {
		t.Fatalf("unknown customer: err = %v, want ErrCustomerNotFound", err)
	}

	badAmount := base
	badAmount.ShippingCost = -1
	if _, err := f.svc.Create(ctx, badAmount); !errors.Is(err, saledomain.ErrInvalidAmount) {
		t.Fatalf("negative shipping: err = %v, want ErrInvalidAmount", err)
	}
}

func TestMarkPaidMovesPendingToPreparing(t *testing.T) {
	f := setupSale(t)
	sale, _, _ := f.createTwoLineSale(t)

	f.clock.Advance(time.Hour)
	paid, err := f.svc.MarkPaid(context.Background(), sale.ID.String())
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.Status != saledomain.SaleStatusPreparing {
		t.Fatalf("status = %s, want PREPARING", paid.Status)
	}
	if !paid.Paid || paid.PaymentDate == nil || !paid.PaymentDate.Equal(f.clock.Now()) {
		t.Fatalf("payment fields = paid=%v date=%v", paid.Paid, paid.PaymentDate)
	}

	// Paying again refreshes the payment date but keeps the status.
	f.clock.Advance(time.Hour)
	again, err := f.svc.MarkPaid(context.Background(), sale.ID.String())
	if err != nil {
		t.Fatalf("mark paid again: %v", err)
	}
	if again.Status != saledomain.SaleStatusPreparing {
		t.Fatalf("status = %s, want PREPARING", again.Status)
	}
	if !again.PaymentDate.Equal(f.clock.Now()) {
		t.Fatalf("payment date not refreshed: %v", again.PaymentDate)
	}
}

func TestMarkPaidRejectsTerminalStates(t *testing.T) {
	f := setupSale(t)
	sale, _, _ := f.createTwoLineSale(t)
	ctx := context.Background()

	if _, err := f.svc.Cancel(ctx, sale.ID.String(), "changed mind"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err := f.svc.MarkPaid(ctx, sale.ID.String())
	var transition *saledomain.InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("err = %v, want InvalidTransitionError", err)
	}
	if transition.From != saledomain.SaleStatusCancelled {
		t.Fatalf("from = %s, want CANCELLED", transition.From)
	}
}

func TestCompleteLifecycle(t *testing.T) {
	f := setupSale(t)
	sale, _, _ := f.createTwoLineSale(t)
	ctx := context.Background()

	// Completing an unpaid sale is rejected.
	_, err := f.svc.Complete(ctx, sale.ID.String())
	var transition *saledomain.InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("complete unpaid: err = %v, want InvalidTransitionError", err)
	}

	if _, err := f.svc.MarkPaid(ctx, sale.ID.String()); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	completed, err := f.svc.Complete(ctx, sale.ID.String())
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != saledomain.SaleStatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", completed.Status)
	}

	// Terminal states admit no further transitions.
	if _, err := f.svc.Complete(ctx, sale.ID.String()); !errors.As(err, &transition) {
		t.Fatalf("complete completed: err = %v, want InvalidTransitionError", err)
	}
	if _, err := f.svc.Cancel(ctx, sale.ID.String(), "too late"); !errors.As(err, &transition) {
		t.Fatalf("cancel completed: err = %v, want InvalidTransitionError", err)
	}
}

func TestCancelRestoresStock(t *testing.T) {
	f := setupSale(t)
	sale, productA, productB := f.createTwoLineSale(t)
	ctx := context.Background()

	f.clock.Advance(30 * time.Minute)
	cancelled, err := f.svc.Cancel(ctx, sale.ID.String(), "customer walked out")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != saledomain.SaleStatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", cancelled.Status)
	}
	if !strings.Contains(cancelled.Notes, "customer walked out") {
		t.Fatalf("notes = %q, want cancellation reason", cancelled.Notes)
	}

	if got := f.availableQuantity(t, productA.ID); got != 10 {
		t.Fatalf("product A stock = %d, want restored 10", got)
	}
	if got := f.availableQuantity(t, productB.ID); got != 5 {
		t.Fatalf("product B stock = %d, want restored 5", got)
	}

	var restitutions int64
	if err := f.conn.Model(&catalogdomain.StockMovement{}).
		Where("sale_id = ? AND movement_type = ?", sale.ID, catalogdomain.MovementTypeRestitution).
		Count(&restitutions).Error; err != nil {
		t.Fatalf("count restitutions: %v", err)
	}
	if restitutions != 2 {
		t.Fatalf("restitution movements = %d, want 2", restitutions)
	}

	// Cancel is one-shot; a second attempt must not restock again.
	var transition *saledomain.InvalidTransitionError
	if _, err := f.svc.Cancel(ctx, sale.ID.String(), "again"); !errors.As(err, &transition) {
		t.Fatalf("double cancel: err = %v, want InvalidTransitionError", err)
	}
	if got := f.availableQuantity(t, productA.ID); got != 10 {
		t.Fatalf("product A stock after double cancel = %d, want 10", got)
	}
}

func TestUpdateIsNarrow(t *testing.T) {
	f := setupSale(t)
	sale, _, _ := f.createTwoLineSale(t)
	ctx := context.Background()

	notes := "gift wrap"
	updated, err := f.svc.Update(ctx, sale.ID.String(), saledomain.UpdateSaleRequest{Notes: &notes})
	if err != nil {
		t.Fatalf("update notes: %v", err)
	}
	if updated.Notes != notes {
		t.Fatalf("notes = %q, want %q", updated.Notes, notes)
	}

	cancelled := saledomain.SaleStatusCancelled
	var transition *saledomain.InvalidTransitionError
	if _, err := f.svc.Update(ctx, sale.ID.String(), saledomain.UpdateSaleRequest{Status: &cancelled}); !errors.As(err, &transition) {
		t.Fatalf("update to CANCELLED: err = %v, want InvalidTransitionError", err)
	}

	completed := saledomain.SaleStatusCompleted
	if _, err := f.svc.Update(ctx, sale.ID.String(), saledomain.UpdateSaleRequest{Status: &completed}); !errors.As(err, &transition) {
		t.Fatalf("update unpaid to COMPLETED: err = %v, want InvalidTransitionError", err)
	}

	bogus := saledomain.SaleStatus("SHIPPED")
	if _, err := f.svc.Update(ctx, sale.ID.String(), saledomain.UpdateSaleRequest{Status: &bogus}); !errors.Is(err, saledomain.ErrInvalidStatus) {
		t.Fatalf("unknown status: err = %v, want ErrInvalidStatus", err)
	}

	if _, err := f.svc.Cancel(ctx, sale.ID.String(), ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.svc.Update(ctx, sale.ID.String(), saledomain.UpdateSaleRequest{Notes: &notes}); !errors.As(err, &transition) {
		t.Fatalf("update terminal: err = %v, want InvalidTransitionError", err)
	}
}

func TestSaleNumbersIncrementAcrossSales(t *testing.T) {
	f := setupSale(t)
	product := f.product(t, "SKU-A", 100, 100)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		sale, err := f.svc.Create(ctx, saledomain.CreateSaleRequest{
			CustomerID:    f.customerID,
			StoreID:       f.storeID,
			EmployeeID:    f.employeeID,
			PaymentMethod: saledomain.PaymentCash,
			Lines: []saledomain.CreateSaleLine{
				{ProductID: product.ID.String(), Quantity: 1},
			},
		})
		if err != nil {
			t.Fatalf("create sale %d: %v", i, err)
		}
		want := fmt.Sprintf("SL-2026-%05d", i)
		if sale.Number != want {
			t.Fatalf("number = %s, want %s", sale.Number, want)
		}
	}
}

func TestGetByNumberAndList(t *testing.T) {
	f := setupSale(t)
	sale, _, _ := f.createTwoLineSale(t)
	ctx := context.Background()

	byNumber, err := f.svc.GetByNumber(ctx, sale.Number)
	if err != nil {
		t.Fatalf("get by number: %v", err)
	}
	if byNumber.ID != sale.ID {
		t.Fatalf("got sale %s, want %s", byNumber.ID, sale.ID)
	}
	if len(byNumber.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(byNumber.Lines))
	}

	if _, err := f.svc.GetByNumber(ctx, "SL-2026-99999"); !errors.Is(err, saledomain.ErrNotFound) {
		t.Fatalf("missing number: err = %v, want ErrNotFound", err)
	}

	listed, err := f.svc.List(ctx, saledomain.ListSaleRequest{
		StoreID: f.storeID,
		Status:  saledomain.SaleStatusPending,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != sale.ID {
		t.Fatalf("list = %d sales, want the created one", len(listed))
	}

	empty, err := f.svc.List(ctx, saledomain.ListSaleRequest{Status: saledomain.SaleStatusCompleted})
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("completed list = %d, want 0", len(empty))
	}
}

func TestCreateConcurrentSalesDoNotOversell(t *testing.T) {
	f := setupSale(t)
	product := f.product(t, "SKU-RACE", 100, 3)

	const workers = 6
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			var lastErr error
			for attempt := 0; attempt < 500; attempt++ {
				_, err := f.svc.Create(context.Background(), saledomain.CreateSaleRequest{
					CustomerID:    f.customerID,
					StoreID:       f.storeID,
					EmployeeID:    f.employeeID,
					PaymentMethod: saledomain.PaymentCash,
					Lines: []saledomain.CreateSaleLine{
						{ProductID: product.ID.String(), Quantity: 1},
					},
				})
				var insufficient *catalogdomain.InsufficientStockError
				if err == nil || errors.As(err, &insufficient) {
					results <- err
					return
				}
				// sqlite rejects overlapping writers; back off and retry
				lastErr = err
				time.Sleep(time.Millisecond)
			}
			results <- fmt.Errorf("create did not settle: %w", lastErr)
		}()
	}

	var created, rejected int
	for i := 0; i < workers; i++ {
		err := <-results
		var insufficient *catalogdomain.InsufficientStockError
		switch {
		case err == nil:
			created++
		case errors.As(err, &insufficient):
			rejected++
		default:
			t.Fatalf("create: %v", err)
		}
	}

	if created != 3 || rejected != 3 {
		t.Fatalf("created=%d rejected=%d, want 3 created and 3 rejected", created, rejected)
	}
	if got := f.availableQuantity(t, product.ID); got != 0 {
		t.Fatalf("stock = %d, want 0", got)
	}

	var count int64
	if err := f.conn.Model(&saledomain.Sale{}).Count(&count).Error; err != nil {
		t.Fatalf("count sales: %v", err)
	}
	if count != 3 {
		t.Fatalf("persisted sales = %d, want 3", count)
	}
}

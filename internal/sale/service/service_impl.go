package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	catalogdomain "github.com/storeops/salescore/internal/catalog/domain"
	"github.com/storeops/salescore/internal/clock"
	"github.com/storeops/salescore/internal/config"
	customerdomain "github.com/storeops/salescore/internal/customer/domain"
	employeedomain "github.com/storeops/salescore/internal/employee/domain"
	"github.com/storeops/salescore/internal/notification"
	"github.com/storeops/salescore/internal/observability/metrics"
	saledomain "github.com/storeops/salescore/internal/sale/domain"
	seqdomain "github.com/storeops/salescore/internal/sequence/domain"
	storedomain "github.com/storeops/salescore/internal/store/domain"
	"github.com/storeops/salescore/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxCreateAttempts bounds the whole-transaction retry on number or stock
// races.
const maxCreateAttempts = 3

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Cfg       config.Config
	Repo      saledomain.Repository
	Ledger    catalogdomain.Ledger
	Products  catalogdomain.Repository
	Sequence  seqdomain.Generator
	Customers customerdomain.Service
	Stores    storedomain.Service
	Employees employeedomain.Service
	Notifier  notification.Publisher
	Metrics   *metrics.Metrics
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	prefix    string
	repo      saledomain.Repository
	ledger    catalogdomain.Ledger
	products  catalogdomain.Repository
	sequence  seqdomain.Generator
	customers customerdomain.Service
	stores    storedomain.Service
	employees employeedomain.Service
	notifier  notification.Publisher
	metrics   *metrics.Metrics
}

func New(p Params) saledomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("sale.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		prefix:    p.Cfg.SaleNumberPrefix,
		repo:      p.Repo,
		ledger:    p.Ledger,
		products:  p.Products,
		sequence:  p.Sequence,
		customers: p.Customers,
		stores:    p.Stores,
		employees: p.Employees,
		notifier:  p.Notifier,
		metrics:   p.Metrics,
	}
}

type createPlan struct {
	customerID snowflake.ID
	storeID    snowflake.ID
	employeeID snowflake.ID
	lines      []plannedLine
}

type plannedLine struct {
	productID snowflake.ID
	quantity  int64
	unitPrice int64
	discount  int64
}

func (s *Service) Create(ctx context.Context, req saledomain.CreateSaleRequest) (saledomain.Sale, error) {
	plan, err := s.validateCreate(ctx, req)
	if err != nil {
		return saledomain.Sale{}, err
	}

	var lastErr error
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		sale, err := s.createOnce(ctx, req, plan)
		if err == nil {
			s.metrics.SalesCreated.Inc()
			s.notify(notification.EventSaleCreated, sale)
			if sale.Paid {
				s.notify(notification.EventSalePaid, sale)
			}
			return sale, nil
		}
		if isConflict(err) {
			s.metrics.SequenceConflicts.Inc()
			s.log.Warn("sale creation conflict, retrying",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		if isInsufficientStock(err) {
			s.metrics.InsufficientStock.Inc()
		}
		return saledomain.Sale{}, err
	}

	return saledomain.Sale{}, fmt.Errorf("%w: %v", saledomain.ErrConflict, lastErr)
}

// validateCreate enforces everything that can be checked before the
// transaction opens: request shape and referenced-entity existence. Stock
// sufficiency is re-checked under row locks inside the transaction.
func (s *Service) validateCreate(ctx context.Context, req saledomain.CreateSaleRequest) (*createPlan, error) {
	customerID, err := parseID(req.CustomerID)
	if err != nil {
		return nil, saledomain.ErrInvalidCustomerID
	}
	storeID, err := parseID(req.StoreID)
	if err != nil {
		return nil, saledomain.ErrInvalidStoreID
	}
	employeeID, err := parseID(req.EmployeeID)
	if err != nil {
		return nil, saledomain.ErrInvalidEmployeeID
	}

	if len(req.Lines) == 0 {
		return nil, saledomain.ErrEmptyLines
	}
	if req.ShippingCost < 0 || req.DiscountAmount < 0 {
		return nil, saledomain.ErrInvalidAmount
	}

	lines := make([]plannedLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		productID, err := parseID(line.ProductID)
		if err != nil {
			return nil, saledomain.ErrInvalidProductID
		}
		if line.Quantity <= 0 {
			return nil, saledomain.ErrInvalidQuantity
		}
		if line.UnitPrice < 0 || line.Discount < 0 {
			return nil, saledomain.ErrInvalidAmount
		}
		lines = append(lines, plannedLine{
			productID: productID,
			quantity:  line.Quantity,
			unitPrice: line.UnitPrice,
			discount:  line.Discount,
		})
	}

	if ok, err := s.customers.Exists(ctx, customerID); err != nil {
		return nil, err
	} else if !ok {
		return nil, saledomain.ErrCustomerNotFound
	}
	if ok, err := s.stores.Exists(ctx, storeID); err != nil {
		return nil, err
	} else if !ok {
		return nil, saledomain.ErrStoreNotFound
	}
	if ok, err := s.employees.Exists(ctx, employeeID); err != nil {
		return nil, err
	} else if !ok {
		return nil, saledomain.ErrEmployeeNotFound
	}

	return &createPlan{
		customerID: customerID,
		storeID:    storeID,
		employeeID: employeeID,
		lines:      lines,
	}, nil
}

// createOnce runs the whole creation inside one transaction: lock every
// referenced product in ascending ID order, verify stock for all lines
// before any write, allocate the number, persist header and lines, then
// decrement the ledger. Any failure rolls the whole unit back.
func (s *Service) createOnce(ctx context.Context, req saledomain.CreateSaleRequest, plan *createPlan) (saledomain.Sale, error) {
	var created saledomain.Sale
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products, err := s.lockProducts(ctx, tx, plan.lines)
		if err != nil {
			return err
		}

		required := make(map[snowflake.ID]int64, len(products))
		for _, line := range plan.lines {
			product := products[line.productID]
			required[line.productID] += line.quantity
			if required[line.productID] > product.AvailableQuantity {
				return &catalogdomain.InsufficientStockError{
					ProductID: product.ID,
					Available: product.AvailableQuantity,
					Requested: required[line.productID],
				}
			}
		}

		now := s.clock.Now()
		number, err := s.sequence.Next(ctx, tx, s.prefix, now)
		if err != nil {
			return err
		}

		saleID := s.genID.Generate()
		saleLines := make([]saledomain.SaleLine, 0, len(plan.lines))
		var subtotal int64
		for _, line := range plan.lines {
			product := products[line.productID]
			unitPrice := line.unitPrice
			if unitPrice == 0 {
				unitPrice = product.Price
			}
			lineTotal := line.quantity*unitPrice - line.discount
			subtotal += lineTotal
			saleLines = append(saleLines, saledomain.SaleLine{
				ID:          s.genID.Generate(),
				SaleID:      saleID,
				ProductID:   line.productID,
				ProductName: product.Name,
				UnitPrice:   unitPrice,
				Quantity:    line.quantity,
				Discount:    line.discount,
				LineTotal:   lineTotal,
				CreatedAt:   now,
			})
		}

		sale := saledomain.Sale{
			ID:              saleID,
			Number:          number,
			Date:            now,
			Status:          saledomain.SaleStatusPending,
			PaymentMethod:   req.PaymentMethod,
			Paid:            req.Paid,
			ShippingAddress: strings.TrimSpace(req.ShippingAddress),
			ShippingCost:    req.ShippingCost,
			SubtotalAmount:  subtotal,
			DiscountAmount:  req.DiscountAmount,
			TotalAmount:     subtotal + req.ShippingCost - req.DiscountAmount,
			Notes:           strings.TrimSpace(req.Notes),
			CustomerID:      plan.customerID,
			StoreID:         plan.storeID,
			EmployeeID:      plan.employeeID,
			Metadata:        datatypes.JSONMap{},
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if req.Paid {
			sale.PaymentDate = &now
		}

		if err := s.repo.InsertSale(ctx, tx, &sale); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return fmt.Errorf("%w: number %s", saledomain.ErrConflict, number)
			}
			return err
		}
		if err := s.repo.InsertLines(ctx, tx, saleLines); err != nil {
			return err
		}

		for _, line := range saleLines {
			if _, err := s.ledger.Decrease(ctx, tx, line.ProductID, &saleID, line.Quantity); err != nil {
				return err
			}
		}

		sale.Lines = saleLines
		created = sale
		return nil
	})
	if err != nil {
		return saledomain.Sale{}, err
	}
	return created, nil
}

// lockProducts takes row locks in ascending product-ID order so concurrent
// multi-line sales cannot deadlock.
func (s *Service) lockProducts(ctx context.Context, tx *gorm.DB, lines []plannedLine) (map[snowflake.ID]*catalogdomain.Product, error) {
	ids := make([]snowflake.ID, 0, len(lines))
	seen := make(map[snowflake.ID]bool, len(lines))
	for _, line := range lines {
		if !seen[line.productID] {
			seen[line.productID] = true
			ids = append(ids, line.productID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	products := make(map[snowflake.ID]*catalogdomain.Product, len(ids))
	for _, id := range ids {
		product, err := s.products.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("product %s: %w", id.String(), catalogdomain.ErrNotFound)
		}
		products[id] = product
	}
	return products, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (saledomain.Sale, error) {
	saleID, err := parseID(id)
	if err != nil {
		return saledomain.Sale{}, saledomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, saleID)
	if err != nil {
		return saledomain.Sale{}, err
	}
	if item == nil {
		return saledomain.Sale{}, saledomain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) GetByNumber(ctx context.Context, number string) (saledomain.Sale, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return saledomain.Sale{}, saledomain.ErrNotFound
	}

	item, err := s.repo.FindByNumber(ctx, s.db, number)
	if err != nil {
		return saledomain.Sale{}, err
	}
	if item == nil {
		return saledomain.Sale{}, saledomain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req saledomain.ListSaleRequest) ([]saledomain.Sale, error) {
	filter := saledomain.ListSaleFilter{
		Status:   req.Status,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
	}
	if trimmed := strings.TrimSpace(req.StoreID); trimmed != "" {
		id, err := parseID(trimmed)
		if err != nil {
			return nil, saledomain.ErrInvalidStoreID
		}
		filter.StoreID = id
	}
	if trimmed := strings.TrimSpace(req.CustomerID); trimmed != "" {
		id, err := parseID(trimmed)
		if err != nil {
			return nil, saledomain.ErrInvalidCustomerID
		}
		filter.CustomerID = id
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, saledomain.ErrInvalidStatus
	}
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) MarkPaid(ctx context.Context, id string) (saledomain.Sale, error) {
	saleID, err := parseID(id)
	if err != nil {
		return saledomain.Sale{}, saledomain.ErrInvalidID
	}

	var updated saledomain.Sale
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := s.repo.FindByIDForUpdate(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return saledomain.ErrNotFound
		}
		switch sale.Status {
		case saledomain.SaleStatusCompleted:
			return &saledomain.InvalidTransitionError{From: sale.Status, Reason: "sale is already completed"}
		case saledomain.SaleStatusCancelled:
			return &saledomain.InvalidTransitionError{From: sale.Status, Reason: "cancelled sales cannot be paid"}
		}

		now := s.clock.Now()
		fields := map[string]any{
			"paid":         true,
			"payment_date": now,
			"updated_at":   now,
		}
		sale.Paid = true
		sale.PaymentDate = &now
		sale.UpdatedAt = now
		if sale.Status == saledomain.SaleStatusPending {
			fields["status"] = saledomain.SaleStatusPreparing
			sale.Status = saledomain.SaleStatusPreparing
		}
		if err := s.repo.UpdateFields(ctx, tx, saleID, fields); err != nil {
			return err
		}

		lines, err := s.repo.FindLines(ctx, tx, saleID)
		if err != nil {
			return err
		}
		sale.Lines = lines
		updated = *sale
		return nil
	})
	if err != nil {
		return saledomain.Sale{}, err
	}

	s.notify(notification.EventSalePaid, updated)
	return updated, nil
}

func (s *Service) Complete(ctx context.Context, id string) (saledomain.Sale, error) {
	saleID, err := parseID(id)
	if err != nil {
		return saledomain.Sale{}, saledomain.ErrInvalidID
	}

	var updated saledomain.Sale
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := s.repo.FindByIDForUpdate(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return saledomain.ErrNotFound
		}
		if !sale.Paid {
			return &saledomain.InvalidTransitionError{From: sale.Status, Reason: "cannot complete unpaid sale"}
		}
		if sale.Status != saledomain.SaleStatusPreparing {
			return &saledomain.InvalidTransitionError{From: sale.Status, Reason: "only Preparing sales can be completed"}
		}

		now := s.clock.Now()
		if err := s.repo.UpdateFields(ctx, tx, saleID, map[string]any{
			"status":     saledomain.SaleStatusCompleted,
			"updated_at": now,
		}); err != nil {
			return err
		}
		sale.Status = saledomain.SaleStatusCompleted
		sale.UpdatedAt = now

		lines, err := s.repo.FindLines(ctx, tx, saleID)
		if err != nil {
			return err
		}
		sale.Lines = lines
		updated = *sale
		return nil
	})
	if err != nil {
		return saledomain.Sale{}, err
	}

	s.metrics.SalesCompleted.Inc()
	return updated, nil
}

// Cancel is the one-time compensating action: every line's quantity goes
// back to its product's ledger in the same transaction that flips the
// status.
func (s *Service) Cancel(ctx context.Context, id string, reason string) (saledomain.Sale, error) {
	saleID, err := parseID(id)
	if err != nil {
		return saledomain.Sale{}, saledomain.ErrInvalidID
	}

	var updated saledomain.Sale
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := s.repo.FindByIDForUpdate(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return saledomain.ErrNotFound
		}
		switch sale.Status {
		case saledomain.SaleStatusCompleted:
			return &saledomain.InvalidTransitionError{From: sale.Status, Reason: "completed sales require a return process"}
		case saledomain.SaleStatusCancelled:
			return &saledomain.InvalidTransitionError{From: sale.Status, Reason: "sale is already cancelled"}
		}

		lines, err := s.repo.FindLines(ctx, tx, saleID)
		if err != nil {
			return err
		}

		// Restitution locks product rows in the same order creation does.
		ordered := make([]saledomain.SaleLine, len(lines))
		copy(ordered, lines)
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })
		for _, line := range ordered {
			if _, err := s.ledger.Increase(ctx, tx, line.ProductID, &saleID, line.Quantity); err != nil {
				return err
			}
		}

		now := s.clock.Now()
		notes := appendCancellationNote(sale.Notes, reason, now)
		if err := s.repo.UpdateFields(ctx, tx, saleID, map[string]any{
			"status":     saledomain.SaleStatusCancelled,
			"notes":      notes,
			"updated_at": now,
		}); err != nil {
			return err
		}

		sale.Status = saledomain.SaleStatusCancelled
		sale.Notes = notes
		sale.UpdatedAt = now
		sale.Lines = lines
		updated = *sale
		return nil
	})
	if err != nil {
		return saledomain.Sale{}, err
	}

	s.metrics.SalesCancelled.Inc()
	return updated, nil
}

func (s *Service) Update(ctx context.Context, id string, req saledomain.UpdateSaleRequest) (saledomain.Sale, error) {
	saleID, err := parseID(id)
	if err != nil {
		return saledomain.Sale{}, saledomain.ErrInvalidID
	}

	var updated saledomain.Sale
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := s.repo.FindByIDForUpdate(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return saledomain.ErrNotFound
		}
		if sale.Status.Terminal() {
			return &saledomain.InvalidTransitionError{From: sale.Status, Reason: "sale is in a terminal state"}
		}

		resultingPaid := sale.Paid
		if req.Paid != nil {
			resultingPaid = *req.Paid
		}
		if req.Status != nil {
			if !req.Status.Valid() {
				return saledomain.ErrInvalidStatus
			}
			if *req.Status == saledomain.SaleStatusCancelled {
				return &saledomain.InvalidTransitionError{From: sale.Status, Reason: "use cancel to cancel a sale"}
			}
			if *req.Status == saledomain.SaleStatusCompleted && !resultingPaid {
				return &saledomain.InvalidTransitionError{From: sale.Status, Reason: "cannot complete unpaid sale"}
			}
		}

		now := s.clock.Now()
		fields := map[string]any{"updated_at": now}
		if req.Status != nil {
			fields["status"] = *req.Status
			sale.Status = *req.Status
		}
		if req.Paid != nil {
			fields["paid"] = *req.Paid
			sale.Paid = *req.Paid
		}
		if req.PaymentDate != nil {
			fields["payment_date"] = *req.PaymentDate
			sale.PaymentDate = req.PaymentDate
		}
		if req.Notes != nil {
			fields["notes"] = *req.Notes
			sale.Notes = *req.Notes
		}
		sale.UpdatedAt = now
		if err := s.repo.UpdateFields(ctx, tx, saleID, fields); err != nil {
			return err
		}

		lines, err := s.repo.FindLines(ctx, tx, saleID)
		if err != nil {
			return err
		}
		sale.Lines = lines
		updated = *sale
		return nil
	})
	if err != nil {
		return saledomain.Sale{}, err
	}
	return updated, nil
}

func (s *Service) notify(eventType string, sale saledomain.Sale) {
	event := notification.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: s.clock.Now(),
		SaleID:     sale.ID.String(),
		SaleNumber: sale.Number,
		StoreID:    sale.StoreID.String(),
		Total:      sale.TotalAmount,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.notifier.Publish(ctx, event); err != nil {
			s.log.Warn("notification publish failed",
				zap.String("type", eventType),
				zap.String("sale_number", sale.Number),
				zap.Error(err),
			)
		}
	}()
}

func appendCancellationNote(notes, reason string, now time.Time) string {
	note := fmt.Sprintf("[%s] cancelled", now.Format(time.RFC3339))
	if trimmed := strings.TrimSpace(reason); trimmed != "" {
		note += ": " + trimmed
	}
	if notes == "" {
		return note
	}
	return notes + "\n" + note
}

func isConflict(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, saledomain.ErrConflict) || errors.Is(err, seqdomain.ErrConflict)
}

func isInsufficientStock(err error) bool {
	var insufficient *catalogdomain.InsufficientStockError
	return errors.As(err, &insufficient)
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, saledomain.ErrInvalidID
	}
	return id, nil
}

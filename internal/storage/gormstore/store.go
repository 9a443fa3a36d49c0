// Package gormstore implements storage.Store on gorm, for deployments that run
// the backend on PostgreSQL.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mmynk/tillpoint/internal/models"
	"github.com/mmynk/tillpoint/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store implements storage.Store with gorm.
type Store struct {
	db *gorm.DB
}

// OpenPostgres connects to the database at dsn (URL or key=value form) and
// migrates the schema.
func OpenPostgres(dsn string, debug bool) (*Store, error) {
	return Open(postgres.Open(NormalizeDSN(dsn)), debug)
}

// Open connects through dialector and migrates the schema.
func Open(dialector gorm.Dialector, debug bool) (*Store, error) {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&userRow{},
		&productRow{},
		&customerRow{},
		&cartSnapshotRow{},
		&heldBillRow{},
		&billNumberRow{},
		&settlementRow{},
		&detailRow{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// NormalizeDSN trims quotes and whitespace and adds sslmode=disable to a
// key=value DSN that lacks it. URL DSNs are returned unchanged.
func NormalizeDSN(raw string) string {
	s := strings.Trim(strings.TrimSpace(raw), "\"'")
	lower := strings.ToLower(s)
	if s == "" || strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return s
	}
	s = strings.Join(strings.Fields(s), " ")
	if strings.Contains(s, "=") && !strings.Contains(strings.ToLower(s), "sslmode=") {
		s += " sslmode=disable"
	}
	return s
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func wrap(err error, what string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, storage.ErrConflict)
	}
	return fmt.Errorf("failed to access %s: %w", what, err)
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.Code = strings.ToLower(strings.TrimSpace(user.Code))
	row := userRow{
		ID:           user.ID,
		Code:         user.Code,
		DisplayName:  user.DisplayName,
		Role:         user.Role,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return wrap(err, "user "+user.Code)
	}
	return nil
}

func (s *Store) GetUserByCode(ctx context.Context, code string) (*models.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("code = ?", strings.ToLower(strings.TrimSpace(code))).First(&row).Error
	if err != nil {
		return nil, wrap(err, "user")
	}
	return row.model(), nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, wrap(err, "user")
	}
	return row.model(), nil
}

func (s *Store) UpsertProduct(ctx context.Context, p models.Product) error {
	row := productRowFrom(p)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	if err != nil {
		return wrap(err, "product "+p.ID)
	}
	return nil
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	var rows []productRow
	if err := s.db.WithContext(ctx).Order("item_code").Find(&rows).Error; err != nil {
		return nil, wrap(err, "products")
	}
	out := make([]models.Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

// FindProduct prefers an exact item-code match over manufacturer or
// alternate-code matches.
func (s *Store) FindProduct(ctx context.Context, code string) (*models.Product, error) {
	code = strings.TrimSpace(code)
	var rows []productRow
	err := s.db.WithContext(ctx).
		Where("item_code = ?", code).
		Or("manufacturer_id <> '' AND manufacturer_id = ?", code).
		Or("(',' || alt_codes || ',') LIKE ?", "%,"+code+",%").
		Order("item_code").
		Find(&rows).Error
	if err != nil {
		return nil, wrap(err, "product "+code)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("product %s: %w", code, storage.ErrNotFound)
	}
	best := rows[0]
	for _, r := range rows {
		if r.ItemCode == code {
			best = r
			break
		}
	}
	p := best.model()
	return &p, nil
}

func (s *Store) UpsertCustomer(ctx context.Context, c models.Customer) error {
	if c.Locked() {
		c.LockFlag = "Y"
	} else {
		c.LockFlag = "N"
	}
	row := customerRow(c)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	if err != nil {
		return wrap(err, "customer "+c.Code)
	}
	return nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var rows []customerRow
	if err := s.db.WithContext(ctx).Order("code").Find(&rows).Error; err != nil {
		return nil, wrap(err, "customers")
	}
	out := make([]models.Customer, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *Store) GetCustomer(ctx context.Context, code string) (*models.Customer, error) {
	var row customerRow
	if err := s.db.WithContext(ctx).First(&row, "code = ?", code).Error; err != nil {
		return nil, wrap(err, "customer "+code)
	}
	c := row.model()
	return &c, nil
}

// SaveCartSnapshot applies the same stale-write rule as the SQLite store:
// replace only for another session, an unsequenced snapshot, or a higher seq.
// Insert and guarded update are one statement so concurrent first pushes of
// a bill cannot both take the insert path.
func (s *Store) SaveCartSnapshot(ctx context.Context, snap models.CartSnapshot) (bool, error) {
	items, err := encodeLines(snap.Items)
	if err != nil {
		return false, fmt.Errorf("failed to encode cart items: %w", err)
	}

	row := cartSnapshotRow{
		BillNo:       snap.BillNo,
		LocationCode: snap.LocationCode,
		SessionID:    snap.SessionID,
		Seq:          snap.Seq,
		Items:        items,
		UpdatedAt:    time.Now().Unix(),
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bill_no"}, {Name: "location_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"session_id", "seq", "items", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{clause.Expr{
			SQL: "excluded.session_id = '' OR cart_snapshots.session_id <> excluded.session_id OR excluded.seq > cart_snapshots.seq",
		}}},
	}).Create(&row)
	if res.Error != nil {
		return false, wrap(res.Error, "cart snapshot")
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) GetCartSnapshot(ctx context.Context, billNo int64, locationCode string) (*models.CartSnapshot, error) {
	var row cartSnapshotRow
	err := s.db.WithContext(ctx).
		First(&row, "bill_no = ? AND location_code = ?", billNo, locationCode).Error
	if err != nil {
		return nil, wrap(err, fmt.Sprintf("cart for bill %d", billNo))
	}
	items, err := decodeLines(row.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cart items: %w", err)
	}
	return &models.CartSnapshot{
		BillNo:       row.BillNo,
		LocationCode: row.LocationCode,
		SessionID:    row.SessionID,
		Seq:          row.Seq,
		Items:        items,
	}, nil
}

func (s *Store) HoldBill(ctx context.Context, bill models.HeldBill) error {
	items, err := encodeLines(bill.Items)
	if err != nil {
		return fmt.Errorf("failed to encode held items: %w", err)
	}
	heldAt := bill.HeldDate
	if heldAt.IsZero() {
		heldAt = time.Now()
	}
	row := heldBillRow{
		BillNo:       bill.BillNo,
		LocationCode: bill.LocationCode,
		CounterCode:  bill.CounterCode,
		CustomerCode: bill.CustomerCode,
		HeldAt:       heldAt.UnixMilli(),
		Items:        items,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	if err != nil {
		return wrap(err, fmt.Sprintf("held bill %d", bill.BillNo))
	}
	return nil
}

func (s *Store) ListHeldBills(ctx context.Context, locationCode string) ([]models.HeldBill, error) {
	var rows []heldBillRow
	err := s.db.WithContext(ctx).
		Select("bill_no", "location_code", "counter_code", "customer_code", "held_at").
		Where("location_code = ?", locationCode).
		Order("held_at DESC").Order("bill_no DESC").
		Find(&rows).Error
	if err != nil {
		return nil, wrap(err, "held bills")
	}
	out := make([]models.HeldBill, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.HeldBill{
			BillNo:       r.BillNo,
			LocationCode: r.LocationCode,
			CounterCode:  r.CounterCode,
			CustomerCode: r.CustomerCode,
			HeldDate:     time.UnixMilli(r.HeldAt).UTC(),
		})
	}
	return out, nil
}

func (s *Store) GetHeldBill(ctx context.Context, billNo int64, locationCode string) (*models.HeldBill, error) {
	var row heldBillRow
	err := s.db.WithContext(ctx).
		First(&row, "bill_no = ? AND location_code = ?", billNo, locationCode).Error
	if err != nil {
		return nil, wrap(err, fmt.Sprintf("held bill %d", billNo))
	}
	items, err := decodeLines(row.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to decode held items: %w", err)
	}
	return &models.HeldBill{
		BillNo:       row.BillNo,
		LocationCode: row.LocationCode,
		CounterCode:  row.CounterCode,
		CustomerCode: row.CustomerCode,
		HeldDate:     time.UnixMilli(row.HeldAt).UTC(),
		Items:        items,
	}, nil
}

func (s *Store) DeleteHeldBill(ctx context.Context, billNo int64, locationCode string) error {
	err := s.db.WithContext(ctx).
		Where("bill_no = ? AND location_code = ?", billNo, locationCode).
		Delete(&heldBillRow{}).Error
	if err != nil {
		return wrap(err, fmt.Sprintf("held bill %d", billNo))
	}
	return nil
}

// nextBillNoAttempts bounds retries when two backends race for the same number.
const nextBillNoAttempts = 3

func (s *Store) NextBillNo(ctx context.Context, alloc storage.BillNoAllocation) (int64, error) {
	var next int64
	var err error
	for attempt := 1; attempt <= nextBillNoAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var last int64
			if err := tx.Model(&billNumberRow{}).Select("COALESCE(MAX(bill_no), 0)").Scan(&last).Error; err != nil {
				return err
			}
			next = last + 1
			return tx.Create(&billNumberRow{
				BillNo:       next,
				Flag:         alloc.Flag,
				CounterCode:  alloc.CounterCode,
				LocationCode: alloc.LocationCode,
				BillDate:     time.Now().Unix(),
			}).Error
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		slog.Debug("Bill number taken, retrying", "bill_no", next, "attempt", attempt)
	}
	if err != nil {
		return 0, wrap(err, "bill number")
	}
	return next, nil
}

func (s *Store) LastBillNo(ctx context.Context) (int64, error) {
	var last int64
	err := s.db.WithContext(ctx).Model(&billNumberRow{}).Select("COALESCE(MAX(bill_no), 0)").Scan(&last).Error
	if err != nil {
		return 0, wrap(err, "bill number")
	}
	return last, nil
}

func (s *Store) MarkBillPaid(ctx context.Context, billNo int64) error {
	now := time.Now().Unix()
	res := s.db.WithContext(ctx).Model(&billNumberRow{}).
		Where("bill_no = ?", billNo).
		Updates(map[string]any{"flag": "y", "paid_at": now})
	if res.Error != nil {
		return wrap(res.Error, fmt.Sprintf("bill %d", billNo))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("bill %d: %w", billNo, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) InsertSettlement(ctx context.Context, st *models.BillSettlement) error {
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	if st.CreatedAt == 0 {
		st.CreatedAt = time.Now().Unix()
	}
	row := settlementRowFrom(st)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if st.PointsUsed <= 0 || st.CustomerCode == "" {
			return nil
		}
		res := tx.Model(&customerRow{}).
			Where("code = ? AND loyalty_points >= ?", st.CustomerCode, st.PointsUsed).
			Update("loyalty_points", gorm.Expr("loyalty_points - ?", st.PointsUsed))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return storage.ErrInsufficientPoints
		}
		return nil
	})
	if errors.Is(err, storage.ErrInsufficientPoints) {
		return fmt.Errorf("customer %s: %w", st.CustomerCode, err)
	}
	if err != nil {
		return wrap(err, fmt.Sprintf("settlement for bill %d", st.BillNo))
	}
	return nil
}

func (s *Store) GetSettlement(ctx context.Context, billNo int64, locationCode string) (*models.BillSettlement, error) {
	var row settlementRow
	err := s.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_no") }).
		First(&row, "bill_no = ? AND location_code = ?", billNo, locationCode).Error
	if err != nil {
		return nil, wrap(err, fmt.Sprintf("settlement for bill %d", billNo))
	}
	return row.model(), nil
}

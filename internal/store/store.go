// Package store provides the GORM-backed persistence layer. A Store is
// constructed once in main and injected into the services; nothing in this
// package keeps package-level state.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/nafioutino/xamxam.io-sub000/internal/model"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the data-access interface consumed by the service layer.
type Store interface {
	// InTx runs fn against a transactional view of the store. The
	// transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(Store) error) error

	// Conversations
	GetConversation(ctx context.Context, id string) (*model.Conversation, error)
	ListConversations(ctx context.Context, f ConversationFilter) ([]model.Conversation, int64, error)
	ConversationsByIDs(ctx context.Context, ids []string) ([]model.Conversation, error)
	CreateConversation(ctx context.Context, c *model.Conversation) error
	UpdateConversations(ctx context.Context, ids []string, changes map[string]any) (int64, error)
	DeleteConversations(ctx context.Context, ids []string) (int64, error)
	ConversationIdentityTaken(ctx context.Context, shopID string, platform model.Platform, externalID string, excludeIDs []string) (bool, error)
	GetConversationByIdentity(ctx context.Context, shopID string, platform model.Platform, externalID string) (*model.Conversation, error)
	OrderLinked(ctx context.Context, orderID string, excludeIDs []string) (bool, error)
	MessageCounts(ctx context.Context, conversationIDs []string) (map[string]int64, error)

	// Messages
	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]model.Message, error)
	CreateMessage(ctx context.Context, m *model.Message) error

	// Shops and CRM
	GetShop(ctx context.Context, id string) (*model.Shop, error)
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)

	// Catalogue
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]model.Product, int64, error)
	CreateProduct(ctx context.Context, p *model.Product) error
	UpdateProduct(ctx context.Context, id string, changes map[string]any) error
	DeleteProduct(ctx context.Context, id string) error
	ProductSKUTaken(ctx context.Context, shopID, sku, excludeID string) (bool, error)
	OrderItemCount(ctx context.Context, productID string) (int64, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)

	// Channels
	ListChannels(ctx context.Context, shopID string) ([]model.Channel, error)
	GetChannel(ctx context.Context, shopID string, platform model.Platform) (*model.Channel, error)
	SaveChannel(ctx context.Context, ch *model.Channel) error
	SetChannelIdentity(ctx context.Context, shopID string, platform model.Platform, externalID string) error

	// Publications
	CreatePublication(ctx context.Context, p *model.Publication) error
}

// DB is the GORM-backed Store implementation.
type DB struct {
	db *gorm.DB
}

var _ Store = (*DB)(nil)

// Open connects to MySQL, configures the pool and migrates the schema.
func Open(dsn string) (*DB, error) {
	db, err := gorm.Open(gormmysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&model.Shop{},
		&model.Channel{},
		&model.Category{},
		&model.Product{},
		&model.Customer{},
		&model.Order{},
		&model.OrderItem{},
		&model.Conversation{},
		&model.Message{},
		&model.Publication{},
	); err != nil {
		return nil, err
	}

	return &DB{db: db}, nil
}

// NewDB wraps an existing GORM handle, used by transactions.
func NewDB(db *gorm.DB) *DB {
	return &DB{db: db}
}

// Ping checks database connectivity, used by the readiness probe.
func (s *DB) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *DB) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InTx implements Store.
func (s *DB) InTx(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewDB(tx))
	})
}

// translate folds GORM errors into the store error vocabulary.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// isDuplicateKey detects MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

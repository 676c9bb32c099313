// Package database provides the MongoDB connection and the persistence gateway
// used by the warning ledger and the moderation log.
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/TribeBotGo/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	retryBaseDelay = time.Second
	retryMaxDelay  = 10 * time.Second
)

// Database manages the MongoDB connection
type Database struct {
	client      *mongo.Client
	db          *mongo.Database
	isConnected bool
	maxRetries  int
	mu          sync.RWMutex
	collections map[string]*mongo.Collection
}

var (
	database *Database
	dbOnce   sync.Once
)

// Init initializes the global database instance, retrying the first connection
func Init(ctx context.Context, mongoURL, dbName string, maxRetries int) (*Database, error) {
	var err error
	dbOnce.Do(func() {
		database = NewDatabase(maxRetries)
		err = database.Connect(ctx, mongoURL, dbName)
	})
	return database, err
}

// NewDatabase creates a new Database instance
func NewDatabase(maxRetries int) *Database {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Database{
		maxRetries:  maxRetries,
		collections: make(map[string]*mongo.Collection),
	}
}

// RetryDelay returns the wait before the given retry: 1s doubling up to 10s
func RetryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 4 {
		return retryMaxDelay
	}
	delay := retryBaseDelay << uint(attempt)
	if delay > retryMaxDelay {
		return retryMaxDelay
	}
	return delay
}

// Connect establishes a connection to MongoDB, retrying with exponential backoff.
// It returns an error once every attempt has failed.
func (d *Database) Connect(ctx context.Context, mongoURL, dbName string) error {
	var lastErr error

	for attempt := 0; attempt < d.maxRetries; attempt++ {
		if attempt > 0 {
			delay := RetryDelay(attempt)
			logger.Warn(fmt.Sprintf("Reintentando conexión en %v (intento %d/%d)...", delay, attempt+1, d.maxRetries), "DB")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if lastErr = d.connectOnce(ctx, mongoURL, dbName); lastErr == nil {
			return nil
		}
		logger.Error(fmt.Sprintf("Fallo al conectar con la base de datos: %v", lastErr), "DB")
	}

	logger.Critical("Se agotaron los intentos de conexión a la base de datos.", "DB")
	return fmt.Errorf("mongo connect failed after %d attempts: %w", d.maxRetries, lastErr)
}

func (d *Database) connectOnce(parent context.Context, mongoURL, dbName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isConnected {
		return nil
	}

	logger.System("Intentando conectar a la base de datos...", "DB")

	ctx, cancel := context.WithTimeout(parent, 5*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(mongoURL).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return err
	}

	d.client = client
	d.db = client.Database(dbName)
	d.isConnected = true

	logger.Success("Conectado exitosamente a la base de datos.", "DB")
	return nil
}

// Disconnect closes the database connection
func (d *Database) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.client.Disconnect(ctx); err != nil {
		return err
	}
	d.isConnected = false
	d.collections = make(map[string]*mongo.Collection)
	logger.Warn("La base de datos ha sido desconectada", "DB")
	return nil
}

// Connected reports whether the last connection attempt succeeded
func (d *Database) Connected() bool {
	if d == nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.isConnected
}

// GetStatus returns the database connection status
func (d *Database) GetStatus() (string, bool) {
	if d == nil {
		return "🟡 In-memory", false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.client == nil {
		return "🔴 Offline", false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.client.Ping(ctx, readpref.Primary()); err != nil {
		return "🔴 Offline", false
	}
	return "🟢 Online", true
}

// GetCollection returns a MongoDB collection
func (d *Database) GetCollection(name string) *mongo.Collection {
	d.mu.RLock()
	if col, exists := d.collections[name]; exists {
		d.mu.RUnlock()
		return col
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}

	col := d.db.Collection(name)
	d.collections[name] = col
	return col
}

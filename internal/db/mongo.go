package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrNotConnected is returned by every data operation while the manager has
// no usable connection. Handlers translate it to 503.
var ErrNotConnected = errors.New("database not connected")

const (
	serverSelectionTimeout = 5 * time.Second
	socketTimeout          = 45 * time.Second
	retryInterval          = 5 * time.Second
)

// Manager owns the single shared MongoDB connection. The connected flag is
// read on every request but written only by connect, the retry loop, and
// Close, so it sits behind an RWMutex.
type Manager struct {
	uri    string
	dbName string

	mu        sync.RWMutex
	client    *mongo.Client
	connected bool
}

func NewManager(uri, dbName string) *Manager {
	return &Manager{uri: uri, dbName: dbName}
}

// Start attempts to connect and, on failure, keeps retrying at a fixed
// interval until it succeeds or ctx is cancelled. It never terminates the
// process: the HTTP listener stays up and serves 503s in the meantime.
func (m *Manager) Start(ctx context.Context) {
	if err := m.connect(ctx); err == nil {
		return
	}

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.connect(ctx); err == nil {
				return
			}
		}
	}
}

func (m *Manager) connect(ctx context.Context) error {
	opts := options.Client().
		ApplyURI(m.uri).
		SetServerSelectionTimeout(serverSelectionTimeout).
		SetSocketTimeout(socketTimeout)

	dialCtx, cancel := context.WithTimeout(ctx, serverSelectionTimeout)
	defer cancel()

	client, err := mongo.Connect(dialCtx, opts)
	if err == nil {
		err = client.Ping(dialCtx, readpref.Primary())
	}
	if err != nil {
		if client != nil {
			_ = client.Disconnect(context.Background())
		}
		slog.Error("mongodb connect failed, will retry",
			"err", err, "retry_in", retryInterval)
		m.mu.Lock()
		m.client = nil
		m.connected = false
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.client = client
	m.connected = true
	m.mu.Unlock()

	slog.Info("connected to mongodb", "db", m.dbName)
	return nil
}

// IsReady reports whether the connection is currently usable.
func (m *Manager) IsReady() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// collection returns the named collection, or ErrNotConnected while the
// handle is absent. No method dereferences the client past this check.
func (m *Manager) collection(name string) (*mongo.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.connected || m.client == nil {
		return nil, ErrNotConnected
	}
	return m.client.Database(m.dbName).Collection(name), nil
}

// InsertOne stores a single document and returns its generated identifier
// as a hex string.
func (m *Manager) InsertOne(ctx context.Context, collection string, doc map[string]any) (string, error) {
	coll, err := m.collection(collection)
	if err != nil {
		return "", err
	}

	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprintf("%v", res.InsertedID), nil
}

// InsertMany bulk-inserts documents and returns how many were stored.
func (m *Manager) InsertMany(ctx context.Context, collection string, docs []map[string]any) (int, error) {
	coll, err := m.collection(collection)
	if err != nil {
		return 0, err
	}

	rows := make([]any, len(docs))
	for i, d := range docs {
		rows[i] = d
	}

	res, err := coll.InsertMany(ctx, rows)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

// FindMany returns documents matching filter, capped at limit. The caller
// supplies the filter verbatim; an empty map matches everything.
func (m *Manager) FindMany(ctx context.Context, collection string, filter map[string]any, limit int64) ([]map[string]any, error) {
	coll, err := m.collection(collection)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetLimit(limit)
	cursor, err := coll.Find(ctx, bson.M(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := make([]map[string]any, 0)
	for cursor.Next(ctx) {
		var doc map[string]any
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// UpdateOne sets fields on the first document matching filter and returns
// the matched and modified counts. Matching nothing is not an error.
func (m *Manager) UpdateOne(ctx context.Context, collection string, filter, fields map[string]any) (matched, modified int64, err error) {
	coll, err := m.collection(collection)
	if err != nil {
		return 0, 0, err
	}

	res, err := coll.UpdateOne(ctx, bson.M(filter), bson.M{"$set": bson.M(fields)})
	if err != nil {
		return 0, 0, err
	}
	return res.MatchedCount, res.ModifiedCount, nil
}

// DeleteOne removes the first document matching filter and returns the
// deleted count.
func (m *Manager) DeleteOne(ctx context.Context, collection string, filter map[string]any) (int64, error) {
	coll, err := m.collection(collection)
	if err != nil {
		return 0, err
	}

	res, err := coll.DeleteOne(ctx, bson.M(filter))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Close releases the connection. Safe to call more than once and before a
// connection was ever established.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	client := m.client
	m.client = nil
	m.connected = false
	m.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

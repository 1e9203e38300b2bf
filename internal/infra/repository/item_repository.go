package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agencydesk/crm-sla-sweep/internal/domain"
)

const itemCollection = "tracked_items"

type itemRecord struct {
	ID              string    `bson:"_id"`
	OwnerID         string    `bson:"owner_id"`
	OwnerEmail      string    `bson:"owner_email,omitempty"`
	Type            string    `bson:"item_type"`
	RefID           string    `bson:"ref_id"`
	Title           string    `bson:"title"`
	Note            string    `bson:"note,omitempty"`
	Status          string    `bson:"status"`
	State           string    `bson:"state"`
	DueAt           time.Time `bson:"due_at"`
	StatusEnteredAt time.Time `bson:"status_entered_at"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

type itemRepository struct {
	coll       *mongo.Collection
	batchLimit int
}

func NewItemRepository(db *mongo.Database, batchLimit int) domain.ItemRepository {
	if batchLimit <= 0 {
		batchLimit = 500
	}
	return &itemRepository{
		coll:       db.Collection(itemCollection),
		batchLimit: batchLimit,
	}
}

// EnsureItemIndexes creates the due-scan index. Safe to call on every
// startup; index creation is idempotent.
func EnsureItemIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(itemCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "state", Value: 1}, {Key: "due_at", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	})
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *itemRepository) ListDue(ctx context.Context, now time.Time, ownerID string) ([]*domain.TrackedItem, error) {
	filter := bson.M{
		"state":  string(domain.StatePending),
		"due_at": bson.M{"$lte": now},
	}
	if ownerID != "" {
		filter["owner_id"] = ownerID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "due_at", Value: 1}}).
		SetLimit(int64(r.batchLimit))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeErr(err)
	}
	defer cur.Close(ctx)

	items := make([]*domain.TrackedItem, 0)
	for cur.Next(ctx) {
		var record itemRecord
		if err := cur.Decode(&record); err != nil {
			return nil, ErrInvalidItemData
		}
		items = append(items, recordToItem(&record))
	}
	if err := cur.Err(); err != nil {
		return nil, storeErr(err)
	}

	return items, nil
}

func (r *itemRepository) Get(ctx context.Context, id string) (*domain.TrackedItem, error) {
	var record itemRecord
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrItemNotFound
		}
		return nil, storeErr(err)
	}
	return recordToItem(&record), nil
}

func (r *itemRepository) Insert(ctx context.Context, item *domain.TrackedItem) error {
	if item == nil {
		return ErrInvalidItemData
	}

	_, err := r.coll.InsertOne(ctx, itemToRecord(item))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrItemAlreadyTracked
		}
		return storeErr(err)
	}
	return nil
}

// CommitState is the idempotent status store: the filter matches the
// document only while its state still equals from, so exactly one
// concurrent writer wins and the rest observe ErrStateConflict.
func (r *itemRepository) CommitState(ctx context.Context, id string, from, to domain.ItemState) error {
	if !from.CanTransitionTo(to) {
		return domain.ErrInvalidTransition
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "state": string(from)},
		bson.M{"$set": bson.M{
			"state":      string(to),
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return storeErr(err)
	}
	if res.MatchedCount == 0 {
		return r.classifyMiss(ctx, id)
	}
	return nil
}

func (r *itemRepository) Dismiss(ctx context.Context, id string) error {
	nonTerminal := []string{
		string(domain.StatePending),
		string(domain.StateSent),
		string(domain.StateEscalated),
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "state": bson.M{"$in": nonTerminal}},
		bson.M{"$set": bson.M{
			"state":      string(domain.StateDismissed),
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return storeErr(err)
	}
	if res.MatchedCount == 0 {
		return r.classifyMiss(ctx, id)
	}
	return nil
}

func (r *itemRepository) Reschedule(ctx context.Context, id string, dueAt time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "state": bson.M{"$ne": string(domain.StateDismissed)}},
		bson.M{"$set": bson.M{
			"due_at":     dueAt,
			"state":      string(domain.StatePending),
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return storeErr(err)
	}
	if res.MatchedCount == 0 {
		return r.classifyMiss(ctx, id)
	}
	return nil
}

// classifyMiss distinguishes "document gone" from "state moved on"
// after a compare-and-set matched nothing.
func (r *itemRepository) classifyMiss(ctx context.Context, id string) error {
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrItemNotFound
		}
		return storeErr(err)
	}
	return domain.ErrStateConflict
}

func itemToRecord(item *domain.TrackedItem) *itemRecord {
	return &itemRecord{
		ID:              item.ID,
		OwnerID:         item.OwnerID,
		OwnerEmail:      item.OwnerEmail,
		Type:            string(item.Type),
		RefID:           item.RefID,
		Title:           item.Title,
		Note:            item.Note,
		Status:          item.Status,
		State:           string(item.State),
		DueAt:           item.DueAt,
		StatusEnteredAt: item.StatusEnteredAt,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

func recordToItem(record *itemRecord) *domain.TrackedItem {
	return &domain.TrackedItem{
		ID:              record.ID,
		OwnerID:         record.OwnerID,
		OwnerEmail:      record.OwnerEmail,
		Type:            domain.ItemType(record.Type),
		RefID:           record.RefID,
		Title:           record.Title,
		Note:            record.Note,
		Status:          record.Status,
		State:           domain.ItemState(record.State),
		DueAt:           record.DueAt,
		StatusEnteredAt: record.StatusEnteredAt,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}

package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agencydesk/crm-sla-sweep/internal/domain"
)

const ruleCollection = "sla_rules"

type ruleRecord struct {
	Type        string `bson:"item_type"`
	Status      string `bson:"status"`
	MaxDwellSec int64  `bson:"max_dwell_seconds"`
	Severity    int    `bson:"severity"`
}

type ruleRepository struct {
	coll *mongo.Collection
}

func NewRuleRepository(db *mongo.Database) domain.RuleRepository {
	return &ruleRepository{coll: db.Collection(ruleCollection)}
}

// EnsureRuleIndexes enforces the one-active-rule-per-pair invariant at
// the store level.
func EnsureRuleIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(ruleCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "item_type", Value: 1}, {Key: "status", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *ruleRepository) ListActive(ctx context.Context) (map[domain.RuleKey]domain.SLARule, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, storeErr(err)
	}
	defer cur.Close(ctx)

	rules := make(map[domain.RuleKey]domain.SLARule)
	for cur.Next(ctx) {
		var record ruleRecord
		if err := cur.Decode(&record); err != nil {
			return nil, ErrInvalidRuleData
		}
		rule := domain.SLARule{
			Type:     domain.ItemType(record.Type),
			Status:   record.Status,
			MaxDwell: time.Duration(record.MaxDwellSec) * time.Second,
			Severity: domain.Severity(record.Severity),
		}
		rules[rule.Key()] = rule
	}
	if err := cur.Err(); err != nil {
		return nil, storeErr(err)
	}

	return rules, nil
}

func (r *ruleRepository) Upsert(ctx context.Context, rule *domain.SLARule) error {
	if rule == nil {
		return ErrInvalidRuleData
	}

	record := ruleRecord{
		Type:        string(rule.Type),
		Status:      rule.Status,
		MaxDwellSec: int64(rule.MaxDwell / time.Second),
		Severity:    int(rule.Severity),
	}

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"item_type": record.Type, "status": record.Status},
		bson.M{"$set": record},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

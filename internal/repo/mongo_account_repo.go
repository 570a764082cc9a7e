package repo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xxxsen/mauth/internal/model"
	appErr "github.com/xxxsen/mauth/internal/pkg/errors"
)

// DefaultAccountCollection matches the collection the web client's data already lives in.
const DefaultAccountCollection = "users"

type MongoAccountRepo struct {
	coll *mongo.Collection
}

func NewMongoAccountRepo(db *mongo.Database, collection string) *MongoAccountRepo {
	if collection == "" {
		collection = DefaultAccountCollection
	}
	return &MongoAccountRepo{coll: db.Collection(collection)}
}

// EnsureIndexes creates the unique email index that Create relies on for conflict detection.
func (r *MongoAccountRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	return err
}

func (r *MongoAccountRepo) Create(ctx context.Context, account *model.Account) error {
	if _, err := r.coll.InsertOne(ctx, account); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *MongoAccountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoAccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoAccountRepo) SetVerifyOTP(ctx context.Context, id, otp string, expireAt, mtime int64) error {
	return r.set(ctx, bson.M{"_id": id}, bson.M{
		"verifyOtp":         otp,
		"verifyOtpExpireAt": expireAt,
		"mtime":             mtime,
	})
}

func (r *MongoAccountRepo) MarkVerified(ctx context.Context, id, otp string, mtime int64) error {
	return r.set(ctx, bson.M{"_id": id, "verifyOtp": otp}, bson.M{
		"isAccountVerified": true,
		"verifyOtp":         "",
		"verifyOtpExpireAt": int64(0),
		"mtime":             mtime,
	})
}

func (r *MongoAccountRepo) SetResetOTP(ctx context.Context, id, otp string, expireAt, mtime int64) error {
	return r.set(ctx, bson.M{"_id": id}, bson.M{
		"resetOtp":         otp,
		"resetOtpExpireAt": expireAt,
		"mtime":            mtime,
	})
}

func (r *MongoAccountRepo) ResetPassword(ctx context.Context, id, otp, passwordHash string, mtime int64) error {
	return r.set(ctx, bson.M{"_id": id, "resetOtp": otp}, bson.M{
		"password":         passwordHash,
		"resetOtp":         "",
		"resetOtpExpireAt": int64(0),
		"mtime":            mtime,
	})
}

func (r *MongoAccountRepo) findOne(ctx context.Context, filter bson.M) (*model.Account, error) {
	var account model.Account
	if err := r.coll.FindOne(ctx, filter).Decode(&account); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *MongoAccountRepo) set(ctx context.Context, filter, fields bson.M) error {
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

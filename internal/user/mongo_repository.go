package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gochat/internal/common"
	"gochat/internal/dbmongo"
)

type accountDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *accountDocument) toDomain() *common.Account {
	return &common.Account{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

var withoutPassword = bson.D{{Key: "password", Value: 0}}

type mongoAccountRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoAccountRepository(db *mongo.Database) AccountRepository {
	return &mongoAccountRepository{
		coll: db.Collection(dbmongo.AccountsCollection),
		now:  time.Now,
	}
}

func (r *mongoAccountRepository) CreateAccount(ctx context.Context, account *common.Account) error {
	// BSON dates carry millisecond precision
	now := r.now().UTC().Truncate(time.Millisecond)
	doc := accountDocument{
		ID:        primitive.NewObjectID(),
		Email:     account.Email,
		Password:  account.PasswordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return common.ErrDuplicateKey
		}
		return fmt.Errorf("insert account: %w", err)
	}

	account.ID = doc.ID.Hex()
	account.CreatedAt = now
	account.UpdatedAt = now
	return nil
}

func (r *mongoAccountRepository) GetAccountByID(ctx context.Context, id string) (*common.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrNotFound
	}

	var doc accountDocument
	opts := options.FindOne().SetProjection(withoutPassword)
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc); err != nil {
		return nil, translateNoDocuments(err)
	}
	return doc.toDomain(), nil
}

func (r *mongoAccountRepository) GetAccountByEmail(ctx context.Context, email string, withPassword bool) (*common.Account, error) {
	opts := options.FindOne()
	if !withPassword {
		opts.SetProjection(withoutPassword)
	}

	var doc accountDocument
	if err := r.coll.FindOne(ctx, bson.M{"email": email}, opts).Decode(&doc); err != nil {
		return nil, translateNoDocuments(err)
	}
	return doc.toDomain(), nil
}

func (r *mongoAccountRepository) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	opts := options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})
	err := r.coll.FindOne(ctx, bson.M{"email": email}, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

func translateNoDocuments(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return common.ErrNotFound
	}
	return fmt.Errorf("find account: %w", err)
}

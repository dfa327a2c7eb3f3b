package repository

import (
	"InstaCap/internal/model"
	"InstaCap/internal/pkg/consts"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrDuplicateAccount = errors.New("account already exists")

// AccountRepo 本地身份提供方的凭据存储
type AccountRepo interface {
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	GetAccountByUID(ctx context.Context, uid string) (*model.Account, error)
	UpdateAccount(ctx context.Context, uid string, displayName, photoURL *string) error
	UpdatePassword(ctx context.Context, uid, passwordHash string) error
	DeleteAccount(ctx context.Context, uid string) (int64, error)
}

type accountRepoImpl struct {
	col *mongo.Collection
}

func NewAccountRepo(db *mongo.Database) AccountRepo {
	return &accountRepoImpl{
		col: db.Collection(consts.CollectionAccounts),
	}
}

func (s *accountRepoImpl) CreateAccount(ctx context.Context, account *model.Account) error {
	_, err := s.col.InsertOne(ctx, account)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateAccount
	}
	return err
}

func (s *accountRepoImpl) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *accountRepoImpl) GetAccountByUID(ctx context.Context, uid string) (*model.Account, error) {
	return s.findOne(ctx, bson.M{"uid": uid})
}

// findOne 不存在时返回 nil, nil
func (s *accountRepoImpl) findOne(ctx context.Context, filter bson.M) (*model.Account, error) {
	var account model.Account
	if err := s.col.FindOne(ctx, filter).Decode(&account); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (s *accountRepoImpl) UpdateAccount(ctx context.Context, uid string, displayName, photoURL *string) error {
	set := bson.M{"updated_at": time.Now()}
	if displayName != nil {
		set["display_name"] = *displayName
	}
	if photoURL != nil {
		set["photo_url"] = *photoURL
	}
	res, err := s.col.UpdateOne(ctx, bson.M{"uid": uid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *accountRepoImpl) UpdatePassword(ctx context.Context, uid, passwordHash string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"uid": uid}, bson.M{"$set": bson.M{
		"password_hash": passwordHash,
		"updated_at":    time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *accountRepoImpl) DeleteAccount(ctx context.Context, uid string) (int64, error) {
	res, err := s.col.DeleteOne(ctx, bson.M{"uid": uid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

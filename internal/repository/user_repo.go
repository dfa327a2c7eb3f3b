package repository

import (
	"InstaCap/internal/model"
	"InstaCap/internal/pkg/consts"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserUpsert 登录或注册时同步的身份字段，空值不覆盖已有数据
type UserUpsert struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// ProfileUpdate 档案可修改字段，nil 表示不修改
type ProfileUpdate struct {
	DisplayName *string
	PhotoURL    *string
	Bio         *string
	Theme       *string
	Language    *string
	DefaultTone *string
	NewFeatures *bool
	Tips        *bool
	Marketing   *bool
}

type UserRepo interface {
	CreateOrUpdateUser(ctx context.Context, in *UserUpsert) (*model.User, bool, error)
	GetUserByUID(ctx context.Context, uid string) (*model.User, error)
	UpdateProfile(ctx context.Context, uid string, upd *ProfileUpdate) (*model.User, error)
	IncrementCounters(ctx context.Context, uid string, captions, likes int64) error
	DeleteUser(ctx context.Context, uid string) (int64, error)
}

type userRepoImpl struct {
	col *mongo.Collection
}

func NewUserRepo(db *mongo.Database) UserRepo {
	return &userRepoImpl{
		col: db.Collection(consts.CollectionUsers),
	}
}

// CreateOrUpdateUser 按 uid upsert，第二个返回值表示是否新建
func (s *userRepoImpl) CreateOrUpdateUser(ctx context.Context, in *UserUpsert) (*model.User, bool, error) {
	now := time.Now()
	update := userUpsertDoc(in, now)

	res, err := s.col.UpdateOne(ctx, bson.M{"uid": in.UID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, false, err
	}

	user, err := s.GetUserByUID(ctx, in.UID)
	if err != nil {
		return nil, false, err
	}
	if user == nil {
		return nil, false, mongo.ErrNoDocuments
	}
	return user, res.UpsertedCount > 0, nil
}

func userUpsertDoc(in *UserUpsert, now time.Time) bson.M {
	set := bson.M{
		"updated_at":     now,
		"last_active_at": now,
	}
	onInsert := bson.M{
		"bio":                "",
		"preferences":        model.DefaultPreferences(),
		"subscription":       model.DefaultSubscription(),
		"captions_generated": int64(0),
		"total_likes":        int64(0),
		"created_at":         now,
	}

	if in.Email != "" {
		set["email"] = in.Email
	}
	if in.DisplayName != "" {
		set["display_name"] = in.DisplayName
	} else {
		onInsert["display_name"] = ""
	}
	if in.PhotoURL != "" {
		set["photo_url"] = in.PhotoURL
	} else {
		onInsert["photo_url"] = ""
	}

	return bson.M{"$set": set, "$setOnInsert": onInsert}
}

// GetUserByUID 不存在时返回 nil, nil
func (s *userRepoImpl) GetUserByUID(ctx context.Context, uid string) (*model.User, error) {
	var user model.User
	err := s.col.FindOne(ctx, bson.M{"uid": uid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile 以点路径更新偏好，避免覆盖未提交的字段
func (s *userRepoImpl) UpdateProfile(ctx context.Context, uid string, upd *ProfileUpdate) (*model.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user model.User
	err := s.col.FindOneAndUpdate(ctx, bson.M{"uid": uid}, bson.M{"$set": profileSet(upd, time.Now())}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func profileSet(upd *ProfileUpdate, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	putString := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	putBool := func(key string, v *bool) {
		if v != nil {
			set[key] = *v
		}
	}

	putString("display_name", upd.DisplayName)
	putString("photo_url", upd.PhotoURL)
	putString("bio", upd.Bio)
	putString("preferences.theme", upd.Theme)
	putString("preferences.language", upd.Language)
	putString("preferences.default_tone", upd.DefaultTone)
	putBool("preferences.notifications.new_features", upd.NewFeatures)
	putBool("preferences.notifications.tips", upd.Tips)
	putBool("preferences.notifications.marketing", upd.Marketing)
	return set
}

// IncrementCounters 原子累加档案计数
func (s *userRepoImpl) IncrementCounters(ctx context.Context, uid string, captions, likes int64) error {
	inc := bson.M{}
	if captions != 0 {
		inc["captions_generated"] = captions
	}
	if likes != 0 {
		inc["total_likes"] = likes
	}
	if len(inc) == 0 {
		return nil
	}
	_, err := s.col.UpdateOne(ctx, bson.M{"uid": uid}, bson.M{
		"$inc": inc,
		"$set": bson.M{"last_active_at": time.Now()},
	})
	return err
}

func (s *userRepoImpl) DeleteUser(ctx context.Context, uid string) (int64, error) {
	res, err := s.col.DeleteOne(ctx, bson.M{"uid": uid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

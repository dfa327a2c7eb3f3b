package repository

import (
	"InstaCap/internal/model"
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMockT(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestCaptionRepoCreate(t *testing.T) {
	mt := newMockT(t)
	mt.Run("assigns id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewCaptionRepo(mt.DB)

		c := &model.Caption{UserID: "u1", Content: "hello"}
		if err := repo.CreateCaption(context.Background(), c); err != nil {
			mt.Fatal(err)
		}
		if c.ID.IsZero() {
			mt.Fatal("id not populated")
		}
	})
}

func TestCaptionRepoDeleteNoMatch(t *testing.T) {
	mt := newMockT(t)
	mt.Run("returns nil", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))
		repo := NewCaptionRepo(mt.DB)

		c, err := repo.DeleteCaption(context.Background(), primitive.NewObjectID(), "u2")
		if err != nil || c != nil {
			mt.Fatalf("got %v, %v; want nil, nil", c, err)
		}
	})
}

func TestCaptionRepoToggleFavorite(t *testing.T) {
	mt := newMockT(t)
	mt.Run("returns new state", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "user_id", Value: "u1"},
			{Key: "flags", Value: bson.D{{Key: "is_favorite", Value: true}, {Key: "is_public", Value: true}}},
		}}))
		repo := NewCaptionRepo(mt.DB)

		c, err := repo.ToggleFavorite(context.Background(), id, "u1")
		if err != nil {
			mt.Fatal(err)
		}
		if !c.Flags.IsFavorite || c.ID != id {
			mt.Fatalf("unexpected caption %+v", c)
		}

		cmd := mt.GetStartedEvent().Command
		filter := cmd.Lookup("query").Document()
		if filter.Lookup("user_id").StringValue() != "u1" {
			mt.Fatalf("toggle must be scoped to the owner, filter %v", filter)
		}
	})
}

func TestCaptionRepoGetUserCaptions(t *testing.T) {
	mt := newMockT(t)
	mt.Run("page with total", func(mt *mtest.T) {
		ns := mt.DB.Name() + ".captions"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(45)}}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "user_id", Value: "u1"}, {Key: "content", Value: "a"}},
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "user_id", Value: "u1"}, {Key: "content", Value: "b"}},
			),
		)
		repo := NewCaptionRepo(mt.DB)

		q := &CaptionQuery{Page: 3, Limit: 20}
		list, total, err := repo.GetUserCaptions(context.Background(), "u1", q)
		if err != nil {
			mt.Fatal(err)
		}
		if total != 45 || len(list) != 2 {
			mt.Fatalf("total=%d len=%d", total, len(list))
		}

		find := mt.GetAllStartedEvents()[1].Command
		if find.Lookup("skip").AsInt64() != 40 || find.Lookup("limit").AsInt64() != 20 {
			mt.Fatalf("find command %v", find)
		}
	})
}

func TestAccountRepoDuplicate(t *testing.T) {
	mt := newMockT(t)
	mt.Run("duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key"}))
		repo := NewAccountRepo(mt.DB)

		err := repo.CreateAccount(context.Background(), &model.Account{UID: "u1", Email: "a@b.com"})
		if !errors.Is(err, ErrDuplicateAccount) {
			mt.Fatalf("expected ErrDuplicateAccount, got %v", err)
		}
	})
}

func TestAccountRepoMissing(t *testing.T) {
	mt := newMockT(t)
	mt.Run("not found", func(mt *mtest.T) {
		ns := mt.DB.Name() + ".accounts"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := NewAccountRepo(mt.DB)

		a, err := repo.GetAccountByEmail(context.Background(), "nobody@b.com")
		if err != nil || a != nil {
			mt.Fatalf("got %v, %v; want nil, nil", a, err)
		}
	})
}

func TestCaptionRepoExportUserCaptions(t *testing.T) {
	mt := newMockT(t)
	mt.Run("newest first with limit", func(mt *mtest.T) {
		ns := mt.DB.Name() + ".captions"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "user_id", Value: "u1"}, {Key: "content", Value: "a"}},
		))
		repo := NewCaptionRepo(mt.DB)

		list, err := repo.ExportUserCaptions(context.Background(), "u1", 10)
		if err != nil {
			mt.Fatal(err)
		}
		if len(list) != 1 || list[0].Content != "a" {
			mt.Fatalf("unexpected list %+v", list)
		}

		cmd := mt.GetStartedEvent().Command
		if uid := cmd.Lookup("filter", "user_id").StringValue(); uid != "u1" {
			mt.Fatalf("filter user_id = %q", uid)
		}
		if dir := cmd.Lookup("sort", "created_at").Int32(); dir != -1 {
			mt.Fatalf("sort created_at = %d, want -1", dir)
		}
		if limit := cmd.Lookup("limit").Int64(); limit != 10 {
			mt.Fatalf("limit = %d, want 10", limit)
		}
	})
}

func TestAccountRepoUpdatePassword(t *testing.T) {
	mt := newMockT(t)
	mt.Run("stores hash", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		repo := NewAccountRepo(mt.DB)

		if err := repo.UpdatePassword(context.Background(), "u1", "hash"); err != nil {
			mt.Fatal(err)
		}
		cmd := mt.GetStartedEvent().Command
		if h := cmd.Lookup("updates", "0", "u", "$set", "password_hash").StringValue(); h != "hash" {
			mt.Fatalf("password_hash = %q", h)
		}
	})
	mt.Run("unknown uid", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		repo := NewAccountRepo(mt.DB)

		if err := repo.UpdatePassword(context.Background(), "ghost", "hash"); !errors.Is(err, mongo.ErrNoDocuments) {
			mt.Fatalf("expected ErrNoDocuments, got %v", err)
		}
	})
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func toDoc(t *testing.T, v any) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func TestAssessmentRepo_Save(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("upserts by id", func(mt *mtest.T) {
		repo := NewAssessmentRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		rec := record("a", "cio@mercy.org", 40, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
		require.NoError(mt, repo.Save(context.Background(), rec))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "update", started.CommandName)
		assert.Equal(mt, "assessments", started.Command.Lookup("update").StringValue())

		update := started.Command.Lookup("updates").Array().Index(0).Value().Document()
		assert.Equal(mt, "a", update.Lookup("q", "_id").StringValue())
		assert.True(mt, update.Lookup("upsert").Boolean())
	})

	mt.Run("rejects records without id", func(mt *mtest.T) {
		repo := NewAssessmentRepo(mt.DB)
		assert.ErrorIs(mt, repo.Save(context.Background(), record("", "x@y.org", 1, time.Now())), ErrInvalidRecord)
	})

	mt.Run("surfaces write errors", func(mt *mtest.T) {
		repo := NewAssessmentRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad value",
			Name:    "BadValue",
		}))

		err := repo.Save(context.Background(), record("a", "cio@mercy.org", 40, time.Now()))
		assert.Error(mt, err)
	})
}

func TestAssessmentRepo_ListByEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes newest first", func(mt *mtest.T) {
		repo := NewAssessmentRepo(mt.DB)
		base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		newer := record("b", "cio@mercy.org", 55, base.Add(time.Hour))
		older := record("a", "cio@mercy.org", 40, base)

		ns := mt.DB.Name() + ".assessments"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, toDoc(mt.T, newer), toDoc(mt.T, older)),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch),
		)

		got, err := repo.ListByEmail(context.Background(), "cio@mercy.org", 5)
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "b", got[0].ID)
		assert.Equal(mt, 55, got[0].Result.OverallScore)
		assert.Equal(mt, "cio@mercy.org", got[1].Organization.Email)
		assert.Equal(mt, "Yes", got[1].Answers["1"])

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "find", started.CommandName)
		assert.Equal(mt, "cio@mercy.org", started.Command.Lookup("filter", "organization.email").StringValue())
		assert.Equal(mt, int64(-1), started.Command.Lookup("sort", "createdAt").AsInt64())
		assert.Equal(mt, int64(5), started.Command.Lookup("limit").AsInt64())
	})

	mt.Run("empty result", func(mt *mtest.T) {
		repo := NewAssessmentRepo(mt.DB)
		ns := mt.DB.Name() + ".assessments"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		got, err := repo.ListByEmail(context.Background(), "nobody@example.org", 0)
		require.NoError(mt, err)
		assert.Empty(mt, got)
		assert.NotNil(mt, got)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, int64(DefaultHistoryLimit), started.Command.Lookup("limit").AsInt64())
	})
}

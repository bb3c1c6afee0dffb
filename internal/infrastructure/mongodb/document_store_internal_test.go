package mongodb

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/Contabilidad-api/internal/domain"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestToBSON_AgregaIDYPropietario(t *testing.T) {
	got := toBSON(entity.Document{"id": "r1", "name": "Torta"}, "u1", "r1")
	assert.Equal(t, bson.M{"id": "r1", "name": "Torta", "owner": "u1"}, got)
}

func TestToBSON_DosPropietariosMismaFecha(t *testing.T) {
	rate := entity.Document{"date": "2024-01-05", "rate": "36.5"}

	a := toBSON(rate, "ana", "2024-01-05")
	b := toBSON(rate, "luis", "2024-01-05")
	assert.NotContains(t, a, "_id", "el _id lo aporta el filtro")
	assert.NotEqual(t, docKey("ana", "2024-01-05"), docKey("luis", "2024-01-05"))

	// lo que Mongo guardaría tras el upsert
	a["_id"] = docKey("ana", "2024-01-05")
	b["_id"] = docKey("luis", "2024-01-05")
	for owner, raw := range map[string]bson.M{"ana": a, "luis": b} {
		got := fromBSON(raw)
		assert.Equal(t, "2024-01-05", got["id"], owner)
		assert.NotContains(t, got, "owner")
		assert.NotContains(t, got, "_id")
	}
}

func TestFromBSON_SinCampoIDQuitaPrefijo(t *testing.T) {
	got := fromBSON(bson.M{"_id": "ana/i1", "owner": "ana", "name": "Harina"})
	assert.Equal(t, "i1", got["id"])
}

func TestFromBSON_FormaGenerica(t *testing.T) {
	oid := primitive.NewObjectID()
	raw := bson.M{
		"_id":   oid,
		"owner": "u1",
		"name":  "Torta",
		"ingredients": bson.A{
			bson.D{{Key: "ingredientId", Value: "harina"}, {Key: "quantity", Value: "500"}},
		},
	}
	got := fromBSON(raw)

	assert.Equal(t, oid.Hex(), got["id"])
	assert.NotContains(t, got, "owner")
	assert.Equal(t, []any{map[string]any{"ingredientId": "harina", "quantity": "500"}}, got["ingredients"])

	rec, err := entity.FromDocument[entity.Recipe](got)
	assert.NoError(t, err)
	assert.Equal(t, "harina", rec.Ingredients[0].IngredientID)
}

func TestClassify_TimeoutEsIndisponibilidad(t *testing.T) {
	err := classify(fmt.Errorf("listar: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	other := errors.New("duplicate key")
	assert.Equal(t, other, classify(other))
	assert.NoError(t, classify(nil))
}

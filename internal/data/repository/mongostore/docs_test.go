package mongostore

import (
	"testing"
	"time"

	"marketplace/internal/data/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestProductDoc_BSONRoundTrip(t *testing.T) {
	contact := "+62811"
	p := &entity.Product{
		BaseNoDelete:   entity.BaseNoDelete{ID: uuid.New(), CreatedAt: time.Now().UTC().Truncate(time.Millisecond)},
		Name:           "Chair",
		Price:          50,
		Image:          "img",
		SellerID:       uuid.New(),
		SellerContact:  &contact,
		ApprovalStatus: entity.StatusApproved,
	}

	raw, err := bson.Marshal(toProductDoc(p))
	require.NoError(t, err)

	var doc productDoc
	require.NoError(t, bson.Unmarshal(raw, &doc))

	got, err := doc.toEntity()
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.SellerID, got.SellerID)
	assert.Equal(t, entity.StatusApproved, got.ApprovalStatus)
	assert.Equal(t, "+62811", *got.SellerContact)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
}

func TestProductDoc_RejectsUnknownStatus(t *testing.T) {
	doc := productDoc{ID: uuid.NewString(), SellerID: uuid.NewString(), ApprovalStatus: "sold"}
	_, err := doc.toEntity()
	assert.Error(t, err)
}

func TestProductFilter_ToBSON(t *testing.T) {
	seller := uuid.New()
	status := entity.StatusPending

	assert.Empty(t, productFilter(entity.ProductFilter{}))
	assert.Equal(t,
		bson.M{"approval_status": "pending", "seller_id": seller.String()},
		productFilter(entity.ProductFilter{Status: &status, SellerID: &seller}),
	)
}

func TestUserDoc_RejectsUnknownRole(t *testing.T) {
	doc := userDoc{ID: uuid.NewString(), Role: "customer"}
	_, err := doc.toEntity()
	assert.Error(t, err)
}

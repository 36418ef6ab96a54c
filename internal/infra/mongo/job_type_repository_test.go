package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"bulletin-board/internal/domain"
)

func TestDocumentBSONLayout(t *testing.T) {
	raw, err := bson.Marshal(jobTypeDocument{ID: "A1", Name: "Plumber", Version: 2})
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.Equal(t, "A1", m["_id"])
	assert.Equal(t, "Plumber", m["name"])
	assert.Equal(t, int64(2), m["version"])

	var doc jobTypeDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, &domain.JobType{ID: "A1", Name: "Plumber", Version: 2}, fromDocument(&doc))
}

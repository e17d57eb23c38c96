package mapssvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMapListSort(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, mapListSort(MapOrderMostRecent))
	assert.Equal(t, bson.D{{Key: "createdAt", Value: 1}}, mapListSort(MapOrderOldest))
	assert.Equal(t, bson.D{{Key: "name", Value: 1}}, mapListSort(MapOrderAlphabetical))

	// Giá trị lạ hoặc để trống rơi về alphabetical
	assert.Equal(t, bson.D{{Key: "name", Value: 1}}, mapListSort(""))
	assert.Equal(t, bson.D{{Key: "name", Value: 1}}, mapListSort("newest"))
}

func TestTagStrings(t *testing.T) {
	tags := tagStrings([]interface{}{"triển lãm", "hội chợ", "", 42, nil, "ẩm thực"})
	assert.Equal(t, []string{"hội chợ", "triển lãm", "ẩm thực"}, tags)

	assert.Empty(t, tagStrings(nil))
	assert.Empty(t, tagStrings([]interface{}{nil, 7}))
}
